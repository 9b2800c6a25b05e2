package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DatabaseConfig holds the database connection information. Type and DSN
// can be given directly, or assembled from the discrete DB_* environment
// variables (host, port, user, password, name) for MySQL deployments.
type DatabaseConfig struct {
	Type string `yaml:"type"`
	DSN  string `yaml:"dsn"`
}

// OllamaConfig holds the upstream Ollama server settings.
type OllamaConfig struct {
	BaseURL      string `yaml:"base_url"`
	DefaultModel string `yaml:"default_model"`
	MaxRetries   int    `yaml:"max_retries"`
}

// AdminConfig holds configuration for the admin endpoints.
type AdminConfig struct {
	Password string `yaml:"password"`
}

// Config holds the configuration for the gateway.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Ollama   OllamaConfig   `yaml:"ollama"`
	Admin    AdminConfig    `yaml:"admin"`
	Port     int            `yaml:"port"`
	Debug    bool           `yaml:"debug"`
}

// LoadConfig reads and parses the configuration file, then applies
// environment overrides. It returns the config and a potential warning message.
var LoadConfig = func(path string) (*Config, string, error) {
	_ = godotenv.Load() // Load from .env if it exists, ignore error if not

	var config Config
	var warning string

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, "", fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, "", fmt.Errorf("failed to read config file: %w", err)
	}
	// If file does not exist, we continue with an empty config and rely on environment variables.

	// Override with environment variables if they exist
	if dsn := os.Getenv("OLLAMAGATE_DATABASE_DSN"); dsn != "" {
		config.Database.DSN = dsn
	}
	if dbType := os.Getenv("OLLAMAGATE_DATABASE_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if config.Database.DSN == "" {
		// Fall back to the discrete DB_* variables used by MySQL deployments.
		if host := os.Getenv("DB_HOST"); host != "" {
			config.Database.Type = "mysql"
			config.Database.DSN = mysqlDSN(
				os.Getenv("DB_USER"),
				os.Getenv("DB_PASSWORD"),
				host,
				getEnv("DB_PORT", "3306"),
				os.Getenv("DB_NAME"),
			)
		}
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.Ollama.BaseURL = baseURL
	}
	if model := os.Getenv("OLLAMAGATE_DEFAULT_MODEL"); model != "" {
		config.Ollama.DefaultModel = model
	}
	if port := os.Getenv("OLLAMAGATE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Port = p
		}
	}
	if password := os.Getenv("OLLAMAGATE_ADMIN_PASSWORD"); password != "" {
		config.Admin.Password = password
	}
	if debug := os.Getenv("OLLAMAGATE_DEBUG"); debug != "" {
		config.Debug = (debug == "true")
	}

	// Set default values
	if config.Ollama.BaseURL == "" {
		config.Ollama.BaseURL = "http://localhost:11434"
	}
	if config.Ollama.DefaultModel == "" {
		config.Ollama.DefaultModel = "llama3"
	}
	if config.Ollama.MaxRetries == 0 {
		config.Ollama.MaxRetries = 3
	}
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.Database.Type == "" && config.Database.DSN == "" {
		config.Database.Type = "sqlite"
		config.Database.DSN = "file:ollamagate.db?cache=shared&mode=rwc"
		warning = "database not configured, using local sqlite file ollamagate.db"
	}

	// Final validation after overrides
	if config.Database.Type == "" || config.Database.DSN == "" {
		return nil, "", fmt.Errorf("database type and dsn must be configured in config.yaml or via environment variables")
	}

	return &config, warning, nil
}

func mysqlDSN(user, password, host, port, name string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, name)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
