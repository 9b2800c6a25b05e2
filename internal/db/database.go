package db

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"ollamagate/internal/config"
	"ollamagate/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ErrKeyNotFound is returned when an API key is unknown or inactive.
var ErrKeyNotFound = errors.New("api key not found")

// Service is the storage surface the rest of the gateway depends on.
type Service interface {
	// API keys
	VerifyAPIKey(key string) (*model.APIKey, error)
	CreateAPIKey(userID string) (*model.APIKey, error)
	DeactivateAPIKey(id uint) error
	ListAPIKeys() ([]model.APIKey, error)
	IncrementAPIKeyUsageCount(key string) error
	ResetAllAPIKeyUsage() error

	// Models
	ListModels() ([]model.LLMModel, error)
	AllowedModels(key string) ([]model.LLMModel, error)
	HasModelAccess(key, modelID string) (bool, error)
	CreateModel(m *model.LLMModel) error
	UpdateModel(m *model.LLMModel) error
	DeleteModel(id string) error

	// Grants
	GrantModelAccess(apiKeyID uint, modelID string) error
	RevokeModelAccess(apiKeyID uint, modelID string) error

	// GetDB exposes the underlying handle for tests and migrations.
	GetDB() *gorm.DB
}

type service struct {
	db *gorm.DB
}

// NewService opens the configured database and migrates the schema.
func NewService(cfg config.DatabaseConfig) (Service, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&model.APIKey{}, &model.LLMModel{}, &model.ModelAccess{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return &service{db: db}, nil
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

// VerifyAPIKey looks up an active key row. Inactive and unknown keys both
// yield ErrKeyNotFound so callers cannot distinguish the two.
func (s *service) VerifyAPIKey(key string) (*model.APIKey, error) {
	var apiKey model.APIKey
	result := s.db.Where("key = ? AND active = ?", key, true).First(&apiKey)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to verify api key: %w", result.Error)
	}
	return &apiKey, nil
}

// CreateAPIKey mints a fresh opaque key and stores it active.
func (s *service) CreateAPIKey(userID string) (*model.APIKey, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate api key: %w", err)
	}

	apiKey := model.APIKey{
		Key:    base64.RawURLEncoding.EncodeToString(raw),
		UserID: userID,
		Active: true,
	}
	if err := s.db.Create(&apiKey).Error; err != nil {
		return nil, fmt.Errorf("failed to create api key: %w", err)
	}
	return &apiKey, nil
}

// DeactivateAPIKey flips the active flag. Key rows are never deleted.
func (s *service) DeactivateAPIKey(id uint) error {
	result := s.db.Model(&model.APIKey{}).Where("id = ?", id).Update("active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate api key: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrKeyNotFound
	}
	return nil
}

func (s *service) ListAPIKeys() ([]model.APIKey, error) {
	var keys []model.APIKey
	if err := s.db.Find(&keys).Error; err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	return keys, nil
}

// IncrementAPIKeyUsageCount atomically bumps the usage counter.
func (s *service) IncrementAPIKeyUsageCount(key string) error {
	result := s.db.Model(&model.APIKey{}).Where("key = ?", key).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment usage count for api key: %w", result.Error)
	}
	// RowsAffected may be 0 if the key was deactivated mid-request.
	return nil
}

func (s *service) ResetAllAPIKeyUsage() error {
	result := s.db.Model(&model.APIKey{}).Where("usage_count > 0").Update("usage_count", 0)
	if result.Error != nil {
		return fmt.Errorf("failed to reset api key usage: %w", result.Error)
	}
	return nil
}

func (s *service) ListModels() ([]model.LLMModel, error) {
	var models []model.LLMModel
	if err := s.db.Order("id asc").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	return models, nil
}

// AllowedModels returns the models visible to the holder of key: every
// public model, plus the ones a grant row names. An empty or unknown key
// still sees the public set.
func (s *service) AllowedModels(key string) ([]model.LLMModel, error) {
	var models []model.LLMModel
	err := s.db.Model(&model.LLMModel{}).
		Distinct("models.*").
		Joins("LEFT JOIN api_key_model_access ON api_key_model_access.model_id = models.id").
		Joins("LEFT JOIN api_keys ON api_keys.id = api_key_model_access.api_key_id AND api_keys.active = ?", true).
		Where("models.is_public = ? OR api_keys.key = ?", true, key).
		Order("models.id asc").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load allowed models: %w", err)
	}
	return models, nil
}

// HasModelAccess reports whether key may call modelID: either the model is
// public or a grant row exists for the (key, model) pair.
func (s *service) HasModelAccess(key, modelID string) (bool, error) {
	var count int64
	err := s.db.Model(&model.LLMModel{}).
		Joins("LEFT JOIN api_key_model_access ON api_key_model_access.model_id = models.id").
		Joins("LEFT JOIN api_keys ON api_keys.id = api_key_model_access.api_key_id AND api_keys.active = ?", true).
		Where("models.id = ?", modelID).
		Where("models.is_public = ? OR api_keys.key = ?", true, key).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check model access: %w", err)
	}
	return count > 0, nil
}

func (s *service) CreateModel(m *model.LLMModel) error {
	if err := s.db.Create(m).Error; err != nil {
		return fmt.Errorf("failed to create model: %w", err)
	}
	return nil
}

func (s *service) UpdateModel(m *model.LLMModel) error {
	result := s.db.Model(&model.LLMModel{}).Where("id = ?", m.ID).Updates(m)
	if result.Error != nil {
		return fmt.Errorf("failed to update model: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *service) DeleteModel(id string) error {
	result := s.db.Where("id = ?", id).Delete(&model.LLMModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete model: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GrantModelAccess inserts a grant row. The unique (api_key_id, model_id)
// index rejects duplicates at the database level.
func (s *service) GrantModelAccess(apiKeyID uint, modelID string) error {
	grant := model.ModelAccess{APIKeyID: apiKeyID, ModelID: modelID}
	if err := s.db.Create(&grant).Error; err != nil {
		return fmt.Errorf("failed to grant model access: %w", err)
	}
	return nil
}

func (s *service) RevokeModelAccess(apiKeyID uint, modelID string) error {
	result := s.db.Where("api_key_id = ? AND model_id = ?", apiKeyID, modelID).
		Delete(&model.ModelAccess{})
	if result.Error != nil {
		return fmt.Errorf("failed to revoke model access: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
