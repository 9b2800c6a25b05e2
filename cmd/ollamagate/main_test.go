package main

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"ollamagate/internal/config"
	"ollamagate/internal/db"
	"ollamagate/internal/logger"
)

func TestCustomRecovery_Panic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logBuf bytes.Buffer
	testLogger := slog.New(slog.NewJSONHandler(&logBuf, nil))

	router := gin.New()
	router.Use(customRecovery(testLogger))
	router.GET("/", func(c *gin.Context) {
		panic("test panic")
	})

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, logBuf.String(), "Panic recovered")
	assert.Contains(t, logBuf.String(), "test panic")
}

func TestCustomRecovery_AbortHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logBuf bytes.Buffer
	testLogger := slog.New(slog.NewJSONHandler(&logBuf, nil))

	router := gin.New()
	router.Use(customRecovery(testLogger))
	router.GET("/", func(c *gin.Context) {
		panic(http.ErrAbortHandler)
	})

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Contains(t, logBuf.String(), "Client connection aborted")
}

func newTestConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Type: "sqlite", DSN: "file::memory:"},
		Ollama: config.OllamaConfig{
			BaseURL:      "http://localhost:11434",
			DefaultModel: "llama3",
			MaxRetries:   1,
		},
		Admin: config.AdminConfig{Password: "router-test"},
		Port:  8080,
	}
}

func TestNewRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := newTestConfig()
	dbService, err := db.NewService(cfg.Database)
	assert.NoError(t, err)
	router := newRouter(cfg, logger.NewWithWriter(os.Stdout, false), dbService)

	t.Run("health is open", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/health", nil)
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("models is open", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/v1/models", nil)
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("chat requires a key", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("admin requires basic auth", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/admin/api-keys", nil)
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		rr = httptest.NewRecorder()
		req.SetBasicAuth("admin", "router-test")
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("unknown routes get the error envelope", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/nope", nil)
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"error": {"message": "Not found", "type": "invalid_request_error"}}`, rr.Body.String())
	})
}

func TestGracefulShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := newTestConfig()
	cfg.Port = 18088

	dbService, err := db.NewService(cfg.Database)
	assert.NoError(t, err)
	log := logger.NewWithWriter(os.Stdout, false)

	serverExited := make(chan error, 1)
	go func() {
		serverExited <- setupAndRunServer(cfg, log, dbService)
	}()

	// Give the server a moment to start
	time.Sleep(100 * time.Millisecond)

	p, err := os.FindProcess(os.Getpid())
	assert.NoError(t, err)
	assert.NoError(t, p.Signal(syscall.SIGINT))

	select {
	case err := <-serverExited:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("server did not shut down gracefully within the timeout")
	}
}
