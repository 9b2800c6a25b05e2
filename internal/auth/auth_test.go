package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"ollamagate/internal/config"
	"ollamagate/internal/db"
	"ollamagate/internal/model"

	"github.com/gin-gonic/gin"
)

func setupAuthTest(t *testing.T) (db.Service, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	service, err := db.NewService(config.DatabaseConfig{Type: "sqlite", DSN: "file::memory:"})
	if err != nil {
		t.Fatalf("Failed to create test db service: %v", err)
	}
	service.GetDB().Create(&model.APIKey{Key: "valid-client-key", UserID: "u1", Active: true})
	service.GetDB().Create(&model.APIKey{Key: "revoked-key", UserID: "u1", Active: false})

	router := gin.New()
	router.Use(Middleware(service))
	router.GET("/", func(c *gin.Context) {
		apiKey, ok := KeyFromContext(c)
		if !ok || apiKey.UserID != "u1" {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	return service, router
}

func TestMiddleware(t *testing.T) {
	_, router := setupAuthTest(t)

	// Test with no key
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, rr.Code)
	}

	// Test with a malformed header
	req.Header.Set("Authorization", "valid-client-key")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, rr.Code)
	}

	// Test with an unknown Bearer token
	req.Header.Set("Authorization", "Bearer invalid-key")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, rr.Code)
	}

	// Test with a revoked Bearer token
	req.Header.Set("Authorization", "Bearer revoked-key")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, rr.Code)
	}

	// Test with a valid Bearer token
	req.Header.Set("Authorization", "Bearer valid-client-key")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestAdminMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(AdminMiddleware("s3cret"))
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, rr.Code)
	}

	req.SetBasicAuth("admin", "wrong")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, rr.Code)
	}

	req.SetBasicAuth("admin", "s3cret")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, rr.Code)
	}
}
