package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateKeyRequest is the optional body of POST /v1/api_keys.
type CreateKeyRequest struct {
	UserID string `json:"user_id"`
}

// CreateAPIKey handles POST /v1/api_keys: mints a fresh key and returns it.
// This is the only time the opaque key value is revealed.
func (h *Handler) CreateAPIKey(c *gin.Context) {
	var req CreateKeyRequest
	// An empty body is fine; the owning user is then left blank.
	_ = c.ShouldBindJSON(&req)

	apiKey, err := h.db.CreateAPIKey(req.UserID)
	if err != nil {
		h.logger.Error("Failed to create API key", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create API key"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"api_key": apiKey.Key})
}

// Health is an unauthenticated liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
