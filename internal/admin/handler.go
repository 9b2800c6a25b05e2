package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ollamagate/internal/db"
	"ollamagate/internal/model"
)

type CreateKeyRequest struct {
	UserID string `json:"user_id"`
}

type ModelRequest struct {
	ID              string  `json:"id" binding:"required"`
	OwnedBy         string  `json:"owned_by"`
	Public          bool    `json:"public"`
	Description     string  `json:"description"`
	Strengths       string  `json:"strengths"`
	PricePrompt     float64 `json:"price_prompt"`
	PriceCompletion float64 `json:"price_completion"`
}

type AccessRequest struct {
	APIKeyID uint   `json:"api_key_id" binding:"required"`
	ModelID  string `json:"model_id" binding:"required"`
}

type Handler struct {
	db db.Service
}

func NewHandler(dbService db.Service) *Handler {
	return &Handler{db: dbService}
}

func (h *Handler) ListAPIKeysHandler(c *gin.Context) {
	keys, err := h.db.ListAPIKeys()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list keys"})
		return
	}
	// The opaque key values never leave the admin surface.
	type keySummary struct {
		ID         uint   `json:"id"`
		UserID     string `json:"user_id"`
		Active     bool   `json:"active"`
		UsageCount int64  `json:"usage_count"`
	}
	out := make([]keySummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, keySummary{ID: k.ID, UserID: k.UserID, Active: k.Active, UsageCount: k.UsageCount})
	}
	c.JSON(http.StatusOK, gin.H{"api_keys": out})
}

func (h *Handler) CreateAPIKeyHandler(c *gin.Context) {
	var req CreateKeyRequest
	_ = c.ShouldBindJSON(&req)

	apiKey, err := h.db.CreateAPIKey(req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create API key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": apiKey.ID, "api_key": apiKey.Key})
}

func (h *Handler) DeactivateAPIKeyHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid key ID"})
		return
	}
	if err := h.db.DeactivateAPIKey(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key deactivated successfully"})
}

func (h *Handler) ListModelsHandler(c *gin.Context) {
	models, err := h.db.ListModels()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list models"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": models})
}

func (h *Handler) CreateModelHandler(c *gin.Context) {
	var req ModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	m := model.LLMModel{
		ID:              req.ID,
		OwnedBy:         req.OwnedBy,
		Public:          req.Public,
		Description:     req.Description,
		Strengths:       req.Strengths,
		PricePrompt:     req.PricePrompt,
		PriceCompletion: req.PriceCompletion,
	}
	if err := h.db.CreateModel(&m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create model"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Model created successfully"})
}

func (h *Handler) UpdateModelHandler(c *gin.Context) {
	var req ModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	m := model.LLMModel{
		ID:              c.Param("id"),
		OwnedBy:         req.OwnedBy,
		Public:          req.Public,
		Description:     req.Description,
		Strengths:       req.Strengths,
		PricePrompt:     req.PricePrompt,
		PriceCompletion: req.PriceCompletion,
	}
	if err := h.db.UpdateModel(&m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update model"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Model updated successfully"})
}

func (h *Handler) DeleteModelHandler(c *gin.Context) {
	if err := h.db.DeleteModel(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete model"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Model deleted successfully"})
}

func (h *Handler) GrantAccessHandler(c *gin.Context) {
	var req AccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.db.GrantModelAccess(req.APIKeyID, req.ModelID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to grant access"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Access granted successfully"})
}

func (h *Handler) RevokeAccessHandler(c *gin.Context) {
	var req AccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.db.RevokeModelAccess(req.APIKeyID, req.ModelID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke access"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Access revoked successfully"})
}
