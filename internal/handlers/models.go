package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ollamagate/internal/auth"
	"ollamagate/internal/openai"
)

// ListModels handles GET /v1/models. The bearer key is optional: without
// one (or with an unknown one) only public models are visible; a valid key
// additionally sees its granted models.
func (h *Handler) ListModels(c *gin.Context) {
	token := auth.BearerToken(c.Request)

	records, err := h.db.AllowedModels(token)
	if err != nil {
		h.logger.Error("Failed to load models", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{"message": "An unexpected error occurred", "type": "server_error"},
		})
		return
	}

	h.logger.Debug("Returning models", "count", len(records))
	c.JSON(http.StatusOK, openai.NewModelList(records))
}
