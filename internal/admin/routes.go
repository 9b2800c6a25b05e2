package admin

import (
	"github.com/gin-gonic/gin"

	"ollamagate/internal/auth"
	"ollamagate/internal/config"
	"ollamagate/internal/db"
)

func SetupRoutes(router *gin.Engine, dbService db.Service, cfg *config.Config) {
	handler := NewHandler(dbService)

	adminGroup := router.Group("/admin")
	adminGroup.Use(auth.AdminMiddleware(cfg.Admin.Password))
	{
		keysGroup := adminGroup.Group("/api-keys")
		{
			keysGroup.GET("", handler.ListAPIKeysHandler)
			keysGroup.POST("", handler.CreateAPIKeyHandler)
			keysGroup.DELETE("/:id", handler.DeactivateAPIKeyHandler)
		}

		modelsGroup := adminGroup.Group("/models")
		{
			modelsGroup.GET("", handler.ListModelsHandler)
			modelsGroup.POST("", handler.CreateModelHandler)
			modelsGroup.PUT("/:id", handler.UpdateModelHandler)
			modelsGroup.DELETE("/:id", handler.DeleteModelHandler)
		}

		accessGroup := adminGroup.Group("/access")
		{
			accessGroup.POST("", handler.GrantAccessHandler)
			accessGroup.DELETE("", handler.RevokeAccessHandler)
		}
	}
}
