package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"ollamagate/internal/admin"
	"ollamagate/internal/auth"
	"ollamagate/internal/config"
	"ollamagate/internal/db"
	"ollamagate/internal/handlers"
	"ollamagate/internal/logger"
	"ollamagate/internal/ollama"
	"ollamagate/internal/scheduler"
)

// customRecovery recovers from panics and handles http.ErrAbortHandler
// gracefully, which gin's default recovery logs as a full stack trace.
func customRecovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				if recovered == http.ErrAbortHandler {
					log.Warn("Client connection aborted", "path", c.Request.URL.Path)
					c.Abort()
					return
				}

				log.Error("Panic recovered",
					"error", recovered,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

func newRouter(cfg *config.Config, log *slog.Logger, dbService db.Service) *gin.Engine {
	router := gin.New()
	router.Use(customRecovery(log))
	if cfg.Debug {
		router.Use(gin.Logger())
	}

	client := ollama.NewClient(cfg.Ollama.BaseURL, cfg.Ollama.MaxRetries)
	h := handlers.New(dbService, client, cfg.Ollama.DefaultModel, log)

	router.GET("/health", h.Health)
	// Model listing takes an optional bearer key, so it sits outside the
	// authenticated group.
	router.GET("/v1/models", h.ListModels)
	router.POST("/v1/api_keys", h.CreateAPIKey)

	v1 := router.Group("/v1")
	v1.Use(auth.Middleware(dbService))
	v1.POST("/chat/completions", h.ChatCompletions)

	admin.SetupRoutes(router, dbService, cfg)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{"message": "Not found", "type": "invalid_request_error"},
		})
	})

	return router
}

func setupAndRunServer(cfg *config.Config, log *slog.Logger, dbService db.Service) error {
	router := newRouter(cfg, log, dbService)

	sched := scheduler.NewScheduler(dbService, log)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()
	log.Info("Scheduler started")

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-quit:
	}
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exiting")
	return nil
}

func main() {
	cfg, warning, err := config.LoadConfig("config.yaml")
	if err != nil {
		slog.Error("Error loading configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Debug)
	log.Info("Logger initialized", "debug_mode", cfg.Debug)
	if warning != "" {
		log.Warn(warning)
	}

	dbService, err := db.NewService(cfg.Database)
	if err != nil {
		log.Error("Error initializing database", "error", err)
		os.Exit(1)
	}
	log.Info("Database initialized", "type", cfg.Database.Type)

	if err := db.SeedModels(dbService, db.DefaultModels()); err != nil {
		log.Error("Error seeding model catalog", "error", err)
		os.Exit(1)
	}

	if err := setupAndRunServer(cfg, log, dbService); err != nil {
		log.Error("Server error", "error", err)
		os.Exit(1)
	}
}
