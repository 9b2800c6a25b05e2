package handlers

import (
	"log/slog"

	"ollamagate/internal/db"
	"ollamagate/internal/ollama"
)

// Handler carries the dependencies of the public /v1 surface.
type Handler struct {
	db           db.Service
	ollama       *ollama.Client
	defaultModel string
	logger       *slog.Logger
}

// New creates the /v1 handler set.
func New(dbService db.Service, client *ollama.Client, defaultModel string, logger *slog.Logger) *Handler {
	return &Handler{
		db:           dbService,
		ollama:       client,
		defaultModel: defaultModel,
		logger:       logger.With("component", "handlers"),
	}
}
