package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"ollamagate/internal/auth"
	"ollamagate/internal/model"
	"ollamagate/internal/ollama"
	"ollamagate/internal/openai"
)

// ChatCompletions handles POST /v1/chat/completions. The caller is already
// authenticated; this adds the per-model authorization check, forwards the
// conversation to Ollama, and reshapes the answer into the OpenAI envelope.
func (h *Handler) ChatCompletions(c *gin.Context) {
	apiKey, ok := auth.KeyFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing API key"})
		return
	}

	var req openai.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Model == "" {
		req.Model = h.defaultModel
	}

	allowed, err := h.db.HasModelAccess(apiKey.Key, req.Model)
	if err != nil {
		h.logger.Error("Model access check failed", "model", req.Model, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !allowed {
		h.logger.Warn("Access denied for model", "model", req.Model, "user_id", apiKey.UserID)
		c.JSON(http.StatusForbidden, gin.H{"error": fmt.Sprintf("You do not have access to the model: %s", req.Model)})
		return
	}

	messages := openai.EnsureSystemMessage(req.Messages)
	prompt := openai.FlattenPrompt(messages)
	promptTokens := openai.CountTokens(prompt)

	genReq := ollama.GenerateRequest{
		Model:  req.Model,
		Prompt: prompt,
		Options: &ollama.Options{
			Temperature: req.TemperatureOrDefault(),
			TopP:        req.TopPOrDefault(),
			NumPredict:  req.MaxTokensOrDefault(),
		},
	}
	if req.JSONMode() {
		genReq.Format = "json"
	}

	// Usage counting must not block the completion path.
	go func(key string) {
		if err := h.db.IncrementAPIKeyUsageCount(key); err != nil {
			h.logger.Warn("Failed to increment usage count", "error", err)
		}
	}(apiKey.Key)

	if req.Stream {
		h.streamChatCompletion(c, apiKey, req, genReq, promptTokens)
		return
	}

	chunk, err := h.ollama.Generate(c.Request.Context(), genReq)
	if err != nil {
		h.logger.Error("Upstream generate failed", "model", req.Model, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream model server error"})
		return
	}

	usage := openai.NewUsage(promptTokens, openai.CountTokens(chunk.Response))
	c.JSON(http.StatusOK, openai.NewChatResponse(req.Model, chunk.Response, usage))
}

// streamChatCompletion relays Ollama's NDJSON chunks as OpenAI SSE chunks,
// terminated by a finish chunk and the [DONE] sentinel.
func (h *Handler) streamChatCompletion(c *gin.Context, apiKey *model.APIKey, req openai.ChatRequest, genReq ollama.GenerateRequest, promptTokens int) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	completionTokens := 0
	wroteChunk := false

	err := h.ollama.GenerateStream(c.Request.Context(), genReq, func(chunk ollama.GenerateChunk) error {
		if chunk.Done && chunk.Response == "" {
			return nil
		}
		completionTokens += openai.CountTokens(chunk.Response)
		usage := openai.NewUsage(promptTokens, completionTokens)

		data, err := json.Marshal(openai.NewChatChunk(req.Model, chunk.Response, usage, nil))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", data)
		flusher.Flush()
		wroteChunk = true
		return nil
	})
	if err != nil {
		h.logger.Error("Upstream stream failed", "model", req.Model, "user_id", apiKey.UserID, "error", err)
		if !wroteChunk {
			// Nothing sent yet, so a proper status can still go out.
			c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream model server error"})
			return
		}
		fmt.Fprintf(c.Writer, "data: {\"error\": \"upstream model server error\"}\n\n")
		flusher.Flush()
		return
	}

	finish := "stop"
	usage := openai.NewUsage(promptTokens, completionTokens)
	if data, err := json.Marshal(openai.NewChatChunk(req.Model, "", usage, &finish)); err == nil {
		fmt.Fprintf(c.Writer, "data: %s\n\n", data)
	}
	fmt.Fprintf(c.Writer, "data: [DONE]\n\n")
	flusher.Flush()
}
