package openai

import (
	"github.com/sashabaranov/go-openai"

	"ollamagate/internal/model"
)

// ChatRequest is the accepted body of POST /v1/chat/completions.
type ChatRequest struct {
	Model          string                               `json:"model"`
	Messages       []openai.ChatCompletionMessage       `json:"messages"`
	Temperature    *float64                             `json:"temperature,omitempty"`
	MaxTokens      *int                                 `json:"max_tokens,omitempty"`
	TopP           *float64                             `json:"top_p,omitempty"`
	Stream         bool                                 `json:"stream,omitempty"`
	ResponseFormat *openai.ChatCompletionResponseFormat `json:"response_format,omitempty"`
}

// JSONMode reports whether the caller asked for a JSON object response.
func (r *ChatRequest) JSONMode() bool {
	return r.ResponseFormat != nil && r.ResponseFormat.Type == openai.ChatCompletionResponseFormatTypeJSONObject
}

// TemperatureOrDefault returns the requested temperature, defaulting to 1.0.
func (r *ChatRequest) TemperatureOrDefault() float64 {
	if r.Temperature != nil {
		return *r.Temperature
	}
	return 1.0
}

// MaxTokensOrDefault returns the requested completion cap, defaulting to 2048.
func (r *ChatRequest) MaxTokensOrDefault() int {
	if r.MaxTokens != nil {
		return *r.MaxTokens
	}
	return 2048
}

// TopPOrDefault returns the requested top_p, defaulting to 1.0.
func (r *ChatRequest) TopPOrDefault() float64 {
	if r.TopP != nil {
		return *r.TopP
	}
	return 1.0
}

// ChatChoice is a completed choice in a chat.completion envelope.
type ChatChoice struct {
	Index        int                          `json:"index"`
	Message      openai.ChatCompletionMessage `json:"message"`
	FinishReason string                       `json:"finish_reason"`
}

// ChatResponse is the chat.completion envelope.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   openai.Usage `json:"usage"`
}

// ChunkChoice is a streamed delta choice. FinishReason is null until the
// final chunk.
type ChunkChoice struct {
	Index        int                                    `json:"index"`
	Delta        openai.ChatCompletionStreamChoiceDelta `json:"delta"`
	FinishReason *string                                `json:"finish_reason"`
}

// ChatChunk is the chat.completion.chunk envelope for SSE streaming.
type ChatChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
	Usage   openai.Usage  `json:"usage"`
}

// ModelPrice carries the per-token pricing extension on model objects.
type ModelPrice struct {
	Prompt     float64 `json:"prompt"`
	Completion float64 `json:"completion"`
}

// ModelObject is one entry of the GET /v1/models response. It follows
// OpenAI's model shape plus the description/strengths/price extensions.
type ModelObject struct {
	ID          string     `json:"id"`
	Object      string     `json:"object"`
	Created     int64      `json:"created"`
	OwnedBy     string     `json:"owned_by"`
	Permission  string     `json:"permission"`
	Root        string     `json:"root"`
	Parent      string     `json:"parent"`
	Description string     `json:"description"`
	Strengths   string     `json:"strengths"`
	Price       ModelPrice `json:"price"`
}

// ModelList is the OpenAI list envelope.
type ModelList struct {
	Object string        `json:"object"`
	Data   []ModelObject `json:"data"`
}

// ModelFromRecord shapes a database row into the wire model object.
func ModelFromRecord(m model.LLMModel) ModelObject {
	obj := ModelObject{
		ID:          m.ID,
		Object:      m.Object,
		Created:     m.Created,
		OwnedBy:     m.OwnedBy,
		Permission:  m.Permission,
		Root:        m.Root,
		Parent:      m.Parent,
		Description: m.Description,
		Strengths:   m.Strengths,
		Price: ModelPrice{
			Prompt:     m.PricePrompt,
			Completion: m.PriceCompletion,
		},
	}
	if obj.Object == "" {
		obj.Object = "model"
	}
	return obj
}

// NewModelList shapes database rows into the list envelope.
func NewModelList(records []model.LLMModel) ModelList {
	data := make([]ModelObject, len(records))
	for i, m := range records {
		data[i] = ModelFromRecord(m)
	}
	return ModelList{Object: "list", Data: data}
}
