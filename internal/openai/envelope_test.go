package openai

import (
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"

	"ollamagate/internal/model"
)

func TestNewCompletionID(t *testing.T) {
	id := NewCompletionID()
	assert.True(t, strings.HasPrefix(id, "chatcmpl-"))
	assert.Len(t, id, len("chatcmpl-")+8)
	assert.NotEqual(t, id, NewCompletionID())
}

func TestEnsureSystemMessage(t *testing.T) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "hi"},
	}
	out := EnsureSystemMessage(messages)
	assert.Len(t, out, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, out[0].Role)
	assert.Equal(t, DefaultSystemMessage, out[0].Content)

	// An existing system message is kept as-is.
	custom := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: "be terse"},
		{Role: openai.ChatMessageRoleUser, Content: "hi"},
	}
	out = EnsureSystemMessage(custom)
	assert.Len(t, out, 2)
	assert.Equal(t, "be terse", out[0].Content)
}

func TestFlattenPrompt(t *testing.T) {
	messages := []openai.ChatCompletionMessage{
		{Role: "system", Content: "be helpful"},
		{Role: "user", Content: "what is Go?"},
	}
	prompt := FlattenPrompt(messages)
	assert.Equal(t, "System: be helpful\nUser: what is Go?", prompt)
}

func TestCountTokens(t *testing.T) {
	assert.Equal(t, 0, CountTokens(""))
	assert.Equal(t, 1, CountTokens("hi"))
	assert.Equal(t, 3, CountTokens("hello world!"))
}

func TestChatRequestDefaults(t *testing.T) {
	req := ChatRequest{}
	assert.Equal(t, 1.0, req.TemperatureOrDefault())
	assert.Equal(t, 2048, req.MaxTokensOrDefault())
	assert.Equal(t, 1.0, req.TopPOrDefault())
	assert.False(t, req.JSONMode())

	temp := 0.2
	maxTokens := 64
	req = ChatRequest{
		Temperature: &temp,
		MaxTokens:   &maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	assert.Equal(t, 0.2, req.TemperatureOrDefault())
	assert.Equal(t, 64, req.MaxTokensOrDefault())
	assert.True(t, req.JSONMode())
}

func TestNewChatResponse(t *testing.T) {
	resp := NewChatResponse("llama3", "answer", NewUsage(10, 5))
	assert.Equal(t, "chat.completion", resp.Object)
	assert.Equal(t, "llama3", resp.Model)
	assert.Len(t, resp.Choices, 1)
	assert.Equal(t, openai.ChatMessageRoleAssistant, resp.Choices[0].Message.Role)
	assert.Equal(t, "answer", resp.Choices[0].Message.Content)
	assert.Equal(t, "stop", resp.Choices[0].FinishReason)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestNewChatChunk(t *testing.T) {
	chunk := NewChatChunk("llama3", "de", NewUsage(10, 1), nil)
	assert.Equal(t, "chat.completion.chunk", chunk.Object)
	assert.Equal(t, "de", chunk.Choices[0].Delta.Content)
	assert.Nil(t, chunk.Choices[0].FinishReason)

	stop := "stop"
	chunk = NewChatChunk("llama3", "", NewUsage(10, 4), &stop)
	assert.Equal(t, "stop", *chunk.Choices[0].FinishReason)
}

func TestNewModelList(t *testing.T) {
	records := []model.LLMModel{
		{
			ID:              "llama3",
			OwnedBy:         "ollama",
			Root:            "llama3",
			Description:     "general",
			Strengths:       "chat",
			PricePrompt:     0.001,
			PriceCompletion: 0.002,
		},
	}
	list := NewModelList(records)
	assert.Equal(t, "list", list.Object)
	assert.Len(t, list.Data, 1)
	assert.Equal(t, "model", list.Data[0].Object)
	assert.Equal(t, 0.001, list.Data[0].Price.Prompt)
	assert.Equal(t, 0.002, list.Data[0].Price.Completion)
}
