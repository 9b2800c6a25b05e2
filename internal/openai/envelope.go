package openai

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
	"unicode"

	"github.com/sashabaranov/go-openai"
)

// DefaultSystemMessage is prepended when the caller supplies no system
// message of their own.
const DefaultSystemMessage = "You are a helpful AI assistant."

// NewCompletionID mints a chatcmpl- identifier.
func NewCompletionID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return "chatcmpl-" + hex.EncodeToString(b)
}

// EnsureSystemMessage prepends the default system message if the
// conversation contains none.
func EnsureSystemMessage(messages []openai.ChatCompletionMessage) []openai.ChatCompletionMessage {
	for _, m := range messages {
		if m.Role == openai.ChatMessageRoleSystem {
			return messages
		}
	}
	withSystem := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	withSystem = append(withSystem, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: DefaultSystemMessage,
	})
	return append(withSystem, messages...)
}

// FlattenPrompt renders a conversation as the single prompt string Ollama's
// generate API expects: one "Role: content" line per message.
func FlattenPrompt(messages []openai.ChatCompletionMessage) string {
	var sb strings.Builder
	for _, m := range messages {
		sb.WriteString(capitalize(m.Role))
		sb.WriteString(": ")
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// CountTokens estimates the token count of text. This is an approximation
// (roughly four characters per token for English); Ollama does not bill,
// so usage numbers are advisory.
func CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}

// NewUsage assembles a usage block from prompt and completion counts.
func NewUsage(promptTokens, completionTokens int) openai.Usage {
	return openai.Usage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
	}
}

// NewChatResponse wraps a full completion in the chat.completion envelope.
func NewChatResponse(model, content string, usage openai.Usage) ChatResponse {
	return ChatResponse{
		ID:      NewCompletionID(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []ChatChoice{
			{
				Index: 0,
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: content,
				},
				FinishReason: "stop",
			},
		},
		Usage: usage,
	}
}

// NewChatChunk wraps one streamed delta in the chat.completion.chunk
// envelope. finishReason stays null for interim chunks.
func NewChatChunk(model, content string, usage openai.Usage, finishReason *string) ChatChunk {
	return ChatChunk{
		ID:      NewCompletionID(),
		Object:  "chat.completion.chunk",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []ChunkChoice{
			{
				Index:        0,
				Delta:        openai.ChatCompletionStreamChoiceDelta{Content: content},
				FinishReason: finishReason,
			},
		},
		Usage: usage,
	}
}
