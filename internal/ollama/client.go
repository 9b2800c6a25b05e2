package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to an Ollama server's native generate API.
type Client struct {
	BaseURL    string
	MaxRetries int
	HTTPClient *http.Client
}

// NewClient creates a client for the given Ollama base URL.
func NewClient(baseURL string, maxRetries int) *Client {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Client{
		BaseURL:    baseURL,
		MaxRetries: maxRetries,
		// No overall timeout: streamed generations can run for minutes.
		// Cancellation comes from the request context.
		HTTPClient: &http.Client{},
	}
}

// Options are the sampling parameters Ollama accepts per request.
type Options struct {
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// GenerateRequest is the payload for POST /api/generate.
type GenerateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Format  string   `json:"format,omitempty"`
	Options *Options `json:"options,omitempty"`
}

// GenerateChunk is one unit of Ollama output. In non-streaming mode the
// whole completion arrives as a single chunk with Done set; in streaming
// mode chunks arrive as NDJSON lines until a final Done one.
type GenerateChunk struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// UpstreamError reports a non-2xx answer from Ollama.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ollama returned status %d: %s", e.StatusCode, e.Body)
}

func (c *Client) post(ctx context.Context, payload GenerateRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}
	return resp, nil
}

// Generate runs a non-streaming completion, retrying transport failures
// up to MaxRetries times.
func (c *Client) Generate(ctx context.Context, genReq GenerateRequest) (*GenerateChunk, error) {
	genReq.Stream = false

	var lastErr error
	for attempt := 0; attempt < c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		resp, err := c.post(ctx, genReq)
		if err != nil {
			lastErr = err
			continue
		}

		var chunk GenerateChunk
		err = json.NewDecoder(resp.Body).Decode(&chunk)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to decode ollama response: %w", err)
			continue
		}
		return &chunk, nil
	}

	return nil, fmt.Errorf("ollama request failed after %d attempts: %w", c.MaxRetries, lastErr)
}

// GenerateStream runs a streaming completion. fn is called once per chunk
// in arrival order; returning an error from fn aborts the stream. No
// retries: once chunks have been delivered the stream cannot restart.
func (c *Client) GenerateStream(ctx context.Context, genReq GenerateRequest, fn func(GenerateChunk) error) error {
	genReq.Stream = true

	resp, err := c.post(ctx, genReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var chunk GenerateChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return fmt.Errorf("failed to parse streaming response: %w", err)
		}
		if err := fn(chunk); err != nil {
			return err
		}
		if chunk.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("ollama stream interrupted: %w", err)
	}
	return nil
}
