package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"RegScanner/internal/ports"
)

const anthropicVersion = "2023-06-01"

// AnthropicClient speaks the Messages API shape.
type AnthropicClient struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
}

var _ ports.Provider = (*AnthropicClient)(nil)

// NewAnthropicClient builds a client against the production endpoint.
func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{
		endpoint: "https://api.anthropic.com/v1/messages",
		apiKey:   apiKey,
		model:    "claude-3-5-haiku-20241022",
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Name identifies the provider in logs and model chains.
func (c *AnthropicClient) Name() string { return "anthropic" }

// DefaultModel is the model used when the request names none.
func (c *AnthropicClient) DefaultModel() string { return c.model }

// MinInterval spaces classification calls.
func (c *AnthropicClient) MinInterval() time.Duration { return 1200 * time.Millisecond }

// Complete posts one Messages request and returns the first content block.
func (c *AnthropicClient) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}

	body, err := json.Marshal(map[string]any{
		"model":       model,
		"max_tokens":  maxTokens,
		"temperature": req.Temperature,
		"system":      req.System,
		"messages": []map[string]string{
			{"role": "user", "content": req.User},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal anthropic payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &APIError{Provider: c.Name(), Status: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}

	var parsed struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode anthropic response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("empty anthropic response")
	}

	return parsed.Content[0].Text, nil
}
