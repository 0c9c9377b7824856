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

// OpenAICompatClient speaks the chat-completions shape shared by DeepSeek,
// OpenRouter and the Groq-compatible path.
type OpenAICompatClient struct {
	name     string
	endpoint string
	apiKey   string
	model    string
	interval time.Duration
	http     *http.Client
}

var _ ports.Provider = (*OpenAICompatClient)(nil)

// NewOpenAICompatClient builds a client for one chat-completions endpoint.
func NewOpenAICompatClient(name, endpoint, apiKey, model string, interval time.Duration) *OpenAICompatClient {
	return &OpenAICompatClient{
		name:     name,
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		interval: interval,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Name identifies the provider in logs and model chains.
func (c *OpenAICompatClient) Name() string { return c.name }

// DefaultModel is the model used when the request names none.
func (c *OpenAICompatClient) DefaultModel() string { return c.model }

// MinInterval spaces classification calls.
func (c *OpenAICompatClient) MinInterval() time.Duration { return c.interval }

// Complete posts one chat-completions request and returns
// choices[0].message.content.
func (c *OpenAICompatClient) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
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
		"temperature": req.Temperature,
		"max_tokens":  maxTokens,
		"messages": []map[string]string{
			{"role": "system", "content": req.System},
			{"role": "user", "content": req.User},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal %s payload: %w", c.name, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%s request: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &APIError{Provider: c.name, Status: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode %s response: %w", c.name, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty %s response", c.name)
	}

	return parsed.Choices[0].Message.Content, nil
}

// WithEndpoint overrides the endpoint; used by tests pointing at a local
// server.
func (c *OpenAICompatClient) WithEndpoint(endpoint string) *OpenAICompatClient {
	c.endpoint = endpoint
	return c
}
