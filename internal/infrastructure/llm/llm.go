// Package llm implements the AI provider clients: the Anthropic Messages
// shape and the OpenAI-compatible chat-completions shape used by the other
// three endpoints. Every client reduces the wire response to the first
// message content.
package llm

import (
	"fmt"
	"time"

	"RegScanner/internal/ports"
)

// APIError reports a non-2xx provider response; the classification service
// branches on Status.
type APIError struct {
	Provider string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.Status, e.Body)
}

// Credentials carries the configured provider keys. Selection is a pure
// function over this struct; nothing here reads the environment.
type Credentials struct {
	AnthropicKey  string
	DeepSeekKey   string
	OpenRouterKey string
	GroqKey       string
}

// ErrNoProvider means no credential is configured; callers fall back to
// rule-based analysis.
var ErrNoProvider = fmt.Errorf("no AI provider configured")

// Select returns the first configured provider in fixed priority order:
// Anthropic, DeepSeek, OpenRouter, Groq-compatible.
func Select(creds Credentials) (ports.Provider, error) {
	switch {
	case creds.AnthropicKey != "":
		return NewAnthropicClient(creds.AnthropicKey), nil
	case creds.DeepSeekKey != "":
		return NewOpenAICompatClient("deepseek",
			"https://api.deepseek.com/v1/chat/completions",
			creds.DeepSeekKey, "deepseek-chat", 1500*time.Millisecond), nil
	case creds.OpenRouterKey != "":
		return NewOpenAICompatClient("openrouter",
			"https://openrouter.ai/api/v1/chat/completions",
			creds.OpenRouterKey, "anthropic/claude-3.5-haiku", 2*time.Second), nil
	case creds.GroqKey != "":
		// The Groq-compatible path runs on a stricter free tier.
		return NewOpenAICompatClient("groq",
			"https://api.groq.com/openai/v1/chat/completions",
			creds.GroqKey, "llama-3.3-70b-versatile", 6*time.Second), nil
	default:
		return nil, ErrNoProvider
	}
}
