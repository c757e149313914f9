package llm

import (
	"context"
	"time"
)

// Backend is the external reasoning and retrieval service.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Name returns the provider name
	Name() string

	// Complete submits one prompt and returns the concatenated text reply
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Request is a single prompt submission
type Request struct {
	// Purpose labels the call for logs and metrics (extract, retrieve, adjudicate, answer, rephrase)
	Purpose string

	// System is an optional system instruction
	System string

	// Prompt is the user turn
	Prompt string

	// Model overrides the configured model
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// WebSearch asks the provider to ground the reply with a web search tool.
	// Providers without one answer from the model alone.
	WebSearch bool

	// MaxSearches caps web search tool uses for this call
	MaxSearches int
}

// Response is the backend's reply
type Response struct {
	Text       string // All text blocks, concatenated in order
	Model      string
	TokensUsed int
	Searches   int // Web search tool uses reported by the provider
}

// BackendFunc adapts a plain function to the Backend interface
type BackendFunc func(ctx context.Context, req Request) (*Response, error)

// Name returns "func"
func (f BackendFunc) Name() string {
	return "func"
}

// Complete calls f
func (f BackendFunc) Complete(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// Config holds backend provider configuration
type Config struct {
	// Provider name: "anthropic", "openai", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for a single API request
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int

	// MaxSearches is the default web search budget per call
	MaxSearches int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "anthropic",
		Model:       "claude-sonnet-4-20250514",
		Timeout:     60 * time.Second,
		MaxTokens:   2000,
		MaxSearches: 3,
	}
}

func (c Config) timeout(fallback time.Duration) time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return fallback
}

func pickModel(req Request, config Config, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	if config.Model != "" {
		return config.Model
	}
	return fallback
}

func pickMaxTokens(req Request, config Config) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if config.MaxTokens > 0 {
		return config.MaxTokens
	}
	return 1000
}
