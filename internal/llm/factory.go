package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/trustie/internal/model"
)

// NewBackend creates a backend based on configuration.
// Missing or unknown providers and missing API keys wrap model.ErrConfiguration.
func NewBackend(config Config) (Backend, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Provider))

	switch provider {
	case "anthropic", "claude":
		return NewAnthropicBackend(config)

	case "openai":
		return NewOpenAIBackend(config)

	case "ollama":
		return NewOllamaBackend(config)

	case "":
		return nil, fmt.Errorf("%w: no backend provider configured", model.ErrConfiguration)

	default:
		return nil, fmt.Errorf("%w: unknown backend provider: %s (supported: anthropic, openai, ollama)", model.ErrConfiguration, config.Provider)
	}
}

// ConfigFromModel converts model.BackendConfig to llm.Config
func ConfigFromModel(c model.BackendConfig) Config {
	return Config{
		Provider:    c.Provider,
		Model:       c.Model,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Timeout:     c.Timeout,
		MaxTokens:   c.MaxTokens,
		MaxSearches: c.MaxSearch,
		HTTPProxy:   c.HTTPProxy,
		HTTPSProxy:  c.HTTPSProxy,
	}
}
