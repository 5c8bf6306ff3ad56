package insight

import (
	"context"
	"fmt"
)

// Client produces a completion for a single prompt.
type Client interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// ProviderConfig selects and configures the completion backend.
type ProviderConfig struct {
	Provider string // anthropic, openai or none
	APIKey   string
	Model    string
	BaseURL  string // openai-compatible endpoints only
}

// NewClient builds a Client for the configured provider. Provider "none" (or
// empty) returns nil: insight generation then degrades to canned text.
func NewClient(cfg ProviderConfig) (Client, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicClient(cfg.APIKey, cfg.Model), nil
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown insight provider: %s", cfg.Provider)
	}
}
