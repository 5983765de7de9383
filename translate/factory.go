package translate

import (
	"context"

	"github.com/phoaar/cacv-bulletin-automation/config"
)

// NewBackendFromConfig picks Anthropic when its key is set, then Gemini.
// It returns a nil Backend when neither is configured.
func NewBackendFromConfig(ctx context.Context, cfg config.Config) (Backend, error) {
	switch {
	case cfg.AnthropicAPIKey != "":
		return NewAnthropicBackend(AnthropicConfig{
			APIKey: cfg.AnthropicAPIKey,
			Model:  cfg.AnthropicModel,
		}), nil
	case cfg.GeminiAPIKey != "":
		g, err := NewGeminiBackend(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, "")
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, nil
	}
}
