// Package provider turns configuration into an llm.Factory for bare model names.
package provider

import (
	"fmt"

	"github.com/MikeSquared-Agency/prefsd/internal/anthropic"
	"github.com/MikeSquared-Agency/prefsd/internal/config"
	"github.com/MikeSquared-Agency/prefsd/internal/llm"
	"github.com/MikeSquared-Agency/prefsd/internal/openai"
)

// NewFactory returns a factory that builds clients for cfg.Provider.
func NewFactory(cfg config.Config) llm.Factory {
	return func(name string) (llm.Completer, error) {
		switch cfg.Provider {
		case config.ProviderOpenAI:
			// Local OpenAI-compatible servers run without a key.
			if cfg.OpenAIAPIKey == "" && cfg.OpenAIBaseURL == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY is required")
			}
			return openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, name), nil
		case config.ProviderAnthropic:
			if cfg.AnthropicAPIKey == "" {
				return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
			}
			return anthropic.NewClient(cfg.AnthropicAPIKey, name), nil
		default:
			return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
		}
	}
}
