package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studydeck/studydeck/internal/store"
)

// NewProvider builds the provider stack for cfg. Every vendor call is
// recorded in events and retried per cfg.Retry. Gemini also rotates keys
// and falls back through models, recording each attempt separately.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, logger *slog.Logger) (Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderMock:
		return NewMockProvider(), nil
	case ProviderGemini:
		pool := NewKeyPool(cfg.Gemini.APIKey, cfg.Gemini.BackupKeys, cfg.Gemini.KeyCooldown)
		build := func(ctx context.Context, key, model string) (Provider, error) {
			p, err := NewGeminiProvider(ctx, key, model)
			if err != nil {
				return nil, err
			}
			return WithRecording(p, ProviderGemini, events, logger), nil
		}
		return WithRetry(WithKeyRotation(pool, cfg.Gemini.Models(), build, logger), cfg.Retry), nil
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return WithRetry(WithRecording(base, cfg.Provider, events, logger), cfg.Retry), nil
}
