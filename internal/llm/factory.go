package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/studyloop/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with the
// standard middleware: caller → retry → timeout → logging → base.
// eventRepo may be nil, in which case requests are not recorded.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *zap.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	p := base
	if eventRepo != nil {
		p = WithLogging(p, eventRepo, logger)
	}
	p = WithTimeout(p, cfg.Timeout)
	p = WithRetry(p, cfg.Retry)
	return p, nil
}

// NewProviderFromEnv discovers configuration from the environment. Explicit
// STUDYLOOP_* settings win over the generic vendor API key variables.
func NewProviderFromEnv(ctx context.Context, eventRepo store.EventRepo, logger *zap.Logger) (Provider, error) {
	cfg := ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		discovered, ok := DiscoverConfig()
		if !ok {
			return nil, err
		}
		cfg = discovered
		cfg.ApplyEnv()
	}
	return NewProvider(ctx, cfg, eventRepo, logger)
}
