package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ProviderFactory builds a provider bound to one API key and model.
type ProviderFactory func(ctx context.Context, apiKey, model string) (Provider, error)

// maxKeyAttempts bounds how many keys one model is tried with per call.
const maxKeyAttempts = 3

// RotatingProvider spreads calls over a KeyPool and a list of models. A
// rate-limited key is marked in the pool and the call moves to another key;
// any other failure moves on to the next model.
type RotatingProvider struct {
	pool    *KeyPool
	models  []string
	factory ProviderFactory
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string]Provider
}

// WithKeyRotation creates a RotatingProvider. models must not be empty.
func WithKeyRotation(pool *KeyPool, models []string, factory ProviderFactory, logger *slog.Logger) *RotatingProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &RotatingProvider{
		pool:    pool,
		models:  models,
		factory: factory,
		logger:  logger,
		cache:   make(map[string]Provider),
	}
}

func (r *RotatingProvider) provider(ctx context.Context, key, model string) (Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := model + "\x00" + key
	if p, ok := r.cache[id]; ok {
		return p, nil
	}
	p, err := r.factory(ctx, key, model)
	if err != nil {
		return nil, err
	}
	r.cache[id] = p
	return p, nil
}

func (r *RotatingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if len(r.models) == 0 {
		return nil, &Error{Kind: KindUnavailable, Err: errors.New("no models configured")}
	}

	attempts := min(max(r.pool.Size(), 1), maxKeyAttempts)
	var lastErr error

	for _, model := range r.models {
		for range attempts {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			key := r.pool.Acquire()
			p, err := r.provider(ctx, key, model)
			if err != nil {
				lastErr = fmt.Errorf("create provider for %s: %w", model, err)
				break
			}

			resp, err := p.Generate(ctx, req)
			if err == nil {
				return resp, nil
			}
			lastErr = err

			if IsRateLimited(err) {
				r.pool.MarkLimited(key)
				r.logger.Warn("llm key rate limited", "model", model)
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			break
		}
		r.logger.Warn("llm model failed, trying next", "model", model, "error", lastErr)
	}

	return nil, lastErr
}

// ModelID returns the first model in the fallback order.
func (r *RotatingProvider) ModelID() string {
	if len(r.models) == 0 {
		return ""
	}
	return r.models[0]
}
