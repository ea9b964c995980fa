package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// RetryPolicy bounds how often and how patiently a call is repeated.
type RetryPolicy struct {
	Attempts int
	// Base is the first wait; each later wait doubles, capped at Max.
	Base time.Duration
	Max  time.Duration
}

// DefaultRetryPolicy allows three attempts with waits of about 1s and 2s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Base: time.Second, Max: 8 * time.Second}
}

// delay is the wait before retry number n (0-based), with up to 20% jitter
// either way.
func (p RetryPolicy) delay(n int) time.Duration {
	d := p.Base << n
	if d <= 0 || d > p.Max {
		d = p.Max
	}
	spread := float64(d) * 0.2
	return d + time.Duration(spread*(2*rand.Float64()-1))
}

type retrying struct {
	next   Provider
	policy RetryPolicy
}

// WithRetry repeats failed calls. Cancellation is never retried and an
// empty reply is retried once. A rate limit with a RetryAfter hint waits
// that long instead of the policy delay.
func WithRetry(p Provider, policy RetryPolicy) Provider {
	policy.Attempts = max(policy.Attempts, 1)
	return &retrying{next: p, policy: policy}
}

func (r *retrying) ModelID() string { return r.next.ModelID() }

func (r *retrying) Generate(ctx context.Context, req Request) (*Response, error) {
	var err error
	emptySeen := false
	for n := range r.policy.Attempts {
		var resp *Response
		resp, err = r.next.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if kind, ok := KindOf(err); ok && kind == KindEmpty {
			if emptySeen {
				break
			}
			emptySeen = true
		}
		if n == r.policy.Attempts-1 {
			break
		}

		wait := r.policy.delay(n)
		var perr *Error
		if errors.As(err, &perr) && perr.RetryAfter > 0 {
			wait = perr.RetryAfter
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	return nil, err
}
