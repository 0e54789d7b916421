package llm

import (
	"context"
	"errors"
	"time"
)

type timeoutProvider struct {
	inner Provider
	after time.Duration
}

// WithTimeout bounds every Generate call to d. A call that runs out of time
// fails with *ErrTimeout. A non-positive d returns p unchanged.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &timeoutProvider{inner: p, after: d}
}

func (t *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.after)
	defer cancel()

	resp, err := t.inner.Generate(callCtx, req)
	if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return nil, &ErrTimeout{After: t.after, Err: err}
	}
	return resp, err
}

func (t *timeoutProvider) ModelID() string {
	return t.inner.ModelID()
}
