package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultInitialInterval = 100 * time.Millisecond
	defaultMaxInterval     = 3 * time.Second
	defaultMaxAttempts     = 3
)

// Policy bounds retries of a transient operation: exponential backoff with
// randomized jitter, capped at MaxAttempts total attempts.
type Policy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxAttempts     uint64
}

// Do runs op until it succeeds, returns a permanent error, the context ends,
// or the attempt budget is exhausted. The last error is returned unchanged.
func (p Policy) Do(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	if b.InitialInterval <= 0 {
		b.InitialInterval = defaultInitialInterval
	}
	b.MaxInterval = p.MaxInterval
	if b.MaxInterval <= 0 {
		b.MaxInterval = defaultMaxInterval
	}
	b.MaxElapsedTime = 0

	attempts := p.MaxAttempts
	if attempts == 0 {
		attempts = defaultMaxAttempts
	}
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, attempts-1), ctx))
}

// Permanent marks err as non-retryable so Do stops immediately and propagates
// it. A nil error stays nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}
