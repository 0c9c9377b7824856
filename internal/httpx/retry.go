package httpx

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// RetryPolicy bounds the fetch retry loop. A nonzero Timeout caps each
// attempt; zero leaves the client's default in charge.
type RetryPolicy struct {
	Attempts int
	Base     time.Duration
	Timeout  time.Duration
}

// DefaultRetryPolicy matches the per-source defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Base: time.Second}
}

// Backoff returns the delay before retry attempt n (1-based):
// base * 2^(n-1) plus jitter up to half the base.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.Base * time.Duration(1<<(attempt-1))
	jitter := time.Duration(rand.Int63n(int64(p.Base)/2 + 1))
	return delay + jitter
}

// StatusError reports a non-200 response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

// Do runs fn up to policy.Attempts times with exponential backoff between
// failures. The terminal error wraps the last failure and is scoped to this
// call only.
func Do(ctx context.Context, policy RetryPolicy, fn func() error) error {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if policy.Base <= 0 {
		policy.Base = time.Second
	}

	var last error
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		last = fn()
		if last == nil {
			return nil
		}

		if attempt == policy.Attempts {
			break
		}

		select {
		case <-time.After(policy.Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("%d attempts exhausted: %w", policy.Attempts, last)
}
