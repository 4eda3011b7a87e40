package llm

import (
	"context"
	"time"
)

// retryState is the explicit attempt/wait machine behind every transport
// call: Attempt(n) -> Wait(delay) -> Attempt(n+1) -> ... -> Exhausted.
// The attempt bound and the backoff multiplier are independent knobs.
type retryState struct {
	attempt     int
	maxAttempts int
	delay       time.Duration
	factor      float64
}

func newRetryState(maxRetries int, initialDelay time.Duration, factor float64) *retryState {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if initialDelay <= 0 {
		initialDelay = time.Second
	}
	if factor < 1 {
		factor = 2
	}
	return &retryState{
		maxAttempts: 1 + maxRetries,
		delay:       initialDelay,
		factor:      factor,
	}
}

// begin records the start of an attempt and reports whether the budget
// allows it.
func (r *retryState) begin() bool {
	if r.attempt >= r.maxAttempts {
		return false
	}
	r.attempt++
	return true
}

// wait sleeps the current backoff delay and advances it by the factor.
// It returns false when the context is canceled or the budget is spent,
// meaning the caller must give up.
func (r *retryState) wait(ctx context.Context) bool {
	if r.attempt >= r.maxAttempts {
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(r.delay):
	}
	r.delay = time.Duration(float64(r.delay) * r.factor)
	return true
}

// attempts reports how many attempts have started.
func (r *retryState) attempts() int { return r.attempt }
