package payment

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy retries transient gateway failures with exponential backoff.
// It is applied only around gateway HTTP calls, never around the atomic
// ledger write: that step is idempotent, not blindly re-run.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	// Retryable decides whether an error is worth another attempt. Defaults
	// to IsTransient.
	Retryable func(error) bool
	Logger    *zap.Logger
}

// RetryResult reports how an operation fared under the policy.
type RetryResult struct {
	Success  bool
	Attempts int
	Err      error
}

// Execute runs op until it succeeds, returns a non-retryable error, or the
// retry budget is spent. The backoff doubles from BaseDelay on each attempt.
func (p RetryPolicy) Execute(ctx context.Context, op func(ctx context.Context) error) RetryResult {
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxRetries+1; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return RetryResult{Success: true, Attempts: attempt}
		}
		if !retryable(lastErr) || attempt > p.MaxRetries {
			return RetryResult{Attempts: attempt, Err: lastErr}
		}

		delay := p.BaseDelay << (attempt - 1)
		if p.Logger != nil {
			p.Logger.Warn("retrying gateway call",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
		}
		select {
		case <-ctx.Done():
			return RetryResult{Attempts: attempt, Err: ctx.Err()}
		case <-time.After(delay):
		}
	}
	return RetryResult{Attempts: p.MaxRetries + 1, Err: lastErr}
}
