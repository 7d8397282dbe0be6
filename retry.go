package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// OnRetry observes a scheduled retry. It is called with the failure message,
// the computed backoff delay and the attempt number immediately before each
// sleep. It must not panic and cannot influence the retry decision.
type OnRetry func(message string, delay time.Duration, attempt int)

// Retry invokes op until it succeeds, fails fatally, or exhausts the retry
// budget carried by its errors.
//
// Only *ModelError failures participate in retrying. A ModelError with
// RetryOptions schedules another attempt after a geometrically growing delay
// (the previous delay times Factor, seeded with Sleep); a ModelError without
// them fails immediately, wrapped with its rendering; and any other error is
// returned to the caller unchanged, with no hook call and no sleep.
//
// The budget check happens after the sleep, so the final give-up still
// reports its delay through onRetry and pays for it before the exhaustion
// error is returned. Callers relying on Retries=0 therefore see exactly one
// retry attempt (two invocations of op) before the call fails.
//
// op must be safe to invoke repeatedly. Cancelling ctx aborts the loop
// during the backoff sleep (op is expected to honor ctx itself); the
// cancellation error is surfaced as-is.
func Retry[O any](ctx context.Context, op func(ctx context.Context) (O, error), onRetry OnRetry) (O, error) {
	var zero O

	attempts := 0
	first := true
	var delay time.Duration

	for {
		out, err := op(ctx)
		if err == nil {
			return out, nil
		}

		var merr *ModelError
		if !errors.As(err, &merr) {
			return zero, err
		}
		if merr.Retry == nil {
			return zero, fmt.Errorf("model call failed: %w", merr)
		}

		opts := *merr.Retry
		attempts++
		if first {
			delay = opts.Sleep
			first = false
		} else {
			delay *= time.Duration(opts.Factor)
		}

		if onRetry != nil {
			onRetry(merr.Message, delay, attempts)
		}
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}

		if attempts > opts.Retries {
			args := []any{"error", merr.Message}
			if merr.RequestID != "" {
				args = append(args, "request_id", merr.RequestID)
			}
			slog.Error("failed to query model", args...)
			return zero, fmt.Errorf("too many retries (%d): %w", opts.Retries, merr)
		}
	}
}

// sleep blocks for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
