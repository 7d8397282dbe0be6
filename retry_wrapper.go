package providers

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryWrapper wraps a Client with a configured-upfront retry policy. It
// complements the Retry driver: the driver follows the per-failure
// RetryOptions a ModelError carries, while the wrapper applies one backoff
// schedule to every error its classifier deems retryable, including plain
// transport errors that never became ModelErrors.
type RetryWrapper[Req, Resp any] struct {
	client     Client[Req, Resp]
	config     *RetryConfig
	logger     *slog.Logger
	classifier ErrorClassifier
	stats      *retryStats
}

// retryStats tracks retry operation statistics.
type retryStats struct {
	mu             sync.RWMutex
	totalAttempts  int64
	totalRetries   int64
	totalSuccesses int64
	totalFailures  int64
	lastError      error
}

// NewRetryWrapper creates a new retry wrapper around a Client.
//
// Example:
//
//	wrapper := providers.NewRetryWrapper(
//	    client,
//	    providers.WithMaxAttempts(5),
//	    providers.WithGeometricBackoff(time.Second, 30*time.Second),
//	)
func NewRetryWrapper[Req, Resp any](
	client Client[Req, Resp],
	opts ...RetryOption,
) *RetryWrapper[Req, Resp] {
	config := DefaultRetryConfig()
	for _, opt := range opts {
		opt(config)
	}

	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	if config.Classifier == nil {
		config.Classifier = DefaultErrorClassifier()
	}

	return &RetryWrapper[Req, Resp]{
		client:     client,
		config:     config,
		logger:     config.Logger,
		classifier: config.Classifier,
		stats:      &retryStats{},
	}
}

// Call performs the request, retrying classifier-approved failures up to
// MaxAttempts times using the configured backoff strategy.
func (w *RetryWrapper[Req, Resp]) Call(ctx context.Context, req Req) (Resp, error) {
	var zero Resp

	if w.config.MaxAttempts <= 0 {
		return zero, errors.New("max attempts must be positive")
	}

	// Don't make any requests if the parent context is already done.
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	default:
	}

	var response Resp
	var attempts int

	err := retry.Do(ctx, w.backoff(), func(ctx context.Context) error {
		attempts++

		w.stats.mu.Lock()
		w.stats.totalAttempts++
		if attempts > 1 {
			w.stats.totalRetries++
		}
		w.stats.mu.Unlock()

		resp, err := w.client.Call(ctx, req)
		if err == nil {
			if attempts > 1 {
				w.logger.Info("request succeeded after retry",
					"attempts", attempts)
			}
			response = resp
			return nil
		}

		if !w.classifier.IsRetryable(err) {
			w.logger.Debug("non-retryable error, giving up",
				"error", err,
				"attempts", attempts)
			return err
		}

		w.logger.Debug("retrying request after delay",
			"attempt", attempts,
			"error", err)

		return retry.RetryableError(err)
	})
	if err != nil {
		w.logger.Warn("request failed after retries",
			"attempts", attempts,
			"error", err)
		w.stats.mu.Lock()
		w.stats.totalFailures++
		w.stats.lastError = err
		w.stats.mu.Unlock()
		return zero, err
	}

	w.stats.mu.Lock()
	w.stats.totalSuccesses++
	w.stats.mu.Unlock()

	return response, nil
}

// backoff builds the configured retry.Backoff. retry.Do counts the initial
// attempt, so MaxAttempts-1 is passed to WithMaxRetries.
func (w *RetryWrapper[Req, Resp]) backoff() retry.Backoff {
	maxRetries := w.config.MaxAttempts - 1
	if maxRetries < 0 {
		maxRetries = 0
	}

	switch w.config.Strategy {
	case StrategyConstant:
		delay := w.config.InitialDelay
		return retry.WithMaxRetries(uint64(maxRetries),
			retry.BackoffFunc(func() (time.Duration, bool) {
				return delay, false
			}))
	default:
		return retry.WithMaxRetries(uint64(maxRetries),
			retry.WithCappedDuration(w.config.MaxDelay, w.geometric()))
	}
}

// geometric compounds InitialDelay by Factor on every call, the same
// schedule the Retry driver derives from a ModelError's RetryOptions.
func (w *RetryWrapper[Req, Resp]) geometric() retry.Backoff {
	factor := w.config.Factor
	if factor < 1 {
		factor = 2
	}
	next := w.config.InitialDelay
	return retry.BackoffFunc(func() (time.Duration, bool) {
		d := next
		next *= time.Duration(factor)
		return d, false
	})
}

// RetryStats holds statistics about retry operations.
type RetryStats struct {
	// TotalAttempts is the total number of attempts made, including initial
	// attempts and retries.
	TotalAttempts int64

	// TotalRetries is the number of retry attempts, not counting initial
	// attempts.
	TotalRetries int64

	// TotalSuccesses is the number of successful operations.
	TotalSuccesses int64

	// TotalFailures is the number of operations that failed after all
	// retries were exhausted.
	TotalFailures int64

	// LastError is the last terminal error encountered, if any.
	LastError error
}

// GetRetryStats returns a snapshot of the wrapper's statistics. It is safe
// for concurrent use.
func (w *RetryWrapper[Req, Resp]) GetRetryStats() RetryStats {
	w.stats.mu.RLock()
	defer w.stats.mu.RUnlock()

	return RetryStats{
		TotalAttempts:  w.stats.totalAttempts,
		TotalRetries:   w.stats.totalRetries,
		TotalSuccesses: w.stats.totalSuccesses,
		TotalFailures:  w.stats.totalFailures,
		LastError:      w.stats.lastError,
	}
}
