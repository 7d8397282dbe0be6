package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/JohnPlummer/jp-go-errors"
)

// RetryOptions carries the backoff parameters attached to a retryable
// ModelError. Sleep seeds the first delay and every later delay is the
// previous one multiplied by Factor, so the schedule grows geometrically.
// Retries bounds the number of retry attempts made after the first failure;
// a Factor of 1 yields a constant delay.
type RetryOptions struct {
	Sleep   time.Duration
	Factor  int
	Retries int
}

// ModelError is the error backends return for failed remote calls. Retry is
// nil for fatal failures; when set, the Retry driver uses it to pace and
// bound further attempts. RequestID, when present, correlates the failure
// with the provider's own request logs.
type ModelError struct {
	Message   string
	Retry     *RetryOptions
	RequestID string
}

// Error renders the message together with whether the failure is retryable.
func (e *ModelError) Error() string {
	return fmt.Sprintf("[model_error(retryable=%t)] %s", e.Retry != nil, e.Message)
}

// NewModelError returns a fatal ModelError.
func NewModelError(format string, args ...any) *ModelError {
	return &ModelError{Message: fmt.Sprintf(format, args...)}
}

// NewRetryableModelError returns a ModelError carrying retry parameters.
func NewRetryableModelError(opts RetryOptions, format string, args ...any) *ModelError {
	return &ModelError{Message: fmt.Sprintf(format, args...), Retry: &opts}
}

// ErrorClassifier determines whether an error should trigger a retry.
// Implement this interface to customize RetryWrapper behavior for your
// specific error types.
type ErrorClassifier interface {
	// IsRetryable returns true if the error represents a transient failure
	// that should be retried.
	IsRetryable(err error) bool
}

// ModelErrorClassifier classifies errors the way the Retry driver does: a
// ModelError is retryable iff it carries RetryOptions. Errors that are not
// ModelErrors fall back to jp-go-errors sentinels and HTTP status codes, so
// RetryWrapper stays useful around plain transport clients too.
type ModelErrorClassifier struct {
	// RetryableStatuses lists HTTP status codes retried when the error is
	// not a ModelError. Defaults to 429, 500, 502, 503, 504 if nil.
	RetryableStatuses []int
}

// IsRetryable implements ErrorClassifier.
func (c *ModelErrorClassifier) IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context errors are NOT retryable - if the parent context is exceeded
	// or canceled, retrying with the same context will fail immediately.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	// ModelErrors declare their own retryability.
	var merr *ModelError
	if errors.As(err, &merr) {
		return merr.Retry != nil
	}

	// Check for jp-go-errors sentinel errors
	if errors.Is(err, pkgerrors.ErrRateLimited) {
		return true
	}
	if pkgerrors.IsTimeout(err) {
		return true
	}

	statusCode := extractStatusCode(err)
	if statusCode == 0 {
		// Unknown errors might be retryable (network issues, etc.)
		return true
	}

	return containsStatus(c.retryableStatuses(), statusCode)
}

func (c *ModelErrorClassifier) retryableStatuses() []int {
	if c.RetryableStatuses != nil {
		return c.RetryableStatuses
	}
	return []int{429, 500, 502, 503, 504}
}

// DefaultErrorClassifier returns the classifier RetryWrapper uses unless
// configured otherwise.
func DefaultErrorClassifier() ErrorClassifier {
	return &ModelErrorClassifier{}
}

// HTTPError represents an error with an associated HTTP status code.
// Many HTTP client libraries provide errors that implement this interface.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusCodeError wraps an error with an HTTP status code. Use this when
// wrapping failures from transports that don't carry status codes in a
// typed form.
type StatusCodeError struct {
	Err  error
	Code int
}

// Error implements the error interface.
func (e *StatusCodeError) Error() string {
	return e.Err.Error()
}

// Unwrap implements error unwrapping for errors.Is and errors.As.
func (e *StatusCodeError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code. This implements the HTTPError
// interface.
func (e *StatusCodeError) StatusCode() int {
	return e.Code
}

// NewStatusCodeError creates a new StatusCodeError.
func NewStatusCodeError(statusCode int, err error) error {
	return &StatusCodeError{
		Code: statusCode,
		Err:  err,
	}
}

// extractStatusCode attempts to extract an HTTP status code from the error
// chain.
func extractStatusCode(err error) int {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode()
	}
	return 0
}

// containsStatus checks if a status code is in the list.
func containsStatus(statuses []int, status int) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
