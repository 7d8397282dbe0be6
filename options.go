package providers

import (
	"log/slog"
	"time"
)

// Strategy defines the backoff strategy for RetryWrapper.
type Strategy string

const (
	// StrategyGeometric compounds the delay by Factor after every attempt,
	// matching the schedule the Retry driver derives from RetryOptions.
	StrategyGeometric Strategy = "geometric"

	// StrategyConstant uses the same delay between all retries.
	StrategyConstant Strategy = "constant"
)

// RetryConfig holds RetryWrapper configuration.
type RetryConfig struct {
	// Classifier determines which errors should trigger retries.
	// Default: ModelErrorClassifier
	Classifier ErrorClassifier

	// Logger for retry operations.
	// Default: slog.Default()
	Logger *slog.Logger

	// Strategy defines the backoff strategy.
	// Default: StrategyGeometric
	Strategy Strategy

	// InitialDelay is the delay before the first retry.
	// Default: 1 second
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries for the geometric strategy.
	// Default: 30 seconds
	MaxDelay time.Duration

	// Factor is the delay multiplier for the geometric strategy.
	// Default: 2
	Factor int

	// MaxAttempts is the maximum number of attempts, including the initial
	// request.
	// Default: 3
	MaxAttempts int
}

// RetryOption is a functional option for configuring retry behavior.
type RetryOption func(*RetryConfig)

// WithMaxAttempts sets the maximum number of attempts, including the initial
// request.
func WithMaxAttempts(attempts int) RetryOption {
	return func(c *RetryConfig) {
		c.MaxAttempts = attempts
	}
}

// WithGeometricBackoff configures geometrically growing delays capped at
// maxDelay.
//
// Example:
//
//	providers.WithGeometricBackoff(time.Second, 30*time.Second)
//	// With the default factor 2: 1s, 2s, 4s, 8s, 16s, 30s (capped)
func WithGeometricBackoff(initialDelay, maxDelay time.Duration) RetryOption {
	return func(c *RetryConfig) {
		c.Strategy = StrategyGeometric
		c.InitialDelay = initialDelay
		c.MaxDelay = maxDelay
	}
}

// WithFactor sets the delay multiplier for the geometric strategy.
func WithFactor(factor int) RetryOption {
	return func(c *RetryConfig) {
		c.Factor = factor
	}
}

// WithConstantBackoff configures the same delay between all retries.
func WithConstantBackoff(delay time.Duration) RetryOption {
	return func(c *RetryConfig) {
		c.Strategy = StrategyConstant
		c.InitialDelay = delay
		c.MaxDelay = delay
	}
}

// WithErrorClassifier sets a custom error classifier for retry decisions.
func WithErrorClassifier(classifier ErrorClassifier) RetryOption {
	return func(c *RetryConfig) {
		c.Classifier = classifier
	}
}

// WithRetryLogger sets a custom logger for retry operations.
func WithRetryLogger(logger *slog.Logger) RetryOption {
	return func(c *RetryConfig) {
		c.Logger = logger
	}
}

// DefaultRetryConfig returns retry configuration with sensible defaults.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:  3,
		Strategy:     StrategyGeometric,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Factor:       2,
		Classifier:   DefaultErrorClassifier(),
		Logger:       slog.Default(),
	}
}
