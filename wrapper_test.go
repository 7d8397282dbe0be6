package providers_test

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	providers "github.com/JohnPlummer/jp-go-providers"
)

// mockClient implements Client for testing
type mockClient struct {
	callFunc  func(ctx context.Context, req string) (string, error)
	callCount atomic.Int32
}

func (m *mockClient) Call(ctx context.Context, req string) (string, error) {
	m.callCount.Add(1)
	return m.callFunc(ctx, req)
}

func (m *mockClient) getCallCount() int {
	return int(m.callCount.Load())
}

func transientError(msg string) error {
	return providers.NewRetryableModelError(providers.RetryOptions{
		Sleep: time.Millisecond, Factor: 2, Retries: 3,
	}, "%s", msg)
}

var _ = Describe("RetryWrapper", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		client *mockClient
		logger *slog.Logger
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		client = &mockClient{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelError, // Quiet during tests
		}))
	})

	AfterEach(func() {
		cancel()
	})

	Context("successful requests", func() {
		It("returns the response on the first attempt", func() {
			client.callFunc = func(ctx context.Context, req string) (string, error) {
				return "success", nil
			}

			wrapper := providers.NewRetryWrapper(
				client,
				providers.WithMaxAttempts(3),
				providers.WithConstantBackoff(10*time.Millisecond),
				providers.WithRetryLogger(logger),
			)

			resp, err := wrapper.Call(ctx, "test")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp).To(Equal("success"))
			Expect(client.getCallCount()).To(Equal(1))

			stats := wrapper.GetRetryStats()
			Expect(stats.TotalAttempts).To(Equal(int64(1)))
			Expect(stats.TotalRetries).To(Equal(int64(0)))
			Expect(stats.TotalSuccesses).To(Equal(int64(1)))
		})
	})

	Context("transient failures", func() {
		It("retries retryable model errors and succeeds", func() {
			attemptCount := 0
			client.callFunc = func(ctx context.Context, req string) (string, error) {
				attemptCount++
				if attemptCount < 3 {
					return "", transientError("overloaded")
				}
				return "success", nil
			}

			wrapper := providers.NewRetryWrapper(
				client,
				providers.WithMaxAttempts(5),
				providers.WithConstantBackoff(10*time.Millisecond),
				providers.WithRetryLogger(logger),
			)

			resp, err := wrapper.Call(ctx, "test")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp).To(Equal("success"))
			Expect(client.getCallCount()).To(Equal(3))

			stats := wrapper.GetRetryStats()
			Expect(stats.TotalAttempts).To(Equal(int64(3)))
			Expect(stats.TotalRetries).To(Equal(int64(2)))
			Expect(stats.TotalSuccesses).To(Equal(int64(1)))
		})

		It("exhausts retries on a persistent transient error", func() {
			client.callFunc = func(ctx context.Context, req string) (string, error) {
				return "", transientError("overloaded")
			}

			wrapper := providers.NewRetryWrapper(
				client,
				providers.WithMaxAttempts(3),
				providers.WithConstantBackoff(10*time.Millisecond),
				providers.WithRetryLogger(logger),
			)

			resp, err := wrapper.Call(ctx, "test")
			Expect(err).To(HaveOccurred())
			Expect(resp).To(Equal(""))
			Expect(client.getCallCount()).To(Equal(3))

			stats := wrapper.GetRetryStats()
			Expect(stats.TotalFailures).To(Equal(int64(1)))
			Expect(stats.LastError).To(HaveOccurred())
		})

		It("applies the geometric schedule", func() {
			attemptCount := 0
			client.callFunc = func(ctx context.Context, req string) (string, error) {
				attemptCount++
				if attemptCount < 3 {
					return "", transientError("overloaded")
				}
				return "success", nil
			}

			start := time.Now()
			wrapper := providers.NewRetryWrapper(
				client,
				providers.WithMaxAttempts(3),
				providers.WithGeometricBackoff(50*time.Millisecond, 500*time.Millisecond),
				providers.WithRetryLogger(logger),
			)

			resp, err := wrapper.Call(ctx, "test")
			elapsed := time.Since(start)

			Expect(err).NotTo(HaveOccurred())
			Expect(resp).To(Equal("success"))
			// Delays: 50ms, 100ms
			Expect(elapsed).To(BeNumerically(">=", 150*time.Millisecond))
			Expect(elapsed).To(BeNumerically("<", 400*time.Millisecond))
		})
	})

	Context("fatal failures", func() {
		It("does not retry fatal model errors", func() {
			client.callFunc = func(ctx context.Context, req string) (string, error) {
				return "", providers.NewModelError("invalid api key")
			}

			wrapper := providers.NewRetryWrapper(
				client,
				providers.WithMaxAttempts(3),
				providers.WithConstantBackoff(10*time.Millisecond),
				providers.WithRetryLogger(logger),
			)

			_, err := wrapper.Call(ctx, "test")
			Expect(err).To(HaveOccurred())
			Expect(client.getCallCount()).To(Equal(1))
		})
	})

	Context("context cancellation", func() {
		It("returns immediately when the context is already done", func() {
			canceledCtx, cancelNow := context.WithCancel(context.Background())
			cancelNow()

			client.callFunc = func(ctx context.Context, req string) (string, error) {
				return "success", nil
			}

			wrapper := providers.NewRetryWrapper(
				client,
				providers.WithMaxAttempts(3),
				providers.WithConstantBackoff(10*time.Millisecond),
				providers.WithRetryLogger(logger),
			)

			_, err := wrapper.Call(canceledCtx, "test")
			Expect(err).To(Equal(context.Canceled))
			Expect(client.getCallCount()).To(Equal(0))
		})
	})

	Context("configuration", func() {
		It("rejects a non-positive attempt budget", func() {
			client.callFunc = func(ctx context.Context, req string) (string, error) {
				return "success", nil
			}

			wrapper := providers.NewRetryWrapper(
				client,
				providers.WithMaxAttempts(0),
				providers.WithRetryLogger(logger),
			)

			_, err := wrapper.Call(ctx, "test")
			Expect(err).To(HaveOccurred())
			Expect(client.getCallCount()).To(Equal(0))
		})

		It("uses a custom error classifier", func() {
			client.callFunc = func(ctx context.Context, req string) (string, error) {
				return "", providers.NewModelError("normally fatal")
			}

			wrapper := providers.NewRetryWrapper(
				client,
				providers.WithMaxAttempts(3),
				providers.WithConstantBackoff(time.Millisecond),
				providers.WithErrorClassifier(retryEverything{}),
				providers.WithRetryLogger(logger),
			)

			_, err := wrapper.Call(ctx, "test")
			Expect(err).To(HaveOccurred())
			Expect(client.getCallCount()).To(Equal(3))
		})
	})
})

// retryEverything treats every error as transient.
type retryEverything struct{}

func (retryEverything) IsRetryable(err error) bool {
	return err != nil
}
