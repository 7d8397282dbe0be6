package providers_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/JohnPlummer/jp-go-errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	providers "github.com/JohnPlummer/jp-go-providers"
)

var _ = Describe("ModelError", func() {
	It("renders fatal errors with retryable=false", func() {
		err := providers.NewModelError("bad request: %s", "missing model")
		Expect(err.Error()).To(Equal("[model_error(retryable=false)] bad request: missing model"))
	})

	It("renders retryable errors with retryable=true", func() {
		err := providers.NewRetryableModelError(providers.RetryOptions{
			Sleep:   time.Second,
			Factor:  2,
			Retries: 3,
		}, "rate limited")
		Expect(err.Error()).To(Equal("[model_error(retryable=true)] rate limited"))
		Expect(err.Retry).NotTo(BeNil())
		Expect(err.Retry.Sleep).To(Equal(time.Second))
	})

	It("survives wrapping", func() {
		inner := providers.NewModelError("upstream rejected the call")
		wrapped := fmt.Errorf("calling model: %w", inner)

		var merr *providers.ModelError
		Expect(errors.As(wrapped, &merr)).To(BeTrue())
		Expect(merr).To(Equal(inner))
	})
})

var _ = Describe("ModelErrorClassifier", func() {
	var classifier *providers.ModelErrorClassifier

	BeforeEach(func() {
		classifier = &providers.ModelErrorClassifier{}
	})

	It("treats nil as non-retryable", func() {
		Expect(classifier.IsRetryable(nil)).To(BeFalse())
	})

	It("follows the retry options on model errors", func() {
		retryable := providers.NewRetryableModelError(providers.RetryOptions{
			Sleep: time.Second, Factor: 2, Retries: 3,
		}, "overloaded")
		fatal := providers.NewModelError("invalid api key")

		Expect(classifier.IsRetryable(retryable)).To(BeTrue())
		Expect(classifier.IsRetryable(fatal)).To(BeFalse())
	})

	It("never retries context errors", func() {
		Expect(classifier.IsRetryable(context.Canceled)).To(BeFalse())
		Expect(classifier.IsRetryable(context.DeadlineExceeded)).To(BeFalse())
	})

	It("retries rate-limit and timeout sentinels", func() {
		Expect(classifier.IsRetryable(pkgerrors.ErrRateLimited)).To(BeTrue())
		timeout := pkgerrors.NewTimeoutError("operation timeout", "generate", 5*time.Second)
		Expect(classifier.IsRetryable(timeout)).To(BeTrue())
	})

	It("classifies HTTP status codes", func() {
		unavailable := providers.NewStatusCodeError(503, errors.New("service unavailable"))
		badRequest := providers.NewStatusCodeError(400, errors.New("bad request"))

		Expect(classifier.IsRetryable(unavailable)).To(BeTrue())
		Expect(classifier.IsRetryable(badRequest)).To(BeFalse())
	})

	It("respects a custom status list", func() {
		classifier.RetryableStatuses = []int{418}

		teapot := providers.NewStatusCodeError(418, errors.New("teapot"))
		unavailable := providers.NewStatusCodeError(503, errors.New("service unavailable"))

		Expect(classifier.IsRetryable(teapot)).To(BeTrue())
		Expect(classifier.IsRetryable(unavailable)).To(BeFalse())
	})

	It("assumes unknown errors are transient", func() {
		Expect(classifier.IsRetryable(errors.New("connection reset"))).To(BeTrue())
	})
})

var _ = Describe("StatusCodeError", func() {
	It("exposes the wrapped error and status code", func() {
		cause := errors.New("service unavailable")
		err := providers.NewStatusCodeError(503, cause)

		Expect(err.Error()).To(Equal("service unavailable"))
		Expect(errors.Is(err, cause)).To(BeTrue())

		var httpErr providers.HTTPError
		Expect(errors.As(err, &httpErr)).To(BeTrue())
		Expect(httpErr.StatusCode()).To(Equal(503))
	})
})
