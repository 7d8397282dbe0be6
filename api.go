package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Backoff parameters attached to transient API failures. Rate limits back
// off longer and for more attempts than server or transport errors.
var (
	rateLimitRetry   = RetryOptions{Sleep: 2 * time.Second, Factor: 2, Retries: 8}
	serverErrorRetry = RetryOptions{Sleep: 500 * time.Millisecond, Factor: 2, Retries: 3}
	transportRetry   = RetryOptions{Sleep: time.Second, Factor: 2, Retries: 3}
)

// apiClient issues JSON requests to a provider endpoint and classifies
// failures into ModelErrors. It's shared by all backends; anything
// provider-specific travels in the URL and headers.
type apiClient struct {
	http *http.Client
}

func newAPIClient() *apiClient {
	return &apiClient{
		http: &http.Client{Timeout: 120 * time.Second},
	}
}

// postJSON posts body to url and decodes the response into out. Transport
// failures and non-2xx responses come back as *ModelError: 429 and 5xx are
// retryable, everything else is fatal.
func (c *apiClient) postJSON(ctx context.Context, url string, header http.Header, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return NewRetryableModelError(transportRetry, "request failed: %v", err)
	}
	defer resp.Body.Close()

	requestID := resp.Header.Get("x-request-id")
	if requestID == "" {
		requestID = uuid.NewString()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return classifyStatus(resp.StatusCode, string(raw), requestID)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ModelError{
			Message:   fmt.Sprintf("decoding response: %v", err),
			RequestID: requestID,
		}
	}
	return nil
}

// classifyStatus maps an HTTP status to the ModelError taxonomy.
func classifyStatus(status int, body, requestID string) *ModelError {
	msg := fmt.Sprintf("unexpected status %d: %s", status, strings.TrimSpace(body))
	switch {
	case status == http.StatusTooManyRequests:
		retry := rateLimitRetry
		return &ModelError{Message: msg, Retry: &retry, RequestID: requestID}
	case status >= 500:
		retry := serverErrorRetry
		return &ModelError{Message: msg, Retry: &retry, RequestID: requestID}
	default:
		return &ModelError{Message: msg, RequestID: requestID}
	}
}

// bearer builds an Authorization header from an API key.
func bearer(key string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+key)
	return h
}
