package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

// ErrUpstream marks failures of an outbound provider call: a non-success
// status or an unreachable provider. Handlers translate it separately from
// internal failures.
var ErrUpstream = errors.New("upstream provider failure")

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 500 * time.Millisecond
)

// caller holds the shared HTTP plumbing for provider clients
type caller struct {
	httpClient    *http.Client
	retryAttempts uint
	retryDelay    time.Duration
}

// Option configures a provider client
type Option func(*caller)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *caller) {
		c.httpClient = client
	}
}

// WithRetry overrides the retry policy for provider calls
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *caller) {
		c.retryAttempts = attempts
		c.retryDelay = delay
	}
}

func newCaller(timeout time.Duration, opts ...Option) caller {
	c := caller{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retryAttempts: defaultRetryAttempts,
		retryDelay:    defaultRetryDelay,
	}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// postJSON issues a bearer-authenticated POST and decodes the response into
// out. The provider's documented success status is required exactly; any
// other status fails the call. Transport errors and 5xx responses are retried
// with backoff, 4xx responses are terminal.
func (c *caller) postJSON(ctx context.Context, url, apiKey string, body, out interface{}, wantStatus int, provider, operation string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s request: %w", provider, operation, err)
	}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to create %s %s request: %w", provider, operation, err))
			}
			req.Header.Set("Authorization", "Bearer "+apiKey)
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("%s %s: provider unreachable: %v: %w", provider, operation, err, ErrUpstream)
			}
			defer resp.Body.Close()

			if resp.StatusCode != wantStatus {
				callErr := fmt.Errorf("%s %s: unexpected status %d: %w", provider, operation, resp.StatusCode, ErrUpstream)
				if resp.StatusCode < http.StatusInternalServerError {
					return retry.Unrecoverable(callErr)
				}
				return callErr
			}

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("%s %s: failed to read response: %v: %w", provider, operation, err, ErrUpstream)
			}

			if err := json.Unmarshal(data, out); err != nil {
				return retry.Unrecoverable(fmt.Errorf("%s %s: malformed response: %v: %w", provider, operation, err, ErrUpstream))
			}

			return nil
		},
		retry.Attempts(c.retryAttempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
}
