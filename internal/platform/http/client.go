package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Client wraps an HTTP client with rate limiting and bounded
// exponential-backoff retries. Only transport failures and retryable
// statuses (429, 5xx) are retried; every other non-200 status is returned
// immediately as a StatusError for the caller to classify.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries uint64
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Client.
type ClientOptions struct {
	Timeout        time.Duration
	RequestsPerSec int
	MaxRetries     uint64
	Name           string // component tag for log lines
}

// NewClient creates a rate-limited retrying HTTP client.
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 5
	}
	if opts.Name == "" {
		opts.Name = "http_client"
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second), opts.RequestsPerSec),
		maxRetries: opts.MaxRetries,
		logger:     log.With().Str("component", opts.Name).Logger(),
	}
}

// Get fetches url and returns the response body. Transient failures are
// retried up to MaxRetries times with exponential delay, each attempt
// logged, before the last error is surfaced.
func (c *Client) Get(ctx context.Context, url string, header map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		for k, v := range header {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			statusErr := &StatusError{StatusCode: resp.StatusCode, Body: b}
			if statusErr.Retryable() {
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}
		body = b
		return nil
	}

	strategy := backoff.WithContext(
		backoff.WithMaxRetries(newExponentialBackOff(), c.maxRetries), ctx)

	notify := func(err error, wait time.Duration) {
		c.logger.Warn().Err(err).Dur("retry_in", wait).Str("url", url).
			Msg("Transient failure, retrying")
	}

	if err := backoff.RetryNotify(operation, strategy, notify); err != nil {
		return nil, err
	}
	return body, nil
}

func newExponentialBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 0 // bounded by retry count, not wall clock
	return b
}

// StatusError represents a non-200 HTTP status.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Retryable reports whether the status indicates a transient condition.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
