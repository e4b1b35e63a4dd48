// fetch/client.go
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gewnthar/wiscflow/logger"
	"github.com/go-resty/resty/v2"
)

// Options configures a Client.
type Options struct {
	BaseURL   string
	UserAgent string
	Headers   map[string]string

	// Timeout bounds a single attempt. Zero means 30s.
	Timeout time.Duration

	// BackoffBase is the unit of the exponential delay: attempt n waits
	// BackoffBase * 2^n. Zero means one second.
	BackoffBase time.Duration

	// HTTPClient replaces the underlying transport client (tests).
	HTTPClient *http.Client
}

// Client performs GETs with exponential-backoff retry. It keeps no cache.
type Client struct {
	http        *resty.Client
	backoffBase time.Duration
	log         *logger.Logger
}

// NewClient builds a resty-backed client. Zero-valued options fall back to a
// 30s timeout and a 1s backoff base.
func NewClient(opts Options, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}

	var httpClient *resty.Client
	if opts.HTTPClient != nil {
		httpClient = resty.NewWithClient(opts.HTTPClient)
	} else {
		httpClient = resty.New()
	}
	if opts.BaseURL != "" {
		httpClient.SetBaseURL(opts.BaseURL)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient.SetTimeout(timeout)
	if opts.UserAgent != "" {
		httpClient.SetHeader("User-Agent", opts.UserAgent)
	}
	for k, v := range opts.Headers {
		httpClient.SetHeader(k, v)
	}

	base := opts.BackoffBase
	if base <= 0 {
		base = time.Second
	}

	return &Client{
		http:        httpClient,
		backoffBase: base,
		log:         log,
	}
}

// FetchWithRetry returns the body of url. Any transport error or non-2xx status
// is retried up to maxRetries attempts in total; after that the error wraps
// ErrFetchExhausted.
func (c *Client) FetchWithRetry(ctx context.Context, url string, maxRetries int) (string, error) {
	body, err := c.get(ctx, url, maxRetries, false)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchJSON decodes the body of url into out. A 404 short-circuits to
// ErrNotFound without consuming a retry. Decode failures are not retried.
func (c *Client) FetchJSON(ctx context.Context, url string, maxRetries int, out any) error {
	body, err := c.get(ctx, url, maxRetries, true)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("json parse error for %s: %w body=%s", url, err, snippet(body, 300))
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string, maxRetries int, notFoundIsFinal bool) ([]byte, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := c.http.R().
			SetContext(ctx).
			Get(url)

		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			lastErr = err
		case notFoundIsFinal && resp.StatusCode() == http.StatusNotFound:
			return nil, fmt.Errorf("%s: %w", url, ErrNotFound)
		case resp.IsSuccess():
			return resp.Body(), nil
		default:
			lastErr = &HTTPError{
				Method:     http.MethodGet,
				URL:        url,
				StatusCode: resp.StatusCode(),
				Body:       resp.Body(),
			}
		}

		if attempt == maxRetries-1 {
			break
		}
		delay := c.backoff(attempt)
		c.log.Warn("fetch failed, retrying",
			"url", url,
			"attempt", attempt+1,
			"max_retries", maxRetries,
			"delay", delay.String(),
			"error", lastErr.Error(),
		)
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, &ExhaustedError{URL: url, Attempts: maxRetries, Last: lastErr}
}

// backoff is BackoffBase * 2^attempt, attempt counting from zero.
func (c *Client) backoff(attempt int) time.Duration {
	return c.backoffBase * time.Duration(1<<attempt)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsNotFound reports whether err is the defined not-found outcome.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
