// fetch/errors.go
package fetch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFetchExhausted marks a request that failed on every allowed attempt.
	ErrFetchExhausted = errors.New("fetch retries exhausted")

	// ErrNotFound is a defined "no such resource" outcome, not a failure.
	ErrNotFound = errors.New("resource not found")
)

// HTTPError carries status/body for non-2xx responses.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: %s %s status=%d body=%s", e.Method, e.URL, e.StatusCode, snippet(e.Body, 300))
}

// ExhaustedError wraps the last failure after all attempts were used.
// errors.Is(err, ErrFetchExhausted) holds, and errors.As reaches the cause.
type ExhaustedError struct {
	URL      string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed to fetch %s after %d attempts: %v", e.URL, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrFetchExhausted, e.Last}
}

// snippet keeps at most max runes of a response body for error messages.
func snippet(b []byte, max int) string {
	r := []rune(strings.TrimSpace(string(b)))
	if len(r) <= max {
		return string(r)
	}
	return string(r[:max]) + "..."
}
