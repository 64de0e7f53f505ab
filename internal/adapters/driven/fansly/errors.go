package fansly

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

// APIError is an unexpected HTTP status with the start of the body.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fansly: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// statusError maps a non-2xx response onto the domain taxonomy.
func statusError(op string, resp *http.Response, body []byte) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    truncate(string(body), 200),
		URL:        resp.Request.URL.Redacted(),
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &domain.AuthError{Op: op, StatusCode: resp.StatusCode, Err: apiErr}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &domain.TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get(HeaderRetryAfter), time.Now()),
			Err:        apiErr,
		}
	default:
		return &domain.ShapeError{Op: op, Detail: fmt.Sprintf("unexpected status %d", resp.StatusCode), Err: apiErr}
	}
}

// transportError wraps a failure to complete the request at all.
func transportError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &domain.TransportError{Op: op, Err: err}
	}
	return &domain.TransportError{Op: op, Err: fmt.Errorf("request failed: %w", err)}
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
