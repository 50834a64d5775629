package httpinfra

import (
	"errors"
	"net"
	"net/http"
	"time"
)

// RetryPolicy decides whether a request is attempted again, and after how long
type RetryPolicy interface {
	ShouldRetry(status int, err error, attempt int) (bool, time.Duration)
}

// BackoffRetry retries transport errors and 5xx responses with doubling delays
type BackoffRetry struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// NewBackoffRetry creates a retry policy
func NewBackoffRetry(maxRetries int, baseDelay time.Duration) *BackoffRetry {
	return &BackoffRetry{MaxRetries: maxRetries, BaseDelay: baseDelay}
}

// ShouldRetry implements RetryPolicy. Unknown hosts are never retried.
func (p *BackoffRetry) ShouldRetry(status int, err error, attempt int) (bool, time.Duration) {
	if attempt >= p.MaxRetries {
		return false, 0
	}
	switch {
	case err != nil:
		if isHostNotFound(err) {
			return false, 0
		}
	case status >= http.StatusInternalServerError, status == http.StatusTooManyRequests:
	default:
		return false, 0
	}
	return true, p.BaseDelay << attempt
}

func isHostNotFound(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) && dnsErr.IsNotFound
}
