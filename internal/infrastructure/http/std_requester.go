package httpinfra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodySize bounds how much of a response is read
const maxBodySize = 4 << 20

// StdHttpRequester performs GET requests with an optional retry policy
type StdHttpRequester struct {
	client *http.Client
	retry  RetryPolicy
}

// NewStdHttpRequester creates a requester. A nil client uses one with timeout.
func NewStdHttpRequester(client *http.Client, timeout time.Duration, retry RetryPolicy) *StdHttpRequester {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &StdHttpRequester{client: client, retry: retry}
}

// Get fetches rawURL and returns the final status code and body
func (r *StdHttpRequester) Get(ctx context.Context, rawURL string, headers map[string]string) (int, []byte, error) {
	attempt := 0
	for {
		status, body, err := r.once(ctx, rawURL, headers)

		if r.retry != nil && ctx.Err() == nil {
			if retry, backoff := r.retry.ShouldRetry(status, err, attempt); retry {
				if waitErr := sleep(ctx, backoff); waitErr != nil {
					return status, body, err
				}
				attempt++
				continue
			}
		}
		return status, body, err
	}
}

func (r *StdHttpRequester) once(ctx context.Context, rawURL string, headers map[string]string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
