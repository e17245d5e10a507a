package alert

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	attemptTimeout = 5 * time.Second
	maxAttempts    = 3
)

var (
	httpClient = &http.Client{Timeout: attemptTimeout}
	retryDelay = time.Second
)

// statusError is a non-2xx response. Only 5xx is worth retrying.
type statusError struct{ code int }

func (e statusError) Error() string { return fmt.Sprintf("webhook returned HTTP %d", e.code) }

func (e statusError) retryable() bool { return e.code >= 500 }

// Send posts an event to hook, retrying transport errors and 5xx with a
// linear backoff until ctx is done.
func Send(ctx context.Context, hook Webhook, event Event) error {
	body, err := FormatPayload(hook.Format, event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = post(ctx, hook, body)
		if lastErr == nil {
			return nil
		}
		if se, ok := lastErr.(statusError); ok && !se.retryable() {
			return lastErr
		}
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryDelay):
		}
	}
	return fmt.Errorf("webhook failed after %d attempts: %w", maxAttempts, lastErr)
}

func post(ctx context.Context, hook Webhook, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ladder-alert")
	for k, v := range hook.Headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError{code: resp.StatusCode}
	}
	return nil
}
