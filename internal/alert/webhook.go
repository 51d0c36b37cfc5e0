package alert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const deliveryAttempts = 3

var (
	webhookClient = &http.Client{Timeout: 5 * time.Second}

	// retryDelay doubles after each failed attempt.
	retryDelay = time.Second
)

// statusError is a non-2xx answer from a webhook endpoint.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("webhook answered HTTP %d", e.code)
}

// temporary reports whether a later attempt could succeed.
func (e *statusError) temporary() bool {
	return e.code >= 500 || e.code == http.StatusTooManyRequests
}

// Send delivers a rendered event to cfg.URL. Transport failures, 5xx and
// 429 answers are attempted again with a doubling delay; any other non-2xx
// answer ends delivery at once. ctx bounds the whole delivery.
func Send(ctx context.Context, cfg AlertConfig, event AlertEvent) error {
	body, err := FormatPayload(cfg.Format, event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	delay := retryDelay
	for attempt := 1; ; attempt++ {
		err = post(ctx, cfg, body)
		if err == nil {
			return nil
		}
		var se *statusError
		if errors.As(err, &se) && !se.temporary() {
			return err
		}
		if attempt == deliveryAttempts {
			return fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("delivery cancelled after %d attempts: %w", attempt, err)
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// post makes a single delivery attempt.
func post(ctx context.Context, cfg AlertConfig, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for name, value := range cfg.Headers {
		req.Header.Set(name, value)
	}

	resp, err := webhookClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return &statusError{code: resp.StatusCode}
	}
	return nil
}
