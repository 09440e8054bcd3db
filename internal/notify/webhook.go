package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrNotificationFailed = errors.New("notification failed")

// Payload is the body posted to the completion webhook.
type Payload struct {
	OrderID string `json:"order_id"`
	StoreID string `json:"store_id"`
	AllOK   string `json:"all_ok"`
}

// WebhookNotifier tells the merchant backend that an inspection was submitted.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Notify posts the completion payload. Any transport error or non-2xx
// response is reported as ErrNotificationFailed.
func (n *WebhookNotifier) Notify(ctx context.Context, orderID, storeID string) error {
	jsonData, err := json.Marshal(Payload{
		OrderID: orderID,
		StoreID: storeID,
		AllOK:   "yes",
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal payload: %w", ErrNotificationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %w", ErrNotificationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %w", ErrNotificationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d, body: %s", ErrNotificationFailed, resp.StatusCode, string(body))
	}

	return nil
}
