// Package notifier delivers status transition notifications to the buyer's
// side over a webhook. Delivery is best-effort: the lifecycle core calls the
// sink only after the transition is committed, and treats every failure as
// "customer not notified", never as a failed transition.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"marketplace/internal/core/domain/model/order"
)

const defaultSendTimeout = 5 * time.Second

// webhookPayload is the wire representation of one transition notification.
type webhookPayload struct {
	OrderID        string    `json:"orderId"`
	BuyerID        string    `json:"buyerId"`
	PreviousStatus string    `json:"previousStatus"`
	NewStatus      string    `json:"newStatus"`
	Priority       string    `json:"priority"`
	Note           string    `json:"note,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// WebhookNotifier implements ports.NotificationSink by POSTing the
// notification as JSON to a configured endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a notifier targeting the given endpoint.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: defaultSendTimeout},
	}
}

// Send delivers one notification. A non-2xx response counts as failure.
func (n *WebhookNotifier) Send(ctx context.Context, notification order.StatusNotification) error {
	payload := webhookPayload{
		OrderID:        notification.OrderID,
		BuyerID:        notification.BuyerID,
		PreviousStatus: notification.PreviousStatus.String(),
		NewStatus:      notification.NewStatus.String(),
		Priority:       notification.Priority.String(),
		Note:           notification.Note,
		OccurredAt:     notification.OccurredAt,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// NoopNotifier implements ports.NotificationSink without delivering anything.
// Used when no webhook endpoint is configured.
type NoopNotifier struct{}

// NewNoopNotifier creates a notifier that drops every notification.
func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

// Send does nothing and always succeeds.
func (n *NoopNotifier) Send(_ context.Context, _ order.StatusNotification) error {
	return nil
}
