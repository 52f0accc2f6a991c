package ports

import (
	"context"

	"marketplace/internal/core/domain/model/order"
)

// NotificationSink delivers a transition notification to the buyer.
//
// Delivery is best-effort after commit: the lifecycle core calls Send only
// once the transition is durably persisted, logs failures, and surfaces them
// to the caller as a flag, never as a failure of the transition itself.
type NotificationSink interface {
	Send(ctx context.Context, notification order.StatusNotification) error
}
