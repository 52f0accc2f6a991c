package ports

import (
	"context"
	"time"
)

// AuditRecord describes one accepted status transition for external
// observability tooling. Records are append-only and never read back by the
// lifecycle core.
type AuditRecord struct {
	Action           string
	OrderID          string
	Actor            string
	PreviousStatus   string
	NewStatus        string
	Reason           string
	Note             string
	NotificationSent bool
	ProcessingTimeMs int64
	Timestamp        time.Time
	SourceIP         string
	UserAgent        string
}

// AuditSink appends transition audit records. Appending is fire-and-forget
// from the lifecycle core's perspective: failures are logged, not propagated.
type AuditSink interface {
	Append(ctx context.Context, record AuditRecord) error
}
