// Package auditrepo persists the append-only audit trail of accepted status
// transitions. Audit rows are written after commit, outside the order's unit
// of work, and are never read back by the lifecycle core.
package auditrepo

import (
	"time"

	"marketplace/internal/core/ports"
)

// AuditRecordDTO represents one audit row. Rows are append-only; there is no
// update path.
type AuditRecordDTO struct {
	ID               int64  `gorm:"primaryKey;autoIncrement"`
	Action           string `gorm:"index"`
	OrderID          string `gorm:"type:uuid;index"`
	Actor            string
	PreviousStatus   string
	NewStatus        string
	Reason           string
	Note             string
	NotificationSent bool
	ProcessingTimeMs int64
	Timestamp        time.Time `gorm:"index"`
	SourceIP         string
	UserAgent        string
}

// TableName specifies the database table name for audit records.
func (AuditRecordDTO) TableName() string {
	return "order_audit"
}

// fromRecord converts an audit record to its database row.
func fromRecord(record ports.AuditRecord) AuditRecordDTO {
	return AuditRecordDTO{
		Action:           record.Action,
		OrderID:          record.OrderID,
		Actor:            record.Actor,
		PreviousStatus:   record.PreviousStatus,
		NewStatus:        record.NewStatus,
		Reason:           record.Reason,
		Note:             record.Note,
		NotificationSent: record.NotificationSent,
		ProcessingTimeMs: record.ProcessingTimeMs,
		Timestamp:        record.Timestamp,
		SourceIP:         record.SourceIP,
		UserAgent:        record.UserAgent,
	}
}
