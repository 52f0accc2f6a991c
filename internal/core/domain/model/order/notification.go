package order

import "time"

// NotificationPriority classifies how urgently a customer notification
// should be delivered.
type NotificationPriority int

const (
	// PriorityLow covers routine progress updates.
	PriorityLow NotificationPriority = iota

	// PriorityMedium covers milestones the buyer is waiting on.
	PriorityMedium

	// PriorityHigh covers disruptions that need the buyer's attention.
	PriorityHigh
)

// String returns the wire representation of the priority.
func (p NotificationPriority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// PriorityForStatus derives the notification priority from the status an
// order has just moved to. Disruptions (cancelled, disputed, refunded) are
// high, delivery milestones (shipped, delivered, completed) are medium,
// everything else is low.
func PriorityForStatus(s Status) NotificationPriority {
	switch s {
	case Cancelled, Disputed, Refunded:
		return PriorityHigh
	case Delivered, Shipped, Completed:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// StatusNotification describes a committed transition to the buyer.
// It is produced after the transition has been persisted; delivering it is a
// best-effort side effect and must never influence the transition itself.
type StatusNotification struct {
	OrderID        string
	BuyerID        string
	PreviousStatus Status
	NewStatus      Status
	Priority       NotificationPriority
	Note           string
	OccurredAt     time.Time
}

// NewStatusNotification builds a notification for a committed transition,
// deriving the priority from the new status.
func NewStatusNotification(orderID, buyerID string, previous, next Status, note string, occurredAt time.Time) StatusNotification {
	return StatusNotification{
		OrderID:        orderID,
		BuyerID:        buyerID,
		PreviousStatus: previous,
		NewStatus:      next,
		Priority:       PriorityForStatus(next),
		Note:           note,
		OccurredAt:     occurredAt,
	}
}
