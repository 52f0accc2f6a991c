// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. The order row carries the current status, the derived
// bookkeeping columns, and the optimistic-concurrency version; the status
// history lives in its own append-only table keyed by order id.
package orderrepo

import (
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// The version column is the CAS guard of every status write.
type OrderDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BuyerID   uuid.UUID `gorm:"type:uuid;index"`
	SellerID  uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time
	Status    int `gorm:"index"`
	Version   int

	Milestones MilestonesDTO `gorm:"embedded"`
	Shipping   ShippingDTO   `gorm:"embedded;embeddedPrefix:shipping_"`
	Payment    PaymentDTO    `gorm:"embedded;embeddedPrefix:payment_"`
	Analytics  AnalyticsDTO  `gorm:"embedded"`

	CancellationReason *string
	CancelledBy        *string
	CancelledDate      *time.Time

	DisputeReason *string
	DisputedBy    *string
	DisputedDate  *time.Time
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// MilestonesDTO holds the lifecycle timestamp columns of the order row.
type MilestonesDTO struct {
	ConfirmedAt            *time.Time
	ProcessingStartedAt    *time.Time
	ManufacturingStartedAt *time.Time
	ReadyToShipAt          *time.Time
	CompletedAt            *time.Time
	CancelledAt            *time.Time
	RefundedAt             *time.Time
	DisputedAt             *time.Time
}

// ShippingDTO holds the carrier-facing columns, prefixed shipping_.
type ShippingDTO struct {
	ShippedAt         *time.Time
	EstimatedDelivery *time.Time
	OutForDeliveryAt  *time.Time
	InTransitAt       *time.Time
	DeliveredAt       *time.Time `gorm:"index"`
	ActualDelivery    *time.Time
}

// PaymentDTO holds the derived payment columns, prefixed payment_.
type PaymentDTO struct {
	Status     int
	PaidDate   *time.Time
	RefundDate *time.Time
}

// AnalyticsDTO holds the timing figure columns.
type AnalyticsDTO struct {
	DeliveryTimeHours   *int64
	ProcessingTimeHours *int64
}

// HistoryEntryDTO is one row of the append-only status history table.
// The autoincrement id preserves commit order without relying on timestamp
// resolution.
type HistoryEntryDTO struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	OrderID   uuid.UUID `gorm:"type:uuid;index"`
	Status    int
	Timestamp time.Time
	Actor     string
	Note      string
	Reason    string
}

// TableName specifies the database table name for history entries.
func (HistoryEntryDTO) TableName() string {
	return "order_status_history"
}

// fromDomain converts an order domain aggregate to its database
// representation. History rows are mapped separately; see historyRowFromEntry.
func fromDomain(aggregate *order.Order) OrderDTO {
	snap := aggregate.Snapshot()

	dto := OrderDTO{
		ID:        snap.ID.Bytes(),
		BuyerID:   snap.BuyerID.Bytes(),
		SellerID:  snap.SellerID.Bytes(),
		CreatedAt: snap.CreatedAt,
		Status:    int(snap.Status),
		Version:   snap.Version,
		Milestones: MilestonesDTO{
			ConfirmedAt:            snap.Milestones.ConfirmedAt,
			ProcessingStartedAt:    snap.Milestones.ProcessingStartedAt,
			ManufacturingStartedAt: snap.Milestones.ManufacturingStartedAt,
			ReadyToShipAt:          snap.Milestones.ReadyToShipAt,
			CompletedAt:            snap.Milestones.CompletedAt,
			CancelledAt:            snap.Milestones.CancelledAt,
			RefundedAt:             snap.Milestones.RefundedAt,
			DisputedAt:             snap.Milestones.DisputedAt,
		},
		Shipping: ShippingDTO{
			ShippedAt:         snap.Shipping.ShippedAt,
			EstimatedDelivery: snap.Shipping.EstimatedDelivery,
			OutForDeliveryAt:  snap.Shipping.OutForDeliveryAt,
			InTransitAt:       snap.Shipping.InTransitAt,
			DeliveredAt:       snap.Shipping.DeliveredAt,
			ActualDelivery:    snap.Shipping.ActualDelivery,
		},
		Payment: PaymentDTO{
			Status:     int(snap.Payment.Status),
			PaidDate:   snap.Payment.PaidDate,
			RefundDate: snap.Payment.RefundDate,
		},
		Analytics: AnalyticsDTO{
			DeliveryTimeHours:   snap.Analytics.DeliveryTimeHours,
			ProcessingTimeHours: snap.Analytics.ProcessingTimeHours,
		},
	}

	if snap.Cancellation != nil {
		reason := snap.Cancellation.Reason
		by := snap.Cancellation.CancelledBy
		date := snap.Cancellation.CancelledDate
		dto.CancellationReason = &reason
		dto.CancelledBy = &by
		dto.CancelledDate = &date
	}

	if snap.Dispute != nil {
		reason := snap.Dispute.Reason
		by := snap.Dispute.DisputedBy
		date := snap.Dispute.DisputedDate
		dto.DisputeReason = &reason
		dto.DisputedBy = &by
		dto.DisputedDate = &date
	}

	return dto
}

// historyRowFromEntry converts one history entry to its database row.
func historyRowFromEntry(orderID kernel.UUID, entry order.HistoryEntry) HistoryEntryDTO {
	return HistoryEntryDTO{
		OrderID:   orderID.Bytes(),
		Status:    int(entry.Status),
		Timestamp: entry.Timestamp,
		Actor:     entry.Actor,
		Note:      entry.Note,
		Reason:    entry.Reason,
	}
}

// toDomain converts database rows to an order domain aggregate. The history
// rows must be ordered oldest first with the newest entry matching the
// current status; Restore re-validates that invariant.
func toDomain(dto OrderDTO, historyRows []HistoryEntryDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	buyerID, err := kernel.UUIDFromBytes(dto.BuyerID[:])
	if err != nil {
		return nil, err
	}

	sellerID, err := kernel.UUIDFromBytes(dto.SellerID[:])
	if err != nil {
		return nil, err
	}

	history := make([]order.HistoryEntry, len(historyRows))
	for i, row := range historyRows {
		history[i] = order.HistoryEntry{
			Status:    order.Status(row.Status),
			Timestamp: row.Timestamp,
			Actor:     row.Actor,
			Note:      row.Note,
			Reason:    row.Reason,
		}
	}

	snap := order.Snapshot{
		ID:        id,
		BuyerID:   buyerID,
		SellerID:  sellerID,
		CreatedAt: dto.CreatedAt,
		Status:    order.Status(dto.Status),
		Version:   dto.Version,
		History:   history,
		Milestones: order.Milestones{
			ConfirmedAt:            dto.Milestones.ConfirmedAt,
			ProcessingStartedAt:    dto.Milestones.ProcessingStartedAt,
			ManufacturingStartedAt: dto.Milestones.ManufacturingStartedAt,
			ReadyToShipAt:          dto.Milestones.ReadyToShipAt,
			CompletedAt:            dto.Milestones.CompletedAt,
			CancelledAt:            dto.Milestones.CancelledAt,
			RefundedAt:             dto.Milestones.RefundedAt,
			DisputedAt:             dto.Milestones.DisputedAt,
		},
		Shipping: order.Shipping{
			ShippedAt:         dto.Shipping.ShippedAt,
			EstimatedDelivery: dto.Shipping.EstimatedDelivery,
			OutForDeliveryAt:  dto.Shipping.OutForDeliveryAt,
			InTransitAt:       dto.Shipping.InTransitAt,
			DeliveredAt:       dto.Shipping.DeliveredAt,
			ActualDelivery:    dto.Shipping.ActualDelivery,
		},
		Payment: order.Payment{
			Status:     order.PaymentStatus(dto.Payment.Status),
			PaidDate:   dto.Payment.PaidDate,
			RefundDate: dto.Payment.RefundDate,
		},
		Analytics: order.Analytics{
			DeliveryTimeHours:   dto.Analytics.DeliveryTimeHours,
			ProcessingTimeHours: dto.Analytics.ProcessingTimeHours,
		},
	}

	if dto.CancellationReason != nil {
		snap.Cancellation = &order.Cancellation{
			Reason:      *dto.CancellationReason,
			CancelledBy: derefString(dto.CancelledBy),
		}
		if dto.CancelledDate != nil {
			snap.Cancellation.CancelledDate = *dto.CancelledDate
		}
	}

	if dto.DisputeReason != nil {
		snap.Dispute = &order.Dispute{
			Reason:     *dto.DisputeReason,
			DisputedBy: derefString(dto.DisputedBy),
		}
		if dto.DisputedDate != nil {
			snap.Dispute.DisputedDate = *dto.DisputedDate
		}
	}

	return order.Restore(snap)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
