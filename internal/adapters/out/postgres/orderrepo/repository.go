package orderrepo

import (
	"context"
	"errors"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"

	"gorm.io/gorm"
)

// historyLoadLimit bounds how much history a Get hydrates into the
// aggregate. The tail is enough for the transition protocol and the response
// payload; full history stays in the table.
const historyLoadLimit = 5

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order to the database, history included.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return errs.NewStoreUnavailableError("add order", err)
	}

	for _, entry := range aggregate.History() {
		row := historyRowFromEntry(aggregate.ID(), entry)
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return errs.NewStoreUnavailableError("add order history", err)
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID with the most recent slice of its history.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("orderId", id.String())
		}
		// Anything other than a missing row is a store fault, retryable by
		// the caller.
		return nil, errs.NewStoreUnavailableError("get order", err)
	}

	historyRows, err := r.loadHistoryTail(ctx, dto.ID)
	if err != nil {
		return nil, err
	}

	return toDomain(dto, historyRows)
}

// UpdateWithVersion persists the aggregate behind a compare-and-swap guard
// and appends the transition's history entry in the same statement batch.
// The surrounding unit of work makes the pair atomic.
func (r *GormOrderRepository) UpdateWithVersion(
	ctx context.Context,
	aggregate *order.Order,
	expectedVersion int,
) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, expectedVersion).
		Updates(&dto)
	if result.Error != nil {
		return errs.NewStoreUnavailableError("update order", result.Error)
	}

	// Zero matched rows means another writer won the version race.
	if result.RowsAffected == 0 {
		return errs.NewVersionConflictError("orderId", aggregate.ID().String(), expectedVersion)
	}

	history := aggregate.History()
	if len(history) > 0 {
		row := historyRowFromEntry(aggregate.ID(), history[len(history)-1])
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return errs.NewStoreUnavailableError("update order history", err)
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// GetAllDeliveredBefore retrieves orders in delivered status whose delivery
// timestamp is older than the cutoff, oldest delivery first.
func (r *GormOrderRepository) GetAllDeliveredBefore(
	ctx context.Context,
	cutoff time.Time,
) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("status = ? AND shipping_delivered_at < ?", order.Delivered, cutoff).
		Order("shipping_delivered_at").
		Find(&dtos).Error
	if err != nil {
		return nil, errs.NewStoreUnavailableError("get delivered orders", err)
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		historyRows, histErr := r.loadHistoryTail(ctx, dto.ID)
		if histErr != nil {
			return nil, histErr
		}

		aggregate, domErr := toDomain(dto, historyRows)
		if domErr != nil {
			return nil, domErr
		}
		orders = append(orders, aggregate)
	}

	return orders, nil
}

// loadHistoryTail reads the newest historyLoadLimit history rows of an order
// and returns them oldest first.
func (r *GormOrderRepository) loadHistoryTail(
	ctx context.Context,
	orderID any,
) ([]HistoryEntryDTO, error) {
	var newestFirst []HistoryEntryDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id DESC").
		Limit(historyLoadLimit).
		Find(&newestFirst).Error
	if err != nil {
		return nil, errs.NewStoreUnavailableError("get order history", err)
	}

	rows := make([]HistoryEntryDTO, len(newestFirst))
	for i, row := range newestFirst {
		rows[len(newestFirst)-1-i] = row
	}

	return rows, nil
}
