package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"
)

// systemActor is recorded in history and audit entries for transitions the
// platform applies on the seller's behalf.
const systemActor = "system"

// CompleteDeliveredOrdersCommandHandler finalizes delivered orders that sat
// past the configured grace period. Each order goes through the same
// version-guarded transition as a seller-initiated change; an order that
// loses its conditional write is skipped, not retried, since the next run
// re-reads current state anyway.
type CompleteDeliveredOrdersCommandHandler struct {
	uowFactory OrderUoWFactory
	audit      ports.AuditSink
	logger     *slog.Logger
}

// NewCompleteDeliveredOrdersCommandHandler creates a handler for automatic
// order finalization.
func NewCompleteDeliveredOrdersCommandHandler(
	uowFactory OrderUoWFactory,
	audit ports.AuditSink,
	logger *slog.Logger,
) CompleteDeliveredOrdersCommandHandler {
	return CompleteDeliveredOrdersCommandHandler{
		uowFactory: uowFactory,
		audit:      audit,
		logger:     logger.With("component", "complete_delivered_orders_handler"),
	}
}

// Handle finalizes every delivered order older than the cutoff.
// Returns the number of orders completed.
func (h *CompleteDeliveredOrdersCommandHandler) Handle(
	ctx context.Context,
	cmd CompleteDeliveredOrdersCommand,
) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	stale, err := orderRepo.GetAllDeliveredBefore(ctx, cmd.Cutoff())
	if err != nil {
		return 0, err
	}

	completed := 0
	records := make([]ports.AuditRecord, 0, len(stale))
	for _, aggregate := range stale {
		started := time.Now()
		expectedVersion := aggregate.Version()
		previous := aggregate.Status()

		if err = aggregate.ApplyTransition(order.TransitionRequest{
			Requested: order.Completed,
			Actor:     systemActor,
			Note:      "auto-completed after delivery grace period",
		}, time.Now()); err != nil {
			// The deferred rollback discards the whole sweep, so nothing
			// counts as completed.
			return 0, err
		}

		if err = orderRepo.UpdateWithVersion(ctx, aggregate, expectedVersion); err != nil {
			if errors.Is(err, errs.ErrVersionConflict) {
				// Another writer touched the order since the read; it no
				// longer qualifies and the next run will re-evaluate it.
				h.logger.InfoContext(ctx, "Skipping auto-completion, order changed concurrently",
					"order_id", aggregate.ID().String(),
				)
				continue
			}
			return 0, err
		}

		completed++
		records = append(records, ports.AuditRecord{
			Action:           auditActionStatusUpdate,
			OrderID:          aggregate.ID().String(),
			Actor:            systemActor,
			PreviousStatus:   previous.String(),
			NewStatus:        aggregate.Status().String(),
			Note:             "auto-completed after delivery grace period",
			ProcessingTimeMs: time.Since(started).Milliseconds(),
			Timestamp:        time.Now(),
		})
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	// Audit only what actually committed.
	for _, record := range records {
		if auditErr := h.audit.Append(ctx, record); auditErr != nil {
			h.logger.ErrorContext(ctx, "Audit append failed",
				"order_id", record.OrderID,
				"error", auditErr,
			)
		}
	}

	return completed, nil
}
