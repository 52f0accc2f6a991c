package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"
)

// auditActionStatusUpdate identifies status transitions in the audit trail.
const auditActionStatusUpdate = "order_status_update"

// RejectedTransitionError wraps a rejected status change together with the
// authoritative state of the order at read time, so a client can reconcile
// its local view without a separate read. Unwrap exposes the rejection cause
// (ErrInvalidTransition, ErrOrderFinalized, ErrCancellationReasonRequired,
// ErrVersionConflict, ...).
type RejectedTransitionError struct {
	OrderID        string
	CurrentStatus  order.Status
	CurrentVersion int
	Err            error
}

func (e *RejectedTransitionError) Error() string {
	return fmt.Sprintf("status change rejected for order %s (current status %s, version %d): %s",
		e.OrderID, e.CurrentStatus, e.CurrentVersion, e.Err)
}

func (e *RejectedTransitionError) Unwrap() error {
	return e.Err
}

// ChangeOrderStatusResult is the successful outcome of a status change.
// HistoryTail holds the most recent five history entries including the one
// just appended, oldest first.
type ChangeOrderStatusResult struct {
	Order            *order.Order
	PreviousStatus   order.Status
	HistoryTail      []order.HistoryEntry
	CustomerNotified bool
	ProcessingTimeMs int64
}

// ChangeOrderStatusCommandHandler implements the transition protocol for a
// single order: read, validate against the state read, apply the derived
// fields, and persist through a version-guarded conditional write. The
// handler holds no locks; concurrent writers against the same order race
// only at the conditional write, which the store resolves atomically.
//
// Notification delivery and audit appending happen strictly after commit and
// never influence the outcome of the transition.
type ChangeOrderStatusCommandHandler struct {
	uowFactory OrderUoWFactory
	notifier   ports.NotificationSink
	audit      ports.AuditSink
	logger     *slog.Logger
}

// NewChangeOrderStatusCommandHandler creates a handler for order status changes.
// Requires an OrderUoWFactory for transactional persistence plus the
// notification and audit sinks used for post-commit side effects.
func NewChangeOrderStatusCommandHandler(
	uowFactory OrderUoWFactory,
	notifier ports.NotificationSink,
	audit ports.AuditSink,
	logger *slog.Logger,
) ChangeOrderStatusCommandHandler {
	return ChangeOrderStatusCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		audit:      audit,
		logger:     logger.With("component", "change_order_status_handler"),
	}
}

// Handle processes the status change command.
//
// Validation errors and lost conditional writes return a
// RejectedTransitionError carrying the order's status and version as read,
// leaving no partial state. A lost write is never retried here: the caller
// owns the retry semantics because a retry must re-validate against the new
// state.
func (h *ChangeOrderStatusCommandHandler) Handle(
	ctx context.Context,
	cmd ChangeOrderStatusCommand,
) (*ChangeOrderStatusResult, error) {
	started := time.Now()

	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	aggregate, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	// An order owned by another seller is indistinguishable from an absent one.
	if !aggregate.SellerID().IsEqual(cmd.SellerID()) {
		return nil, errs.NewObjectNotFoundError("orderId", cmd.OrderID().String())
	}

	previous := aggregate.Status()
	expectedVersion := aggregate.Version()

	if err = aggregate.ApplyTransition(order.TransitionRequest{
		Requested:         cmd.Requested(),
		Actor:             cmd.SellerID().String(),
		Note:              cmd.Note(),
		Reason:            cmd.Reason(),
		EstimatedDelivery: cmd.EstimatedDeliveryDate(),
	}, time.Now()); err != nil {
		return nil, h.reject(aggregate, err)
	}

	if err = orderRepo.UpdateWithVersion(ctx, aggregate, expectedVersion); err != nil {
		if errors.Is(err, errs.ErrVersionConflict) {
			// The state read at the start of the protocol is stale once
			// another writer wins, so re-read before reporting it. If the
			// re-read fails too, the state as read is still the best answer
			// available.
			status, version := previous, expectedVersion
			if current, readErr := orderRepo.Get(ctx, cmd.OrderID()); readErr == nil {
				status, version = current.Status(), current.Version()
			}
			return nil, &RejectedTransitionError{
				OrderID:        aggregate.ID().String(),
				CurrentStatus:  status,
				CurrentVersion: version,
				Err:            err,
			}
		}
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	notified := h.notifyCustomer(ctx, cmd, aggregate, previous)
	h.appendAudit(ctx, cmd, aggregate, previous, notified, started)

	return &ChangeOrderStatusResult{
		Order:            aggregate,
		PreviousStatus:   previous,
		HistoryTail:      aggregate.HistoryTail(5),
		CustomerNotified: notified,
		ProcessingTimeMs: time.Since(started).Milliseconds(),
	}, nil
}

// reject wraps a domain rejection with the authoritative state as read.
// The aggregate is untouched after a rejected ApplyTransition.
func (h *ChangeOrderStatusCommandHandler) reject(aggregate *order.Order, cause error) error {
	return &RejectedTransitionError{
		OrderID:        aggregate.ID().String(),
		CurrentStatus:  aggregate.Status(),
		CurrentVersion: aggregate.Version(),
		Err:            cause,
	}
}

// notifyCustomer attempts best-effort delivery of the transition notification.
// The transition is already committed; a failed send is logged and reported
// as customerNotified=false, nothing more.
func (h *ChangeOrderStatusCommandHandler) notifyCustomer(
	ctx context.Context,
	cmd ChangeOrderStatusCommand,
	aggregate *order.Order,
	previous order.Status,
) bool {
	if !cmd.NotifyCustomer() {
		return false
	}

	notification := order.NewStatusNotification(
		aggregate.ID().String(),
		aggregate.BuyerID().String(),
		previous,
		aggregate.Status(),
		cmd.Note(),
		time.Now(),
	)

	if err := h.notifier.Send(ctx, notification); err != nil {
		h.logger.WarnContext(ctx, "Customer notification failed",
			"order_id", aggregate.ID().String(),
			"new_status", aggregate.Status().String(),
			"error", err,
		)
		return false
	}

	return true
}

// appendAudit records the committed transition; failures are logged only.
func (h *ChangeOrderStatusCommandHandler) appendAudit(
	ctx context.Context,
	cmd ChangeOrderStatusCommand,
	aggregate *order.Order,
	previous order.Status,
	notified bool,
	started time.Time,
) {
	record := ports.AuditRecord{
		Action:           auditActionStatusUpdate,
		OrderID:          aggregate.ID().String(),
		Actor:            cmd.SellerID().String(),
		PreviousStatus:   previous.String(),
		NewStatus:        aggregate.Status().String(),
		Reason:           cmd.Reason(),
		Note:             cmd.Note(),
		NotificationSent: notified,
		ProcessingTimeMs: time.Since(started).Milliseconds(),
		Timestamp:        time.Now(),
		SourceIP:         cmd.SourceIP(),
		UserAgent:        cmd.UserAgent(),
	}

	if err := h.audit.Append(ctx, record); err != nil {
		h.logger.ErrorContext(ctx, "Audit append failed",
			"order_id", aggregate.ID().String(),
			"error", err,
		)
	}
}
