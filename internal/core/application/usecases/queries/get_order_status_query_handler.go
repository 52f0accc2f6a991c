package queries

import (
	"context"
	"database/sql"
	"errors"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetOrderStatusQueryHandler reads an order's lifecycle state from the
// database. The read is not transactional with writers: a caller racing a
// transition sees either the old or the new state, both internally
// consistent because the status row and its history commit atomically.
type GetOrderStatusQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderStatusQueryHandler creates a handler for order status reads.
// Requires a GORM database connection for query execution.
func NewGetOrderStatusQueryHandler(db *gorm.DB) GetOrderStatusQueryHandler {
	return GetOrderStatusQueryHandler{db: db}
}

// Handle executes the status read. Returns errs.ObjectNotFoundError when the
// order id does not resolve. RecentHistory holds at most the five most
// recent entries, oldest first.
func (h GetOrderStatusQueryHandler) Handle(
	ctx context.Context,
	query GetOrderStatusQuery,
) (GetOrderStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	var statusValue, version int
	err := h.db.WithContext(ctx).Raw(`
		SELECT
			status,
			version
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Row().Scan(&statusValue, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GetOrderStatusQueryResponse{},
				errs.NewObjectNotFoundError("orderId", query.OrderID().String())
		}
		return GetOrderStatusQueryResponse{}, err
	}

	status := order.Status(statusValue)
	if err = status.Validate(); err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	history, err := h.loadRecentHistory(ctx, query)
	if err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	allowed := status.AllowedNext()
	allowedNext := make([]string, len(allowed))
	for i, s := range allowed {
		allowedNext[i] = s.String()
	}

	return GetOrderStatusQueryResponse{
		OrderID:       query.OrderID(),
		Status:        status.String(),
		Version:       version,
		IsTerminal:    status.IsTerminal(),
		AllowedNext:   allowedNext,
		RecentHistory: history,
	}, nil
}

// loadRecentHistory reads the newest historyTailLimit entries and returns
// them oldest first.
func (h GetOrderStatusQueryHandler) loadRecentHistory(
	ctx context.Context,
	query GetOrderStatusQuery,
) ([]HistoryEntryResponse, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			status,
			timestamp,
			actor,
			note,
			reason
		FROM order_status_history
		WHERE order_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, query.OrderID().Bytes(), historyTailLimit).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	newestFirst := make([]HistoryEntryResponse, 0, historyTailLimit)
	for rows.Next() {
		var entry HistoryEntryResponse
		var statusValue int
		var note, reason sql.NullString

		if err = rows.Scan(&statusValue, &entry.Timestamp, &entry.Actor, &note, &reason); err != nil {
			return nil, err
		}

		entryStatus := order.Status(statusValue)
		if err = entryStatus.Validate(); err != nil {
			return nil, err
		}
		entry.Status = entryStatus.String()
		entry.Note = note.String
		entry.Reason = reason.String
		newestFirst = append(newestFirst, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	history := make([]HistoryEntryResponse, len(newestFirst))
	for i, entry := range newestFirst {
		history[len(newestFirst)-1-i] = entry
	}

	return history, nil
}
