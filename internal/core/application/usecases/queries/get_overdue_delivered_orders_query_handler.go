package queries

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOverdueDeliveredOrdersQueryHandler retrieves delivered orders that sat
// past the finalization cutoff. Results are sorted by delivery time, oldest
// first.
type GetOverdueDeliveredOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetOverdueDeliveredOrdersQueryHandler creates a handler for overdue
// delivered order queries.
func NewGetOverdueDeliveredOrdersQueryHandler(db *gorm.DB) GetOverdueDeliveredOrdersQueryHandler {
	return GetOverdueDeliveredOrdersQueryHandler{db: db}
}

// Handle executes the query.
func (h GetOverdueDeliveredOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetOverdueDeliveredOrdersQuery,
) ([]GetOverdueDeliveredOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	overdue := make([]GetOverdueDeliveredOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			seller_id,
			shipping_delivered_at,
			version
		FROM orders
		WHERE status = ?
		  AND shipping_delivered_at < ?
		ORDER BY shipping_delivered_at
	`, order.Delivered, query.Cutoff()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetOverdueDeliveredOrdersQueryResponse
		var id, sellerID uuid.UUID

		if err = rows.Scan(&id, &sellerID, &resp.DeliveredAt, &resp.Version); err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.OrderID = orderID

		seller, idErr := kernel.UUIDFromBytes(sellerID[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.SellerID = seller

		overdue = append(overdue, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return overdue, nil
}
