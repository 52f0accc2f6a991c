package queries

import (
	"errors"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var (
	ErrGetOverdueDeliveredOrdersQueryIsNotConstructed = errors.New(
		"GetOverdueDeliveredOrdersQuery must be created via NewGetOverdueDeliveredOrdersQuery constructor",
	)
)

// GetOverdueDeliveredOrdersQuery lists orders sitting in delivered status
// past the cutoff. Used for monitoring the auto-complete backlog; the job
// itself works through the repository, not this query.
type GetOverdueDeliveredOrdersQuery struct {
	cutoff time.Time

	guard guard.ConstructorGuard
}

// NewGetOverdueDeliveredOrdersQuery creates a query for overdue delivered
// orders. The cutoff must be non-zero.
func NewGetOverdueDeliveredOrdersQuery(cutoff time.Time) (GetOverdueDeliveredOrdersQuery, error) {
	if cutoff.IsZero() {
		return GetOverdueDeliveredOrdersQuery{}, errs.NewValueIsRequiredError("cutoff")
	}

	return GetOverdueDeliveredOrdersQuery{
		cutoff: cutoff,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetOverdueDeliveredOrdersQueryIsNotConstructed if validation fails.
func (q GetOverdueDeliveredOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetOverdueDeliveredOrdersQueryIsNotConstructed)
}

// Cutoff returns the delivery-time threshold.
func (q GetOverdueDeliveredOrdersQuery) Cutoff() time.Time {
	return q.cutoff
}

// GetOverdueDeliveredOrdersQueryResponse represents one overdue delivered
// order awaiting finalization.
type GetOverdueDeliveredOrdersQueryResponse struct {
	OrderID     kernel.UUID
	SellerID    kernel.UUID
	DeliveredAt time.Time
	Version     int
}
