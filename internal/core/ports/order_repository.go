// Package ports defines the contracts between the order lifecycle core and
// its infrastructure. These interfaces establish boundaries between the
// domain layer and adapters, enabling dependency inversion and testability.
package ports

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
//
// The repository is the only component allowed to write status, statusHistory,
// or version; all writes flow through the conditional-update protocol.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier, including
	// the most recent entries of its status history.
	// Returns errs.ObjectNotFoundError when the id does not resolve.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// UpdateWithVersion persists the aggregate with a compare-and-swap guard:
	// the write only applies if the stored version still equals
	// expectedVersion. Exactly one history entry is appended alongside the
	// status change; the write is atomic against the backing store.
	//
	// Returns errs.VersionConflictError when another writer committed first
	// (zero records matched). The caller must re-fetch and re-validate before
	// retrying; the repository never retries internally.
	UpdateWithVersion(ctx context.Context, aggregate *order.Order, expectedVersion int) error

	// GetAllDeliveredBefore retrieves orders sitting in delivered status whose
	// delivery timestamp is older than the cutoff. Used by the auto-complete
	// job to finalize stale deliveries.
	GetAllDeliveredBefore(ctx context.Context, cutoff time.Time) ([]*order.Order, error)
}
