package commands

import (
	"errors"
	"time"

	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var ErrCompleteDeliveredOrdersCommandIsNotConstructed = errors.New(
	"CompleteDeliveredOrdersCommand must be created via NewCompleteDeliveredOrdersCommand constructor",
)

// CompleteDeliveredOrdersCommand triggers finalization of orders that were
// delivered before the cutoff and were never completed by their seller.
// It is issued periodically by the auto-complete job.
type CompleteDeliveredOrdersCommand struct {
	cutoff time.Time

	guard guard.ConstructorGuard
}

// NewCompleteDeliveredOrdersCommand creates a command to finalize stale
// delivered orders. The cutoff must be non-zero.
func NewCompleteDeliveredOrdersCommand(cutoff time.Time) (CompleteDeliveredOrdersCommand, error) {
	if cutoff.IsZero() {
		return CompleteDeliveredOrdersCommand{}, errs.NewValueIsRequiredError("cutoff")
	}

	return CompleteDeliveredOrdersCommand{
		cutoff: cutoff,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCompleteDeliveredOrdersCommandIsNotConstructed if validation fails.
func (c CompleteDeliveredOrdersCommand) Validate() error {
	return c.guard.Validate(ErrCompleteDeliveredOrdersCommandIsNotConstructed)
}

// Cutoff returns the delivery-time threshold before which orders are finalized.
func (c CompleteDeliveredOrdersCommand) Cutoff() time.Time {
	return c.cutoff
}
