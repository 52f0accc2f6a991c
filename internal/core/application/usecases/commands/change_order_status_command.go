package commands

import (
	"errors"
	"time"
	"unicode/utf8"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var (
	ErrChangeOrderStatusCommandIsNotConstructed = errors.New(
		"ChangeOrderStatusCommand must be created via NewChangeOrderStatusCommand constructor",
	)
)

const (
	maxNoteLength   = 1000
	maxReasonLength = 500
)

// ChangeOrderStatusOptions carries the optional inputs of a status change.
// EstimatedDeliveryDate is only meaningful when the requested status is
// shipped. SourceIP and UserAgent are request metadata recorded in the audit
// trail.
type ChangeOrderStatusOptions struct {
	Note                  string
	Reason                string
	NotifyCustomer        bool
	EstimatedDeliveryDate *time.Time
	SourceIP              string
	UserAgent             string
}

// ChangeOrderStatusCommand represents a seller's request to move an order to
// a new lifecycle status. The requested status must be a member of the status
// enumeration; whether the transition itself is legal is decided by the order
// aggregate against its current state.
//
// Example:
//
//	cmd, err := NewChangeOrderStatusCommand(orderID, sellerID, order.Confirmed, ChangeOrderStatusOptions{
//	    Note:           "confirmed by production planning",
//	    NotifyCustomer: true,
//	})
//	if err != nil {
//	    return fmt.Errorf("invalid status change request: %w", err)
//	}
//
//	result, err := handler.Handle(ctx, cmd)
type ChangeOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	sellerID  kernel.UUID
	requested order.Status
	options   ChangeOrderStatusOptions

	guard guard.ConstructorGuard
}

// NewChangeOrderStatusCommand creates a command to change an order's status.
// Validates that both identifiers are valid, the requested status is a member
// of the enumeration, and note/reason respect their length limits.
func NewChangeOrderStatusCommand(
	orderID, sellerID kernel.UUID,
	requested order.Status,
	options ChangeOrderStatusOptions,
) (ChangeOrderStatusCommand, error) {
	cmd := ChangeOrderStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setSellerID(sellerID),
		cmd.setRequested(requested),
		cmd.setOptions(options),
	); err != nil {
		return ChangeOrderStatusCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrChangeOrderStatusCommandIsNotConstructed if validation fails.
func (c ChangeOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStatusCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to transition.
func (c ChangeOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// SellerID returns the identifier of the acting seller.
func (c ChangeOrderStatusCommand) SellerID() kernel.UUID {
	return c.sellerID
}

// Requested returns the requested target status.
func (c ChangeOrderStatusCommand) Requested() order.Status {
	return c.requested
}

// Note returns the optional transition note.
func (c ChangeOrderStatusCommand) Note() string {
	return c.options.Note
}

// Reason returns the transition reason. Mandatory for cancellations,
// optional otherwise.
func (c ChangeOrderStatusCommand) Reason() string {
	return c.options.Reason
}

// NotifyCustomer reports whether the buyer should be notified of the change.
func (c ChangeOrderStatusCommand) NotifyCustomer() bool {
	return c.options.NotifyCustomer
}

// EstimatedDeliveryDate returns the optional carrier delivery estimate.
func (c ChangeOrderStatusCommand) EstimatedDeliveryDate() *time.Time {
	return c.options.EstimatedDeliveryDate
}

// SourceIP returns the request source address recorded for auditing.
func (c ChangeOrderStatusCommand) SourceIP() string {
	return c.options.SourceIP
}

// UserAgent returns the request user agent recorded for auditing.
func (c ChangeOrderStatusCommand) UserAgent() string {
	return c.options.UserAgent
}

func (c *ChangeOrderStatusCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *ChangeOrderStatusCommand) setSellerID(sellerID kernel.UUID) error {
	if err := sellerID.Validate(); err != nil {
		return err
	}

	c.sellerID = sellerID
	return nil
}

func (c *ChangeOrderStatusCommand) setRequested(requested order.Status) error {
	if err := requested.Validate(); err != nil {
		return order.NewInvalidStatusError(requested.String())
	}

	c.requested = requested
	return nil
}

func (c *ChangeOrderStatusCommand) setOptions(options ChangeOrderStatusOptions) error {
	if length := utf8.RuneCountInString(options.Note); length > maxNoteLength {
		return errs.NewValueIsOutOfRangeError("noteLength", length, 0, maxNoteLength)
	}

	if length := utf8.RuneCountInString(options.Reason); length > maxReasonLength {
		return errs.NewValueIsOutOfRangeError("reasonLength", length, 0, maxReasonLength)
	}

	c.options = options
	return nil
}
