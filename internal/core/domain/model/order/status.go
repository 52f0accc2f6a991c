package order

import (
	"fmt"

	"marketplace/internal/pkg/errs"
)

// Status represents the lifecycle state of a marketplace order.
// It implements a state machine with defined transitions to ensure
// orders follow the correct fulfilment workflow.
//
// State transitions:
//
//	draft -> pending -> confirmed -> processing -> manufacturing
//	      -> ready_to_ship -> shipped -> {out_for_delivery | in_transit | delivered}
//	      -> delivered -> completed
//
// Every state up to ready_to_ship may also move to cancelled, and a
// cancelled order may be reactivated back to pending. Completed and
// refunded are terminal; disputed is the only escape hatch and resolves
// to cancelled or completed.
//
// Status is a value object that validates state transitions
// and provides string representations for persistence and display.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Draft is an order that has been sketched but not yet submitted.
	Draft

	// Pending is a submitted order awaiting seller confirmation.
	Pending

	// Confirmed means the seller has accepted the order.
	Confirmed

	// Processing means the seller has started preparing the order.
	Processing

	// Manufacturing means the goods are being produced.
	Manufacturing

	// ReadyToShip means production finished and the order awaits pickup.
	ReadyToShip

	// Shipped means the order has left the seller's facility.
	Shipped

	// OutForDelivery means the carrier is on its final leg.
	OutForDelivery

	// InTransit means the order is moving through the carrier network.
	InTransit

	// Delivered means the buyer has received the goods.
	Delivered

	// Completed is the terminal state of a successful order.
	Completed

	// Cancelled means the order was called off; it may be reactivated.
	Cancelled

	// Refunded is the terminal state of a refunded order.
	Refunded

	// Disputed means the buyer or seller has escalated the order.
	Disputed
)

// getStatusStrings returns a map of Status values to their string representations.
// All statuses are included for string conversion.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "unknown",
		Draft:          "draft",
		Pending:        "pending",
		Confirmed:      "confirmed",
		Processing:     "processing",
		Manufacturing:  "manufacturing",
		ReadyToShip:    "ready_to_ship",
		Shipped:        "shipped",
		OutForDelivery: "out_for_delivery",
		InTransit:      "in_transit",
		Delivered:      "delivered",
		Completed:      "completed",
		Cancelled:      "cancelled",
		Refunded:       "refunded",
		Disputed:       "disputed",
	}
}

// getValidStatuses returns the set of statuses accepted from external input.
// Unknown is intentionally excluded.
func getValidStatuses() map[Status]string {
	strings := getStatusStrings()
	delete(strings, Unknown)
	return strings
}

// getAllowedTransitions returns the adjacency list of the order state machine.
// The key is the current status, the value the set of statuses it may move to.
// Any pair not listed here is an illegal transition.
func getAllowedTransitions() map[Status][]Status {
	return map[Status][]Status{
		Draft:          {Pending, Cancelled},
		Pending:        {Confirmed, Cancelled},
		Confirmed:      {Processing, Cancelled},
		Processing:     {Manufacturing, Cancelled},
		Manufacturing:  {ReadyToShip, Cancelled},
		ReadyToShip:    {Shipped, Cancelled},
		Shipped:        {OutForDelivery, InTransit, Delivered},
		OutForDelivery: {Delivered},
		InTransit:      {Delivered},
		Delivered:      {Completed},
		Completed:      {},
		Cancelled:      {Pending}, // reactivation allowed
		Refunded:       {},
		Disputed:       {Cancelled, Completed},
	}
}

// StatusFromString parses a status from its wire representation.
// Returns an InvalidStatusError if the string is not a member of the
// status enumeration.
func StatusFromString(s string) (Status, error) {
	for status, str := range getValidStatuses() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, NewInvalidStatusError(s)
}

// Validate checks if the Status value is a member of the enumeration.
// Unknown (0) and out-of-range values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatuses()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire representation of the status.
// Returns "unknown" for invalid status values.
// Implements the fmt.Stringer interface.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status is final with respect to normal flow.
// Completed and refunded orders are immutable business objects; the only
// path out of a finalized order is the separately-tracked dispute flow.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Refunded
}

// AllowedNext returns the set of statuses the order may legally move to
// from this status. The returned slice is a copy and safe to modify.
func (s Status) AllowedNext() []Status {
	allowed := getAllowedTransitions()[s]
	next := make([]Status, len(allowed))
	copy(next, allowed)
	return next
}

// CanTransitionTo reports whether moving from this status to requested
// is present in the adjacency list. It performs no other rule checks;
// use ValidateTransition for the full contract.
func (s Status) CanTransitionTo(requested Status) bool {
	for _, allowed := range getAllowedTransitions()[s] {
		if allowed == requested {
			return true
		}
	}
	return false
}

// ValidateTransition decides whether the order may move from this status to
// requested. Rules are applied in a fixed precedence:
//
//  1. requested must be a member of the status enumeration
//  2. a cancellation request must carry a non-empty reason
//  3. a terminal current status rejects everything (finalized orders are
//     immutable even where the adjacency list would technically allow it)
//  4. the (current, requested) pair must appear in the adjacency list
//
// The reason parameter is only consulted when requested is Cancelled.
func (s Status) ValidateTransition(requested Status, reason string) error {
	if err := requested.Validate(); err != nil {
		return NewInvalidStatusError(requested.String())
	}

	if requested == Cancelled && reason == "" {
		return ErrCancellationReasonRequired
	}

	if s.IsTerminal() {
		return NewFinalizedError(s)
	}

	if !s.CanTransitionTo(requested) {
		return NewInvalidTransitionError(s, requested)
	}

	return nil
}
