package order

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the transition error taxonomy. Concrete error types
// unwrap to these so callers can classify with errors.Is.
var (
	ErrInvalidStatusValue = errors.New("status value is not a member of the status enumeration")
	ErrInvalidTransition  = errors.New("status transition is not allowed")
	ErrOrderFinalized     = errors.New("order is finalized and cannot change status")

	// ErrCancellationReasonRequired is returned when a cancellation is
	// requested without a reason. Checked before the adjacency-list lookup.
	ErrCancellationReasonRequired = errors.New("cancellation requires a non-empty reason")
)

// InvalidStatusError indicates that a requested status value is not a member
// of the status enumeration.
type InvalidStatusError struct {
	Value string
}

// NewInvalidStatusError creates an InvalidStatusError for the given raw value.
func NewInvalidStatusError(value string) *InvalidStatusError {
	return &InvalidStatusError{Value: value}
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status value: %q", e.Value)
}

func (e *InvalidStatusError) Unwrap() error {
	return ErrInvalidStatusValue
}

// FinalizedError indicates that a transition was attempted on an order in a
// terminal status. Finalized orders are immutable business objects.
type FinalizedError struct {
	Current Status
}

// NewFinalizedError creates a FinalizedError for the given terminal status.
func NewFinalizedError(current Status) *FinalizedError {
	return &FinalizedError{Current: current}
}

func (e *FinalizedError) Error() string {
	return fmt.Sprintf("order is finalized: no transitions allowed from %s", e.Current)
}

func (e *FinalizedError) Unwrap() error {
	return ErrOrderFinalized
}

// InvalidTransitionError indicates that a (current, requested) pair is not in
// the adjacency list. It carries the allowed successor set so the caller can
// self-correct without a second round trip.
type InvalidTransitionError struct {
	Current   Status
	Requested Status
	Allowed   []Status
}

// NewInvalidTransitionError creates an InvalidTransitionError, capturing the
// allowed successors of current.
func NewInvalidTransitionError(current, requested Status) *InvalidTransitionError {
	return &InvalidTransitionError{
		Current:   current,
		Requested: requested,
		Allowed:   current.AllowedNext(),
	}
}

func (e *InvalidTransitionError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = s.String()
	}
	return fmt.Sprintf("cannot transition from %s to %s, allowed: [%s]",
		e.Current, e.Requested, strings.Join(allowed, ", "))
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
