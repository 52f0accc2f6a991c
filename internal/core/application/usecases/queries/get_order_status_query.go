// Package queries contains read-only operations for the order lifecycle.
// Implements the Query side of the CQRS architecture: handlers read the
// database directly and return plain response structs, bypassing the
// aggregate and its unit of work.
package queries

import (
	"errors"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var (
	ErrGetOrderStatusQueryIsNotConstructed = errors.New(
		"GetOrderStatusQuery must be created via NewGetOrderStatusQuery constructor",
	)
)

// historyTailLimit bounds how many recent history entries a status read
// returns. Full history stays queryable through external tooling.
const historyTailLimit = 5

// GetOrderStatusQuery retrieves the current lifecycle state of one order:
// status, version, the set of legal next statuses, and the most recent
// history entries.
//
// Example:
//
//	query, err := NewGetOrderStatusQuery(orderID)
//	if err != nil {
//	    return err
//	}
//
//	state, err := handler.Handle(ctx, query)
type GetOrderStatusQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderStatusQuery creates a query for one order's lifecycle state.
func NewGetOrderStatusQuery(orderID kernel.UUID) (GetOrderStatusQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderStatusQuery{}, err
	}

	return GetOrderStatusQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetOrderStatusQueryIsNotConstructed if validation fails.
func (q GetOrderStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderStatusQueryIsNotConstructed)
}

// OrderID returns the identifier of the order to read.
func (q GetOrderStatusQuery) OrderID() kernel.UUID {
	return q.orderID
}

// HistoryEntryResponse is one status history entry in wire representation.
type HistoryEntryResponse struct {
	Status    string
	Timestamp time.Time
	Actor     string
	Note      string
	Reason    string
}

// GetOrderStatusQueryResponse is the lifecycle state of one order. Statuses
// are in wire representation; AllowedNext is empty for terminal statuses.
type GetOrderStatusQueryResponse struct {
	OrderID       kernel.UUID
	Status        string
	Version       int
	IsTerminal    bool
	AllowedNext   []string
	RecentHistory []HistoryEntryResponse
}
