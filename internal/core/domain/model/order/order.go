package order

import (
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// the NewOrder or Restore factory functions. This ensures all orders are properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or Restore")
)

// millisPerHour is the divisor for hour analytics. Hour figures use floor
// division of the millisecond delta and are clamped to zero: the two
// timestamps come from different clock reads and skew must never produce
// negative analytics.
const millisPerHour = 3_600_000

// PaymentStatus represents the payment state derived from order transitions.
// It is never set directly by a caller.
type PaymentStatus int

const (
	// PaymentUnpaid is the initial payment state of every order.
	PaymentUnpaid PaymentStatus = iota

	// PaymentPending is set when the seller confirms the order.
	PaymentPending

	// PaymentPaid is set when the order is delivered.
	PaymentPaid

	// PaymentRefunded is set when the order is refunded.
	PaymentRefunded
)

// String returns the wire representation of the payment status.
func (p PaymentStatus) String() string {
	switch p {
	case PaymentPending:
		return "pending"
	case PaymentPaid:
		return "paid"
	case PaymentRefunded:
		return "refunded"
	default:
		return "unpaid"
	}
}

// HistoryEntry is one element of the append-only status history.
// Entries are ordered by successful-commit order and never mutated.
type HistoryEntry struct {
	Status    Status
	Timestamp time.Time
	Actor     string
	Note      string
	Reason    string
}

// Milestones holds the top-level lifecycle timestamps written as side
// effects of specific transitions.
type Milestones struct {
	ConfirmedAt            *time.Time
	ProcessingStartedAt    *time.Time
	ManufacturingStartedAt *time.Time
	ReadyToShipAt          *time.Time
	CompletedAt            *time.Time
	CancelledAt            *time.Time
	RefundedAt             *time.Time
	DisputedAt             *time.Time
}

// Shipping holds the carrier-facing timestamps of the order.
type Shipping struct {
	ShippedAt         *time.Time
	EstimatedDelivery *time.Time
	OutForDeliveryAt  *time.Time
	InTransitAt       *time.Time
	DeliveredAt       *time.Time
	ActualDelivery    *time.Time
}

// Payment holds the derived payment bookkeeping of the order.
type Payment struct {
	Status     PaymentStatus
	PaidDate   *time.Time
	RefundDate *time.Time
}

// Analytics holds timing figures derived from the order's creation time.
// Values are whole hours, never negative.
type Analytics struct {
	DeliveryTimeHours   *int64
	ProcessingTimeHours *int64
}

// Cancellation records who cancelled the order and why.
type Cancellation struct {
	Reason        string
	CancelledBy   string
	CancelledDate time.Time
}

// Dispute records who disputed the order and why.
type Dispute struct {
	Reason       string
	DisputedBy   string
	DisputedDate time.Time
}

// TransitionRequest carries the caller-supplied inputs of a single status
// transition. EstimatedDelivery is only meaningful when Requested is Shipped.
type TransitionRequest struct {
	Requested         Status
	Actor             string
	Note              string
	Reason            string
	EstimatedDelivery *time.Time
}

// Snapshot is the complete externally-visible state of an order, used to move
// aggregates across the persistence boundary without exposing setters.
type Snapshot struct {
	ID           kernel.UUID
	BuyerID      kernel.UUID
	SellerID     kernel.UUID
	CreatedAt    time.Time
	Status       Status
	Version      int
	History      []HistoryEntry
	Milestones   Milestones
	Shipping     Shipping
	Payment      Payment
	Analytics    Analytics
	Cancellation *Cancellation
	Dispute      *Dispute
}

// Order is the aggregate root of the order lifecycle. It owns the status
// state machine, the append-only status history, the derived bookkeeping
// fields, and the optimistic-concurrency version token.
//
// Order follows these invariants:
//   - status is always a member of the status enumeration
//   - every status change appends exactly one history entry; the last
//     entry's status always equals the current status
//   - version increases by exactly 1 per applied transition
//   - completed and refunded orders reject all further transitions
//   - can only be created through NewOrder or Restore
//
// The struct uses private fields to ensure encapsulation; all mutation goes
// through ApplyTransition.
type Order struct {
	id       kernel.UUID
	buyerID  kernel.UUID
	sellerID kernel.UUID

	createdAt time.Time
	status    Status
	version   int
	history   []HistoryEntry

	milestones   Milestones
	shipping     Shipping
	payment      Payment
	analytics    Analytics
	cancellation *Cancellation
	dispute      *Dispute

	isConstructed bool
}

// NewOrder creates a new Order in its initial status. Orders enter the
// lifecycle in Draft or Pending; any other initial status is rejected.
//
// Parameters:
//   - id: unique identifier for the order
//   - buyerID: the buyer who placed the order
//   - sellerID: the manufacturer who fulfils the order and drives its transitions
//   - initial: Draft or Pending
//   - createdAt: order placement time, the base for timing analytics
func NewOrder(id, buyerID, sellerID kernel.UUID, initial Status, createdAt time.Time) (*Order, error) {
	o := &Order{
		status:        initial,
		createdAt:     createdAt,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setBuyerID(buyerID),
		o.setSellerID(sellerID),
		validateInitialStatus(initial),
		validateCreatedAt(createdAt),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Restore reconstructs an Order from persisted state. It re-validates the
// identity fields and the status/history consistency invariant, so corrupt
// rows surface as errors instead of propagating through the state machine.
func Restore(snap Snapshot) (*Order, error) {
	o := &Order{
		createdAt:     snap.CreatedAt,
		status:        snap.Status,
		version:       snap.Version,
		milestones:    snap.Milestones,
		shipping:      snap.Shipping,
		payment:       snap.Payment,
		analytics:     snap.Analytics,
		cancellation:  snap.Cancellation,
		dispute:       snap.Dispute,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(snap.ID),
		o.setBuyerID(snap.BuyerID),
		o.setSellerID(snap.SellerID),
		snap.Status.Validate(),
		validateCreatedAt(snap.CreatedAt),
		validateVersion(snap.Version),
	); err != nil {
		return nil, err
	}

	if len(snap.History) > 0 {
		last := snap.History[len(snap.History)-1]
		if last.Status != snap.Status {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"statusHistory is inconsistent",
				fmt.Errorf("last history status %s does not match current status %s", last.Status, snap.Status),
			)
		}
	}

	o.history = make([]HistoryEntry, len(snap.History))
	copy(o.history, snap.History)

	return o, nil
}

// Validate ensures the Order instance was properly constructed through
// NewOrder or Restore. This prevents bypassing validation by directly
// instantiating the struct.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// BuyerID returns the identifier of the buyer who placed the order.
func (o *Order) BuyerID() kernel.UUID {
	return o.buyerID
}

// SellerID returns the identifier of the seller who fulfils the order.
// Only the seller may drive status transitions.
func (o *Order) SellerID() kernel.UUID {
	return o.sellerID
}

// CreatedAt returns the order placement time.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// Version returns the optimistic-concurrency token. It increases by exactly
// one per applied transition; a conditional write must match it.
func (o *Order) Version() int {
	return o.version
}

// History returns a copy of the loaded status history, oldest first.
func (o *Order) History() []HistoryEntry {
	history := make([]HistoryEntry, len(o.history))
	copy(history, o.history)
	return history
}

// HistoryTail returns a copy of the most recent n history entries, oldest
// first. Returns the whole history if it holds fewer than n entries.
func (o *Order) HistoryTail(n int) []HistoryEntry {
	if n >= len(o.history) {
		return o.History()
	}
	tail := make([]HistoryEntry, n)
	copy(tail, o.history[len(o.history)-n:])
	return tail
}

// Milestones returns the lifecycle timestamps of the order.
func (o *Order) Milestones() Milestones {
	return o.milestones
}

// Shipping returns the shipping bookkeeping of the order.
func (o *Order) Shipping() Shipping {
	return o.shipping
}

// Payment returns the payment bookkeeping of the order.
func (o *Order) Payment() Payment {
	return o.payment
}

// Analytics returns the derived timing figures of the order.
func (o *Order) Analytics() Analytics {
	return o.analytics
}

// CancellationInfo returns the cancellation record, or nil if the order was
// never cancelled.
func (o *Order) CancellationInfo() *Cancellation {
	return o.cancellation
}

// DisputeInfo returns the dispute record, or nil if the order was never
// disputed.
func (o *Order) DisputeInfo() *Dispute {
	return o.dispute
}

// Snapshot returns the complete state of the order for persistence.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:           o.id,
		BuyerID:      o.buyerID,
		SellerID:     o.sellerID,
		CreatedAt:    o.createdAt,
		Status:       o.status,
		Version:      o.version,
		History:      o.History(),
		Milestones:   o.milestones,
		Shipping:     o.shipping,
		Payment:      o.payment,
		Analytics:    o.analytics,
		Cancellation: o.cancellation,
		Dispute:      o.dispute,
	}
}

// ApplyTransition validates and applies a single status transition.
//
// On success it, in one step:
//   - moves status to the requested value
//   - writes the derived bookkeeping fields of the requested status
//   - appends exactly one history entry
//   - increments the version token by one
//
// On failure the order is left untouched and the error identifies the
// rejected rule: ErrInvalidStatusValue, ErrCancellationReasonRequired,
// ErrOrderFinalized, or ErrInvalidTransition. Rejections are idempotent:
// the same illegal request always produces the same error kind.
//
// The now parameter is the write timestamp used for every derived field of
// this transition, so one transition never spans multiple clock reads.
func (o *Order) ApplyTransition(req TransitionRequest, now time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}

	if req.Actor == "" {
		return errs.NewValueIsRequiredError("actor")
	}

	if err := o.status.ValidateTransition(req.Requested, req.Reason); err != nil {
		return err
	}

	o.applyBookkeeping(req, now)

	o.history = append(o.history, HistoryEntry{
		Status:    req.Requested,
		Timestamp: now,
		Actor:     req.Actor,
		Note:      req.Note,
		Reason:    req.Reason,
	})
	o.status = req.Requested
	o.version++

	return nil
}

// applyBookkeeping writes the derived fields of an accepted transition.
// The field set is a deterministic function of the requested status.
func (o *Order) applyBookkeeping(req TransitionRequest, now time.Time) {
	ts := now

	switch req.Requested {
	case Confirmed:
		o.milestones.ConfirmedAt = &ts
		o.payment.Status = PaymentPending
	case Processing:
		o.milestones.ProcessingStartedAt = &ts
	case Manufacturing:
		o.milestones.ManufacturingStartedAt = &ts
	case ReadyToShip:
		o.milestones.ReadyToShipAt = &ts
	case Shipped:
		o.shipping.ShippedAt = &ts
		if req.EstimatedDelivery != nil {
			estimated := *req.EstimatedDelivery
			o.shipping.EstimatedDelivery = &estimated
		}
	case OutForDelivery:
		o.shipping.OutForDeliveryAt = &ts
	case InTransit:
		o.shipping.InTransitAt = &ts
	case Delivered:
		o.shipping.DeliveredAt = &ts
		o.shipping.ActualDelivery = &ts
		o.payment.Status = PaymentPaid
		o.payment.PaidDate = &ts
		deliveryHours := hoursBetween(o.createdAt, now)
		o.analytics.DeliveryTimeHours = &deliveryHours
	case Completed:
		o.milestones.CompletedAt = &ts
		processingHours := hoursBetween(o.createdAt, now)
		o.analytics.ProcessingTimeHours = &processingHours
	case Cancelled:
		o.milestones.CancelledAt = &ts
		o.cancellation = &Cancellation{
			Reason:        req.Reason,
			CancelledBy:   req.Actor,
			CancelledDate: now,
		}
	case Refunded:
		o.milestones.RefundedAt = &ts
		o.payment.Status = PaymentRefunded
		o.payment.RefundDate = &ts
	case Disputed:
		o.milestones.DisputedAt = &ts
		o.dispute = &Dispute{
			Reason:       req.Reason,
			DisputedBy:   req.Actor,
			DisputedDate: now,
		}
	}
}

// hoursBetween returns the whole hours between two timestamps, clamped to
// zero when the clock reads are skewed.
func hoursBetween(from, to time.Time) int64 {
	ms := to.Sub(from).Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms / millisPerHour
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setBuyerID(buyerID kernel.UUID) error {
	if err := buyerID.Validate(); err != nil {
		return err
	}
	o.buyerID = buyerID
	return nil
}

func (o *Order) setSellerID(sellerID kernel.UUID) error {
	if err := sellerID.Validate(); err != nil {
		return err
	}
	o.sellerID = sellerID
	return nil
}

func validateInitialStatus(initial Status) error {
	if initial != Draft && initial != Pending {
		return errs.NewValueIsInvalidErrorWithCause(
			"initial status is invalid",
			fmt.Errorf("%s is not a valid initial status", initial),
		)
	}
	return nil
}

func validateCreatedAt(createdAt time.Time) error {
	if createdAt.IsZero() {
		return errs.NewValueIsRequiredError("createdAt")
	}
	return nil
}

func validateVersion(version int) error {
	if version < 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"version is invalid",
			fmt.Errorf("%d is negative", version),
		)
	}
	return nil
}
