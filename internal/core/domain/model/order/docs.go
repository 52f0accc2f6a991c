// Package order provides domain entities and business logic for the order
// lifecycle in the marketplace. It implements the Order aggregate root with
// a fourteen-state status machine, derived bookkeeping fields, an append-only
// status history, and an optimistic-concurrency version token.
//
// The package includes:
//   - Order: The aggregate root that manages order identity, status history,
//     derived fields, and the version token
//   - Status: A state machine that enforces valid order status transitions
//   - Typed transition errors carrying enough context for callers to
//     self-correct (current status, allowed next states)
//   - Notification priority derivation for committed transitions
//
// Key business rules:
//   - Status transitions follow a fixed adjacency list; completed and
//     refunded are terminal and reject everything
//   - Cancellation always requires a reason
//   - Every applied transition appends exactly one history entry and
//     increments the version by exactly one
//   - Derived fields (timestamps, payment status, timing analytics) are a
//     deterministic function of the requested status and the write timestamp
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
// It performs no I/O; persistence and notification delivery live behind ports.
package order
