// Package kernel contains shared domain primitives used across aggregates.
// It currently provides the UUID value object that identifies orders, buyers,
// and sellers. Types in this package are immutable value objects with
// validation enforced through their constructor functions.
package kernel
