// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking and payment services to distinguish between different failure
// scenarios without inspecting driver-specific errors. For example,
// ErrDuplicate signals a uniqueness violation (a ticket type code reused
// within an event, or a seat label issued twice), while
// ErrInsufficientQuantity signals that a conditional capacity decrement
// found fewer units than requested.
package repository

import "errors"

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint, such as (event_id, type_code) on ticket types or
// (event_id, type_code, seat_label) on issued seats.
var ErrDuplicate = errors.New("duplicate record")

// ErrInsufficientQuantity is returned by conditional capacity decrements
// when the stored quantity is smaller than the requested amount. The
// decrement is guarded at the SQL level so the counter can never go
// negative even under concurrent writers.
var ErrInsufficientQuantity = errors.New("insufficient quantity")
