// Package service implements the booking and payment workflows on top
// of per-entity store interfaces. Repositories satisfy the interfaces in
// production; tests substitute in-memory fakes.
package service

import "errors"

// ErrValidation covers malformed booking and payment requests: missing
// user, empty line items, non-positive quantities or a client-submitted
// total that disagrees with the server-computed one. Wrapped errors add
// the offending detail.
var ErrValidation = errors.New("invalid request")

// ErrCapacityExceeded is returned when a requested quantity exceeds the
// remaining capacity of a ticket type. No mutation has occurred when it
// is returned from CreateBooking.
var ErrCapacityExceeded = errors.New("not enough tickets available")

// ErrSignatureMismatch is returned when the gateway callback signature
// does not match the server-side HMAC recomputation. The associated
// booking has been rolled back by the time the caller sees it.
var ErrSignatureMismatch = errors.New("invalid payment signature")

// ErrRollbackNotAllowed is returned when a rollback is requested for a
// booking whose payment already completed. Completed bookings are
// immutable; refunds are out of scope.
var ErrRollbackNotAllowed = errors.New("booking is not eligible for rollback")

// ErrGateway is returned when the external payment provider call fails.
// Callers may resubmit; nothing has been persisted for the attempt.
var ErrGateway = errors.New("payment gateway error")
