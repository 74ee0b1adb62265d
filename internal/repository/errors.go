// Package repository defines error types that are reused across multiple
// repositories. These sentinel values let higher layers such as the
// inventory reconciler and the HTTP handlers distinguish between
// failure scenarios without inspecting driver errors. For example,
// ErrNoCapacity signals that a listing has no bookable rooms left,
// while ErrDuplicateTransaction signals a replayed payment
// verification.
package repository

import "errors"

// ErrListingNotFound indicates that no listing exists for the given id.
// Handlers should translate this into an HTTP 404 response.
var ErrListingNotFound = errors.New("listing not found")

// ErrBookingNotFound indicates that no booking exists for the given id.
var ErrBookingNotFound = errors.New("booking not found")

// ErrBookingCancelled is returned when an operation requires a live
// booking but the record is already CANCELLED. Cancellation is
// terminal: a cancelled booking's room was released back to the
// listing, so confirming it would create a booking that holds no
// inventory.
var ErrBookingCancelled = errors.New("booking is cancelled")

// ErrUserNotFound indicates that no user exists for the given id.
var ErrUserNotFound = errors.New("user not found")

// ErrNoCapacity is returned when a reservation is attempted against a
// listing whose available_rooms counter is already zero. The
// conditional decrement guarantees the counter never goes below zero
// even under concurrent reservations.
var ErrNoCapacity = errors.New("no rooms available")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own and they are not an admin. Handlers should
// translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrDuplicateTransaction is returned when a payment record with the
// same transaction reference already exists. It protects confirmed
// bookings from being double-confirmed by a replayed gateway callback.
var ErrDuplicateTransaction = errors.New("duplicate transaction")

// ErrEmailExists is returned when registering with an email that is
// already taken.
var ErrEmailExists = errors.New("email already exists")
