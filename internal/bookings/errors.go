package bookings

import "errors"

var (
	// ErrNotFound is returned when no active booking matches.
	ErrNotFound = errors.New("bookings: booking not found")
	// ErrInvalidBooking wraps validation failures of a NewBooking.
	ErrInvalidBooking = errors.New("bookings: invalid booking")
)
