package bookings

import "context"

// Store is the persistence contract used by the conversation flows.
type Store interface {
	// Insert persists a new active booking.
	Insert(ctx context.Context, req NewBooking) (*Booking, error)
	// FindActiveByPhone returns the most recently created active booking for
	// phone, or ErrNotFound.
	FindActiveByPhone(ctx context.Context, phone string) (*Booking, error)
	// Cancel marks an active booking canceled. Returns ErrNotFound when the
	// booking does not exist or is no longer active.
	Cancel(ctx context.Context, id string) (*Booking, error)
	// List returns up to limit bookings, newest first.
	List(ctx context.Context, limit int) ([]Booking, error)
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
