// Package flow implements the multi-turn booking and cancellation dialogues.
//
// Flows never treat bad user input as an error: an invalid day, name or phone
// re-prompts the same step. Errors are returned only when an external
// dependency fails, together with the session state that should be persisted.
package flow

import (
	"context"
	"errors"
	"strings"

	"github.com/wolfman30/clinic-assistant/internal/bookings"
	"github.com/wolfman30/clinic-assistant/internal/messaging"
	"github.com/wolfman30/clinic-assistant/internal/session"
)

// Selection id prefixes echoed back by WhatsApp when an option is tapped.
const (
	DayPrefix     = "day_"
	SlotPrefix    = "slot_"
	ServicePrefix = "service_"
)

var (
	// ErrNameCheck wraps failures of the name validation oracle.
	ErrNameCheck = errors.New("flow: name check failed")
	// ErrSaveBooking wraps booking store failures while confirming a booking.
	ErrSaveBooking = errors.New("flow: save booking failed")
	// ErrCancelBooking wraps booking store failures during cancellation.
	ErrCancelBooking = errors.New("flow: cancel booking failed")
)

// Input is one user turn fed to a flow step. SelectionID is set when the user
// tapped a button or list row.
type Input struct {
	Text        string
	SelectionID string
}

// Selected returns the part of SelectionID after prefix.
func (in Input) Selected(prefix string) (string, bool) {
	if !strings.HasPrefix(in.SelectionID, prefix) {
		return "", false
	}
	v := strings.TrimPrefix(in.SelectionID, prefix)
	return v, v != ""
}

// Result is the outcome of a flow step: replies to send in order, the session
// to persist, and the booking touched by the step, if any.
type Result struct {
	Replies []messaging.Content
	Session *session.Session
	Booking *bookings.Booking
}

func reply(sess *session.Session, contents ...messaging.Content) Result {
	return Result{Replies: contents, Session: sess}
}

// NameValidator decides whether free text looks like a real person's name.
type NameValidator interface {
	ValidateName(ctx context.Context, name string) (bool, error)
}

// NameValidatorFunc adapts a function to NameValidator.
type NameValidatorFunc func(ctx context.Context, name string) (bool, error)

func (f NameValidatorFunc) ValidateName(ctx context.Context, name string) (bool, error) {
	return f(ctx, name)
}
