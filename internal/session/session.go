// Package session tracks per-sender conversation state between WhatsApp messages.
package session

import (
	"time"

	"github.com/wolfman30/clinic-assistant/internal/intent"
)

// Mode is the top-level conversation state of a sender.
type Mode string

const (
	ModeIdle                Mode = "idle"
	ModeBooking             Mode = "booking"
	ModeAwaitingCancelPhone Mode = "awaiting_cancel_phone"
	// ModeLocked follows a completed cancellation and suppresses AI replies until reset.
	ModeLocked Mode = "locked"
)

// Session is the state held for one sender id.
type Session struct {
	SenderID   string          `json:"sender_id"`
	Mode       Mode            `json:"mode"`
	Draft      *Draft          `json:"draft,omitempty"`
	LastIntent intent.Intent   `json:"last_intent,omitempty"`
	Language   intent.Language `json:"language,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// New returns an idle session for senderID.
func New(senderID string) *Session {
	return &Session{SenderID: senderID, Mode: ModeIdle, Language: intent.Arabic}
}

// BookingInProgress reports whether a booking draft is being filled.
func (s *Session) BookingInProgress() bool {
	return s.Mode == ModeBooking && s.Draft != nil
}

// StartBooking discards any previous state and opens a fresh draft.
func (s *Session) StartBooking() {
	s.Mode = ModeBooking
	s.Draft = NewDraft()
}

// StartCancellation discards any draft and waits for the booking phone.
func (s *Session) StartCancellation() {
	s.Mode = ModeAwaitingCancelPhone
	s.Draft = nil
}

// Clear returns the session to idle. The detected language is kept.
func (s *Session) Clear() {
	s.Mode = ModeIdle
	s.Draft = nil
	s.LastIntent = intent.None
}

// Lock ends the conversation after a cancellation.
func (s *Session) Lock() {
	s.Mode = ModeLocked
	s.Draft = nil
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Draft != nil {
		d := *s.Draft
		c.Draft = &d
	}
	return &c
}

// Valid reports whether the session satisfies its structural invariants.
func (s *Session) Valid() bool {
	switch s.Mode {
	case ModeBooking:
		return s.Draft != nil && s.Draft.Valid()
	case ModeIdle, ModeAwaitingCancelPhone, ModeLocked:
		return s.Draft == nil
	default:
		return false
	}
}
