package session

import (
	"errors"
	"testing"
)

func TestDraftFillsInOrder(t *testing.T) {
	d := NewDraft()
	if err := d.SetName("Sara"); !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected name before day to be rejected, got %v", err)
	}
	if err := d.SetTime("6 PM"); !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected time before day to be rejected, got %v", err)
	}
	if err := d.SetDay("2025-06-01"); err != nil {
		t.Fatalf("SetDay: %v", err)
	}
	if err := d.SetPhone("0790000000"); !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected phone before name to be rejected, got %v", err)
	}
	if err := d.SetTime("6 PM"); err != nil {
		t.Fatalf("SetTime: %v", err)
	}
	if got := d.Appointment(); got != "2025-06-01 6 PM" {
		t.Fatalf("unexpected appointment %q", got)
	}
	if err := d.SetName("Sara"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	if err := d.SetPhone("0790000000"); err != nil {
		t.Fatalf("SetPhone: %v", err)
	}
	if d.Step != StepAwaitingService {
		t.Fatalf("expected awaiting service, got %s", d.Step)
	}
	if !d.Valid() {
		t.Fatalf("expected filled draft to be valid")
	}
}

func TestDraftDayCanBeRepickedBeforeTime(t *testing.T) {
	d := NewDraft()
	_ = d.SetDay("2025-06-01")
	if err := d.SetDay("2025-06-02"); err != nil {
		t.Fatalf("expected re-pick to succeed, got %v", err)
	}
	if d.Day != "2025-06-02" || d.Step != StepAwaitingTime {
		t.Fatalf("unexpected draft %+v", d)
	}
	_ = d.SetTime("3 PM")
	if err := d.SetDay("2025-06-03"); !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected day change after time to be rejected, got %v", err)
	}
}

func TestDraftValidRejectsGaps(t *testing.T) {
	cases := []*Draft{
		{Step: StepAwaitingService, Day: "2025-06-01", Time: "6 PM", Phone: "0790000000"},
		{Step: StepAwaitingName, Day: "2025-06-01"},
		{Step: StepAwaitingDay, Name: "Sara"},
		{Step: "bogus"},
	}
	for i, d := range cases {
		if d.Valid() {
			t.Fatalf("case %d: expected invalid draft %+v", i, d)
		}
	}
}

func TestSessionTransitions(t *testing.T) {
	s := New("96279")
	if s.Mode != ModeIdle || s.BookingInProgress() {
		t.Fatalf("expected idle session")
	}
	s.StartBooking()
	if !s.BookingInProgress() || s.Draft.Step != StepAwaitingDay {
		t.Fatalf("expected booking at day step, got %+v", s)
	}
	s.StartCancellation()
	if s.Draft != nil || s.Mode != ModeAwaitingCancelPhone {
		t.Fatalf("expected cancellation to discard draft, got %+v", s)
	}
	s.Lock()
	if !s.Valid() || s.Mode != ModeLocked {
		t.Fatalf("expected locked session")
	}
	s.Clear()
	if s.Mode != ModeIdle || !s.Valid() {
		t.Fatalf("expected idle after clear")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := New("a")
	s.StartBooking()
	c := s.Clone()
	_ = c.Draft.SetDay("2025-06-01")
	if s.Draft.Day != "" {
		t.Fatalf("clone shares draft with original")
	}
}
