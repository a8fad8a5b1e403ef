package bookings

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	older, err := store.Insert(ctx, NewBooking{Name: "Sara", Phone: "0790000000", Service: "Whitening", Appointment: "2025-06-01 6 PM"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	now = now.Add(time.Minute)
	newer, _ := store.Insert(ctx, NewBooking{Name: "Sara", Phone: "0790000000", Service: "Cleaning", Appointment: "2025-06-02 3 PM"})

	got, err := store.FindActiveByPhone(ctx, "0790000000")
	if err != nil {
		t.Fatalf("FindActiveByPhone: %v", err)
	}
	if got.ID != newer.ID {
		t.Fatalf("expected most recent booking, got %s", got.Service)
	}

	canceled, err := store.Cancel(ctx, newer.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if canceled.Status != StatusCanceled || canceled.CanceledAt == nil {
		t.Fatalf("expected canceled booking, got %+v", canceled)
	}
	if _, err := store.Cancel(ctx, newer.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected second cancel to fail with ErrNotFound, got %v", err)
	}

	got, _ = store.FindActiveByPhone(ctx, "0790000000")
	if got.ID != older.ID {
		t.Fatalf("expected older active booking after cancel, got %s", got.ID)
	}

	if _, err := store.FindActiveByPhone(ctx, "0781111111"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, _ := store.List(ctx, 1)
	if len(list) != 1 || list[0].ID != newer.ID {
		t.Fatalf("expected newest booking first, got %+v", list)
	}
}

func TestNewBookingValidate(t *testing.T) {
	tests := []struct {
		name string
		req  NewBooking
		ok   bool
	}{
		{"valid", NewBooking{Name: " Ahmad ", Phone: "0790000000", Service: "Teeth Cleaning", Appointment: "2025-06-01 6 PM"}, true},
		{"missing name", NewBooking{Phone: "0790000000", Service: "x", Appointment: "y"}, false},
		{"phone with letters", NewBooking{Name: "a", Phone: "07900abc00", Service: "x", Appointment: "y"}, false},
		{"phone too short", NewBooking{Name: "a", Phone: "0790", Service: "x", Appointment: "y"}, false},
		{"missing appointment", NewBooking{Name: "a", Phone: "0790000000", Service: "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidBooking) {
				t.Fatalf("expected ErrInvalidBooking, got %v", err)
			}
		})
	}
}
