package flow

import (
	"context"
	"sync"
	"time"

	"github.com/wolfman30/clinic-assistant/internal/bookings"
	"github.com/wolfman30/clinic-assistant/internal/clinic"
)

type recordingStore struct {
	*bookings.MemoryStore

	mu        sync.Mutex
	inserts   []bookings.NewBooking
	insertErr error
	findErr   error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: bookings.NewMemoryStore()}
}

func (s *recordingStore) Insert(ctx context.Context, req bookings.NewBooking) (*bookings.Booking, error) {
	s.mu.Lock()
	s.inserts = append(s.inserts, req)
	err := s.insertErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.MemoryStore.Insert(ctx, req)
}

func (s *recordingStore) FindActiveByPhone(ctx context.Context, phone string) (*bookings.Booking, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.MemoryStore.FindActiveByPhone(ctx, phone)
}

func testClinic() *clinic.Config {
	cfg := clinic.DefaultConfig("test")
	cfg.Timezone = "UTC"
	cfg.ServiceGroups = []clinic.ServiceGroup{
		{Title: "Basic", Services: []string{"Teeth Cleaning", "Whitening"}},
	}
	return cfg
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
}

func acceptAll() NameValidator {
	return NameValidatorFunc(func(context.Context, string) (bool, error) { return true, nil })
}
