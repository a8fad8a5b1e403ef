package bookings

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps bookings in process memory. Used for local runs and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	bookings map[string]*Booking
	now      func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bookings: make(map[string]*Booking), now: time.Now}
}

func (s *MemoryStore) Insert(_ context.Context, req NewBooking) (*Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	b := &Booking{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Phone:       req.Phone,
		Service:     req.Service,
		Appointment: req.Appointment,
		Status:      StatusNew,
		CreatedAt:   s.now().UTC(),
	}
	s.mu.Lock()
	s.bookings[b.ID] = b
	s.mu.Unlock()
	out := *b
	return &out, nil
}

func (s *MemoryStore) FindActiveByPhone(_ context.Context, phone string) (*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *Booking
	for _, b := range s.bookings {
		if b.Phone != phone || b.Status != StatusNew {
			continue
		}
		if latest == nil || b.CreatedAt.After(latest.CreatedAt) {
			latest = b
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	out := *latest
	return &out, nil
}

func (s *MemoryStore) Cancel(_ context.Context, id string) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.Status != StatusNew {
		return nil, ErrNotFound
	}
	now := s.now().UTC()
	b.Status = StatusCanceled
	b.CanceledAt = &now
	out := *b
	return &out, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]Booking, error) {
	s.mu.RLock()
	out := make([]Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, *b)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit = clampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
