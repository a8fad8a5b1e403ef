package session

import (
	"context"
	"sync"
	"time"

	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// MemoryStore keeps sessions in process memory with idle eviction.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	logger   *logging.Logger
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithTTL sets how long an untouched session survives. Zero disables eviction.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.ttl = ttl
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(logger *logging.Logger, opts ...MemoryOption) *MemoryStore {
	if logger == nil {
		logger = logging.Default()
	}
	s := &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      24 * time.Hour,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, senderID string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[senderID]
	s.mu.RUnlock()
	if !ok || s.expired(sess) {
		return New(senderID), nil
	}
	return sess.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	if sess == nil || sess.SenderID == "" || !sess.Valid() {
		return ErrInvalidSession
	}
	c := sess.Clone()
	c.UpdatedAt = s.now()

	s.mu.Lock()
	s.sessions[c.SenderID] = c
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, senderID string) error {
	s.mu.Lock()
	delete(s.sessions, senderID)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Evict drops sessions idle for longer than the TTL and returns how many were removed.
func (s *MemoryStore) Evict() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartEviction runs Evict on every tick until ctx is done.
func (s *MemoryStore) StartEviction(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Evict(); n > 0 {
					s.logger.Debug("evicted idle sessions", "count", n)
				}
			}
		}
	}()
}

func (s *MemoryStore) expired(sess *Session) bool {
	return s.ttl > 0 && s.now().Sub(sess.UpdatedAt) > s.ttl
}
