// Package guard drops inbound messages that are redeliveries, repeated texts,
// or part of a burst from one sender, before they reach the dispatcher.
package guard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// Reason explains why a message was dropped.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonInFlight    Reason = "in_flight"
	ReasonDuplicate   Reason = "duplicate"
	ReasonRateLimited Reason = "rate_limited"
)

// Decision is the outcome of Check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Config holds the guard windows.
type Config struct {
	DuplicateWindow time.Duration
	RateLimit       int
	RateWindow      time.Duration
	InFlightTimeout time.Duration
	CleanupInterval time.Duration
}

// DefaultConfig returns 5s duplicate suppression, 10 messages per 30s,
// a 10s in-flight mark and cleanup every two minutes.
func DefaultConfig() Config {
	return Config{
		DuplicateWindow: 5 * time.Second,
		RateLimit:       10,
		RateWindow:      30 * time.Second,
		InFlightTimeout: 10 * time.Second,
		CleanupInterval: 2 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DuplicateWindow <= 0 {
		c.DuplicateWindow = d.DuplicateWindow
	}
	if c.RateLimit <= 0 {
		c.RateLimit = d.RateLimit
	}
	if c.RateWindow <= 0 {
		c.RateWindow = d.RateWindow
	}
	if c.InFlightTimeout <= 0 {
		c.InFlightTimeout = d.InFlightTimeout
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = d.CleanupInterval
	}
	return c
}

// InFlightStore shares in-flight marks between processes.
type InFlightStore interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type lastMessage struct {
	text string
	at   time.Time
}

// Guard tracks per-sender message history in memory.
type Guard struct {
	cfg    Config
	shared InFlightStore
	logger *logging.Logger
	now    func() time.Time

	mu       sync.Mutex
	inFlight map[string]time.Time
	last     map[string]lastMessage
	recent   map[string][]time.Time
}

// Option configures a Guard.
type Option func(*Guard)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		if now != nil {
			g.now = now
		}
	}
}

// WithInFlightStore adds a shared in-flight store. Its failures never block a message.
func WithInFlightStore(store InFlightStore) Option {
	return func(g *Guard) {
		g.shared = store
	}
}

// New creates a Guard. Zero config values take their defaults.
func New(cfg Config, logger *logging.Logger, opts ...Option) *Guard {
	if logger == nil {
		logger = logging.Default()
	}
	g := &Guard{
		cfg:      cfg.withDefaults(),
		logger:   logger,
		now:      time.Now,
		inFlight: make(map[string]time.Time),
		last:     make(map[string]lastMessage),
		recent:   make(map[string][]time.Time),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check decides whether a message may be processed. When allowed, the message
// is marked in flight and the caller must call Release once handling ends.
func (g *Guard) Check(ctx context.Context, senderID, messageID, text string) Decision {
	key := inFlightKey(senderID, messageID)
	now := g.now()

	g.mu.Lock()
	if at, ok := g.inFlight[key]; ok && now.Sub(at) < g.cfg.InFlightTimeout {
		g.mu.Unlock()
		return Decision{Reason: ReasonInFlight}
	}
	g.inFlight[key] = now
	g.mu.Unlock()

	sharedHeld := false
	if g.shared != nil {
		ok, err := g.shared.Acquire(ctx, key, g.cfg.InFlightTimeout)
		switch {
		case err != nil:
			g.logger.Warn("guard: shared in-flight store unavailable", "error", err, "sender_id", senderID)
		case !ok:
			g.clearLocal(key)
			return Decision{Reason: ReasonInFlight}
		default:
			sharedHeld = true
		}
	}

	g.mu.Lock()
	reason := g.checkHistoryLocked(senderID, text, now)
	if reason != ReasonNone {
		delete(g.inFlight, key)
	}
	g.mu.Unlock()

	if reason != ReasonNone {
		if sharedHeld {
			g.releaseShared(ctx, key)
		}
		return Decision{Reason: reason}
	}
	return Decision{Allowed: true}
}

// Release clears the in-flight mark taken by an allowed Check.
func (g *Guard) Release(ctx context.Context, senderID, messageID string) {
	key := inFlightKey(senderID, messageID)
	g.clearLocal(key)
	if g.shared != nil {
		g.releaseShared(ctx, key)
	}
}

func (g *Guard) checkHistoryLocked(senderID, text string, now time.Time) Reason {
	text = strings.TrimSpace(text)
	if text != "" {
		prev, seen := g.last[senderID]
		g.last[senderID] = lastMessage{text: text, at: now}
		if seen && prev.text == text && now.Sub(prev.at) < g.cfg.DuplicateWindow {
			return ReasonDuplicate
		}
	}

	window := pruneBefore(g.recent[senderID], now.Add(-g.cfg.RateWindow))
	if len(window) >= g.cfg.RateLimit {
		g.recent[senderID] = window
		return ReasonRateLimited
	}
	g.recent[senderID] = append(window, now)
	return ReasonNone
}

func (g *Guard) clearLocal(key string) {
	g.mu.Lock()
	delete(g.inFlight, key)
	g.mu.Unlock()
}

func (g *Guard) releaseShared(ctx context.Context, key string) {
	// Release runs after the handler's deadline may have passed.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := g.shared.Release(ctx, key); err != nil {
		g.logger.Warn("guard: failed to clear shared in-flight mark", "error", err, "key", key)
	}
}

// Cleanup drops history older than the guard windows.
func (g *Guard) Cleanup() {
	now := g.now()
	g.mu.Lock()
	defer g.mu.Unlock()

	for key, at := range g.inFlight {
		if now.Sub(at) >= g.cfg.InFlightTimeout {
			delete(g.inFlight, key)
		}
	}
	for sender, msg := range g.last {
		if now.Sub(msg.at) > 2*g.cfg.DuplicateWindow {
			delete(g.last, sender)
		}
	}
	cutoff := now.Add(-g.cfg.RateWindow)
	for sender, stamps := range g.recent {
		if kept := pruneBefore(stamps, cutoff); len(kept) == 0 {
			delete(g.recent, sender)
		} else {
			g.recent[sender] = kept
		}
	}
}

// Start runs Cleanup on the configured interval until ctx is done.
func (g *Guard) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(g.cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				g.Cleanup()
			}
		}
	}()
}

// Stats reports the number of tracked entries per table.
func (g *Guard) Stats() (inFlight, senders, rateTracked int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inFlight), len(g.last), len(g.recent)
}

func pruneBefore(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return stamps
	}
	return append(stamps[:0:0], stamps[i:]...)
}

func inFlightKey(senderID, messageID string) string {
	return senderID + ":" + messageID
}
