package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

const defaultRedisTTL = 24 * time.Hour

// RedisStore keeps sessions as JSON documents so several API instances share state.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
	logger *logging.Logger
	now    func() time.Time
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisLogger sets the logger used for discarded documents.
func WithRedisLogger(logger *logging.Logger) RedisOption {
	return func(s *RedisStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewRedisStore creates a redis-backed store. A zero ttl uses 24h.
func NewRedisStore(client *redis.Client, ttl time.Duration, tracer trace.Tracer, opts ...RedisOption) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	if tracer == nil {
		tracer = otel.Tracer("clinic.internal.session")
	}
	s := &RedisStore{redis: client, ttl: ttl, tracer: tracer, logger: logging.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) Get(ctx context.Context, senderID string) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "session.get")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(senderID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return New(senderID), nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to load session: %w", err)
	}

	// Undecodable documents and drafts that break the field ordering are
	// discarded so the sender starts over instead of failing until the TTL.
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		span.RecordError(err)
		s.logger.Warn("discarding undecodable session", "sender_id", logging.MaskPhone(senderID), "error", err)
		return New(senderID), nil
	}
	if !sess.Valid() {
		s.logger.Warn("discarding invalid session draft", "sender_id", logging.MaskPhone(senderID))
		return New(senderID), nil
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	ctx, span := s.tracer.Start(ctx, "session.save")
	defer span.End()

	if sess == nil || sess.SenderID == "" || !sess.Valid() {
		span.RecordError(ErrInvalidSession)
		return ErrInvalidSession
	}
	c := sess.Clone()
	c.UpdatedAt = s.now().UTC()
	data, err := json.Marshal(c)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(c.SenderID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to persist session: %w", err)
	}
	return nil
}

func (s *RedisStore) Reset(ctx context.Context, senderID string) error {
	ctx, span := s.tracer.Start(ctx, "session.reset")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(senderID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to delete session: %w", err)
	}
	return nil
}

func sessionKey(senderID string) string {
	return fmt.Sprintf("session:%s", senderID)
}
