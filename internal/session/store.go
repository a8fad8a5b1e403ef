package session

import "context"

// Store persists sessions keyed by sender id.
//
// Get never returns a nil session: an unknown sender yields a fresh idle session.
// Callers mutate the returned copy and write it back with Save.
type Store interface {
	Get(ctx context.Context, senderID string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Reset(ctx context.Context, senderID string) error
}
