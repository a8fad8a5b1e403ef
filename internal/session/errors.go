package session

import "errors"

var (
	// ErrOutOfOrder is returned when a draft field is set before the fields preceding it.
	ErrOutOfOrder = errors.New("session: draft field out of order")
	// ErrInvalidSession is returned when saving a session that breaks its invariants.
	ErrInvalidSession = errors.New("session: invalid session state")
)
