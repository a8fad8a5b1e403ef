package inbound

import "errors"

// ErrQueueClosed is returned by MemoryQueue after Close.
var ErrQueueClosed = errors.New("inbound: queue closed")
