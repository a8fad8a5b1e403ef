package inbound

import (
	"context"
	"fmt"

	"github.com/wolfman30/clinic-assistant/internal/messaging"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// Publisher enqueues inbound messages for asynchronous processing.
type Publisher struct {
	queue  Queue
	logger *logging.Logger
}

// NewPublisher creates a queue-backed publisher.
func NewPublisher(queue Queue, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("inbound: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{queue: queue, logger: logger}
}

// Enqueue publishes msg.
func (p *Publisher) Enqueue(ctx context.Context, msg messaging.Inbound) error {
	env, err := encodeMessage(msg)
	if err != nil {
		return err
	}
	if err := p.queue.Send(ctx, env); err != nil {
		return fmt.Errorf("inbound: enqueue %s: %w", msg.MessageID, err)
	}
	p.logger.Debug("inbound message enqueued",
		"message_id", msg.MessageID,
		"sender_id", logging.MaskPhone(msg.SenderID),
		"kind", msg.Kind,
	)
	return nil
}
