// Package inbound moves WhatsApp messages from the webhook to the dispatcher:
// a queue decouples the HTTP acknowledgement from processing, and the
// Processor applies idempotency, the spam guard and voice transcription
// before dispatching.
package inbound

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wolfman30/clinic-assistant/internal/messaging"
)

// Queue carries encoded inbound messages between the webhook and the workers.
type Queue interface {
	Send(ctx context.Context, env Envelope) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]Delivery, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// Envelope is one message to enqueue. GroupID keeps a sender's messages in
// order on FIFO queues; DedupID lets the broker drop webhook redeliveries.
type Envelope struct {
	Body    string
	GroupID string
	DedupID string
}

// Delivery is one received queue message.
type Delivery struct {
	ID            string
	Body          string
	ReceiptHandle string
}

func encodeMessage(msg messaging.Inbound) (Envelope, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return Envelope{}, fmt.Errorf("inbound: encode message: %w", err)
	}
	return Envelope{Body: string(body), GroupID: msg.SenderID, DedupID: msg.MessageID}, nil
}

func decodeMessage(body string) (messaging.Inbound, error) {
	var msg messaging.Inbound
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return messaging.Inbound{}, fmt.Errorf("inbound: decode message: %w", err)
	}
	if msg.SenderID == "" {
		return messaging.Inbound{}, fmt.Errorf("inbound: decode message: missing sender")
	}
	return msg, nil
}
