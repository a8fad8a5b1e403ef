package messaging

import "time"

// InboundKind is the shape of a message received from a user.
type InboundKind string

const (
	InboundText        InboundKind = "text"
	InboundInteractive InboundKind = "interactive"
	InboundAudio       InboundKind = "audio"
	InboundUnsupported InboundKind = "unsupported"
)

// Inbound is one user message as delivered by the transport. Delivery is at
// least once, so the same MessageID may arrive more than once.
type Inbound struct {
	SenderID    string      `json:"sender_id"`
	MessageID   string      `json:"message_id"`
	Kind        InboundKind `json:"kind"`
	Text        string      `json:"text,omitempty"`
	SelectionID string      `json:"selection_id,omitempty"`
	MediaID     string      `json:"media_id,omitempty"`
	MimeType    string      `json:"mime_type,omitempty"`
	ProfileName string      `json:"profile_name,omitempty"`
	RawType     string      `json:"raw_type,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

// GuardText is the text used for duplicate suppression. Button taps are
// compared by their option id.
func (m Inbound) GuardText() string {
	if m.Kind == InboundInteractive {
		return m.SelectionID
	}
	return m.Text
}
