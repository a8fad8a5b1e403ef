package whatsapp

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-assistant/internal/messaging"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

const maxWebhookBody = 1 << 20

var webhookTracer = otel.Tracer("clinic.internal.whatsapp")

// Enqueuer accepts inbound messages for asynchronous processing.
type Enqueuer interface {
	Enqueue(ctx context.Context, msg messaging.Inbound) error
}

// WebhookHandler serves Meta's verification challenge and inbound events.
type WebhookHandler struct {
	verifyToken string
	appSecret   string
	queue       Enqueuer
	logger      *logging.Logger
}

// NewWebhookHandler creates the handler. When appSecret is empty the
// X-Hub-Signature-256 header is not checked.
func NewWebhookHandler(verifyToken, appSecret string, queue Enqueuer, logger *logging.Logger) *WebhookHandler {
	if queue == nil {
		panic("whatsapp: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{verifyToken: verifyToken, appSecret: appSecret, queue: queue, logger: logger}
}

// HandleVerification answers GET /webhook.
func (h *WebhookHandler) HandleVerification(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if h.verifyToken != "" && q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == h.verifyToken {
		h.logger.Info("whatsapp webhook verified")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, q.Get("hub.challenge"))
		return
	}
	h.logger.Warn("whatsapp webhook verification rejected", "mode", q.Get("hub.mode"))
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// HandleInbound answers POST /webhook. Every message is enqueued before the
// 200 is written so that a failed enqueue makes Meta redeliver.
func (h *WebhookHandler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	ctx, span := webhookTracer.Start(r.Context(), "whatsapp.webhook")
	defer span.End()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		span.RecordError(err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if h.appSecret != "" && !VerifySignature(h.appSecret, body, r.Header.Get("X-Hub-Signature-256")) {
		h.logger.Warn("whatsapp webhook signature mismatch")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	msgs, err := ParseWebhook(body)
	if err != nil {
		span.RecordError(err)
		h.logger.Warn("invalid whatsapp webhook payload", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("whatsapp.messages", len(msgs)))

	for _, msg := range msgs {
		if err := h.queue.Enqueue(ctx, msg); err != nil {
			span.RecordError(err)
			h.logger.Error("failed to enqueue inbound message",
				"sender_id", logging.MaskPhone(msg.SenderID),
				"message_id", msg.MessageID,
				"error", err,
			)
			http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

// ParseWebhook flattens a webhook payload into inbound messages. Delivery
// statuses are skipped.
func ParseWebhook(body []byte) ([]messaging.Inbound, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("whatsapp: decode webhook: %w", err)
	}
	var out []messaging.Inbound
	for _, entry := range event.Entry {
		for _, change := range entry.Changes {
			names := make(map[string]string, len(change.Value.Contacts))
			for _, c := range change.Value.Contacts {
				names[c.WaID] = c.Profile.Name
			}
			for _, m := range change.Value.Messages {
				if m.From == "" || m.ID == "" {
					continue
				}
				out = append(out, toInbound(m, names[m.From]))
			}
		}
	}
	return out, nil
}

func toInbound(m WebhookMessage, profileName string) messaging.Inbound {
	in := messaging.Inbound{
		SenderID:    m.From,
		MessageID:   m.ID,
		ProfileName: profileName,
		RawType:     m.Type,
		Timestamp:   parseTimestamp(m.Timestamp),
		Kind:        messaging.InboundUnsupported,
	}
	switch {
	case m.Type == "text" && m.Text != nil:
		in.Kind = messaging.InboundText
		in.Text = m.Text.Body
	case m.Type == "interactive" && m.Interactive != nil:
		reply := m.Interactive.ButtonReply
		if reply == nil {
			reply = m.Interactive.ListReply
		}
		if reply != nil {
			in.Kind = messaging.InboundInteractive
			in.SelectionID = reply.ID
			in.Text = reply.Title
		}
	case m.Type == "button" && m.Button != nil:
		in.Kind = messaging.InboundInteractive
		in.SelectionID = m.Button.Payload
		in.Text = m.Button.Text
	case m.Type == "audio" && m.Audio != nil:
		in.Kind = messaging.InboundAudio
		in.MediaID = m.Audio.ID
		in.MimeType = m.Audio.MimeType
	}
	return in
}

func parseTimestamp(raw string) time.Time {
	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || sec <= 0 {
		return time.Now().UTC()
	}
	return time.Unix(sec, 0).UTC()
}

// VerifySignature checks the X-Hub-Signature-256 header ("sha256=<hex>").
func VerifySignature(appSecret string, body []byte, signature string) bool {
	const prefix = "sha256="
	if appSecret == "" || len(signature) <= len(prefix) || signature[:len(prefix)] != prefix {
		return false
	}
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature[len(prefix):]))
}
