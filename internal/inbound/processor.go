package inbound

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-assistant/internal/archive"
	"github.com/wolfman30/clinic-assistant/internal/dispatcher"
	"github.com/wolfman30/clinic-assistant/internal/events"
	"github.com/wolfman30/clinic-assistant/internal/flow"
	"github.com/wolfman30/clinic-assistant/internal/guard"
	"github.com/wolfman30/clinic-assistant/internal/intent"
	"github.com/wolfman30/clinic-assistant/internal/messaging"
	"github.com/wolfman30/clinic-assistant/internal/observability/metrics"
	"github.com/wolfman30/clinic-assistant/internal/session"
	"github.com/wolfman30/clinic-assistant/internal/transcription"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

var tracer = otel.Tracer("clinic.internal.inbound")

const defaultProcessingTimeout = 15 * time.Second

// Dispatcher handles one admitted message.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg messaging.Inbound) (dispatcher.Route, error)
}

// Guard admits or drops messages before dispatch.
type Guard interface {
	Check(ctx context.Context, senderID, messageID, text string) guard.Decision
	Release(ctx context.Context, senderID, messageID string)
}

// ProcessedStore remembers message ids that were already handled.
type ProcessedStore interface {
	AlreadyProcessed(ctx context.Context, provider, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, provider, eventID string) (bool, error)
}

// MediaDownloader fetches voice note audio.
type MediaDownloader interface {
	DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error)
}

// VoiceArchiver stores voice note audio.
type VoiceArchiver interface {
	ArchiveVoice(ctx context.Context, note archive.VoiceNote) (string, error)
}

// SessionReader looks up a sender's conversation language.
type SessionReader interface {
	Get(ctx context.Context, senderID string) (*session.Session, error)
}

// ProcessorConfig wires a Processor. Only Dispatcher is required.
type ProcessorConfig struct {
	Dispatcher  Dispatcher
	Guard       Guard
	Processed   ProcessedStore
	Media       MediaDownloader
	Transcriber transcription.Transcriber
	Archive     VoiceArchiver
	Sender      messaging.Sender
	Sessions    SessionReader
	Metrics     *metrics.Metrics
	Logger      *logging.Logger
	Timeout     time.Duration
}

// Processor runs one inbound message through idempotency, the guard and
// voice transcription before handing it to the dispatcher.
type Processor struct {
	dispatcher  Dispatcher
	guard       Guard
	processed   ProcessedStore
	media       MediaDownloader
	transcriber transcription.Transcriber
	archive     VoiceArchiver
	sender      messaging.Sender
	sessions    SessionReader
	metrics     *metrics.Metrics
	logger      *logging.Logger
	timeout     time.Duration
	now         func() time.Time
}

// NewProcessor creates a Processor.
func NewProcessor(cfg ProcessorConfig) *Processor {
	if cfg.Dispatcher == nil {
		panic("inbound: dispatcher cannot be nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultProcessingTimeout
	}
	return &Processor{
		dispatcher:  cfg.Dispatcher,
		guard:       cfg.Guard,
		processed:   cfg.Processed,
		media:       cfg.Media,
		transcriber: cfg.Transcriber,
		archive:     cfg.Archive,
		sender:      cfg.Sender,
		sessions:    cfg.Sessions,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		timeout:     cfg.Timeout,
		now:         time.Now,
	}
}

// Process handles msg. Dropped messages are not errors; the returned error
// reports a dispatch or transcription failure the user was already told about.
func (p *Processor) Process(ctx context.Context, msg messaging.Inbound) error {
	start := p.now()
	kind := string(msg.Kind)
	ctx, span := tracer.Start(ctx, "inbound.process")
	defer span.End()
	span.SetAttributes(attribute.String("whatsapp.message_kind", kind))

	logger := p.logger.With("sender_id", logging.MaskPhone(msg.SenderID), "message_id", msg.MessageID)

	if p.seen(ctx, logger, msg) {
		p.metrics.ObserveInbound(kind, "redelivered")
		logger.Info("skipping redelivered message")
		return nil
	}

	if p.guard != nil {
		decision := p.guard.Check(ctx, msg.SenderID, msg.MessageID, msg.GuardText())
		if !decision.Allowed {
			p.metrics.ObserveGuardDrop(string(decision.Reason))
			p.metrics.ObserveInbound(kind, "dropped")
			logger.Info("message dropped by guard", "reason", decision.Reason)
			return nil
		}
		defer p.guard.Release(context.WithoutCancel(ctx), msg.SenderID, msg.MessageID)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var err error
	if msg.Kind == messaging.InboundAudio {
		msg, err = p.transcribe(ctx, logger, msg)
	}
	if err == nil {
		_, err = p.dispatcher.Dispatch(ctx, msg)
	}

	p.markProcessed(ctx, logger, msg)
	outcome := "processed"
	if err != nil {
		outcome = "failed"
		span.RecordError(err)
	}
	p.metrics.ObserveInbound(kind, outcome)
	p.metrics.ObserveProcessing(kind, p.now().Sub(start).Seconds())
	return err
}

func (p *Processor) seen(ctx context.Context, logger *logging.Logger, msg messaging.Inbound) bool {
	if p.processed == nil || msg.MessageID == "" {
		return false
	}
	done, err := p.processed.AlreadyProcessed(ctx, events.ProviderWhatsApp, msg.MessageID)
	if err != nil {
		p.metrics.ObserveDependencyError("processed_store")
		logger.Warn("processed lookup failed", "error", err)
		return false
	}
	return done
}

func (p *Processor) markProcessed(ctx context.Context, logger *logging.Logger, msg messaging.Inbound) {
	if p.processed == nil || msg.MessageID == "" {
		return
	}
	if _, err := p.processed.MarkProcessed(context.WithoutCancel(ctx), events.ProviderWhatsApp, msg.MessageID); err != nil {
		p.metrics.ObserveDependencyError("processed_store")
		logger.Warn("failed to mark message processed", "error", err)
	}
}

// transcribe turns a voice note into a text message. On failure the user is
// told the note could not be understood.
func (p *Processor) transcribe(ctx context.Context, logger *logging.Logger, msg messaging.Inbound) (messaging.Inbound, error) {
	text, audio, mimeType, err := p.speechToText(ctx, msg)
	if audio != nil {
		p.archiveVoice(ctx, logger, msg, audio, mimeType, text)
	}
	if err != nil {
		p.metrics.ObserveDependencyError("transcription")
		logger.Warn("voice note transcription failed", "error", err)
		p.reply(ctx, logger, msg.SenderID, flow.MessagesFor(p.language(ctx, logger, msg.SenderID)).VoiceFailed)
		return msg, err
	}
	logger.Info("voice note transcribed", "chars", len([]rune(text)))
	msg.Kind = messaging.InboundText
	msg.Text = text
	return msg, nil
}

// language returns the sender's saved conversation language, Arabic when unknown.
func (p *Processor) language(ctx context.Context, logger *logging.Logger, senderID string) intent.Language {
	if p.sessions == nil {
		return intent.Arabic
	}
	sess, err := p.sessions.Get(context.WithoutCancel(ctx), senderID)
	if err != nil || sess == nil || sess.Language == "" {
		if err != nil {
			logger.Warn("session lookup for voice notice failed", "error", err)
		}
		return intent.Arabic
	}
	return sess.Language
}

func (p *Processor) speechToText(ctx context.Context, msg messaging.Inbound) (text string, audio []byte, mimeType string, err error) {
	if p.media == nil || p.transcriber == nil {
		return "", nil, "", fmt.Errorf("inbound: voice notes are not configured")
	}
	audio, mimeType, err = p.media.DownloadMedia(ctx, msg.MediaID)
	if err != nil {
		return "", nil, "", fmt.Errorf("inbound: download voice note: %w", err)
	}
	if mimeType == "" {
		mimeType = msg.MimeType
	}
	text, err = p.transcriber.Transcribe(ctx, audio, mimeType)
	if err != nil {
		if errors.Is(err, transcription.ErrNoSpeech) {
			return "", audio, mimeType, err
		}
		return "", audio, mimeType, fmt.Errorf("inbound: transcribe voice note: %w", err)
	}
	return text, audio, mimeType, nil
}

func (p *Processor) archiveVoice(ctx context.Context, logger *logging.Logger, msg messaging.Inbound, audio []byte, mimeType, transcript string) {
	if p.archive == nil {
		return
	}
	_, err := p.archive.ArchiveVoice(ctx, archive.VoiceNote{
		SenderID:   msg.SenderID,
		MessageID:  msg.MessageID,
		MimeType:   mimeType,
		Data:       audio,
		Transcript: transcript,
		ReceivedAt: msg.Timestamp,
	})
	if err != nil {
		p.metrics.ObserveDependencyError("archive")
		logger.Warn("failed to archive voice note", "error", err)
	}
}

func (p *Processor) reply(ctx context.Context, logger *logging.Logger, to, text string) {
	if p.sender == nil {
		return
	}
	if err := p.sender.Send(context.WithoutCancel(ctx), to, messaging.Text(text)); err != nil {
		p.metrics.ObserveOutbound(string(messaging.KindText), "failed")
		logger.Error("failed to send reply", "error", err)
		return
	}
	p.metrics.ObserveOutbound(string(messaging.KindText), "sent")
}
