// Package dispatcher routes each inbound message to exactly one handler and
// delivers the resulting replies.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-assistant/internal/clinic"
	"github.com/wolfman30/clinic-assistant/internal/flow"
	"github.com/wolfman30/clinic-assistant/internal/intent"
	"github.com/wolfman30/clinic-assistant/internal/messaging"
	"github.com/wolfman30/clinic-assistant/internal/observability/metrics"
	"github.com/wolfman30/clinic-assistant/internal/session"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

var tracer = otel.Tracer("clinic.internal.dispatcher")

const (
	defaultCallTimeout = 8 * time.Second
	defaultSendTimeout = 10 * time.Second
)

// Oracle answers free-form questions.
type Oracle interface {
	Ask(ctx context.Context, text string, lang intent.Language) (string, error)
}

// Config wires the dispatcher's collaborators.
type Config struct {
	Sessions    session.Store
	Locks       *session.Locks
	Classifier  *intent.Classifier
	Booking     *flow.BookingFlow
	Cancel      *flow.CancellationFlow
	Oracle      Oracle
	Sender      messaging.Sender
	Clinic      *clinic.Config
	Metrics     *metrics.Metrics
	Logger      *logging.Logger
	CallTimeout time.Duration
	Now         func() time.Time
}

// Dispatcher is the per-message entry point of the conversation core.
type Dispatcher struct {
	sessions    session.Store
	locks       *session.Locks
	classifier  *intent.Classifier
	booking     *flow.BookingFlow
	cancel      *flow.CancellationFlow
	oracle      Oracle
	sender      messaging.Sender
	clinic      *clinic.Config
	metrics     *metrics.Metrics
	logger      *logging.Logger
	callTimeout time.Duration
	now         func() time.Time
}

// New creates a Dispatcher. Sessions, flows, oracle, sender and clinic config are required.
func New(cfg Config) *Dispatcher {
	switch {
	case cfg.Sessions == nil:
		panic("dispatcher: session store cannot be nil")
	case cfg.Booking == nil || cfg.Cancel == nil:
		panic("dispatcher: flows cannot be nil")
	case cfg.Oracle == nil:
		panic("dispatcher: oracle cannot be nil")
	case cfg.Sender == nil:
		panic("dispatcher: sender cannot be nil")
	case cfg.Clinic == nil:
		panic("dispatcher: clinic config cannot be nil")
	}
	if cfg.Locks == nil {
		cfg.Locks = session.NewLocks()
	}
	if cfg.Classifier == nil {
		cfg.Classifier = intent.NewClassifier(intent.DefaultKeywords(), cfg.Clinic.QuickSlotKeys())
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Dispatcher{
		sessions:    cfg.Sessions,
		locks:       cfg.Locks,
		classifier:  cfg.Classifier,
		booking:     cfg.Booking,
		cancel:      cfg.Cancel,
		oracle:      cfg.Oracle,
		sender:      cfg.Sender,
		clinic:      cfg.Clinic,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		callTimeout: cfg.CallTimeout,
		now:         cfg.Now,
	}
}

// Dispatch processes one message for its sender: it loads the session under
// the sender's lock, routes, persists the new state and sends the replies in
// order. External failures are answered with a localized message and
// returned to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, msg messaging.Inbound) (Route, error) {
	ctx, span := tracer.Start(ctx, "dispatcher.dispatch")
	defer span.End()

	unlock := d.locks.Lock(msg.SenderID)
	defer unlock()

	logger := d.logger.With("sender_id", logging.MaskPhone(msg.SenderID), "message_id", msg.MessageID)

	sess, err := d.sessions.Get(ctx, msg.SenderID)
	if err != nil {
		span.RecordError(err)
		d.metrics.ObserveDependencyError("session_store")
		logger.Error("failed to load session", "error", err)
		d.send(ctx, logger, msg.SenderID, messaging.Text(flow.MessagesFor(intent.DetectLanguage(msg.Text)).GenericError))
		return RouteSilent, fmt.Errorf("dispatcher: load session: %w", err)
	}
	if lang, ok := intent.Detect(msg.Text); ok && msg.Kind != messaging.InboundInteractive {
		sess.Language = lang
	}

	in := d.classify(msg)
	route := Decide(in, sess, msg)
	if in != intent.None {
		sess.LastIntent = in
	}
	span.SetAttributes(attribute.String("clinic.route", string(route)), attribute.String("clinic.intent", string(in)))
	d.metrics.ObserveRoute(string(route))
	logger.Info("message routed", "intent", in, "route", route, "mode", sess.Mode)

	callCtx, cancel := context.WithTimeout(ctx, d.callTimeout)
	res, execErr := d.execute(callCtx, route, sess, msg)
	cancel()
	if res.Session == nil {
		res.Session = sess
	}
	if execErr != nil {
		span.RecordError(execErr)
		logger.Error("route failed", "route", route, "error", execErr)
		res.Replies = append(res.Replies, messaging.Text(d.failureText(execErr, res.Session.Language)))
	}
	if res.Booking != nil {
		switch route {
		case RouteBookingStep:
			d.metrics.ObserveBooking("created")
		case RouteCancelPhone:
			d.metrics.ObserveBooking("canceled")
		}
	}

	res.Session.UpdatedAt = d.now().UTC()
	if err := d.sessions.Save(ctx, res.Session); err != nil {
		span.RecordError(err)
		d.metrics.ObserveDependencyError("session_store")
		logger.Error("failed to save session", "error", err)
		if execErr == nil {
			execErr = fmt.Errorf("dispatcher: save session: %w", err)
		}
	}

	for _, reply := range res.Replies {
		d.send(ctx, logger, msg.SenderID, reply)
	}
	return route, execErr
}

func (d *Dispatcher) classify(msg messaging.Inbound) intent.Intent {
	if in, ok := menuIntents[msg.SelectionID]; ok {
		return in
	}
	if isFlowSelection(msg.SelectionID) {
		return intent.None
	}
	return d.classifier.Classify(msg.Text)
}

func (d *Dispatcher) execute(ctx context.Context, route Route, sess *session.Session, msg messaging.Inbound) (flow.Result, error) {
	msgs := flow.MessagesFor(sess.Language)
	switch route {
	case RouteReset, RouteGreeting:
		sess.Clear()
		return flow.Result{Session: sess, Replies: []messaging.Content{d.greeting(msgs)}}, nil
	case RouteStartCancel:
		return d.cancel.Start(sess), nil
	case RouteCancelPhone:
		return d.cancel.Handle(ctx, sess, msg.Text)
	case RouteStartBooking:
		return d.booking.Start(sess), nil
	case RouteBookingStep:
		return d.booking.Handle(ctx, sess, flow.Input{Text: msg.Text, SelectionID: msg.SelectionID})
	case RouteDoctors:
		return flow.Result{Session: sess, Replies: d.doctors(msgs)}, nil
	case RouteOffers:
		return flow.Result{Session: sess, Replies: d.offers(msgs)}, nil
	case RouteLocation:
		return flow.Result{Session: sess, Replies: []messaging.Content{d.location(msgs, sess.Language)}}, nil
	case RouteAI:
		answer, err := d.oracle.Ask(ctx, msg.Text, sess.Language)
		if err != nil {
			d.metrics.ObserveDependencyError("oracle")
			return flow.Result{Session: sess}, fmt.Errorf("%w: %w", errOracle, err)
		}
		return flow.Result{Session: sess, Replies: []messaging.Content{messaging.Text(answer)}}, nil
	case RouteUnsupported:
		return flow.Result{Session: sess, Replies: []messaging.Content{messaging.Text(msgs.Unsupported)}}, nil
	default:
		return flow.Result{Session: sess}, nil
	}
}

var errOracle = errors.New("dispatcher: oracle failed")

// failureText maps an external failure to the user-facing message.
func (d *Dispatcher) failureText(err error, lang intent.Language) string {
	msgs := flow.MessagesFor(lang)
	switch {
	case errors.Is(err, flow.ErrSaveBooking):
		d.metrics.ObserveDependencyError("booking_store")
		return msgs.SaveFailed
	case errors.Is(err, flow.ErrCancelBooking):
		d.metrics.ObserveDependencyError("booking_store")
		return msgs.CancelFailed
	case errors.Is(err, flow.ErrNameCheck):
		d.metrics.ObserveDependencyError("oracle")
		return msgs.GenericError
	case errors.Is(err, errOracle):
		return msgs.AIUnavailable
	default:
		return msgs.GenericError
	}
}

func (d *Dispatcher) send(ctx context.Context, logger *logging.Logger, to string, content messaging.Content) {
	sendCtx, cancel := context.WithTimeout(ctx, defaultSendTimeout)
	defer cancel()
	if err := d.sender.Send(sendCtx, to, content); err != nil {
		d.metrics.ObserveOutbound(string(content.Kind), "failed")
		logger.Error("failed to send reply", "kind", content.Kind, "error", err)
		return
	}
	d.metrics.ObserveOutbound(string(content.Kind), "sent")
}
