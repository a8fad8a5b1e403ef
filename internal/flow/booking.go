package flow

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wolfman30/clinic-assistant/internal/bookings"
	"github.com/wolfman30/clinic-assistant/internal/clinic"
	"github.com/wolfman30/clinic-assistant/internal/messaging"
	"github.com/wolfman30/clinic-assistant/internal/session"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

const maxNameLength = 60

// BookingFlow fills a booking draft day, time, name, phone, service and saves it.
type BookingFlow struct {
	store  bookings.Store
	clinic *clinic.Config
	names  NameValidator
	logger *logging.Logger
	now    func() time.Time
}

// BookingOption configures a BookingFlow.
type BookingOption func(*BookingFlow)

// WithClock overrides the clock used to build the day window.
func WithClock(now func() time.Time) BookingOption {
	return func(f *BookingFlow) {
		if now != nil {
			f.now = now
		}
	}
}

// NewBookingFlow creates the booking engine.
func NewBookingFlow(store bookings.Store, cfg *clinic.Config, names NameValidator, logger *logging.Logger, opts ...BookingOption) *BookingFlow {
	if store == nil {
		panic("flow: booking store cannot be nil")
	}
	if cfg == nil {
		panic("flow: clinic config cannot be nil")
	}
	if names == nil {
		panic("flow: name validator cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	f := &BookingFlow{store: store, clinic: cfg, names: names, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Start discards any previous state and asks for a day.
func (f *BookingFlow) Start(sess *session.Session) Result {
	sess.StartBooking()
	days := OfferedDays(f.now(), f.clinic, sess.Language)
	if len(days) == 0 {
		sess.Clear()
		return reply(sess, messaging.Text(MessagesFor(sess.Language).NoDays))
	}
	return reply(sess, f.dayPrompt(sess, days, ""))
}

// Handle feeds one user turn to the current draft step.
func (f *BookingFlow) Handle(ctx context.Context, sess *session.Session, in Input) (Result, error) {
	if !sess.BookingInProgress() {
		return f.Start(sess), nil
	}
	switch sess.Draft.Step {
	case session.StepAwaitingDay:
		return f.handleDay(sess, in), nil
	case session.StepAwaitingTime:
		return f.handleTime(sess, in), nil
	case session.StepAwaitingName:
		return f.handleName(ctx, sess, in)
	case session.StepAwaitingPhone:
		return f.handlePhone(sess, in), nil
	case session.StepAwaitingService:
		return f.handleService(ctx, sess, in)
	default:
		f.logger.Warn("unknown booking step, restarting", "sender_id", sess.SenderID, "step", sess.Draft.Step)
		return f.Start(sess), nil
	}
}

func (f *BookingFlow) handleDay(sess *session.Session, in Input) Result {
	days := OfferedDays(f.now(), f.clinic, sess.Language)
	day, ok := matchDay(in, days)
	if !ok {
		return reply(sess, f.dayPrompt(sess, days, MessagesFor(sess.Language).InvalidDay))
	}
	if err := sess.Draft.SetDay(day.Date); err != nil {
		return f.Start(sess)
	}
	return reply(sess, f.timePrompt(sess, ""))
}

func (f *BookingFlow) handleTime(sess *session.Session, in Input) Result {
	// A day tapped again while choosing a time re-picks the day.
	if _, ok := in.Selected(DayPrefix); ok {
		return f.handleDay(sess, in)
	}
	label, ok := f.matchSlot(in)
	if !ok {
		return reply(sess, f.timePrompt(sess, MessagesFor(sess.Language).InvalidTime))
	}
	if err := sess.Draft.SetTime(label); err != nil {
		return f.Start(sess)
	}
	return reply(sess, messaging.Text(MessagesFor(sess.Language).AskName))
}

func (f *BookingFlow) matchSlot(in Input) (string, bool) {
	if v, ok := in.Selected(SlotPrefix); ok {
		for _, slot := range f.clinic.TimeSlots {
			if slot == v {
				return slot, true
			}
		}
		return "", false
	}
	return f.clinic.MatchTimeSlot(in.Text)
}

func (f *BookingFlow) handleName(ctx context.Context, sess *session.Session, in Input) (Result, error) {
	msgs := MessagesFor(sess.Language)
	// Button taps carry their title as text; only a typed name counts.
	if in.SelectionID != "" {
		return reply(sess, messaging.Text(msgs.InvalidName)), nil
	}
	name := strings.Join(strings.Fields(in.Text), " ")
	if name == "" || utf8.RuneCountInString(name) > maxNameLength || DigitsOnly(name) != "" {
		return reply(sess, messaging.Text(msgs.InvalidName)), nil
	}
	ok, err := f.names.ValidateName(ctx, name)
	if err != nil {
		return reply(sess), fmt.Errorf("%w: %w", ErrNameCheck, err)
	}
	if !ok {
		return reply(sess, messaging.Text(msgs.InvalidName)), nil
	}
	if err := sess.Draft.SetName(name); err != nil {
		return f.Start(sess), nil
	}
	return reply(sess, messaging.Text(msgs.AskPhone)), nil
}

func (f *BookingFlow) handlePhone(sess *session.Session, in Input) Result {
	if in.SelectionID != "" {
		return reply(sess, messaging.Text(MessagesFor(sess.Language).InvalidPhone))
	}
	phone, ok := NormalizePhone(in.Text)
	if !ok {
		return reply(sess, messaging.Text(MessagesFor(sess.Language).InvalidPhone))
	}
	if err := sess.Draft.SetPhone(phone); err != nil {
		return f.Start(sess)
	}
	return reply(sess, f.servicePrompt(sess, ""))
}

func (f *BookingFlow) handleService(ctx context.Context, sess *session.Session, in Input) (Result, error) {
	msgs := MessagesFor(sess.Language)
	service, ok := f.matchService(in)
	if !ok {
		return reply(sess, f.servicePrompt(sess, msgs.InvalidService)), nil
	}
	draft := sess.Draft
	booking, err := f.store.Insert(ctx, bookings.NewBooking{
		Name:        draft.Name,
		Phone:       draft.Phone,
		Service:     service,
		Appointment: draft.Appointment(),
	})
	if err != nil {
		// The draft stays at the service step so the patient can pick again.
		return reply(sess), fmt.Errorf("%w: %w", ErrSaveBooking, err)
	}
	f.logger.Info("booking confirmed",
		"sender_id", sess.SenderID,
		"booking_id", booking.ID,
		"phone", logging.MaskPhone(booking.Phone),
		"appointment", booking.Appointment,
	)
	sess.Clear()
	res := reply(sess, messaging.Text(msgs.ConfirmedFor(booking)))
	res.Booking = booking
	return res, nil
}

func (f *BookingFlow) matchService(in Input) (string, bool) {
	if v, ok := in.Selected(ServicePrefix); ok {
		return f.clinic.MatchService(v)
	}
	return f.clinic.MatchService(in.Text)
}

func (f *BookingFlow) dayPrompt(sess *session.Session, days []Day, warning string) messaging.Content {
	msgs := MessagesFor(sess.Language)
	opts := make([]messaging.Option, 0, len(days))
	for _, d := range days {
		opts = append(opts, messaging.Option{ID: DayPrefix + d.Date, Title: d.Label})
	}
	prompt := messaging.Buttons(prefixed(warning, msgs.ChooseDay), opts...)
	if prompt.Kind == messaging.KindList {
		prompt.ButtonLabel = msgs.ChooseButton
	}
	return prompt
}

func (f *BookingFlow) timePrompt(sess *session.Session, warning string) messaging.Content {
	msgs := MessagesFor(sess.Language)
	opts := make([]messaging.Option, 0, len(f.clinic.TimeSlots))
	for _, slot := range f.clinic.TimeSlots {
		opts = append(opts, messaging.Option{ID: SlotPrefix + slot, Title: slot})
	}
	return messaging.Buttons(prefixed(warning, fmt.Sprintf(msgs.ChooseTime, sess.Draft.Day)), opts...)
}

func (f *BookingFlow) servicePrompt(sess *session.Session, warning string) messaging.Content {
	msgs := MessagesFor(sess.Language)
	sections := make([]messaging.Section, 0, len(f.clinic.ServiceGroups))
	for _, g := range f.clinic.ServiceGroups {
		sec := messaging.Section{Title: g.Title}
		for _, s := range g.Services {
			sec.Options = append(sec.Options, messaging.Option{ID: ServicePrefix + s, Title: s})
		}
		sections = append(sections, sec)
	}
	body := msgs.ServiceHeader + "\n" + msgs.ServiceBody
	return messaging.List(prefixed(warning, body), msgs.ServiceButton, sections...)
}

func prefixed(warning, body string) string {
	if warning == "" {
		return body
	}
	return warning + "\n" + body
}
