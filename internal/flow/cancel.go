package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfman30/clinic-assistant/internal/bookings"
	"github.com/wolfman30/clinic-assistant/internal/messaging"
	"github.com/wolfman30/clinic-assistant/internal/session"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// CancellationFlow collects a phone number and cancels the most recent active
// booking made with it.
type CancellationFlow struct {
	store  bookings.Store
	logger *logging.Logger
}

// NewCancellationFlow creates the cancellation engine.
func NewCancellationFlow(store bookings.Store, logger *logging.Logger) *CancellationFlow {
	if store == nil {
		panic("flow: booking store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CancellationFlow{store: store, logger: logger}
}

// Start drops any booking draft and asks for the booking phone.
func (f *CancellationFlow) Start(sess *session.Session) Result {
	sess.StartCancellation()
	return reply(sess, messaging.Text(MessagesFor(sess.Language).AskCancelPhone))
}

// Handle looks up and cancels the booking for the phone in text. Store
// failures end the flow; the returned session is idle.
func (f *CancellationFlow) Handle(ctx context.Context, sess *session.Session, text string) (Result, error) {
	msgs := MessagesFor(sess.Language)
	if len(DigitsOnly(text)) < MinCancelPhoneDigits {
		return reply(sess, messaging.Text(msgs.InvalidCancelPhone)), nil
	}
	// Numbers outside the local mobile form are looked up by their digits.
	phone, _ := NormalizePhone(text)

	booking, err := f.store.FindActiveByPhone(ctx, phone)
	if errors.Is(err, bookings.ErrNotFound) {
		sess.Clear()
		return reply(sess, messaging.Text(msgs.NoBooking)), nil
	}
	if err != nil {
		sess.Clear()
		return reply(sess), fmt.Errorf("%w: find: %w", ErrCancelBooking, err)
	}

	canceled, err := f.store.Cancel(ctx, booking.ID)
	if errors.Is(err, bookings.ErrNotFound) {
		sess.Clear()
		return reply(sess, messaging.Text(msgs.NoBooking)), nil
	}
	if err != nil {
		sess.Clear()
		return reply(sess), fmt.Errorf("%w: cancel %s: %w", ErrCancelBooking, booking.ID, err)
	}

	f.logger.Info("booking canceled",
		"sender_id", sess.SenderID,
		"booking_id", canceled.ID,
		"phone", logging.MaskPhone(canceled.Phone),
	)
	sess.Lock()
	res := reply(sess, messaging.Text(msgs.CanceledFor(canceled)))
	res.Booking = canceled
	return res, nil
}
