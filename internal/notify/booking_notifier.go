package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/clinic-assistant/internal/bookings"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

const defaultSendTimeout = 10 * time.Second

// BookingNotifier emails the clinic inbox when a booking is created or
// canceled. Emails are sent in the background; failures are only logged.
type BookingNotifier struct {
	email      EmailSender
	to         string
	clinicName string
	logger     *logging.Logger
	timeout    time.Duration
	wg         sync.WaitGroup
}

var _ bookings.Observer = (*BookingNotifier)(nil)

// NewBookingNotifier returns nil when there is no sender or recipient.
func NewBookingNotifier(email EmailSender, to, clinicName string, logger *logging.Logger) *BookingNotifier {
	if email == nil || strings.TrimSpace(to) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingNotifier{
		email:      email,
		to:         strings.TrimSpace(to),
		clinicName: clinicName,
		logger:     logger,
		timeout:    defaultSendTimeout,
	}
}

func (n *BookingNotifier) BookingCreated(ctx context.Context, b bookings.Booking) {
	n.send(ctx, "New booking", b)
}

func (n *BookingNotifier) BookingCanceled(ctx context.Context, b bookings.Booking) {
	n.send(ctx, "Booking canceled", b)
}

// Wait blocks until queued emails have been attempted.
func (n *BookingNotifier) Wait() {
	n.wg.Wait()
}

func (n *BookingNotifier) send(ctx context.Context, event string, b bookings.Booking) {
	msg := EmailMessage{
		To:      n.to,
		ToName:  n.clinicName,
		Subject: fmt.Sprintf("%s: %s, %s", event, b.Name, b.Appointment),
		Body:    bookingSummary(event, b),
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
		defer cancel()
		if err := n.email.Send(sendCtx, msg); err != nil {
			n.logger.Error("booking notification failed", "error", err, "booking_id", b.ID, "event", event)
		}
	}()
}

func bookingSummary(event string, b bookings.Booking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n", event)
	fmt.Fprintf(&sb, "Name: %s\n", b.Name)
	fmt.Fprintf(&sb, "Phone: %s\n", b.Phone)
	fmt.Fprintf(&sb, "Service: %s\n", b.Service)
	fmt.Fprintf(&sb, "Appointment: %s\n", b.Appointment)
	fmt.Fprintf(&sb, "Booking ID: %s\n", b.ID)
	if b.CanceledAt != nil {
		fmt.Fprintf(&sb, "Canceled at: %s\n", b.CanceledAt.UTC().Format(time.RFC3339))
	}
	return sb.String()
}
