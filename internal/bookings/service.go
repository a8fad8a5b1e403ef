package bookings

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

var bookingsTracer = otel.Tracer("clinic.internal.bookings")

// Observer is told about booking changes after they are persisted.
type Observer interface {
	BookingCreated(ctx context.Context, b Booking)
	BookingCanceled(ctx context.Context, b Booking)
}

// Service wraps a Store with tracing, logging and change notification.
type Service struct {
	store     Store
	observers []Observer
	logger    *logging.Logger
}

var _ Store = (*Service)(nil)

// NewService constructs a bookings service.
func NewService(store Store, logger *logging.Logger, observers ...Observer) *Service {
	if store == nil {
		panic("bookings: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	var obs []Observer
	for _, o := range observers {
		if o != nil {
			obs = append(obs, o)
		}
	}
	return &Service{store: store, observers: obs, logger: logger}
}

func (s *Service) Insert(ctx context.Context, req NewBooking) (*Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.insert")
	defer span.End()

	b, err := s.store.Insert(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("clinic.booking_id", b.ID))
	s.logger.Info("booking created", "booking_id", b.ID, "phone", logging.MaskPhone(b.Phone), "appointment", b.Appointment)
	for _, o := range s.observers {
		o.BookingCreated(ctx, *b)
	}
	return b, nil
}

func (s *Service) FindActiveByPhone(ctx context.Context, phone string) (*Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.find_active_by_phone")
	defer span.End()

	b, err := s.store.FindActiveByPhone(ctx, phone)
	if err != nil && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
	}
	return b, err
}

func (s *Service) Cancel(ctx context.Context, id string) (*Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("clinic.booking_id", id))

	b, err := s.store.Cancel(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("booking canceled", "booking_id", b.ID, "phone", logging.MaskPhone(b.Phone))
	for _, o := range s.observers {
		o.BookingCanceled(ctx, *b)
	}
	return b, nil
}

func (s *Service) List(ctx context.Context, limit int) ([]Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.list")
	defer span.End()

	out, err := s.store.List(ctx, limit)
	if err != nil {
		span.RecordError(err)
	}
	return out, err
}
