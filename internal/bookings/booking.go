// Package bookings persists confirmed clinic appointments and their cancellations.
package bookings

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Status is the lifecycle state of a persisted booking.
type Status string

const (
	StatusNew      Status = "new"
	StatusCanceled Status = "canceled"
)

// Booking is a persisted appointment. Only StatusNew bookings are active.
type Booking struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone"`
	Service     string     `json:"service"`
	Appointment string     `json:"appointment"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CanceledAt  *time.Time `json:"canceled_at,omitempty"`
}

// Active reports whether the booking can still be canceled.
func (b *Booking) Active() bool {
	return b != nil && b.Status == StatusNew
}

// NewBooking is the data collected by the booking flow.
type NewBooking struct {
	Name        string `json:"name" validate:"required,max=120"`
	Phone       string `json:"phone" validate:"required,numeric,min=8,max=15"`
	Service     string `json:"service" validate:"required,max=120"`
	Appointment string `json:"appointment" validate:"required,max=64"`
}

var validate = validator.New()

// Validate trims the request and checks its fields.
func (r *NewBooking) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Service = strings.TrimSpace(r.Service)
	r.Appointment = strings.TrimSpace(r.Appointment)
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBooking, err)
	}
	return nil
}
