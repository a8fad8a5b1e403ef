package dispatcher

import (
	"strings"

	"github.com/wolfman30/clinic-assistant/internal/flow"
	"github.com/wolfman30/clinic-assistant/internal/intent"
	"github.com/wolfman30/clinic-assistant/internal/messaging"
	"github.com/wolfman30/clinic-assistant/internal/session"
)

// Route is the single handler chosen for an inbound message.
type Route string

const (
	RouteReset        Route = "reset"
	RouteStartCancel  Route = "start_cancel"
	RouteCancelPhone  Route = "cancel_phone"
	RouteDoctors      Route = "doctors"
	RouteOffers       Route = "offers"
	RouteLocation     Route = "location"
	RouteGreeting     Route = "greeting"
	RouteStartBooking Route = "start_booking"
	RouteBookingStep  Route = "booking_step"
	RouteAI           Route = "ai"
	RouteUnsupported  Route = "unsupported"
	RouteSilent       Route = "silent"
)

// Greeting menu button ids.
const (
	MenuBook    = "menu_book"
	MenuDoctors = "menu_doctors"
	MenuOffers  = "menu_offers"
)

var menuIntents = map[string]intent.Intent{
	MenuBook:    intent.Booking,
	MenuDoctors: intent.DoctorInfo,
	MenuOffers:  intent.Offers,
}

// isFlowSelection reports whether id is a day, slot or service tap.
func isFlowSelection(id string) bool {
	return strings.HasPrefix(id, flow.DayPrefix) ||
		strings.HasPrefix(id, flow.SlotPrefix) ||
		strings.HasPrefix(id, flow.ServicePrefix)
}

// Decide picks the route for msg given its intent and the sender's session.
//
// Reset and Cancel are honoured in every state so a user can always leave a
// flow. While a booking draft is open every other message feeds the current
// step; flow button taps go straight to the booking engine without keyword
// classification.
func Decide(in intent.Intent, sess *session.Session, msg messaging.Inbound) Route {
	if msg.Kind == messaging.InboundUnsupported {
		return RouteUnsupported
	}
	switch in {
	case intent.Reset:
		return RouteReset
	case intent.Cancel:
		return RouteStartCancel
	}
	if sess.Mode == session.ModeAwaitingCancelPhone {
		return RouteCancelPhone
	}
	if sess.BookingInProgress() {
		if msg.SelectionID == MenuBook {
			return RouteStartBooking
		}
		return RouteBookingStep
	}
	if isFlowSelection(msg.SelectionID) {
		return RouteStartBooking
	}
	switch in {
	case intent.DoctorInfo:
		return RouteDoctors
	case intent.Offers:
		return RouteOffers
	case intent.Location:
		return RouteLocation
	case intent.Greeting:
		return RouteGreeting
	case intent.Booking:
		return RouteStartBooking
	case intent.Question:
		if sess.Mode == session.ModeLocked {
			return RouteSilent
		}
		return RouteAI
	default:
		return RouteSilent
	}
}
