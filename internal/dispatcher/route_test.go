package dispatcher

import (
	"testing"

	"github.com/wolfman30/clinic-assistant/internal/intent"
	"github.com/wolfman30/clinic-assistant/internal/messaging"
	"github.com/wolfman30/clinic-assistant/internal/session"
)

func TestDecide(t *testing.T) {
	idle := func() *session.Session { return session.New("s") }
	booking := func() *session.Session {
		s := session.New("s")
		s.StartBooking()
		return s
	}
	awaitingPhone := func() *session.Session {
		s := session.New("s")
		s.StartCancellation()
		return s
	}
	locked := func() *session.Session {
		s := session.New("s")
		s.Lock()
		return s
	}
	text := messaging.Inbound{Kind: messaging.InboundText, Text: "x"}
	tap := func(id string) messaging.Inbound {
		return messaging.Inbound{Kind: messaging.InboundInteractive, SelectionID: id}
	}

	tests := []struct {
		name string
		in   intent.Intent
		sess *session.Session
		msg  messaging.Inbound
		want Route
	}{
		{"unsupported wins", intent.Reset, booking(), messaging.Inbound{Kind: messaging.InboundUnsupported}, RouteUnsupported},
		{"reset while booking", intent.Reset, booking(), text, RouteReset},
		{"reset while awaiting phone", intent.Reset, awaitingPhone(), text, RouteReset},
		{"cancel while idle", intent.Cancel, idle(), text, RouteStartCancel},
		{"cancel while booking", intent.Cancel, booking(), text, RouteStartCancel},
		{"phone while awaiting phone", intent.Question, awaitingPhone(), text, RouteCancelPhone},
		{"greeting while awaiting phone", intent.Greeting, awaitingPhone(), text, RouteCancelPhone},
		{"keyword while booking feeds step", intent.DoctorInfo, booking(), text, RouteBookingStep},
		{"booking keyword while booking feeds step", intent.Booking, booking(), text, RouteBookingStep},
		{"book tap restarts booking", intent.Booking, booking(), tap(MenuBook), RouteStartBooking},
		{"stale day tap while idle", intent.None, idle(), tap("day_2025-06-01"), RouteStartBooking},
		{"slot tap while booking", intent.None, booking(), tap("slot_3 PM"), RouteBookingStep},
		{"doctors", intent.DoctorInfo, idle(), text, RouteDoctors},
		{"offers", intent.Offers, idle(), text, RouteOffers},
		{"location", intent.Location, idle(), text, RouteLocation},
		{"greeting", intent.Greeting, idle(), text, RouteGreeting},
		{"greeting unlocks", intent.Greeting, locked(), text, RouteGreeting},
		{"booking", intent.Booking, idle(), text, RouteStartBooking},
		{"question", intent.Question, idle(), text, RouteAI},
		{"question while locked", intent.Question, locked(), text, RouteSilent},
		{"empty", intent.None, idle(), messaging.Inbound{Kind: messaging.InboundText}, RouteSilent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.in, tt.sess, tt.msg); got != tt.want {
				t.Fatalf("Decide() = %s, want %s", got, tt.want)
			}
		})
	}
}
