package dispatcher

import (
	"strings"

	"github.com/wolfman30/clinic-assistant/internal/flow"
	"github.com/wolfman30/clinic-assistant/internal/intent"
	"github.com/wolfman30/clinic-assistant/internal/messaging"
)

func (d *Dispatcher) greeting(msgs *flow.Messages) messaging.Content {
	return messaging.Buttons(msgs.GreetingFor(d.clinic.Name),
		messaging.Option{ID: MenuBook, Title: msgs.MenuBook},
		messaging.Option{ID: MenuDoctors, Title: msgs.MenuDoctors},
		messaging.Option{ID: MenuOffers, Title: msgs.MenuOffers},
	)
}

func (d *Dispatcher) doctors(msgs *flow.Messages) []messaging.Content {
	if len(d.clinic.Doctors) == 0 {
		return []messaging.Content{messaging.Text(msgs.Unavailable)}
	}
	out := []messaging.Content{messaging.Text(msgs.DoctorsIntro)}
	for _, doc := range d.clinic.Doctors {
		caption := doc.Name
		if doc.Specialization != "" {
			caption += " - " + doc.Specialization
		}
		if doc.ImageURL == "" {
			out = append(out, messaging.Text(caption))
			continue
		}
		out = append(out, messaging.Image(doc.ImageURL, caption))
	}
	return out
}

func (d *Dispatcher) offers(msgs *flow.Messages) []messaging.Content {
	if len(d.clinic.OfferImages) == 0 {
		return []messaging.Content{messaging.Text(msgs.Unavailable)}
	}
	out := make([]messaging.Content, 0, len(d.clinic.OfferImages)+1)
	for _, url := range d.clinic.OfferImages {
		out = append(out, messaging.Image(url, ""))
	}
	return append(out, messaging.Buttons(msgs.OffersPrompt, messaging.Option{ID: MenuBook, Title: msgs.BookNow}))
}

func (d *Dispatcher) location(msgs *flow.Messages, lang intent.Language) messaging.Content {
	addr := strings.TrimSpace(d.clinic.Address(string(lang)))
	if addr == "" {
		return messaging.Text(msgs.NoLocation)
	}
	return messaging.Text("📍 " + addr)
}
