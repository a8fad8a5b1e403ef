package flow

import (
	"fmt"
	"time"

	"github.com/wolfman30/clinic-assistant/internal/clinic"
	"github.com/wolfman30/clinic-assistant/internal/intent"
)

const (
	offeredDays = 5
	// maxDayScan bounds the search when several weekdays are closed.
	maxDayScan = 14
	isoDate    = "2006-01-02"
)

// Day is one selectable booking date.
type Day struct {
	Date   string // YYYY-MM-DD
	Label  string
	Offset int // days from today
}

// OfferedDays returns the next open days starting today in the clinic's timezone.
func OfferedDays(now time.Time, cfg *clinic.Config, lang intent.Language) []Day {
	msgs := MessagesFor(lang)
	today := now.In(cfg.Location())
	days := make([]Day, 0, offeredDays)
	for i := 0; i < maxDayScan && len(days) < offeredDays; i++ {
		d := today.AddDate(0, 0, i)
		if cfg.IsClosed(d.Weekday()) {
			continue
		}
		iso := d.Format(isoDate)
		var name string
		switch i {
		case 0:
			name = msgs.Today
		case 1:
			name = msgs.Tomorrow
		default:
			name = msgs.Weekday(d.Weekday())
		}
		days = append(days, Day{Date: iso, Label: fmt.Sprintf("%s (%s)", name, iso), Offset: i})
	}
	return days
}

var (
	todayWords    = []string{"today", "اليوم"}
	tomorrowWords = []string{"tomorrow", "بكرا", "بكره", "بكرة", "غدا", "غداً"}
)

// matchDay resolves a day selection id, a today/tomorrow word or an ISO date
// against the offered days.
func matchDay(in Input, days []Day) (Day, bool) {
	want := ""
	if v, ok := in.Selected(DayPrefix); ok {
		want = v
	}
	offset := -1
	if want == "" {
		text := intent.Normalize(in.Text)
		switch {
		case containsWord(todayWords, text):
			offset = 0
		case containsWord(tomorrowWords, text):
			offset = 1
		default:
			if _, err := time.Parse(isoDate, text); err == nil {
				want = text
			}
		}
	}
	for _, d := range days {
		if (want != "" && d.Date == want) || (offset >= 0 && d.Offset == offset) {
			return d, true
		}
	}
	return Day{}, false
}

func containsWord(words []string, text string) bool {
	for _, w := range words {
		if intent.Normalize(w) == text {
			return true
		}
	}
	return false
}
