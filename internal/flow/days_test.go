package flow

import (
	"testing"
	"time"

	"github.com/wolfman30/clinic-assistant/internal/intent"
)

func TestOfferedDays(t *testing.T) {
	days := OfferedDays(fixedNow(), testClinic(), intent.English)
	if len(days) != 5 {
		t.Fatalf("expected 5 days, got %d", len(days))
	}
	if days[0].Date != "2025-06-01" || days[0].Label != "Today (2025-06-01)" {
		t.Fatalf("unexpected first day %+v", days[0])
	}
	if days[1].Label != "Tomorrow (2025-06-02)" {
		t.Fatalf("unexpected second day %+v", days[1])
	}
	if days[2].Label != "Tuesday (2025-06-03)" {
		t.Fatalf("unexpected third day %+v", days[2])
	}
	if days[4].Date != "2025-06-05" {
		t.Fatalf("unexpected last day %+v", days[4])
	}
}

func TestOfferedDaysSkipsClosedWeekdays(t *testing.T) {
	cfg := testClinic()
	cfg.ClosedWeekdays = []time.Weekday{time.Monday, time.Tuesday}
	days := OfferedDays(fixedNow(), cfg, intent.Arabic)
	if len(days) != 5 {
		t.Fatalf("expected 5 days, got %d", len(days))
	}
	for _, d := range days {
		parsed, _ := time.Parse(isoDate, d.Date)
		if cfg.IsClosed(parsed.Weekday()) {
			t.Fatalf("closed day offered: %s", d.Date)
		}
	}
	if days[1].Date != "2025-06-04" || days[1].Label != "الأربعاء (2025-06-04)" {
		t.Fatalf("unexpected second day %+v", days[1])
	}
}

func TestOfferedDaysUsesClinicTimezone(t *testing.T) {
	cfg := testClinic()
	cfg.Timezone = "Asia/Amman"
	late := time.Date(2025, 6, 1, 22, 30, 0, 0, time.UTC)
	days := OfferedDays(late, cfg, intent.English)
	if days[0].Date != "2025-06-02" {
		t.Fatalf("expected clinic-local today 2025-06-02, got %s", days[0].Date)
	}
}

func TestMatchDay(t *testing.T) {
	days := OfferedDays(fixedNow(), testClinic(), intent.English)
	cases := map[Input]string{
		{SelectionID: "day_2025-06-03"}: "2025-06-03",
		{Text: "today"}:                 "2025-06-01",
		{Text: "Tomorrow"}:              "2025-06-02",
		{Text: "بكرا"}:                  "2025-06-02",
		{Text: "غداً"}:                  "2025-06-02",
		{Text: "2025-06-05"}:            "2025-06-05",
	}
	for in, want := range cases {
		got, ok := matchDay(in, days)
		if !ok || got.Date != want {
			t.Fatalf("matchDay(%+v) = %+v, %v; want %s", in, got, ok, want)
		}
	}
	for _, in := range []Input{{Text: "2025-06-20"}, {SelectionID: "day_2025-05-31"}, {Text: "whenever"}} {
		if _, ok := matchDay(in, days); ok {
			t.Fatalf("matchDay(%+v) should fail", in)
		}
	}
}
