// Package clinic provides the clinic's static configuration: name, bookable
// time slots, service catalog, doctors, offers and location.
package clinic

import (
	"strings"
	"time"
)

// Doctor is shown by the doctor-info reply.
type Doctor struct {
	Name           string `json:"name" yaml:"name" validate:"required"`
	Specialization string `json:"specialization" yaml:"specialization"`
	ImageURL       string `json:"image_url" yaml:"image_url" validate:"omitempty,url"`
}

// ServiceGroup is one section of the service menu.
type ServiceGroup struct {
	Title    string   `json:"title" yaml:"title"`
	Services []string `json:"services" yaml:"services" validate:"required,min=1,dive,required,max=72"`
}

// Config is the read-only clinic configuration used by the conversation flows.
type Config struct {
	ClinicID       string         `json:"clinic_id" yaml:"clinic_id"`
	Name           string         `json:"name" yaml:"name" validate:"required"`
	TimeSlots      []string       `json:"time_slots" yaml:"time_slots" validate:"required,min=1,max=10,dive,required,max=20"`
	ServiceGroups  []ServiceGroup `json:"service_groups" yaml:"service_groups" validate:"required,min=1,max=10,dive"`
	Doctors        []Doctor       `json:"doctors" yaml:"doctors" validate:"dive"`
	OfferImages    []string       `json:"offer_images" yaml:"offer_images" validate:"dive,url"`
	LocationAR     string         `json:"location_ar" yaml:"location_ar"`
	LocationEN     string         `json:"location_en" yaml:"location_en"`
	ClosedWeekdays []time.Weekday `json:"closed_weekdays" yaml:"closed_weekdays" validate:"dive,min=0,max=6"`
	Timezone       string         `json:"timezone" yaml:"timezone"`
}

// DefaultConfig returns the hardcoded fallback used when no settings source is available.
func DefaultConfig(clinicID string) *Config {
	if clinicID == "" {
		clinicID = "default"
	}
	return &Config{
		ClinicID:  clinicID,
		Name:      "عيادة نيو سكن",
		TimeSlots: []string{"3 PM", "6 PM", "9 PM"},
		ServiceGroups: []ServiceGroup{
			{
				Title:    "الخدمات الأساسية",
				Services: []string{"فحص عام", "تنظيف الأسنان", "تبييض الأسنان", "حشو الأسنان"},
			},
			{
				Title:    "الخدمات المتقدمة",
				Services: []string{"علاج الجذور", "التركيبات", "تقويم الأسنان", "خلع الأسنان"},
			},
		},
		Doctors: []Doctor{
			{Name: "د. دلال محمد العجمي", Specialization: "طبيب أسنان عام", ImageURL: "https://drive.google.com/uc?export=view&id=1aHoA2ks39qeuMk9WMZOdotOod-agEonm"},
			{Name: "د. عبدالله سعيد الأسمري", Specialization: "استشاري تقويم الأسنان والوجه والفكين", ImageURL: "https://drive.google.com/uc?export=view&id=1Oe2UG2Gas6UY0ORxXtUYvTJeJZ8Br2_R"},
			{Name: "د. حمد أحمد الحازمي", Specialization: "استشاري تقويم الأسنان والوجه والفكين", ImageURL: "https://drive.google.com/uc?export=view&id=1_4eDWRuVme3YaLLoeFP_10LYHZyHyjUT"},
		},
		OfferImages: []string{
			"https://drive.google.com/uc?export=view&id=104QzzCy2U5ujhADK_SD0dGldowwlgVU2",
			"https://drive.google.com/uc?export=view&id=19EsrCSixVa_8trbzFF5lrZJqcue0quDW",
			"https://drive.google.com/uc?export=view&id=17jaUTvf_S2nqApqMlRc3r8q97uPulvDx",
		},
		Timezone: "Asia/Amman",
	}
}

// Services returns the flattened service catalog in menu order.
func (c *Config) Services() []string {
	var out []string
	for _, g := range c.ServiceGroups {
		out = append(out, g.Services...)
	}
	return out
}

// MatchService returns the catalog spelling of name, matched case-insensitively.
func (c *Config) MatchService(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	for _, s := range c.Services() {
		if strings.EqualFold(s, name) {
			return s, true
		}
	}
	return "", false
}

// MatchTimeSlot accepts a slot label ("6 PM", "6 pm") or its leading hour ("6").
func (c *Config) MatchTimeSlot(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	for _, slot := range c.TimeSlots {
		if strings.EqualFold(slot, text) || strings.EqualFold(strings.ReplaceAll(slot, " ", ""), strings.ReplaceAll(text, " ", "")) {
			return slot, true
		}
		if QuickSlotKey(slot) == text {
			return slot, true
		}
	}
	return "", false
}

// QuickSlotKeys lists the bare-hour shortcuts for the configured slots.
func (c *Config) QuickSlotKeys() []string {
	var keys []string
	for _, slot := range c.TimeSlots {
		if k := QuickSlotKey(slot); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// QuickSlotKey returns the leading number of a slot label ("6 PM" -> "6").
func QuickSlotKey(slot string) string {
	end := 0
	for end < len(slot) && slot[end] >= '0' && slot[end] <= '9' {
		end++
	}
	return slot[:end]
}

// IsClosed reports whether the clinic is closed on weekday.
func (c *Config) IsClosed(weekday time.Weekday) bool {
	for _, d := range c.ClosedWeekdays {
		if d == weekday {
			return true
		}
	}
	return false
}

// Location returns the clinic timezone, falling back to UTC+3 when the
// zone database is unavailable.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	return time.FixedZone(c.Timezone, 3*60*60)
}

// Address returns the localized address text, or "" when none is configured.
func (c *Config) Address(lang string) string {
	if lang == "en" && c.LocationEN != "" {
		return c.LocationEN
	}
	if c.LocationAR != "" {
		return c.LocationAR
	}
	return c.LocationEN
}

// merge fills fields missing from c with values from base.
func (c *Config) merge(base *Config) {
	if c.ClinicID == "" {
		c.ClinicID = base.ClinicID
	}
	if c.Name == "" {
		c.Name = base.Name
	}
	if len(c.TimeSlots) == 0 {
		c.TimeSlots = base.TimeSlots
	}
	if len(c.ServiceGroups) == 0 {
		c.ServiceGroups = base.ServiceGroups
	}
	if len(c.Doctors) == 0 {
		c.Doctors = base.Doctors
	}
	if len(c.OfferImages) == 0 {
		c.OfferImages = base.OfferImages
	}
	if c.Timezone == "" {
		c.Timezone = base.Timezone
	}
}
