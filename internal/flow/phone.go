package flow

import (
	"regexp"
	"strings"

	"github.com/wolfman30/clinic-assistant/internal/intent"
)

// MinCancelPhoneDigits is the shortest number accepted for a cancellation lookup.
const MinCancelPhoneDigits = 8

var localMobile = regexp.MustCompile(`^07\d{8}$`)

// DigitsOnly converts Arabic digits and drops every non-digit rune.
func DigitsOnly(text string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, intent.NormalizeDigits(text))
}

// NormalizePhone reduces text to the local mobile form 07XXXXXXXX, collapsing
// the 00962 and 962 country prefixes. ok reports whether the result is a
// valid local mobile number.
func NormalizePhone(text string) (phone string, ok bool) {
	d := DigitsOnly(text)
	switch {
	case strings.HasPrefix(d, "00962"):
		d = "0" + d[5:]
	case strings.HasPrefix(d, "962"):
		d = "0" + d[3:]
	case len(d) == 9 && strings.HasPrefix(d, "7"):
		d = "0" + d
	}
	return d, ValidLocalMobile(d)
}

// ValidLocalMobile reports whether phone is in the 07XXXXXXXX form.
func ValidLocalMobile(phone string) bool {
	return localMobile.MatchString(phone)
}
