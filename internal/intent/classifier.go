package intent

import (
	"strings"
	"unicode"
)

// Classifier is a pure text to Intent function over a keyword table.
type Classifier struct {
	rules      map[Intent]Keywords
	quickSlots map[string]struct{}
}

// NewClassifier normalizes the table once. quickSlots are exact replies (for
// example "3", "6", "9") that count as a booking request.
func NewClassifier(table KeywordTable, quickSlots []string) *Classifier {
	if table == nil {
		table = DefaultKeywords()
	}
	rules := make(map[Intent]Keywords, len(table))
	for in, kw := range table {
		var norm Keywords
		for _, term := range kw.Contains {
			if t := Normalize(term); t != "" {
				norm.Contains = append(norm.Contains, t)
			}
		}
		for _, term := range kw.Words {
			if t := Normalize(term); t != "" {
				norm.Words = append(norm.Words, t)
			}
		}
		for _, term := range kw.Leading {
			if t := Normalize(term); t != "" {
				norm.Leading = append(norm.Leading, t)
			}
		}
		rules[in] = norm
	}
	slots := make(map[string]struct{}, len(quickSlots))
	for _, s := range quickSlots {
		if s = Normalize(s); s != "" {
			slots[s] = struct{}{}
		}
	}
	return &Classifier{rules: rules, quickSlots: slots}
}

// Classify returns the highest-precedence intent matching text. Non-empty text
// without a keyword match is a Question; empty text is None.
func (c *Classifier) Classify(text string) Intent {
	norm := Normalize(text)
	if norm == "" {
		return None
	}
	padded := " " + strings.Join(words(norm), " ") + " "
	for _, in := range Precedence {
		if c.matches(in, norm, padded) {
			return in
		}
	}
	if _, ok := c.quickSlots[norm]; ok {
		return Booking
	}
	return Question
}

func (c *Classifier) matches(in Intent, norm, padded string) bool {
	kw, ok := c.rules[in]
	if !ok {
		return false
	}
	for _, term := range kw.Contains {
		if strings.Contains(norm, term) {
			return true
		}
	}
	for _, term := range kw.Words {
		if strings.Contains(padded, " "+term+" ") {
			return true
		}
	}
	for _, term := range kw.Leading {
		if strings.HasPrefix(padded, " "+term+" ") {
			return true
		}
	}
	return false
}

// Normalize lowercases, converts Arabic-Indic digits, folds alef variants,
// strips tatweel and diacritics, and collapses whitespace.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(NormalizeDigits(text)) {
		switch {
		case r == 'أ' || r == 'إ' || r == 'آ':
			r = 'ا'
		case r == 'ـ':
			continue
		case r >= 0x064B && r <= 0x0652:
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeDigits converts Arabic-Indic and Eastern Arabic-Indic digits to ASCII.
func NormalizeDigits(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		}
		return r
	}, text)
}

func words(norm string) []string {
	return strings.FieldsFunc(norm, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
