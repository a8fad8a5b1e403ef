package intent

import "unicode"

// Language is the reply language of a conversation.
type Language string

const (
	Arabic  Language = "ar"
	English Language = "en"
)

// Detect reports the language of text. ok is false when text carries no
// letters, such as a bare phone number.
func Detect(text string) (lang Language, ok bool) {
	latin := false
	for _, r := range text {
		if r >= 0x0600 && r <= 0x06FF {
			return Arabic, true
		}
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			latin = true
		}
	}
	if latin {
		return English, true
	}
	return Arabic, false
}

// DetectLanguage is Detect with Arabic as the default.
func DetectLanguage(text string) Language {
	lang, _ := Detect(text)
	return lang
}
