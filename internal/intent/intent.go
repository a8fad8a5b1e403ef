// Package intent maps free-text WhatsApp messages to conversational intents
// using a keyword table over Arabic and English terms.
package intent

// Intent is the category of an inbound message.
type Intent string

const (
	None       Intent = ""
	Reset      Intent = "reset"
	Cancel     Intent = "cancel"
	Greeting   Intent = "greeting"
	DoctorInfo Intent = "doctor_info"
	Offers     Intent = "offers"
	Location   Intent = "location"
	Booking    Intent = "booking"
	Question   Intent = "question"
)

// Precedence lists keyword intents from highest to lowest priority.
// Question is the fallback for any non-empty text and is not listed.
var Precedence = []Intent{Reset, Cancel, Greeting, DoctorInfo, Booking, Offers, Location}

// Keywords holds the trigger terms for one intent. Contains terms match anywhere
// in the normalized text; Words terms match whole words or phrases only;
// Leading terms match only as the opening word or phrase of the message.
type Keywords struct {
	Contains []string
	Words    []string
	Leading  []string
}

// KeywordTable maps each intent to its trigger terms.
type KeywordTable map[Intent]Keywords

// DefaultKeywords returns the Arabic and English terms the assistant understands.
func DefaultKeywords() KeywordTable {
	return KeywordTable{
		Reset: {
			Contains: []string{"ابدا من جديد", "ابدأ من جديد", "عيد من اول", "من البداية", "بداية جديدة", "القائمة"},
			Words:    []string{"reset", "start", "restart", "new chat", "menu", "ابدا", "ابدأ", "عيد"},
		},
		Cancel: {
			Contains: []string{"الغاء", "إلغاء", "الغي", "كنسل"},
			Words:    []string{"cancel"},
		},
		Greeting: {
			Leading: []string{
				"مرحبا", "السلام عليكم", "اهلا", "هلا", "صباح الخير", "مساء الخير",
				"hi", "hello", "hey", "good morning", "good evening", "greetings",
			},
		},
		DoctorInfo: {
			Contains: []string{"طبيب", "اطباء", "أطباء", "دكتور", "دكاترة"},
			Words:    []string{"doctor", "doctors"},
		},
		Offers: {
			Contains: []string{"عرض", "عروض", "تخفيض", "خصم"},
			Words:    []string{"offer", "offers", "promotion", "promotions", "discount", "deal", "deals"},
		},
		Location: {
			Contains: []string{"موقع", "عنوان"},
			Words:    []string{"مكان", "مكانكم", "وين", "فين", "location", "address", "where"},
		},
		Booking: {
			Contains: []string{"حجز", "موعد", "مواعيد"},
			Words:    []string{"book", "booking", "appointment", "reserve"},
		},
	}
}
