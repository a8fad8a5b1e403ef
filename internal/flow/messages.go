package flow

import (
	"fmt"
	"time"

	"github.com/wolfman30/clinic-assistant/internal/bookings"
	"github.com/wolfman30/clinic-assistant/internal/intent"
)

// Messages is the localized copy shown to patients.
type Messages struct {
	Greeting     string // %s: clinic name
	MenuBook     string
	MenuDoctors  string
	MenuOffers   string
	MenuPrompt   string
	DoctorsIntro string
	OffersPrompt string
	BookNow      string
	NoLocation   string

	ChooseDay      string
	ChooseButton   string
	ChooseTime     string // %s: day label
	InvalidDay     string
	InvalidTime    string
	NoDays         string
	Today          string
	Tomorrow       string
	AskName        string
	InvalidName    string
	AskPhone       string
	InvalidPhone   string
	ServiceHeader  string
	ServiceBody    string
	ServiceButton  string
	InvalidService string
	Confirmed      string // name, phone, service, appointment
	SaveFailed     string

	AskCancelPhone     string
	InvalidCancelPhone string
	NoBooking          string
	Canceled           string // name, service, appointment
	CancelFailed       string

	GenericError  string
	AIUnavailable string
	VoiceFailed   string
	Unsupported   string
	Unavailable   string

	weekdays [7]string
}

var arabic = Messages{
	Greeting:     "👋 مرحباً بك في %s!\n\nكيف يمكنني مساعدتك اليوم؟",
	MenuBook:     "📅 حجز موعد",
	MenuDoctors:  "👨‍⚕️ الأطباء",
	MenuOffers:   "🎁 العروض",
	MenuPrompt:   "اختر من القائمة:",
	DoctorsIntro: "👨‍⚕️ تعرّف على أطبائنا:",
	OffersPrompt: "🎉 هل ترغب بحجز موعد للاستفادة من العرض؟",
	BookNow:      "📅 احجز الآن",
	NoLocation:   "📍 يرجى التواصل معنا لمعرفة موقع العيادة.",

	ChooseDay:      "📅 اختر اليوم المناسب:",
	ChooseButton:   "اختر",
	ChooseTime:     "⏰ اختر الوقت ليوم %s:",
	InvalidDay:     "⚠️ الرجاء اختيار يوم من القائمة:",
	InvalidTime:    "⚠️ الرجاء اختيار وقت من الخيارات:",
	NoDays:         "عذراً، لا توجد أيام متاحة للحجز حالياً.",
	Today:          "اليوم",
	Tomorrow:       "بكرا",
	AskName:        "👍 تم اختيار الموعد! الآن أرسل اسمك:",
	InvalidName:    "⚠️ الرجاء إدخال اسم صحيح:",
	AskPhone:       "📱 أرسل رقم الجوال:",
	InvalidPhone:   "⚠️ رقم الجوال غير صحيح. حاول مجددًا:",
	ServiceHeader:  "💊 اختر الخدمة المطلوبة",
	ServiceBody:    "اختر نوع الخدمة من القائمة:",
	ServiceButton:  "عرض الخدمات",
	InvalidService: "⚠️ الرجاء اختيار خدمة من القائمة:",
	Confirmed:      "✅ تم تأكيد الحجز:\n👤 %s\n📱 %s\n💊 %s\n📅 %s",
	SaveFailed:     "⚠️ حدث خطأ في حفظ الحجز. يرجى المحاولة مرة أخرى.",

	AskCancelPhone:     "📌 أرسل رقم الجوال المستخدم في الحجز:",
	InvalidCancelPhone: "⚠️ الرجاء إدخال رقم جوال صحيح:",
	NoBooking:          "❌ لا يوجد حجز مرتبط بهذا الرقم.",
	Canceled:           "🟣 تم إلغاء الحجز:\n👤 %s\n💊 %s\n📅 %s",
	CancelFailed:       "⚠️ حدث خطأ أثناء الإلغاء. حاول لاحقًا.",

	GenericError:  "⚠️ حدث خطأ، يرجى المحاولة لاحقاً.",
	AIUnavailable: "⚠️ عذراً، لا أستطيع الرد الآن. حاول مرة أخرى بعد قليل.",
	VoiceFailed:   "🎙️ لم أتمكن من فهم الرسالة الصوتية. يرجى المحاولة مرة أخرى أو كتابة رسالتك.",
	Unsupported:   "📎 عذراً، هذا النوع من الرسائل غير مدعوم. يرجى إرسال رسالة نصية أو صوتية.",
	Unavailable:   "عذراً، بيانات العيادة غير متوفرة حالياً.",

	weekdays: [7]string{"الأحد", "الاثنين", "الثلاثاء", "الأربعاء", "الخميس", "الجمعة", "السبت"},
}

var english = Messages{
	Greeting:     "👋 Hello! Welcome to %s!\n\nHow can I help you today?",
	MenuBook:     "📅 Book",
	MenuDoctors:  "👨‍⚕️ Doctors",
	MenuOffers:   "🎁 Offers",
	MenuPrompt:   "Choose an option:",
	DoctorsIntro: "👨‍⚕️ Meet our doctors:",
	OffersPrompt: "🎉 Would you like to book an appointment?",
	BookNow:      "📅 Book now",
	NoLocation:   "📍 Please contact us for the clinic location.",

	ChooseDay:      "📅 Choose a day:",
	ChooseButton:   "Choose",
	ChooseTime:     "⏰ Choose a time for %s:",
	InvalidDay:     "⚠️ Please choose a day from the list:",
	InvalidTime:    "⚠️ Please choose one of the available times:",
	NoDays:         "Sorry, there are no days available for booking right now.",
	Today:          "Today",
	Tomorrow:       "Tomorrow",
	AskName:        "👍 Time selected! Now send your name:",
	InvalidName:    "⚠️ Please enter a valid name:",
	AskPhone:       "📱 Send your mobile number:",
	InvalidPhone:   "⚠️ Invalid mobile number. Please try again:",
	ServiceHeader:  "💊 Choose a service",
	ServiceBody:    "Choose the service you need from the list:",
	ServiceButton:  "Services",
	InvalidService: "⚠️ Please choose a service from the list:",
	Confirmed:      "✅ Booking confirmed:\n👤 %s\n📱 %s\n💊 %s\n📅 %s",
	SaveFailed:     "⚠️ We could not save your booking. Please try again.",

	AskCancelPhone:     "📌 Send the mobile number used for the booking:",
	InvalidCancelPhone: "⚠️ Please enter a valid mobile number:",
	NoBooking:          "❌ No booking was found for this number.",
	Canceled:           "🟣 Booking canceled:\n👤 %s\n💊 %s\n📅 %s",
	CancelFailed:       "⚠️ Something went wrong while canceling. Please try later.",

	GenericError:  "⚠️ Something went wrong, please try again later.",
	AIUnavailable: "⚠️ Sorry, I can't answer right now. Please try again shortly.",
	VoiceFailed:   "🎙️ I couldn't understand the voice note. Please try again or type your message.",
	Unsupported:   "📎 Sorry, this message type is not supported. Please send text or a voice note.",
	Unavailable:   "Sorry, clinic details are not available right now.",

	weekdays: [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
}

// MessagesFor returns the copy for lang. Arabic is the default.
func MessagesFor(lang intent.Language) *Messages {
	if lang == intent.English {
		return &english
	}
	return &arabic
}

// Weekday returns the localized weekday name.
func (m *Messages) Weekday(d time.Weekday) string {
	return m.weekdays[d]
}

// GreetingFor formats the greeting for clinicName.
func (m *Messages) GreetingFor(clinicName string) string {
	return fmt.Sprintf(m.Greeting, clinicName)
}

// ConfirmedFor summarizes a saved booking.
func (m *Messages) ConfirmedFor(b *bookings.Booking) string {
	return fmt.Sprintf(m.Confirmed, b.Name, b.Phone, b.Service, b.Appointment)
}

// CanceledFor summarizes a canceled booking.
func (m *Messages) CanceledFor(b *bookings.Booking) string {
	return fmt.Sprintf(m.Canceled, b.Name, b.Service, b.Appointment)
}
