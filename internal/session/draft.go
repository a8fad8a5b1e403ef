package session

// Step is the next field a booking draft is waiting for.
type Step string

const (
	StepAwaitingDay     Step = "awaiting_day"
	StepAwaitingTime    Step = "awaiting_time"
	StepAwaitingName    Step = "awaiting_name"
	StepAwaitingPhone   Step = "awaiting_phone"
	StepAwaitingService Step = "awaiting_service"
)

var stepOrder = map[Step]int{
	StepAwaitingDay:     0,
	StepAwaitingTime:    1,
	StepAwaitingName:    2,
	StepAwaitingPhone:   3,
	StepAwaitingService: 4,
}

// Draft is a booking being collected across turns. Fields are filled strictly
// in the order day, time, name, phone; the setters refuse anything else.
type Draft struct {
	Step  Step   `json:"step"`
	Day   string `json:"day,omitempty"`
	Time  string `json:"time,omitempty"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// NewDraft returns a draft waiting for a day.
func NewDraft() *Draft {
	return &Draft{Step: StepAwaitingDay}
}

// SetDay records an ISO date. A day may be re-picked while the time is still open.
func (d *Draft) SetDay(day string) error {
	if day == "" || (d.Step != StepAwaitingDay && d.Step != StepAwaitingTime) {
		return ErrOutOfOrder
	}
	d.Day = day
	d.Time = ""
	d.Step = StepAwaitingTime
	return nil
}

// SetTime records the slot label.
func (d *Draft) SetTime(label string) error {
	if label == "" || d.Step != StepAwaitingTime || d.Day == "" {
		return ErrOutOfOrder
	}
	d.Time = label
	d.Step = StepAwaitingName
	return nil
}

// SetName records a validated patient name.
func (d *Draft) SetName(name string) error {
	if name == "" || d.Step != StepAwaitingName {
		return ErrOutOfOrder
	}
	d.Name = name
	d.Step = StepAwaitingPhone
	return nil
}

// SetPhone records a normalized phone number.
func (d *Draft) SetPhone(phone string) error {
	if phone == "" || d.Step != StepAwaitingPhone || d.Name == "" {
		return ErrOutOfOrder
	}
	d.Phone = phone
	d.Step = StepAwaitingService
	return nil
}

// Appointment is the display form of the chosen slot, "<day> <time>".
func (d *Draft) Appointment() string {
	if d.Day == "" || d.Time == "" {
		return ""
	}
	return d.Day + " " + d.Time
}

// Valid reports whether filled fields agree with the current step.
func (d *Draft) Valid() bool {
	pos, ok := stepOrder[d.Step]
	if !ok {
		return false
	}
	fields := []string{d.Day, d.Time, d.Name, d.Phone}
	for i, v := range fields {
		if i < pos && v == "" {
			return false
		}
		if i >= pos && v != "" {
			return false
		}
	}
	return true
}
