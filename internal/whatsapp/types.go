package whatsapp

// WebhookEvent is the top-level payload Meta posts for a WhatsApp Business account.
type WebhookEvent struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

// Value carries either inbound messages or delivery statuses.
type Value struct {
	MessagingProduct string           `json:"messaging_product"`
	Metadata         Metadata         `json:"metadata"`
	Contacts         []Contact        `json:"contacts,omitempty"`
	Messages         []WebhookMessage `json:"messages,omitempty"`
	Statuses         []Status         `json:"statuses,omitempty"`
}

type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type Contact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

// WebhookMessage is one inbound user message.
type WebhookMessage struct {
	From        string            `json:"from"`
	ID          string            `json:"id"`
	Timestamp   string            `json:"timestamp"`
	Type        string            `json:"type"`
	Text        *TextBody         `json:"text,omitempty"`
	Interactive *InteractiveReply `json:"interactive,omitempty"`
	Button      *QuickReplyButton `json:"button,omitempty"`
	Audio       *MediaRef         `json:"audio,omitempty"`
	Image       *MediaRef         `json:"image,omitempty"`
}

type TextBody struct {
	Body string `json:"body"`
}

// InteractiveReply is a tapped reply button or list row.
type InteractiveReply struct {
	Type        string     `json:"type"`
	ButtonReply *ReplyItem `json:"button_reply,omitempty"`
	ListReply   *ReplyItem `json:"list_reply,omitempty"`
}

type ReplyItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// QuickReplyButton is a template quick-reply tap.
type QuickReplyButton struct {
	Payload string `json:"payload"`
	Text    string `json:"text"`
}

type MediaRef struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Voice    bool   `json:"voice,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

// Status is a delivery receipt for an outbound message.
type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	RecipientID string `json:"recipient_id"`
}

// sendRequest is the Cloud API /messages payload.
type sendRequest struct {
	MessagingProduct string           `json:"messaging_product"`
	RecipientType    string           `json:"recipient_type"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             *sendText        `json:"text,omitempty"`
	Interactive      *sendInteractive `json:"interactive,omitempty"`
	Image            *sendMedia       `json:"image,omitempty"`
	Audio            *sendMedia       `json:"audio,omitempty"`
}

type sendText struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url"`
}

type sendInteractive struct {
	Type   string     `json:"type"`
	Body   sendBody   `json:"body"`
	Action sendAction `json:"action"`
}

type sendBody struct {
	Text string `json:"text"`
}

type sendAction struct {
	Button   string        `json:"button,omitempty"`
	Buttons  []sendButton  `json:"buttons,omitempty"`
	Sections []sendSection `json:"sections,omitempty"`
}

type sendButton struct {
	Type  string    `json:"type"`
	Reply ReplyItem `json:"reply"`
}

type sendSection struct {
	Title string      `json:"title,omitempty"`
	Rows  []ReplyItem `json:"rows"`
}

type sendMedia struct {
	Link    string `json:"link"`
	Caption string `json:"caption,omitempty"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *APIError `json:"error,omitempty"`
}

// APIError is the Graph API error envelope.
type APIError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	FBTraceID string `json:"fbtrace_id"`
}

func (e *APIError) Error() string {
	return "whatsapp: graph error " + e.Type + ": " + e.Message
}

type mediaInfo struct {
	URL      string    `json:"url"`
	MimeType string    `json:"mime_type"`
	FileSize int64     `json:"file_size"`
	Error    *APIError `json:"error,omitempty"`
}
