// Package messaging defines the channel-neutral message model exchanged
// between the conversation core and the WhatsApp transport.
package messaging

// ContentKind selects how outbound content is rendered.
type ContentKind string

const (
	KindText    ContentKind = "text"
	KindButtons ContentKind = "buttons"
	KindList    ContentKind = "list"
	KindImage   ContentKind = "image"
	KindAudio   ContentKind = "audio"
)

// MaxButtons is the number of reply buttons WhatsApp renders in one message.
const MaxButtons = 3

// Option is one selectable choice. ID is echoed back when the user taps it.
type Option struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Section groups list options under a heading.
type Section struct {
	Title   string   `json:"title"`
	Options []Option `json:"options"`
}

// Content is one outbound message.
type Content struct {
	Kind        ContentKind `json:"kind"`
	Text        string      `json:"text,omitempty"`
	ButtonLabel string      `json:"button_label,omitempty"`
	Options     []Option    `json:"options,omitempty"`
	Sections    []Section   `json:"sections,omitempty"`
	MediaURL    string      `json:"media_url,omitempty"`
}

// Text builds a plain text message.
func Text(body string) Content {
	return Content{Kind: KindText, Text: body}
}

// Buttons builds a reply-button prompt. When more than MaxButtons options are
// given the prompt is rendered as a single-section list instead.
func Buttons(body string, opts ...Option) Content {
	if len(opts) > MaxButtons {
		return List(body, "", Section{Options: opts})
	}
	return Content{Kind: KindButtons, Text: body, Options: opts}
}

// List builds a list prompt opened by a button labelled buttonLabel.
func List(body, buttonLabel string, sections ...Section) Content {
	return Content{Kind: KindList, Text: body, ButtonLabel: buttonLabel, Sections: sections}
}

// Image builds an image message with an optional caption.
func Image(url, caption string) Content {
	return Content{Kind: KindImage, MediaURL: url, Text: caption}
}

// Audio builds an audio message from a public link.
func Audio(url string) Content {
	return Content{Kind: KindAudio, MediaURL: url}
}

// OptionIDs lists every option id carried by the content.
func (c Content) OptionIDs() []string {
	var ids []string
	for _, o := range c.Options {
		ids = append(ids, o.ID)
	}
	for _, s := range c.Sections {
		for _, o := range s.Options {
			ids = append(ids, o.ID)
		}
	}
	return ids
}
