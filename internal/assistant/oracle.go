package assistant

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-assistant/internal/intent"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

var tracer = otel.Tracer("clinic.internal.assistant")

const (
	askMaxTokens  = 512
	nameMaxTokens = 5
)

// Oracle is the black-box AI used for free-form questions and name checks.
type Oracle struct {
	client     LLMClient
	clinicName string
	logger     *logging.Logger
}

// NewOracle creates an Oracle. With a nil client Ask returns ErrNotConfigured
// and names are judged by a local letters-only rule.
func NewOracle(client LLMClient, clinicName string, logger *logging.Logger) *Oracle {
	if logger == nil {
		logger = logging.Default()
	}
	return &Oracle{client: client, clinicName: clinicName, logger: logger}
}

func (o *Oracle) askPrompt(lang intent.Language) string {
	if lang == intent.English {
		return fmt.Sprintf("You are the WhatsApp assistant of %s, a dental clinic. Answer briefly and politely in English. "+
			"Do not invent prices or doctor schedules; suggest booking an appointment when relevant.", o.clinicName)
	}
	return fmt.Sprintf("أنت مساعد %s على واتساب. أجب بإيجاز وبلطف باللغة العربية. "+
		"لا تخترع أسعاراً أو مواعيد أطباء، واقترح حجز موعد عند الحاجة.", o.clinicName)
}

// Ask returns the model's reply to a patient question.
func (o *Oracle) Ask(ctx context.Context, text string, lang intent.Language) (string, error) {
	if o.client == nil {
		return "", ErrNotConfigured
	}
	ctx, span := tracer.Start(ctx, "assistant.ask")
	defer span.End()
	span.SetAttributes(attribute.String("clinic.language", string(lang)))

	resp, err := o.client.Complete(ctx, LLMRequest{
		System:      []string{o.askPrompt(lang)},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: text}},
		MaxTokens:   askMaxTokens,
		Temperature: 0.4,
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("assistant: ask: %w", err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		span.RecordError(ErrEmptyResponse)
		return "", ErrEmptyResponse
	}
	o.logger.Debug("assistant replied", "input_tokens", resp.Usage.InputTokens, "output_tokens", resp.Usage.OutputTokens)
	return resp.Text, nil
}

// ValidateName asks the model whether name looks like a real person's name.
func (o *Oracle) ValidateName(ctx context.Context, name string) (bool, error) {
	if !plausibleName(name) {
		return false, nil
	}
	if o.client == nil {
		return true, nil
	}
	ctx, span := tracer.Start(ctx, "assistant.validate_name")
	defer span.End()

	resp, err := o.client.Complete(ctx, LLMRequest{
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: fmt.Sprintf("Is %q a valid person name? Answer: YES or NO", name)}},
		MaxTokens:   nameMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("assistant: validate name: %w", err)
	}
	verdict := strings.ToUpper(strings.TrimSpace(resp.Text))
	ok := strings.HasPrefix(verdict, "YES") || strings.HasPrefix(verdict, "نعم")
	span.SetAttributes(attribute.Bool("assistant.name_valid", ok))
	return ok, nil
}

// plausibleName rejects input that cannot be a name before asking the model:
// it needs at least two letters and only letters, spaces, dots, apostrophes
// and hyphens.
func plausibleName(name string) bool {
	letters := 0
	for _, r := range name {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.Is(unicode.Mn, r), r == ' ', r == '.', r == '\'', r == '-':
		default:
			return false
		}
	}
	return letters >= 2
}
