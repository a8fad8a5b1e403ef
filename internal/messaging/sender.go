package messaging

import (
	"context"

	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// Sender delivers content to a WhatsApp user.
type Sender interface {
	Send(ctx context.Context, to string, content Content) error
}

// LogSender writes outbound messages to the log instead of a provider. It is
// used when no WhatsApp credentials are configured.
type LogSender struct {
	logger *logging.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *logging.Logger) *LogSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to string, content Content) error {
	s.logger.Info("outbound message (log only)",
		"to", logging.MaskPhone(to),
		"kind", content.Kind,
		"text", content.Text,
		"options", content.OptionIDs(),
		"media_url", content.MediaURL,
	)
	return nil
}
