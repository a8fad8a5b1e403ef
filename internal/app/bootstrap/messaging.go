package bootstrap

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/wolfman30/clinic-assistant/internal/archive"
	"github.com/wolfman30/clinic-assistant/internal/bookings"
	appconfig "github.com/wolfman30/clinic-assistant/internal/config"
	"github.com/wolfman30/clinic-assistant/internal/messaging"
	"github.com/wolfman30/clinic-assistant/internal/notify"
	"github.com/wolfman30/clinic-assistant/internal/whatsapp"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// BuildWhatsAppClient returns the Cloud API client, or nil when credentials are
// missing.
func BuildWhatsAppClient(cfg *appconfig.Config, logger *logging.Logger) *whatsapp.Client {
	if strings.TrimSpace(cfg.WhatsAppToken) == "" || strings.TrimSpace(cfg.WhatsAppPhoneNumberID) == "" {
		logger.Warn("whatsapp credentials missing; outbound messages are only logged")
		return nil
	}
	client, err := whatsapp.NewClient(whatsapp.Config{
		Token:         cfg.WhatsAppToken,
		PhoneNumberID: cfg.WhatsAppPhoneNumberID,
		APIVersion:    cfg.WhatsAppAPIVersion,
		BaseURL:       cfg.WhatsAppAPIBaseURL,
	})
	if err != nil {
		logger.Error("failed to create whatsapp client", "error", err)
		return nil
	}
	return client
}

// BuildEmailSender picks the staff notification provider. It returns nil when
// notifications are disabled.
func BuildEmailSender(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.NotifyEmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.NotifyFromEmail,
			FromName:  cfg.NotifyFromName,
		}, logger); sender != nil {
			return sender
		}
		logger.Warn("sendgrid selected but SENDGRID_API_KEY is empty; emails are only logged")
		return notify.NewLogEmailSender(logger)
	case "ses":
		if awsCfg == nil {
			logger.Warn("ses selected but aws config is unavailable; emails are only logged")
			return notify.NewLogEmailSender(logger)
		}
		return notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
			FromEmail: cfg.NotifyFromEmail,
			FromName:  cfg.NotifyFromName,
		}, logger)
	case "log":
		return notify.NewLogEmailSender(logger)
	default:
		return nil
	}
}

// BuildBookingObservers returns the observers for booking changes together
// with the notifier, which may be nil.
func BuildBookingObservers(cfg *appconfig.Config, email notify.EmailSender, clinicName string, logger *logging.Logger) ([]bookings.Observer, *notify.BookingNotifier) {
	if email == nil {
		return nil, nil
	}
	notifier := notify.NewBookingNotifier(email, cfg.NotifyToEmail, clinicName, logger)
	if notifier == nil {
		logger.Warn("staff notifications disabled; NOTIFY_TO_EMAIL is empty")
		return nil, nil
	}
	return []bookings.Observer{notifier}, notifier
}

// BuildVoiceArchive returns the S3 voice note archive, or nil without a bucket.
func BuildVoiceArchive(cfg *appconfig.Config, awsCfg *aws.Config, pathStyle bool, logger *logging.Logger) *archive.Store {
	if strings.TrimSpace(cfg.VoiceArchiveBucket) == "" || awsCfg == nil {
		return nil
	}
	client := s3.NewFromConfig(*awsCfg, func(o *s3.Options) {
		o.UsePathStyle = pathStyle
	})
	logger.Info("voice note archive enabled", "bucket", cfg.VoiceArchiveBucket)
	return archive.NewStore(client, cfg.VoiceArchiveBucket, logger)
}

// senderOrLog falls back to logging outbound messages when client is nil.
func senderOrLog(client *whatsapp.Client, logger *logging.Logger) messaging.Sender {
	if client == nil {
		return messaging.NewLogSender(logger)
	}
	return client
}
