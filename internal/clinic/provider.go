package clinic

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// Provider loads clinic settings from one source.
type Provider interface {
	Name() string
	Load(ctx context.Context, clinicID string) (*Config, error)
}

var validate = validator.New()

// Validate checks a configuration for the fields the flows rely on.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("clinic: nil config")
	}
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("clinic: invalid config: %w", err)
	}
	return nil
}

// Load asks each provider in order and returns the first valid configuration.
// Missing fields are filled from DefaultConfig; when every provider fails the
// default configuration itself is returned.
func Load(ctx context.Context, clinicID string, logger *logging.Logger, providers ...Provider) *Config {
	if logger == nil {
		logger = logging.Default()
	}
	base := DefaultConfig(clinicID)
	for _, p := range providers {
		if p == nil {
			continue
		}
		cfg, err := p.Load(ctx, clinicID)
		if err != nil {
			level := logger.Warn
			if errors.Is(err, ErrNotConfigured) {
				level = logger.Info
			}
			level("clinic settings source unavailable", "source", p.Name(), "error", err)
			continue
		}
		cfg.merge(base)
		if err := Validate(cfg); err != nil {
			logger.Warn("clinic settings rejected", "source", p.Name(), "error", err)
			continue
		}
		logger.Info("clinic settings loaded", "source", p.Name(), "clinic", cfg.Name, "time_slots", cfg.TimeSlots)
		return cfg
	}
	logger.Warn("using fallback clinic settings", "clinic_id", base.ClinicID)
	return base
}
