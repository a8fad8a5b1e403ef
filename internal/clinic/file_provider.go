package clinic

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileProvider reads clinic settings from a YAML file.
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider for path. An empty path yields ErrNotConfigured on Load.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

func (p *FileProvider) Name() string { return "file" }

func (p *FileProvider) Load(_ context.Context, clinicID string) (*Config, error) {
	if p.path == "" {
		return nil, ErrNotConfigured
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotConfigured
		}
		return nil, fmt.Errorf("clinic: read %s: %w", p.path, err)
	}
	return ParseYAML(data, clinicID)
}

// ParseYAML decodes a YAML settings document.
func ParseYAML(data []byte, clinicID string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("clinic: decode yaml: %w", err)
	}
	if cfg.ClinicID == "" {
		cfg.ClinicID = clinicID
	}
	return &cfg, nil
}
