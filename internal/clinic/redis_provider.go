package clinic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisProvider keeps a full clinic configuration document in redis so it can
// be edited without a deploy.
type RedisProvider struct {
	redis *redis.Client
}

// NewRedisProvider creates a redis-backed provider.
func NewRedisProvider(client *redis.Client) *RedisProvider {
	if client == nil {
		panic("clinic: redis client required")
	}
	return &RedisProvider{redis: client}
}

func (p *RedisProvider) Name() string { return "redis" }

func (p *RedisProvider) key(clinicID string) string {
	return fmt.Sprintf("clinic:config:%s", clinicID)
}

func (p *RedisProvider) Load(ctx context.Context, clinicID string) (*Config, error) {
	data, err := p.redis.Get(ctx, p.key(clinicID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotConfigured
	}
	if err != nil {
		return nil, fmt.Errorf("clinic: get config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("clinic: unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Set saves a clinic configuration.
func (p *RedisProvider) Set(ctx context.Context, cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("clinic: marshal config: %w", err)
	}
	if err := p.redis.Set(ctx, p.key(cfg.ClinicID), data, 0).Err(); err != nil {
		return fmt.Errorf("clinic: set config: %w", err)
	}
	return nil
}
