package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinic-assistant/internal/bookings"
	"github.com/wolfman30/clinic-assistant/internal/clinic"
	appconfig "github.com/wolfman30/clinic-assistant/internal/config"
	"github.com/wolfman30/clinic-assistant/internal/events"
	"github.com/wolfman30/clinic-assistant/internal/inbound"
	"github.com/wolfman30/clinic-assistant/internal/session"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

const (
	sessionEvictionInterval = 10 * time.Minute
	processedRetention      = 7 * 24 * time.Hour
)

// BuildSessionStore picks the session backend. The memory store starts its
// eviction loop on ctx.
func BuildSessionStore(ctx context.Context, cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) session.Store {
	if cfg.SessionBackend == "redis" {
		if redisClient != nil {
			logger.Info("using redis session store", "ttl", cfg.SessionTTL.String())
			return session.NewRedisStore(redisClient, cfg.SessionTTL, nil, session.WithRedisLogger(logger))
		}
		logger.Warn("redis session store requested but redis is unavailable; using memory")
	}
	store := session.NewMemoryStore(logger, session.WithTTL(cfg.SessionTTL))
	store.StartEviction(ctx, sessionEvictionInterval)
	return store
}

// BuildBookingStore picks the booking persistence backend.
func BuildBookingStore(cfg *appconfig.Config, pool *pgxpool.Pool, awsCfg *aws.Config, logger *logging.Logger) (bookings.Store, error) {
	switch cfg.BookingStore {
	case "postgres":
		if pool == nil {
			return nil, fmt.Errorf("bootstrap: postgres booking store requires DATABASE_URL")
		}
		logger.Info("using postgres booking store")
		return bookings.NewPostgresStore(pool), nil
	case "dynamodb":
		if awsCfg == nil {
			return nil, fmt.Errorf("bootstrap: dynamodb booking store requires aws config")
		}
		logger.Info("using dynamodb booking store", "table", cfg.DynamoBookingsTable)
		return bookings.NewDynamoStore(dynamodb.NewFromConfig(*awsCfg), cfg.DynamoBookingsTable), nil
	case "", "memory":
		logger.Warn("using in-memory booking store; bookings are lost on restart")
		return bookings.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown booking store %q", cfg.BookingStore)
	}
}

// BuildProcessedStore returns the webhook idempotency store, or nil when disabled.
func BuildProcessedStore(cfg *appconfig.Config, pool *pgxpool.Pool) inbound.ProcessedStore {
	if !cfg.ProcessedEventsStore {
		return nil
	}
	if pool != nil {
		return events.NewProcessedStore(pool)
	}
	return events.NewMemoryProcessedStore(processedRetention)
}

// StartProcessedPruner deletes processed event rows older than the retention
// window once per interval until ctx is done.
func StartProcessedPruner(ctx context.Context, store *events.ProcessedStore, interval time.Duration, logger *logging.Logger) {
	if store == nil {
		return
	}
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Prune(ctx, time.Now().Add(-processedRetention))
			if err != nil {
				logger.Warn("failed to prune processed events", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("pruned processed events", "count", n)
			}
		}
	}
}

// BuildClinicConfig loads the clinic settings from the configured file, the
// clinic_settings table and redis, in that order, falling back to defaults.
func BuildClinicConfig(ctx context.Context, cfg *appconfig.Config, sqlDB *sql.DB, redisClient *redis.Client, logger *logging.Logger) *clinic.Config {
	providers := []clinic.Provider{clinic.NewFileProvider(cfg.ClinicConfigFile)}
	if sqlDB != nil {
		providers = append(providers, clinic.NewSQLProvider(sqlDB))
	}
	if redisClient != nil {
		providers = append(providers, clinic.NewRedisProvider(redisClient))
	}
	return clinic.Load(ctx, cfg.ClinicID, logger, providers...)
}
