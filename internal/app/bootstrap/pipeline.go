package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinic-assistant/internal/api/router"
	"github.com/wolfman30/clinic-assistant/internal/assistant"
	"github.com/wolfman30/clinic-assistant/internal/bookings"
	"github.com/wolfman30/clinic-assistant/internal/clinic"
	appconfig "github.com/wolfman30/clinic-assistant/internal/config"
	"github.com/wolfman30/clinic-assistant/internal/dispatcher"
	"github.com/wolfman30/clinic-assistant/internal/events"
	"github.com/wolfman30/clinic-assistant/internal/flow"
	"github.com/wolfman30/clinic-assistant/internal/guard"
	"github.com/wolfman30/clinic-assistant/internal/inbound"
	"github.com/wolfman30/clinic-assistant/internal/intent"
	"github.com/wolfman30/clinic-assistant/internal/messaging"
	"github.com/wolfman30/clinic-assistant/internal/notify"
	"github.com/wolfman30/clinic-assistant/internal/observability/metrics"
	"github.com/wolfman30/clinic-assistant/internal/session"
	"github.com/wolfman30/clinic-assistant/internal/whatsapp"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

const processedPruneInterval = time.Hour

// Options carries the process-level dependencies BuildPipeline cannot derive
// from configuration.
type Options struct {
	// AWS is nil when the AWS SDK could not be configured.
	AWS *aws.Config
	// PathStyleS3 forces path-style bucket addressing (LocalStack).
	PathStyleS3 bool
	// Registerer receives the pipeline metrics; nil uses the default registerer.
	Registerer prometheus.Registerer
}

// Pipeline is the fully wired conversation core shared by every binary.
type Pipeline struct {
	Config     *appconfig.Config
	Clinic     *clinic.Config
	Bookings   *bookings.Service
	Sessions   session.Store
	Guard      *guard.Guard
	Dispatcher *dispatcher.Dispatcher
	Processor  *inbound.Processor
	Sender     messaging.Sender
	WhatsApp   *whatsapp.Client
	Metrics    *metrics.Metrics
	Notifier   *notify.BookingNotifier

	redis     *redis.Client
	pool      *pgxpool.Pool
	sqlDB     *sql.DB
	processed inbound.ProcessedStore
	logger    *logging.Logger
}

// BuildPipeline wires stores, flows, the dispatcher and the inbound processor.
func BuildPipeline(ctx context.Context, cfg *appconfig.Config, opts Options, logger *logging.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	p := &Pipeline{Config: cfg, logger: logger}
	p.redis = BuildRedisClient(ctx, cfg, logger, true)
	p.pool = BuildPostgresPool(ctx, cfg, logger)
	p.sqlDB = BuildSQLDB(cfg, logger)
	p.Metrics = metrics.New(opts.Registerer)

	p.Clinic = BuildClinicConfig(ctx, cfg, p.sqlDB, p.redis, logger)

	store, err := BuildBookingStore(cfg, p.pool, opts.AWS, logger)
	if err != nil {
		p.Close()
		return nil, err
	}
	observers, notifier := BuildBookingObservers(cfg, BuildEmailSender(cfg, opts.AWS, logger), p.Clinic.Name, logger)
	p.Notifier = notifier
	p.Bookings = bookings.NewService(store, logger, observers...)

	p.Sessions = BuildSessionStore(ctx, cfg, p.redis, logger)

	guardOpts := []guard.Option{}
	if p.redis != nil {
		guardOpts = append(guardOpts, guard.WithInFlightStore(guard.NewRedisInFlight(p.redis)))
	}
	p.Guard = guard.New(GuardConfig(cfg), logger, guardOpts...)

	llm, err := BuildLLMClient(ctx, cfg, opts.AWS, logger)
	if err != nil {
		p.Close()
		return nil, err
	}
	oracle := assistant.NewOracle(llm, p.Clinic.Name, logger)

	p.WhatsApp = BuildWhatsAppClient(cfg, logger)
	p.Sender = senderOrLog(p.WhatsApp, logger)

	p.Dispatcher = dispatcher.New(dispatcher.Config{
		Sessions:    p.Sessions,
		Locks:       session.NewLocks(),
		Classifier:  intent.NewClassifier(intent.DefaultKeywords(), p.Clinic.QuickSlotKeys()),
		Booking:     flow.NewBookingFlow(p.Bookings, p.Clinic, oracle, logger),
		Cancel:      flow.NewCancellationFlow(p.Bookings, logger),
		Oracle:      oracle,
		Sender:      p.Sender,
		Clinic:      p.Clinic,
		Metrics:     p.Metrics,
		Logger:      logger,
		CallTimeout: cfg.ExternalCallTimeout,
	})

	p.processed = BuildProcessedStore(cfg, p.pool)
	procCfg := inbound.ProcessorConfig{
		Dispatcher:  p.Dispatcher,
		Guard:       p.Guard,
		Processed:   p.processed,
		Transcriber: BuildTranscriber(cfg, logger),
		Sender:      p.Sender,
		Sessions:    p.Sessions,
		Metrics:     p.Metrics,
		Logger:      logger,
		Timeout:     cfg.ProcessingTimeout,
	}
	if p.WhatsApp != nil {
		procCfg.Media = p.WhatsApp
	}
	if voiceArchive := BuildVoiceArchive(cfg, opts.AWS, opts.PathStyleS3, logger); voiceArchive != nil {
		procCfg.Archive = voiceArchive
	}
	p.Processor = inbound.NewProcessor(procCfg)

	logger.Info("conversation pipeline ready",
		"clinic", p.Clinic.Name,
		"booking_store", cfg.BookingStore,
		"session_backend", cfg.SessionBackend,
		"llm", llm != nil,
	)
	return p, nil
}

// Start launches the background maintenance loops until ctx is done.
func (p *Pipeline) Start(ctx context.Context) {
	p.Guard.Start(ctx)
	if store, ok := p.processed.(*events.ProcessedStore); ok {
		go StartProcessedPruner(ctx, store, processedPruneInterval, p.logger)
	}
}

// HealthChecks returns the dependency probes served by /health.
func (p *Pipeline) HealthChecks() map[string]router.HealthCheck {
	checks := map[string]router.HealthCheck{}
	if p.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return p.redis.Ping(ctx).Err()
		}
	}
	if p.pool != nil {
		checks["postgres"] = p.pool.Ping
	}
	return checks
}

// Close waits for pending notifications and releases connections.
func (p *Pipeline) Close() {
	if p.Notifier != nil {
		p.Notifier.Wait()
	}
	if p.redis != nil {
		_ = p.redis.Close()
	}
	if p.pool != nil {
		p.pool.Close()
	}
	if p.sqlDB != nil {
		_ = p.sqlDB.Close()
	}
}

// BuildQueue returns the inbound queue. The memory queue is also returned on
// its own so the caller can close it on shutdown.
func BuildQueue(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (inbound.Queue, *inbound.MemoryQueue, error) {
	if cfg.InlineWorker() {
		logger.Info("using in-memory inbound queue")
		mq := inbound.NewMemoryQueue(256)
		return mq, mq, nil
	}
	if awsCfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: sqs queue requires aws config")
	}
	logger.Info("using sqs inbound queue", "queue_url", cfg.SQSQueueURL)
	return inbound.NewSQSQueue(sqs.NewFromConfig(*awsCfg), cfg.SQSQueueURL), nil, nil
}

// GuardConfig maps the environment onto guard windows. The in-flight mark
// lives as long as a message may be processed, so a redelivery arriving
// mid-processing is still dropped.
func GuardConfig(cfg *appconfig.Config) guard.Config {
	return guard.Config{
		DuplicateWindow: cfg.DuplicateWindow,
		RateLimit:       cfg.RateLimitMax,
		RateWindow:      cfg.RateLimitWindow,
		InFlightTimeout: cfg.ProcessingTimeout,
		CleanupInterval: cfg.GuardCleanupInterval,
	}
}
