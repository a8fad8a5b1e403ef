package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/clinic-assistant/internal/bookings"
	appconfig "github.com/wolfman30/clinic-assistant/internal/config"
	"github.com/wolfman30/clinic-assistant/internal/events"
	"github.com/wolfman30/clinic-assistant/internal/guard"
	"github.com/wolfman30/clinic-assistant/internal/intent"
	"github.com/wolfman30/clinic-assistant/internal/messaging"
	"github.com/wolfman30/clinic-assistant/internal/notify"
	"github.com/wolfman30/clinic-assistant/internal/session"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

func memoryConfig() *appconfig.Config {
	return &appconfig.Config{
		SessionBackend:       "memory",
		SessionTTL:           time.Hour,
		BookingStore:         "memory",
		ProcessedEventsStore: true,
		UseMemoryQueue:       true,
		ClinicID:             "test",
		ProcessingTimeout:    5 * time.Second,
		ExternalCallTimeout:  time.Second,
	}
}

func TestBuildPipelineRequiresConfig(t *testing.T) {
	if _, err := BuildPipeline(context.Background(), nil, Options{}, logging.New("error")); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestBuildPipelineInMemoryHandlesGreeting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p, err := BuildPipeline(ctx, memoryConfig(), Options{Registerer: prometheus.NewRegistry()}, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()
	p.Start(ctx)

	if _, ok := p.Sender.(*messaging.LogSender); !ok {
		t.Fatalf("expected log sender without whatsapp credentials, got %T", p.Sender)
	}
	if p.Notifier != nil {
		t.Fatalf("expected notifications disabled")
	}
	if len(p.HealthChecks()) != 0 {
		t.Fatalf("expected no dependency checks, got %v", p.HealthChecks())
	}

	msg := messaging.Inbound{
		SenderID:  "962791234567",
		MessageID: "wamid.1",
		Kind:      messaging.InboundText,
		Text:      "hello",
		Timestamp: time.Now(),
	}
	if err := p.Processor.Process(ctx, msg); err != nil {
		t.Fatalf("process: %v", err)
	}
	sess, err := p.Sessions.Get(ctx, msg.SenderID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess.LastIntent != intent.Greeting {
		t.Fatalf("expected greeting intent, got %q", sess.LastIntent)
	}
	if sess.Language != intent.English {
		t.Fatalf("expected english session, got %q", sess.Language)
	}
}

func TestGuardConfigHoldsInFlightForProcessingTimeout(t *testing.T) {
	cfg := memoryConfig()
	cfg.ProcessingTimeout = 45 * time.Second

	gc := GuardConfig(cfg)
	if gc.InFlightTimeout != 45*time.Second {
		t.Fatalf("expected in-flight timeout to follow processing timeout, got %s", gc.InFlightTimeout)
	}

	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := guard.New(gc, logging.New("error"), guard.WithClock(func() time.Time { return now }))
	if d := g.Check(ctx, "962791234567", "wamid.1", "book"); !d.Allowed {
		t.Fatalf("expected first delivery to pass, got %+v", d)
	}
	now = now.Add(30 * time.Second)
	if d := g.Check(ctx, "962791234567", "wamid.1", "book"); d.Allowed || d.Reason != guard.ReasonInFlight {
		t.Fatalf("expected redelivery during processing to be dropped, got %+v", d)
	}
}

func TestBuildBookingStore(t *testing.T) {
	logger := logging.New("error")

	store, err := BuildBookingStore(&appconfig.Config{BookingStore: "memory"}, nil, nil, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.(*bookings.MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}

	if _, err := BuildBookingStore(&appconfig.Config{BookingStore: "postgres"}, nil, nil, logger); err == nil {
		t.Fatalf("expected error for postgres without a pool")
	}
	if _, err := BuildBookingStore(&appconfig.Config{BookingStore: "dynamodb"}, nil, nil, logger); err == nil {
		t.Fatalf("expected error for dynamodb without aws config")
	}
	if _, err := BuildBookingStore(&appconfig.Config{BookingStore: "sqlite"}, nil, nil, logger); err == nil {
		t.Fatalf("expected error for unknown store")
	}
}

func TestBuildSessionStoreUsesRedisWhenAvailable(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := logging.New("error")

	cfg := &appconfig.Config{RedisAddr: mr.Addr(), SessionBackend: "redis", SessionTTL: time.Hour}
	client := BuildRedisClient(ctx, cfg, logger, true)
	if client == nil {
		t.Fatalf("expected redis client")
	}
	defer client.Close()

	if _, ok := BuildSessionStore(ctx, cfg, client, logger).(*session.RedisStore); !ok {
		t.Fatalf("expected redis session store")
	}
	if _, ok := BuildSessionStore(ctx, cfg, nil, logger).(*session.MemoryStore); !ok {
		t.Fatalf("expected memory fallback without redis")
	}
}

func TestBuildRedisClientDisabled(t *testing.T) {
	if client := BuildRedisClient(context.Background(), &appconfig.Config{}, logging.New("error"), true); client != nil {
		t.Fatalf("expected nil client without REDIS_ADDR")
	}
}

func TestBuildProcessedStore(t *testing.T) {
	if store := BuildProcessedStore(&appconfig.Config{ProcessedEventsStore: false}, nil); store != nil {
		t.Fatalf("expected nil store when disabled")
	}
	store := BuildProcessedStore(&appconfig.Config{ProcessedEventsStore: true}, nil)
	if _, ok := store.(*events.MemoryProcessedStore); !ok {
		t.Fatalf("expected memory processed store without postgres, got %T", store)
	}
}

func TestBuildLLMClient(t *testing.T) {
	logger := logging.New("error")

	client, err := BuildLLMClient(context.Background(), &appconfig.Config{LLMProvider: "gemini"}, nil, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client != nil {
		t.Fatalf("expected nil client without api key")
	}

	client, err = BuildLLMClient(context.Background(), &appconfig.Config{LLMProvider: "bedrock", BedrockModelID: "model"}, nil, logger)
	if err != nil || client != nil {
		t.Fatalf("expected nil bedrock client without aws config, got %v %v", client, err)
	}

	if _, err := BuildLLMClient(context.Background(), &appconfig.Config{LLMProvider: "openai"}, nil, logger); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestBuildEmailSenderAndObservers(t *testing.T) {
	logger := logging.New("error")

	if sender := BuildEmailSender(&appconfig.Config{}, nil, logger); sender != nil {
		t.Fatalf("expected notifications disabled by default")
	}
	sender := BuildEmailSender(&appconfig.Config{NotifyEmailProvider: "sendgrid"}, nil, logger)
	if _, ok := sender.(*notify.LogEmailSender); !ok {
		t.Fatalf("expected log sender without sendgrid key, got %T", sender)
	}

	observers, notifier := BuildBookingObservers(&appconfig.Config{}, sender, "Clinic", logger)
	if observers != nil || notifier != nil {
		t.Fatalf("expected no observers without a recipient")
	}
	observers, notifier = BuildBookingObservers(&appconfig.Config{NotifyToEmail: "desk@clinic.test"}, sender, "Clinic", logger)
	if len(observers) != 1 || notifier == nil {
		t.Fatalf("expected one observer, got %d", len(observers))
	}
}

func TestBuildQueueMemory(t *testing.T) {
	queue, mq, err := BuildQueue(&appconfig.Config{UseMemoryQueue: true}, nil, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queue == nil || mq == nil {
		t.Fatalf("expected memory queue")
	}
	mq.Close()

	if _, _, err := BuildQueue(&appconfig.Config{SQSQueueURL: "https://sqs.local/q"}, nil, logging.New("error")); err == nil {
		t.Fatalf("expected error for sqs without aws config")
	}
}
