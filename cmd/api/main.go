package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/clinic-assistant/cmd/mainconfig"
	"github.com/wolfman30/clinic-assistant/internal/api/router"
	"github.com/wolfman30/clinic-assistant/internal/app/bootstrap"
	"github.com/wolfman30/clinic-assistant/internal/bookings"
	appconfig "github.com/wolfman30/clinic-assistant/internal/config"
	"github.com/wolfman30/clinic-assistant/internal/inbound"
	"github.com/wolfman30/clinic-assistant/internal/observability/metrics"
	"github.com/wolfman30/clinic-assistant/internal/whatsapp"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"inline_worker", cfg.InlineWorker(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	awsCfg := loadAWS(ctx, cfg, logger)
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	pipeline, err := bootstrap.BuildPipeline(ctx, cfg, bootstrap.Options{
		AWS:         awsCfg,
		PathStyleS3: mainconfig.UsesEndpointOverride(cfg),
		Registerer:  registry,
	}, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	defer pipeline.Close()
	pipeline.Start(ctx)

	queue, memoryQueue, err := bootstrap.BuildQueue(cfg, awsCfg, logger)
	if err != nil {
		logger.Error("failed to build inbound queue", "error", err)
		os.Exit(1)
	}
	publisher := inbound.NewPublisher(queue, logger)

	var worker *inbound.Worker
	if cfg.InlineWorker() {
		worker = inbound.NewWorker(pipeline.Processor, queue, logger,
			inbound.WithWorkerCount(cfg.WorkerCount),
		)
		worker.Start(ctx)
	}

	r := router.New(&router.Config{
		Logger:          logger,
		Webhook:         whatsapp.NewWebhookHandler(cfg.WhatsAppVerifyToken, cfg.WhatsAppAppSecret, publisher, logger),
		Bookings:        bookings.NewHandler(pipeline.Bookings, logger),
		Stats:           metrics.NewStatsHandler(registry, logger),
		MetricsHandler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminAuthSecret: cfg.AdminJWTSecret,
		AdminOrigins:    cfg.AdminAllowOrigins,
		HealthChecks:    pipeline.HealthChecks(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// Stop taking new messages, let the inline worker drain, then stop the loops.
	if memoryQueue != nil {
		memoryQueue.Close()
	}
	if worker != nil {
		waitForWorker(shutdownCtx, worker, logger)
	}
	cancel()

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// loadAWS returns nil when the SDK cannot be configured; AWS-backed features
// are then disabled by the pipeline builder.
func loadAWS(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *aws.Config {
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Warn("AWS config unavailable; AWS-backed features disabled", "error", err)
		return nil
	}
	return &awsCfg
}

func waitForWorker(ctx context.Context, worker *inbound.Worker, logger *logging.Logger) {
	done := make(chan struct{})
	go func() {
		worker.Wait()
		close(done)
	}()
	select {
	case <-done:
		logger.Info("inline worker stopped")
	case <-ctx.Done():
		logger.Error("inline worker shutdown timed out", "error", ctx.Err())
	}
}
