package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/clinic-assistant/cmd/mainconfig"
	"github.com/wolfman30/clinic-assistant/internal/app/bootstrap"
	appconfig "github.com/wolfman30/clinic-assistant/internal/config"
	"github.com/wolfman30/clinic-assistant/internal/inbound"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if cfg.SQSQueueURL == "" {
		logger.Error("SQS_QUEUE_URL is required for the dispatch worker")
		os.Exit(1)
	}
	// The standalone worker always consumes SQS.
	cfg.UseMemoryQueue = false

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	awsConfig, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	pipeline, err := bootstrap.BuildPipeline(ctx, cfg, bootstrap.Options{
		AWS:         &awsConfig,
		PathStyleS3: mainconfig.UsesEndpointOverride(cfg),
	}, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	defer pipeline.Close()
	pipeline.Start(ctx)

	queue, _, err := bootstrap.BuildQueue(cfg, &awsConfig, logger)
	if err != nil {
		logger.Error("failed to build inbound queue", "error", err)
		os.Exit(1)
	}

	worker := inbound.NewWorker(
		pipeline.Processor,
		queue,
		logger,
		inbound.WithWorkerCount(cfg.WorkerCount),
	)
	worker.Start(ctx)
	logger.Info("dispatch worker started", "workers", cfg.WorkerCount, "queue_url", cfg.SQSQueueURL)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down dispatch worker...")
	cancel()

	doneCtx, doneCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer doneCancel()

	waitCh := make(chan struct{})
	go func() {
		worker.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		logger.Info("dispatch worker stopped")
	case <-doneCtx.Done():
		logger.Error("dispatch worker shutdown timed out", "error", doneCtx.Err())
	}
}
