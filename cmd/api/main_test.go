package main

import (
	"context"
	"testing"
	"time"

	appconfig "github.com/wolfman30/clinic-assistant/internal/config"
	"github.com/wolfman30/clinic-assistant/internal/inbound"
	"github.com/wolfman30/clinic-assistant/internal/messaging"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

func TestLoadAWSWithStaticCredentials(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	cfg := &appconfig.Config{
		AWSRegion:           "eu-central-1",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "test",
		AWSEndpointOverride: "http://localhost:4566",
	}

	awsCfg := loadAWS(context.Background(), cfg, logging.New("error"))
	if awsCfg == nil {
		t.Fatalf("expected aws config")
	}
	if awsCfg.Region != "eu-central-1" {
		t.Fatalf("expected region eu-central-1, got %q", awsCfg.Region)
	}
	if awsCfg.EndpointResolverWithOptions == nil {
		t.Fatalf("expected endpoint override resolver")
	}
}

type noopProcessor struct{}

func (noopProcessor) Process(context.Context, messaging.Inbound) error { return nil }

func TestWaitForWorkerReturnsWhenQueueCloses(t *testing.T) {
	queue := inbound.NewMemoryQueue(1)
	worker := inbound.NewWorker(noopProcessor{}, queue, logging.New("error"), inbound.WithWorkerCount(1))
	worker.Start(context.Background())
	queue.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	waitForWorker(ctx, worker, logging.New("error"))
	if ctx.Err() != nil {
		t.Fatalf("worker did not stop after queue close")
	}
}
