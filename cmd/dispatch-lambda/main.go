package main

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/wolfman30/clinic-assistant/cmd/mainconfig"
	"github.com/wolfman30/clinic-assistant/internal/app/bootstrap"
	appconfig "github.com/wolfman30/clinic-assistant/internal/config"
	"github.com/wolfman30/clinic-assistant/internal/inbound"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// deadlineMargin is kept free at the end of an invocation so unprocessed
// records can still be reported back to SQS.
const deadlineMargin = 2 * time.Second

type handler struct {
	processor inbound.MessageProcessor
	logger    *logging.Logger
}

func (h *handler) handle(ctx context.Context, evt events.SQSEvent) (events.SQSEventResponse, error) {
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, deadline.Add(-deadlineMargin))
		defer cancel()
	}
	resp := inbound.HandleSQSEvent(ctx, h.processor, h.logger, evt)
	if n := len(resp.BatchItemFailures); n > 0 {
		h.logger.Warn("returning unprocessed records to the queue", "count", n, "batch_size", len(evt.Records))
	}
	return resp, nil
}

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	ctx := context.Background()

	awsConfig, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		panic(err)
	}

	pipeline, err := bootstrap.BuildPipeline(ctx, cfg, bootstrap.Options{
		AWS:         &awsConfig,
		PathStyleS3: mainconfig.UsesEndpointOverride(cfg),
	}, logger)
	if err != nil {
		panic(err)
	}
	pipeline.Start(ctx)

	h := &handler{processor: pipeline.Processor, logger: logger}
	lambda.Start(h.handle)
}
