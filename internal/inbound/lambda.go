package inbound

import (
	"context"
	"errors"

	"github.com/aws/aws-lambda-go/events"

	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// HandleSQSEvent processes an SQS batch delivered to Lambda. Only messages
// left unprocessed because the invocation was cancelled are reported as
// batch item failures; everything else has been answered and must not be
// redelivered.
func HandleSQSEvent(ctx context.Context, processor MessageProcessor, logger *logging.Logger, evt events.SQSEvent) events.SQSEventResponse {
	if logger == nil {
		logger = logging.Default()
	}
	var resp events.SQSEventResponse
	for _, record := range evt.Records {
		if ctx.Err() != nil {
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
			continue
		}
		msg, err := decodeMessage(record.Body)
		if err != nil {
			logger.Error("failed to decode inbound message", "error", err, "queue_message_id", record.MessageId)
			continue
		}
		err = processor.Process(ctx, msg)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled):
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		default:
			logger.Error("inbound message failed", "error", err, "message_id", msg.MessageID)
		}
	}
	return resp
}
