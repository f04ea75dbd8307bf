package item

import (
	"context"
	"items/pkg/events"
	"items/pkg/requestid"
	"strconv"

	"go.uber.org/zap"
)

// publishEvent is best effort: a broker failure is logged and the request still succeeds.
func publishEvent(ctx context.Context, publisher events.Publisher, name string, itemID int64, payload any) {
	if publisher == nil {
		return
	}

	correlationID := requestid.FromContext(ctx)
	if correlationID == "" {
		correlationID = events.GenerateCorrelationID()
	}

	headers := events.Headers{
		TraceID:       events.GenerateTraceID(),
		CorrelationID: correlationID,
		PartitionKey:  strconv.FormatInt(itemID, 10),
	}

	event := events.NewEvent(name, events.EventVersionV1, payload, headers)

	if err := publisher.Publish(ctx, events.ItemExchange, event, headers); err != nil {
		zap.L().Error("Failed to publish item event",
			zap.String("event", name),
			zap.Int64("itemId", itemID),
			zap.Error(err),
		)
	}
}
