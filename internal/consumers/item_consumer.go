package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"items/pkg/events"

	"go.uber.org/zap"
)

// Mirror is the object store item snapshots are written to.
type Mirror interface {
	Upload(key string, data []byte) error
	Delete(key string) error
}

type ItemEventHandler struct {
	mirror Mirror
}

func NewItemEventHandler(mirror Mirror) *ItemEventHandler {
	return &ItemEventHandler{
		mirror: mirror,
	}
}

func MirrorKey(id int64) string {
	return fmt.Sprintf("items/%d.json", id)
}

func (h *ItemEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	zap.L().Info("Item event received",
		zap.String("event", event.Event),
		zap.String("version", event.Version),
		zap.String("traceId", event.TraceID),
	)

	switch event.Event {
	case events.ItemCreatedEvent, events.ItemUpdatedEvent:
		return h.handleItemChanged(event)
	case events.ItemDeletedEvent:
		return h.handleItemDeleted(event)
	default:
		zap.L().Warn("Unknown item event type", zap.String("event", event.Event))
		return nil
	}
}

func (h *ItemEventHandler) handleItemChanged(event *events.Event) error {
	var payload events.ItemPayload
	if err := event.DecodePayload(&payload); err != nil {
		return err
	}
	if payload.ID == 0 {
		return fmt.Errorf("malformed payload - id missing")
	}

	data, err := json.Marshal(payload.Item())
	if err != nil {
		return fmt.Errorf("failed to encode item: %w", err)
	}

	if err := h.mirror.Upload(MirrorKey(payload.ID), data); err != nil {
		return fmt.Errorf("failed to mirror item %d: %w", payload.ID, err)
	}

	zap.L().Info("Item mirrored",
		zap.Int64("itemId", payload.ID),
		zap.String("event", event.Event),
		zap.String("traceId", event.TraceID),
	)

	return nil
}

func (h *ItemEventHandler) handleItemDeleted(event *events.Event) error {
	var payload events.ItemDeletedPayload
	if err := event.DecodePayload(&payload); err != nil {
		return err
	}
	if payload.ID == 0 {
		return fmt.Errorf("malformed payload - id missing")
	}

	if err := h.mirror.Delete(MirrorKey(payload.ID)); err != nil {
		return fmt.Errorf("failed to remove mirrored item %d: %w", payload.ID, err)
	}

	zap.L().Info("Mirrored item removed",
		zap.Int64("itemId", payload.ID),
		zap.String("traceId", event.TraceID),
	)

	return nil
}
