package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	Event         string      `json:"event"`         // e.g., "item.created"
	Version       string      `json:"version"`       // e.g., "v1"
	Timestamp     time.Time   `json:"timestamp"`     // Event occurrence time
	Payload       interface{} `json:"payload"`       // The actual event data
	TraceID       string      `json:"traceId"`       // For distributed tracing
	CorrelationID string      `json:"correlationId"` // For request correlation
}

type Headers struct {
	TraceID       string
	CorrelationID string
	// PartitionKey groups events that must be consumed in publish order, e.g. one item's events.
	PartitionKey string
}

func NewEvent(eventName, version string, payload interface{}, headers Headers) *Event {
	return &Event{
		Event:         eventName,
		Version:       version,
		Timestamp:     time.Now().UTC(),
		Payload:       payload,
		TraceID:       headers.TraceID,
		CorrelationID: headers.CorrelationID,
	}
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func (e *Event) GetRoutingKey() string {
	return e.Event + "." + e.Version
}

// DecodePayload converts the generic payload of a consumed event into a typed struct.
func (e *Event) DecodePayload(out any) error {
	raw, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("malformed payload - marshal failed: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("malformed payload - unmarshal failed: %w", err)
	}

	return nil
}

func GenerateTraceID() string {
	return uuid.New().String()
}

func GenerateCorrelationID() string {
	return uuid.New().String()
}
