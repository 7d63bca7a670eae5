// Package domain defines the telemetry event shape shared by the server
// (Kafka producer, OTel emitter) and the worker (Kafka consumer, Loki pusher).
package domain

import (
	"encoding/json"
	"time"
)

// Event is a single telemetry event. It is serialized as JSON on the Kafka
// topic; field tags are part of the wire format the worker and Loki labels
// depend on.
type Event struct {
	UserID    string          `json:"userId,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	EventType string          `json:"eventType"`
	Source    string          `json:"source"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewEvent returns an event stamped with the current time.
func NewEvent(eventType, source string) *Event {
	return &Event{
		EventType: eventType,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
}
