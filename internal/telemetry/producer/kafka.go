package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"roster-portal/internal/telemetry/domain"
)

// kafkaWriteTimeout bounds a single write so a stalled broker cannot hold an
// emit goroutine past the server's shutdown drain.
const kafkaWriteTimeout = 5 * time.Second

// Kafka publishes telemetry events to a Kafka topic as JSON.
type Kafka struct {
	writer *kafka.Writer
}

// NewKafka returns a producer writing to topic on the given brokers. The
// caller is responsible for checking that brokers and topic are configured;
// Close flushes and releases the writer.
func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// Emit writes the event to the topic. The event's session ID is used as the
// message key so one session's events land on one partition, in order.
func (k *Kafka) Emit(ctx context.Context, event *domain.Event) error {
	if event == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode telemetry event: %w", err)
	}
	var key []byte
	if event.SessionID != "" {
		key = []byte(event.SessionID)
	}
	ctx, cancel := context.WithTimeout(ctx, kafkaWriteTimeout)
	defer cancel()
	return k.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: payload})
}

// Close flushes buffered messages and closes the writer.
func (k *Kafka) Close() error {
	if k == nil || k.writer == nil {
		return nil
	}
	return k.writer.Close()
}
