// Worker drains the telemetry topic into Loki.
// Set KAFKA_BROKERS, TELEMETRY_KAFKA_TOPIC, KAFKA_GROUP_ID, and LOKI_URL.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"roster-portal/internal/config"
	"roster-portal/internal/telemetry/loki"
)

const pushTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	brokers := cfg.TelemetryKafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}
	if cfg.LokiURL == "" {
		log.Fatal("worker: LOKI_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, brokers); err != nil && ctx.Err() == nil {
		log.Fatalf("worker: %v", err)
	}
	log.Println("worker: stopped")
}

func run(ctx context.Context, cfg *config.Config, brokers []string) error {
	topic := cfg.TelemetryKafkaTopic
	if topic == "" {
		topic = "roster-telemetry"
	}
	groupID := cfg.KafkaGroupID
	if groupID == "" {
		groupID = "roster-telemetry-worker"
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
		MaxWait:  time.Second,
	})
	defer reader.Close()

	client := loki.NewClient(cfg.LokiURL)
	log.Printf("worker: consuming %s (group %s) into %s", topic, groupID, cfg.LokiURL)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("worker: fetch: %v", err)
			continue
		}

		// Commit only after the push lands, so events a restart interrupts
		// are re-delivered rather than lost.
		pushCtx, cancel := context.WithTimeout(ctx, pushTimeout)
		err = client.PushEventJSON(pushCtx, msg.Value)
		cancel()
		if err != nil {
			log.Printf("worker: loki push: %v", err)
			continue
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("worker: commit: %v", err)
		}
	}
}
