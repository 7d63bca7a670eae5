package telemetry

import (
	"context"
	"log"
	"time"

	"roster-portal/internal/telemetry/domain"
)

// asyncEmitTimeout bounds a single background emit.
const asyncEmitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long the server waits after it stops accepting
// requests before tearing down the OTel providers, so background emits started
// by the last requests can finish. Must be at least asyncEmitTimeout.
const ShutdownDrainDuration = asyncEmitTimeout

// EmitAsync hands the event to the emitter on a background goroutine so login
// and verification handlers never wait on the telemetry pipeline. The emit
// runs under its own deadline, detached from the request context; failures are
// logged and dropped.
func EmitAsync(emitter EventEmitter, event *domain.Event) {
	if emitter == nil || event == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncEmitTimeout)
		defer cancel()
		if err := emitter.Emit(ctx, event); err != nil {
			log.Printf("telemetry: async emit failed: %v", err)
		}
	}()
}
