// Package telemetry is the observability sink for the chat core: it
// consumes store-failure and disconnect events and keeps counters a
// health probe can read.
package telemetry

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"sync/atomic"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/hunt-chat/events"
)

// TelemetryModule counts chat failure events.
type TelemetryModule struct {
	storeFailures     atomic.Uint64
	disconnects       atomic.Uint64
	abruptDisconnects atomic.Uint64
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*TelemetryModule)(nil)
	_ mono.EventConsumerModule   = (*TelemetryModule)(nil)
	_ mono.HealthCheckableModule = (*TelemetryModule)(nil)
)

// NewModule creates a new TelemetryModule.
func NewModule() *TelemetryModule {
	return &TelemetryModule{}
}

// Name returns the module name.
func (m *TelemetryModule) Name() string {
	return "telemetry"
}

// RegisterEventConsumers registers event handlers.
func (m *TelemetryModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.StoreFailureV1, m.handleStoreFailure, m,
	); err != nil {
		return fmt.Errorf("failed to register StoreFailure consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.ClientDisconnectedV1, m.handleClientDisconnected, m,
	); err != nil {
		return fmt.Errorf("failed to register ClientDisconnected consumer: %w", err)
	}

	log.Println("[telemetry] Registered event consumers: StoreFailure, ClientDisconnected")
	return nil
}

// Start initializes the module.
func (m *TelemetryModule) Start(_ context.Context) error {
	log.Println("[telemetry] Module started")
	return nil
}

// Stop shuts down the module.
func (m *TelemetryModule) Stop(_ context.Context) error {
	log.Printf("[telemetry] Module stopped - store_failures=%d disconnects=%d abrupt=%d",
		m.storeFailures.Load(), m.disconnects.Load(), m.abruptDisconnects.Load())
	return nil
}

// Health returns the health status with the accumulated counters.
func (m *TelemetryModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"store_failures":     m.storeFailures.Load(),
			"disconnects":        m.disconnects.Load(),
			"abrupt_disconnects": m.abruptDisconnects.Load(),
		},
	}
}

// StoreFailures returns the number of store failures observed.
func (m *TelemetryModule) StoreFailures() uint64 {
	return m.storeFailures.Load()
}

// Disconnects returns total and abrupt disconnect counts.
func (m *TelemetryModule) Disconnects() (total, abrupt uint64) {
	return m.disconnects.Load(), m.abruptDisconnects.Load()
}

func (m *TelemetryModule) handleStoreFailure(_ context.Context, event events.StoreFailureEvent, _ *mono.Msg) error {
	m.storeFailures.Add(1)
	slog.Warn("message store failure",
		"level", event.Level,
		"op", event.Op,
		"reason", event.Reason)
	return nil
}

func (m *TelemetryModule) handleClientDisconnected(_ context.Context, event events.ClientDisconnectedEvent, _ *mono.Msg) error {
	m.disconnects.Add(1)
	if event.Abrupt {
		m.abruptDisconnects.Add(1)
		slog.Info("abrupt disconnect", "level", event.Level)
	}
	return nil
}
