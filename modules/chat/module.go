package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/example/hunt-chat/domain/chat"
	"github.com/example/hunt-chat/events"
	"github.com/example/hunt-chat/modules/storage"
)

// Module owns the room registry and connects it to the message store
// and the event bus. The gateway drives it; the telemetry module
// consumes the events it emits.
type Module struct {
	registry *Registry
	storage  *storage.StorageModule
	eventBus mono.EventBus
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
	_ FailureReporter            = (*Module)(nil)
)

// NewModule creates a new chat module.
func NewModule() *Module {
	return &Module{}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "chat"
}

// SetStorage injects the storage module (called from main.go).
func (m *Module) SetStorage(s *storage.StorageModule) {
	m.storage = s
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.StoreFailureV1.ToBase(),
	}
}

// RegisterServices registers the history request-reply service. The
// level-page renderer calls services.chat.history to embed bootstrap
// history without opening a WebSocket.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "history", json.Unmarshal, json.Marshal, m.historyService,
	); err != nil {
		return fmt.Errorf("failed to register history service: %w", err)
	}

	log.Printf("[chat] Registered services: services.chat.history")
	return nil
}

// Start builds the registry on top of the storage module.
func (m *Module) Start(_ context.Context) error {
	if m.storage == nil {
		return fmt.Errorf("storage module dependency not set")
	}

	m.registry = NewRegistry(m.storage.Messages(), m)

	log.Println("[chat] Module started")
	return nil
}

// Stop gracefully shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Printf("[chat] Module stopped - %d rooms were active", m.registry.RoomCount())
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.registry == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "registry not initialized",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"active_rooms":     m.registry.RoomCount(),
			"live_connections": m.registry.ConnCount(),
		},
	}
}

// Registry returns the room registry. Valid after Start.
func (m *Module) Registry() *Registry {
	return m.registry
}

// History reads recent messages for a level straight from the store,
// bypassing any room. Limit is capped at HistoryLimit.
func (m *Module) History(ctx context.Context, level, limit int) ([]domain.Message, error) {
	if limit <= 0 || limit > HistoryLimit {
		limit = HistoryLimit
	}
	return m.storage.Messages().Recent(ctx, level, limit)
}

// ReportStoreFailure publishes a StoreFailure event for the
// observability sink. Rooms call this whenever an append or a history
// read fails.
func (m *Module) ReportStoreFailure(level int, op, author string, err error) {
	if m.eventBus == nil {
		return
	}

	event := events.StoreFailureEvent{
		Level:     level,
		Op:        op,
		Author:    author,
		Reason:    err.Error(),
		Timestamp: time.Now().UTC(),
	}
	if err := events.StoreFailureV1.Publish(m.eventBus, event, nil); err != nil {
		slog.Warn("Failed to publish StoreFailure event", "error", err)
	}
}

// historyService handles the chat.history service request.
func (m *Module) historyService(ctx context.Context, req HistoryRequest, _ *mono.Msg) (HistoryResponse, error) {
	if req.Level <= 0 {
		return HistoryResponse{}, fmt.Errorf("level must be positive")
	}

	msgs, err := m.History(ctx, req.Level, req.Limit)
	if err != nil {
		return HistoryResponse{}, fmt.Errorf("failed to load history: %w", err)
	}

	return HistoryResponse{
		Level:    req.Level,
		Messages: domain.Frames(msgs),
		Total:    len(msgs),
	}, nil
}
