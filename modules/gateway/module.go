package gateway

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/hunt-chat/events"
	"github.com/example/hunt-chat/modules/chat"
	"github.com/example/hunt-chat/modules/storage"
)

// GatewayModule runs the Fiber server: the per-level WebSocket
// endpoint plus the bootstrap-history REST route.
type GatewayModule struct {
	app      *fiber.App
	handlers *Handlers
	chat     *chat.Module
	storage  *storage.StorageModule
	eventBus mono.EventBus
	port     string
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*GatewayModule)(nil)
	_ mono.EventBusAwareModule   = (*GatewayModule)(nil)
	_ mono.EventEmitterModule    = (*GatewayModule)(nil)
	_ mono.HealthCheckableModule = (*GatewayModule)(nil)
	_ disconnectReporter         = (*GatewayModule)(nil)
)

// NewModule creates a new GatewayModule.
func NewModule() *GatewayModule {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	return &GatewayModule{
		port: port,
	}
}

// Name returns the module name.
func (m *GatewayModule) Name() string {
	return "gateway"
}

// SetChat injects the chat module (called from main.go).
func (m *GatewayModule) SetChat(c *chat.Module) {
	m.chat = c
}

// SetStorage injects the storage module (called from main.go).
func (m *GatewayModule) SetStorage(s *storage.StorageModule) {
	m.storage = s
}

// SetEventBus receives the EventBus from the framework.
func (m *GatewayModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *GatewayModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.ClientDisconnectedV1.ToBase(),
	}
}

// Start initializes and starts the HTTP server.
func (m *GatewayModule) Start(_ context.Context) error {
	if m.chat == nil {
		return fmt.Errorf("chat module dependency not set")
	}
	if m.storage == nil {
		return fmt.Errorf("storage module dependency not set")
	}

	m.app = fiber.New(fiber.Config{
		AppName:               "hunt-chat",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
		ReadTimeout:           30 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
	}))

	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:8000"
	}
	m.app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	m.handlers = NewHandlers(m.chat, m.storage.Levels(), m)
	m.registerRoutes()

	// Start server in goroutine with startup error detection.
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(":" + m.port); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("gateway failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	log.Printf("[gateway] HTTP server started on :%s", m.port)
	return nil
}

// Stop gracefully shuts down the HTTP server. Closing the server tears
// down live WebSocket transports; each read loop then unwinds through
// its normal leave path.
func (m *GatewayModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[gateway] Shutting down HTTP server...")
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Health returns the health status.
func (m *GatewayModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.port,
		},
	}
}

// registerRoutes sets up all HTTP and WebSocket routes.
func (m *GatewayModule) registerRoutes() {
	m.app.Get("/health", m.handlers.HealthCheck)

	// Per-level chat socket, same path shape the game client uses.
	m.app.Get("/level/:number/", m.handlers.RequireLevel, websocket.New(m.handlers.HandleLevelSocket))

	api := m.app.Group("/api/v1")
	api.Get("/levels/:number/messages", m.handlers.GetLevelMessages)
}

// reportDisconnect publishes a ClientDisconnected event for the
// observability sink.
func (m *GatewayModule) reportDisconnect(level int, abrupt bool) {
	if m.eventBus == nil {
		return
	}

	event := events.ClientDisconnectedEvent{
		Level:     level,
		Abrupt:    abrupt,
		Timestamp: time.Now().UTC(),
	}
	if err := events.ClientDisconnectedV1.Publish(m.eventBus, event, nil); err != nil {
		slog.Warn("Failed to publish ClientDisconnected event", "error", err)
	}
}

// errorHandler handles errors globally.
func (m *GatewayModule) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
