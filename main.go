package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/hunt-chat/modules/chat"
	"github.com/example/hunt-chat/modules/gateway"
	"github.com/example/hunt-chat/modules/storage"
	"github.com/example/hunt-chat/modules/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== hunt-chat - per-level chat for the treasure hunt ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Create modules
	storageModule := storage.NewModule()
	chatModule := chat.NewModule()
	telemetryModule := telemetry.NewModule()
	gatewayModule := gateway.NewModule()

	// Inject cross-module dependencies
	// (done manually because repositories and the registry are not
	// exposed via ServiceContainer)
	chatModule.SetStorage(storageModule)
	gatewayModule.SetChat(chatModule)
	gatewayModule.SetStorage(storageModule)

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - storage: SQLite message log + level data
	// - chat: room registry (depends on storage, emits StoreFailure)
	// - telemetry: observability sink (event consumer)
	// - gateway: Fiber HTTP/WebSocket boundary (depends on chat + storage)
	app.Register(storageModule)
	app.Register(chatModule)
	app.Register(telemetryModule)
	app.Register(gatewayModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("WebSocket endpoint (ws://localhost:%s):", port)
	log.Println("  GET /level/{n}/ - join the chat room for level n")
	log.Println("  Frames: {\"username\": \"...\", \"message\": \"...\"} both ways")
	log.Println("")
	log.Printf("REST endpoints (http://localhost:%s):", port)
	log.Println("  GET /health")
	log.Println("  GET /api/v1/levels/{n}/messages?limit=N - bootstrap history")
	log.Println("")
	log.Println("Services (via NATS request-reply):")
	log.Println("  chat.history - recent messages for the level-page renderer")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
