package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/example/hunt-chat/modules/chat"
	"github.com/example/hunt-chat/modules/storage"
)

type noopReporter struct{}

func (noopReporter) reportDisconnect(int, bool) {}

// setupTestApp wires the handlers into a Fiber app backed by an
// in-memory database, without starting a listener.
func setupTestApp(t *testing.T) (*fiber.App, *storage.StorageModule) {
	t.Helper()

	t.Setenv("DB_PATH", ":memory:")
	store := storage.NewModule()
	if err := store.Start(context.Background()); err != nil {
		t.Fatalf("storage Start() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Stop(context.Background()) })

	chatModule := chat.NewModule()
	chatModule.SetStorage(store)
	if err := chatModule.Start(context.Background()); err != nil {
		t.Fatalf("chat Start() error = %v", err)
	}

	h := NewHandlers(chatModule, store.Levels(), noopReporter{})

	app := fiber.New()
	app.Get("/health", h.HealthCheck)
	app.Get("/level/:number/", h.RequireLevel, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/api/v1/levels/:number/messages", h.GetLevelMessages)

	return app, store
}

func TestRequireLevel_RejectsPlainHTTP(t *testing.T) {
	app, store := setupTestApp(t)

	if err := store.Levels().Create(context.Background(), &storage.Level{Number: 1, Name: "Start"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Without upgrade headers the socket route must refuse before any
	// level lookup happens.
	resp, err := app.Test(httptest.NewRequest("GET", "/level/1/", nil))
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusUpgradeRequired)
	}
}

func TestGetLevelMessages(t *testing.T) {
	app, store := setupTestApp(t)
	ctx := context.Background()

	if err := store.Levels().Create(ctx, &storage.Level{Number: 2, Name: "Harbor"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := store.Messages().Append(ctx, 2, "Alice", fmt.Sprintf("msg-%d", i)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"existing level", "/api/v1/levels/2/messages", fiber.StatusOK},
		{"unknown level", "/api/v1/levels/9/messages", fiber.StatusNotFound},
		{"zero level", "/api/v1/levels/0/messages", fiber.StatusBadRequest},
		{"non-numeric level", "/api/v1/levels/abc/messages", fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			if err != nil {
				t.Fatalf("Test() error = %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/levels/2/messages?limit=2", nil))
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Level    int `json:"level"`
		Messages []struct {
			Username string `json:"username"`
			Message  string `json:"message"`
		} `json:"messages"`
		Total int `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if body.Level != 2 || body.Total != 2 {
		t.Errorf("body = %+v, want level 2 with 2 messages", body)
	}
	// Newest two in append order.
	if body.Messages[0].Message != "msg-1" || body.Messages[1].Message != "msg-2" {
		t.Errorf("messages = %+v, want msg-1 then msg-2", body.Messages)
	}
	if body.Messages[0].Username != "Alice" {
		t.Errorf("username = %q, want Alice", body.Messages[0].Username)
	}
}

func TestHealthCheck(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
