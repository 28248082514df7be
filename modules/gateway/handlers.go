package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	domain "github.com/example/hunt-chat/domain/chat"
	"github.com/example/hunt-chat/modules/chat"
	"github.com/example/hunt-chat/modules/storage"
)

// disconnectReporter is implemented by the gateway module; the read
// loop reports every closed connection through it.
type disconnectReporter interface {
	reportDisconnect(level int, abrupt bool)
}

// Handlers contains the HTTP and WebSocket handlers.
type Handlers struct {
	chat     *chat.Module
	levels   *storage.LevelRepository
	reporter disconnectReporter
	logger   *slog.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(chatModule *chat.Module, levels *storage.LevelRepository, reporter disconnectReporter) *Handlers {
	return &Handlers{
		chat:     chatModule,
		levels:   levels,
		reporter: reporter,
		logger:   slog.Default(),
	}
}

// RequireLevel guards the WebSocket route: the request must be an
// upgrade, and the level number must be a positive integer naming an
// existing level. Everything else is rejected before any room state
// is touched.
func (h *Handlers) RequireLevel(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	level, err := strconv.Atoi(c.Params("number"))
	if err != nil || level <= 0 {
		return fiber.ErrNotFound
	}

	exists, err := h.levels.Exists(c.UserContext(), level)
	if err != nil {
		h.logger.Error("level lookup failed", "level", level, "error", err)
		return fiber.ErrInternalServerError
	}
	if !exists {
		return fiber.ErrNotFound
	}

	return c.Next()
}

// HandleLevelSocket runs one client's session: join the level's room
// (which replays history), then loop reading inbound frames until the
// transport closes.
func (h *Handlers) HandleLevelSocket(c *websocket.Conn) {
	defer c.Close()

	level, err := strconv.Atoi(c.Params("number"))
	if err != nil || level <= 0 {
		// RequireLevel already rejected these; nothing to clean up.
		return
	}

	ctx := context.Background()
	conn := newWSConn(c)

	room, history, err := h.chat.Registry().Join(ctx, level, conn)
	if err != nil {
		h.logger.Error("join failed", "level", level, "error", err)
		return
	}

	h.logger.Info("client joined", "level", level, "replayed", len(history))

	abrupt := false
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				abrupt = true
			}
			break
		}

		var frame domain.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			// Malformed frames are dropped; the connection stays open.
			h.logger.Debug("dropping malformed frame", "level", level, "error", err)
			continue
		}

		if err := room.Receive(ctx, frame.Username, frame.Message); err != nil {
			// Invalid or unpersisted frames are dropped silently;
			// store failures were already reported by the room.
			h.logger.Debug("frame not accepted", "level", level, "error", err)
		}
	}

	conn.markClosed()
	room.Leave(conn)
	h.chat.Registry().RetireIfEmpty(level)
	h.reporter.reportDisconnect(level, abrupt)

	h.logger.Info("client left", "level", level, "abrupt", abrupt)
}

// GetLevelMessages serves the bootstrap history the level page embeds
// for its initial paint (GET /api/v1/levels/:number/messages).
func (h *Handlers) GetLevelMessages(c *fiber.Ctx) error {
	level, err := strconv.Atoi(c.Params("number"))
	if err != nil || level <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "level must be a positive integer",
		})
	}

	exists, err := h.levels.Exists(c.UserContext(), level)
	if err != nil {
		return fiber.ErrInternalServerError
	}
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "level not found",
		})
	}

	limit := c.QueryInt("limit", chat.HistoryLimit)
	msgs, err := h.chat.History(c.UserContext(), level, limit)
	if err != nil {
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"level":    level,
		"messages": domain.Frames(msgs),
		"total":    len(msgs),
	})
}

// HealthCheck handles health check requests (GET /health).
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "hunt-chat",
	})
}
