package chat

import (
	"context"

	domain "github.com/example/hunt-chat/domain/chat"
)

// Conn is what a Room needs from a client connection. The gateway's
// WebSocket adapter implements it; tests use in-memory fakes.
//
// WriteMessage must be safe to call until the connection reports its
// own closure, after which it must fail instead of touching the
// transport.
type Conn interface {
	WriteMessage(msg domain.Message) error
}

// MessageStore is the durable append-only log behind every room.
// Implementations must be safe for concurrent use across rooms; a
// single room's calls are already serialized by the room itself.
type MessageStore interface {
	Append(ctx context.Context, level int, author, content string) (domain.Message, error)
	Recent(ctx context.Context, level, limit int) ([]domain.Message, error)
}

// FailureReporter receives store failures so an observability sink can
// record them. Reporting must not block room operations for long.
type FailureReporter interface {
	ReportStoreFailure(level int, op, author string, err error)
}
