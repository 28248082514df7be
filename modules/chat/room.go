package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	domain "github.com/example/hunt-chat/domain/chat"
)

// HistoryLimit bounds the history replayed to a joining client. The
// full log stays in storage; the cap only bounds join-time payload.
const HistoryLimit = 50

// ErrRoomRetired is returned by Join when the room lost the race with
// retirement. The caller must re-resolve the room via the registry.
var ErrRoomRetired = errors.New("room retired")

// Room owns the live connection set for one level. A single mutex
// serializes Join, Leave and Receive, so everything one level's
// viewers observe happens in one total order; rooms for different
// levels proceed fully in parallel.
type Room struct {
	level    int
	store    MessageStore
	reporter FailureReporter

	mu      sync.Mutex
	conns   []Conn
	retired bool
}

func newRoom(level int, store MessageStore, reporter FailureReporter) *Room {
	return &Room{
		level:    level,
		store:    store,
		reporter: reporter,
	}
}

// Level returns the level number this room serves.
func (r *Room) Level() int {
	return r.level
}

// Join replays recent history to conn and adds it to the live set.
// Replay happens inside the critical section, so a concurrent
// broadcast is either already persisted (and part of the replay) or
// delivered live after the join - never both, never neither. A store
// failure degrades the join to an empty history instead of failing
// the connection.
func (r *Room) Join(ctx context.Context, conn Conn) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.retired {
		return nil, ErrRoomRetired
	}

	history, err := r.store.Recent(ctx, r.level, HistoryLimit)
	if err != nil {
		r.reporter.ReportStoreFailure(r.level, "recent", "", err)
		history = nil
	}

	for _, msg := range history {
		if err := conn.WriteMessage(msg); err != nil {
			return nil, fmt.Errorf("failed to replay history: %w", err)
		}
	}

	r.conns = append(r.conns, conn)
	return history, nil
}

// Leave removes conn from the live set. Removing a connection that
// already left, or never joined, is a no-op.
func (r *Room) Leave(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, c := range r.conns {
		if c == conn {
			r.conns = append(r.conns[:i], r.conns[i+1:]...)
			return
		}
	}
}

// Receive accepts one inbound frame: validate, persist, then broadcast
// the stored message to every live connection including the sender.
// Validation failures and store failures both mean no broadcast; the
// caller drops the frame silently either way.
func (r *Room) Receive(ctx context.Context, author, content string) error {
	if err := domain.ValidateAuthor(author); err != nil {
		return err
	}
	if err := domain.ValidateContent(content); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	msg, err := r.store.Append(ctx, r.level, author, content)
	if err != nil {
		r.reporter.ReportStoreFailure(r.level, "append", author, err)
		return fmt.Errorf("message not accepted: %w", err)
	}

	for _, c := range r.conns {
		if err := c.WriteMessage(msg); err != nil {
			// The connection's own read loop notices the broken
			// transport and leaves; other viewers are unaffected.
			slog.Debug("broadcast write failed", "level", r.level, "error", err)
		}
	}
	return nil
}

// ConnCount returns the number of live connections.
func (r *Room) ConnCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// retireIfEmpty marks the room retired if no connection is live.
// Setting the flag under the room mutex is what closes the race with a
// concurrent Join.
func (r *Room) retireIfEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.conns) > 0 {
		return false
	}
	r.retired = true
	return true
}
