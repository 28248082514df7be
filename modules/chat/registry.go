package chat

import (
	"context"
	"errors"
	"sync"

	domain "github.com/example/hunt-chat/domain/chat"
)

// Registry is the process-wide map from level number to live Room.
// Rooms are created lazily on first join and retired once their last
// connection leaves.
type Registry struct {
	store    MessageStore
	reporter FailureReporter

	mu    sync.Mutex
	rooms map[int]*Room
}

// NewRegistry creates an empty registry backed by the given store.
func NewRegistry(store MessageStore, reporter FailureReporter) *Registry {
	return &Registry{
		store:    store,
		reporter: reporter,
		rooms:    make(map[int]*Room),
	}
}

// GetOrCreate returns the room for a level, constructing it if absent.
// Concurrent callers for the same level get the same instance.
func (g *Registry) GetOrCreate(level int) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[level]
	if !ok {
		room = newRoom(level, g.store, g.reporter)
		g.rooms[level] = room
	}
	return room
}

// Join resolves the room for a level and joins conn to it, retrying
// when the resolved room was retired between lookup and join.
func (g *Registry) Join(ctx context.Context, level int, conn Conn) (*Room, []domain.Message, error) {
	for {
		room := g.GetOrCreate(level)
		history, err := room.Join(ctx, conn)
		if errors.Is(err, ErrRoomRetired) {
			continue
		}
		if err != nil {
			// A failed join may have been this room's only prospective
			// occupant; retire it so the registry never carries a room
			// with zero live connections.
			g.RetireIfEmpty(level)
			return nil, nil, err
		}
		return room, history, nil
	}
}

// RetireIfEmpty removes the level's room from the registry if its live
// set is still empty at the moment of removal. A join racing the
// retirement either lands before the emptiness check (room stays) or
// observes the retired flag and re-resolves.
func (g *Registry) RetireIfEmpty(level int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[level]
	if !ok {
		return
	}
	if room.retireIfEmpty() {
		delete(g.rooms, level)
	}
}

// RoomCount returns the number of active rooms.
func (g *Registry) RoomCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}

// ConnCount returns the number of live connections across all rooms.
func (g *Registry) ConnCount() int {
	g.mu.Lock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		rooms = append(rooms, room)
	}
	g.mu.Unlock()

	total := 0
	for _, room := range rooms {
		total += room.ConnCount()
	}
	return total
}
