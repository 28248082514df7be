package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// StoreFailureEvent is emitted when the message store rejects an append
// or a history read. The message involved was not broadcast.
type StoreFailureEvent struct {
	Level     int       `json:"level"`
	Op        string    `json:"op"` // "append" or "recent"
	Author    string    `json:"author,omitempty"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientDisconnectedEvent is emitted when a connection leaves a level.
// Abrupt marks transport errors as opposed to clean closes.
type ClientDisconnectedEvent struct {
	Level     int       `json:"level"`
	Abrupt    bool      `json:"abrupt"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the chat domain.
var (
	StoreFailureV1 = helper.EventDefinition[StoreFailureEvent](
		"chat",
		"StoreFailure",
		"v1",
	)

	ClientDisconnectedV1 = helper.EventDefinition[ClientDisconnectedEvent](
		"chat",
		"ClientDisconnected",
		"v1",
	)
)
