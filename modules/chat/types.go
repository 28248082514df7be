package chat

import (
	domain "github.com/example/hunt-chat/domain/chat"
)

// HistoryRequest is the request for the history service, used by the
// level-page renderer to embed bootstrap history at render time.
type HistoryRequest struct {
	Level int `json:"level"`
	Limit int `json:"limit,omitempty"`
}

// HistoryResponse is the response containing recent messages in wire
// shape, oldest first.
type HistoryResponse struct {
	Level    int            `json:"level"`
	Messages []domain.Frame `json:"messages"`
	Total    int            `json:"total"`
}
