// Package chat holds the chat domain values shared by the storage,
// room and gateway modules.
package chat

import (
	"errors"
	"time"
	"unicode/utf8"
)

// Validation constants
const (
	MinAuthorLength = 1
	MaxAuthorLength = 32
)

// Validation errors
var (
	ErrAuthorEmpty    = errors.New("author cannot be empty")
	ErrAuthorTooLong  = errors.New("author exceeds maximum length")
	ErrAuthorInvalid  = errors.New("author is not valid UTF-8")
	ErrContentEmpty   = errors.New("message content cannot be empty")
	ErrContentInvalid = errors.New("message content is not valid UTF-8")
)

// Message is one accepted chat message. Messages are immutable once
// created: the storage layer assigns ID and CreatedAt, and CreatedAt
// order is the broadcast order every viewer of the level observes.
type Message struct {
	ID        string    `json:"id"`
	Level     int       `json:"level"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidateAuthor checks a client-supplied display name. Names are
// client-trusted (no identity model); only length and encoding are
// enforced, matching the 32-character column the messages land in.
func ValidateAuthor(author string) error {
	if author == "" {
		return ErrAuthorEmpty
	}
	if !utf8.ValidString(author) {
		return ErrAuthorInvalid
	}
	if utf8.RuneCountInString(author) > MaxAuthorLength {
		return ErrAuthorTooLong
	}
	return nil
}

// ValidateContent checks message content. Size is bounded by the
// transport frame limit, so only emptiness and encoding are checked.
func ValidateContent(content string) error {
	if content == "" {
		return ErrContentEmpty
	}
	if !utf8.ValidString(content) {
		return ErrContentInvalid
	}
	return nil
}
