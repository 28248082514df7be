package storage

import (
	"time"

	domain "github.com/example/hunt-chat/domain/chat"
)

// ChatMessage is the persisted form of a chat message. Seq is the
// append order within the table; history replay sorts on it so the
// order every client sees equals persistence order.
type ChatMessage struct {
	Seq       uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	ID        string    `gorm:"size:36;uniqueIndex;not null" json:"id"`
	Level     int       `gorm:"index;not null" json:"level"`
	Author    string    `gorm:"size:32;not null" json:"author"`
	Content   string    `gorm:"not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for ChatMessage model.
func (ChatMessage) TableName() string {
	return "chat_messages"
}

func (m ChatMessage) toDomain() domain.Message {
	return domain.Message{
		ID:        m.ID,
		Level:     m.Level,
		Author:    m.Author,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

// Level is one hunt level. The chat core only needs Number to decide
// whether a room may be opened; the remaining columns mirror the level
// data the rest of the game maintains.
type Level struct {
	Number    int     `gorm:"primaryKey" json:"number"`
	Name      string  `gorm:"size:100;not null" json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Tolerance int     `json:"tolerance"`
}

// TableName returns the table name for Level model.
func (Level) TableName() string {
	return "levels"
}
