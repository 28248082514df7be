package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/example/hunt-chat/domain/chat"
)

// MessageRepository provides append-only access to chat message storage.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository.
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Append persists one message for a level, assigning its ID and
// timestamp. The caller must not broadcast a message whose Append
// failed.
func (r *MessageRepository) Append(ctx context.Context, level int, author, content string) (domain.Message, error) {
	rec := ChatMessage{
		ID:        uuid.New().String(),
		Level:     level,
		Author:    author,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.Message{}, fmt.Errorf("failed to append message: %w", err)
	}
	return rec.toDomain(), nil
}

// Recent returns up to limit most recent messages for a level in
// append order, oldest first. A level with no messages yields an empty
// slice.
func (r *MessageRepository) Recent(ctx context.Context, level, limit int) ([]domain.Message, error) {
	var recs []ChatMessage
	err := r.db.WithContext(ctx).
		Where("level = ?", level).
		Order("seq DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent messages: %w", err)
	}

	// The query walks backwards from the tail; flip to ascending.
	out := make([]domain.Message, len(recs))
	for i, rec := range recs {
		out[len(recs)-1-i] = rec.toDomain()
	}
	return out, nil
}

// LevelRepository provides read access to level data. The chat gateway
// uses it to decide whether a requested room corresponds to a real
// level.
type LevelRepository struct {
	db *gorm.DB
}

// NewLevelRepository creates a new level repository.
func NewLevelRepository(db *gorm.DB) *LevelRepository {
	return &LevelRepository{db: db}
}

// Exists reports whether a level with the given number exists.
func (r *LevelRepository) Exists(ctx context.Context, number int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Level{}).
		Where("number = ?", number).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to look up level %d: %w", number, err)
	}
	return count > 0, nil
}

// Count returns the number of known levels.
func (r *LevelRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Level{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count levels: %w", err)
	}
	return count, nil
}

// Create inserts a level.
func (r *LevelRepository) Create(ctx context.Context, level *Level) error {
	if err := r.db.WithContext(ctx).Create(level).Error; err != nil {
		return fmt.Errorf("failed to create level: %w", err)
	}
	return nil
}
