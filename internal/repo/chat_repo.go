// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for Chat channels
// and their free-form ChatMessage rows.
//
// Chats store their user pair in canonical order (lexicographically smaller
// id first); CanonicalPair is the single place that ordering is decided.
// A unique index on the canonical pair is the storage-level backstop against
// duplicate channels created by concurrent callers.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alevras/go-match-backend/internal/domain"
)

// CanonicalPair returns the two user ids in canonical (sorted) order.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// FindChatByPair fetches the chat for an unordered user pair, or ErrNotFound.
func FindChatByPair(ctx context.Context, db *gorm.DB, a, b string) (*domain.Chat, error) {
	u1, u2 := CanonicalPair(a, b)
	var c domain.Chat
	err := db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", u1, u2).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateChat inserts the chat for an unordered user pair, stored canonically.
// A duplicate-create race surfaces as the unique-index violation from the
// driver; callers resolve it by re-reading (see services.ChatService.Ensure).
func CreateChat(ctx context.Context, db *gorm.DB, a, b string) (*domain.Chat, error) {
	u1, u2 := CanonicalPair(a, b)
	c := &domain.Chat{
		ID:        uuid.NewString(),
		User1ID:   u1,
		User2ID:   u2,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetChat fetches a chat by id, or ErrNotFound.
func GetChat(ctx context.Context, db *gorm.DB, id string) (*domain.Chat, error) {
	var c domain.Chat
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateChatMessage inserts a free-form chat message.
func CreateChatMessage(ctx context.Context, db *gorm.DB, chatID, senderID, content string) (*domain.ChatMessage, error) {
	m := &domain.ChatMessage{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// LatestChatMessage returns the newest message in a chat, or ErrNotFound
// when the chat has no messages yet.
func LatestChatMessage(ctx context.Context, db *gorm.DB, chatID string) (*domain.ChatMessage, error) {
	var m domain.ChatMessage
	err := db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at DESC, id DESC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CountChatMessages returns the total number of messages in a chat.
func CountChatMessages(ctx context.Context, db *gorm.DB, chatID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.ChatMessage{}).
		Where("chat_id = ?", chatID).
		Count(&total).Error
	return total, err
}

// ListChatMessagesPage returns a page of chat messages ordered newest-first
// (CreatedAt DESC, ID DESC for a deterministic tiebreak).
func ListChatMessagesPage(ctx context.Context, db *gorm.DB, chatID string, offset, limit int) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	err := db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
