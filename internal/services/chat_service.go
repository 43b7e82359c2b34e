// Package services – ChatService.
//
// This file implements chat materialization and chat messaging. Ensure is
// idempotent for a pair of users in either argument order: the unique index
// on the canonical pair is the storage-level backstop, and a lost
// duplicate-create race is resolved by re-reading the winner instead of
// erroring.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/alevras/go-match-backend/internal/domain"
	"github.com/alevras/go-match-backend/internal/realtime"
	"github.com/alevras/go-match-backend/internal/repo"
)

// ChatService manages pair chat channels and their messages.
type ChatService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Emitter broadcasts newMessage events to the chat room.
	Emitter realtime.Emitter
}

// NewChatService wires the chat layer.
func NewChatService(db *gorm.DB, em realtime.Emitter) *ChatService {
	return &ChatService{DB: db, Emitter: em}
}

// Ensure resolves or creates the one chat channel for an unordered pair of
// users and returns its id. Safe to call concurrently for the same pair.
func (s *ChatService) Ensure(ctx context.Context, a, b string) (string, error) {
	if a == "" || b == "" {
		return "", ErrUserRequired
	}

	c, err := repo.FindChatByPair(ctx, s.DB, a, b)
	if err == nil {
		return c.ID, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return "", err
	}

	created, createErr := repo.CreateChat(ctx, s.DB, a, b)
	if createErr == nil {
		return created.ID, nil
	}

	// A concurrent caller may have won the create; the unique pair index
	// rejected ours. Re-read and return the winner.
	if c, err := repo.FindChatByPair(ctx, s.DB, a, b); err == nil {
		return c.ID, nil
	}
	return "", createErr
}

// chatMessageEvent is the realtime payload of a newMessage event.
type chatMessageEvent struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	SenderID  string    `json:"senderId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostMessage appends a free-form message to a chat and broadcasts it to the
// chat room. The sender must be a participant.
func (s *ChatService) PostMessage(ctx context.Context, chatID, senderID, content string) (*domain.ChatMessage, error) {
	if content == "" {
		return nil, ErrEmptyMessage
	}

	c, err := repo.GetChat(ctx, s.DB, chatID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	if senderID != c.User1ID && senderID != c.User2ID {
		return nil, ErrChatForbidden
	}

	m, err := repo.CreateChatMessage(ctx, s.DB, chatID, senderID, content)
	if err != nil {
		return nil, err
	}

	s.Emitter.Emit(realtime.ChatRoom(chatID), realtime.EventNewMessage, chatMessageEvent{
		ID:        m.ID,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	})
	return m, nil
}

// ListMessages returns one page of chat history, newest first, for a
// participant of the chat.
func (s *ChatService) ListMessages(ctx context.Context, chatID, userID string, page, pageSize int) ([]domain.ChatMessage, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	c, err := repo.GetChat(ctx, s.DB, chatID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, 0, ErrChatNotFound
		}
		return nil, 0, err
	}
	if userID != c.User1ID && userID != c.User2ID {
		return nil, 0, ErrChatForbidden
	}

	total, err := repo.CountChatMessages(ctx, s.DB, chatID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.ChatMessage{}, 0, nil
	}

	items, err := repo.ListChatMessagesPage(ctx, s.DB, chatID, (page-1)*pageSize, pageSize)
	return items, total, err
}
