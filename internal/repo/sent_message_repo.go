// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for candidate
// (SentMessage) rows.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a row is not found, functions return gorm.ErrRecordNotFound
//     (also exported in this package as ErrNotFound).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alevras/go-match-backend/internal/domain"
)

// CreateSentMessage inserts one candidate message row sender→receiver.
// Message text is stored exactly as given; no normalization happens here.
func CreateSentMessage(ctx context.Context, db *gorm.DB, senderID, receiverID, message, replyTo string) (*domain.SentMessage, error) {
	m := &domain.SentMessage{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Message:    message,
		ReplyTo:    replyTo,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// HasReciprocalSince reports whether receiverID has sent the exact same
// message back to senderID strictly after the given instant. This is the
// reciprocity probe of the match detector; hidden rows still count because
// moderation visibility only affects read paths.
func HasReciprocalSince(ctx context.Context, db *gorm.DB, senderID, receiverID, message string, since time.Time) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.SentMessage{}).
		Where("sender_id = ? AND receiver_id = ? AND message = ? AND created_at > ?",
			receiverID, senderID, message, since).
		Count(&n).Error
	return n > 0, err
}

// CandidateVisible reports whether a non-hidden candidate row exists for
// senderID→receiverID carrying the exact message. Used by the chat-list
// reader: a match is only visible when both directions pass this check.
func CandidateVisible(ctx context.Context, db *gorm.DB, senderID, receiverID, message string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.SentMessage{}).
		Where("sender_id = ? AND receiver_id = ? AND message = ? AND is_hidden = ?",
			senderID, receiverID, message, false).
		Count(&n).Error
	return n > 0, err
}

// ListReceivedSince returns all non-hidden candidate rows created at or
// after the given instant, ordered by receiver then creation time. The
// digest job groups the result per receiver.
func ListReceivedSince(ctx context.Context, db *gorm.DB, since time.Time) ([]domain.SentMessage, error) {
	var out []domain.SentMessage
	err := db.WithContext(ctx).
		Where("created_at >= ? AND is_hidden = ?", since, false).
		Order("receiver_id ASC, created_at ASC").
		Find(&out).Error
	return out, err
}

// CountDistinctSenders returns how many distinct users have ever sent the
// exact message content.
func CountDistinctSenders(ctx context.Context, db *gorm.DB, message string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.SentMessage{}).
		Where("message = ?", message).
		Distinct("sender_id").
		Count(&n).Error
	return n, err
}

// HideSentMessage flips the moderation hidden flag on one candidate row.
// The flip is one-way in this core; there is no unhide path.
// Returns ErrNotFound when the row does not exist.
func HideSentMessage(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.SentMessage{}).
		Where("id = ?", id).
		Update("is_hidden", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
