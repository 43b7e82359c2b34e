// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// PresetMessage aggregate counters.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alevras/go-match-backend/internal/domain"
)

// IncrementPreset bumps the aggregate for one exact message content, creating
// the row with count=1 when absent. The distinct-sender count is recomputed
// from sent_messages at the same time. Callers run this inside the match
// transaction so the counter never drifts from the MatchPair write.
func IncrementPreset(ctx context.Context, db *gorm.DB, message string, now time.Time) (*domain.PresetMessage, error) {
	senders, err := CountDistinctSenders(ctx, db, message)
	if err != nil {
		return nil, err
	}

	var p domain.PresetMessage
	err = db.WithContext(ctx).Where("message = ?", message).First(&p).Error
	switch {
	case err == nil:
		p.Count++
		p.SenderCount = senders
		p.LastSentAt = now
		if err := db.WithContext(ctx).Save(&p).Error; err != nil {
			return nil, err
		}
		return &p, nil
	case err == gorm.ErrRecordNotFound:
		p = domain.PresetMessage{
			ID:          uuid.NewString(),
			Message:     message,
			Count:       1,
			SenderCount: senders,
			LastSentAt:  now,
			CreatedAt:   now,
		}
		if err := db.WithContext(ctx).Create(&p).Error; err != nil {
			return nil, err
		}
		return &p, nil
	default:
		return nil, err
	}
}

// DecrementPreset lowers the aggregate count for a message by n, flooring at
// zero. Moderation calls this inside the same transaction that removes the
// SentMessage rows, with n equal to exactly the number of rows removed.
func DecrementPreset(ctx context.Context, db *gorm.DB, message string, n int64) error {
	if n <= 0 {
		return nil
	}
	return db.WithContext(ctx).
		Model(&domain.PresetMessage{}).
		Where("message = ?", message).
		Update("count", gorm.Expr("CASE WHEN count > ? THEN count - ? ELSE 0 END", n, n)).
		Error
}

// CountPresetsCreatedBetween counts aggregate rows first created inside the
// half-open interval [from, to). The global digest reports this number.
func CountPresetsCreatedBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.PresetMessage{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&n).Error
	return n, err
}
