// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for MatchPair rows.
//
// MatchPair rows are append-only: created by the match detector, bulk-deleted
// by moderation, never updated. Queries therefore always consider both
// orientations of a pair, since rows are stored in caller order.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alevras/go-match-backend/internal/domain"
)

// pairScope constrains a query to rows between a and b in either orientation.
func pairScope(a, b string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)", a, b, b, a)
	}
}

// CreateMatchPair inserts a new match record in caller order.
func CreateMatchPair(ctx context.Context, db *gorm.DB, user1ID, user2ID, message string) (*domain.MatchPair, error) {
	m := &domain.MatchPair{
		ID:        uuid.NewString(),
		User1ID:   user1ID,
		User2ID:   user2ID,
		Message:   message,
		MatchedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// LastMatchedAt returns the matchedAt of the most recent MatchPair between
// the two users for the exact message, in either orientation. When no such
// match exists it returns the zero time (the epoch lower bound of the
// reciprocity window) and no error.
func LastMatchedAt(ctx context.Context, db *gorm.DB, a, b, message string) (time.Time, error) {
	var m domain.MatchPair
	err := db.WithContext(ctx).
		Scopes(pairScope(a, b)).
		Where("message = ?", message).
		Order("matched_at DESC").
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return m.MatchedAt, nil
}

// MatchPairAfter returns the newest MatchPair between the two users for the
// exact message with matchedAt strictly after the given instant, or
// ErrNotFound. The detector uses it as the duplicate guard just before the
// final write.
func MatchPairAfter(ctx context.Context, db *gorm.DB, a, b, message string, after time.Time) (*domain.MatchPair, error) {
	var m domain.MatchPair
	err := db.WithContext(ctx).
		Scopes(pairScope(a, b)).
		Where("message = ? AND matched_at > ?", message, after).
		Order("matched_at DESC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// HasMatchForMessage reports whether any MatchPair exists between sender and
// receiver for the exact message, in either orientation. The digest job uses
// it to subtract already-matched candidates.
func HasMatchForMessage(ctx context.Context, db *gorm.DB, a, b, message string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.MatchPair{}).
		Scopes(pairScope(a, b)).
		Where("message = ?", message).
		Count(&n).Error
	return n > 0, err
}

// ListMatchesForPair returns the full chronological match history between
// two users (either orientation), oldest first.
func ListMatchesForPair(ctx context.Context, db *gorm.DB, a, b string) ([]domain.MatchPair, error) {
	var out []domain.MatchPair
	err := db.WithContext(ctx).
		Scopes(pairScope(a, b)).
		Order("matched_at ASC").
		Find(&out).Error
	return out, err
}

// ListPartnerIDs returns the distinct ids of every user that has ever
// appeared in a MatchPair with userID, in first-match order.
func ListPartnerIDs(ctx context.Context, db *gorm.DB, userID string) ([]string, error) {
	var matches []domain.MatchPair
	err := db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("matched_at ASC").
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		partner := m.User1ID
		if partner == userID {
			partner = m.User2ID
		}
		if _, ok := seen[partner]; ok {
			continue
		}
		seen[partner] = struct{}{}
		out = append(out, partner)
	}
	return out, nil
}

// GetMatchPair fetches one match record by id, or ErrNotFound.
func GetMatchPair(ctx context.Context, db *gorm.DB, id string) (*domain.MatchPair, error) {
	var m domain.MatchPair
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}
