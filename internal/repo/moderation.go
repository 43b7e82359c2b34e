// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the moderation mutations consumed by
// the external moderation surface: hiding a candidate message and deleting
// a match together with its candidate rows.
//
// DeleteMatch is the one place in the data layer that requires an atomic
// multi-row transaction: an observer must never see a deleted MatchPair next
// to an un-decremented PresetMessage counter.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/alevras/go-match-backend/internal/domain"
)

// DeleteMatch removes a MatchPair and every candidate row between its two
// users carrying the same message, then decrements the PresetMessage
// aggregate by exactly the number of candidate rows removed (floored at
// zero). The whole operation commits or rolls back as one transaction.
// Returns ErrNotFound when the match does not exist.
func DeleteMatch(ctx context.Context, db *gorm.DB, matchID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m domain.MatchPair
		if err := tx.Where("id = ?", matchID).First(&m).Error; err != nil {
			return err
		}

		if err := tx.Delete(&domain.MatchPair{}, "id = ?", m.ID).Error; err != nil {
			return err
		}

		res := tx.
			Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND message = ?",
				m.User1ID, m.User2ID, m.User2ID, m.User1ID, m.Message).
			Delete(&domain.SentMessage{})
		if res.Error != nil {
			return res.Error
		}

		return DecrementPreset(ctx, tx, m.Message, res.RowsAffected)
	})
}
