// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for push
// subscriptions.
//
// Dead endpoints are deactivated, never deleted: the provider may report an
// endpoint gone while the user still holds other live subscriptions, and an
// inactive row is cheap audit history.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alevras/go-match-backend/internal/domain"
)

// UpsertSubscription registers (or re-registers) a push endpoint for a user.
// Endpoints are unique; re-registering an existing endpoint reactivates it,
// refreshes its key material, and reassigns ownership to the caller.
func UpsertSubscription(ctx context.Context, db *gorm.DB, userID, endpoint, p256dh, auth string) (*domain.PushSubscription, error) {
	var existing domain.PushSubscription
	err := db.WithContext(ctx).Where("endpoint = ?", endpoint).First(&existing).Error
	switch {
	case err == nil:
		existing.UserID = userID
		existing.P256dh = p256dh
		existing.Auth = auth
		existing.IsActive = true
		existing.UpdatedAt = time.Now().UTC()
		if err := db.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	case err == gorm.ErrRecordNotFound:
		s := &domain.PushSubscription{
			ID:        uuid.NewString(),
			UserID:    userID,
			Endpoint:  endpoint,
			P256dh:    p256dh,
			Auth:      auth,
			IsActive:  true,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
		if err := db.WithContext(ctx).Create(s).Error; err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, err
	}
}

// ActiveSubscriptionsForUsers returns every active subscription belonging to
// any of the given users.
func ActiveSubscriptionsForUsers(ctx context.Context, db *gorm.DB, userIDs []string) ([]domain.PushSubscription, error) {
	if len(userIDs) == 0 {
		return []domain.PushSubscription{}, nil
	}
	var out []domain.PushSubscription
	err := db.WithContext(ctx).
		Where("user_id IN ? AND is_active = ?", userIDs, true).
		Order("user_id ASC, created_at ASC").
		Find(&out).Error
	return out, err
}

// AllActiveSubscriptions returns every active subscription, ordered by user
// so the digest job can group them without a second pass.
func AllActiveSubscriptions(ctx context.Context, db *gorm.DB) ([]domain.PushSubscription, error) {
	var out []domain.PushSubscription
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("user_id ASC, created_at ASC").
		Find(&out).Error
	return out, err
}

// DeactivateEndpoints flips is_active off for the given endpoints in one
// bulk update and returns how many rows changed. A nil/empty slice is a
// no-op.
func DeactivateEndpoints(ctx context.Context, db *gorm.DB, endpoints []string) (int64, error) {
	if len(endpoints) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).
		Model(&domain.PushSubscription{}).
		Where("endpoint IN ?", endpoints).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}
