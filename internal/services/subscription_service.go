// Package services – SubscriptionService.
//
// Push opt-in happens on the client; this service only records the resulting
// subscription descriptor. Deactivation of dead endpoints is handled by the
// notification and digest layers.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/alevras/go-match-backend/internal/domain"
	"github.com/alevras/go-match-backend/internal/repo"
)

// SubscriptionService registers push subscriptions.
type SubscriptionService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewSubscriptionService wires the subscription writer.
func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{DB: db}
}

// Register upserts a push subscription for a user. Re-registering a known
// endpoint reactivates it and reassigns ownership to the caller.
func (s *SubscriptionService) Register(ctx context.Context, userID, endpoint, p256dh, auth string) (*domain.PushSubscription, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if endpoint == "" || p256dh == "" || auth == "" {
		return nil, ErrSubscriptionInvalid
	}
	return repo.UpsertSubscription(ctx, s.DB, userID, endpoint, p256dh, auth)
}
