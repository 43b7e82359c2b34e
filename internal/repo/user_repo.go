// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides read-only repository functions for
// users; registration and profile editing live outside this core.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/alevras/go-match-backend/internal/domain"
)

// GetUser fetches one user by id, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUsers fetches the given users keyed by id. Missing ids are simply
// absent from the map; callers decide whether that is an error.
func GetUsers(ctx context.Context, db *gorm.DB, ids []string) (map[string]domain.User, error) {
	out := make(map[string]domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []domain.User
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}
