// Package users persists account rows.
package users

import (
	"context"

	"github.com/aguerraochoa/Speakance-sub000/internal/server/models"
)

// Repository describes storage operations for User rows.
type Repository interface {
	Create(ctx context.Context, u *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
