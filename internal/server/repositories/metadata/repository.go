// Package metadata persists per-user taxonomy snapshots (categories, trips,
// payment methods, profile).
package metadata

import (
	"context"

	"github.com/aguerraochoa/Speakance-sub000/internal/server/models"
)

// Repository stores one MetadataSnapshot per user. Sync is snapshot-replace:
// the client is the editor, the server keeps the latest full picture.
type Repository interface {
	Replace(ctx context.Context, userID string, snap *models.MetadataSnapshot) error
	Get(ctx context.Context, userID string) (*models.MetadataSnapshot, error)
}
