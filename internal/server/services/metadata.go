package services

import (
	"context"
	"errors"

	"github.com/aguerraochoa/Speakance-sub000/internal/common"
	"github.com/aguerraochoa/Speakance-sub000/internal/logging"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/models"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/repositories/repomanager"
)

// MetadataService stores taxonomy snapshots and keeps expense rows consistent
// with category removals.
type MetadataService struct {
	repos repomanager.RepositoryManager
	log   logging.Logger
}

func NewMetadataService(repos repomanager.RepositoryManager, log logging.Logger) *MetadataService {
	return &MetadataService{repos: repos, log: log}
}

// Replace stores the client's snapshot. Categories present before but absent
// from the new snapshot are treated as deleted: their expenses are re-pointed
// to the reserved default category so no row dangles.
func (s *MetadataService) Replace(ctx context.Context, userID string, snap *models.MetadataSnapshot) error {
	previous, err := s.repos.Metadata().Get(ctx, userID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}

	if previous != nil {
		kept := make(map[string]bool, len(snap.Categories))
		for _, c := range snap.Categories {
			kept[c.Name] = true
		}
		for _, c := range previous.Categories {
			if kept[c.Name] || c.Name == common.DefaultCategoryName {
				continue
			}
			if err := s.repos.Expenses().ReassignCategory(ctx, userID, c.Name, common.DefaultCategoryName); err != nil {
				return err
			}
			s.log.Info(ctx, "category removed, expenses re-pointed",
				"category", c.Name, "target", common.DefaultCategoryName)
		}
	}

	return s.repos.Metadata().Replace(ctx, userID, snap)
}

// Get returns the stored snapshot; a user with no snapshot yet gets an empty
// one rather than an error.
func (s *MetadataService) Get(ctx context.Context, userID string) (*models.MetadataSnapshot, error) {
	snap, err := s.repos.Metadata().Get(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		return &models.MetadataSnapshot{}, nil
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}
