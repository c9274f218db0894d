package metadata

import (
	"context"
	"sync"

	"github.com/aguerraochoa/Speakance-sub000/internal/common"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/models"
)

type InMemoryRepository struct {
	mu    sync.RWMutex
	snaps map[string]*models.MetadataSnapshot
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{snaps: make(map[string]*models.MetadataSnapshot)}
}

func (r *InMemoryRepository) Replace(ctx context.Context, userID string, snap *models.MetadataSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *snap
	r.snaps[userID] = &stored
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, userID string) (*models.MetadataSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap, ok := r.snaps[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *snap
	return &out, nil
}
