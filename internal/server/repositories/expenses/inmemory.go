package expenses

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aguerraochoa/Speakance-sub000/internal/common"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/models"
)

// InMemoryRepository is a map-backed Repository used by tests and by the
// server's in-memory mode.
type InMemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]*models.Expense // by id
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{rows: make(map[string]*models.Expense)}
}

func (r *InMemoryRepository) UpsertByClientID(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Same row-timestamp contract as the Postgres repository: created_at is
	// set once on insert, updated_at on every write.
	now := time.Now().UTC()

	for _, existing := range r.rows {
		if existing.UserID == e.UserID && existing.ClientExpenseID == e.ClientExpenseID {
			updated := *e
			updated.ID = existing.ID
			updated.CreatedAt = existing.CreatedAt
			updated.UpdatedAt = now
			r.rows[existing.ID] = &updated
			out := updated
			return &out, nil
		}
	}

	stored := *e
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.rows[e.ID] = &stored
	out := stored
	return &out, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, e *models.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rows[e.ID]
	if !ok || existing.UserID != e.UserID {
		return common.ErrNotFound
	}
	updated := *e
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	r.rows[e.ID] = &updated
	return nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, userID, id string) (*models.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.rows[id]
	if !ok || e.UserID != userID {
		return nil, common.ErrNotFound
	}
	out := *e
	return &out, nil
}

func (r *InMemoryRepository) DeleteByID(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.rows[id]
	if !ok || e.UserID != userID {
		return common.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *InMemoryRepository) ListByUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Expense
	for _, e := range r.rows {
		if e.UserID == userID {
			out := *e
			result = append(result, &out)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].ExpenseDate.Equal(result[j].ExpenseDate) {
			return result[i].ExpenseDate.After(result[j].ExpenseDate)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *InMemoryRepository) ReassignCategory(ctx context.Context, userID, fromCategory, toCategory string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.rows {
		if e.UserID == userID && e.Category == fromCategory {
			e.Category = toCategory
			e.CategoryID = ""
		}
	}
	return nil
}

func (r *InMemoryRepository) TrainingRows(ctx context.Context, userID string) (map[string][]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string][]string)
	for _, e := range r.rows {
		if e.UserID == userID && e.Description != "" {
			result[e.Category] = append(result[e.Category], e.Description)
		}
	}
	return result, nil
}
