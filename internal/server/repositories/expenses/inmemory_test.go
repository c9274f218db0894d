package expenses

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/aguerraochoa/Speakance-sub000/internal/server/models"
)

func newExpense(id, clientID string) *models.Expense {
	return &models.Expense{
		ID:              id,
		UserID:          "user-1",
		ClientExpenseID: clientID,
		Amount:          decimal.NewFromInt(120),
		Currency:        "MXN",
		Category:        "food",
		Description:     "tacos",
		Source:          models.SourceText,
		ParseStatus:     models.ParseAuto,
	}
}

func TestInMemoryUpsertStampsRowTimestamps(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.UpsertByClientID(ctx, newExpense("e1", "c1"))
	require.NoError(t, err)
	require.False(t, created.CreatedAt.IsZero())
	require.False(t, created.UpdatedAt.IsZero())

	second := newExpense("e1-replay", "c1")
	second.Description = "tacos al pastor"
	updated, err := repo.UpsertByClientID(ctx, second)
	require.NoError(t, err)

	// Replayed upserts keep the row identity and creation time but advance
	// updated_at.
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)
	require.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
}

func TestInMemoryUpdateStampsUpdatedAt(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.UpsertByClientID(ctx, newExpense("e1", "c1"))
	require.NoError(t, err)

	edited := *created
	edited.UpdatedAt = time.Time{} // caller does not control the stamp
	edited.Description = "dinner"
	require.NoError(t, repo.Update(ctx, &edited))

	got, err := repo.GetByID(ctx, "user-1", created.ID)
	require.NoError(t, err)
	require.Equal(t, "dinner", got.Description)
	require.Equal(t, created.CreatedAt, got.CreatedAt)
	require.False(t, got.UpdatedAt.IsZero())
	require.False(t, got.UpdatedAt.Before(created.UpdatedAt))
}
