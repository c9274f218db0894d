package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/aguerraochoa/Speakance-sub000/internal/client/models"
	"github.com/aguerraochoa/Speakance-sub000/internal/common"
)

func record(id, clientID string, updatedAt time.Time) models.ExpenseRecord {
	return models.ExpenseRecord{
		ID:              id,
		ClientExpenseID: clientID,
		Amount:          decimal.NewFromInt(150),
		Currency:        "MXN",
		Category:        "Food",
		ExpenseDate:     time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
		Source:          models.SourceText,
		ParseStatus:     models.ParseAuto,
		UpdatedAt:       updatedAt,
	}
}

func TestUpsertIsIdempotentPerClientExpenseID(t *testing.T) {
	l := New(nil, nil)
	t0 := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	first := record("srv-1", "c1", t0)
	l.Upsert(&first)

	// The same capture parsed again produces the same server row.
	second := record("srv-1", "c1", t0.Add(time.Minute))
	l.Upsert(&second)

	require.Equal(t, 1, l.Len())
	got, ok := l.FindByClientExpenseID("c1")
	require.True(t, ok)
	require.True(t, got.UpdatedAt.Equal(t0.Add(time.Minute)))
}

func TestDedupAuthorityBothGroupings(t *testing.T) {
	t0 := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	l := New([]models.ExpenseRecord{
		record("srv-1", "c1", t0),
		record("srv-2", "c1", t0.Add(time.Minute)), // newer for c1
		record("srv-2", "c2", t0),                  // older for srv-2
	}, nil)

	// srv-2/c1 is authoritative for both its groupings; srv-1/c1 loses the
	// clientExpenseID grouping and srv-2/c2 loses the id grouping.
	require.Equal(t, 1, l.Len())
	got, ok := l.Get("srv-2")
	require.True(t, ok)
	require.Equal(t, "c1", got.ClientExpenseID)
}

func TestMergeRemoteFiltersTombstoned(t *testing.T) {
	t0 := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	l := New(nil, nil)

	deleted := record("srv-1", "c1", t0)
	l.AddTombstone(deleted, nil, t0)

	remote := []*models.ExpenseRecord{
		{ID: "srv-1", ClientExpenseID: "c1", UpdatedAt: t0.Add(time.Hour)},
		{ID: "srv-2", ClientExpenseID: "c2", UpdatedAt: t0},
	}
	l.MergeRemote(remote)

	require.Equal(t, 1, l.Len())
	_, ok := l.Get("srv-1")
	require.False(t, ok, "a tombstoned expense must not be resurrected by a refresh")
	_, ok = l.Get("srv-2")
	require.True(t, ok)
}

func TestRemoveAndRollback(t *testing.T) {
	t0 := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	l := New([]models.ExpenseRecord{record("srv-1", "c1", t0)}, nil)

	rec, ok := l.Remove("srv-1")
	require.True(t, ok)
	require.Equal(t, 0, l.Len())

	// Remote delete failed: the optimistic removal is rolled back.
	l.Upsert(rec)
	require.Equal(t, 1, l.Len())
}

func TestRestoreReinsertsExpenseAndQueueEntries(t *testing.T) {
	t0 := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	l := New(nil, nil)

	entries := []models.QueuedCapture{{ID: "q1", ClientExpenseID: "c1", Status: models.StatusSaved}}
	l.AddTombstone(record("srv-1", "c1", t0), entries, t0)

	restored, err := l.Restore("srv-1")
	require.NoError(t, err)
	require.Len(t, restored, 1)
	require.Equal(t, "q1", restored[0].ID)

	got, ok := l.Get("srv-1")
	require.True(t, ok)
	require.Equal(t, "c1", got.ClientExpenseID)
	require.Empty(t, l.Deleted())

	_, err = l.Restore("srv-1")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestPurgeExpiredTombstones(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	l := New(nil, nil)

	l.AddTombstone(record("srv-1", "c1", t0), nil, t0)
	l.AddTombstone(record("srv-2", "c2", t0), nil, t0.AddDate(0, 0, 20))

	purged := l.PurgeExpired(t0.AddDate(0, 0, 31))
	require.Len(t, purged, 1)
	require.Equal(t, "srv-1", purged[0].Expense.ID)
	require.Len(t, l.Deleted(), 1)

	// A second purge at the same instant finds nothing, so the remote
	// delete for srv-1 is issued exactly once.
	require.Empty(t, l.PurgeExpired(t0.AddDate(0, 0, 31)))
}

func TestReferences(t *testing.T) {
	t0 := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	l := New([]models.ExpenseRecord{record("srv-1", "c1", t0)}, nil)

	require.True(t, l.References("c1", ""))
	require.True(t, l.References("", "srv-1"))
	require.False(t, l.References("c2", "srv-2"))
}
