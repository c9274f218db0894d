package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aguerraochoa/Speakance-sub000/internal/client/models"
	"github.com/aguerraochoa/Speakance-sub000/internal/common"
)

func capture(id, clientID string, status models.CaptureStatus) models.QueuedCapture {
	return models.QueuedCapture{
		ID:              id,
		ClientExpenseID: clientID,
		Source:          models.SourceText,
		CapturedAt:      time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC),
		RawText:         "spent 150 pesos on tacos",
		Status:          status,
	}
}

func TestNewResetsStrandedSyncing(t *testing.T) {
	q := New([]models.QueuedCapture{
		capture("q1", "c1", models.StatusSyncing),
		capture("q2", "c2", models.StatusFailed),
	})

	item, ok := q.Get("q1")
	require.True(t, ok)
	require.Equal(t, models.StatusPending, item.Status)

	item, _ = q.Get("q2")
	require.Equal(t, models.StatusFailed, item.Status)
}

func TestLoadDedup(t *testing.T) {
	saved := capture("q2", "c1", models.StatusSaved)

	q := New([]models.QueuedCapture{
		capture("q1", "c1", models.StatusPending), // stale duplicate of a saved capture
		saved,
		capture("q2", "c1", models.StatusSaved), // duplicate local id
		capture("q3", "c3", models.StatusPending),
	})

	require.Equal(t, 2, q.Len())
	_, ok := q.Get("q1")
	require.False(t, ok)
	_, ok = q.Get("q2")
	require.True(t, ok)
}

func TestLoadDedupKeepsNewerPendingAfterSaved(t *testing.T) {
	// A capture key can legitimately be reused after the saved expense was
	// deleted and restored; only entries older than a saved one are stale.
	q := New([]models.QueuedCapture{
		capture("q1", "c1", models.StatusSaved),
		capture("q2", "c1", models.StatusPending),
	})

	require.Equal(t, 2, q.Len())
	item, ok := q.Get("q2")
	require.True(t, ok)
	require.Equal(t, models.StatusPending, item.Status)
	_, ok = q.Get("q1")
	require.True(t, ok)
}

func TestStateTransitions(t *testing.T) {
	q := New([]models.QueuedCapture{capture("q1", "c1", models.StatusPending)})

	require.True(t, q.MarkSyncing("q1"))
	require.False(t, q.MarkSyncing("q1"), "syncing item must not be re-entered")

	draft := &models.ExpenseDraft{Currency: "MXN", Category: "Food"}
	q.MarkNeedsReview("q1", "srv-1", draft)

	item, _ := q.Get("q1")
	require.Equal(t, models.StatusNeedsReview, item.Status)
	require.Equal(t, "srv-1", item.ServerExpenseID)
	require.NotNil(t, item.ParsedDraft)
}

func TestMarkFailedIncrementsRetryCount(t *testing.T) {
	q := New([]models.QueuedCapture{capture("q1", "c1", models.StatusPending)})

	q.MarkSyncing("q1")
	q.MarkFailed("q1", "server returned status 500")

	item, _ := q.Get("q1")
	require.Equal(t, models.StatusFailed, item.Status)
	require.Equal(t, 1, item.RetryCount)
	require.Equal(t, "server returned status 500", item.LastError)
}

func TestPauseForAuthKeepsRetryCount(t *testing.T) {
	c := capture("q1", "c1", models.StatusPending)
	c.RetryCount = 2
	q := New([]models.QueuedCapture{c})

	q.MarkSyncing("q1")
	q.PauseForAuth("q1")

	item, _ := q.Get("q1")
	require.Equal(t, models.StatusPending, item.Status)
	require.Equal(t, 2, item.RetryCount)
}

func TestMarkSavedClearsAudioPath(t *testing.T) {
	c := capture("q1", "c1", models.StatusPending)
	c.Source = models.SourceVoice
	c.LocalAudioFilePath = "/tmp/audio/q1.m4a"
	q := New([]models.QueuedCapture{c})

	q.MarkSyncing("q1")
	path := q.MarkSaved("q1", "srv-1", &models.ExpenseDraft{Currency: "MXN"})

	require.Equal(t, "/tmp/audio/q1.m4a", path)
	item, _ := q.Get("q1")
	require.Empty(t, item.LocalAudioFilePath)
	require.Equal(t, models.StatusSaved, item.Status)
}

func TestRetrySemantics(t *testing.T) {
	q := New([]models.QueuedCapture{
		capture("q1", "c1", models.StatusFailed),
		capture("q2", "c2", models.StatusFailed),
		capture("q3", "c3", models.StatusNeedsReview),
	})
	item, _ := q.Get("q1")
	item.RetryCount = 3
	item.LastError = "boom"

	// Item-level retry clears lastError.
	require.NoError(t, q.Retry("q1"))
	item, _ = q.Get("q1")
	require.Equal(t, models.StatusPending, item.Status)
	require.Empty(t, item.LastError)
	require.Equal(t, 3, item.RetryCount)

	// Bulk retry only flips statuses.
	item, _ = q.Get("q2")
	item.LastError = "boom"
	require.Equal(t, 1, q.RetryAllFailed())
	item, _ = q.Get("q2")
	require.Equal(t, models.StatusPending, item.Status)
	require.Equal(t, "boom", item.LastError)

	// needsReview is not retryable.
	require.ErrorIs(t, q.Retry("q3"), common.ErrValidation)
}

func TestDeleteGuardedByLedgerReference(t *testing.T) {
	q := New([]models.QueuedCapture{capture("q1", "c1", models.StatusSaved)})

	err := q.Delete("q1", func(clientExpenseID, serverExpenseID string) bool {
		return clientExpenseID == "c1"
	})
	require.ErrorIs(t, err, common.ErrValidation)
	require.Equal(t, 1, q.Len())

	require.NoError(t, q.Delete("q1", func(string, string) bool { return false }))
	require.Equal(t, 0, q.Len())
}

func TestRemoveByClientExpenseID(t *testing.T) {
	q := New([]models.QueuedCapture{
		capture("q1", "c1", models.StatusSaved),
		capture("q2", "c2", models.StatusPending),
	})

	removed := q.RemoveByClientExpenseID("c1")
	require.Len(t, removed, 1)
	require.Equal(t, "q1", removed[0].ID)
	require.Equal(t, 1, q.Len())
}
