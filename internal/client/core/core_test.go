package core

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/aguerraochoa/Speakance-sub000/internal/client/api"
	"github.com/aguerraochoa/Speakance-sub000/internal/client/config"
	"github.com/aguerraochoa/Speakance-sub000/internal/client/models"
	"github.com/aguerraochoa/Speakance-sub000/internal/client/store"
	"github.com/aguerraochoa/Speakance-sub000/internal/common"
	"github.com/aguerraochoa/Speakance-sub000/internal/logging"
)

var testNow = time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

type fakeAPI struct {
	mu sync.Mutex

	parse       func(req *api.ParseRequest) (*api.ParseResponse, error)
	update      func(id string, req *api.UpdateExpenseRequest) (*models.ExpenseRecord, error)
	deleteErr   error
	listResp    []*models.ExpenseRecord
	metaRelease chan struct{}

	parseCalls  []string
	updateCalls []string
	deleted     []string
	metaCalls   int
}

func (f *fakeAPI) Ping(ctx context.Context) error { return nil }
func (f *fakeAPI) SetToken(token string)          {}

func (f *fakeAPI) Register(ctx context.Context, username, password, defaultCurrency string) (string, error) {
	return "token", nil
}

func (f *fakeAPI) Login(ctx context.Context, username, password string) (string, error) {
	return "token", nil
}

func (f *fakeAPI) Parse(ctx context.Context, req *api.ParseRequest) (*api.ParseResponse, error) {
	f.mu.Lock()
	f.parseCalls = append(f.parseCalls, req.ClientExpenseID)
	f.mu.Unlock()
	if f.parse == nil {
		return nil, errors.New("no route to host")
	}
	return f.parse(req)
}

func (f *fakeAPI) UpdateExpense(ctx context.Context, id string, req *api.UpdateExpenseRequest) (*models.ExpenseRecord, error) {
	f.mu.Lock()
	f.updateCalls = append(f.updateCalls, id)
	f.mu.Unlock()
	if f.update == nil {
		return nil, errors.New("no route to host")
	}
	return f.update(id, req)
}

func (f *fakeAPI) DeleteExpense(ctx context.Context, id string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	f.mu.Unlock()
	return f.deleteErr
}

func (f *fakeAPI) ListExpenses(ctx context.Context) ([]*models.ExpenseRecord, error) {
	return f.listResp, nil
}

func (f *fakeAPI) SyncMetadata(ctx context.Context, snap *models.MetadataSnapshot) error {
	f.mu.Lock()
	f.metaCalls++
	f.mu.Unlock()
	if f.metaRelease != nil {
		<-f.metaRelease
	}
	return nil
}

func (f *fakeAPI) FetchMetadata(ctx context.Context) (*models.MetadataSnapshot, error) {
	return &models.MetadataSnapshot{}, nil
}

func (f *fakeAPI) PresignAudio(ctx context.Context) (string, string, error) {
	return "https://bucket.example/put", "users/u1/key", nil
}

func (f *fakeAPI) UploadAudio(ctx context.Context, presignedURL, localPath string) error {
	return nil
}

func (f *fakeAPI) metaCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.metaCalls
}

func (f *fakeAPI) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func savedParseResponse(req *api.ParseRequest) (*api.ParseResponse, error) {
	return &api.ParseResponse{
		Status: api.StatusSaved,
		Expense: &api.ExpensePayload{
			ID:               "srv-" + req.ClientExpenseID,
			ClientExpenseID:  req.ClientExpenseID,
			Amount:           decimal.NewFromInt(150),
			Currency:         "MXN",
			Category:         "Food",
			ExpenseDate:      "2026-08-25",
			CapturedAtDevice: testNow,
			Source:           req.Source,
			ParseStatus:      "auto",
			UpdatedAt:        testNow,
		},
		Parse: &api.ParseInfo{Confidence: 0.95},
	}, nil
}

func newTestCore(t *testing.T, fake *fakeAPI, dataDir string) *Core {
	t.Helper()
	if dataDir == "" {
		dataDir = t.TempDir()
	}
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DataDir = dataDir

	c := New(Options{
		Config:        cfg,
		API:           fake,
		Log:           logging.NewSlogLogger(slog.Default()),
		Timezone:      "UTC",
		AllowAutoSave: true,
		Now:           func() time.Time { return testNow },
	})
	t.Cleanup(c.Close)
	return c
}

func TestAddTextCaptureDrainsToLedger(t *testing.T) {
	fake := &fakeAPI{parse: savedParseResponse}
	c := newTestCore(t, fake, "")

	id, err := c.AddTextCapture(context.Background(), "spent 150 pesos on tacos", "", "")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		for _, item := range c.Captures() {
			if item.ID == id && item.Status == models.StatusSaved {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)

	expenses := c.Expenses()
	require.Len(t, expenses, 1)
	require.Equal(t, "MXN", expenses[0].Currency)
}

func TestAddTextCaptureRejectsEmpty(t *testing.T) {
	c := newTestCore(t, &fakeAPI{}, "")
	_, err := c.AddTextCapture(context.Background(), "", "", "")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestAddVoiceCaptureRejectsOverlongRecording(t *testing.T) {
	c := newTestCore(t, &fakeAPI{}, "")
	_, err := c.AddVoiceCapture(context.Background(), "/tmp/a.m4a", common.MaxVoiceDurationSeconds+1, "", "", "")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestFailedCaptureStaysQueued(t *testing.T) {
	fake := &fakeAPI{} // every parse call fails
	c := newTestCore(t, fake, "")

	id, err := c.AddTextCapture(context.Background(), "coffee 3.50", "", "")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		for _, item := range c.Captures() {
			if item.ID == id && item.Status == models.StatusFailed {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)

	items := c.Captures()
	require.Len(t, items, 1)
	require.Equal(t, 1, items[0].RetryCount)
	require.NotEmpty(t, items[0].LastError)
	require.Empty(t, c.Expenses())
}

func seedNeedsReview(t *testing.T, dir string) models.QueuedCapture {
	t.Helper()
	item := models.QueuedCapture{
		ID:              "q1",
		ClientExpenseID: "c1",
		Source:          models.SourceText,
		CapturedAt:      testNow,
		RawText:         "something vague",
		Status:          models.StatusNeedsReview,
		ServerExpenseID: "srv-1",
		ParsedDraft: &models.ExpenseDraft{
			Amount:      decimal.NewFromInt(40),
			Currency:    "MXN",
			Category:    "Other",
			ExpenseDate: testNow,
			Confidence:  0.62,
		},
	}
	require.NoError(t, store.Save(filepath.Join(dir, "queue.json"), []models.QueuedCapture{item}))
	return item
}

func TestReviewSaveRejectsInvalidAmounts(t *testing.T) {
	dir := t.TempDir()
	seedNeedsReview(t, dir)
	fake := &fakeAPI{}
	c := newTestCore(t, fake, dir)

	for _, amount := range []string{"", "0", "-5", "abc"} {
		err := c.ReviewSave(context.Background(), "q1", ReviewEdit{Amount: amount})
		require.ErrorIs(t, err, ErrInvalidAmount, "amount %q", amount)
		require.EqualError(t, err, "Enter a valid amount greater than zero.")
	}

	// Nothing mutated, no remote call: the review stays open.
	require.Empty(t, fake.updateCalls)
	items := c.Captures()
	require.Len(t, items, 1)
	require.Equal(t, models.StatusNeedsReview, items[0].Status)
	require.Empty(t, c.Expenses())
}

func TestReviewSaveCommitsEditedDraft(t *testing.T) {
	dir := t.TempDir()
	seedNeedsReview(t, dir)
	fake := &fakeAPI{
		update: func(id string, req *api.UpdateExpenseRequest) (*models.ExpenseRecord, error) {
			amount, err := decimal.NewFromString(req.Amount)
			require.NoError(t, err)
			return &models.ExpenseRecord{
				ID:              id,
				ClientExpenseID: "c1",
				Amount:          amount,
				Currency:        req.Currency,
				Category:        req.Category,
				ExpenseDate:     testNow,
				ParseStatus:     models.ParseEdited,
				UpdatedAt:       testNow,
			}, nil
		},
	}
	c := newTestCore(t, fake, dir)

	err := c.ReviewSave(context.Background(), "q1", ReviewEdit{
		Amount:   "45.50",
		Category: "Entertainment",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"srv-1"}, fake.updateCalls)

	items := c.Captures()
	require.Len(t, items, 1)
	require.Equal(t, models.StatusSaved, items[0].Status)

	expenses := c.Expenses()
	require.Len(t, expenses, 1)
	require.Equal(t, "Entertainment", expenses[0].Category)
	require.Equal(t, models.ParseEdited, expenses[0].ParseStatus)
	// Blank form fields keep the draft's values.
	require.Equal(t, "MXN", expenses[0].Currency)
}

func TestQueuePersistenceFailureSetsFixedMessage(t *testing.T) {
	dir := t.TempDir()
	// A directory where queue.json should be makes every queue write fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "queue.json"), 0o755))

	c := newTestCore(t, &fakeAPI{}, dir)
	_, err := c.AddTextCapture(context.Background(), "coffee 3.50", "", "")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return c.OperationalError() == MsgQueueSaveFailed
	}, 5*time.Second, 10*time.Millisecond)

	// The capture itself survives in memory.
	require.Len(t, c.Captures(), 1)
}

func seedLedger(t *testing.T, dir string, recs []models.ExpenseRecord) {
	t.Helper()
	require.NoError(t, store.Save(filepath.Join(dir, "ledger.json"), recs))
}

func TestDeleteExpenseOptimisticWithRollback(t *testing.T) {
	dir := t.TempDir()
	seedLedger(t, dir, []models.ExpenseRecord{{
		ID: "srv-1", ClientExpenseID: "c1",
		Amount: decimal.NewFromInt(100), Currency: "MXN", Category: "Food",
		ExpenseDate: testNow, UpdatedAt: testNow,
	}})
	fake := &fakeAPI{deleteErr: errors.New("boom")}
	c := newTestCore(t, fake, dir)

	require.NoError(t, c.DeleteExpense(context.Background(), "srv-1"))

	// Rolled back once the remote delete fails.
	require.Eventually(t, func() bool {
		return c.OperationalError() == MsgDeleteFailed
	}, 5*time.Second, 10*time.Millisecond)
	expenses := c.Expenses()
	require.Len(t, expenses, 1)
	require.Equal(t, "srv-1", expenses[0].ID)
	require.Empty(t, c.Deleted())
}

func TestDeleteExpenseRemovesRowAndQueueEntries(t *testing.T) {
	dir := t.TempDir()
	seedLedger(t, dir, []models.ExpenseRecord{{
		ID: "srv-1", ClientExpenseID: "c1",
		Amount: decimal.NewFromInt(100), Currency: "MXN", Category: "Food",
		ExpenseDate: testNow, UpdatedAt: testNow,
	}})
	require.NoError(t, store.Save(filepath.Join(dir, "queue.json"), []models.QueuedCapture{{
		ID: "q1", ClientExpenseID: "c1", Source: models.SourceText,
		CapturedAt: testNow, Status: models.StatusSaved, ServerExpenseID: "srv-1",
	}}))
	fake := &fakeAPI{}
	c := newTestCore(t, fake, dir)

	require.NoError(t, c.DeleteExpense(context.Background(), "srv-1"))

	require.Empty(t, c.Expenses())
	require.Empty(t, c.Captures())
	deleted := c.Deleted()
	require.Len(t, deleted, 1)
	require.Len(t, deleted[0].QueueEntries, 1)
	require.Eventually(t, func() bool {
		ids := fake.deletedIDs()
		return len(ids) == 1 && ids[0] == "srv-1"
	}, 5*time.Second, 10*time.Millisecond)

	require.ErrorIs(t, c.DeleteExpense(context.Background(), "srv-1"), common.ErrNotFound)
}

func TestRestoreDeletedReinstatesQueueEntries(t *testing.T) {
	dir := t.TempDir()
	entry := models.RecentlyDeletedExpenseEntry{
		Expense: models.ExpenseRecord{
			ID: "srv-1", ClientExpenseID: "c1",
			Amount: decimal.NewFromInt(100), Currency: "MXN", Category: "Food",
			ExpenseDate: testNow, UpdatedAt: testNow,
		},
		QueueEntries: []models.QueuedCapture{{
			ID: "q1", ClientExpenseID: "c1", Source: models.SourceText,
			CapturedAt: testNow, Status: models.StatusSaved, ServerExpenseID: "srv-1",
		}},
		DeletedAt: testNow,
	}
	require.NoError(t, store.Save(filepath.Join(dir, "deleted.json"), []models.RecentlyDeletedExpenseEntry{entry}))
	c := newTestCore(t, &fakeAPI{}, dir)

	require.NoError(t, c.RestoreDeleted("srv-1"))

	require.Len(t, c.Expenses(), 1)
	require.Len(t, c.Captures(), 1)
	require.Empty(t, c.Deleted())

	require.ErrorIs(t, c.RestoreDeleted("srv-1"), common.ErrNotFound)
}

func TestPurgeExpiredDeletesRemoteExactlyOnce(t *testing.T) {
	dir := t.TempDir()
	old := models.RecentlyDeletedExpenseEntry{
		Expense:   models.ExpenseRecord{ID: "srv-old", ClientExpenseID: "c-old", UpdatedAt: testNow},
		DeletedAt: testNow.Add(-31 * 24 * time.Hour),
	}
	fresh := models.RecentlyDeletedExpenseEntry{
		Expense:   models.ExpenseRecord{ID: "srv-new", ClientExpenseID: "c-new", UpdatedAt: testNow},
		DeletedAt: testNow.Add(-24 * time.Hour),
	}
	require.NoError(t, store.Save(filepath.Join(dir, "deleted.json"), []models.RecentlyDeletedExpenseEntry{old, fresh}))
	fake := &fakeAPI{}
	c := newTestCore(t, fake, dir)

	require.Equal(t, 1, c.PurgeExpired(context.Background()))
	require.Eventually(t, func() bool {
		ids := fake.deletedIDs()
		return len(ids) == 1 && ids[0] == "srv-old"
	}, 5*time.Second, 10*time.Millisecond)

	// Purged tombstones are gone; a second purge has nothing to delete.
	require.Equal(t, 0, c.PurgeExpired(context.Background()))
	time.Sleep(50 * time.Millisecond)
	require.Len(t, fake.deletedIDs(), 1)

	require.Len(t, c.Deleted(), 1)
}

func TestMetadataDirtyFlagGetsOneFollowUpPush(t *testing.T) {
	fake := &fakeAPI{metaRelease: make(chan struct{})}
	c := newTestCore(t, fake, "")

	snap := func(name string) *models.MetadataSnapshot {
		return &models.MetadataSnapshot{Categories: []models.Category{{ID: "c", Name: name}}}
	}

	c.ReplaceMetadata(context.Background(), snap("Food"))
	require.Eventually(t, func() bool { return fake.metaCallCount() == 1 }, 5*time.Second, 10*time.Millisecond)

	// Two edits while the first push is in flight.
	c.ReplaceMetadata(context.Background(), snap("Travel"))
	c.ReplaceMetadata(context.Background(), snap("Health"))

	fake.metaRelease <- struct{}{} // finish first push
	require.Eventually(t, func() bool { return fake.metaCallCount() == 2 }, 5*time.Second, 10*time.Millisecond)
	fake.metaRelease <- struct{}{} // finish the follow-up

	// Exactly one follow-up, not one per edit.
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 2, fake.metaCallCount())
}

func TestSyncMergesRemoteLedger(t *testing.T) {
	fake := &fakeAPI{listResp: []*models.ExpenseRecord{{
		ID: "srv-9", ClientExpenseID: "c9",
		Amount: decimal.NewFromInt(75), Currency: "USD", Category: "Travel",
		ExpenseDate: testNow, UpdatedAt: testNow,
	}}}
	c := newTestCore(t, fake, "")

	c.Sync(context.Background())

	require.Eventually(t, func() bool { return len(c.Expenses()) == 1 }, 5*time.Second, 10*time.Millisecond)
	require.Equal(t, "srv-9", c.Expenses()[0].ID)
}

func TestSyncDoesNotResurrectTombstonedExpense(t *testing.T) {
	dir := t.TempDir()
	entry := models.RecentlyDeletedExpenseEntry{
		Expense:   models.ExpenseRecord{ID: "srv-9", ClientExpenseID: "c9", UpdatedAt: testNow},
		DeletedAt: testNow,
	}
	require.NoError(t, store.Save(filepath.Join(dir, "deleted.json"), []models.RecentlyDeletedExpenseEntry{entry}))
	fake := &fakeAPI{listResp: []*models.ExpenseRecord{{
		ID: "srv-9", ClientExpenseID: "c9",
		Amount: decimal.NewFromInt(75), Currency: "USD", Category: "Travel",
		ExpenseDate: testNow, UpdatedAt: testNow,
	}}}
	c := newTestCore(t, fake, dir)

	c.Sync(context.Background())

	time.Sleep(100 * time.Millisecond)
	require.Empty(t, c.Expenses())
}

func TestRetryCapture(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, store.Save(filepath.Join(dir, "queue.json"), []models.QueuedCapture{{
		ID: "q1", ClientExpenseID: "c1", Source: models.SourceText,
		CapturedAt: testNow, RawText: "coffee 3.50",
		Status: models.StatusFailed, RetryCount: 1, LastError: "no route to host",
	}}))
	fake := &fakeAPI{parse: savedParseResponse}
	c := newTestCore(t, fake, dir)

	require.NoError(t, c.RetryCapture(context.Background(), "q1"))

	require.Eventually(t, func() bool {
		items := c.Captures()
		return len(items) == 1 && items[0].Status == models.StatusSaved
	}, 5*time.Second, 10*time.Millisecond)
}

func TestDeleteCaptureGuardsLedgerReferences(t *testing.T) {
	dir := t.TempDir()
	seedLedger(t, dir, []models.ExpenseRecord{{
		ID: "srv-1", ClientExpenseID: "c1",
		Amount: decimal.NewFromInt(100), Currency: "MXN", Category: "Food",
		ExpenseDate: testNow, UpdatedAt: testNow,
	}})
	require.NoError(t, store.Save(filepath.Join(dir, "queue.json"), []models.QueuedCapture{{
		ID: "q1", ClientExpenseID: "c1", Source: models.SourceText,
		CapturedAt: testNow, Status: models.StatusSaved, ServerExpenseID: "srv-1",
	}}))
	c := newTestCore(t, &fakeAPI{}, dir)

	require.Error(t, c.DeleteCapture("q1"))
	require.Len(t, c.Captures(), 1)
}
