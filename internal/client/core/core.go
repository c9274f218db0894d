// Package core is the client's single-writer state owner. One goroutine
// runs the mailbox and is the only place queue, ledger and metadata state
// mutates; network completions re-enter through the mailbox. Public methods
// are safe to call from any goroutine.
package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aguerraochoa/Speakance-sub000/internal/client/api"
	"github.com/aguerraochoa/Speakance-sub000/internal/client/config"
	"github.com/aguerraochoa/Speakance-sub000/internal/client/ledger"
	"github.com/aguerraochoa/Speakance-sub000/internal/client/models"
	"github.com/aguerraochoa/Speakance-sub000/internal/client/queue"
	"github.com/aguerraochoa/Speakance-sub000/internal/client/refine"
	"github.com/aguerraochoa/Speakance-sub000/internal/client/store"
	syncengine "github.com/aguerraochoa/Speakance-sub000/internal/client/sync"
	"github.com/aguerraochoa/Speakance-sub000/internal/common"
	"github.com/aguerraochoa/Speakance-sub000/internal/logging"
)

// Fixed user-facing messages. These exact strings are part of the product
// copy; do not reword them.
const (
	MsgInvalidAmount   = "Enter a valid amount greater than zero."
	MsgQueueSaveFailed = "Could not save offline queue data."
	MsgDeleteFailed    = "Could not delete the expense on the server; it has been restored."
)

// ErrInvalidAmount rejects a review save without mutating anything; the
// review stays open.
var ErrInvalidAmount = errors.New(MsgInvalidAmount)

// API is the remote surface the core drives. *api.Client satisfies it.
type API interface {
	Ping(ctx context.Context) error
	SetToken(token string)
	Register(ctx context.Context, username, password, defaultCurrency string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	Parse(ctx context.Context, req *api.ParseRequest) (*api.ParseResponse, error)
	UpdateExpense(ctx context.Context, id string, req *api.UpdateExpenseRequest) (*models.ExpenseRecord, error)
	DeleteExpense(ctx context.Context, id string) error
	ListExpenses(ctx context.Context) ([]*models.ExpenseRecord, error)
	SyncMetadata(ctx context.Context, snap *models.MetadataSnapshot) error
	FetchMetadata(ctx context.Context) (*models.MetadataSnapshot, error)
	PresignAudio(ctx context.Context) (url, objectKey string, err error)
	UploadAudio(ctx context.Context, presignedURL, localPath string) error
}

type paths struct {
	queue    string
	ledger   string
	deleted  string
	metadata string
}

// Options wires a Core.
type Options struct {
	Config        *config.Config
	API           API
	Log           logging.Logger
	Timezone      string
	AllowAutoSave bool

	// Now is a test seam; defaults to time.Now.
	Now func() time.Time
}

// Core owns all client state. Every field below jobs is touched only from
// the mailbox goroutine.
type Core struct {
	opts  Options
	jobs  chan func()
	quit  chan struct{}
	paths paths

	api    API
	log    logging.Logger
	writer *store.Writer
	engine *syncengine.Engine

	queue    *queue.Queue
	ledger   *ledger.Ledger
	snapshot *models.MetadataSnapshot

	metaDirty    bool
	metaInFlight bool
	refreshing   bool

	// onlineState is refreshed by the watcher; optimistic until the first
	// probe says otherwise.
	onlineState bool

	// opErr is the operational error banner shown to the user; fixed
	// product copy, cleared explicitly.
	opErr string

	now func() time.Time
}

// New loads persisted state from the data directory and assembles the core.
// Missing or corrupt files load as empty; the app never refuses to start
// over local data.
func New(opts Options) *Core {
	dir := opts.Config.DataDir
	p := paths{
		queue:    filepath.Join(dir, "queue.json"),
		ledger:   filepath.Join(dir, "ledger.json"),
		deleted:  filepath.Join(dir, "deleted.json"),
		metadata: filepath.Join(dir, "metadata.json"),
	}

	c := &Core{
		opts:  opts,
		jobs:  make(chan func(), 64),
		quit:  make(chan struct{}),
		paths: p,
		api:   opts.API,
		log:   opts.Log,
		now:   opts.Now,

		onlineState: true,
	}
	if c.now == nil {
		c.now = time.Now
	}

	c.queue = queue.New(store.Load[models.QueuedCapture](p.queue))
	c.ledger = ledger.New(
		store.Load[models.ExpenseRecord](p.ledger),
		store.Load[models.RecentlyDeletedExpenseEntry](p.deleted),
	)
	if snaps := store.Load[models.MetadataSnapshot](p.metadata); len(snaps) > 0 {
		c.snapshot = &snaps[0]
	} else {
		c.snapshot = &models.MetadataSnapshot{}
	}

	c.writer = store.NewWriter(c.onWriteError, opts.Log)

	c.engine = syncengine.NewEngine(syncengine.Options{
		API:      opts.API,
		Queue:    c.queue,
		Ledger:   c.ledger,
		Dispatch: c.doWait,
		Refiner: func() *refine.Refiner {
			return refine.New(c.snapshot, c.snapshot.Profile.DefaultCurrency)
		},
		Online:   func(context.Context) bool { return c.onlineState },
		Uploader: opts.API,
		RemoveAudio: func(path string) {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				opts.Log.Warn(context.Background(), "removing audio file", "path", path, "error", err)
			}
		},
		OnDrainDone:   c.onDrainDone,
		Timezone:      opts.Timezone,
		AllowAutoSave: opts.AllowAutoSave,
		Log:           opts.Log,
	})

	go c.run()
	return c
}

func (c *Core) run() {
	for {
		select {
		case fn := <-c.jobs:
			fn()
		case <-c.quit:
			return
		}
	}
}

// Close stops the mailbox and flushes pending writes.
func (c *Core) Close() {
	close(c.quit)
	c.writer.Close()
}

// doWait runs fn on the mailbox goroutine and returns once it has run.
// Must not be called from the mailbox goroutine itself.
func (c *Core) doWait(fn func()) {
	done := make(chan struct{})
	c.jobs <- func() {
		defer close(done)
		fn()
	}
	<-done
}

// onWriteError runs on the writer goroutine; state changes re-enter the
// mailbox.
func (c *Core) onWriteError(path string, err error) {
	c.log.Error(context.Background(), "persisting local state", "path", path, "error", err)
	c.jobs <- func() {
		if path == c.paths.queue {
			c.opErr = MsgQueueSaveFailed
		} else {
			c.opErr = "Could not save local data."
		}
	}
}

// StartOnlineWatcher probes server reachability on a ticker. Coming back
// online kicks a drain; dropping offline just flips the flag so pending
// work waits instead of failing.
func (c *Core) StartOnlineWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			online := c.api.Ping(probeCtx) == nil
			cancel()

			c.doWait(func() {
				wasOnline := c.onlineState
				c.onlineState = online
				if online && !wasOnline {
					c.engine.RequestDrain(ctx)
					c.refreshLedger(ctx)
					c.pushMetadata(ctx)
				}
			})

		case <-ctx.Done():
			return
		case <-c.quit:
			return
		}
	}
}

// Online reports the last probe result.
func (c *Core) Online() bool {
	var online bool
	c.doWait(func() { online = c.onlineState })
	return online
}

// Mailbox-side persistence. Fire-and-forget: the background writer reports
// failures through onWriteError.

func (c *Core) persistQueue()  { store.Enqueue(c.writer, c.paths.queue, c.queue.Items()) }
func (c *Core) persistLedger() {
	store.Enqueue(c.writer, c.paths.ledger, c.ledger.Items())
	store.Enqueue(c.writer, c.paths.deleted, c.ledger.Deleted())
}
func (c *Core) persistMetadata() {
	store.Enqueue(c.writer, c.paths.metadata, []models.MetadataSnapshot{*c.snapshot})
}

// onDrainDone runs on the mailbox after every drain: persist the outcome,
// pick up captures added mid-drain, and flush a dirty taxonomy.
func (c *Core) onDrainDone() {
	c.persistQueue()
	c.persistLedger()
	if len(c.queue.PendingIDs()) > 0 {
		c.engine.RequestDrain(context.Background())
	}
	c.pushMetadata(context.Background())
}

// OperationalError returns the current user-facing error banner, if any.
func (c *Core) OperationalError() string {
	var msg string
	c.doWait(func() { msg = c.opErr })
	return msg
}

func (c *Core) ClearOperationalError() {
	c.doWait(func() { c.opErr = "" })
}

// ---- capture ----

// AddTextCapture enqueues a typed expense phrase and kicks a drain. The
// returned id identifies the queue entry.
func (c *Core) AddTextCapture(ctx context.Context, rawText, tripID, paymentMethodID string) (string, error) {
	if rawText == "" {
		return "", common.ErrValidation
	}
	var (
		id     string
		addErr error
	)
	c.doWait(func() {
		item := &models.QueuedCapture{
			ID:              uuid.NewString(),
			ClientExpenseID: uuid.NewString(),
			Source:          models.SourceText,
			CapturedAt:      c.now(),
			RawText:         rawText,
			Status:          models.StatusPending,
			TripID:          tripID,
			PaymentMethodID: paymentMethodID,
		}
		if addErr = c.queue.Add(item); addErr != nil {
			return
		}
		id = item.ID
		c.persistQueue()
		c.engine.RequestDrain(ctx)
	})
	return id, addErr
}

// AddVoiceCapture enqueues a recorded voice memo. transcript may be empty;
// the server transcribes from the uploaded audio in that case.
func (c *Core) AddVoiceCapture(ctx context.Context, audioPath string, durationSeconds float64, transcript, tripID, paymentMethodID string) (string, error) {
	if audioPath == "" || durationSeconds <= 0 {
		return "", common.ErrValidation
	}
	if durationSeconds > common.MaxVoiceDurationSeconds {
		return "", common.ErrValidation
	}
	var (
		id     string
		addErr error
	)
	c.doWait(func() {
		item := &models.QueuedCapture{
			ID:                   uuid.NewString(),
			ClientExpenseID:      uuid.NewString(),
			Source:               models.SourceVoice,
			CapturedAt:           c.now(),
			LocalAudioFilePath:   audioPath,
			AudioDurationSeconds: durationSeconds,
			RawText:              transcript,
			Status:               models.StatusPending,
			TripID:               tripID,
			PaymentMethodID:      paymentMethodID,
		}
		if addErr = c.queue.Add(item); addErr != nil {
			return
		}
		id = item.ID
		c.persistQueue()
		c.engine.RequestDrain(ctx)
	})
	return id, addErr
}

// CancelCapture discards a recording that was never enqueued: no queue
// entry exists, only the partial audio file needs removing.
func (c *Core) CancelCapture(audioPath string) {
	if audioPath == "" {
		return
	}
	if err := os.Remove(audioPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.log.Warn(context.Background(), "removing cancelled recording", "path", audioPath, "error", err)
	}
}

// ---- snapshots ----

func (c *Core) Captures() []models.QueuedCapture {
	var out []models.QueuedCapture
	c.doWait(func() { out = c.queue.Items() })
	return out
}

func (c *Core) Expenses() []models.ExpenseRecord {
	var out []models.ExpenseRecord
	c.doWait(func() { out = c.ledger.Items() })
	return out
}

func (c *Core) Deleted() []models.RecentlyDeletedExpenseEntry {
	var out []models.RecentlyDeletedExpenseEntry
	c.doWait(func() { out = c.ledger.Deleted() })
	return out
}

func (c *Core) Metadata() models.MetadataSnapshot {
	var out models.MetadataSnapshot
	c.doWait(func() { out = *c.snapshot })
	return out
}

// ---- retry / queue management ----

func (c *Core) RetryCapture(ctx context.Context, id string) error {
	var err error
	c.doWait(func() {
		if err = c.queue.Retry(id); err != nil {
			return
		}
		c.persistQueue()
		c.engine.RequestDrain(ctx)
	})
	return err
}

func (c *Core) RetryAllFailed(ctx context.Context) int {
	var n int
	c.doWait(func() {
		n = c.queue.RetryAllFailed()
		if n > 0 {
			c.persistQueue()
			c.engine.RequestDrain(ctx)
		}
	})
	return n
}

// DeleteCapture removes a queue entry. Saved entries whose expense still
// lives in the ledger are protected; delete the expense instead.
func (c *Core) DeleteCapture(id string) error {
	var err error
	c.doWait(func() {
		if err = c.queue.Delete(id, c.ledger.References); err != nil {
			return
		}
		c.persistQueue()
	})
	return err
}

// ---- sync ----

// Sync kicks every background reconciliation at once: queue drain, ledger
// refresh, metadata push and tombstone purge.
func (c *Core) Sync(ctx context.Context) {
	c.doWait(func() {
		c.engine.RequestDrain(ctx)
		c.refreshLedger(ctx)
		c.pushMetadata(ctx)
	})
	c.PurgeExpired(ctx)
}

// refreshLedger pulls the authoritative expense list and merges it in.
// Mailbox-side; the network call runs on its own goroutine.
func (c *Core) refreshLedger(ctx context.Context) {
	if c.refreshing {
		return
	}
	c.refreshing = true
	go func() {
		remote, err := c.api.ListExpenses(ctx)
		c.doWait(func() {
			c.refreshing = false
			if err != nil {
				c.log.Warn(ctx, "refreshing ledger", "error", err)
				return
			}
			c.ledger.MergeRemote(remote)
			c.persistLedger()
		})
	}()
}

// ---- review ----

// ReviewEdit is the reviewed draft as the user confirmed it. Amount and
// ExpenseDate travel as strings straight from the edit form.
type ReviewEdit struct {
	Amount          string
	Currency        string
	Category        string
	CategoryID      string
	Description     string
	Merchant        string
	ExpenseDate     string
	TripID          string
	PaymentMethodID string
}

// ReviewSave confirms a needs-review capture. Validation failures mutate
// nothing so the review stays open; on success the server row is replaced
// and the local ledger committed.
func (c *Core) ReviewSave(ctx context.Context, captureID string, edit ReviewEdit) error {
	amount, err := decimal.NewFromString(edit.Amount)
	if err != nil || !amount.IsPositive() {
		return ErrInvalidAmount
	}

	var (
		serverID string
		req      *api.UpdateExpenseRequest
		buildErr error
	)
	c.doWait(func() {
		item, ok := c.queue.Get(captureID)
		if !ok {
			buildErr = common.ErrNotFound
			return
		}
		if item.Status != models.StatusNeedsReview || item.ParsedDraft == nil || item.ServerExpenseID == "" {
			buildErr = common.ErrValidation
			return
		}
		serverID = item.ServerExpenseID
		req = buildUpdateRequest(amount, edit, item)
	})
	if buildErr != nil {
		return buildErr
	}

	rec, err := c.api.UpdateExpense(ctx, serverID, req)
	if err != nil {
		return err
	}

	c.doWait(func() {
		c.ledger.Upsert(rec)
		draft := draftFromRecord(rec)
		if audioPath := c.queue.MarkSaved(captureID, rec.ID, draft); audioPath != "" {
			if rmErr := os.Remove(audioPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				c.log.Warn(ctx, "removing audio file", "path", audioPath, "error", rmErr)
			}
		}
		c.persistQueue()
		c.persistLedger()
	})
	return nil
}

func buildUpdateRequest(amount decimal.Decimal, edit ReviewEdit, item *models.QueuedCapture) *api.UpdateExpenseRequest {
	draft := item.ParsedDraft
	req := &api.UpdateExpenseRequest{
		Amount:          amount.String(),
		Currency:        edit.Currency,
		Category:        edit.Category,
		CategoryID:      edit.CategoryID,
		Description:     edit.Description,
		Merchant:        edit.Merchant,
		ExpenseDate:     edit.ExpenseDate,
		TripID:          edit.TripID,
		PaymentMethodID: edit.PaymentMethodID,
		RawText:         item.RawText,
	}
	// Fields the form left blank keep the parsed draft's values.
	if req.Currency == "" {
		req.Currency = draft.Currency
	}
	if req.Category == "" {
		req.Category = draft.Category
		req.CategoryID = draft.CategoryID
	}
	if req.Description == "" {
		req.Description = draft.Description
	}
	if req.Merchant == "" {
		req.Merchant = draft.Merchant
	}
	if req.ExpenseDate == "" {
		req.ExpenseDate = draft.ExpenseDate.Format("2006-01-02")
	}
	if req.TripID == "" {
		req.TripID = item.TripID
	}
	if req.PaymentMethodID == "" {
		req.PaymentMethodID = item.PaymentMethodID
	}
	return req
}

func draftFromRecord(rec *models.ExpenseRecord) *models.ExpenseDraft {
	return &models.ExpenseDraft{
		Amount:      rec.Amount,
		Currency:    rec.Currency,
		Category:    rec.Category,
		CategoryID:  rec.CategoryID,
		Description: rec.Description,
		Merchant:    rec.Merchant,
		ExpenseDate: rec.ExpenseDate,
		Confidence:  rec.ParseConfidence,
	}
}

// ---- delete / restore / purge ----

// DeleteExpense removes a ledger row optimistically: the row and its queue
// entries disappear immediately and a tombstone is kept. The remote delete
// runs in the background; if it fails, everything is rolled back and the
// operational error banner is set.
func (c *Core) DeleteExpense(ctx context.Context, expenseID string) error {
	var err error
	c.doWait(func() {
		rec, ok := c.ledger.Remove(expenseID)
		if !ok {
			err = common.ErrNotFound
			return
		}
		entries := c.queue.RemoveByClientExpenseID(rec.ClientExpenseID)
		c.ledger.AddTombstone(*rec, entries, c.now())
		c.persistQueue()
		c.persistLedger()

		go c.remoteDelete(ctx, expenseID)
	})
	return err
}

func (c *Core) remoteDelete(ctx context.Context, expenseID string) {
	err := c.api.DeleteExpense(ctx, expenseID)
	if err == nil || errors.Is(err, common.ErrNotFound) {
		return
	}
	c.log.Warn(ctx, "remote delete failed, rolling back", "expense", expenseID, "error", err)
	c.doWait(func() {
		entry, ok := c.ledger.RemoveTombstone(expenseID)
		if !ok {
			return
		}
		rec := entry.Expense
		c.ledger.Upsert(&rec)
		for i := range entry.QueueEntries {
			e := entry.QueueEntries[i]
			if addErr := c.queue.Add(&e); addErr != nil {
				c.log.Error(ctx, "restoring queue entry after failed delete", "capture", e.ID, "error", addErr)
			}
		}
		c.opErr = MsgDeleteFailed
		c.persistQueue()
		c.persistLedger()
	})
}

// RestoreDeleted brings a tombstoned expense back, queue entries included.
func (c *Core) RestoreDeleted(expenseID string) error {
	var err error
	c.doWait(func() {
		var entries []models.QueuedCapture
		entries, err = c.ledger.Restore(expenseID)
		if err != nil {
			return
		}
		for i := range entries {
			e := entries[i]
			if addErr := c.queue.Add(&e); addErr != nil {
				c.log.Error(context.Background(), "restoring queue entry", "capture", e.ID, "error", addErr)
			}
		}
		c.persistQueue()
		c.persistLedger()
	})
	return err
}

// PurgeExpired drops tombstones past the retention window. Each purged
// expense gets exactly one best-effort remote delete; a purged tombstone is
// never seen again, so the delete cannot repeat.
func (c *Core) PurgeExpired(ctx context.Context) int {
	var purged []models.RecentlyDeletedExpenseEntry
	c.doWait(func() {
		purged = c.ledger.PurgeExpired(c.now())
		if len(purged) > 0 {
			c.persistLedger()
		}
	})
	for _, entry := range purged {
		id := entry.Expense.ID
		go func() {
			if err := c.api.DeleteExpense(ctx, id); err != nil && !errors.Is(err, common.ErrNotFound) {
				c.log.Warn(ctx, "purge-time remote delete", "expense", id, "error", err)
			}
		}()
	}
	return len(purged)
}

// ---- metadata ----

// ReplaceMetadata installs an edited taxonomy snapshot locally and marks it
// dirty for push.
func (c *Core) ReplaceMetadata(ctx context.Context, snap *models.MetadataSnapshot) {
	c.doWait(func() {
		c.snapshot = snap
		c.metaDirty = true
		c.persistMetadata()
		c.pushMetadata(ctx)
	})
}

// pushMetadata sends the snapshot wholesale. Mailbox-side. At most one push
// is in flight; edits made while one runs set the dirty flag again and get
// exactly one follow-up push when it completes.
func (c *Core) pushMetadata(ctx context.Context) {
	if c.metaInFlight || !c.metaDirty {
		return
	}
	c.metaInFlight = true
	c.metaDirty = false
	snap := *c.snapshot

	go func() {
		err := c.api.SyncMetadata(ctx, &snap)
		c.doWait(func() {
			c.metaInFlight = false
			if err != nil {
				c.metaDirty = true
				c.log.Warn(ctx, "pushing metadata", "error", err)
				return
			}
			c.pushMetadata(ctx)
		})
	}()
}

// RefreshMetadata pulls the server's snapshot, replacing the local one.
// A locally dirty snapshot wins; the refresh is skipped until it is pushed.
func (c *Core) RefreshMetadata(ctx context.Context) error {
	var dirty bool
	c.doWait(func() { dirty = c.metaDirty || c.metaInFlight })
	if dirty {
		return nil
	}

	snap, err := c.api.FetchMetadata(ctx)
	if err != nil {
		return err
	}
	c.doWait(func() {
		c.snapshot = snap
		c.persistMetadata()
	})
	return nil
}

// ---- auth ----

// Login authenticates and kicks the drains that were waiting on a session.
func (c *Core) Login(ctx context.Context, username, password string) error {
	token, err := c.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	c.api.SetToken(token)
	c.doWait(func() {
		c.engine.RequestDrain(ctx)
		c.refreshLedger(ctx)
		c.pushMetadata(ctx)
	})
	return nil
}

// Register creates an account and signs in.
func (c *Core) Register(ctx context.Context, username, password, defaultCurrency string) error {
	token, err := c.api.Register(ctx, username, password, defaultCurrency)
	if err != nil {
		return err
	}
	c.api.SetToken(token)
	c.doWait(func() {
		c.engine.RequestDrain(ctx)
		c.refreshLedger(ctx)
	})
	return c.RefreshMetadata(ctx)
}
