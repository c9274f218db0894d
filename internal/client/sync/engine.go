// Package sync drains the capture queue: it serializes queue draining,
// calls the remote parse endpoint per pending item, applies the refinement
// pass and commits results into the ledger.
package sync

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/aguerraochoa/Speakance-sub000/internal/client/api"
	"github.com/aguerraochoa/Speakance-sub000/internal/client/ledger"
	"github.com/aguerraochoa/Speakance-sub000/internal/client/models"
	"github.com/aguerraochoa/Speakance-sub000/internal/client/queue"
	"github.com/aguerraochoa/Speakance-sub000/internal/client/refine"
	"github.com/aguerraochoa/Speakance-sub000/internal/common"
	"github.com/aguerraochoa/Speakance-sub000/internal/logging"
)

// API is the slice of the HTTP client the engine needs.
type API interface {
	Parse(ctx context.Context, req *api.ParseRequest) (*api.ParseResponse, error)
}

// Uploader moves local voice audio into object storage before parsing.
type Uploader interface {
	PresignAudio(ctx context.Context) (url, objectKey string, err error)
	UploadAudio(ctx context.Context, presignedURL, localPath string) error
}

// Dispatcher runs fn on the execution context that owns the queue and
// ledger, returning once fn has run. The core loop supplies its mailbox;
// tests supply an inline runner.
type Dispatcher func(fn func())

// Options wires an Engine.
type Options struct {
	API      API
	Queue    *queue.Queue
	Ledger   *ledger.Ledger
	Dispatch Dispatcher

	// Refiner returns the refinement pass built from the current metadata
	// snapshot; looked up per item so mid-drain taxonomy edits apply.
	Refiner func() *refine.Refiner

	// Online is the connectivity gate; a drain request while offline is a
	// no-op.
	Online func(ctx context.Context) bool

	// Uploader pushes voice audio to object storage before parsing; nil
	// disables uploads and voice items parse from their transcript alone.
	Uploader Uploader

	// RemoveAudio deletes a local audio file once its capture is saved.
	RemoveAudio func(path string)

	// AudioExists reports whether a local audio file is still present;
	// defaults to an os.Stat check.
	AudioExists func(path string) bool

	// OnDrainDone runs on the owner context after a drain finishes; the
	// core uses it to persist and to re-check for work.
	OnDrainDone func()

	Timezone      string
	AllowAutoSave bool
	Log           logging.Logger
}

// Engine serializes queue drains. The inFlight flag is owned by the
// dispatcher context; at most one drain runs at a time and requests while
// one is running are no-ops.
type Engine struct {
	opts     Options
	inFlight bool
}

func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// InFlight reports whether a drain is currently running. Must be called on
// the owner context.
func (e *Engine) InFlight() bool { return e.inFlight }

// RequestDrain starts a drain unless one is already running or the network
// is unreachable. Must be called on the owner context.
func (e *Engine) RequestDrain(ctx context.Context) {
	if e.inFlight {
		return
	}
	if e.opts.Online != nil && !e.opts.Online(ctx) {
		return
	}

	ids := e.opts.Queue.PendingIDs()
	if len(ids) == 0 {
		return
	}
	e.inFlight = true

	go e.drain(ctx, ids)
}

// drain walks a snapshot of pending ids. Network calls happen on this
// goroutine; every state mutation is dispatched back to the owner context.
func (e *Engine) drain(ctx context.Context, ids []string) {
	defer e.opts.Dispatch(func() {
		e.inFlight = false
		if e.opts.OnDrainDone != nil {
			e.opts.OnDrainDone()
		}
	})

	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}

		var req *api.ParseRequest
		audioPath := ""
		e.opts.Dispatch(func() {
			item, ok := e.opts.Queue.Get(id)
			if !ok || !e.opts.Queue.MarkSyncing(id) {
				return
			}
			req = e.buildRequest(item)
			audioPath = item.LocalAudioFilePath
		})
		if req == nil {
			continue
		}

		if stop := e.uploadAudio(ctx, id, req, audioPath); stop {
			return
		}

		resp, err := e.opts.API.Parse(ctx, req)

		stop := false
		e.opts.Dispatch(func() {
			stop = e.applyResult(ctx, id, resp, err)
		})
		if stop {
			return
		}
	}
}

// uploadAudio moves a voice capture's audio into object storage before the
// parse call. A missing local file with a transcript on hand degrades to a
// text-only parse; upload failures follow the ordinary failure rules. The
// returned bool stops the batch (auth failure during presign).
func (e *Engine) uploadAudio(ctx context.Context, id string, req *api.ParseRequest, audioPath string) (stop bool) {
	if req.Source != string(models.SourceVoice) || audioPath == "" || e.opts.Uploader == nil {
		return false
	}

	exists := true
	if e.opts.AudioExists != nil {
		exists = e.opts.AudioExists(audioPath)
	} else if _, err := os.Stat(audioPath); err != nil {
		exists = false
	}
	if !exists {
		if req.RawText != "" {
			// Transcript is enough; parse text-only instead of failing.
			return false
		}
		e.opts.Dispatch(func() { e.opts.Queue.MarkFailed(id, "audio file missing") })
		return false
	}

	url, key, err := e.opts.Uploader.PresignAudio(ctx)
	if err == nil {
		err = e.opts.Uploader.UploadAudio(ctx, url, audioPath)
	}

	if err != nil {
		e.opts.Dispatch(func() { stop = e.applyResult(ctx, id, nil, err) })
		return stop
	}

	req.AudioObjectKey = key
	e.opts.Dispatch(func() {
		if item, ok := e.opts.Queue.Get(id); ok {
			item.LocalAudioFilePath = ""
		}
	})
	if e.opts.RemoveAudio != nil {
		e.opts.RemoveAudio(audioPath)
	}
	return false
}

func (e *Engine) buildRequest(item *models.QueuedCapture) *api.ParseRequest {
	return &api.ParseRequest{
		ClientExpenseID:      item.ClientExpenseID,
		Source:               string(item.Source),
		CapturedAtDevice:     item.CapturedAt.Format(time.RFC3339),
		Timezone:             e.opts.Timezone,
		AudioDurationSeconds: item.AudioDurationSeconds,
		RawText:              item.RawText,
		AllowAutoSave:        e.opts.AllowAutoSave,
		TripID:               item.TripID,
		PaymentMethodID:      item.PaymentMethodID,
	}
}

// applyResult applies one parse outcome on the owner context. The returned
// bool stops the batch, which only an authentication failure does.
func (e *Engine) applyResult(ctx context.Context, id string, resp *api.ParseResponse, err error) bool {
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			// Auth failures recover by signing in; pause the item and stop
			// the batch since the rest would fail identically.
			e.opts.Queue.PauseForAuth(id)
			e.opts.Log.Warn(ctx, "drain paused for authentication", "capture", id)
			return true
		}
		e.opts.Queue.MarkFailed(id, err.Error())
		return false
	}

	if (resp.Status == api.StatusSaved || resp.Status == api.StatusNeedsReview) && resp.Expense == nil {
		e.opts.Queue.MarkFailed(id, common.ErrProtocol.Error()+": "+resp.Status+" response without an expense")
		return false
	}

	switch resp.Status {
	case api.StatusSaved:
		draft := e.refinedDraft(id, resp)
		record := e.recordFrom(resp, draft)
		e.opts.Ledger.Upsert(record)
		audioPath := e.opts.Queue.MarkSaved(id, record.ID, draft)
		if audioPath != "" && e.opts.RemoveAudio != nil {
			e.opts.RemoveAudio(audioPath)
		}

	case api.StatusNeedsReview:
		draft := e.refinedDraft(id, resp)
		serverID := ""
		if resp.Expense != nil {
			serverID = resp.Expense.ID
		}
		e.opts.Queue.MarkNeedsReview(id, serverID, draft)

	case api.StatusRejectedLimit:
		e.opts.Queue.MarkFailed(id, "daily voice limit reached")

	case api.StatusError:
		e.opts.Queue.MarkFailed(id, resp.Error)

	default:
		// Unknown status values are a protocol violation, not a crash.
		e.opts.Queue.MarkFailed(id, common.ErrProtocol.Error()+": unexpected parse status "+resp.Status)
	}
	return false
}

// refinedDraft builds the editable draft from the server echo and runs the
// local refinement pass over it.
func (e *Engine) refinedDraft(id string, resp *api.ParseResponse) *models.ExpenseDraft {
	if resp.Expense == nil {
		return nil
	}
	p := resp.Expense

	draft := &models.ExpenseDraft{
		Amount:      p.Amount,
		Currency:    p.Currency,
		Category:    p.Category,
		CategoryID:  p.CategoryID,
		Description: p.Description,
		Merchant:    p.Merchant,
		ExpenseDate: p.ToRecord().ExpenseDate,
	}
	if resp.Parse != nil {
		draft.Confidence = resp.Parse.Confidence
	}

	item, ok := e.opts.Queue.Get(id)
	if ok && e.opts.Refiner != nil {
		pmID := e.opts.Refiner().Apply(draft, item.RawText, item.CapturedAt, item.PaymentMethodID)
		item.PaymentMethodID = pmID
	}
	return draft
}

// recordFrom folds the refined draft back into the server echo, preferring
// a serverExpenseID the queue already knew.
func (e *Engine) recordFrom(resp *api.ParseResponse, draft *models.ExpenseDraft) *models.ExpenseRecord {
	record := resp.Expense.ToRecord()
	if draft != nil {
		record.Currency = draft.Currency
		record.Category = draft.Category
		record.CategoryID = draft.CategoryID
		record.ExpenseDate = draft.ExpenseDate
		if draft.Merchant != "" {
			record.Merchant = draft.Merchant
		}
	}
	if item, ok := e.opts.Queue.Get(recordQueueID(e.opts.Queue, record.ClientExpenseID)); ok {
		if item.ServerExpenseID != "" {
			record.ID = item.ServerExpenseID
		}
		if item.PaymentMethodID != "" {
			record.PaymentMethodID = item.PaymentMethodID
		}
	}
	return record
}

func recordQueueID(q *queue.Queue, clientExpenseID string) string {
	for _, item := range q.Items() {
		if item.ClientExpenseID == clientExpenseID {
			return item.ID
		}
	}
	return ""
}
