// Package queue holds the offline capture queue: an ordered collection of
// unconfirmed captures with a status state machine and retry bookkeeping.
package queue

import (
	"fmt"

	"github.com/aguerraochoa/Speakance-sub000/internal/client/models"
	"github.com/aguerraochoa/Speakance-sub000/internal/common"
)

// Queue is pure in-memory state. It performs no I/O and is not safe for
// concurrent use; the core loop owns it and serializes access.
type Queue struct {
	items []*models.QueuedCapture
}

// New builds a queue from previously persisted captures. Items stranded in
// syncing by a crash are reset to pending and duplicates are collapsed.
func New(items []models.QueuedCapture) *Queue {
	q := &Queue{}
	for i := range items {
		item := items[i]
		if item.Status == models.StatusSyncing {
			item.Status = models.StatusPending
		}
		q.items = append(q.items, &item)
	}
	q.dedup()
	return q
}

// Add appends a new capture. It must already carry its clientExpenseID.
func (q *Queue) Add(c *models.QueuedCapture) error {
	if c.ID == "" || c.ClientExpenseID == "" {
		return fmt.Errorf("%w: capture needs local and client ids", common.ErrValidation)
	}
	q.items = append(q.items, c)
	q.dedup()
	return nil
}

// Get returns the capture with the given local id.
func (q *Queue) Get(id string) (*models.QueuedCapture, bool) {
	for _, item := range q.items {
		if item.ID == id {
			return item, true
		}
	}
	return nil, false
}

// Items returns a snapshot copy; callers may hold it across mutations.
func (q *Queue) Items() []models.QueuedCapture {
	out := make([]models.QueuedCapture, 0, len(q.items))
	for _, item := range q.items {
		out = append(out, *item)
	}
	return out
}

func (q *Queue) Len() int { return len(q.items) }

// PendingIDs snapshots the local ids currently eligible for a drain.
func (q *Queue) PendingIDs() []string {
	var ids []string
	for _, item := range q.items {
		if item.Status == models.StatusPending {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// MarkSyncing transitions a pending capture into syncing and clears its
// last error. Returns false if the item is gone or no longer pending.
func (q *Queue) MarkSyncing(id string) bool {
	item, ok := q.Get(id)
	if !ok || item.Status != models.StatusPending {
		return false
	}
	item.Status = models.StatusSyncing
	item.LastError = ""
	return true
}

// MarkSaved finalizes a capture. The audio path is cleared and returned so
// the caller can delete the file; the queue itself never touches the disk.
func (q *Queue) MarkSaved(id, serverExpenseID string, draft *models.ExpenseDraft) (audioPath string) {
	item, ok := q.Get(id)
	if !ok {
		return ""
	}
	item.Status = models.StatusSaved
	item.ServerExpenseID = serverExpenseID
	item.ParsedDraft = draft
	item.LastError = ""
	audioPath = item.LocalAudioFilePath
	item.LocalAudioFilePath = ""
	q.dedup()
	return audioPath
}

// MarkNeedsReview parks a capture for human review with its draft attached.
func (q *Queue) MarkNeedsReview(id, serverExpenseID string, draft *models.ExpenseDraft) {
	item, ok := q.Get(id)
	if !ok {
		return
	}
	item.Status = models.StatusNeedsReview
	item.ServerExpenseID = serverExpenseID
	item.ParsedDraft = draft
}

// MarkFailed records a retryable failure: retryCount goes up by one and the
// error message is kept for display.
func (q *Queue) MarkFailed(id, errMsg string) {
	item, ok := q.Get(id)
	if !ok {
		return
	}
	item.Status = models.StatusFailed
	item.RetryCount++
	item.LastError = errMsg
	item.ParsedDraft = nil
}

// PauseForAuth puts a capture back to pending without touching retryCount.
// Auth failures recover by signing in, not by retrying.
func (q *Queue) PauseForAuth(id string) {
	item, ok := q.Get(id)
	if !ok {
		return
	}
	item.Status = models.StatusPending
}

// Retry resets one failed or pending capture to pending and clears its
// last error.
func (q *Queue) Retry(id string) error {
	item, ok := q.Get(id)
	if !ok {
		return common.ErrNotFound
	}
	if !item.Retryable() {
		return fmt.Errorf("%w: capture is %s", common.ErrValidation, item.Status)
	}
	item.Status = models.StatusPending
	item.LastError = ""
	return nil
}

// RetryAllFailed resets every failed capture to pending. retryCount and
// lastError are deliberately left alone on the bulk path.
func (q *Queue) RetryAllFailed() int {
	n := 0
	for _, item := range q.items {
		if item.Status == models.StatusFailed {
			item.Status = models.StatusPending
			n++
		}
	}
	return n
}

// Delete removes a capture unless a ledger row still references it, in which
// case the entry is retained as a sync artifact.
func (q *Queue) Delete(id string, referencedByLedger func(clientExpenseID, serverExpenseID string) bool) error {
	for i, item := range q.items {
		if item.ID != id {
			continue
		}
		if referencedByLedger != nil && referencedByLedger(item.ClientExpenseID, item.ServerExpenseID) {
			return fmt.Errorf("%w: capture is referenced by a ledger expense", common.ErrValidation)
		}
		q.items = append(q.items[:i], q.items[i+1:]...)
		return nil
	}
	return common.ErrNotFound
}

// RemoveByClientExpenseID removes every capture correlated with the given
// idempotency key and returns the removed entries. Used by expense delete,
// which tombstones them alongside the ledger row.
func (q *Queue) RemoveByClientExpenseID(clientExpenseID string) []models.QueuedCapture {
	var removed []models.QueuedCapture
	kept := q.items[:0]
	for _, item := range q.items {
		if item.ClientExpenseID == clientExpenseID {
			removed = append(removed, *item)
			continue
		}
		kept = append(kept, item)
	}
	q.items = kept
	return removed
}

// dedup collapses entries sharing a local id, and entries sharing a
// clientExpenseID when the newer one is already saved (the stale duplicate
// is dropped).
func (q *Queue) dedup() {
	byID := make(map[string]bool, len(q.items))
	kept := q.items[:0]
	for _, item := range q.items {
		if byID[item.ID] {
			continue
		}
		byID[item.ID] = true
		kept = append(kept, item)
	}
	q.items = kept

	lastSavedByClientID := make(map[string]int)
	for i, item := range q.items {
		if item.Status == models.StatusSaved {
			lastSavedByClientID[item.ClientExpenseID] = i
		}
	}

	kept = q.items[:0]
	for i, item := range q.items {
		// An entry is stale only when a newer saved entry carries the same
		// key. A newer non-saved entry after an old saved one is a fresh
		// capture and survives.
		if j, ok := lastSavedByClientID[item.ClientExpenseID]; ok && j > i {
			continue
		}
		kept = append(kept, item)
	}
	q.items = kept
}
