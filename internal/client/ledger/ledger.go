// Package ledger holds the confirmed expense records, deduplicates them by
// client and server identity, merges remote snapshots and manages the
// recently-deleted tombstone set.
package ledger

import (
	"sort"
	"time"

	"github.com/aguerraochoa/Speakance-sub000/internal/client/models"
	"github.com/aguerraochoa/Speakance-sub000/internal/common"
)

// TombstoneRetention is how long a deleted expense can still be restored.
const TombstoneRetention = common.TombstoneRetentionDays * 24 * time.Hour

// Ledger is pure in-memory state owned by the core loop; it performs no I/O
// and is not safe for concurrent use.
type Ledger struct {
	expenses []*models.ExpenseRecord
	deleted  []*models.RecentlyDeletedExpenseEntry
}

// New builds a ledger from persisted state and deduplicates it immediately.
func New(expenses []models.ExpenseRecord, deleted []models.RecentlyDeletedExpenseEntry) *Ledger {
	l := &Ledger{}
	for i := range expenses {
		e := expenses[i]
		l.expenses = append(l.expenses, &e)
	}
	for i := range deleted {
		d := deleted[i]
		l.deleted = append(l.deleted, &d)
	}
	l.Dedup()
	return l
}

// Upsert commits a record: an existing row sharing the server id or the
// clientExpenseID is replaced, otherwise the record is inserted. The ledger
// is deduplicated afterwards.
func (l *Ledger) Upsert(rec *models.ExpenseRecord) {
	for i, e := range l.expenses {
		if (rec.ID != "" && e.ID == rec.ID) || e.ClientExpenseID == rec.ClientExpenseID {
			l.expenses[i] = rec
			l.Dedup()
			return
		}
	}
	l.expenses = append(l.expenses, rec)
	l.Dedup()
}

// Get returns the record with the given server id.
func (l *Ledger) Get(id string) (*models.ExpenseRecord, bool) {
	for _, e := range l.expenses {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// FindByClientExpenseID returns the record correlated with a queue capture.
func (l *Ledger) FindByClientExpenseID(clientExpenseID string) (*models.ExpenseRecord, bool) {
	for _, e := range l.expenses {
		if e.ClientExpenseID == clientExpenseID {
			return e, true
		}
	}
	return nil, false
}

// References reports whether any ledger row points at the given capture
// identifiers. Used as the queue's delete guard.
func (l *Ledger) References(clientExpenseID, serverExpenseID string) bool {
	for _, e := range l.expenses {
		if (clientExpenseID != "" && e.ClientExpenseID == clientExpenseID) ||
			(serverExpenseID != "" && e.ID == serverExpenseID) {
			return true
		}
	}
	return false
}

// Items returns a snapshot sorted newest expense date first.
func (l *Ledger) Items() []models.ExpenseRecord {
	out := make([]models.ExpenseRecord, 0, len(l.expenses))
	for _, e := range l.expenses {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpenseDate.Equal(out[j].ExpenseDate) {
			return out[i].ExpenseDate.After(out[j].ExpenseDate)
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

func (l *Ledger) Len() int { return len(l.expenses) }

// Dedup enforces the authority invariant: within the records sharing a
// clientExpenseID the most recently updated one is authoritative, likewise
// within the records sharing a server id; a record survives only if it is
// authoritative for both groupings.
func (l *Ledger) Dedup() {
	authorityByClient := make(map[string]*models.ExpenseRecord)
	for _, e := range l.expenses {
		if e.ClientExpenseID == "" {
			continue
		}
		cur, ok := authorityByClient[e.ClientExpenseID]
		if !ok || e.UpdatedAt.After(cur.UpdatedAt) {
			authorityByClient[e.ClientExpenseID] = e
		}
	}
	authorityByID := make(map[string]*models.ExpenseRecord)
	for _, e := range l.expenses {
		if e.ID == "" {
			continue
		}
		cur, ok := authorityByID[e.ID]
		if !ok || e.UpdatedAt.After(cur.UpdatedAt) {
			authorityByID[e.ID] = e
		}
	}

	kept := l.expenses[:0]
	for _, e := range l.expenses {
		if e.ClientExpenseID != "" && authorityByClient[e.ClientExpenseID] != e {
			continue
		}
		if e.ID != "" && authorityByID[e.ID] != e {
			continue
		}
		kept = append(kept, e)
	}
	l.expenses = kept
}

// MergeRemote merges the server's full expense list into the ledger. Remote
// rows whose identities are currently tombstoned are dropped first so a
// delete-then-refresh race cannot resurrect a deleted expense.
func (l *Ledger) MergeRemote(remote []*models.ExpenseRecord) {
	for _, rec := range remote {
		if l.isTombstoned(rec.ID, rec.ClientExpenseID) {
			continue
		}
		l.mergeOne(rec)
	}
	l.Dedup()
}

// mergeOne is Upsert without the per-record dedup pass.
func (l *Ledger) mergeOne(rec *models.ExpenseRecord) {
	for i, e := range l.expenses {
		if (rec.ID != "" && e.ID == rec.ID) || e.ClientExpenseID == rec.ClientExpenseID {
			l.expenses[i] = rec
			return
		}
	}
	l.expenses = append(l.expenses, rec)
}

func (l *Ledger) isTombstoned(serverID, clientExpenseID string) bool {
	for _, d := range l.deleted {
		if (serverID != "" && d.Expense.ID == serverID) ||
			(clientExpenseID != "" && d.Expense.ClientExpenseID == clientExpenseID) {
			return true
		}
	}
	return false
}

// Remove deletes a record from the live set and returns it. It does not
// create a tombstone; callers pair it with AddTombstone.
func (l *Ledger) Remove(id string) (*models.ExpenseRecord, bool) {
	for i, e := range l.expenses {
		if e.ID == id {
			l.expenses = append(l.expenses[:i], l.expenses[i+1:]...)
			return e, true
		}
	}
	return nil, false
}

// AddTombstone records a deleted expense plus the queue entries that
// referenced it.
func (l *Ledger) AddTombstone(expense models.ExpenseRecord, queueEntries []models.QueuedCapture, deletedAt time.Time) {
	l.deleted = append(l.deleted, &models.RecentlyDeletedExpenseEntry{
		Expense:      expense,
		QueueEntries: queueEntries,
		DeletedAt:    deletedAt,
	})
}

// RemoveTombstone drops the tombstone for the given expense id, returning
// it. Used by both restore and permanent delete.
func (l *Ledger) RemoveTombstone(expenseID string) (*models.RecentlyDeletedExpenseEntry, bool) {
	for i, d := range l.deleted {
		if d.Expense.ID == expenseID {
			l.deleted = append(l.deleted[:i], l.deleted[i+1:]...)
			return d, true
		}
	}
	return nil, false
}

// Restore reinserts a tombstoned expense into the live set and returns the
// queue entries to be reinstated alongside it.
func (l *Ledger) Restore(expenseID string) ([]models.QueuedCapture, error) {
	entry, ok := l.RemoveTombstone(expenseID)
	if !ok {
		return nil, common.ErrNotFound
	}
	rec := entry.Expense
	l.Upsert(&rec)
	return entry.QueueEntries, nil
}

// Deleted returns a snapshot of the tombstone set.
func (l *Ledger) Deleted() []models.RecentlyDeletedExpenseEntry {
	out := make([]models.RecentlyDeletedExpenseEntry, 0, len(l.deleted))
	for _, d := range l.deleted {
		out = append(out, *d)
	}
	return out
}

// PurgeExpired removes tombstones older than the retention window and
// returns them so the caller can issue one best-effort remote delete each.
func (l *Ledger) PurgeExpired(now time.Time) []models.RecentlyDeletedExpenseEntry {
	var purged []models.RecentlyDeletedExpenseEntry
	kept := l.deleted[:0]
	for _, d := range l.deleted {
		if now.Sub(d.DeletedAt) > TombstoneRetention {
			purged = append(purged, *d)
			continue
		}
		kept = append(kept, d)
	}
	l.deleted = kept
	return purged
}
