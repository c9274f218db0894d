// Package expenses persists the canonical expense rows.
package expenses

import (
	"context"

	"github.com/aguerraochoa/Speakance-sub000/internal/server/models"
)

// Repository describes storage operations for Expense rows.
type Repository interface {
	// UpsertByClientID inserts the expense or, when a row with the same
	// (user, clientExpenseID) already exists, updates it in place and keeps
	// the existing server id. This is what makes repeated parse attempts
	// collapse onto one row.
	UpsertByClientID(ctx context.Context, e *models.Expense) (*models.Expense, error)

	// Update replaces the full draft of an existing row.
	Update(ctx context.Context, e *models.Expense) error

	// GetByID returns one of the user's expenses.
	GetByID(ctx context.Context, userID, id string) (*models.Expense, error)

	// DeleteByID removes one of the user's expenses.
	DeleteByID(ctx context.Context, userID, id string) error

	// ListByUser returns every expense of the user, newest expense date first.
	ListByUser(ctx context.Context, userID string) ([]*models.Expense, error)

	// ReassignCategory re-points every expense in the named category to the
	// replacement. Used when the user deletes a category.
	ReassignCategory(ctx context.Context, userID, fromCategory, toCategory string) error

	// TrainingRows returns (description, category) pairs for the user's rows,
	// feeding the bayesian category suggester.
	TrainingRows(ctx context.Context, userID string) (map[string][]string, error)
}
