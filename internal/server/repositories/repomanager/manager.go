// Package repomanager vends the per-entity repositories as one bundle so the
// services layer takes a single dependency.
package repomanager

import (
	"context"

	"github.com/aguerraochoa/Speakance-sub000/internal/server/repositories/expenses"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/repositories/metadata"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/repositories/usage"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/repositories/users"
)

// RepositoryManager groups the stores behind one constructor-injected value.
type RepositoryManager interface {
	Users() users.Repository
	Expenses() expenses.Repository
	Usage() usage.Repository
	Metadata() metadata.Repository

	// RunMigrations brings the backing schema up to date; a no-op for
	// implementations without a schema.
	RunMigrations(ctx context.Context) error

	Close() error
}
