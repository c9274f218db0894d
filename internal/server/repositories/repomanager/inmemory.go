package repomanager

import (
	"context"

	"github.com/aguerraochoa/Speakance-sub000/internal/server/repositories/expenses"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/repositories/metadata"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/repositories/usage"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/repositories/users"
)

// InMemoryRepositoryManager backs the stores with maps. Used in tests and
// for running the server without Postgres.
type InMemoryRepositoryManager struct {
	users    users.Repository
	expenses expenses.Repository
	usage    usage.Repository
	metadata metadata.Repository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:    users.NewInMemoryRepository(),
		expenses: expenses.NewInMemoryRepository(),
		usage:    usage.NewInMemoryRepository(),
		metadata: metadata.NewInMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) Users() users.Repository       { return m.users }
func (m *InMemoryRepositoryManager) Expenses() expenses.Repository { return m.expenses }
func (m *InMemoryRepositoryManager) Usage() usage.Repository       { return m.usage }
func (m *InMemoryRepositoryManager) Metadata() metadata.Repository { return m.metadata }

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Close() error { return nil }
