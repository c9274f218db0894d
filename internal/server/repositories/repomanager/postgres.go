// PostgreSQL RepositoryManager: wires repository constructors and database
// migrations (via goose) to one *sql.DB.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/aguerraochoa/Speakance-sub000/internal/server/migrations"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/repositories/expenses"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/repositories/metadata"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/repositories/usage"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/repositories/users"
)

type PostgresRepositoryManager struct {
	db       *sql.DB
	users    users.Repository
	expenses expenses.Repository
	usage    usage.Repository
	metadata metadata.Repository
}

func NewPostgresRepositoryManager(dsn string) (*PostgresRepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresRepositoryManager{
		db:       db,
		users:    users.NewPostgresRepository(db),
		expenses: expenses.NewPostgresRepository(db),
		usage:    usage.NewPostgresRepository(db),
		metadata: metadata.NewPostgresRepository(db),
	}

	if err := m.RunMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}

func (m *PostgresRepositoryManager) Users() users.Repository         { return m.users }
func (m *PostgresRepositoryManager) Expenses() expenses.Repository   { return m.expenses }
func (m *PostgresRepositoryManager) Usage() usage.Repository         { return m.usage }
func (m *PostgresRepositoryManager) Metadata() metadata.Repository   { return m.metadata }

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
