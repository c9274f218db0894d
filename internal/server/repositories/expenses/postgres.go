package expenses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aguerraochoa/Speakance-sub000/internal/common"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/models"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const expenseColumns = `id, user_id, client_expense_id, amount, currency, category, category_id,
	description, merchant, trip_id, payment_method_id, expense_date, captured_at_device,
	synced_at, source, parse_status, parse_confidence, raw_text, created_at, updated_at`

func (r *PostgresRepository) UpsertByClientID(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,now(),now())
		ON CONFLICT (user_id, client_expense_id) DO UPDATE SET
			amount = EXCLUDED.amount,
			currency = EXCLUDED.currency,
			category = EXCLUDED.category,
			category_id = EXCLUDED.category_id,
			description = EXCLUDED.description,
			merchant = EXCLUDED.merchant,
			trip_id = EXCLUDED.trip_id,
			payment_method_id = EXCLUDED.payment_method_id,
			expense_date = EXCLUDED.expense_date,
			synced_at = EXCLUDED.synced_at,
			parse_status = EXCLUDED.parse_status,
			parse_confidence = EXCLUDED.parse_confidence,
			raw_text = EXCLUDED.raw_text,
			updated_at = now()
		RETURNING ` + expenseColumns

	row := r.db.QueryRowContext(ctx, query,
		e.ID, e.UserID, e.ClientExpenseID, e.Amount, e.Currency, e.Category, e.CategoryID,
		e.Description, e.Merchant, e.TripID, e.PaymentMethodID, e.ExpenseDate, e.CapturedAtDevice,
		nullTime(e.SyncedAt), e.Source, e.ParseStatus, e.ParseConfidence, e.RawText)

	out, err := scanExpense(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert expense: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, e *models.Expense) error {
	query := `
		UPDATE expenses SET
			amount=$3, currency=$4, category=$5, category_id=$6, description=$7,
			merchant=$8, trip_id=$9, payment_method_id=$10, expense_date=$11,
			parse_status=$12, parse_confidence=$13, raw_text=$14, updated_at=now()
		WHERE user_id=$1 AND id=$2`

	res, err := r.db.ExecContext(ctx, query,
		e.UserID, e.ID, e.Amount, e.Currency, e.Category, e.CategoryID, e.Description,
		e.Merchant, e.TripID, e.PaymentMethodID, e.ExpenseDate,
		e.ParseStatus, e.ParseConfidence, e.RawText)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE user_id=$1 AND id=$2`
	e, err := scanExpense(r.db.QueryRowContext(ctx, query, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select expense: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE user_id=$1 AND id=$2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE user_id=$1 ORDER BY expense_date DESC, created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select expenses: %w", err)
	}
	defer rows.Close()

	var result []*models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) ReassignCategory(ctx context.Context, userID, fromCategory, toCategory string) error {
	query := `UPDATE expenses SET category=$3, category_id='', updated_at=now() WHERE user_id=$1 AND category=$2`
	if _, err := r.db.ExecContext(ctx, query, userID, fromCategory, toCategory); err != nil {
		return fmt.Errorf("failed to reassign category: %w", err)
	}
	return nil
}

func (r *PostgresRepository) TrainingRows(ctx context.Context, userID string) (map[string][]string, error) {
	query := `SELECT category, description FROM expenses WHERE user_id=$1 AND description <> ''`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select training rows: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]string)
	for rows.Next() {
		var category, description string
		if err := rows.Scan(&category, &description); err != nil {
			return nil, err
		}
		result[category] = append(result[category], description)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	e := &models.Expense{}
	var syncedAt sql.NullTime
	err := row.Scan(&e.ID, &e.UserID, &e.ClientExpenseID, &e.Amount, &e.Currency, &e.Category,
		&e.CategoryID, &e.Description, &e.Merchant, &e.TripID, &e.PaymentMethodID,
		&e.ExpenseDate, &e.CapturedAtDevice, &syncedAt, &e.Source, &e.ParseStatus,
		&e.ParseConfidence, &e.RawText, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if syncedAt.Valid {
		e.SyncedAt = syncedAt.Time
	}
	return e, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
