package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) IncrementVoice(ctx context.Context, userID, day string) (int, error) {
	query := `
		INSERT INTO voice_usage (user_id, day, count) VALUES ($1, $2, 1)
		ON CONFLICT (user_id, day) DO UPDATE SET count = voice_usage.count + 1
		RETURNING count`
	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, day).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to increment voice usage: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) VoiceCount(ctx context.Context, userID, day string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count FROM voice_usage WHERE user_id=$1 AND day=$2`, userID, day).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to select voice usage: %w", err)
	}
	return count, nil
}
