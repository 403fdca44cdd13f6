package postgres

import (
	"context"
	"database/sql"
	"securevault/internal/models"
	"securevault/internal/repository"
	"time"

	"github.com/google/uuid"
)

type loginAttemptRepository struct {
	repository.BaseRepository
}

// NewLoginAttemptRepository creates a new PostgreSQL login attempt repository
func NewLoginAttemptRepository(db *sql.DB) repository.LoginAttemptRepository {
	return &loginAttemptRepository{
		BaseRepository: repository.NewBaseRepository(db),
	}
}

func (r *loginAttemptRepository) Create(ctx context.Context, attempt *models.LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (
			id, account_id, username_attempted, success,
			ip_address, user_agent, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	attempt.ID = uuid.New()
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}

	_, err := r.DB().ExecContext(ctx, query,
		attempt.ID,
		attempt.AccountID,
		attempt.UsernameAttempted,
		attempt.Success,
		attempt.IPAddress,
		attempt.UserAgent,
		attempt.CreatedAt,
	)
	return err
}

func (r *loginAttemptRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID, limit int) ([]models.LoginAttempt, error) {
	query := `
		SELECT id, account_id, username_attempted, success,
		       ip_address, user_agent, created_at
		FROM login_attempts
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.DB().QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []models.LoginAttempt
	for rows.Next() {
		var attempt models.LoginAttempt
		err := rows.Scan(
			&attempt.ID,
			&attempt.AccountID,
			&attempt.UsernameAttempted,
			&attempt.Success,
			&attempt.IPAddress,
			&attempt.UserAgent,
			&attempt.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

func (r *loginAttemptRepository) CountRecentFailures(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM login_attempts
		WHERE account_id = $1 AND success = FALSE AND created_at >= $2`

	var count int
	err := r.DB().QueryRowContext(ctx, query, accountID, since).Scan(&count)
	return count, err
}

func (r *loginAttemptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.DB().ExecContext(ctx, `DELETE FROM login_attempts WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
