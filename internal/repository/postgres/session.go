package postgres

import (
	"context"
	"database/sql"
	"securevault/internal/models"
	"securevault/internal/repository"
	"time"

	"github.com/google/uuid"
)

type sessionRepository struct {
	repository.BaseRepository
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{
		BaseRepository: repository.NewBaseRepository(db),
	}
}

const sessionColumns = `
	id, account_id, token, ip_address, user_agent,
	created_at, last_activity_at, expires_at, is_active`

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (
			id, account_id, token, ip_address, user_agent,
			created_at, last_activity_at, expires_at, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $6, $7, $8)`

	session.ID = uuid.New()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.LastActivityAt = now

	_, err := r.DB().ExecContext(ctx, query,
		session.ID,
		session.AccountID,
		session.Token,
		session.IPAddress,
		session.UserAgent,
		now,
		session.ExpiresAt,
		session.IsActive,
	)
	return err
}

func (r *sessionRepository) GetActiveByToken(ctx context.Context, token string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE token = $1 AND is_active = TRUE`

	session := &models.Session{}
	err := r.DB().QueryRowContext(ctx, query, token).Scan(
		&session.ID,
		&session.AccountID,
		&session.Token,
		&session.IPAddress,
		&session.UserAgent,
		&session.CreatedAt,
		&session.LastActivityAt,
		&session.ExpiresAt,
		&session.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (r *sessionRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE account_id = $1 ORDER BY created_at DESC`

	rows, err := r.DB().QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var session models.Session
		err := rows.Scan(
			&session.ID,
			&session.AccountID,
			&session.Token,
			&session.IPAddress,
			&session.UserAgent,
			&session.CreatedAt,
			&session.LastActivityAt,
			&session.ExpiresAt,
			&session.IsActive,
		)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (r *sessionRepository) TouchActivity(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE sessions SET last_activity_at = $1 WHERE id = $2`
	_, err := r.DB().ExecContext(ctx, query, at, id)
	return err
}

func (r *sessionRepository) Revoke(ctx context.Context, token string) error {
	// Idempotent: revoking an unknown or already-inactive token is a no-op
	query := `UPDATE sessions SET is_active = FALSE WHERE token = $1`
	_, err := r.DB().ExecContext(ctx, query, token)
	return err
}

func (r *sessionRepository) RevokeAllExcept(ctx context.Context, accountID uuid.UUID, keepToken string) error {
	query := `
		UPDATE sessions
		SET is_active = FALSE
		WHERE account_id = $1 AND is_active = TRUE AND token != $2`

	_, err := r.DB().ExecContext(ctx, query, accountID, keepToken)
	return err
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.DB().ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
