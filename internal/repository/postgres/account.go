package postgres

import (
	"context"
	"database/sql"
	"securevault/internal/models"
	"securevault/internal/repository"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	uniqueViolation    = "23505"
	usernameConstraint = "idx_accounts_username"
	emailConstraint    = "idx_accounts_email"
)

type accountRepository struct {
	repository.BaseRepository
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(db *sql.DB) repository.AccountRepository {
	return &accountRepository{
		BaseRepository: repository.NewBaseRepository(db),
	}
}

const accountColumns = `
	id, username, email, password_hash, is_active, is_verified, mfa_enabled,
	failed_login_attempts, locked_until, verification_token,
	verification_expires, reset_token, reset_expires, last_login_at,
	created_at, updated_at`

func scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.IsActive,
		&account.IsVerified,
		&account.MFAEnabled,
		&account.FailedLoginAttempts,
		&account.LockedUntil,
		&account.VerificationToken,
		&account.VerificationExpires,
		&account.ResetToken,
		&account.ResetExpires,
		&account.LastLoginAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (
			id, username, email, password_hash, is_active, is_verified,
			mfa_enabled, failed_login_attempts, verification_token,
			verification_expires, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING created_at, updated_at`

	now := time.Now().UTC()
	account.ID = uuid.New()

	err := r.DB().QueryRowContext(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.IsActive,
		account.IsVerified,
		account.MFAEnabled,
		account.FailedLoginAttempts,
		account.VerificationToken,
		account.VerificationExpires,
		now,
	).Scan(&account.CreatedAt, &account.UpdatedAt)

	// The unique constraints are the authoritative uniqueness guard; the
	// handler's pre-checks are a fast path only.
	if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
		switch pqErr.Constraint {
		case usernameConstraint:
			return repository.ErrUsernameExists
		case emailConstraint:
			return repository.ErrEmailExists
		}
		return repository.ErrConflict
	}
	return err
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.DB().QueryRowContext(ctx, query, id))
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	return scanAccount(r.DB().QueryRowContext(ctx, query, username))
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(r.DB().QueryRowContext(ctx, query, email))
}

func (r *accountRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1 OR email = $1`
	return scanAccount(r.DB().QueryRowContext(ctx, query, identifier))
}

func (r *accountRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, lastLoginAt time.Time) error {
	query := `
		UPDATE accounts
		SET last_login_at = $1, updated_at = $1
		WHERE id = $2`

	result, err := r.DB().ExecContext(ctx, query, lastLoginAt, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) IncrementFailedAttempts(ctx context.Context, id uuid.UUID, threshold int, lockout time.Duration) (int, *time.Time, error) {
	// Single-statement increment: concurrent failures serialize on the row,
	// so no observed count is ever lost to a stale read.
	query := `
		UPDATE accounts
		SET failed_login_attempts = failed_login_attempts + 1,
		    locked_until = CASE
		        WHEN failed_login_attempts + 1 >= $2 THEN $3::timestamptz
		        ELSE locked_until
		    END,
		    updated_at = $4
		WHERE id = $1
		RETURNING failed_login_attempts, locked_until`

	now := time.Now().UTC()
	lockedUntil := now.Add(lockout)

	var attempts int
	var lock *time.Time
	err := r.DB().QueryRowContext(ctx, query, id, threshold, lockedUntil, now).Scan(&attempts, &lock)
	if err == sql.ErrNoRows {
		return 0, nil, repository.ErrAccountNotFound
	}
	if err != nil {
		return 0, nil, err
	}
	return attempts, lock, nil
}

func (r *accountRepository) ResetFailedAttempts(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE accounts
		SET failed_login_attempts = 0,
		    locked_until = NULL,
		    updated_at = $2
		WHERE id = $1`

	_, err := r.DB().ExecContext(ctx, query, id, time.Now().UTC())
	return err
}

func (r *accountRepository) UpdatePasswordRevokeSessions(ctx context.Context, id uuid.UUID, hashedPassword, keepToken string) error {
	// Password update and sibling-session revocation must commit together:
	// old sessions must never stay valid under a new password.
	return r.Transaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE accounts
			SET password_hash = $1, updated_at = $2
			WHERE id = $3`,
			hashedPassword, time.Now().UTC(), id)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return repository.ErrAccountNotFound
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE sessions
			SET is_active = FALSE
			WHERE account_id = $1 AND is_active = TRUE AND token != $2`,
			id, keepToken)
		return err
	})
}

func (r *accountRepository) SetVerificationToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	query := `
		UPDATE accounts
		SET verification_token = $1, verification_expires = $2, updated_at = $3
		WHERE id = $4`

	result, err := r.DB().ExecContext(ctx, query, token, expiresAt, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrAccountNotFound
	}
	return nil
}
