package repository

import (
	"context"
	"securevault/internal/models"
	"time"

	"github.com/google/uuid"
)

// AccountRepository defines the interface for account-related database operations
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	// GetByUsernameOrEmail resolves a login identifier against either column
	// in a single read.
	GetByUsernameOrEmail(ctx context.Context, identifier string) (*models.Account, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, lastLoginAt time.Time) error
	// IncrementFailedAttempts atomically increments the failure counter and,
	// when the incremented count reaches threshold, sets locked_until to
	// now+lockout. Returns the resulting counter and lock state so callers
	// never read-modify-write.
	IncrementFailedAttempts(ctx context.Context, id uuid.UUID, threshold int, lockout time.Duration) (int, *time.Time, error)
	// ResetFailedAttempts zeroes the failure counter and clears locked_until
	ResetFailedAttempts(ctx context.Context, id uuid.UUID) error
	// UpdatePasswordRevokeSessions stores a new password hash and deactivates
	// every session of the account except keepToken, in one transaction.
	UpdatePasswordRevokeSessions(ctx context.Context, id uuid.UUID, hashedPassword, keepToken string) error
	SetVerificationToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
}
