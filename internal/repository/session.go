package repository

import (
	"context"
	"securevault/internal/models"
	"time"

	"github.com/google/uuid"
)

// SessionRepository defines the interface for session storage operations
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	// GetActiveByToken returns the active session matching token, or
	// ErrSessionNotFound. Expiry is not checked here; callers decide how to
	// treat expired rows.
	GetActiveByToken(ctx context.Context, token string) (*models.Session, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]models.Session, error)
	TouchActivity(ctx context.Context, id uuid.UUID, at time.Time) error
	// Revoke deactivates the session with the given token. Revoking a token
	// that is already inactive or unknown is not an error.
	Revoke(ctx context.Context, token string) error
	// RevokeAllExcept deactivates every active session of the account other
	// than keepToken
	RevokeAllExcept(ctx context.Context, accountID uuid.UUID, keepToken string) error
	// DeleteExpired removes sessions past their expiry, returning the number removed
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
