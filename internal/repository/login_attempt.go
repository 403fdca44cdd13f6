package repository

import (
	"context"
	"securevault/internal/models"
	"time"

	"github.com/google/uuid"
)

// LoginAttemptRepository defines the interface for the append-only login
// attempt audit log. Rows are never mutated or deleted by the auth flow;
// only the retention cleanup removes old entries.
type LoginAttemptRepository interface {
	Create(ctx context.Context, attempt *models.LoginAttempt) error
	GetByAccountID(ctx context.Context, accountID uuid.UUID, limit int) ([]models.LoginAttempt, error)
	CountRecentFailures(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error)
	// DeleteOlderThan removes attempts created before the cutoff, returning
	// the number removed
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
