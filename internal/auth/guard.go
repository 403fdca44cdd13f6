package auth

import (
	"context"
	"securevault/internal/models"
	"securevault/internal/repository"
	"time"

	"github.com/google/uuid"
)

// Guard is the per-account lockout state machine. An account locks once its
// failure counter reaches the threshold and stays locked until locked_until
// passes. An expired lock is not cleared on read; only a successful login
// resets the counter and clears the lock.
type Guard struct {
	accountRepo repository.AccountRepository
	threshold   int
	lockout     time.Duration
}

// NewGuard creates a lockout guard with the given threshold and lockout window
func NewGuard(accountRepo repository.AccountRepository, threshold int, lockout time.Duration) *Guard {
	return &Guard{
		accountRepo: accountRepo,
		threshold:   threshold,
		lockout:     lockout,
	}
}

// RecordFailure increments the account's failure counter. The increment and
// the lock transition happen in a single atomic storage update, so concurrent
// failures never lose counts. Returns the time the account is locked until,
// or nil if it is still open.
func (g *Guard) RecordFailure(ctx context.Context, accountID uuid.UUID) (*time.Time, error) {
	_, lockedUntil, err := g.accountRepo.IncrementFailedAttempts(ctx, accountID, g.threshold, g.lockout)
	if err != nil {
		return nil, err
	}
	return lockedUntil, nil
}

// RecordSuccess resets the failure counter and clears any lock, expired or not
func (g *Guard) RecordSuccess(ctx context.Context, accountID uuid.UUID) error {
	return g.accountRepo.ResetFailedAttempts(ctx, accountID)
}

// IsLocked reports whether the account is currently locked. A stale
// locked_until in the past reads as unlocked but is left in place.
func (g *Guard) IsLocked(account *models.Account) bool {
	return account.LockedUntil != nil && time.Now().UTC().Before(*account.LockedUntil)
}
