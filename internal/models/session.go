package models

import (
	"time"

	"github.com/google/uuid"
)

// Session binds an opaque token to an account for a bounded, revocable period
type Session struct {
	ID             uuid.UUID `json:"id"`
	AccountID      uuid.UUID `json:"account_id"`
	Token          string    `json:"-"`
	IPAddress      string    `json:"ip_address"`
	UserAgent      string    `json:"user_agent"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	IsActive       bool      `json:"is_active"`
}

// IsExpired reports whether the session is past its absolute expiry.
// Expiry is fixed at creation; activity updates do not extend it.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
