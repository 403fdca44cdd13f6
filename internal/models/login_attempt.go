package models

import (
	"time"

	"github.com/google/uuid"
)

// LoginAttempt is an immutable audit entry for a login attempt. AccountID is
// nil when the attempted username did not resolve to an account.
type LoginAttempt struct {
	ID                uuid.UUID  `json:"id"`
	AccountID         *uuid.UUID `json:"account_id"`
	UsernameAttempted string     `json:"username_attempted"`
	Success           bool       `json:"success"`
	IPAddress         string     `json:"ip_address"`
	UserAgent         string     `json:"user_agent"`
	CreatedAt         time.Time  `json:"created_at"`
}
