package models

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a registered identity with credentials and status flags
type Account struct {
	ID                  uuid.UUID  `json:"id"`
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	IsActive            bool       `json:"is_active"`
	IsVerified          bool       `json:"is_verified"`
	MFAEnabled          bool       `json:"mfa_enabled"`
	FailedLoginAttempts int        `json:"-"`
	LockedUntil         *time.Time `json:"-"`
	VerificationToken   *string    `json:"-"`
	VerificationExpires *time.Time `json:"-"`
	ResetToken          *string    `json:"-"`
	ResetExpires        *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// AccountView is the public representation of an account. It never carries
// the password hash or raw verification/reset tokens.
type AccountView struct {
	ID         uuid.UUID  `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	IsActive   bool       `json:"is_active"`
	IsVerified bool       `json:"is_verified"`
	CreatedAt  time.Time  `json:"created_at"`
	LastLogin  *time.Time `json:"last_login"`
	MFAEnabled bool       `json:"mfa_enabled"`
}

// View returns the public representation of the account
func (a *Account) View() AccountView {
	return AccountView{
		ID:         a.ID,
		Username:   a.Username,
		Email:      a.Email,
		IsActive:   a.IsActive,
		IsVerified: a.IsVerified,
		CreatedAt:  a.CreatedAt,
		LastLogin:  a.LastLoginAt,
		MFAEnabled: a.MFAEnabled,
	}
}
