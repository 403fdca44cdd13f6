package models

import (
	"time"

	"github.com/google/uuid"
)

// RegisterResponse represents the response to a successful registration
type RegisterResponse struct {
	Message              string      `json:"message"`
	User                 AccountView `json:"user"`
	VerificationRequired bool        `json:"verification_required"`
}

// LoginResponse represents the response to a successful login
type LoginResponse struct {
	Message        string      `json:"message"`
	AccessToken    string      `json:"access_token"`
	User           AccountView `json:"user"`
	SessionExpires time.Time   `json:"session_expires"`
}

// VerifyTokenResponse represents the response to a successful token check
type VerifyTokenResponse struct {
	Message string      `json:"message"`
	User    AccountView `json:"user"`
}

// SessionView is the public representation of a session. The opaque token
// never leaves the server; Current marks the caller's own session.
type SessionView struct {
	ID             uuid.UUID `json:"id"`
	IPAddress      string    `json:"ip_address"`
	UserAgent      string    `json:"user_agent"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	IsActive       bool      `json:"is_active"`
	Current        bool      `json:"current"`
}

// SessionsResponse lists the caller's sessions
type SessionsResponse struct {
	Sessions []SessionView `json:"sessions"`
}

// LoginHistoryResponse lists the caller's recent login attempts
type LoginHistoryResponse struct {
	Attempts       []LoginAttempt `json:"attempts"`
	RecentFailures int            `json:"recent_failures"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error       string `json:"error"`
	LockedUntil string `json:"locked_until,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}
