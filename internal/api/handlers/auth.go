package handlers

import (
	"log"
	"net/http"
	"securevault/internal/auth"
	"securevault/internal/config"
	"securevault/internal/models"
	"securevault/internal/repository"
	"securevault/internal/validation"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthHandler handles HTTP requests for registration, login and session
// management. It is the only component that talks to more than one
// collaborator; the guard, hasher and session service stay independent.
type AuthHandler struct {
	accountRepo      repository.AccountRepository
	loginAttemptRepo repository.LoginAttemptRepository
	authService      *auth.Service
	guard            *auth.Guard
	hasher           *auth.Hasher
	config           *config.Config
}

// NewAuthHandler creates a new authentication handler with the given dependencies
func NewAuthHandler(
	accountRepo repository.AccountRepository,
	loginAttemptRepo repository.LoginAttemptRepository,
	authService *auth.Service,
	guard *auth.Guard,
	hasher *auth.Hasher,
	config *config.Config,
) *AuthHandler {
	return &AuthHandler{
		accountRepo:      accountRepo,
		loginAttemptRepo: loginAttemptRepo,
		authService:      authService,
		guard:            guard,
		hasher:           hasher,
		config:           config,
	}
}

// logAttempt appends a row to the login attempt audit log. AccountID is nil
// when the attempted identifier did not resolve to an account. A failure to
// write the audit row is logged but never masks the request outcome.
func (h *AuthHandler) logAttempt(c *gin.Context, username string, success bool, accountID *uuid.UUID) {
	attempt := &models.LoginAttempt{
		AccountID:         accountID,
		UsernameAttempted: username,
		Success:           success,
		IPAddress:         c.ClientIP(),
		UserAgent:         truncate(c.GetHeader("User-Agent"), 500),
	}
	if err := h.loginAttemptRepo.Create(c.Request.Context(), attempt); err != nil {
		log.Printf("Failed to record login attempt: %v", err)
	}
}

// truncate trims s to at most max bytes without splitting a rune
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// Register godoc
// @Summary Register new account
// @Description Register a new account. The account starts active but unverified; a verification token with a 24h expiry is generated.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration details"
// @Success 201 {object} models.RegisterResponse "Account created"
// @Failure 400 {object} models.ErrorResponse "Invalid request format or validation error"
// @Failure 403 {object} models.ErrorResponse "Registration is disabled"
// @Failure 409 {object} models.ErrorResponse "Username or email already exists"
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	// Validation gate: nothing below runs on unvalidated input
	if err := validation.Username(req.Username); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	email, vErr := validation.Email(req.Email)
	if vErr != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: vErr.Error()})
		return
	}
	if err := validation.Password(req.Password); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	if !h.config.Auth.RegistrationOpen {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "registration is disabled"})
		return
	}

	// Fast-path pre-checks. The database unique constraints remain the
	// authoritative guard against concurrent registrations.
	if _, err := h.accountRepo.GetByUsername(c.Request.Context(), req.Username); err == nil {
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "Username already exists"})
		return
	} else if err != repository.ErrAccountNotFound {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Registration failed"})
		return
	}
	if _, err := h.accountRepo.GetByEmail(c.Request.Context(), email); err == nil {
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "Email already registered"})
		return
	} else if err != repository.ErrAccountNotFound {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Registration failed"})
		return
	}

	hashedPassword, err := h.hasher.Hash(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Registration failed"})
		return
	}

	verificationToken, err := auth.NewOpaqueToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Registration failed"})
		return
	}
	verificationExpires := time.Now().UTC().Add(24 * time.Hour)

	account := &models.Account{
		Username:            req.Username,
		Email:               email,
		PasswordHash:        hashedPassword,
		IsActive:            true,
		IsVerified:          false,
		VerificationToken:   &verificationToken,
		VerificationExpires: &verificationExpires,
	}

	if err := h.accountRepo.Create(c.Request.Context(), account); err != nil {
		switch err {
		case repository.ErrUsernameExists:
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "Username already exists"})
		case repository.ErrEmailExists:
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "Email already registered"})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Registration failed"})
		}
		return
	}

	h.logAttempt(c, account.Username, true, &account.ID)

	c.JSON(http.StatusCreated, models.RegisterResponse{
		Message:              "User registered successfully",
		User:                 account.View(),
		VerificationRequired: true,
	})
}

// Login godoc
// @Summary Authenticate account
// @Description Authenticate by username or email and return a bearer token bound to a new session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.LoginResponse "Login successful"
// @Failure 400 {object} models.ErrorResponse "Invalid request format"
// @Failure 401 {object} models.ErrorResponse "Invalid credentials"
// @Failure 403 {object} models.ErrorResponse "Account is deactivated"
// @Failure 423 {object} models.ErrorResponse "Account temporarily locked"
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	// Single lookup resolves the identifier against username or email
	account, err := h.accountRepo.GetByUsernameOrEmail(c.Request.Context(), req.Username)
	if err == repository.ErrAccountNotFound {
		// Identical error shape as a wrong password, so an unknown username
		// is indistinguishable from a bad credential
		h.logAttempt(c, req.Username, false, nil)
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid credentials"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Login failed"})
		return
	}

	if h.guard.IsLocked(account) {
		h.logAttempt(c, req.Username, false, &account.ID)
		c.JSON(http.StatusLocked, models.ErrorResponse{
			Error:       "Account temporarily locked due to multiple failed login attempts",
			LockedUntil: account.LockedUntil.UTC().Format(time.RFC3339),
		})
		return
	}

	if !account.IsActive {
		h.logAttempt(c, req.Username, false, &account.ID)
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "Account is deactivated"})
		return
	}

	if !h.hasher.Verify(account.PasswordHash, req.Password) {
		if _, err := h.guard.RecordFailure(c.Request.Context(), account.ID); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Login failed"})
			return
		}
		h.logAttempt(c, req.Username, false, &account.ID)
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid credentials"})
		return
	}

	// Successful authentication: reset the lockout state and bind a session
	if err := h.guard.RecordSuccess(c.Request.Context(), account.ID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Login failed"})
		return
	}

	now := time.Now().UTC()
	if err := h.accountRepo.UpdateLastLogin(c.Request.Context(), account.ID, now); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Login failed"})
		return
	}
	account.LastLoginAt = &now

	session, err := h.authService.CreateSession(c.Request.Context(), account.ID, c.ClientIP(), truncate(c.GetHeader("User-Agent"), 500))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Login failed"})
		return
	}

	accessToken, err := h.authService.GenerateToken(account, session.Token, session.ExpiresAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Login failed"})
		return
	}

	h.logAttempt(c, req.Username, true, &account.ID)

	c.JSON(http.StatusOK, models.LoginResponse{
		Message:        "Login successful",
		AccessToken:    accessToken,
		User:           account.View(),
		SessionExpires: session.ExpiresAt,
	})
}

// Logout godoc
// @Summary Logout
// @Description Revoke the session bound to the bearer token. Idempotent: reports success even if the session no longer exists.
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} models.SuccessResponse "Logout successful"
// @Failure 401 {object} models.ErrorResponse "Missing or invalid token"
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := auth.GetClaimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "no token claims"})
		return
	}

	if claims.SessionToken != "" {
		if err := h.authService.RevokeSession(c.Request.Context(), claims.SessionToken); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Logout failed"})
			return
		}
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Message: "Logout successful"})
}

// VerifyToken godoc
// @Summary Verify bearer token
// @Description Check that the bearer token is valid and its bound session is still alive. A revoked or expired session fails even though the token itself is cryptographically valid; this is what makes logout effective.
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} models.VerifyTokenResponse "Token is valid"
// @Failure 401 {object} models.ErrorResponse "Session expired or revoked"
// @Failure 404 {object} models.ErrorResponse "Account not found or inactive"
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /auth/verify-token [post]
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	claims := auth.GetClaimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "no token claims"})
		return
	}

	account, err := h.accountRepo.GetByID(c.Request.Context(), claims.AccountID)
	if err == repository.ErrAccountNotFound {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "User not found or inactive"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Token verification failed"})
		return
	}
	if !account.IsActive {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "User not found or inactive"})
		return
	}

	if claims.SessionToken != "" {
		_, err := h.authService.ValidateSession(c.Request.Context(), claims.SessionToken)
		if err == repository.ErrSessionNotFound || err == repository.ErrSessionExpired {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Session expired"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Token verification failed"})
			return
		}
	}

	c.JSON(http.StatusOK, models.VerifyTokenResponse{
		Message: "Token is valid",
		User:    account.View(),
	})
}

// Sessions godoc
// @Summary List sessions
// @Description List every session of the authenticated account, newest first. The caller's own session is marked current; the opaque session tokens are never returned.
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} models.SessionsResponse "Sessions"
// @Failure 401 {object} models.ErrorResponse "Missing or invalid token"
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /auth/sessions [get]
func (h *AuthHandler) Sessions(c *gin.Context) {
	claims := auth.GetClaimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "no token claims"})
		return
	}

	sessions, err := h.authService.ListSessions(c.Request.Context(), claims.AccountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list sessions"})
		return
	}

	views := make([]models.SessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, models.SessionView{
			ID:             s.ID,
			IPAddress:      s.IPAddress,
			UserAgent:      s.UserAgent,
			CreatedAt:      s.CreatedAt,
			LastActivityAt: s.LastActivityAt,
			ExpiresAt:      s.ExpiresAt,
			IsActive:       s.IsActive,
			Current:        s.Token == claims.SessionToken,
		})
	}

	c.JSON(http.StatusOK, models.SessionsResponse{Sessions: views})
}

// LoginHistory godoc
// @Summary Login history
// @Description Return the authenticated account's most recent login attempts and the count of failures in the last 24 hours
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} models.LoginHistoryResponse "Login history"
// @Failure 401 {object} models.ErrorResponse "Missing or invalid token"
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /auth/login-history [get]
func (h *AuthHandler) LoginHistory(c *gin.Context) {
	claims := auth.GetClaimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "no token claims"})
		return
	}

	attempts, err := h.loginAttemptRepo.GetByAccountID(c.Request.Context(), claims.AccountID, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load login history"})
		return
	}

	failures, err := h.loginAttemptRepo.CountRecentFailures(c.Request.Context(), claims.AccountID, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load login history"})
		return
	}

	if attempts == nil {
		attempts = []models.LoginAttempt{}
	}
	c.JSON(http.StatusOK, models.LoginHistoryResponse{
		Attempts:       attempts,
		RecentFailures: failures,
	})
}

// ResendVerification godoc
// @Summary Regenerate verification token
// @Description Issue a fresh verification token with a 24h expiry for an unverified account, replacing any previous one
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} models.SuccessResponse "Verification token regenerated"
// @Failure 400 {object} models.ErrorResponse "Account is already verified"
// @Failure 401 {object} models.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} models.ErrorResponse "Account not found"
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	claims := auth.GetClaimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "no token claims"})
		return
	}

	account, err := h.accountRepo.GetByID(c.Request.Context(), claims.AccountID)
	if err == repository.ErrAccountNotFound {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to regenerate verification token"})
		return
	}

	if account.IsVerified {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Email is already verified"})
		return
	}

	token, err := auth.NewOpaqueToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to regenerate verification token"})
		return
	}
	expiresAt := time.Now().UTC().Add(24 * time.Hour)

	if err := h.accountRepo.SetVerificationToken(c.Request.Context(), account.ID, token, expiresAt); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to regenerate verification token"})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Message: "Verification token regenerated"})
}

// ChangePassword godoc
// @Summary Change password
// @Description Change the account password. Every other active session of the account is revoked atomically with the password update; the caller's own session stays valid.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.ChangePasswordRequest true "Password change details"
// @Success 200 {object} models.SuccessResponse "Password changed"
// @Failure 400 {object} models.ErrorResponse "Invalid request or weak new password"
// @Failure 401 {object} models.ErrorResponse "Current password is incorrect"
// @Failure 404 {object} models.ErrorResponse "Account not found"
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims := auth.GetClaimsFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "no token claims"})
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	account, err := h.accountRepo.GetByID(c.Request.Context(), claims.AccountID)
	if err == repository.ErrAccountNotFound {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Password change failed"})
		return
	}

	if !h.hasher.Verify(account.PasswordHash, req.CurrentPassword) {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Current password is incorrect"})
		return
	}

	if err := validation.Password(req.NewPassword); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	// Compared via Verify, not string equality: hashes are salted
	if h.hasher.Verify(account.PasswordHash, req.NewPassword) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "New password must be different from current password"})
		return
	}

	hashedPassword, err := h.hasher.Hash(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Password change failed"})
		return
	}

	// Stores the new hash and revokes every other session in one transaction
	if err := h.accountRepo.UpdatePasswordRevokeSessions(c.Request.Context(), account.ID, hashedPassword, claims.SessionToken); err != nil {
		if err == repository.ErrAccountNotFound {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Password change failed"})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Message: "Password changed successfully"})
}
