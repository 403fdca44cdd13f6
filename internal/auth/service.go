package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"securevault/internal/config"
	"securevault/internal/models"
	"securevault/internal/repository"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken indicates the bearer token is invalid
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates the bearer token has expired
	ErrTokenExpired = errors.New("token expired")
)

// Claims are the decoded contents of a bearer token
type Claims struct {
	AccountID    uuid.UUID
	Username     string
	SessionToken string
}

// Service issues bearer tokens and manages the sessions they are bound to.
// The bearer token itself is not revocable; the embedded session token is
// the sole revocation handle.
type Service struct {
	config      *config.Config
	sessionRepo repository.SessionRepository
}

// NewService creates a new authentication service
func NewService(cfg *config.Config, sessionRepo repository.SessionRepository) *Service {
	return &Service{
		config:      cfg,
		sessionRepo: sessionRepo,
	}
}

// GenerateToken generates a bearer token embedding the account identity and
// the opaque session token
func (s *Service) GenerateToken(account *models.Account, sessionToken string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"account_id":    account.ID.String(),
		"username":      account.Username,
		"session_token": sessionToken,
		"exp":           expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Auth.JWTSecret))
}

// ValidateToken validates a bearer token and returns its claims
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.config.Auth.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	accountIDStr, ok := mapClaims["account_id"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	accountID, err := uuid.Parse(accountIDStr)
	if err != nil {
		return nil, ErrInvalidToken
	}

	username, _ := mapClaims["username"].(string)
	sessionToken, _ := mapClaims["session_token"].(string)

	return &Claims{
		AccountID:    accountID,
		Username:     username,
		SessionToken: sessionToken,
	}, nil
}

// NewOpaqueToken generates an unguessable URL-safe token with 256 bits of entropy
func NewOpaqueToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// CreateSession creates a session for the account with an absolute expiry
// of SessionDuration from now
func (s *Service) CreateSession(ctx context.Context, accountID uuid.UUID, ip, userAgent string) (*models.Session, error) {
	token, err := NewOpaqueToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		AccountID: accountID,
		Token:     token,
		IPAddress: ip,
		UserAgent: userAgent,
		ExpiresAt: time.Now().UTC().Add(s.config.Auth.SessionDuration),
		IsActive:  true,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ValidateSession returns the active session matching token and touches its
// last activity timestamp. A session past its absolute expiry fails with
// repository.ErrSessionExpired; activity updates never extend the expiry.
func (s *Service) ValidateSession(ctx context.Context, token string) (*models.Session, error) {
	session, err := s.sessionRepo.GetActiveByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if session.IsExpired(now) {
		return nil, repository.ErrSessionExpired
	}

	if err := s.sessionRepo.TouchActivity(ctx, session.ID, now); err != nil {
		return nil, err
	}
	session.LastActivityAt = now
	return session, nil
}

// ListSessions returns every session of the account, newest first
func (s *Service) ListSessions(ctx context.Context, accountID uuid.UUID) ([]models.Session, error) {
	return s.sessionRepo.GetByAccountID(ctx, accountID)
}

// RevokeSession deactivates the session bound to token; idempotent
func (s *Service) RevokeSession(ctx context.Context, token string) error {
	return s.sessionRepo.Revoke(ctx, token)
}

// RevokeOtherSessions deactivates every session of the account except keepToken
func (s *Service) RevokeOtherSessions(ctx context.Context, accountID uuid.UUID, keepToken string) error {
	return s.sessionRepo.RevokeAllExcept(ctx, accountID, keepToken)
}

// GetClaimsFromContext retrieves the bearer token claims from the gin context
func GetClaimsFromContext(c *gin.Context) *Claims {
	claims, exists := c.Get("claims")
	if !exists {
		return nil
	}
	if cl, ok := claims.(*Claims); ok {
		return cl
	}
	return nil
}
