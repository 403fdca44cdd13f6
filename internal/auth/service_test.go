package auth_test

import (
	"context"
	"testing"
	"time"

	"securevault/internal/auth"
	"securevault/internal/models"
	"securevault/internal/repository"
	"securevault/internal/testutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*auth.Service, *testutil.MemorySessionRepo) {
	cfg := testutil.NewTestConfig()
	sessionRepo := testutil.NewMemorySessionRepo()
	return auth.NewService(cfg, sessionRepo), sessionRepo
}

func TestService_GenerateAndValidateToken(t *testing.T) {
	svc, _ := newTestService()

	account := &models.Account{ID: uuid.New(), Username: "alice"}
	bearer, err := svc.GenerateToken(account, "session-token-1", time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)

	claims, err := svc.ValidateToken(bearer)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.AccountID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "session-token-1", claims.SessionToken)
}

func TestService_ValidateToken(t *testing.T) {
	svc, _ := newTestService()
	account := &models.Account{ID: uuid.New(), Username: "alice"}

	expired, err := svc.GenerateToken(account, "session-token-1", time.Now().UTC().Add(-time.Minute))
	require.NoError(t, err)

	otherSecret := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"account_id": account.ID.String(),
		"exp":        time.Now().UTC().Add(time.Hour).Unix(),
	})
	forged, err := otherSecret.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"account_id": account.ID.String(),
		"exp":        time.Now().UTC().Add(time.Hour).Unix(),
	})
	noneToken, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name:    "garbage token",
			token:   "not-a-token",
			wantErr: auth.ErrInvalidToken,
		},
		{
			name:    "expired token",
			token:   expired,
			wantErr: auth.ErrTokenExpired,
		},
		{
			name:    "wrong signature",
			token:   forged,
			wantErr: auth.ErrInvalidToken,
		},
		{
			name:    "none algorithm rejected",
			token:   noneToken,
			wantErr: auth.ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewOpaqueToken(t *testing.T) {
	first, err := auth.NewOpaqueToken()
	require.NoError(t, err)
	second, err := auth.NewOpaqueToken()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	// 32 bytes of entropy, URL-safe base64
	assert.Len(t, first, 44)
	assert.NotContains(t, first, "+")
	assert.NotContains(t, first, "/")
}

func TestService_CreateSession(t *testing.T) {
	svc, _ := newTestService()
	accountID := uuid.New()

	session, err := svc.CreateSession(context.Background(), accountID, "10.0.0.1", "test-agent")
	require.NoError(t, err)

	assert.Equal(t, accountID, session.AccountID)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.IsActive)
	assert.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), session.ExpiresAt, 5*time.Second)
}

func TestService_ValidateSession(t *testing.T) {
	svc, sessionRepo := newTestService()
	accountID := uuid.New()

	session, err := svc.CreateSession(context.Background(), accountID, "10.0.0.1", "test-agent")
	require.NoError(t, err)

	got, err := svc.ValidateSession(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Token, got.Token)

	t.Run("unknown token", func(t *testing.T) {
		_, err := svc.ValidateSession(context.Background(), "no-such-token")
		assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	})

	t.Run("revoked session", func(t *testing.T) {
		require.NoError(t, svc.RevokeSession(context.Background(), session.Token))
		_, err := svc.ValidateSession(context.Background(), session.Token)
		assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	})

	t.Run("expired session", func(t *testing.T) {
		expired := &models.Session{
			AccountID: accountID,
			Token:     "expired-token",
			ExpiresAt: time.Now().UTC().Add(-time.Minute),
			IsActive:  true,
		}
		require.NoError(t, sessionRepo.Create(context.Background(), expired))

		_, err := svc.ValidateSession(context.Background(), "expired-token")
		assert.ErrorIs(t, err, repository.ErrSessionExpired)
	})
}

func TestService_RevokeSessionIdempotent(t *testing.T) {
	svc, _ := newTestService()

	// Revoking a token that never existed is not an error
	assert.NoError(t, svc.RevokeSession(context.Background(), "no-such-token"))
}

func TestService_RevokeOtherSessions(t *testing.T) {
	svc, sessionRepo := newTestService()
	accountID := uuid.New()

	first, err := svc.CreateSession(context.Background(), accountID, "10.0.0.1", "agent-a")
	require.NoError(t, err)
	second, err := svc.CreateSession(context.Background(), accountID, "10.0.0.2", "agent-b")
	require.NoError(t, err)

	require.NoError(t, svc.RevokeOtherSessions(context.Background(), accountID, first.Token))

	_, err = sessionRepo.GetActiveByToken(context.Background(), first.Token)
	assert.NoError(t, err)
	_, err = sessionRepo.GetActiveByToken(context.Background(), second.Token)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}
