package cleanup_test

import (
	"context"
	"testing"
	"time"

	"securevault/internal/cleanup"
	"securevault/internal/config"
	"securevault/internal/models"
	"securevault/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Run(t *testing.T) {
	sessionRepo := testutil.NewMemorySessionRepo()
	attemptRepo := testutil.NewMemoryLoginAttemptRepo()

	cfg := config.CleanupConfig{
		Schedule:         "0 * * * *",
		AttemptRetention: 90 * 24 * time.Hour,
	}
	manager := cleanup.NewManager(cfg, sessionRepo, attemptRepo)

	ctx := context.Background()
	accountID := uuid.New()

	expired := &models.Session{
		AccountID: accountID,
		Token:     "expired-token",
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
		IsActive:  true,
	}
	live := &models.Session{
		AccountID: accountID,
		Token:     "live-token",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
		IsActive:  true,
	}
	require.NoError(t, sessionRepo.Create(ctx, expired))
	require.NoError(t, sessionRepo.Create(ctx, live))

	old := &models.LoginAttempt{
		UsernameAttempted: "alice",
		CreatedAt:         time.Now().UTC().Add(-91 * 24 * time.Hour),
	}
	recent := &models.LoginAttempt{
		UsernameAttempted: "alice",
		CreatedAt:         time.Now().UTC().Add(-time.Hour),
	}
	require.NoError(t, attemptRepo.Create(ctx, old))
	require.NoError(t, attemptRepo.Create(ctx, recent))

	require.NoError(t, manager.Run(ctx))

	// The live session and the recent attempt survive
	_, err := sessionRepo.GetActiveByToken(ctx, "live-token")
	assert.NoError(t, err)
	_, err = sessionRepo.GetActiveByToken(ctx, "expired-token")
	assert.Error(t, err)

	attempts := attemptRepo.All()
	require.Len(t, attempts, 1)
	assert.WithinDuration(t, time.Now().UTC(), attempts[0].CreatedAt, 2*time.Hour)
}

func TestManager_RunEmpty(t *testing.T) {
	cfg := config.CleanupConfig{
		Schedule:         "0 * * * *",
		AttemptRetention: 90 * 24 * time.Hour,
	}
	manager := cleanup.NewManager(cfg, testutil.NewMemorySessionRepo(), testutil.NewMemoryLoginAttemptRepo())

	assert.NoError(t, manager.Run(context.Background()))
}

func TestManager_StartInvalidSchedule(t *testing.T) {
	cfg := config.CleanupConfig{
		Schedule:         "not a schedule",
		AttemptRetention: 90 * 24 * time.Hour,
	}
	manager := cleanup.NewManager(cfg, testutil.NewMemorySessionRepo(), testutil.NewMemoryLoginAttemptRepo())

	err := manager.Start(context.Background())
	assert.Error(t, err)
}
