package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"securevault/internal/auth"
	"securevault/internal/models"
	"securevault/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_RecordFailure(t *testing.T) {
	repo := testutil.NewMemoryAccountRepo(nil)
	guard := auth.NewGuard(repo, 5, 30*time.Minute)

	account := &models.Account{Username: "alice", Email: "alice@example.com"}
	repo.Put(account)

	ctx := context.Background()

	// Four failures stay below the threshold
	for i := 0; i < 4; i++ {
		lockedUntil, err := guard.RecordFailure(ctx, account.ID)
		require.NoError(t, err)
		assert.Nil(t, lockedUntil)
	}

	// The fifth failure locks the account
	lockedUntil, err := guard.RecordFailure(ctx, account.ID)
	require.NoError(t, err)
	require.NotNil(t, lockedUntil)
	assert.WithinDuration(t, time.Now().UTC().Add(30*time.Minute), *lockedUntil, 5*time.Second)

	stored, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.FailedLoginAttempts)
	assert.True(t, guard.IsLocked(stored))
}

func TestGuard_RecordSuccess(t *testing.T) {
	repo := testutil.NewMemoryAccountRepo(nil)
	guard := auth.NewGuard(repo, 5, 30*time.Minute)

	until := time.Now().UTC().Add(10 * time.Minute)
	account := &models.Account{
		Username:            "alice",
		Email:               "alice@example.com",
		FailedLoginAttempts: 5,
		LockedUntil:         &until,
	}
	repo.Put(account)

	ctx := context.Background()
	require.NoError(t, guard.RecordSuccess(ctx, account.ID))

	stored, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.FailedLoginAttempts)
	assert.Nil(t, stored.LockedUntil)
	assert.False(t, guard.IsLocked(stored))
}

func TestGuard_IsLocked(t *testing.T) {
	guard := auth.NewGuard(testutil.NewMemoryAccountRepo(nil), 5, 30*time.Minute)

	tests := []struct {
		name        string
		lockedUntil *time.Time
		want        bool
	}{
		{
			name:        "no lock",
			lockedUntil: nil,
			want:        false,
		},
		{
			name:        "active lock",
			lockedUntil: testutil.Time(time.Now().UTC().Add(10 * time.Minute)),
			want:        true,
		},
		{
			name:        "expired lock reads as unlocked",
			lockedUntil: testutil.Time(time.Now().UTC().Add(-time.Minute)),
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := &models.Account{LockedUntil: tt.lockedUntil}
			assert.Equal(t, tt.want, guard.IsLocked(account))
		})
	}
}

func TestGuard_ConcurrentFailuresNeverLoseCounts(t *testing.T) {
	repo := testutil.NewMemoryAccountRepo(nil)
	guard := auth.NewGuard(repo, 5, 30*time.Minute)

	account := &models.Account{Username: "alice", Email: "alice@example.com"}
	repo.Put(account)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := guard.RecordFailure(context.Background(), account.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// Every failure lands: the observed count is exactly the number of
	// attempts, and the lock engaged at the threshold
	stored, err := repo.GetByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, workers, stored.FailedLoginAttempts)
	require.NotNil(t, stored.LockedUntil)
	assert.True(t, guard.IsLocked(stored))
}

func TestGuard_ExpiredLockNotClearedOnRead(t *testing.T) {
	repo := testutil.NewMemoryAccountRepo(nil)
	guard := auth.NewGuard(repo, 5, 30*time.Minute)

	until := time.Now().UTC().Add(-time.Minute)
	account := &models.Account{
		Username:            "alice",
		Email:               "alice@example.com",
		FailedLoginAttempts: 5,
		LockedUntil:         &until,
	}
	repo.Put(account)

	stored, err := repo.GetByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.False(t, guard.IsLocked(stored))

	// The stale lock stays in place until a successful login clears it
	assert.NotNil(t, stored.LockedUntil)
	assert.Equal(t, 5, stored.FailedLoginAttempts)
}
