// Package cleanup runs scheduled maintenance over authentication state
package cleanup

import (
	"context"
	"fmt"
	"log"
	"securevault/internal/config"
	"securevault/internal/repository"
	"time"

	"github.com/robfig/cron/v3"
)

// Manager deletes expired sessions and prunes old login attempt records on a
// cron schedule. Expired sessions already fail validation before they are
// deleted; removal is housekeeping, not enforcement.
type Manager struct {
	sessionRepo      repository.SessionRepository
	loginAttemptRepo repository.LoginAttemptRepository
	retention        time.Duration
	schedule         string
	cron             *cron.Cron
}

// NewManager creates a new cleanup manager
func NewManager(cfg config.CleanupConfig, sessionRepo repository.SessionRepository, loginAttemptRepo repository.LoginAttemptRepository) *Manager {
	// Create a new cron scheduler with seconds disabled
	c := cron.New(cron.WithParser(cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
	)))

	return &Manager{
		sessionRepo:      sessionRepo,
		loginAttemptRepo: loginAttemptRepo,
		retention:        cfg.AttemptRetention,
		schedule:         cfg.Schedule,
		cron:             c,
	}
}

// Run executes a single maintenance pass
func (m *Manager) Run(ctx context.Context) error {
	now := time.Now().UTC()

	sessions, err := m.sessionRepo.DeleteExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	attempts, err := m.loginAttemptRepo.DeleteOlderThan(ctx, now.Add(-m.retention))
	if err != nil {
		return fmt.Errorf("failed to prune login attempts: %w", err)
	}

	if sessions > 0 || attempts > 0 {
		log.Printf("Cleanup removed %d expired sessions and %d old login attempts", sessions, attempts)
	}
	return nil
}

// Start schedules maintenance runs and blocks until the context is cancelled
func (m *Manager) Start(ctx context.Context) error {
	_, err := m.cron.AddFunc(m.schedule, func() {
		if err := m.Run(ctx); err != nil {
			log.Printf("Error running cleanup: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup: %w", err)
	}

	m.cron.Start()
	log.Printf("Cleanup scheduler started with schedule %s", m.schedule)

	// Wait for context cancellation
	<-ctx.Done()
	log.Println("Stopping cleanup scheduler...")
	m.cron.Stop()

	return nil
}
