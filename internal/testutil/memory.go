package testutil

import (
	"context"
	"securevault/internal/models"
	"securevault/internal/repository"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// In-memory repository implementations backing handler and service tests.
// They mirror the Postgres implementations' contracts, including the
// unique-constraint rejections and the atomic failed-attempt increment.

// MemoryAccountRepo is an in-memory repository.AccountRepository
type MemoryAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*models.Account
	sessions *MemorySessionRepo

	// FailWith, when set, makes every method return this error
	FailWith error
}

// NewMemoryAccountRepo creates an in-memory account repository. Sessions may
// be nil if password-change revocation is not under test.
func NewMemoryAccountRepo(sessions *MemorySessionRepo) *MemoryAccountRepo {
	return &MemoryAccountRepo{
		accounts: make(map[uuid.UUID]*models.Account),
		sessions: sessions,
	}
}

func copyAccount(a *models.Account) *models.Account {
	clone := *a
	return &clone
}

func (r *MemoryAccountRepo) Create(ctx context.Context, account *models.Account) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.accounts {
		if existing.Username == account.Username {
			return repository.ErrUsernameExists
		}
		if existing.Email == account.Email {
			return repository.ErrEmailExists
		}
	}

	account.ID = uuid.New()
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.accounts[account.ID] = copyAccount(account)
	return nil
}

func (r *MemoryAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	return copyAccount(account), nil
}

func (r *MemoryAccountRepo) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, account := range r.accounts {
		if account.Username == username {
			return copyAccount(account), nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (r *MemoryAccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, account := range r.accounts {
		if account.Email == email {
			return copyAccount(account), nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (r *MemoryAccountRepo) GetByUsernameOrEmail(ctx context.Context, identifier string) (*models.Account, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, account := range r.accounts {
		if account.Username == identifier || account.Email == identifier {
			return copyAccount(account), nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (r *MemoryAccountRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, lastLoginAt time.Time) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	account.LastLoginAt = &lastLoginAt
	account.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryAccountRepo) IncrementFailedAttempts(ctx context.Context, id uuid.UUID, threshold int, lockout time.Duration) (int, *time.Time, error) {
	if r.FailWith != nil {
		return 0, nil, r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return 0, nil, repository.ErrAccountNotFound
	}

	account.FailedLoginAttempts++
	if account.FailedLoginAttempts >= threshold {
		until := time.Now().UTC().Add(lockout)
		account.LockedUntil = &until
	}
	account.UpdatedAt = time.Now().UTC()
	return account.FailedLoginAttempts, account.LockedUntil, nil
}

func (r *MemoryAccountRepo) ResetFailedAttempts(ctx context.Context, id uuid.UUID) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	account.FailedLoginAttempts = 0
	account.LockedUntil = nil
	account.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryAccountRepo) UpdatePasswordRevokeSessions(ctx context.Context, id uuid.UUID, hashedPassword, keepToken string) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	r.mu.Lock()
	account, ok := r.accounts[id]
	if !ok {
		r.mu.Unlock()
		return repository.ErrAccountNotFound
	}
	account.PasswordHash = hashedPassword
	account.UpdatedAt = time.Now().UTC()
	r.mu.Unlock()

	if r.sessions != nil {
		return r.sessions.RevokeAllExcept(ctx, id, keepToken)
	}
	return nil
}

func (r *MemoryAccountRepo) SetVerificationToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	account.VerificationToken = &token
	account.VerificationExpires = &expiresAt
	return nil
}

// Put stores an account directly, bypassing uniqueness checks
func (r *MemoryAccountRepo) Put(account *models.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	r.accounts[account.ID] = copyAccount(account)
}

// MemorySessionRepo is an in-memory repository.SessionRepository
type MemorySessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.Session

	// FailWith, when set, makes every method return this error
	FailWith error
}

// NewMemorySessionRepo creates an in-memory session repository
func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{sessions: make(map[uuid.UUID]*models.Session)}
}

func copySession(s *models.Session) *models.Session {
	clone := *s
	return &clone
}

func (r *MemorySessionRepo) Create(ctx context.Context, session *models.Session) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	session.ID = uuid.New()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.LastActivityAt = now
	r.sessions[session.ID] = copySession(session)
	return nil
}

func (r *MemorySessionRepo) GetActiveByToken(ctx context.Context, token string) (*models.Session, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, session := range r.sessions {
		if session.Token == token && session.IsActive {
			return copySession(session), nil
		}
	}
	return nil, repository.ErrSessionNotFound
}

func (r *MemorySessionRepo) GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]models.Session, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Session
	for _, session := range r.sessions {
		if session.AccountID == accountID {
			out = append(out, *session)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemorySessionRepo) TouchActivity(ctx context.Context, id uuid.UUID, at time.Time) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.sessions[id]; ok {
		session.LastActivityAt = at
	}
	return nil
}

func (r *MemorySessionRepo) Revoke(ctx context.Context, token string) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, session := range r.sessions {
		if session.Token == token {
			session.IsActive = false
		}
	}
	return nil
}

func (r *MemorySessionRepo) RevokeAllExcept(ctx context.Context, accountID uuid.UUID, keepToken string) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, session := range r.sessions {
		if session.AccountID == accountID && session.Token != keepToken {
			session.IsActive = false
		}
	}
	return nil
}

func (r *MemorySessionRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	if r.FailWith != nil {
		return 0, r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, session := range r.sessions {
		if session.ExpiresAt.Before(before) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// MemoryLoginAttemptRepo is an in-memory repository.LoginAttemptRepository
type MemoryLoginAttemptRepo struct {
	mu       sync.Mutex
	attempts []models.LoginAttempt

	// FailWith, when set, makes every method return this error
	FailWith error
}

// NewMemoryLoginAttemptRepo creates an in-memory login attempt repository
func NewMemoryLoginAttemptRepo() *MemoryLoginAttemptRepo {
	return &MemoryLoginAttemptRepo{}
}

func (r *MemoryLoginAttemptRepo) Create(ctx context.Context, attempt *models.LoginAttempt) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	attempt.ID = uuid.New()
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}
	r.attempts = append(r.attempts, *attempt)
	return nil
}

func (r *MemoryLoginAttemptRepo) GetByAccountID(ctx context.Context, accountID uuid.UUID, limit int) ([]models.LoginAttempt, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.LoginAttempt
	for i := len(r.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		if r.attempts[i].AccountID != nil && *r.attempts[i].AccountID == accountID {
			out = append(out, r.attempts[i])
		}
	}
	return out, nil
}

func (r *MemoryLoginAttemptRepo) CountRecentFailures(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	if r.FailWith != nil {
		return 0, r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, attempt := range r.attempts {
		if attempt.AccountID != nil && *attempt.AccountID == accountID && !attempt.Success && !attempt.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryLoginAttemptRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.FailWith != nil {
		return 0, r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var kept []models.LoginAttempt
	var removed int64
	for _, attempt := range r.attempts {
		if attempt.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, attempt)
	}
	r.attempts = kept
	return removed, nil
}

// All returns a copy of every recorded attempt, oldest first
func (r *MemoryLoginAttemptRepo) All() []models.LoginAttempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.LoginAttempt, len(r.attempts))
	copy(out, r.attempts)
	return out
}
