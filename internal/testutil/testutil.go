// Package testutil provides utilities for testing
package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"securevault/internal/api/handlers"
	"securevault/internal/api/middleware"
	"securevault/internal/auth"
	"securevault/internal/config"
	"securevault/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

// TestContext holds common test dependencies. Repositories are in-memory
// fakes mirroring the Postgres contracts, so handler and service tests run
// without a database.
type TestContext struct {
	T                *testing.T
	Config           *config.Config
	AccountRepo      *MemoryAccountRepo
	SessionRepo      *MemorySessionRepo
	LoginAttemptRepo *MemoryLoginAttemptRepo
	AuthService      *auth.Service
	Guard            *auth.Guard
	Hasher           *auth.Hasher
	AuthHandler      *handlers.AuthHandler
	Router           *gin.Engine
}

// NewTestConfig returns a configuration suitable for tests. Argon2 work
// factors are reduced so password-hashing tests stay fast.
func NewTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.API.Port = "8080"
	cfg.Auth = config.AuthConfig{
		JWTSecret:         "test-secret-key",
		SessionDuration:   24 * time.Hour,
		LockoutThreshold:  5,
		LockoutDuration:   30 * time.Minute,
		RegistrationOpen:  true,
		Argon2Memory:      8 * 1024,
		Argon2Time:        1,
		Argon2Parallelism: 1,
	}
	cfg.Cleanup = config.CleanupConfig{
		Schedule:         "0 * * * *",
		AttemptRetention: 90 * 24 * time.Hour,
	}
	cfg.RateLimit.Requests = 1000
	cfg.RateLimit.Window = 60
	cfg.RateLimit.Burst = 1000
	return cfg
}

// NewTestContext creates a new test context with all dependencies
func NewTestContext(t *testing.T) *TestContext {
	t.Helper()

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	// Initialize validators
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("nospaces", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			return strings.TrimSpace(value) != ""
		})
	}

	cfg := NewTestConfig()

	sessionRepo := NewMemorySessionRepo()
	accountRepo := NewMemoryAccountRepo(sessionRepo)
	loginAttemptRepo := NewMemoryLoginAttemptRepo()

	authService := auth.NewService(cfg, sessionRepo)
	guard := auth.NewGuard(accountRepo, cfg.Auth.LockoutThreshold, cfg.Auth.LockoutDuration)
	hasher := auth.NewHasher(cfg.Auth.Argon2Memory, cfg.Auth.Argon2Time, cfg.Auth.Argon2Parallelism)

	authHandler := handlers.NewAuthHandler(
		accountRepo,
		loginAttemptRepo,
		authService,
		guard,
		hasher,
		cfg,
	)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	router := gin.New()
	authGroup := router.Group("/api/v1/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authMiddleware.AuthRequired(), authHandler.Logout)
		authGroup.POST("/verify-token", authMiddleware.AuthRequired(), authHandler.VerifyToken)
		authGroup.POST("/change-password", authMiddleware.AuthRequired(), authHandler.ChangePassword)
		authGroup.POST("/resend-verification", authMiddleware.AuthRequired(), authHandler.ResendVerification)
		authGroup.GET("/sessions", authMiddleware.AuthRequired(), authHandler.Sessions)
		authGroup.GET("/login-history", authMiddleware.AuthRequired(), authHandler.LoginHistory)
	}

	return &TestContext{
		T:                t,
		Config:           cfg,
		AccountRepo:      accountRepo,
		SessionRepo:      sessionRepo,
		LoginAttemptRepo: loginAttemptRepo,
		AuthService:      authService,
		Guard:            guard,
		Hasher:           hasher,
		AuthHandler:      authHandler,
		Router:           router,
	}
}

// CreateTestAccount stores an account with the given credentials and returns it
func (tc *TestContext) CreateTestAccount(username, email, password string) *models.Account {
	tc.T.Helper()

	hash, err := tc.Hasher.Hash(password)
	require.NoError(tc.T, err)

	account := &models.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		IsVerified:   true,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	tc.AccountRepo.Put(account)
	return account
}

// LoginTestAccount creates a session for the account and returns a bearer
// token bound to it together with the opaque session token
func (tc *TestContext) LoginTestAccount(account *models.Account) (string, string) {
	tc.T.Helper()

	session, err := tc.AuthService.CreateSession(context.Background(), account.ID, "127.0.0.1", "test-agent")
	require.NoError(tc.T, err)

	bearer, err := tc.AuthService.GenerateToken(account, session.Token, session.ExpiresAt)
	require.NoError(tc.T, err)

	return bearer, session.Token
}
