// Package routes handles the setup and configuration of API routes
package routes

import (
	"database/sql"
	_ "securevault/docs" // Import swagger docs
	"securevault/internal/api/handlers"
	"securevault/internal/api/middleware"
	"securevault/internal/auth"
	"securevault/internal/config"
	"securevault/internal/repository/postgres"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes and their handlers
func SetupRoutes(cfg *config.Config, db *sql.DB) *gin.Engine {
	// Create router
	r := gin.Default()

	// Initialize health handler for basic routes
	healthHandler := handlers.NewHealthHandler(db)

	// Routes without rate limiting
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Apply rate limiting to all other routes
	r.Use(middleware.NewRateLimiter(cfg).Middleware())

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	loginAttemptRepo := postgres.NewLoginAttemptRepository(db)

	// Initialize services
	authService := auth.NewService(cfg, sessionRepo)
	guard := auth.NewGuard(accountRepo, cfg.Auth.LockoutThreshold, cfg.Auth.LockoutDuration)
	hasher := auth.NewHasher(cfg.Auth.Argon2Memory, cfg.Auth.Argon2Time, cfg.Auth.Argon2Parallelism)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(
		accountRepo,
		loginAttemptRepo,
		authService,
		guard,
		hasher,
		cfg,
	)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Health check (no authentication required)
		v1.GET("/health", healthHandler.Health)

		// Auth routes
		authGroup := v1.Group("/auth")
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
	}

	return r
}
