package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// API contains API server configuration
	API APIConfig
	// Auth contains authentication configuration
	Auth AuthConfig
	// Database contains database configuration
	Database DatabaseConfig
	// Cleanup contains background maintenance configuration
	Cleanup CleanupConfig

	// Rate Limiting Configuration
	RateLimit struct {
		Requests int `envconfig:"RATE_LIMIT_REQUESTS" default:"100"` // Number of requests allowed per window
		Window   int `envconfig:"RATE_LIMIT_WINDOW" default:"60"`    // Time window in seconds
		Burst    int `envconfig:"RATE_LIMIT_BURST" default:"20"`     // Maximum burst size
	}
}

// APIConfig contains API server settings
type APIConfig struct {
	// Port is the server port to listen on
	Port string
}

// AuthConfig contains authentication settings
type AuthConfig struct {
	// JWTSecret is the secret key used to sign bearer tokens
	JWTSecret string
	// SessionDuration is the absolute session lifetime
	SessionDuration time.Duration
	// LockoutThreshold is the number of failed logins before an account locks
	LockoutThreshold int
	// LockoutDuration is how long a locked account stays locked
	LockoutDuration time.Duration
	// RegistrationOpen determines if new account registration is allowed
	RegistrationOpen bool
	// Argon2Memory is the argon2id memory cost in KiB
	Argon2Memory uint32
	// Argon2Time is the argon2id time cost
	Argon2Time uint32
	// Argon2Parallelism is the argon2id lane count
	Argon2Parallelism uint8
}

// CleanupConfig contains background maintenance settings
type CleanupConfig struct {
	// Schedule is the cron schedule for maintenance runs
	Schedule string
	// AttemptRetention is how long login attempt records are kept
	AttemptRetention time.Duration
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname
	Host string
	// Port is the database server port
	Port int
	// User is the database username
	User string
	// Password is the database password
	Password string
	// DBName is the database name
	DBName string
	// SSLMode is the SSL mode for the database connection
	SSLMode string
	// MigrationsPath is the path to database migrations
	MigrationsPath string
}

// LoadFromEnv retrieves configuration from environment variables
func (c *Config) LoadFromEnv() error {
	c.API = APIConfig{
		Port: getEnvOrDefault("API_PORT", "8080"),
	}
	c.Database = DatabaseConfig{
		Host:           getEnvOrDefault("DB_HOST", "localhost"),
		Port:           getEnvAsInt("DB_PORT", 5432),
		User:           getEnvOrDefault("DB_USER", "postgres"),
		Password:       getEnvOrDefault("DB_PASSWORD", "postgres"),
		DBName:         getEnvOrDefault("DB_NAME", "securevault"),
		SSLMode:        getEnvOrDefault("DB_SSL_MODE", "disable"),
		MigrationsPath: "migrations",
	}
	c.Auth = AuthConfig{
		JWTSecret:         os.Getenv("JWT_SECRET"),
		SessionDuration:   getEnvAsDuration("SESSION_DURATION", 24*time.Hour),
		LockoutThreshold:  getEnvAsInt("LOCKOUT_THRESHOLD", 5),
		LockoutDuration:   getEnvAsDuration("LOCKOUT_DURATION", 30*time.Minute),
		RegistrationOpen:  getEnvAsBool("REGISTRATION_OPEN", true),
		Argon2Memory:      uint32(getEnvAsInt("ARGON2_MEMORY_KB", 64*1024)),
		Argon2Time:        uint32(getEnvAsInt("ARGON2_TIME", 1)),
		Argon2Parallelism: uint8(getEnvAsInt("ARGON2_PARALLELISM", 4)),
	}

	c.Cleanup = CleanupConfig{
		Schedule:         getEnvOrDefault("CLEANUP_SCHEDULE", "0 * * * *"),
		AttemptRetention: getEnvAsDuration("ATTEMPT_RETENTION", 90*24*time.Hour),
	}

	// Load rate limit configuration
	c.RateLimit.Requests = getEnvAsInt("RATE_LIMIT_REQUESTS", 100)
	c.RateLimit.Window = getEnvAsInt("RATE_LIMIT_WINDOW", 60)
	c.RateLimit.Burst = getEnvAsInt("RATE_LIMIT_BURST", 20)

	// Validate required fields
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	return nil
}

// getEnvAsInt retrieves an environment variable and converts it to an integer
func getEnvAsInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvAsBool retrieves an environment variable and converts it to a boolean
func getEnvAsBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

// getEnvAsDuration retrieves an environment variable and parses it as a duration
func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvOrDefault(key string, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
