package config

import (
	"os"
	"strconv"
	"time"
)

// JwtSettings carries everything the access and refresh token issuers need.
// Secrets are read once at startup and injected, never mid-request.
type JwtSettings struct {
	Issuer        string
	Audience      string
	TokenLifeTime time.Duration
	Secret        string
}

type ResetPasswordSettings struct {
	Issuer        string
	Audience      string
	TokenLifeTime time.Duration
	Secret        string
}

type SmtpSettings struct {
	Host           string
	Port           string
	SenderName     string
	SenderEmail    string
	SenderPassword string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// AppConfig general application configurations
type AppConfig struct {
	JWT                  JwtSettings
	RefreshTokenLifeTime time.Duration
	ResetPassword        ResetPasswordSettings
	Smtp                 SmtpSettings

	// Password reset deep links point at the storefront client
	ClientURL      string
	FrontendDomain string

	// Seeded administrator account
	AdminEmail    string
	AdminPassword string

	// Postgres connection string; sqlite is used when empty
	DatabaseURL string

	// Rate Limiting
	RateLimitEnabled bool
	RateLimitConfigs map[string]RateLimitConfig

	// HTTPS Enforcement
	EnforceHTTPS bool

	// Environment
	Environment string
}

func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getEnvMinutes(key string, fallback int) time.Duration {
	minutes := fallback

	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			minutes = parsed
		}
	}

	return time.Duration(minutes) * time.Minute
}

func getEnvHours(key string, fallback int) time.Duration {
	hours := fallback

	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			hours = parsed
		}
	}

	return time.Duration(hours) * time.Hour
}

// Load builds the full configuration from the process environment.
func Load() *AppConfig {
	config := GetDefaultConfig()

	config.JWT = JwtSettings{
		Issuer:        GetEnv("JWT_ISSUER", "storeapi"),
		Audience:      GetEnv("JWT_AUDIENCE", "storeapi-client"),
		TokenLifeTime: getEnvMinutes("JWT_TOKEN_LIFETIME_MINUTES", 15),
		Secret:        os.Getenv("SECRET_KEY"),
	}

	config.RefreshTokenLifeTime = getEnvHours("REFRESH_TOKEN_LIFETIME_HOURS", 24*7)

	config.ResetPassword = ResetPasswordSettings{
		Issuer:        GetEnv("RESET_PASSWORD_ISSUER", "storeapi-reset"),
		Audience:      GetEnv("RESET_PASSWORD_AUDIENCE", "storeapi-reset-client"),
		TokenLifeTime: getEnvMinutes("RESET_PASSWORD_TOKEN_LIFETIME_MINUTES", 15),
		Secret:        os.Getenv("RESET_PASSWORD_SECRET_KEY"),
	}

	config.Smtp = SmtpSettings{
		Host:           GetEnv("SMTP_SERVER", "localhost"),
		Port:           GetEnv("SMTP_PORT", "587"),
		SenderName:     GetEnv("SENDER_NAME", "Online Store"),
		SenderEmail:    os.Getenv("SENDER_EMAIL"),
		SenderPassword: os.Getenv("SENDER_EMAIL_PASSWORD"),
	}

	config.ClientURL = GetEnv("CLIENT_URL", "http://localhost:3000/reset-password")
	config.FrontendDomain = GetEnv("FRONTEND_DOMAIN", "http://localhost:3000")

	config.AdminEmail = GetEnv("ADMIN_EMAIL", "admin@store.local")
	config.AdminPassword = os.Getenv("ADMIN_PASSWORD")

	config.DatabaseURL = os.Getenv("DATABASE_URL")

	if os.Getenv("GIN_MODE") == "release" {
		config.Environment = "production"
		config.EnforceHTTPS = true
	}

	return config
}

// GetDefaultConfig returns default configuration
func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		RateLimitEnabled: true,
		RateLimitConfigs: map[string]RateLimitConfig{
			"/api/user": {
				Requests: 5,
				Window:   time.Minute,
			},
			"/api/user/login": {
				Requests: 10,
				Window:   time.Minute,
			},
			"/api/user/reset-password": {
				Requests: 3,
				Window:   time.Minute,
			},
		},
		EnforceHTTPS: false,
		Environment:  "development",
	}
}
