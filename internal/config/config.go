// Package config loads engine configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable of the server and console binaries.
type Config struct {
	// HTTP server.
	Addr            string        `env:"WGM_ADDR" envDefault:":8080"`
	AllowedOrigins  []string      `env:"WGM_ALLOWED_ORIGINS" envDefault:"*"`
	ShutdownTimeout time.Duration `env:"WGM_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Game-master auth. The password hash comes from auth.HashPassword; an
	// empty hash disables the protected surfaces.
	GMPasswordHash string        `env:"WGM_GM_PASSWORD_HASH"`
	TokenSecret    string        `env:"WGM_TOKEN_SECRET"`
	TokenExpiry    time.Duration `env:"WGM_TOKEN_EXPIRY" envDefault:"12h"`

	// Optional persistent event store. Empty means in-memory only.
	DatabaseURL   string `env:"WGM_DATABASE_URL"`
	MigrationsDir string `env:"WGM_MIGRATIONS_DIR" envDefault:"migrations"`

	// Default model endpoint for AI players.
	ModelBaseURL string `env:"WGM_MODEL_BASE_URL" envDefault:"https://api.openai.com/v1"`
	ModelAPIKey  string `env:"WGM_MODEL_API_KEY"`
	ModelName    string `env:"WGM_MODEL_NAME" envDefault:"gpt-4o-mini"`

	// Game pacing.
	MaxDays          int           `env:"WGM_MAX_DAYS" envDefault:"20"`
	TransportRetries uint64        `env:"WGM_TRANSPORT_RETRIES" envDefault:"1"`
	TransportDelay   time.Duration `env:"WGM_TRANSPORT_DELAY" envDefault:"3s"`

	// Rate limiting for the public API.
	RateLimit       int           `env:"WGM_RATE_LIMIT" envDefault:"60"`
	RateLimitWindow time.Duration `env:"WGM_RATE_LIMIT_WINDOW" envDefault:"1m"`
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
