package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	// Supabase
	SupabaseURL            string `env:"SUPABASE_URL"`
	SupabasePublishableKey string `env:"SUPABASE_PUBLISHABLE_KEY"`
	SupabaseJWTSecret      string `env:"SUPABASE_JWT_SECRET"`
	SupabaseStorageBucket  string `env:"SUPABASE_STORAGE_BUCKET" env-default:"return-photos"`

	// Database
	DatabaseURL string `env:"DATABASE_URL"`

	// Notification webhook
	NotifyWebhookURL string        `env:"NOTIFY_WEBHOOK_URL"`
	NotifyTimeout    time.Duration `env:"NOTIFY_TIMEOUT" env-default:"10s"`

	// Photo pipeline
	MaxPhotos            int           `env:"MAX_PHOTOS" env-default:"5"`
	MaxInputBytes        int64         `env:"MAX_INPUT_BYTES" env-default:"2097152"`
	UploadMaxAttempts    int           `env:"UPLOAD_MAX_ATTEMPTS" env-default:"3"`
	UploadAttemptTimeout time.Duration `env:"UPLOAD_ATTEMPT_TIMEOUT" env-default:"30s"`
	UploadBackoffUnit    time.Duration `env:"UPLOAD_BACKOFF_UNIT" env-default:"1s"`

	// Sessions
	SessionTTL time.Duration `env:"SESSION_TTL" env-default:"2h"`

	// Server
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.NotifyWebhookURL == "" {
		return fmt.Errorf("NOTIFY_WEBHOOK_URL is required")
	}
	if c.MaxPhotos < 1 {
		return fmt.Errorf("MAX_PHOTOS must be at least 1, got %d", c.MaxPhotos)
	}
	if c.MaxInputBytes <= 0 {
		return fmt.Errorf("MAX_INPUT_BYTES must be positive")
	}
	if c.UploadMaxAttempts < 1 {
		return fmt.Errorf("UPLOAD_MAX_ATTEMPTS must be at least 1, got %d", c.UploadMaxAttempts)
	}
	if c.UploadAttemptTimeout <= 0 {
		return fmt.Errorf("UPLOAD_ATTEMPT_TIMEOUT must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
