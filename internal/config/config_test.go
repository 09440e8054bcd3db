package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rental-inspection-backend/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_PUBLISHABLE_KEY", "anon-key")
	t.Setenv("NOTIFY_WEBHOOK_URL", "https://hooks.example.com/inspection")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "return-photos", cfg.SupabaseStorageBucket)
	assert.Equal(t, 5, cfg.MaxPhotos)
	assert.Equal(t, int64(2*1024*1024), cfg.MaxInputBytes)
	assert.Equal(t, 3, cfg.UploadMaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.UploadAttemptTimeout)
	assert.Equal(t, time.Second, cfg.UploadBackoffUnit)
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingSupabaseURL(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_PUBLISHABLE_KEY", "anon-key")
	t.Setenv("NOTIFY_WEBHOOK_URL", "https://hooks.example.com/inspection")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_URL")
}

func TestValidate(t *testing.T) {
	base := config.Config{
		SupabaseURL:            "https://example.supabase.co",
		SupabasePublishableKey: "anon-key",
		NotifyWebhookURL:       "https://hooks.example.com/inspection",
		MaxPhotos:              5,
		MaxInputBytes:          1024,
		UploadMaxAttempts:      3,
		UploadAttemptTimeout:   time.Second,
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *config.Config) {}},
		{name: "no webhook", mutate: func(c *config.Config) { c.NotifyWebhookURL = "" }, wantErr: "NOTIFY_WEBHOOK_URL"},
		{name: "zero photos", mutate: func(c *config.Config) { c.MaxPhotos = 0 }, wantErr: "MAX_PHOTOS"},
		{name: "zero attempts", mutate: func(c *config.Config) { c.UploadMaxAttempts = 0 }, wantErr: "UPLOAD_MAX_ATTEMPTS"},
		{name: "zero timeout", mutate: func(c *config.Config) { c.UploadAttemptTimeout = 0 }, wantErr: "UPLOAD_ATTEMPT_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
