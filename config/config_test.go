package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseAndSecret(t *testing.T) {
	t.Setenv("DB_URL", "")
	t.Setenv("SUPABASE_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_URL")
	assert.Contains(t, err.Error(), "SUPABASE_JWT_SECRET")
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/ari")
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co/")
	t.Setenv("ALLOWED_ORIGINS", "https://ari.example.com, http://localhost:5173,")
	t.Setenv("WIZARD_SESSION_TTL", "90m")
	t.Setenv("LAUNCH_REDIRECT_DELAY", "not-a-duration")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://project.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, []string{"https://ari.example.com", "http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, 90*time.Minute, cfg.WizardSessionTTL)
	assert.Equal(t, 2*time.Second, cfg.LaunchRedirectDelay)
	assert.Equal(t, 7, cfg.DBMaxOpenConns)
	assert.Equal(t, "invitations", cfg.SupabaseStorageBucket)
	assert.False(t, cfg.TwilioEnabled())
}
