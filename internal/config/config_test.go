package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"SUPABASE_URL", "SUPABASE_KEY", "HTTP_ADDR", "LOG_LEVEL", "LOG_FORMAT",
	"SESSION_SECRET", "SESSION_TTL", "REDIS_URL", "REVALIDATE_CHANNEL", "DATABASE_URL",
	"CORS_ALLOWED_ORIGINS", "LOGIN_RATE_PER_SECOND", "LOGIN_BURST",
}

// clearEnv blanks every variable the config reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFrom("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 1, cfg.LoginRatePerSecond)
	assert.Equal(t, 5, cfg.LoginBurst)
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_addr: \":9090\"\nlog_level: debug\nsession_ttl: 2h\n"), 0o600))

	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("SUPABASE_URL", "https://proj.supabase.co")
	t.Setenv("SUPABASE_KEY", "service-key")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "service-key", cfg.SupabaseKey)
	assert.NoError(t, cfg.ValidateBackend())
}

func TestLoadFrom_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Validate(), "empty config must fail")

	cfg.SupabaseURL = "proj.supabase.co"
	cfg.SupabaseKey = "k"
	assert.Error(t, cfg.Validate(), "relative URL must fail")

	cfg.SupabaseURL = "https://proj.supabase.co"
	assert.Error(t, cfg.Validate(), "short session secret must fail")

	cfg.SessionSecret = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, cfg.Validate())
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " http://localhost:3000, ,https://dash.example.com"}
	assert.Equal(t, []string{"http://localhost:3000", "https://dash.example.com"}, cfg.AllowedOrigins())
}
