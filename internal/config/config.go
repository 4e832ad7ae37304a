// Package config loads dashboard service configuration from the environment,
// an optional .env file and an optional YAML overlay.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const minSessionSecretBytes = 32

// Config is the full service configuration.
// Secrets come from the environment only; the YAML overlay carries non-secret settings.
type Config struct {
	SupabaseURL string `env:"SUPABASE_URL" yaml:"supabase_url"`
	SupabaseKey string `env:"SUPABASE_KEY" yaml:"-"`

	HTTPAddr  string `env:"HTTP_ADDR" yaml:"http_addr"`
	LogLevel  string `env:"LOG_LEVEL" yaml:"log_level"`
	LogFormat string `env:"LOG_FORMAT" yaml:"log_format"`

	SessionSecret string        `env:"SESSION_SECRET" yaml:"-"`
	SessionTTL    time.Duration `env:"SESSION_TTL" yaml:"session_ttl"`
	SecureCookies bool          `env:"SECURE_COOKIES" yaml:"secure_cookies"`

	RedisURL           string `env:"REDIS_URL" yaml:"redis_url"`
	RevalidateChannel  string `env:"REVALIDATE_CHANNEL" yaml:"revalidate_channel"`
	DatabaseURL        string `env:"DATABASE_URL" yaml:"-"`
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" yaml:"cors_allowed_origins"`

	LoginRatePerSecond int `env:"LOGIN_RATE_PER_SECOND" yaml:"login_rate_per_second"`
	LoginBurst         int `env:"LOGIN_BURST" yaml:"login_burst"`
}

// Load reads .env (if present), then CONFIG_FILE (if set), then the environment.
// Environment values win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return LoadFrom(os.Getenv("CONFIG_FILE"))
}

// LoadFrom is Load without the .env step, reading the YAML overlay at path when non-empty.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = 24 * time.Hour
	}
	if c.RevalidateChannel == "" {
		c.RevalidateChannel = "dashboard:revalidate"
	}
	if c.LoginRatePerSecond == 0 {
		c.LoginRatePerSecond = 1
	}
	if c.LoginBurst == 0 {
		c.LoginBurst = 5
	}
}

// ValidateBackend checks the two values that select the Supabase instance.
func (c *Config) ValidateBackend() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	parsed, err := url.Parse(c.SupabaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("SUPABASE_URL must be an absolute URL")
	}
	if parsed.User != nil {
		return fmt.Errorf("SUPABASE_URL must not include user info")
	}
	if c.SupabaseKey == "" {
		return fmt.Errorf("SUPABASE_KEY is required")
	}
	return nil
}

// Validate checks everything the HTTP service needs.
func (c *Config) Validate() error {
	if err := c.ValidateBackend(); err != nil {
		return err
	}
	if len(c.SessionSecret) < minSessionSecretBytes {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecretBytes)
	}
	if c.LoginRatePerSecond < 0 || c.LoginBurst < 0 {
		return fmt.Errorf("login rate limits must not be negative")
	}
	return nil
}

// AllowedOrigins splits CORSAllowedOrigins on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
