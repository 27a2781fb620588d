package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration. Supabase credentials
// come from the environment and are mandatory; server settings may also be
// supplied through an optional YAML file pointed at by EVENTS_CONFIG.
type Config struct {
	SupabaseURL     string `yaml:"-"`
	SupabaseAnonKey string `yaml:"-"`

	// Listen is the HTTP listen address for the web UI.
	Listen string `yaml:"listen"`

	LogLevel string `yaml:"log_level"`

	// SessionTTLMinutes is how long an idle browser session is kept
	// before the janitor evicts it.
	SessionTTLMinutes int `yaml:"session_ttl_minutes"`

	// JanitorSchedule is a cron expression for the session janitor
	// (prune idle sessions, refresh tokens close to expiry).
	JanitorSchedule string `yaml:"janitor_schedule"`
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// Normalize fills in missing values with defaults so a partially-filled
// settings file still behaves.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.SessionTTLMinutes <= 0 {
		c.SessionTTLMinutes = 12 * 60
	}
	if c.JanitorSchedule == "" {
		c.JanitorSchedule = "*/5 * * * *"
	}
}

// Load reads .env (if present), the optional YAML settings file, and the
// environment. It returns an error if the Supabase credentials are missing:
// the application refuses to start without them.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	if path := os.Getenv("EVENTS_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read settings file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse settings file %s: %w", path, err)
		}
	}

	cfg.SupabaseURL = os.Getenv("SUPABASE_URL")
	cfg.SupabaseAnonKey = os.Getenv("SUPABASE_ANON_KEY")

	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	cfg.Normalize()

	if cfg.SupabaseURL == "" || cfg.SupabaseAnonKey == "" {
		return nil, errors.New("missing Supabase environment variables: SUPABASE_URL and SUPABASE_ANON_KEY are required")
	}

	return cfg, nil
}
