package config

import (
	"os"
	"path/filepath"
	"testing"
)

func setSupabaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
	t.Setenv("EVENTS_CONFIG", "")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("LOG_LEVEL", "")
}

func TestLoadFailsFastWithoutCredentials(t *testing.T) {
	setSupabaseEnv(t)
	t.Setenv("SUPABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error when SUPABASE_URL is missing")
	}

	setSupabaseEnv(t)
	t.Setenv("SUPABASE_ANON_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error when SUPABASE_ANON_KEY is missing")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	setSupabaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":8080" || cfg.LogLevel != "info" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.SessionTTL() <= 0 || cfg.JanitorSchedule == "" {
		t.Fatalf("janitor defaults not applied: %+v", cfg)
	}
}

func TestLoadReadsSettingsFileWithEnvOverride(t *testing.T) {
	setSupabaseEnv(t)

	path := filepath.Join(t.TempDir(), "settings.yaml")
	data := []byte("listen: \":9090\"\nsession_ttl_minutes: 30\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EVENTS_CONFIG", path)
	t.Setenv("LISTEN_ADDR", ":7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SessionTTLMinutes != 30 {
		t.Fatalf("settings file not read: %+v", cfg)
	}
	if cfg.Listen != ":7070" {
		t.Fatalf("env must override the file, got %q", cfg.Listen)
	}
}

func TestLoadRejectsBadSettingsFile(t *testing.T) {
	setSupabaseEnv(t)
	t.Setenv("EVENTS_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for an unreadable settings file")
	}
}
