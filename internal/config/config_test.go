package config

import (
	"testing"
	"time"
)

const defaultMaxFileSize int64 = 100 * 1024 * 1024

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DOCMORPH_BACKEND_URL", "")
	t.Setenv("DOCMORPH_STATE_DIR", "")
	t.Setenv("DOCMORPH_PROFILE", "")
	t.Setenv("MAX_FILE_SIZE", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DOCMORPH_STARTUP_TIMEOUT", "")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")

	cfg := NewConfig()

	if cfg.GetServerPort() != "8080" {
		t.Fatalf("expected default server port 8080, got %s", cfg.GetServerPort())
	}
	if cfg.GetBackendURL() != "http://localhost:8080" {
		t.Fatalf("expected default backend url, got %s", cfg.GetBackendURL())
	}
	if cfg.GetProfile() != "default" {
		t.Fatalf("expected default profile, got %s", cfg.GetProfile())
	}
	if cfg.GetStateDir() == "" {
		t.Fatal("expected a non-empty default state directory")
	}
	if cfg.GetMaxFileSize() != defaultMaxFileSize {
		t.Fatalf("expected default max file size %d, got %d", defaultMaxFileSize, cfg.GetMaxFileSize())
	}
	if cfg.GetLogLevel() != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.GetLogLevel())
	}
	if cfg.GetStartupTimeout() != 10*time.Second {
		t.Fatalf("expected default startup timeout 10s, got %s", cfg.GetStartupTimeout())
	}
	if cfg.GetSupabaseURL() != "" {
		t.Fatalf("expected default supabase url empty, got %s", cfg.GetSupabaseURL())
	}
	if cfg.GetSupabaseKey() != "" {
		t.Fatalf("expected default supabase key empty, got %s", cfg.GetSupabaseKey())
	}
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("DOCMORPH_BACKEND_URL", "https://convert.example.com")
	t.Setenv("DOCMORPH_STATE_DIR", "/tmp/docmorph-test")
	t.Setenv("DOCMORPH_PROFILE", "work")
	t.Setenv("MAX_FILE_SIZE", "12345")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DOCMORPH_STARTUP_TIMEOUT", "3s")
	t.Setenv("SUPABASE_URL", "http://localhost:54321")
	t.Setenv("SUPABASE_ANON_KEY", "test-key")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9090" {
		t.Fatalf("expected server port 9090, got %s", cfg.GetServerPort())
	}
	if cfg.GetBackendURL() != "https://convert.example.com" {
		t.Fatalf("expected backend url override, got %s", cfg.GetBackendURL())
	}
	if cfg.GetStateDir() != "/tmp/docmorph-test" {
		t.Fatalf("expected state dir override, got %s", cfg.GetStateDir())
	}
	if cfg.GetProfile() != "work" {
		t.Fatalf("expected profile work, got %s", cfg.GetProfile())
	}
	if cfg.GetMaxFileSize() != 12345 {
		t.Fatalf("expected max file size 12345, got %d", cfg.GetMaxFileSize())
	}
	if cfg.GetLogLevel() != "debug" {
		t.Fatalf("expected log level debug, got %s", cfg.GetLogLevel())
	}
	if cfg.GetStartupTimeout() != 3*time.Second {
		t.Fatalf("expected startup timeout 3s, got %s", cfg.GetStartupTimeout())
	}
	if cfg.GetSupabaseURL() != "http://localhost:54321" {
		t.Fatalf("expected supabase url http://localhost:54321, got %s", cfg.GetSupabaseURL())
	}
	if cfg.GetSupabaseKey() != "test-key" {
		t.Fatalf("expected supabase key test-key, got %s", cfg.GetSupabaseKey())
	}
}

func TestNewConfig_Fallbacks(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SERVER_PORT", "9091")
	t.Setenv("MAX_FILE_SIZE", "not-a-number")
	t.Setenv("DOCMORPH_STARTUP_TIMEOUT", "soon")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9091" {
		t.Fatalf("expected server port 9091, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxFileSize() != defaultMaxFileSize {
		t.Fatalf("expected default max file size %d, got %d", defaultMaxFileSize, cfg.GetMaxFileSize())
	}
	if cfg.GetStartupTimeout() != 10*time.Second {
		t.Fatalf("expected default startup timeout 10s, got %s", cfg.GetStartupTimeout())
	}
}
