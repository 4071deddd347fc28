package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load("")
	if cfg.Port != 8082 {
		t.Fatalf("Port = %d, want default 8082", cfg.Port)
	}
	if cfg.Host != "127.0.0.1" {
		t.Fatalf("Host = %q, want default 127.0.0.1", cfg.Host)
	}
	if len(cfg.AllowOrigins) != 1 || cfg.AllowOrigins[0] != "*" {
		t.Fatalf("AllowOrigins = %v, want [*]", cfg.AllowOrigins)
	}
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stickler.toml")
	content := `
host = "0.0.0.0"
port = 9090
log_level = "debug"
default_match_threshold = 0.9
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load(path)
	if cfg.Host != "0.0.0.0" {
		t.Fatalf("Host = %q, want 0.0.0.0", cfg.Host)
	}
	if cfg.Port != 9090 {
		t.Fatalf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.DefaultMatchThreshold != 0.9 {
		t.Fatalf("DefaultMatchThreshold = %v, want 0.9", cfg.DefaultMatchThreshold)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stickler.toml")
	if err := os.WriteFile(path, []byte(`port = 9090`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PORT", "7000")
	cfg := Load(path)
	if cfg.Port != 7000 {
		t.Fatalf("Port = %d, want env override 7000", cfg.Port)
	}
}

func TestLoadMissingFilePathIgnored(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if cfg.Port != 8082 {
		t.Fatalf("Port = %d, want default 8082 when file is missing", cfg.Port)
	}
}

func TestAddrFormatsHostPort(t *testing.T) {
	cfg := Config{Host: "127.0.0.1", Port: 8082}
	if got := cfg.Addr(); got != "127.0.0.1:8082" {
		t.Fatalf("Addr() = %q, want 127.0.0.1:8082", got)
	}
}

func TestEngineOptionsCarriesComparisonDefaults(t *testing.T) {
	cfg := Config{RecallWithFD: true, DocumentNonMatches: true}
	opts := cfg.EngineOptions()
	if !opts.RecallWithFD {
		t.Fatal("EngineOptions().RecallWithFD = false, want true")
	}
	if !opts.DocumentNonMatches {
		t.Fatal("EngineOptions().DocumentNonMatches = false, want true")
	}
}
