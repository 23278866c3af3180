package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_ENV", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != "release" {
		t.Fatalf("expected release mode, got %q", cfg.Mode)
	}
	if cfg.APIPort != 8080 || cfg.GatewayPort != 8090 {
		t.Fatalf("unexpected ports: api=%d gateway=%d", cfg.APIPort, cfg.GatewayPort)
	}
	if cfg.DBPath != "./data/questhall.db" {
		t.Fatalf("unexpected db path: %q", cfg.DBPath)
	}
	if cfg.ReadLimit != 32768 {
		t.Fatalf("unexpected read limit: %d", cfg.ReadLimit)
	}
	if cfg.Secret == "" {
		t.Fatal("expected a default secret")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	yaml := []byte("mode: debug\napi_port: 9001\ngateway_port: 9002\ndb_path: /tmp/test.db\n")
	if err := os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), yaml, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Chdir(dir)
	t.Setenv("CONFIG_ENV", "test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != "debug" {
		t.Fatalf("expected debug mode, got %q", cfg.Mode)
	}
	if cfg.APIPort != 9001 || cfg.GatewayPort != 9002 {
		t.Fatalf("unexpected ports: api=%d gateway=%d", cfg.APIPort, cfg.GatewayPort)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Fatalf("unexpected db path: %q", cfg.DBPath)
	}
	// Keys absent from the file keep their defaults.
	if cfg.ReadLimit != 32768 {
		t.Fatalf("expected default read limit, got %d", cfg.ReadLimit)
	}
}
