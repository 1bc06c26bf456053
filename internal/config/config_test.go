package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.HTTPAddr)
	}
	if cfg.Database.Driver != "memory" {
		t.Fatalf("expected default driver memory, got %q", cfg.Database.Driver)
	}
	if cfg.StatsInterval != 30*time.Second {
		t.Fatalf("expected default stats interval 30s, got %s", cfg.StatsInterval)
	}
	if cfg.RateLimit.RequestsPerSecond != 25 || cfg.RateLimit.Burst != 50 {
		t.Fatalf("unexpected rate limit defaults %+v", cfg.RateLimit)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/mint")
	t.Setenv("STATS_INTERVAL", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Fatalf("expected :9999, got %q", cfg.HTTPAddr)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != "postgres://localhost/mint" {
		t.Fatalf("unexpected database config %+v", cfg.Database)
	}
	if cfg.StatsInterval != 5*time.Second {
		t.Fatalf("expected 5s, got %s", cfg.StatsInterval)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
http_addr: ":7070"
database:
  driver: postgres
  dsn: postgres://db/mint
registry:
  endpoint: https://registry.example.com
rate_limit:
  requests_per_second: 5
  burst: 10
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if cfg.HTTPAddr != ":7070" {
		t.Fatalf("expected :7070, got %q", cfg.HTTPAddr)
	}
	if cfg.Database.DSN != "postgres://db/mint" {
		t.Fatalf("unexpected dsn %q", cfg.Database.DSN)
	}
	if cfg.Registry.Endpoint != "https://registry.example.com" {
		t.Fatalf("unexpected registry endpoint %q", cfg.Registry.Endpoint)
	}
	if cfg.RateLimit.RequestsPerSecond != 5 {
		t.Fatalf("unexpected rate limit %+v", cfg.RateLimit)
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
http_addr: ":7070"
database:
  driver: postgres
  dsn: postgres://db/mint
stats_interval: 10s
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MINT_LAYER_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// File values survive; unset env vars must not reset them to defaults.
	if cfg.HTTPAddr != ":7070" {
		t.Fatalf("yaml http_addr clobbered: got %q", cfg.HTTPAddr)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != "postgres://db/mint" {
		t.Fatalf("yaml database config clobbered: %+v", cfg.Database)
	}
	if cfg.StatsInterval != 10*time.Second {
		t.Fatalf("yaml stats_interval clobbered: got %s", cfg.StatsInterval)
	}

	// Fields the file leaves out still get defaults.
	if cfg.RateLimit.RequestsPerSecond != 25 || cfg.RateLimit.Burst != 50 {
		t.Fatalf("expected rate limit defaults, got %+v", cfg.RateLimit)
	}
}

func TestLoadEnvOverridesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
http_addr: ":7070"
database:
  driver: postgres
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MINT_LAYER_CONFIG", path)
	t.Setenv("HTTP_ADDR", ":9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Fatalf("env must win over file: got %q", cfg.HTTPAddr)
	}
	if cfg.Database.Driver != "postgres" {
		t.Fatalf("untouched file value must survive: got %q", cfg.Database.Driver)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
