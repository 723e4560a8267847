package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Embedding.BatchSize != 8 {
		t.Fatalf("default batch size = %d, want 8", cfg.Embedding.BatchSize)
	}
	if cfg.Corroboration.MaxCandidates != 25 || cfg.Corroboration.WindowDays != 3 {
		t.Fatalf("unexpected corroboration defaults: %+v", cfg.Corroboration)
	}
	if cfg.Worker.ClaimLimit != 200 {
		t.Fatalf("default claim limit = %d, want 200", cfg.Worker.ClaimLimit)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(batchSizeEnv, "16")
	t.Setenv(maxCandidatesEnv, "40")
	t.Setenv(windowDaysEnv, "7")
	t.Setenv(claimLimitEnv, "500")
	t.Setenv(databaseDSNEnv, "postgres://worker@db/evidence")

	cfg := Load()
	if cfg.Embedding.BatchSize != 16 {
		t.Fatalf("batch size override failed: %d", cfg.Embedding.BatchSize)
	}
	if cfg.Corroboration.MaxCandidates != 40 || cfg.Corroboration.WindowDays != 7 {
		t.Fatalf("corroboration overrides failed: %+v", cfg.Corroboration)
	}
	if cfg.Worker.ClaimLimit != 500 {
		t.Fatalf("claim limit override failed: %d", cfg.Worker.ClaimLimit)
	}
	if cfg.Database.DSN != "postgres://worker@db/evidence" {
		t.Fatalf("dsn override failed: %s", cfg.Database.DSN)
	}
}

func TestLoadInvalidEnvIgnored(t *testing.T) {
	t.Setenv(batchSizeEnv, "not-a-number")

	cfg := Load()
	if cfg.Embedding.BatchSize != 8 {
		t.Fatalf("invalid env should keep default, got %d", cfg.Embedding.BatchSize)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
logging:
  level: warn
corroboration:
  maxCandidates: 12
worker:
  claimLimit: 50
  interval: 30s
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()
	if cfg.Logging.Level != "warn" {
		t.Fatalf("yaml level not applied: %s", cfg.Logging.Level)
	}
	if cfg.Corroboration.MaxCandidates != 12 {
		t.Fatalf("yaml maxCandidates not applied: %d", cfg.Corroboration.MaxCandidates)
	}
	if cfg.Worker.ClaimLimit != 50 {
		t.Fatalf("yaml claimLimit not applied: %d", cfg.Worker.ClaimLimit)
	}
	if cfg.Worker.Interval.Std().Seconds() != 30 {
		t.Fatalf("yaml interval not applied: %s", cfg.Worker.Interval.Std())
	}
}
