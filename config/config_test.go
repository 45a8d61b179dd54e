package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://nestwatch:pw@localhost/nestwatch")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("expected default listen addr, got %q", cfg.ListenAddr)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level, got %q", cfg.LogLevel)
	}
	if cfg.Sweep.Workers != 4 {
		t.Errorf("expected default worker count, got %d", cfg.Sweep.Workers)
	}
	if cfg.Sweep.Notifier != "store" {
		t.Errorf("expected store notifier default, got %q", cfg.Sweep.Notifier)
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestLoadSweepOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://nestwatch:pw@localhost/nestwatch")
	t.Setenv("SWEEP_CRON", "0 * * * *")
	t.Setenv("SWEEP_INTERVAL", "30m")
	t.Setenv("SWEEP_WORKERS", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Sweep.Cron != "0 * * * *" {
		t.Errorf("cron not picked up, got %q", cfg.Sweep.Cron)
	}
	if cfg.Sweep.Interval != 30*time.Minute {
		t.Errorf("interval not picked up, got %s", cfg.Sweep.Interval)
	}
	if cfg.Sweep.Workers != 8 {
		t.Errorf("workers not picked up, got %d", cfg.Sweep.Workers)
	}
}

func writeSweepYAML(t *testing.T, contents string) {
	t.Helper()
	dir := t.TempDir()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			t.Fatalf("restore wd failed: %v", err)
		}
	})
	if err := os.Mkdir(filepath.Join(dir, "config"), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, sweepConfigPath), []byte(contents), 0644); err != nil {
		t.Fatalf("write sweep.yaml failed: %v", err)
	}
}

func TestLoadSweepYAMLOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://nestwatch:pw@localhost/nestwatch")
	writeSweepYAML(t, "cron: \"*/10 * * * *\"\ninterval: 15m\nworkers: 6\nnotifier: log\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Sweep.Cron != "*/10 * * * *" {
		t.Errorf("yaml cron not applied, got %q", cfg.Sweep.Cron)
	}
	if cfg.Sweep.Interval != 15*time.Minute {
		t.Errorf("yaml interval not applied, got %s", cfg.Sweep.Interval)
	}
	if cfg.Sweep.Workers != 6 {
		t.Errorf("yaml workers not applied, got %d", cfg.Sweep.Workers)
	}
	if cfg.Sweep.Notifier != "log" {
		t.Errorf("yaml notifier not applied, got %q", cfg.Sweep.Notifier)
	}
}

func TestLoadSweepYAMLPartialKeepsEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://nestwatch:pw@localhost/nestwatch")
	t.Setenv("SWEEP_WORKERS", "8")
	writeSweepYAML(t, "interval: 1h\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Sweep.Interval != time.Hour {
		t.Errorf("yaml interval not applied, got %s", cfg.Sweep.Interval)
	}
	if cfg.Sweep.Workers != 8 {
		t.Errorf("env workers lost, got %d", cfg.Sweep.Workers)
	}
}

func TestLoadSweepYAMLBadInterval(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://nestwatch:pw@localhost/nestwatch")
	writeSweepYAML(t, "interval: whenever\n")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparseable yaml interval")
	}
}

func TestLoadIgnoresMalformedInterval(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://nestwatch:pw@localhost/nestwatch")
	t.Setenv("SWEEP_INTERVAL", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Sweep.Interval != 0 {
		t.Errorf("malformed interval should stay unset, got %s", cfg.Sweep.Interval)
	}
}
