package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/garage/internal/config"
	"github.com/example/garage/internal/db"
)

func clearGarageEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		config.EnvDatabasePath,
		config.EnvLogLevel,
		config.EnvLogFormat,
		config.EnvResponseSLA,
		config.EnvSweepSchedule,
	} {
		t.Setenv(k, "")
	}
}

func writeTestConfig(t *testing.T, mutate func(*config.Config)) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(dir, "garage.db")
	if mutate != nil {
		mutate(cfg)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := config.SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	return path, cfg.Database.Path
}

func statuses(results []CheckResult) map[string]string {
	out := make(map[string]string, len(results))
	for _, r := range results {
		out[r.Name] = r.Status
	}
	return out
}

func TestRunChecks_FreshDatabaseNeedsMigration(t *testing.T) {
	clearGarageEnv(t)
	path, _ := writeTestConfig(t, nil)

	got := statuses(runChecks(context.Background(), path, ""))

	want := map[string]string{
		"Config":         "✓",
		"Database":       "✓",
		"Foreign keys":   "✓",
		"Schema version": "⚠",
	}
	for name, status := range want {
		if got[name] != status {
			t.Errorf("%s: expected %s, got %q", name, status, got[name])
		}
	}
	if _, ran := got["Schema registry"]; ran {
		t.Error("registry check should be skipped until the schema is current")
	}
}

func TestRunChecks_MigratedDatabaseIsHealthy(t *testing.T) {
	clearGarageEnv(t)
	path, dbPath := writeTestConfig(t, nil)

	database, err := db.OpenAndMigrate(context.Background(), dbPath, nil)
	if err != nil {
		t.Fatalf("OpenAndMigrate failed: %v", err)
	}
	database.Close()

	for _, r := range runChecks(context.Background(), path, "") {
		if r.Status != "✓" {
			t.Errorf("%s: expected ✓, got %s\n%s", r.Name, r.Status, r.Details)
		}
	}
}

func TestRunChecks_InvalidConfigStopsEarly(t *testing.T) {
	clearGarageEnv(t)
	path, _ := writeTestConfig(t, func(c *config.Config) { c.Log.Level = "loud" })

	results := runChecks(context.Background(), path, "")
	if len(results) != 1 {
		t.Fatalf("expected only the config check, got %d results", len(results))
	}
	if results[0].Status != "✗" || results[0].Details == "" {
		t.Errorf("expected failing config check with details, got %+v", results[0])
	}
}
