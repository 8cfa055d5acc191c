package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/Strategist/internal/scoring"
)

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"STRATEGIST_PORT", "STRATEGIST_METRICS_PORT", "STRATEGIST_ADMIN_TOKEN",
		"STRATEGIST_DATABASE_URL", "STRATEGIST_HERMES_URL", "STRATEGIST_HERMES_STREAM",
		"STRATEGIST_HERMES_MAX_AGE", "STRATEGIST_HISTORY_BACKEND",
		"STRATEGIST_HISTORY_PATH", "STRATEGIST_EXPORT_DIR", "STRATEGIST_EXPORT_ENABLED",
		"STRATEGIST_WEIGHT_TOLERANCE", "STRATEGIST_LOG_LEVEL", "STRATEGIST_LOG_FORMAT",
	}
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8700 {
		t.Errorf("expected port 8700, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected metrics port 8701, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Hermes.URL != "" {
		t.Errorf("expected hermes disabled by default, got %s", cfg.Hermes.URL)
	}
	if cfg.Hermes.Stream != "STRATEGIST_EVENTS" || cfg.Hermes.MaxAge != 720*time.Hour || cfg.Hermes.MaxPerPair != 1000 {
		t.Errorf("unexpected hermes retention defaults: %+v", cfg.Hermes)
	}
	if cfg.History.Backend != "memory" {
		t.Errorf("expected memory history backend, got %s", cfg.History.Backend)
	}
	if !cfg.Export.Enabled || cfg.Export.Dir != "results" || cfg.Export.Header != "Final Score" {
		t.Errorf("unexpected export defaults: %+v", cfg.Export)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}

	ev := cfg.Evaluation
	if ev.MinStrategies != 2 || ev.MaxStrategies != 4 {
		t.Errorf("expected strategy bounds 2-4, got %d-%d", ev.MinStrategies, ev.MaxStrategies)
	}
	if math.Abs(ev.WeightTolerance-0.01) > 1e-12 {
		t.Errorf("expected tolerance 0.01, got %f", ev.WeightTolerance)
	}
	if ev.TierWeights != (TierWeights{Low: 0.1, Medium: 0.3, High: 0.5}) {
		t.Errorf("unexpected tier weights: %+v", ev.TierWeights)
	}

	want := []scoring.Direction{
		scoring.Maximize, scoring.Maximize, scoring.Maximize,
		scoring.Minimize, scoring.Minimize, scoring.Minimize,
	}
	got := cfg.Directions()
	if len(got) != len(want) {
		t.Fatalf("expected %d criteria, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("criterion %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if ev.Criteria[0].Name != "Compatibility" || ev.Criteria[0].Description == "" {
		t.Errorf("unexpected first criterion: %+v", ev.Criteria[0])
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("STRATEGIST_PORT", "9000")
	t.Setenv("STRATEGIST_METRICS_PORT", "9001")
	t.Setenv("STRATEGIST_ADMIN_TOKEN", "secret-token")
	t.Setenv("STRATEGIST_DATABASE_URL", "postgres://localhost/strategist_test")
	t.Setenv("STRATEGIST_HERMES_URL", "nats://nats:4222")
	t.Setenv("STRATEGIST_HERMES_STREAM", "STRATEGIST_STAGING")
	t.Setenv("STRATEGIST_HERMES_MAX_AGE", "48h")
	t.Setenv("STRATEGIST_HISTORY_BACKEND", "postgres")
	t.Setenv("STRATEGIST_EXPORT_DIR", "/tmp/out")
	t.Setenv("STRATEGIST_EXPORT_ENABLED", "false")
	t.Setenv("STRATEGIST_WEIGHT_TOLERANCE", "0.05")
	t.Setenv("STRATEGIST_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 9001 {
		t.Errorf("expected metrics port 9001, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Server.AdminToken != "secret-token" {
		t.Errorf("expected admin token 'secret-token', got '%s'", cfg.Server.AdminToken)
	}
	if cfg.Database.URL != "postgres://localhost/strategist_test" {
		t.Errorf("expected database URL, got '%s'", cfg.Database.URL)
	}
	if cfg.Hermes.URL != "nats://nats:4222" {
		t.Errorf("expected hermes URL, got '%s'", cfg.Hermes.URL)
	}
	if cfg.Hermes.Stream != "STRATEGIST_STAGING" || cfg.Hermes.MaxAge != 48*time.Hour {
		t.Errorf("unexpected hermes stream config: %+v", cfg.Hermes)
	}
	if cfg.History.Backend != "postgres" {
		t.Errorf("expected postgres backend, got '%s'", cfg.History.Backend)
	}
	if cfg.Export.Enabled || cfg.Export.Dir != "/tmp/out" {
		t.Errorf("unexpected export config: %+v", cfg.Export)
	}
	if cfg.Evaluation.WeightTolerance != 0.05 {
		t.Errorf("expected tolerance 0.05, got %f", cfg.Evaluation.WeightTolerance)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got '%s'", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "strategist.yaml")
	data := `
server:
  port: 8123
hermes:
  max_age: 168h
  max_per_pair: 50
history:
  backend: badger
  path: /var/lib/strategist
export:
  header: Score
evaluation:
  max_strategies: 6
  criteria:
    - name: Cost
      direction: minimize
    - name: Fit
      direction: Maximise
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8123 {
		t.Errorf("expected port 8123, got %d", cfg.Server.Port)
	}
	if cfg.Hermes.MaxAge != 7*24*time.Hour || cfg.Hermes.MaxPerPair != 50 || cfg.Hermes.Stream != "STRATEGIST_EVENTS" {
		t.Errorf("unexpected hermes config: %+v", cfg.Hermes)
	}
	if cfg.History.Backend != "badger" || cfg.History.Path != "/var/lib/strategist" {
		t.Errorf("unexpected history config: %+v", cfg.History)
	}
	if cfg.Export.Header != "Score" {
		t.Errorf("expected header 'Score', got %q", cfg.Export.Header)
	}
	if cfg.Evaluation.MaxStrategies != 6 || cfg.Evaluation.MinStrategies != 2 {
		t.Errorf("unexpected bounds %d-%d", cfg.Evaluation.MinStrategies, cfg.Evaluation.MaxStrategies)
	}
	if len(cfg.Evaluation.Criteria) != 2 {
		t.Fatalf("expected 2 criteria, got %d", len(cfg.Evaluation.Criteria))
	}
	if cfg.Evaluation.Criteria[0].Direction != scoring.Minimize || cfg.Evaluation.Criteria[1].Direction != scoring.Maximize {
		t.Errorf("directions not normalised: %+v", cfg.Evaluation.Criteria)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no criteria", func(c *Config) { c.Evaluation.Criteria = nil }},
		{"duplicate criterion", func(c *Config) {
			c.Evaluation.Criteria = append(c.Evaluation.Criteria, c.Evaluation.Criteria[0])
		}},
		{"bad bounds", func(c *Config) { c.Evaluation.MinStrategies, c.Evaluation.MaxStrategies = 4, 2 }},
		{"negative tolerance", func(c *Config) { c.Evaluation.WeightTolerance = -1 }},
		{"unknown backend", func(c *Config) { c.History.Backend = "s3" }},
		{"postgres without url", func(c *Config) { c.History.Backend = "postgres"; c.Database.URL = "" }},
		{"bad header", func(c *Config) { c.Export.Header = "Total" }},
		{"hermes without stream", func(c *Config) { c.Hermes.URL = "nats://localhost:4222"; c.Hermes.Stream = " " }},
		{"negative hermes retention", func(c *Config) { c.Hermes.URL = "nats://localhost:4222"; c.Hermes.MaxAge = -time.Hour }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
