package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Strategist/internal/scoring"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Hermes     HermesConfig     `yaml:"hermes"`
	History    HistoryConfig    `yaml:"history"`
	Export     ExportConfig     `yaml:"export"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// HermesConfig controls evaluation events. An empty URL disables them.
// Events are retained in Stream for MaxAge, keeping at most MaxPerPair
// messages per pair and outcome; zero means unlimited.
type HermesConfig struct {
	URL        string        `yaml:"url"`
	Stream     string        `yaml:"stream"`
	MaxAge     time.Duration `yaml:"max_age"`
	MaxPerPair int64         `yaml:"max_per_pair"`
}

// HistoryConfig selects where evaluation history is appended.
// Backend is one of "memory", "badger" or "postgres".
type HistoryConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type ExportConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	Header  string `yaml:"header"`
}

type EvaluationConfig struct {
	Criteria        []scoring.Criterion `yaml:"criteria"`
	TierWeights     TierWeights         `yaml:"tier_weights"`
	WeightTolerance float64             `yaml:"weight_tolerance"`
	MinStrategies   int                 `yaml:"min_strategies"`
	MaxStrategies   int                 `yaml:"max_strategies"`
}

// TierWeights maps the coarse Low/Medium/High importance levels onto numeric weights.
type TierWeights struct {
	Low    float64 `yaml:"low"`
	Medium float64 `yaml:"medium"`
	High   float64 `yaml:"high"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultCriteria returns the six integration criteria. The first three are
// maximised, the last three minimised.
func DefaultCriteria() []scoring.Criterion {
	return []scoring.Criterion{
		{Name: "Compatibility", Direction: scoring.Maximize, Description: "How well the systems can work together"},
		{Name: "Cost", Direction: scoring.Maximize, Description: "Implementation and maintenance costs"},
		{Name: "Time-consuming", Direction: scoring.Maximize, Description: "Estimated time required for integration"},
		{Name: "Risks", Direction: scoring.Minimize, Description: "Potential risks and failure points"},
		{Name: "Flexibility", Direction: scoring.Minimize, Description: "Ability to adapt to future changes"},
		{Name: "Security", Direction: scoring.Minimize, Description: "Data protection and access control"},
	}
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Hermes: HermesConfig{
			Stream:     "STRATEGIST_EVENTS",
			MaxAge:     30 * 24 * time.Hour,
			MaxPerPair: 1000,
		},
		History: HistoryConfig{
			Backend: "memory",
			Path:    "data/history",
		},
		Export: ExportConfig{
			Enabled: true,
			Dir:     "results",
			Header:  "Final Score",
		},
		Evaluation: EvaluationConfig{
			Criteria: DefaultCriteria(),
			TierWeights: TierWeights{
				Low:    0.1,
				Medium: 0.3,
				High:   0.5,
			},
			WeightTolerance: scoring.DefaultWeightTolerance,
			MinStrategies:   2,
			MaxStrategies:   4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	for i := range cfg.Evaluation.Criteria {
		cfg.Evaluation.Criteria[i].Direction = scoring.ParseDirection(string(cfg.Evaluation.Criteria[i].Direction))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail at evaluation time.
func (c *Config) Validate() error {
	if len(c.Evaluation.Criteria) == 0 {
		return fmt.Errorf("evaluation: at least one criterion is required")
	}
	seen := make(map[string]bool)
	for _, cr := range c.Evaluation.Criteria {
		if strings.TrimSpace(cr.Name) == "" {
			return fmt.Errorf("evaluation: criterion name must not be empty")
		}
		if seen[cr.Name] {
			return fmt.Errorf("evaluation: duplicate criterion %q", cr.Name)
		}
		seen[cr.Name] = true
	}
	if c.Evaluation.MinStrategies < 1 || c.Evaluation.MaxStrategies < c.Evaluation.MinStrategies {
		return fmt.Errorf("evaluation: invalid strategy bounds %d-%d", c.Evaluation.MinStrategies, c.Evaluation.MaxStrategies)
	}
	if c.Evaluation.WeightTolerance < 0 {
		return fmt.Errorf("evaluation: weight_tolerance must not be negative")
	}
	if c.Hermes.URL != "" {
		if strings.TrimSpace(c.Hermes.Stream) == "" {
			return fmt.Errorf("hermes: stream name is required")
		}
		if c.Hermes.MaxAge < 0 || c.Hermes.MaxPerPair < 0 {
			return fmt.Errorf("hermes: retention limits must not be negative")
		}
	}
	switch c.History.Backend {
	case "memory", "badger":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("history: postgres backend requires database.url")
		}
	default:
		return fmt.Errorf("history: unknown backend %q", c.History.Backend)
	}
	switch c.Export.Header {
	case "Score", "Final Score":
	default:
		return fmt.Errorf("export: header must be \"Score\" or \"Final Score\", got %q", c.Export.Header)
	}
	return nil
}

// Directions returns the configured criterion directions in order.
func (c *Config) Directions() []scoring.Direction {
	d := make([]scoring.Direction, len(c.Evaluation.Criteria))
	for i, cr := range c.Evaluation.Criteria {
		d[i] = cr.Direction
	}
	return d
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("STRATEGIST_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("STRATEGIST_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("STRATEGIST_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("STRATEGIST_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("STRATEGIST_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("STRATEGIST_HERMES_STREAM"); v != "" {
		cfg.Hermes.Stream = v
	}
	if v := os.Getenv("STRATEGIST_HERMES_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Hermes.MaxAge = d
		}
	}
	if v := os.Getenv("STRATEGIST_HISTORY_BACKEND"); v != "" {
		cfg.History.Backend = v
	}
	if v := os.Getenv("STRATEGIST_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
	if v := os.Getenv("STRATEGIST_EXPORT_DIR"); v != "" {
		cfg.Export.Dir = v
	}
	if v := os.Getenv("STRATEGIST_EXPORT_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Export.Enabled = b
		}
	}
	if v := os.Getenv("STRATEGIST_WEIGHT_TOLERANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Evaluation.WeightTolerance = f
		}
	}
	if v := os.Getenv("STRATEGIST_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("STRATEGIST_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
