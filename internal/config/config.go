package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvDatabasePath  = "GARAGE_DB_PATH"
	EnvLogLevel      = "GARAGE_LOG_LEVEL"
	EnvLogFormat     = "GARAGE_LOG_FORMAT"
	EnvResponseSLA   = "GARAGE_EMERGENCY_SLA"
	EnvSweepSchedule = "GARAGE_SWEEP_SCHEDULE"
)

// Config represents the garage configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Emergency EmergencyConfig `yaml:"emergency"`
}

// DatabaseConfig locates the SQLite database file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// EmergencyConfig controls roadside emergency handling.
type EmergencyConfig struct {
	ResponseSLA   time.Duration `yaml:"response_sla"`
	SweepSchedule string        `yaml:"sweep_schedule"` // cron spec for the auto-cancel sweep
}

// DefaultDir returns ~/.garage.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".garage"), nil
}

// DefaultPath returns ~/.garage/config.yaml.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	dbPath := "garage.db"
	if dir, err := DefaultDir(); err == nil {
		dbPath = filepath.Join(dir, "garage.db")
	}
	return &Config{
		Database: DatabaseConfig{Path: dbPath},
		Log:      LogConfig{Level: "info", Format: "console"},
		Emergency: EmergencyConfig{
			ResponseSLA:   15 * time.Minute,
			SweepSchedule: "@every 1m",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path,
// then envFile, then GARAGE_* environment variables. Missing files are skipped.
// Variables already set in the environment win over envFile.
func Load(path, envFile string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	if envFile != "" {
		if _, statErr := os.Stat(envFile); statErr == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the YAML file at path over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvDatabasePath); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv(EnvResponseSLA); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvResponseSLA, err)
		}
		cfg.Emergency.ResponseSLA = d
	}
	if v := os.Getenv(EnvSweepSchedule); v != "" {
		cfg.Emergency.SweepSchedule = v
	}
	return nil
}

// Validate checks the values a running process depends on.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Emergency.ResponseSLA <= 0 {
		return fmt.Errorf("emergency response SLA must be positive")
	}
	return nil
}

// SaveConfig writes cfg as YAML to path, creating its directory.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
