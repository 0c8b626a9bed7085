// Package config loads prochunt settings from defaults, a YAML file and the
// environment, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/fentz26/prochunt/internal/classifier"
	"github.com/fentz26/prochunt/internal/collector"
	"github.com/fentz26/prochunt/internal/logging"
	"github.com/fentz26/prochunt/internal/reaper"
)

// EnvPrefix prefixes every environment override, e.g.
// PROCHUNT_SCAN_CPU_THRESHOLD or PROCHUNT_LOGGING_LEVEL.
const EnvPrefix = "PROCHUNT"

// Config holds prochunt configuration.
type Config struct {
	Scan      ScanConfig      `yaml:"scan"`
	Terminate TerminateConfig `yaml:"terminate"`
	Baseline  BaselineConfig  `yaml:"baseline"`
	Journal   JournalConfig   `yaml:"journal"`
	Rules     RulesConfig     `yaml:"rules"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ScanConfig holds the collector thresholds.
type ScanConfig struct {
	// CPUThreshold surfaces processes at or above this CPU percentage.
	CPUThreshold float64 `yaml:"cpu_threshold" split_words:"true"`
	// MemThresholdMB surfaces processes at or above this resident size.
	MemThresholdMB float64 `yaml:"mem_threshold_mb" split_words:"true"`
	// SelfMarker is the command substring that identifies prochunt itself.
	SelfMarker string `yaml:"self_marker" split_words:"true"`
}

// TerminateConfig holds the termination schedule.
type TerminateConfig struct {
	PollInterval   time.Duration `yaml:"poll_interval" split_words:"true"`
	PollAttempts   int           `yaml:"poll_attempts" split_words:"true"`
	SettleInterval time.Duration `yaml:"settle_interval" split_words:"true"`
}

// BaselineConfig locates the baseline snapshot.
type BaselineConfig struct {
	Path string `yaml:"path" split_words:"true"`
}

// JournalConfig controls the decision journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled" split_words:"true"`
	Path    string `yaml:"path" split_words:"true"`
}

// RulesConfig extends the built-in classification tables. Extra rules are
// evaluated after the built-ins.
type RulesConfig struct {
	Ignore   []string          `yaml:"ignore" split_words:"true"`
	AutoKill []classifier.Rule `yaml:"auto_kill" ignored:"true"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level       string `yaml:"level" split_words:"true"`
	Development bool   `yaml:"development" split_words:"true"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	term := reaper.DefaultConfig()
	return &Config{
		Scan: ScanConfig{
			CPUThreshold:   10,
			MemThresholdMB: 500,
			SelfMarker:     collector.DefaultSelfMarker,
		},
		Terminate: TerminateConfig{
			PollInterval:   term.PollInterval,
			PollAttempts:   term.PollAttempts,
			SettleInterval: term.SettleInterval,
		},
		Baseline: BaselineConfig{
			Path: filepath.Join(os.TempDir(), "prochunt-baseline.json"),
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    filepath.Join(homeDir(), ".prochunt", "journal.db"),
		},
		Rules: RulesConfig{
			Ignore:   []string{},
			AutoKill: []classifier.Rule{},
		},
		Logging: LoggingConfig{
			Level:       "warn",
			Development: true,
		},
	}
}

// DefaultPath returns ~/.prochunt/config.yaml.
func DefaultPath() string {
	return filepath.Join(homeDir(), ".prochunt", "config.yaml")
}

// LoadConfig loads configuration from a YAML file and applies environment
// overrides. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	cfg.Baseline.Path = ExpandPath(cfg.Baseline.Path)
	cfg.Journal.Path = ExpandPath(cfg.Journal.Path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadConfigFromHome loads configuration from ~/.prochunt/config.yaml.
func LoadConfigFromHome() (*Config, error) {
	return LoadConfig(DefaultPath())
}

// ApplyEnv overlays PROCHUNT_* environment variables onto c. Unset
// variables leave the current values alone.
func (c *Config) ApplyEnv() error {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	return nil
}

// SaveConfig saves configuration to a YAML file, creating parent directories if needed.
func SaveConfig(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Scan.CPUThreshold < 0 {
		return fmt.Errorf("scan.cpu_threshold must not be negative")
	}
	if c.Scan.MemThresholdMB < 0 {
		return fmt.Errorf("scan.mem_threshold_mb must not be negative")
	}
	if strings.TrimSpace(c.Scan.SelfMarker) == "" {
		return fmt.Errorf("scan.self_marker must not be empty")
	}
	if c.Terminate.PollAttempts < 1 {
		return fmt.Errorf("terminate.poll_attempts must be at least 1")
	}
	if c.Terminate.PollInterval <= 0 || c.Terminate.SettleInterval <= 0 {
		return fmt.Errorf("terminate intervals must be positive")
	}
	if c.Baseline.Path == "" {
		return fmt.Errorf("baseline.path must not be empty")
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("journal.path must not be empty when the journal is enabled")
	}
	if _, err := c.Classifier(); err != nil {
		return err
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}
	return nil
}

// Classifier builds a classifier with the configured extra rules.
func (c *Config) Classifier() (*classifier.Classifier, error) {
	return classifier.New(c.Rules.Ignore, c.Rules.AutoKill)
}

// ScanOptions returns the collector options.
func (c *Config) ScanOptions() collector.Options {
	return collector.Options{
		CPUThreshold:   c.Scan.CPUThreshold,
		MemThresholdMB: c.Scan.MemThresholdMB,
		SelfMarker:     c.Scan.SelfMarker,
	}
}

// ReaperConfig returns the termination schedule.
func (c *Config) ReaperConfig() reaper.Config {
	return reaper.Config{
		PollInterval:   c.Terminate.PollInterval,
		PollAttempts:   c.Terminate.PollAttempts,
		SettleInterval: c.Terminate.SettleInterval,
	}
}

// LoggerConfig returns the logger settings.
func (c *Config) LoggerConfig() logging.Config {
	return logging.Config{
		Level:       c.Logging.Level,
		Development: c.Logging.Development,
		OutputPaths: []string{"stderr"},
	}
}

// ExpandPath replaces a leading ~ with the home directory.
func ExpandPath(p string) string {
	if p == "~" {
		return homeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir(), p[2:])
	}
	return p
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return home
}
