// Package config loads sfd configuration from a YAML file with SFD_*
// environment overrides layered on top.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/Sazadakthar786/Software-failure-detection/internal/watchdog"
)

// Default locations, relative to the working directory
const (
	DefaultConfigPath = ".sfd/config.yaml"
	DefaultDBPath     = ".sfd/sfd.db"
	DefaultModelPath  = ".sfd/model.json"
)

// Config is the top-level sfd configuration
type Config struct {
	// DBPath is the SQLite database file
	DBPath string `yaml:"db_path"`

	// ModelPath is the trained policy artifact; absent selects the heuristic
	ModelPath string `yaml:"model_path"`

	// LogLevel is a logrus level name
	// Default: info
	LogLevel string `yaml:"log_level"`

	Metrics   MetricsConfig           `yaml:"metrics"`
	Training  TrainingConfig          `yaml:"training"`
	Watchdog  watchdog.WatchdogConfig `yaml:"watchdog"`
	Retention RetentionConfig         `yaml:"retention"`
}

// MetricsConfig configures the host metric source
type MetricsConfig struct {
	// CPUInterval is the window cpu utilisation is measured over
	// Default: 100ms
	CPUInterval time.Duration `yaml:"cpu_interval"`

	// DiskPath is the mount point whose usage is reported
	// Default: "/"
	DiskPath string `yaml:"disk_path"`

	// SpikeProbability is the per-metric chance of a synthetic spike
	// Set to 0 to disable spike injection
	// Default: 0.05
	SpikeProbability float64 `yaml:"spike_probability"`

	// HostCauses enables top-process inspection when annotating failures
	// Default: true
	HostCauses bool `yaml:"host_causes"`
}

// TrainingConfig configures policy training
type TrainingConfig struct {
	// Episodes is the default episode count for a train request
	// Default: 10
	Episodes int `yaml:"episodes"`

	// Seed seeds the synthetic environment; 0 uses the clock
	Seed int64 `yaml:"seed"`

	// LearningRate scales each policy gradient step
	// Default: 0.05
	LearningRate float64 `yaml:"learning_rate"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		DBPath:    DefaultDBPath,
		ModelPath: DefaultModelPath,
		LogLevel:  "info",
		Metrics: MetricsConfig{
			CPUInterval:      100 * time.Millisecond,
			DiskPath:         "/",
			SpikeProbability: 0.05,
			HostCauses:       true,
		},
		Training: TrainingConfig{
			Episodes:     10,
			LearningRate: 0.05,
		},
		Watchdog:  *watchdog.DefaultWatchdogConfig(),
		Retention: DefaultRetentionConfig(),
	}
}

// LoadFromFile reads a YAML config over the defaults.
// A missing file yields the defaults; an unreadable or invalid one is an error.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the config file, applies environment overrides and validates
// the result. An empty path uses DefaultConfigPath.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from SFD_* environment variables
func (c *Config) ApplyEnv() error {
	if err := parseEnvString("SFD_DB_PATH", &c.DBPath); err != nil {
		return err
	}
	if err := parseEnvString("SFD_MODEL_PATH", &c.ModelPath); err != nil {
		return err
	}
	if err := parseEnvString("SFD_LOG_LEVEL", &c.LogLevel); err != nil {
		return err
	}
	if err := parseEnvString("SFD_DISK_PATH", &c.Metrics.DiskPath); err != nil {
		return err
	}
	if err := parseEnvFloat("SFD_SPIKE_PROBABILITY", &c.Metrics.SpikeProbability); err != nil {
		return err
	}
	if err := parseEnvBool("SFD_HOST_CAUSES", &c.Metrics.HostCauses); err != nil {
		return err
	}
	if err := parseEnvInt("SFD_TRAINING_EPISODES", &c.Training.Episodes); err != nil {
		return err
	}
	if err := parseEnvInt64("SFD_TRAINING_SEED", &c.Training.Seed); err != nil {
		return err
	}

	c.Watchdog.ApplyEnv()
	return c.Retention.applyEnv()
}

// Validate checks every section of the configuration
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.ModelPath == "" {
		return fmt.Errorf("model_path is required")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}

	if c.Metrics.CPUInterval <= 0 || c.Metrics.CPUInterval > 10*time.Second {
		return fmt.Errorf("metrics cpu_interval must be in (0, 10s], got %v", c.Metrics.CPUInterval)
	}
	if c.Metrics.SpikeProbability < 0 || c.Metrics.SpikeProbability > 1 {
		return fmt.Errorf("metrics spike_probability must be between 0 and 1, got %f", c.Metrics.SpikeProbability)
	}

	if c.Training.Episodes < 1 || c.Training.Episodes > 10000 {
		return fmt.Errorf("training episodes must be between 1 and 10000, got %d", c.Training.Episodes)
	}
	if c.Training.LearningRate <= 0 || c.Training.LearningRate > 1 {
		return fmt.Errorf("training learning_rate must be in (0, 1], got %f", c.Training.LearningRate)
	}

	if err := c.Watchdog.Validate(); err != nil {
		return fmt.Errorf("watchdog: %w", err)
	}
	if err := c.Retention.Validate(); err != nil {
		return fmt.Errorf("retention: %w", err)
	}
	return nil
}

// parseEnvInt parses an int from an environment variable
func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvInt64 parses an int64 from an environment variable
func parseEnvInt64(key string, dest *int64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvFloat parses a float from an environment variable
func parseEnvFloat(key string, dest *float64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvBool parses a bool from an environment variable
func parseEnvBool(key string, dest *bool) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvString parses a string from an environment variable
func parseEnvString(key string, dest *string) error {
	if value := os.Getenv(key); value != "" {
		*dest = value
	}
	return nil
}
