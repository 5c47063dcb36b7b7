package config

import (
	"fmt"
	"time"
)

// RetentionConfig holds configuration for metric sample retention and cleanup.
// Action records are the learning signal and are never cleaned up.
type RetentionConfig struct {
	// RetentionDays is the retention period for healthy and unknown samples
	// Default: 30, Range: 1-365
	RetentionDays int `yaml:"retention_days"`

	// RetentionFailedDays is the retention period for failed samples
	// Failed samples are kept longer for failure pattern analysis
	// Must be >= RetentionDays
	// Default: 90, Range: 1-730
	RetentionFailedDays int `yaml:"retention_failed_days"`

	// GlobalLimitSamples is the maximum total number of samples to keep
	// Default: 200000, Range: 1000-1000000
	GlobalLimitSamples int `yaml:"global_limit_samples"`

	// CleanupIntervalHours is how often serve runs cleanup
	// Default: 24, Range: 1-168 (1 week)
	CleanupIntervalHours int `yaml:"cleanup_interval_hours"`

	// CleanupBatchSize is the number of samples to delete per statement
	// Default: 1000, Range: 100-10000
	CleanupBatchSize int `yaml:"cleanup_batch_size"`

	// CleanupEnabled controls whether serve runs cleanup automatically
	// Default: true
	CleanupEnabled bool `yaml:"cleanup_enabled"`

	// CleanupVacuum controls whether to run VACUUM after cleanup
	// Default: false
	CleanupVacuum bool `yaml:"cleanup_vacuum"`
}

// DefaultRetentionConfig returns the default retention configuration
func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		RetentionDays:        30,
		RetentionFailedDays:  90,
		GlobalLimitSamples:   200000,
		CleanupIntervalHours: 24,
		CleanupBatchSize:     1000,
		CleanupEnabled:       true,
		CleanupVacuum:        false,
	}
}

// Validate checks if the configuration has valid values
func (c RetentionConfig) Validate() error {
	if c.RetentionDays < 1 || c.RetentionDays > 365 {
		return fmt.Errorf("retention_days must be between 1 and 365 (got %d)", c.RetentionDays)
	}

	if c.RetentionFailedDays < 1 || c.RetentionFailedDays > 730 {
		return fmt.Errorf("retention_failed_days must be between 1 and 730 (got %d)", c.RetentionFailedDays)
	}
	if c.RetentionFailedDays < c.RetentionDays {
		return fmt.Errorf("retention_failed_days (%d) must be >= retention_days (%d)",
			c.RetentionFailedDays, c.RetentionDays)
	}

	if c.GlobalLimitSamples < 1000 {
		return fmt.Errorf("global_limit_samples must be at least 1000 (got %d)", c.GlobalLimitSamples)
	}
	if c.GlobalLimitSamples > 1000000 {
		return fmt.Errorf("global_limit_samples too large (got %d, max 1000000)", c.GlobalLimitSamples)
	}

	if c.CleanupIntervalHours < 1 {
		return fmt.Errorf("cleanup_interval_hours must be at least 1 (got %d)", c.CleanupIntervalHours)
	}
	if c.CleanupIntervalHours > 168 {
		return fmt.Errorf("cleanup_interval_hours too large (got %d, max 168)", c.CleanupIntervalHours)
	}

	if c.CleanupBatchSize < 100 {
		return fmt.Errorf("cleanup_batch_size must be at least 100 (got %d)", c.CleanupBatchSize)
	}
	if c.CleanupBatchSize > 10000 {
		return fmt.Errorf("cleanup_batch_size too large (got %d, max 10000)", c.CleanupBatchSize)
	}

	return nil
}

// CleanupInterval returns the cleanup interval as a duration
func (c RetentionConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalHours) * time.Hour
}

// String returns a human-readable representation of the config
func (c RetentionConfig) String() string {
	return fmt.Sprintf(
		"RetentionConfig{RetentionDays: %d, RetentionFailedDays: %d, GlobalLimit: %d, "+
			"CleanupInterval: %dh, BatchSize: %d, Enabled: %t, Vacuum: %t}",
		c.RetentionDays, c.RetentionFailedDays, c.GlobalLimitSamples,
		c.CleanupIntervalHours, c.CleanupBatchSize, c.CleanupEnabled, c.CleanupVacuum,
	)
}

func (c *RetentionConfig) applyEnv() error {
	if err := parseEnvInt("SFD_RETENTION_DAYS", &c.RetentionDays); err != nil {
		return err
	}
	if err := parseEnvInt("SFD_RETENTION_FAILED_DAYS", &c.RetentionFailedDays); err != nil {
		return err
	}
	if err := parseEnvInt("SFD_RETENTION_GLOBAL_LIMIT", &c.GlobalLimitSamples); err != nil {
		return err
	}
	if err := parseEnvInt("SFD_CLEANUP_INTERVAL_HOURS", &c.CleanupIntervalHours); err != nil {
		return err
	}
	if err := parseEnvInt("SFD_CLEANUP_BATCH_SIZE", &c.CleanupBatchSize); err != nil {
		return err
	}
	if err := parseEnvBool("SFD_CLEANUP_ENABLED", &c.CleanupEnabled); err != nil {
		return err
	}
	return parseEnvBool("SFD_CLEANUP_VACUUM", &c.CleanupVacuum)
}
