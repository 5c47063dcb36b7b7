package watchdog

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// WatchdogConfig holds configuration for detection, recovery validation and
// background sampling
type WatchdogConfig struct {
	// SampleInterval is how often the background sampler records a sample
	// Default: 5s
	SampleInterval time.Duration `yaml:"sample_interval"`

	// Validation bounds each post-action recovery check
	Validation ValidationConfig `yaml:"validation"`

	// Detector tunes the adaptive threshold
	Detector DetectorConfig `yaml:"detector"`

	// MaxConcurrentCycles bounds overlapping recovery cycles
	// Default: 1
	MaxConcurrentCycles int `yaml:"max_concurrent_cycles"`

	// MaxHistorySize is the number of recovery results kept in memory
	// Default: 100
	MaxHistorySize int `yaml:"max_history_size"`
}

// ValidationConfig holds recovery validator settings
type ValidationConfig struct {
	// MaxWait is the longest a cycle waits for recovery
	// Default: 5s
	MaxWait time.Duration `yaml:"max_wait"`

	// SampleInterval is the pause between validation samples
	// Default: 500ms
	SampleInterval time.Duration `yaml:"sample_interval"`
}

// DefaultWatchdogConfig returns default watchdog configuration
func DefaultWatchdogConfig() *WatchdogConfig {
	return &WatchdogConfig{
		SampleInterval: 5 * time.Second,
		Validation: ValidationConfig{
			MaxWait:        DefaultMaxWait,
			SampleInterval: DefaultSampleInterval,
		},
		Detector:            *DefaultDetectorConfig(),
		MaxConcurrentCycles: 1,
		MaxHistorySize:      100,
	}
}

// ApplyEnv overrides fields from SFD_WATCHDOG_* environment variables.
// Unparseable values are ignored; call Validate afterwards.
func (c *WatchdogConfig) ApplyEnv() {
	if val := os.Getenv("SFD_WATCHDOG_SAMPLE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.SampleInterval = d
		}
	}

	if val := os.Getenv("SFD_WATCHDOG_MAX_WAIT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.Validation.MaxWait = d
		}
	}

	if val := os.Getenv("SFD_WATCHDOG_VALIDATION_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.Validation.SampleInterval = d
		}
	}

	if val := os.Getenv("SFD_WATCHDOG_WINDOW_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			c.Detector.WindowSize = size
		}
	}

	if val := os.Getenv("SFD_WATCHDOG_WARMUP_SAMPLES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Detector.WarmupSamples = n
		}
	}

	if val := os.Getenv("SFD_WATCHDOG_STATIC_THRESHOLD"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			c.Detector.StaticThreshold = v
		}
	}

	if val := os.Getenv("SFD_WATCHDOG_SIGMA"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			c.Detector.SigmaMultiplier = v
		}
	}

	if val := os.Getenv("SFD_WATCHDOG_MAX_CONCURRENT_CYCLES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.MaxConcurrentCycles = n
		}
	}

	if val := os.Getenv("SFD_WATCHDOG_MAX_HISTORY"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.MaxHistorySize = n
		}
	}
}

// Validate checks that the configuration has safe and reasonable values
func (c *WatchdogConfig) Validate() error {
	return c.validate()
}

func (c *WatchdogConfig) validate() error {
	if c.SampleInterval < 100*time.Millisecond {
		return fmt.Errorf("sample_interval too fast (minimum 100ms), got %v", c.SampleInterval)
	}
	if c.SampleInterval > 10*time.Minute {
		return fmt.Errorf("sample_interval too slow (maximum 10m), got %v", c.SampleInterval)
	}

	if c.Validation.MaxWait <= 0 {
		return fmt.Errorf("validation max_wait must be positive, got %v", c.Validation.MaxWait)
	}
	if c.Validation.SampleInterval <= 0 {
		return fmt.Errorf("validation sample_interval must be positive, got %v", c.Validation.SampleInterval)
	}
	if c.Validation.SampleInterval > c.Validation.MaxWait {
		return fmt.Errorf("validation sample_interval (%v) must be <= max_wait (%v)",
			c.Validation.SampleInterval, c.Validation.MaxWait)
	}

	d := c.Detector
	if d.WindowSize <= 0 || d.WindowSize > 100000 {
		return fmt.Errorf("detector window_size must be between 1 and 100000, got %d", d.WindowSize)
	}
	if d.WarmupSamples <= 0 || d.WarmupSamples > d.WindowSize {
		return fmt.Errorf("detector warmup_samples must be between 1 and window_size (%d), got %d",
			d.WindowSize, d.WarmupSamples)
	}
	if d.StaticThreshold <= 0 || d.StaticThreshold > 100 {
		return fmt.Errorf("detector static_threshold must be in (0, 100], got %f", d.StaticThreshold)
	}
	if d.SigmaMultiplier <= 0 {
		return fmt.Errorf("detector sigma_multiplier must be positive, got %f", d.SigmaMultiplier)
	}
	if d.MinStdDev <= 0 {
		return fmt.Errorf("detector min_std_dev must be positive, got %f", d.MinStdDev)
	}

	if c.MaxConcurrentCycles <= 0 || c.MaxConcurrentCycles > 64 {
		return fmt.Errorf("max_concurrent_cycles must be between 1 and 64, got %d", c.MaxConcurrentCycles)
	}
	if c.MaxHistorySize <= 0 || c.MaxHistorySize > 10000 {
		return fmt.Errorf("max_history_size must be between 1 and 10000, got %d", c.MaxHistorySize)
	}
	return nil
}
