package watchdog

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
)

// Detector defaults
const (
	DefaultWindowSize      = 60
	DefaultWarmupSamples   = 10
	DefaultStaticThreshold = 90.0
	DefaultSigmaMultiplier = 2.0
	DefaultMinStdDev       = 1e-3
)

// DetectorConfig holds adaptive detector configuration
type DetectorConfig struct {
	// WindowSize is the number of recent cpu and memory samples kept
	// Default: 60
	WindowSize int `yaml:"window_size"`

	// WarmupSamples is how many samples both windows need before the
	// adaptive threshold replaces the static one
	// Default: 10
	WarmupSamples int `yaml:"warmup_samples"`

	// StaticThreshold is the cold-start failure bar in percent
	// Default: 90
	StaticThreshold float64 `yaml:"static_threshold"`

	// SigmaMultiplier scales the standard deviation in the adaptive threshold
	// Default: 2.0
	SigmaMultiplier float64 `yaml:"sigma_multiplier"`

	// MinStdDev keeps the adaptive band from collapsing on constant input
	// Default: 1e-3
	MinStdDev float64 `yaml:"min_std_dev"`
}

// DefaultDetectorConfig returns default detector configuration
func DefaultDetectorConfig() *DetectorConfig {
	return &DetectorConfig{
		WindowSize:      DefaultWindowSize,
		WarmupSamples:   DefaultWarmupSamples,
		StaticThreshold: DefaultStaticThreshold,
		SigmaMultiplier: DefaultSigmaMultiplier,
		MinStdDev:       DefaultMinStdDev,
	}
}

// Thresholds is a snapshot of the bars the detector currently applies
type Thresholds struct {
	CPU      float64
	Memory   float64
	Adaptive bool
	Samples  int
}

// Detector classifies cpu/memory samples against a rolling baseline.
// It is the only owner of the rolling windows; every mutation happens
// under mu so the background sampler and recovery cycles can share it.
type Detector struct {
	mu sync.Mutex

	cpu    []float64
	memory []float64

	cfg DetectorConfig
}

// NewDetector creates a new adaptive detector
func NewDetector(cfg *DetectorConfig) *Detector {
	if cfg == nil {
		cfg = DefaultDetectorConfig()
	}
	c := *cfg
	if c.WindowSize <= 0 {
		c.WindowSize = DefaultWindowSize
	}
	if c.WarmupSamples <= 0 {
		c.WarmupSamples = DefaultWarmupSamples
	}
	if c.StaticThreshold <= 0 {
		c.StaticThreshold = DefaultStaticThreshold
	}
	if c.SigmaMultiplier <= 0 {
		c.SigmaMultiplier = DefaultSigmaMultiplier
	}
	if c.MinStdDev <= 0 {
		c.MinStdDev = DefaultMinStdDev
	}

	return &Detector{
		cpu:    make([]float64, 0, c.WindowSize),
		memory: make([]float64, 0, c.WindowSize),
		cfg:    c,
	}
}

// Observe records a sample and classifies it.
// The new sample is part of the window the adaptive threshold is computed over.
func (d *Detector) Observe(cpu, memory float64) types.Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cpu = d.push(d.cpu, cpu)
	d.memory = d.push(d.memory, memory)

	th := d.thresholdsLocked()
	if cpu >= th.CPU || memory >= th.Memory {
		return types.StatusFailed
	}
	return types.StatusHealthy
}

// push appends v and evicts the oldest values beyond the window size
func (d *Detector) push(window []float64, v float64) []float64 {
	window = append(window, v)
	if len(window) > d.cfg.WindowSize {
		copy(window, window[len(window)-d.cfg.WindowSize:])
		window = window[:d.cfg.WindowSize]
	}
	return window
}

// Thresholds returns the thresholds that apply to the current window contents
func (d *Detector) Thresholds() Thresholds {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.thresholdsLocked()
}

// thresholdsLocked MUST be called with d.mu held
func (d *Detector) thresholdsLocked() Thresholds {
	n := min(len(d.cpu), len(d.memory))
	if n < d.cfg.WarmupSamples {
		return Thresholds{
			CPU:     d.cfg.StaticThreshold,
			Memory:  d.cfg.StaticThreshold,
			Samples: n,
		}
	}
	return Thresholds{
		CPU:      d.adaptive(d.cpu),
		Memory:   d.adaptive(d.memory),
		Adaptive: true,
		Samples:  n,
	}
}

func (d *Detector) adaptive(window []float64) float64 {
	mean, std := stat.PopMeanStdDev(window, nil)
	return mean + d.cfg.SigmaMultiplier*math.Max(std, d.cfg.MinStdDev)
}

// Len returns the number of samples currently held
func (d *Detector) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.cpu)
}

