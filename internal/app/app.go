// Package app wires the store, metric probe, policy engine, watchdog and
// trainer together from a loaded configuration. The CLI and the console
// both drive sfd through an App.
package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sazadakthar786/Software-failure-detection/internal/config"
	"github.com/Sazadakthar786/Software-failure-detection/internal/metrics"
	"github.com/Sazadakthar786/Software-failure-detection/internal/policy"
	"github.com/Sazadakthar786/Software-failure-detection/internal/storage"
	"github.com/Sazadakthar786/Software-failure-detection/internal/training"
	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
	"github.com/Sazadakthar786/Software-failure-detection/internal/watchdog"
)

// App holds the wired components of one sfd process
type App struct {
	Config   *config.Config
	Store    storage.Storage
	Detector *watchdog.Detector
	Probe    *metrics.Probe
	Engine   *policy.Engine
	Watchdog *watchdog.Watchdog
	Trainer  *training.Trainer

	ownsStore bool
}

// Options overrides parts of the wiring, mainly for tests
type Options struct {
	// Source replaces the host metric source
	Source metrics.Source
	// Store replaces opening cfg.DBPath; the caller keeps ownership
	Store storage.Storage
}

// New builds an App from cfg. The detector windows are warmed from the
// most recent stored samples so a fresh process does not start cold.
func New(ctx context.Context, cfg *config.Config, opts *Options) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if opts == nil {
		opts = &Options{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	seed := cfg.Training.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	a := &App{Config: cfg}

	if opts.Store != nil {
		a.Store = opts.Store
	} else {
		store, err := storage.NewStorage(ctx, &storage.Config{Path: cfg.DBPath})
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
		a.Store = store
		a.ownsStore = true
	}

	a.Detector = watchdog.NewDetector(&cfg.Watchdog.Detector)
	if err := a.warmDetector(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	source := opts.Source
	if source == nil {
		host := metrics.NewHostSource()
		host.CPUInterval = cfg.Metrics.CPUInterval
		host.DiskPath = cfg.Metrics.DiskPath
		source = host
		if cfg.Metrics.SpikeProbability > 0 {
			source = metrics.NewSpikeSource(host, rand.New(rand.NewSource(seed+2))).
				WithProbability(cfg.Metrics.SpikeProbability)
		}
	}

	var causes metrics.CauseClassifier = metrics.MetricCauseClassifier{}
	if cfg.Metrics.HostCauses {
		causes = metrics.HostCauseClassifier{}
	}

	a.Probe = metrics.NewProbe(&metrics.ProbeConfig{
		Source:     source,
		Classifier: a.Detector,
		Causes:     causes,
	})

	a.Engine = policy.NewEngine(cfg.ModelPath)

	wd, err := watchdog.NewWatchdog(&watchdog.WatchdogDeps{
		Probe:     a.Probe,
		Engine:    a.Engine,
		Recorder:  a.Store,
		Estimator: policy.NewEstimator(rand.New(rand.NewSource(seed + 3))),
		Config:    &cfg.Watchdog,
		Rand:      rand.New(rand.NewSource(seed + 4)),
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to create watchdog: %w", err)
	}
	a.Watchdog = wd

	optimizer := training.NewReinforce(rand.New(rand.NewSource(seed + 5)))
	optimizer.LearningRate = cfg.Training.LearningRate
	trainer, err := training.NewTrainer(&training.TrainerConfig{
		Engine:    a.Engine,
		Optimizer: optimizer,
		ModelPath: cfg.ModelPath,
		Seed:      seed,
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to create trainer: %w", err)
	}
	a.Trainer = trainer

	return a, nil
}

// warmDetector replays stored samples into the detector windows.
// Unknown samples carry no trustworthy reading and are skipped.
func (a *App) warmDetector(ctx context.Context) error {
	recent, err := a.Store.RecentMetrics(ctx, a.Config.Watchdog.Detector.WindowSize)
	if err != nil {
		return fmt.Errorf("failed to load recent samples: %w", err)
	}
	warmed := 0
	for _, s := range recent {
		if s.Status == types.StatusUnknown {
			continue
		}
		a.Detector.Observe(s.CPU, s.Memory)
		warmed++
	}
	if warmed > 0 {
		logrus.Debugf("app: warmed detector with %d stored samples", warmed)
	}
	return nil
}

// Detect classifies an explicit cpu/memory pair, or a live reading when
// either value is absent, and records the sample
func (a *App) Detect(ctx context.Context, cpu, memory *float64) (*watchdog.Detection, error) {
	if cpu == nil || memory == nil {
		return a.Watchdog.Detect(ctx, nil)
	}
	if *cpu < 0 || *cpu > 100 {
		return nil, fmt.Errorf("cpu must be between 0 and 100, got %.2f", *cpu)
	}
	if *memory < 0 || *memory > 100 {
		return nil, fmt.Errorf("memory must be between 0 and 100, got %.2f", *memory)
	}
	return a.Watchdog.Detect(ctx, &metrics.Reading{CPU: *cpu, Memory: *memory})
}

// Recover runs a recovery cycle from the latest stored sample, counting
// every failed action record as a recent failure
func (a *App) Recover(ctx context.Context) (*watchdog.RecoveryResult, error) {
	latest, err := a.Store.LatestMetric(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest sample: %w", err)
	}
	failures, err := a.Store.CountActionsByResult(ctx, types.ResultFailed)
	if err != nil {
		return nil, fmt.Errorf("failed to count failed actions: %w", err)
	}
	return a.Watchdog.Recover(ctx, watchdog.RecoverRequest{
		Latest:       latest,
		FailureCount: failures,
	})
}

// Train trains the policy and persists the model when training ran
func (a *App) Train(ctx context.Context, episodes int) (*training.Report, error) {
	if episodes <= 0 {
		episodes = a.Config.Training.Episodes
	}
	report, err := a.Trainer.Train(ctx, episodes)
	if err != nil {
		return nil, err
	}
	if report.Status == training.StatusTrained {
		if err := a.Trainer.Save(); err != nil {
			return report, fmt.Errorf("failed to save model: %w", err)
		}
	}
	return report, nil
}

// SimulateFailure records a synthetic failed sample
func (a *App) SimulateFailure(ctx context.Context) (*types.MetricSample, error) {
	return a.Watchdog.ForceFailure(ctx)
}

// NewSampler returns a background sampler feeding the store.
// onFailure is optional and must not block.
func (a *App) NewSampler(onFailure func(*types.MetricSample)) (*watchdog.Sampler, error) {
	return watchdog.NewSampler(&watchdog.SamplerConfig{
		Probe:     a.Probe,
		Log:       a.Store,
		Interval:  a.Config.Watchdog.SampleInterval,
		OnFailure: onFailure,
	})
}

// NewCleaner returns a retention cleaner for the store
func (a *App) NewCleaner() (*storage.Cleaner, error) {
	return storage.NewCleaner(a.Store, a.Config.Retention)
}

// Close releases the store if the App opened it
func (a *App) Close() error {
	if a.ownsStore && a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
