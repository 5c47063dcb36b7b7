package watchdog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
)

// sampleTimeout bounds one sampling tick
const sampleTimeout = 30 * time.Second

// MetricLog is where the sampler records samples
type MetricLog interface {
	AppendMetric(ctx context.Context, sample *types.MetricSample) error
}

// SamplerStats counts sampler activity
type SamplerStats struct {
	Samples  int
	Failures int
	Errors   int
	// Stale counts ticks skipped because the metric source was unavailable
	Stale    int
	Last     *types.MetricSample
}

// Sampler periodically records classified samples in the background
type Sampler struct {
	mu sync.RWMutex

	probe    Prober
	log      MetricLog
	interval time.Duration

	onFailure func(sample *types.MetricSample)

	// Control
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool

	stats SamplerStats
}

// SamplerConfig holds dependencies for creating a Sampler
type SamplerConfig struct {
	Probe Prober
	Log   MetricLog
	// Interval between samples; default 5s
	Interval time.Duration
	// OnFailure is optional; it runs on the sampling goroutine after a
	// Failed sample is recorded and must not block
	OnFailure func(sample *types.MetricSample)
}

// NewSampler creates a new background sampler
func NewSampler(cfg *SamplerConfig) (*Sampler, error) {
	if cfg.Probe == nil {
		return nil, fmt.Errorf("probe is required")
	}
	if cfg.Log == nil {
		return nil, fmt.Errorf("metric log is required")
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultWatchdogConfig().SampleInterval
	}
	return &Sampler{
		probe:     cfg.Probe,
		log:       cfg.Log,
		interval:  interval,
		onFailure: cfg.OnFailure,
	}, nil
}

// Start runs the sampling loop in a goroutine until Stop or ctx is done
func (s *Sampler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("sampler already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = s.Run(loopCtx)
	}()

	logrus.Infof("sampler: started (interval=%v)", s.interval)
	return nil
}

// Stop stops a sampler started with Start and waits for the loop to exit
func (s *Sampler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
	logrus.Info("sampler: stopped")
}

// Run samples immediately and then every interval until ctx is done.
// Record failures are logged and counted; the loop keeps going. Readings
// carried over from an unavailable source are neither recorded nor reported.
func (s *Sampler) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			s.tick(ctx)
			timer.Reset(s.interval)
		}
	}
}

func (s *Sampler) tick(ctx context.Context) {
	tickCtx, cancel := context.WithTimeout(ctx, sampleTimeout)
	defer cancel()

	sample := s.probe.Sample(tickCtx)
	if sample.Stale() {
		s.mu.Lock()
		s.stats.Stale++
		s.mu.Unlock()
		logrus.Debug("sampler: metric source unavailable, sample not recorded")
		return
	}
	err := s.log.AppendMetric(tickCtx, sample)

	s.mu.Lock()
	if err != nil {
		s.stats.Errors++
		s.mu.Unlock()
		logrus.Warnf("sampler: failed to record sample: %v", err)
		return
	}
	s.stats.Samples++
	s.stats.Last = sample
	failed := sample.Status == types.StatusFailed
	if failed {
		s.stats.Failures++
	}
	s.mu.Unlock()

	if failed {
		logrus.WithFields(logrus.Fields{
			"cpu":    sample.CPU,
			"memory": sample.Memory,
		}).Warn("sampler: failure detected")
		if s.onFailure != nil {
			s.onFailure(sample)
		}
	}
}

// Stats returns a snapshot of sampler counters
func (s *Sampler) Stats() SamplerStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}
