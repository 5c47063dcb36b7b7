package watchdog

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
)

// Validation defaults
const (
	DefaultMaxWait        = 5 * time.Second
	DefaultSampleInterval = 500 * time.Millisecond
)

// Prober produces classified samples on demand
type Prober interface {
	Sample(ctx context.Context) *types.MetricSample
}

// ProberFunc adapts a function to Prober
type ProberFunc func(ctx context.Context) *types.MetricSample

// Sample calls f(ctx)
func (f ProberFunc) Sample(ctx context.Context) *types.MetricSample { return f(ctx) }

// Outcome is the result of one recovery validation
type Outcome struct {
	Recovered bool
	// Elapsed is the time to the first recovered sample; nil unless Recovered
	Elapsed *time.Duration
	Samples int
}

// ElapsedSeconds returns Elapsed in seconds, or nil
func (o Outcome) ElapsedSeconds() *float64 {
	if o.Elapsed == nil {
		return nil
	}
	return types.Float64(o.Elapsed.Seconds())
}

// Validator confirms recovery by polling a Prober for a bounded window.
// It only shows that conditions are healthy and at or below the pre-action
// baseline; it does not prove the action caused it.
type Validator struct {
	MaxWait        time.Duration
	SampleInterval time.Duration
}

// NewValidator creates a validator; non-positive values use the defaults
func NewValidator(maxWait, sampleInterval time.Duration) *Validator {
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	if sampleInterval <= 0 {
		sampleInterval = DefaultSampleInterval
	}
	return &Validator{MaxWait: maxWait, SampleInterval: sampleInterval}
}

// Validate samples immediately, then once per SampleInterval, until a sample
// is Healthy with cpu or memory at or below its baseline, or MaxWait elapses.
// Cancelling ctx aborts validation and returns ctx.Err().
func (v *Validator) Validate(ctx context.Context, baselineCPU, baselineMemory float64, probe Prober) (Outcome, error) {
	start := time.Now()
	window, cancel := context.WithDeadline(ctx, start.Add(v.MaxWait))
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(v.SampleInterval), 1)
	samples := 0
	for {
		if err := limiter.Wait(window); err != nil {
			// The limiter refuses a wait that would overrun the window;
			// sit out the remainder so a failure always spans MaxWait.
			<-window.Done()
			break
		}

		sample := probe.Sample(window)
		samples++
		if recovered(sample, baselineCPU, baselineMemory) {
			elapsed := time.Since(start)
			return Outcome{Recovered: true, Elapsed: &elapsed, Samples: samples}, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return Outcome{Samples: samples}, err
	}
	return Outcome{Samples: samples}, nil
}

// recovered requires a fresh healthy sample where cpu OR memory did not get
// worse. A carried-over reading proves nothing about the current state.
func recovered(s *types.MetricSample, baselineCPU, baselineMemory float64) bool {
	if s == nil || s.Stale() || s.Status != types.StatusHealthy {
		return false
	}
	return s.CPU <= baselineCPU || s.Memory <= baselineMemory
}
