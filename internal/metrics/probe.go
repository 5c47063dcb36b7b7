package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
)

// unknownMessage is the generic diagnostic attached to samples whose
// classification failed.
const unknownMessage = "classification unavailable"

// Classifier turns a cpu/memory pair into a health status.
// The watchdog's adaptive detector is the production implementation.
type Classifier interface {
	Observe(cpu, memory float64) types.Status
}

// Probe reads a Source, classifies the reading and annotates failures.
// It never returns an error: source failures degrade to the last good reading.
type Probe struct {
	source     Source
	classifier Classifier
	causes     CauseClassifier

	mu         sync.Mutex
	last       *Reading
	lastStatus types.Status

	now func() time.Time
}

// ProbeConfig holds dependencies for creating a Probe
type ProbeConfig struct {
	Source     Source
	Classifier Classifier
	// Causes is optional; without it failed samples carry no cause
	Causes CauseClassifier
}

// NewProbe creates a new probe
func NewProbe(cfg *ProbeConfig) *Probe {
	return &Probe{
		source:     cfg.Source,
		classifier: cfg.Classifier,
		causes:     cfg.Causes,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Sample reads the source and classifies the reading
func (p *Probe) Sample(ctx context.Context) *types.MetricSample {
	reading, err := p.source.Read(ctx)
	if err != nil {
		logrus.Warnf("metrics: source read failed, using last reading: %v", err)
		return p.degraded()
	}
	return p.Classify(ctx, reading)
}

// Classify classifies an externally supplied reading. The reading is fed to
// the detector, so it becomes part of the rolling baseline.
func (p *Probe) Classify(ctx context.Context, reading Reading) *types.MetricSample {
	reading = reading.clamped()
	status, kind := p.observe(reading)

	sample := &types.MetricSample{
		Timestamp: p.now(),
		CPU:       reading.CPU,
		Memory:    reading.Memory,
		Disk:      reading.Disk,
		Status:    status,
		Kind:      kind,
	}

	switch status {
	case types.StatusFailed:
		p.annotate(ctx, sample, reading)
	case types.StatusUnknown:
		sample.FailureType = unknownMessage
	}

	p.mu.Lock()
	p.last = &reading
	p.lastStatus = status
	p.mu.Unlock()

	return sample
}

// observe runs the classifier; a panic is reported as StatusUnknown
func (p *Probe) observe(r Reading) (status types.Status, kind types.FailureKind) {
	defer func() {
		if rec := recover(); rec != nil {
			logrus.Errorf("metrics: classification failed: %v", rec)
			status, kind = types.StatusUnknown, types.FailureKindClassificationUnknown
		}
	}()
	return p.classifier.Observe(r.CPU, r.Memory), types.FailureKindNone
}

func (p *Probe) annotate(ctx context.Context, sample *types.MetricSample, r Reading) {
	if p.causes == nil {
		return
	}
	cause, err := p.causes.Classify(ctx, r)
	sample.FailureType = cause.FailureType
	sample.AffectedComponent = cause.AffectedComponent
	sample.SuggestedRemedy = cause.SuggestedRemedy
	if err != nil {
		logrus.Debugf("metrics: cause attribution incomplete: %v", err)
		sample.Kind = types.FailureKindClassificationUnknown
	}
}

// degraded carries the last good reading over without touching the detector
func (p *Probe) degraded() *types.MetricSample {
	p.mu.Lock()
	defer p.mu.Unlock()

	sample := &types.MetricSample{
		Timestamp: p.now(),
		Status:    types.StatusUnknown,
		Kind:      types.FailureKindMetricUnavailable,
	}
	if p.last != nil {
		sample.CPU = p.last.CPU
		sample.Memory = p.last.Memory
		sample.Disk = p.last.Disk
		sample.Status = p.lastStatus
	}
	return sample
}
