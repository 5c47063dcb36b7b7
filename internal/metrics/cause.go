package metrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
)

// Failure types reported on failed samples
const (
	FailureCPUSaturation  = "cpu_saturation"
	FailureMemoryPressure = "memory_pressure"
	FailureDiskPressure   = "disk_pressure"
)

// ErrNoProcess is returned when no process could be attributed
var ErrNoProcess = errors.New("no attributable process")

// Cause explains a failed sample
type Cause struct {
	FailureType       string
	AffectedComponent string
	SuggestedRemedy   string
}

// CauseClassifier attributes a failed reading to a failure type and component
type CauseClassifier interface {
	Classify(ctx context.Context, r Reading) (Cause, error)
}

// dominantFailure picks the failure type from the most saturated metric
func dominantFailure(r Reading) Cause {
	if r.Disk != nil && *r.Disk >= 90 && *r.Disk > r.CPU && *r.Disk > r.Memory {
		return Cause{FailureType: FailureDiskPressure, SuggestedRemedy: string(types.ActionRollback)}
	}
	if r.CPU >= r.Memory {
		return Cause{FailureType: FailureCPUSaturation, SuggestedRemedy: string(types.ActionRestart)}
	}
	return Cause{FailureType: FailureMemoryPressure, SuggestedRemedy: string(types.ActionScaleUp)}
}

// MetricCauseClassifier classifies from the reading alone
type MetricCauseClassifier struct{}

// Classify returns the dominant failure type without a component
func (MetricCauseClassifier) Classify(_ context.Context, r Reading) (Cause, error) {
	return dominantFailure(r), nil
}

// HostCauseClassifier also names the heaviest local process for the
// dominant metric as the affected component.
type HostCauseClassifier struct{}

// Classify inspects running processes. The failure type is always set; an
// error means the component could not be attributed.
func (HostCauseClassifier) Classify(ctx context.Context, r Reading) (Cause, error) {
	cause := dominantFailure(r)
	if cause.FailureType == FailureDiskPressure {
		return cause, nil
	}

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return cause, fmt.Errorf("failed to list processes: %w", err)
	}

	var (
		top      string
		topUsage float64
	)
	for _, p := range procs {
		var usage float64
		if cause.FailureType == FailureCPUSaturation {
			usage, err = p.CPUPercentWithContext(ctx)
		} else {
			var m float32
			m, err = p.MemoryPercentWithContext(ctx)
			usage = float64(m)
		}
		if err != nil || usage <= topUsage {
			// processes exit while we iterate
			continue
		}
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		top, topUsage = name, usage
	}

	if top == "" {
		return cause, ErrNoProcess
	}
	cause.AffectedComponent = top
	return cause, nil
}
