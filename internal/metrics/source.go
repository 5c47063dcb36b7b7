// Package metrics supplies cpu/memory/disk readings to the watchdog.
//
// A Source is the raw provider and may fail at any time. The Probe wraps a
// Source with the detector and a cause classifier and never fails: when the
// source is unavailable it degrades to the last good reading, tagged with
// types.FailureKindMetricUnavailable.
package metrics

import (
	"context"
	"errors"
	"math"
)

// ErrUnavailable is returned by sources that cannot produce a reading
var ErrUnavailable = errors.New("metric source unavailable")

// Reading is one raw resource usage tuple, in percent
type Reading struct {
	CPU    float64
	Memory float64
	Disk   *float64
}

// Source supplies readings on demand
type Source interface {
	Read(ctx context.Context) (Reading, error)
}

// SourceFunc adapts a function to the Source interface
type SourceFunc func(ctx context.Context) (Reading, error)

// Read calls f(ctx)
func (f SourceFunc) Read(ctx context.Context) (Reading, error) {
	return f(ctx)
}

// StaticSource always returns the same reading
type StaticSource Reading

// Read returns the static reading
func (s StaticSource) Read(_ context.Context) (Reading, error) {
	return Reading(s), nil
}

// clampPercent bounds v to [0, 100]; NaN maps to 0
func clampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(100, math.Max(0, v))
}

func (r Reading) clamped() Reading {
	out := Reading{CPU: clampPercent(r.CPU), Memory: clampPercent(r.Memory)}
	if r.Disk != nil {
		d := clampPercent(*r.Disk)
		out.Disk = &d
	}
	return out
}
