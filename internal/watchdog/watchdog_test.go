package watchdog

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sazadakthar786/Software-failure-detection/internal/metrics"
	"github.com/Sazadakthar786/Software-failure-detection/internal/policy"
	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
)

// fakeProbe returns a fixed live sample and classifies readings statically
type fakeProbe struct {
	mu        sync.Mutex
	live      *types.MetricSample
	classify  int
	sample    int
	panicking bool
}

func (p *fakeProbe) Sample(_ context.Context) *types.MetricSample {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sample++
	if p.panicking {
		panic("probe exploded")
	}
	s := *p.live
	return &s
}

func (p *fakeProbe) Classify(_ context.Context, r metrics.Reading) *types.MetricSample {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.classify++
	status := types.StatusHealthy
	if r.CPU >= 90 || r.Memory >= 90 {
		status = types.StatusFailed
	}
	return &types.MetricSample{Timestamp: time.Now().UTC(), CPU: r.CPU, Memory: r.Memory, Status: status}
}

// memoryRecorder keeps everything in slices
type memoryRecorder struct {
	mu        sync.Mutex
	metrics   []*types.MetricSample
	actions   []*types.ActionRecord
	actionErr error
}

func (r *memoryRecorder) AppendMetric(_ context.Context, s *types.MetricSample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = append(r.metrics, s)
	return nil
}

func (r *memoryRecorder) AppendAction(_ context.Context, rec *types.ActionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.actionErr != nil {
		return r.actionErr
	}
	r.actions = append(r.actions, rec)
	return nil
}

func (r *memoryRecorder) Actions() []*types.ActionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*types.ActionRecord(nil), r.actions...)
}

func fastConfig() *WatchdogConfig {
	cfg := DefaultWatchdogConfig()
	cfg.Validation.MaxWait = 200 * time.Millisecond
	cfg.Validation.SampleInterval = 50 * time.Millisecond
	return cfg
}

func newTestWatchdog(t *testing.T, probe *fakeProbe, rec *memoryRecorder, cfg *WatchdogConfig) *Watchdog {
	t.Helper()
	w, err := NewWatchdog(&WatchdogDeps{
		Probe:     probe,
		Engine:    policy.NewHeuristicEngine(),
		Recorder:  rec,
		Estimator: policy.NewEstimator(rand.New(rand.NewSource(1))),
		Config:    cfg,
		Rand:      rand.New(rand.NewSource(2)),
	})
	require.NoError(t, err)
	return w
}

func TestNewWatchdog_RequiresDependencies(t *testing.T) {
	probe := &fakeProbe{live: sample(10, 10, types.StatusHealthy)}
	rec := &memoryRecorder{}
	engine := policy.NewHeuristicEngine()

	tests := []struct {
		name string
		deps *WatchdogDeps
	}{
		{"missing probe", &WatchdogDeps{Engine: engine, Recorder: rec}},
		{"missing engine", &WatchdogDeps{Probe: probe, Recorder: rec}},
		{"missing recorder", &WatchdogDeps{Probe: probe, Engine: engine}},
		{"invalid config", &WatchdogDeps{Probe: probe, Engine: engine, Recorder: rec,
			Config: &WatchdogConfig{SampleInterval: time.Second}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWatchdog(tt.deps)
			assert.Error(t, err)
		})
	}
}

func TestWatchdog_RecoverEndToEnd(t *testing.T) {
	probe := &fakeProbe{live: sample(30, 30, types.StatusHealthy)}
	rec := &memoryRecorder{}
	w := newTestWatchdog(t, probe, rec, fastConfig())

	result, err := w.Recover(context.Background(), RecoverRequest{
		Latest: sample(95, 40, types.StatusFailed),
	})
	require.NoError(t, err)

	assert.Equal(t, policy.StateVector{0.95, 0.40, 0}, result.State)
	assert.Equal(t, "heuristic", result.Policy)
	assert.Equal(t, types.ActionRestart, result.Action)
	assert.True(t, result.Outcome.Recovered)

	actions := rec.Actions()
	require.Len(t, actions, 1)
	record := actions[0]
	assert.Equal(t, types.ActionRestart, record.Action)
	assert.Equal(t, types.ResultRecovered, record.Result)
	assert.InDelta(t, 10.0, record.Reward, 0.1)
	require.NotNil(t, record.RecoveryTime)
	assert.Less(t, *record.RecoveryTime, 0.05)
	assert.Equal(t, result.CycleID, record.CycleID)
	assert.NoError(t, record.Validate())

	var states []CycleState
	for _, tr := range result.Transitions {
		states = append(states, tr.To)
	}
	assert.Equal(t, []CycleState{StateDetecting, StateDeciding, StateValidating, StateRewarding, StateIdle}, states)

	history := w.GetRecoveryHistory()
	require.Len(t, history, 1)
	assert.Equal(t, result.CycleID, history[0].CycleID)
	assert.Len(t, history[0].Transitions, 5)
}

func TestWatchdog_RecoverFailureRecordsPenalty(t *testing.T) {
	probe := &fakeProbe{live: sample(99, 99, types.StatusFailed)}
	rec := &memoryRecorder{}
	w := newTestWatchdog(t, probe, rec, fastConfig())

	result, err := w.Recover(context.Background(), RecoverRequest{
		Latest:       sample(50, 95, types.StatusFailed),
		FailureCount: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, types.ActionScaleUp, result.Action)
	require.Len(t, rec.Actions(), 1)
	record := rec.Actions()[0]
	assert.Equal(t, types.ResultFailed, record.Result)
	assert.Equal(t, types.FailedReward, record.Reward)
	assert.Nil(t, record.RecoveryTime)
}

func TestWatchdog_RecoverReadsLiveSampleWhenNoneGiven(t *testing.T) {
	probe := &fakeProbe{live: sample(20, 20, types.StatusHealthy)}
	rec := &memoryRecorder{}
	w := newTestWatchdog(t, probe, rec, fastConfig())

	result, err := w.Recover(context.Background(), RecoverRequest{FailureCount: 10})
	require.NoError(t, err)

	require.NotNil(t, result.Baseline)
	assert.Equal(t, 20.0, result.Baseline.CPU)
	assert.Equal(t, types.ActionRollback, result.Action)
	assert.GreaterOrEqual(t, probe.sample, 2)
}

func TestWatchdog_RecoverSurfacesStorageFailure(t *testing.T) {
	probe := &fakeProbe{live: sample(30, 30, types.StatusHealthy)}
	rec := &memoryRecorder{actionErr: errors.New("disk full")}
	w := newTestWatchdog(t, probe, rec, fastConfig())

	result, err := w.Recover(context.Background(), RecoverRequest{Latest: sample(95, 40, types.StatusFailed)})
	require.Error(t, err)
	assert.ErrorContains(t, err, "disk full")
	require.NotNil(t, result)
	require.NotNil(t, result.Record)
	assert.Equal(t, types.ResultRecovered, result.Record.Result)
}

func TestWatchdog_RecoverSurvivesPanickingProbe(t *testing.T) {
	probe := &fakeProbe{panicking: true}
	rec := &memoryRecorder{}
	w := newTestWatchdog(t, probe, rec, fastConfig())

	result, err := w.Recover(context.Background(), RecoverRequest{})
	require.NoError(t, err)

	assert.Equal(t, types.StatusUnknown, result.Baseline.Status)
	assert.Equal(t, types.FailureKindClassificationUnknown, result.Baseline.Kind)
	assert.NotEmpty(t, result.Baseline.FailureType)
	assert.Equal(t, types.ActionDoNothing, result.Action)
	require.Len(t, rec.Actions(), 1)
	assert.Equal(t, types.ResultFailed, rec.Actions()[0].Result)
}

func TestWatchdog_RecoverCancelledRecordsNothing(t *testing.T) {
	probe := &fakeProbe{live: sample(99, 99, types.StatusFailed)}
	rec := &memoryRecorder{}
	cfg := fastConfig()
	cfg.Validation.MaxWait = 5 * time.Second
	w := newTestWatchdog(t, probe, rec, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := w.Recover(ctx, RecoverRequest{Latest: sample(95, 40, types.StatusFailed)})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, rec.Actions())
}

func TestWatchdog_CyclesAreSerialized(t *testing.T) {
	probe := &fakeProbe{live: sample(99, 99, types.StatusFailed)}
	rec := &memoryRecorder{}
	cfg := fastConfig()
	cfg.Validation.MaxWait = 100 * time.Millisecond
	w := newTestWatchdog(t, probe, rec, cfg)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := w.Recover(context.Background(), RecoverRequest{Latest: sample(95, 40, types.StatusFailed)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
	assert.Len(t, rec.Actions(), 2)
}

func TestWatchdog_Detect(t *testing.T) {
	probe := &fakeProbe{live: sample(20, 20, types.StatusHealthy)}
	rec := &memoryRecorder{}
	w := newTestWatchdog(t, probe, rec, fastConfig())

	detection, err := w.Detect(context.Background(), &metrics.Reading{CPU: 95, Memory: 40})
	require.NoError(t, err)
	assert.True(t, detection.Detected)
	assert.Equal(t, types.StatusFailed, detection.Sample.Status)
	assert.Equal(t, 1, probe.classify)

	detection, err = w.Detect(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, detection.Detected)
	assert.Equal(t, 1, probe.sample)

	assert.Len(t, rec.metrics, 2)
}

func TestWatchdog_DetectDoesNotRecordStaleReading(t *testing.T) {
	stale := sample(97, 97, types.StatusFailed)
	stale.Kind = types.FailureKindMetricUnavailable
	probe := &fakeProbe{live: stale}
	rec := &memoryRecorder{}
	w := newTestWatchdog(t, probe, rec, fastConfig())

	detection, err := w.Detect(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, detection.Stale)
	assert.False(t, detection.Detected)
	assert.Equal(t, 97.0, detection.Sample.CPU)
	assert.Empty(t, rec.metrics)
}

func TestWatchdog_ForceFailure(t *testing.T) {
	probe := &fakeProbe{live: sample(20, 20, types.StatusHealthy)}
	rec := &memoryRecorder{}
	w := newTestWatchdog(t, probe, rec, fastConfig())

	s, err := w.ForceFailure(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.StatusFailed, s.Status)
	for _, v := range []float64{s.CPU, s.Memory} {
		assert.GreaterOrEqual(t, v, 90.0)
		assert.LessOrEqual(t, v, 100.0)
	}
	require.NotNil(t, s.Disk)
	assert.GreaterOrEqual(t, *s.Disk, 90.0)
	assert.Len(t, rec.metrics, 1)
}

func TestWatchdog_HistoryIsBounded(t *testing.T) {
	w := &Watchdog{maxHistorySize: 3}
	for i := 0; i < 5; i++ {
		w.addToHistoryLocked(RecoveryResult{CycleID: string(rune('a' + i))})
	}

	history := w.GetRecoveryHistory()
	require.Len(t, history, 3)
	assert.Equal(t, "c", history[0].CycleID)
	assert.Equal(t, "e", history[2].CycleID)
}
