package watchdog

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/Sazadakthar786/Software-failure-detection/internal/metrics"
	"github.com/Sazadakthar786/Software-failure-detection/internal/policy"
	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
)

// CycleState is a step of the recovery cycle
type CycleState string

const (
	StateIdle       CycleState = "idle"
	StateDetecting  CycleState = "detecting"
	StateDeciding   CycleState = "deciding"
	StateValidating CycleState = "validating"
	StateRewarding  CycleState = "rewarding"
)

// StateTransition represents a state change during a recovery cycle
type StateTransition struct {
	From      CycleState
	To        CycleState
	Timestamp time.Time
}

// classificationFailedMessage is reported when classification itself panics
const classificationFailedMessage = "classification failed"

// MetricProbe produces classified samples, either from the live source or
// from caller-supplied readings
type MetricProbe interface {
	Prober
	Classify(ctx context.Context, reading metrics.Reading) *types.MetricSample
}

// Recorder persists the samples and action records the watchdog produces
type Recorder interface {
	AppendMetric(ctx context.Context, sample *types.MetricSample) error
	AppendAction(ctx context.Context, record *types.ActionRecord) error
}

// Detection is the result of a detection request
type Detection struct {
	Detected bool
	Sample   *types.MetricSample
	// Stale is set when the metric source was unavailable; the carried-over
	// sample is returned for display but not recorded
	Stale    bool
}

// RecoverRequest starts one recovery cycle
type RecoverRequest struct {
	// Latest is the sample to recover from; nil reads the probe
	Latest *types.MetricSample
	// FailureCount is the number of recent failed recovery attempts
	FailureCount int
}

// RecoveryResult describes one completed recovery cycle
type RecoveryResult struct {
	CycleID     string
	Baseline    *types.MetricSample
	State       policy.StateVector
	Policy      string
	Action      types.Action
	Outcome     Outcome
	Record      *types.ActionRecord
	Transitions []StateTransition
}

// Watchdog runs the detect -> decide -> validate -> reward cycle
type Watchdog struct {
	mu sync.RWMutex

	probe     MetricProbe
	engine    *policy.Engine
	estimator *policy.Estimator
	validator *Validator
	recorder  Recorder

	// cycles bounds overlapping recovery cycles
	cycles *semaphore.Weighted

	// rng drives forced failures; guarded by mu
	rng *rand.Rand

	// history tracks recent recovery results for reporting
	history        []RecoveryResult
	maxHistorySize int
}

// WatchdogDeps holds dependencies for creating a Watchdog
type WatchdogDeps struct {
	Probe    MetricProbe
	Engine   *policy.Engine
	Recorder Recorder
	// Estimator is optional; its prediction is only logged
	Estimator *policy.Estimator
	Config    *WatchdogConfig
	// Rand is optional; nil is seeded from the clock
	Rand *rand.Rand
}

// NewWatchdog creates a new watchdog instance
func NewWatchdog(deps *WatchdogDeps) (*Watchdog, error) {
	if deps.Probe == nil {
		return nil, fmt.Errorf("probe is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("policy engine is required")
	}
	if deps.Recorder == nil {
		return nil, fmt.Errorf("recorder is required")
	}

	config := deps.Config
	if config == nil {
		config = DefaultWatchdogConfig()
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid watchdog config: %w", err)
	}

	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Watchdog{
		probe:          deps.Probe,
		engine:         deps.Engine,
		estimator:      deps.Estimator,
		validator:      NewValidator(config.Validation.MaxWait, config.Validation.SampleInterval),
		recorder:       deps.Recorder,
		cycles:         semaphore.NewWeighted(int64(config.MaxConcurrentCycles)),
		rng:            rng,
		history:        make([]RecoveryResult, 0, config.MaxHistorySize),
		maxHistorySize: config.MaxHistorySize,
	}, nil
}

// Detect classifies the given reading, or a live one when reading is nil,
// and records the resulting sample. A stale live reading is never recorded
// or reported as a failure.
func (w *Watchdog) Detect(ctx context.Context, reading *metrics.Reading) (*Detection, error) {
	var sample *types.MetricSample
	if reading != nil {
		r := *reading
		sample = w.safeSample(func() *types.MetricSample { return w.probe.Classify(ctx, r) })
	} else {
		sample = w.sampleLive(ctx)
	}

	if sample.Stale() {
		logrus.Warn("watchdog: metric source unavailable, detection not recorded")
		return &Detection{Sample: sample, Stale: true}, nil
	}

	if err := w.recorder.AppendMetric(ctx, sample); err != nil {
		return nil, fmt.Errorf("failed to record metric sample: %w", err)
	}

	detection := &Detection{
		Detected: sample.Status == types.StatusFailed,
		Sample:   sample,
	}
	if detection.Detected {
		logrus.WithFields(logrus.Fields{
			"cpu":          sample.CPU,
			"memory":       sample.Memory,
			"failure_type": sample.FailureType,
		}).Warn("watchdog: failure detected")
	}
	return detection, nil
}

// ForceFailure records a synthetic failed sample with saturated metrics
func (w *Watchdog) ForceFailure(ctx context.Context) (*types.MetricSample, error) {
	w.mu.Lock()
	sample := metrics.ForcedFailure(w.rng)
	w.mu.Unlock()

	if err := w.recorder.AppendMetric(ctx, sample); err != nil {
		return nil, fmt.Errorf("failed to record forced failure: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"cpu":    sample.CPU,
		"memory": sample.Memory,
	}).Info("watchdog: forced failure recorded")
	return sample, nil
}

// Recover runs one recovery cycle and appends exactly one action record.
// A storage failure is returned along with the otherwise complete result.
// A cancelled ctx aborts the cycle before anything is recorded.
func (w *Watchdog) Recover(ctx context.Context, req RecoverRequest) (*RecoveryResult, error) {
	if err := w.cycles.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("recovery cycle not started: %w", err)
	}
	defer w.cycles.Release(1)

	result := &RecoveryResult{CycleID: uuid.New().String()}
	log := logrus.WithField("cycle_id", result.CycleID)
	state := StateIdle
	transition := func(to CycleState) {
		result.Transitions = append(result.Transitions, StateTransition{From: state, To: to, Timestamp: time.Now()})
		log.WithFields(logrus.Fields{"from": state, "to": to}).Debug("watchdog: cycle transition")
		state = to
	}
	defer func() {
		if result.Record != nil {
			w.mu.Lock()
			w.addToHistoryLocked(*result)
			w.mu.Unlock()
		}
	}()
	defer transition(StateIdle)

	transition(StateDetecting)
	latest := req.Latest
	if latest == nil {
		latest = w.sampleLive(ctx)
	}
	result.Baseline = latest

	transition(StateDeciding)
	result.State, result.Action, result.Policy = w.decide(latest, req.FailureCount)
	log = log.WithFields(logrus.Fields{"action": result.Action, "policy": result.Policy})
	if w.estimator != nil {
		predicted := w.estimator.Estimate(result.Action, latest.CPU, latest.Memory, latest.Status)
		log.WithField("predicted_recovery", predicted).Debug("watchdog: action effect estimate")
	}

	transition(StateValidating)
	outcome, err := w.validator.Validate(ctx, latest.CPU, latest.Memory, ProberFunc(w.sampleLive))
	if err != nil {
		log.Warnf("watchdog: validation aborted: %v", err)
		return nil, fmt.Errorf("recovery validation aborted: %w", err)
	}
	result.Outcome = outcome

	transition(StateRewarding)
	record := &types.ActionRecord{
		CycleID:      result.CycleID,
		Timestamp:    time.Now().UTC(),
		Action:       result.Action,
		Result:       ResultOf(outcome),
		Reward:       Shape(outcome),
		RecoveryTime: outcome.ElapsedSeconds(),
	}
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("invalid action record: %w", err)
	}
	result.Record = record

	log.WithFields(logrus.Fields{
		"result": record.Result,
		"reward": record.Reward,
	}).Info("watchdog: recovery cycle completed")

	if err := w.recorder.AppendAction(ctx, record); err != nil {
		return result, fmt.Errorf("failed to record action: %w", err)
	}
	return result, nil
}

// decide encodes the baseline and asks the policy engine for an action.
// A panicking policy is replaced by the heuristic for this call.
func (w *Watchdog) decide(latest *types.MetricSample, failureCount int) (state policy.StateVector, action types.Action, name string) {
	state = policy.Encode(latest.CPU, latest.Memory, failureCount)
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("watchdog: policy selection panicked: %v", r)
			action = policy.Heuristic(state)
			name = policy.HeuristicPolicy{}.Name()
		}
	}()
	name = w.engine.PolicyName()
	action = w.engine.Select(state)
	return state, action, name
}

// sampleLive reads the probe, never panicking
func (w *Watchdog) sampleLive(ctx context.Context) *types.MetricSample {
	return w.safeSample(func() *types.MetricSample { return w.probe.Sample(ctx) })
}

// safeSample runs a probe call, turning a panic into an Unknown sample
func (w *Watchdog) safeSample(fn func() *types.MetricSample) (sample *types.MetricSample) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("watchdog: classification panicked: %v", r)
			sample = &types.MetricSample{
				Timestamp:   time.Now().UTC(),
				Status:      types.StatusUnknown,
				FailureType: classificationFailedMessage,
				Kind:        types.FailureKindClassificationUnknown,
			}
		}
	}()
	return fn()
}

// addToHistoryLocked appends a result, trimming to maxHistorySize.
// Caller must hold w.mu.
func (w *Watchdog) addToHistoryLocked(result RecoveryResult) {
	w.history = append(w.history, result)
	if len(w.history) > w.maxHistorySize {
		w.history = w.history[len(w.history)-w.maxHistorySize:]
	}
}

// GetRecoveryHistory returns recent recovery results, oldest first
func (w *Watchdog) GetRecoveryHistory() []RecoveryResult {
	w.mu.RLock()
	defer w.mu.RUnlock()

	history := make([]RecoveryResult, len(w.history))
	copy(history, w.history)
	return history
}
