package policy

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
)

// SelectionReason records why the engine runs the policy it runs
type SelectionReason string

const (
	ReasonModelLoaded  SelectionReason = "model_loaded"
	ReasonModelMissing SelectionReason = "model_missing"
	ReasonModelInvalid SelectionReason = "model_invalid"
	ReasonModelTrained SelectionReason = "model_trained"
)

// Engine owns the active policy and the optional model artifact.
// The policy is chosen once at construction; only Replace (used after
// training) swaps it.
type Engine struct {
	mu sync.RWMutex

	active    Policy
	model     *Model
	reason    SelectionReason
	loadErr   error
	modelPath string
}

// NewEngine loads the model at modelPath, falling back to the heuristic
// when it is missing or unusable
func NewEngine(modelPath string) *Engine {
	e := &Engine{modelPath: modelPath}

	model, err := LoadModel(modelPath)
	switch {
	case err == nil:
		e.install(model, ReasonModelLoaded)
		logrus.Infof("policy: loaded learned model from %s", modelPath)
	case errors.Is(err, ErrModelNotFound):
		e.active = HeuristicPolicy{}
		e.reason = ReasonModelMissing
		logrus.Debugf("policy: no model at %s, using heuristic", modelPath)
	default:
		e.active = HeuristicPolicy{}
		e.reason = ReasonModelInvalid
		e.loadErr = err
		logrus.Warnf("policy: model at %s unusable, using heuristic: %v", modelPath, err)
	}

	return e
}

// NewHeuristicEngine returns an engine that always uses the heuristic
func NewHeuristicEngine() *Engine {
	return &Engine{active: HeuristicPolicy{}, reason: ReasonModelMissing}
}

// install MUST be called with e.mu held or before e is shared
func (e *Engine) install(m *Model, reason SelectionReason) {
	e.active = &LearnedPolicy{model: m}
	e.model = m
	e.reason = reason
	e.loadErr = nil
}

// Select returns the action for s. A learned policy that fails to infer
// falls back to the heuristic for this call only.
func (e *Engine) Select(s StateVector) types.Action {
	e.mu.RLock()
	active := e.active
	e.mu.RUnlock()

	action, err := active.Select(s)
	if err != nil {
		logrus.Warnf("policy: %s inference failed, using heuristic: %v", active.Name(), err)
		return Heuristic(s)
	}
	if !action.IsValid() {
		logrus.Warnf("policy: %s returned invalid action %q, using heuristic", active.Name(), action)
		return Heuristic(s)
	}
	return action
}

// Replace installs a newly trained model
func (e *Engine) Replace(m *Model) error {
	if _, err := NewLearnedPolicy(m); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.install(m, ReasonModelTrained)
	return nil
}

// PolicyName returns the name of the active policy
func (e *Engine) PolicyName() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active.Name()
}

// Reason returns why the active policy was selected
func (e *Engine) Reason() SelectionReason {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.reason
}

// LoadError returns the artifact error behind ReasonModelInvalid, if any
func (e *Engine) LoadError() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loadErr
}

// Model returns the current model, or nil when the heuristic is active
func (e *Engine) Model() *Model {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model
}

// ModelPath returns the artifact location the engine was built with
func (e *Engine) ModelPath() string {
	return e.modelPath
}
