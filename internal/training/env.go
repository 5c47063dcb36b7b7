// Package training bootstraps the learned policy against a synthetic,
// single-step failure environment.
package training

import (
	"math/rand"

	"github.com/Sazadakthar786/Software-failure-detection/internal/policy"
	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
)

// Env is a single-agent environment with the policy's state and action space
type Env interface {
	Reset() policy.StateVector
	Step(action types.Action) (next policy.StateVector, reward float64, done bool)
}

// SimpleFailureEnv draws a uniform random state per episode; each action
// recovers with a probability that depends on the state. Episodes are one
// step long and reward +1 on recovery, -1 otherwise.
//
// Not safe for concurrent use.
type SimpleFailureEnv struct {
	rng   *rand.Rand
	state policy.StateVector
}

// NewSimpleFailureEnv creates a seeded environment
func NewSimpleFailureEnv(seed int64) *SimpleFailureEnv {
	return &SimpleFailureEnv{rng: rand.New(rand.NewSource(seed))}
}

// Reset draws a fresh state
func (e *SimpleFailureEnv) Reset() policy.StateVector {
	e.state = e.draw()
	return e.state
}

// Step applies action to the current state and ends the episode
func (e *SimpleFailureEnv) Step(action types.Action) (policy.StateVector, float64, bool) {
	reward := -1.0
	if e.recovers(action, e.state) {
		reward = 1.0
	}
	e.state = e.draw()
	return e.state, reward, true
}

func (e *SimpleFailureEnv) draw() policy.StateVector {
	return policy.StateVector{e.rng.Float64(), e.rng.Float64(), e.rng.Float64()}
}

// recovers draws only when the deterministic condition does not already hold
func (e *SimpleFailureEnv) recovers(action types.Action, s policy.StateVector) bool {
	switch action {
	case types.ActionRestart:
		return s.CPU() > 0.7 || s.Memory() > 0.7 || e.rng.Float64() < 0.6
	case types.ActionScaleUp:
		return s.Memory() > 0.6 || e.rng.Float64() < 0.5
	case types.ActionRollback:
		return s.Failures() > 0.4 || e.rng.Float64() < 0.4
	default:
		return e.rng.Float64() < 0.2
	}
}

// RecoveryProbability is the exact chance that action recovers from s
func RecoveryProbability(action types.Action, s policy.StateVector) float64 {
	switch action {
	case types.ActionRestart:
		if s.CPU() > 0.7 || s.Memory() > 0.7 {
			return 1
		}
		return 0.6
	case types.ActionScaleUp:
		if s.Memory() > 0.6 {
			return 1
		}
		return 0.5
	case types.ActionRollback:
		if s.Failures() > 0.4 {
			return 1
		}
		return 0.4
	default:
		return 0.2
	}
}
