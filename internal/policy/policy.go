// Package policy chooses a remediation action from an encoded system state.
//
// Two implementations exist: a learned linear-softmax model loaded from an
// artifact, and a fixed heuristic. The Engine picks one at construction time;
// a missing or broken artifact selects the heuristic and is never fatal.
package policy

import (
	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
)

// StateSize is the dimension of a StateVector
const StateSize = 3

// MaxFailureCount is where the recent-failure feature saturates
const MaxFailureCount = 10

// StateVector is [cpu, memory, recent failures], each normalized to [0,1]
type StateVector [StateSize]float64

// CPU returns the normalized cpu component
func (s StateVector) CPU() float64 { return s[0] }

// Memory returns the normalized memory component
func (s StateVector) Memory() float64 { return s[1] }

// Failures returns the normalized failure-count component
func (s StateVector) Failures() float64 { return s[2] }

// Encode maps raw percentages and a recent failure count into a StateVector
func Encode(cpu, memory float64, recentFailures int) StateVector {
	failures := min(max(recentFailures, 0), MaxFailureCount)
	return StateVector{
		cpu / 100.0,
		memory / 100.0,
		float64(failures) / MaxFailureCount,
	}
}

// Policy selects an action for a state
type Policy interface {
	// Name identifies the policy in logs and CLI output
	Name() string
	// Select returns the chosen action; an error means the policy could not
	// decide and the caller should fall back
	Select(s StateVector) (types.Action, error)
}

// Heuristic thresholds
const (
	heuristicCPULimit      = 0.6
	heuristicMemoryLimit   = 0.6
	heuristicFailuresLimit = 0.5
)

// HeuristicPolicy is the deterministic rule-based fallback.
// Rule order is fixed: restart, scale_up, rollback, do_nothing.
type HeuristicPolicy struct{}

// Name returns "heuristic"
func (HeuristicPolicy) Name() string { return "heuristic" }

// Select never fails
func (HeuristicPolicy) Select(s StateVector) (types.Action, error) {
	return Heuristic(s), nil
}

// Heuristic applies the fallback rules to s
func Heuristic(s StateVector) types.Action {
	cpu, mem, fail := s.CPU(), s.Memory(), s.Failures()
	switch {
	case cpu > mem && cpu > heuristicCPULimit:
		return types.ActionRestart
	case mem > heuristicMemoryLimit:
		return types.ActionScaleUp
	case fail > heuristicFailuresLimit:
		return types.ActionRollback
	default:
		return types.ActionDoNothing
	}
}
