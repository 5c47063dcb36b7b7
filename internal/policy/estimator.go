package policy

import (
	"math/rand"
	"sync"
	"time"

	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
)

// SuccessProbability is the prior chance that action fixes the system
func SuccessProbability(action types.Action, cpu, memory float64, status types.Status) float64 {
	switch action {
	case types.ActionRestart:
		if status == types.StatusFailed {
			return 0.7
		}
		return 0.5
	case types.ActionScaleUp:
		if memory > cpu {
			return 0.6
		}
		return 0.4
	case types.ActionRollback:
		return 0.5
	default:
		return 0.2
	}
}

// Estimator draws an advisory success guess from the prior table.
// Its output is diagnostic only; recovery is decided by validation.
type Estimator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEstimator creates an estimator; a nil rng is seeded from the clock
func NewEstimator(rng *rand.Rand) *Estimator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Estimator{rng: rng}
}

// Estimate draws once and compares against the prior
func (e *Estimator) Estimate(action types.Action, cpu, memory float64, status types.Status) bool {
	p := SuccessProbability(action, cpu, memory, status)

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Float64() < p
}
