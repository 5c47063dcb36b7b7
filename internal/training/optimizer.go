package training

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/Sazadakthar786/Software-failure-detection/internal/policy"
	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
)

// Optimizer improves a policy model by interacting with an environment
type Optimizer interface {
	Learn(ctx context.Context, env Env, totalSteps int) (*policy.Model, error)
}

// Reinforce defaults
const (
	DefaultLearningRate = 0.05
	DefaultBaselineRate = 0.01
)

// Reinforce is a policy-gradient optimizer for the linear softmax model,
// with a running-mean reward baseline.
type Reinforce struct {
	// LearningRate scales each gradient step
	LearningRate float64
	// BaselineRate is the smoothing factor of the reward baseline
	BaselineRate float64
	// Init is the starting model; nil starts from zeros
	Init *policy.Model

	rng *rand.Rand
}

// NewReinforce creates an optimizer; a nil rng is seeded from the clock
func NewReinforce(rng *rand.Rand) *Reinforce {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Reinforce{
		LearningRate: DefaultLearningRate,
		BaselineRate: DefaultBaselineRate,
		rng:          rng,
	}
}

// Learn runs totalSteps environment steps and returns the trained model
func (r *Reinforce) Learn(ctx context.Context, env Env, totalSteps int) (*policy.Model, error) {
	if totalSteps <= 0 {
		return nil, fmt.Errorf("total steps must be positive, got %d", totalSteps)
	}

	model := policy.NewModel()
	if r.Init != nil {
		model = r.Init.Clone()
	}

	baseline := 0.0
	state := env.Reset()
	for step := 0; step < totalSteps; step++ {
		if step%StepsPerEpisode == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		probs, err := model.Probabilities(state)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}
		idx := r.sample(probs)
		action, err := types.ActionAt(idx)
		if err != nil {
			return nil, err
		}

		next, reward, done := env.Step(action)

		advantage := reward - baseline
		baseline += r.BaselineRate * (reward - baseline)

		// d log softmax / d logit_i = 1[i == a] - p_i
		for i := range model.Weights {
			grad := -probs[i]
			if i == idx {
				grad += 1
			}
			scale := r.LearningRate * advantage * grad
			floats.AddScaled(model.Weights[i], scale, state[:])
			model.Bias[i] += scale
		}

		if done {
			state = env.Reset()
		} else {
			state = next
		}
	}

	model.Steps = totalSteps
	return model, nil
}

func (r *Reinforce) sample(probs []float64) int {
	u := r.rng.Float64()
	acc := 0.0
	for i, p := range probs {
		acc += p
		if u < acc {
			return i
		}
	}
	return len(probs) - 1
}

// ExpectedRecovery is the mean recovery probability of the model's greedy
// action over n states drawn from rng
func ExpectedRecovery(model *policy.Model, n int, rng *rand.Rand) (float64, error) {
	learned, err := policy.NewLearnedPolicy(model)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("sample count must be positive, got %d", n)
	}

	total := 0.0
	for i := 0; i < n; i++ {
		s := policy.StateVector{rng.Float64(), rng.Float64(), rng.Float64()}
		action, err := learned.Select(s)
		if err != nil {
			return 0, err
		}
		total += RecoveryProbability(action, s)
	}
	return total / float64(n), nil
}
