package training

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Sazadakthar786/Software-failure-detection/internal/policy"
)

// StepsPerEpisode converts requested episodes into optimizer steps
const StepsPerEpisode = 1024

// DefaultEpisodes is used when a train request names no episode count
const DefaultEpisodes = 10

// evalSamples is how many states the post-training evaluation draws
const evalSamples = 2048

// ErrNoModel is returned by Save when there is nothing to persist
var ErrNoModel = errors.New("no model to save")

// Status is the outcome of a train request
type Status string

const (
	StatusTrained Status = "trained"
	StatusSkipped Status = "skipped"
)

// Report describes one train request
type Report struct {
	Status           Status        `json:"status"`
	Episodes         int           `json:"episodes"`
	Steps            int           `json:"steps,omitempty"`
	RunID            string        `json:"run_id,omitempty"`
	ExpectedRecovery float64       `json:"expected_recovery,omitempty"`
	Duration         time.Duration `json:"duration,omitempty"`
	Reason           string        `json:"reason,omitempty"`
	// Seed is the environment seed this run trained on
	Seed             int64         `json:"seed,omitempty"`
}

// Trainer drives policy improvement with the synthetic environment
type Trainer struct {
	engine    *policy.Engine
	optimizer Optimizer
	modelPath string

	// seeds hands each run its own environment seed; guarded by mu
	mu    sync.Mutex
	seeds *rand.Rand
}

// TrainerConfig holds dependencies for creating a Trainer
type TrainerConfig struct {
	Engine *policy.Engine
	// Optimizer is optional; without one Train reports StatusSkipped
	Optimizer Optimizer
	// ModelPath is where Save writes; defaults to the engine's model path
	ModelPath string
	// Seed derives the per-run environment seeds; zero uses the clock
	Seed int64
}

// NewTrainer creates a new trainer
func NewTrainer(cfg *TrainerConfig) (*Trainer, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	modelPath := cfg.ModelPath
	if modelPath == "" {
		modelPath = cfg.Engine.ModelPath()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Trainer{
		engine:    cfg.Engine,
		optimizer: cfg.Optimizer,
		modelPath: modelPath,
		seeds:     rand.New(rand.NewSource(seed)),
	}, nil
}

// Train runs the optimizer for episodes*StepsPerEpisode steps and installs
// the resulting model in the engine. Episodes below 1 are raised to 1.
func (t *Trainer) Train(ctx context.Context, episodes int) (*Report, error) {
	episodes = max(episodes, 1)

	if t.optimizer == nil {
		logrus.Warnf("training: no optimizer available, skipping %d episodes", episodes)
		return &Report{
			Status:   StatusSkipped,
			Episodes: episodes,
			Reason:   "no optimizer available",
		}, nil
	}

	t.mu.Lock()
	seed := t.seeds.Int63()
	t.mu.Unlock()

	runID := uuid.New().String()
	steps := episodes * StepsPerEpisode
	log := logrus.WithFields(logrus.Fields{"run_id": runID, "steps": steps, "seed": seed})
	log.Info("training: started")

	start := time.Now()
	model, err := t.optimizer.Learn(ctx, NewSimpleFailureEnv(seed), steps)
	if err != nil {
		return nil, fmt.Errorf("training failed: %w", err)
	}
	model.RunID = runID
	model.TrainedAt = time.Now().UTC()

	expected, err := ExpectedRecovery(model, evalSamples, rand.New(rand.NewSource(seed+1)))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate trained model: %w", err)
	}

	if err := t.engine.Replace(model); err != nil {
		return nil, fmt.Errorf("failed to install trained model: %w", err)
	}

	report := &Report{
		Status:           StatusTrained,
		Episodes:         episodes,
		Steps:            steps,
		RunID:            runID,
		ExpectedRecovery: expected,
		Duration:         time.Since(start),
		Seed:             seed,
	}
	log.WithField("expected_recovery", expected).Infof("training: finished in %v", report.Duration.Round(time.Millisecond))
	return report, nil
}

// Save persists the engine's current model
func (t *Trainer) Save() error {
	model := t.engine.Model()
	if model == nil {
		return ErrNoModel
	}
	if err := model.Save(t.modelPath); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	logrus.Infof("training: saved model to %s", t.modelPath)
	return nil
}
