package policy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
)

// ModelVersion is the artifact format this build reads and writes
const ModelVersion = 1

// ErrModelNotFound is returned when no artifact exists at the model path
var ErrModelNotFound = errors.New("model artifact not found")

// Model is a linear softmax policy: one weight row and bias per action
type Model struct {
	Version   int         `json:"version"`
	Weights   [][]float64 `json:"weights"`
	Bias      []float64   `json:"bias"`
	Steps     int         `json:"steps,omitempty"`
	RunID     string      `json:"run_id,omitempty"`
	TrainedAt time.Time   `json:"trained_at,omitempty"`
}

// NewModel returns a zero-initialized model of the right shape
func NewModel() *Model {
	weights := make([][]float64, len(types.Actions))
	for i := range weights {
		weights[i] = make([]float64, StateSize)
	}
	return &Model{
		Version: ModelVersion,
		Weights: weights,
		Bias:    make([]float64, len(types.Actions)),
	}
}

// Validate checks shape and that every parameter is finite
func (m *Model) Validate() error {
	if m.Version != ModelVersion {
		return fmt.Errorf("unsupported model version %d (want %d)", m.Version, ModelVersion)
	}
	if len(m.Weights) != len(types.Actions) {
		return fmt.Errorf("model has %d weight rows, want %d", len(m.Weights), len(types.Actions))
	}
	if len(m.Bias) != len(types.Actions) {
		return fmt.Errorf("model has %d biases, want %d", len(m.Bias), len(types.Actions))
	}
	for i, row := range m.Weights {
		if len(row) != StateSize {
			return fmt.Errorf("weight row %d has %d columns, want %d", i, len(row), StateSize)
		}
		if !allFinite(row) {
			return fmt.Errorf("weight row %d contains non-finite values", i)
		}
	}
	if !allFinite(m.Bias) {
		return fmt.Errorf("bias contains non-finite values")
	}
	return nil
}

func allFinite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Logits returns the unnormalized action scores for s
func (m *Model) Logits(s StateVector) ([]float64, error) {
	logits := make([]float64, len(m.Weights))
	for i, row := range m.Weights {
		logits[i] = floats.Dot(row, s[:]) + m.Bias[i]
	}
	if !allFinite(logits) {
		return nil, fmt.Errorf("model produced non-finite logits")
	}
	return logits, nil
}

// Probabilities returns the softmax distribution over actions for s
func (m *Model) Probabilities(s StateVector) ([]float64, error) {
	logits, err := m.Logits(s)
	if err != nil {
		return nil, err
	}
	maxLogit := floats.Max(logits)
	for i := range logits {
		logits[i] = math.Exp(logits[i] - maxLogit)
	}
	floats.Scale(1/floats.Sum(logits), logits)
	return logits, nil
}

// Clone returns a deep copy
func (m *Model) Clone() *Model {
	c := *m
	c.Weights = make([][]float64, len(m.Weights))
	for i, row := range m.Weights {
		c.Weights[i] = append([]float64(nil), row...)
	}
	c.Bias = append([]float64(nil), m.Bias...)
	return &c
}

// LoadModel reads and validates a model artifact
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return nil, fmt.Errorf("failed to read model: %w", err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model: %w", err)
	}
	return &m, nil
}

// Save writes the artifact atomically (temp file + rename)
func (m *Model) Save(path string) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid model: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".model-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close model file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to install model: %w", err)
	}
	return nil
}

// LearnedPolicy runs deterministic inference on a trained Model
type LearnedPolicy struct {
	model *Model
}

// NewLearnedPolicy wraps a validated model
func NewLearnedPolicy(m *Model) (*LearnedPolicy, error) {
	if m == nil {
		return nil, fmt.Errorf("model is required")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &LearnedPolicy{model: m}, nil
}

// Name returns "learned"
func (p *LearnedPolicy) Name() string { return "learned" }

// Select returns the highest-scoring action; ties go to the lower index
func (p *LearnedPolicy) Select(s StateVector) (types.Action, error) {
	logits, err := p.model.Logits(s)
	if err != nil {
		return "", err
	}
	return types.ActionAt(floats.MaxIdx(logits))
}
