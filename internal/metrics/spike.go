package metrics

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
)

// Spike injection defaults
const (
	DefaultSpikeProbability = 0.05
	DefaultSpikeMin         = 20.0
	DefaultSpikeMax         = 50.0
)

// SpikeSource wraps a Source and occasionally adds a transient spike to cpu
// and memory, independently, to simulate intermittent trouble.
type SpikeSource struct {
	mu  sync.Mutex
	rng *rand.Rand

	source      Source
	probability float64
	minSpike    float64
	maxSpike    float64
}

// NewSpikeSource wraps source with the default spike profile.
// A nil rng is seeded from the clock.
func NewSpikeSource(source Source, rng *rand.Rand) *SpikeSource {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SpikeSource{
		rng:         rng,
		source:      source,
		probability: DefaultSpikeProbability,
		minSpike:    DefaultSpikeMin,
		maxSpike:    DefaultSpikeMax,
	}
}

// WithProbability overrides the per-metric spike probability
func (s *SpikeSource) WithProbability(p float64) *SpikeSource {
	s.probability = p
	return s
}

// Read reads the wrapped source and applies spikes, capped at 100
func (s *SpikeSource) Read(ctx context.Context) (Reading, error) {
	r, err := s.source.Read(ctx)
	if err != nil {
		return r, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rng.Float64() < s.probability {
		r.CPU = min(100.0, r.CPU+s.spike())
	}
	if s.rng.Float64() < s.probability {
		r.Memory = min(100.0, r.Memory+s.spike())
	}
	return r, nil
}

// spike MUST be called with s.mu held
func (s *SpikeSource) spike() float64 {
	return s.minSpike + s.rng.Float64()*(s.maxSpike-s.minSpike)
}

// ForcedFailure synthesizes a failed sample with extreme usage values in
// [90, 100] for demos and tests.
func ForcedFailure(rng *rand.Rand) *types.MetricSample {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	extreme := func() float64 { return 90.0 + rng.Float64()*10.0 }

	disk := extreme()
	return &types.MetricSample{
		Timestamp:       time.Now().UTC(),
		CPU:             extreme(),
		Memory:          extreme(),
		Disk:            &disk,
		Status:          types.StatusFailed,
		FailureType:     "simulated_failure",
		SuggestedRemedy: string(types.ActionRestart),
	}
}
