package watchdog

import (
	"math"
	"sync"
	"testing"

	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
)

func TestNewDetector(t *testing.T) {
	tests := []struct {
		name       string
		cfg        *DetectorConfig
		wantWindow int
		wantWarmup int
	}{
		{
			name:       "default config",
			cfg:        nil,
			wantWindow: 60,
			wantWarmup: 10,
		},
		{
			name:       "custom window size",
			cfg:        &DetectorConfig{WindowSize: 20, WarmupSamples: 5},
			wantWindow: 20,
			wantWarmup: 5,
		},
		{
			name:       "zero values use defaults",
			cfg:        &DetectorConfig{},
			wantWindow: 60,
			wantWarmup: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(tt.cfg)
			if d.cfg.WindowSize != tt.wantWindow {
				t.Errorf("window size = %d, want %d", d.cfg.WindowSize, tt.wantWindow)
			}
			if d.cfg.WarmupSamples != tt.wantWarmup {
				t.Errorf("warmup = %d, want %d", d.cfg.WarmupSamples, tt.wantWarmup)
			}
			if d.Len() != 0 {
				t.Errorf("initial length = %d, want 0", d.Len())
			}
		})
	}
}

func TestDetector_StaticBoundary(t *testing.T) {
	tests := []struct {
		name   string
		cpu    float64
		memory float64
		want   types.Status
	}{
		{"cpu at bar", 90.0, 0, types.StatusFailed},
		{"cpu just below bar", 89.999, 0, types.StatusHealthy},
		{"memory at bar", 10, 90.0, types.StatusFailed},
		{"memory just below bar", 10, 89.999, types.StatusHealthy},
		{"both saturated", 100, 100, types.StatusFailed},
		{"idle", 0, 0, types.StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(nil)
			if got := d.Observe(tt.cpu, tt.memory); got != tt.want {
				t.Errorf("Observe(%v, %v) = %s, want %s", tt.cpu, tt.memory, got, tt.want)
			}
		})
	}
}

func TestDetector_StaticUntilWarmedUp(t *testing.T) {
	d := NewDetector(nil)
	for i := 0; i < DefaultWarmupSamples-2; i++ {
		d.Observe(20, 20)
	}

	// The 9th sample is still judged against the static bar, so a jump the
	// adaptive band would flag is healthy.
	if got := d.Observe(50, 20); got != types.StatusHealthy {
		t.Errorf("9th sample status = %s, want healthy", got)
	}

	th := d.Thresholds()
	if th.Adaptive {
		t.Fatal("expected static thresholds before warmup completes")
	}
	if th.CPU != DefaultStaticThreshold || th.Memory != DefaultStaticThreshold {
		t.Errorf("thresholds = %v/%v, want %v", th.CPU, th.Memory, DefaultStaticThreshold)
	}

	if got := d.Observe(20, 20); got != types.StatusHealthy {
		t.Errorf("10th sample status = %s, want healthy", got)
	}
	if !d.Thresholds().Adaptive {
		t.Error("expected adaptive thresholds after warmup")
	}
}

func TestDetector_ConstantWindowThreshold(t *testing.T) {
	d := NewDetector(nil)
	for i := 0; i < 30; i++ {
		if got := d.Observe(50, 40); got != types.StatusHealthy {
			t.Fatalf("sample %d: status = %s, want healthy", i, got)
		}
	}

	th := d.Thresholds()
	if !th.Adaptive {
		t.Fatal("expected adaptive thresholds")
	}
	if math.Abs(th.CPU-50.002) > 1e-9 {
		t.Errorf("cpu threshold = %v, want 50.002", th.CPU)
	}
	if math.Abs(th.Memory-40.002) > 1e-9 {
		t.Errorf("memory threshold = %v, want 40.002", th.Memory)
	}

	// The new sample is included before the threshold is computed, and one
	// point above a flat window still clears mean + 2 sigma.
	if got := d.Observe(51, 40); got != types.StatusFailed {
		t.Errorf("spike status = %s, want failed", got)
	}
}

func TestDetector_AdaptiveFlagsMemoryAlone(t *testing.T) {
	d := NewDetector(nil)
	for i := 0; i < 20; i++ {
		d.Observe(30, 30)
	}
	if got := d.Observe(30, 45); got != types.StatusFailed {
		t.Errorf("status = %s, want failed", got)
	}
}

func TestDetector_WindowEvictsOldest(t *testing.T) {
	d := NewDetector(&DetectorConfig{WindowSize: 3, WarmupSamples: 1})
	for _, v := range []float64{1, 2, 3, 4} {
		d.Observe(v, v)
	}

	if d.Len() != 3 {
		t.Fatalf("length = %d, want 3", d.Len())
	}
	want := []float64{2, 3, 4}
	for i, v := range want {
		if d.cpu[i] != v || d.memory[i] != v {
			t.Errorf("window[%d] = %v/%v, want %v", i, d.cpu[i], d.memory[i], v)
		}
	}
}

func TestDetector_NeverExceedsCapacity(t *testing.T) {
	d := NewDetector(nil)
	for i := 0; i < 500; i++ {
		d.Observe(float64(i%100), float64((i*7)%100))
		if d.Len() > DefaultWindowSize {
			t.Fatalf("length %d exceeds capacity after %d samples", d.Len(), i+1)
		}
	}
	if d.Len() != DefaultWindowSize {
		t.Errorf("length = %d, want %d", d.Len(), DefaultWindowSize)
	}
}

func TestDetector_ConcurrentObserve(t *testing.T) {
	d := NewDetector(nil)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				d.Observe(float64((g*i)%100), float64(i%100))
				_ = d.Thresholds()
			}
		}(g)
	}
	wg.Wait()

	if d.Len() != DefaultWindowSize {
		t.Errorf("length = %d, want %d", d.Len(), DefaultWindowSize)
	}
	if len(d.cpu) != len(d.memory) {
		t.Errorf("windows diverged: cpu=%d memory=%d", len(d.cpu), len(d.memory))
	}
}
