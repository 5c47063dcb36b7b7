package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/sirupsen/logrus"
)

// HostSource reads live usage of the local host
type HostSource struct {
	// CPUInterval is how long cpu usage is measured for
	// Default: 100ms
	CPUInterval time.Duration
	// DiskPath is the mount point reported as disk usage
	// Default: "/"
	DiskPath string
}

// NewHostSource creates a host source with default settings
func NewHostSource() *HostSource {
	return &HostSource{
		CPUInterval: 100 * time.Millisecond,
		DiskPath:    "/",
	}
}

// Read samples cpu, memory and disk usage.
// Disk is optional: a disk error is logged and the field left empty.
func (h *HostSource) Read(ctx context.Context) (Reading, error) {
	percents, err := cpu.PercentWithContext(ctx, h.CPUInterval, false)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: cpu: %v", ErrUnavailable, err)
	}
	if len(percents) == 0 {
		return Reading{}, fmt.Errorf("%w: cpu: no data", ErrUnavailable)
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: memory: %v", ErrUnavailable, err)
	}

	reading := Reading{
		CPU:    percents[0],
		Memory: vm.UsedPercent,
	}

	if h.DiskPath != "" {
		usage, err := disk.UsageWithContext(ctx, h.DiskPath)
		if err != nil {
			logrus.Debugf("metrics: disk usage for %s unavailable: %v", h.DiskPath, err)
		} else {
			d := usage.UsedPercent
			reading.Disk = &d
		}
	}

	return reading, nil
}
