package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sazadakthar786/Software-failure-detection/internal/config"
)

// CleanupResult summarizes one retention pass
type CleanupResult struct {
	AgeDeleted   int
	LimitDeleted int
	Vacuumed     bool
	Duration     time.Duration
}

// Deleted returns the total number of samples removed
func (r *CleanupResult) Deleted() int {
	return r.AgeDeleted + r.LimitDeleted
}

// Cleaner enforces metric sample retention against a store
type Cleaner struct {
	store Storage
	cfg   config.RetentionConfig
}

// NewCleaner validates cfg and returns a cleaner for store
func NewCleaner(store Storage, cfg config.RetentionConfig) (*Cleaner, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retention config: %w", err)
	}
	return &Cleaner{store: store, cfg: cfg}, nil
}

// RunOnce executes one cleanup pass: age-based, then the global cap, then
// an optional VACUUM. A failed step stops the pass.
func (c *Cleaner) RunOnce(ctx context.Context) (*CleanupResult, error) {
	start := time.Now()
	result := &CleanupResult{}

	deleted, err := c.store.CleanupMetricsByAge(ctx, c.cfg.RetentionDays, c.cfg.RetentionFailedDays, c.cfg.CleanupBatchSize)
	if err != nil {
		return result, fmt.Errorf("time-based cleanup failed: %w", err)
	}
	result.AgeDeleted = deleted

	deleted, err = c.store.CleanupMetricsByGlobalLimit(ctx, c.cfg.GlobalLimitSamples, c.cfg.CleanupBatchSize)
	if err != nil {
		return result, fmt.Errorf("global limit cleanup failed: %w", err)
	}
	result.LimitDeleted = deleted

	if c.cfg.CleanupVacuum && result.Deleted() > 0 {
		if err := c.store.VacuumDatabase(ctx); err != nil {
			return result, err
		}
		result.Vacuumed = true
	}

	result.Duration = time.Since(start)
	logrus.WithFields(logrus.Fields{
		"age_deleted":   result.AgeDeleted,
		"limit_deleted": result.LimitDeleted,
		"vacuumed":      result.Vacuumed,
		"duration":      result.Duration,
	}).Info("Metric cleanup completed")
	return result, nil
}

// Run cleans up immediately and then on every cleanup interval until ctx is
// cancelled. When cleanup is disabled it only waits for cancellation.
// Errors from individual passes are logged and do not stop the loop.
func (c *Cleaner) Run(ctx context.Context) error {
	if !c.cfg.CleanupEnabled {
		logrus.Info("Metric cleanup: disabled via configuration")
		<-ctx.Done()
		return nil
	}

	interval := c.cfg.CleanupInterval()
	logrus.WithFields(logrus.Fields{
		"interval":       interval,
		"retention_days": c.cfg.RetentionDays,
		"failed_days":    c.cfg.RetentionFailedDays,
		"global_limit":   c.cfg.GlobalLimitSamples,
	}).Info("Metric cleanup: started")

	if _, err := c.RunOnce(ctx); err != nil && ctx.Err() == nil {
		logrus.WithError(err).Warn("Metric cleanup: initial cleanup failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := c.RunOnce(ctx); err != nil && ctx.Err() == nil {
				logrus.WithError(err).Warn("Metric cleanup: error during cleanup")
			}
		}
	}
}
