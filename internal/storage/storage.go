package storage

import (
	"context"

	"github.com/Sazadakthar786/Software-failure-detection/internal/config"
	"github.com/Sazadakthar786/Software-failure-detection/internal/storage/sqlite"
	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
)

// DefaultPath is where the database lives unless configured otherwise
const DefaultPath = config.DefaultDBPath

// RecentLimit is how many rows the recent listings return by default
const RecentLimit = 50

// Storage defines the interface for the metric and action logs
type Storage interface {
	// Metric samples
	AppendMetric(ctx context.Context, sample *types.MetricSample) error
	LatestMetric(ctx context.Context) (*types.MetricSample, error)
	RecentMetrics(ctx context.Context, limit int) ([]*types.MetricSample, error)

	// Action records
	AppendAction(ctx context.Context, record *types.ActionRecord) error
	RecentActions(ctx context.Context, limit int) ([]*types.ActionRecord, error)
	CountActionsByResult(ctx context.Context, result types.Result) (int, error)
	GetSummary(ctx context.Context) (*types.Summary, error)

	// Retention
	CleanupMetricsByAge(ctx context.Context, retentionDays, failedRetentionDays, batchSize int) (int, error)
	CleanupMetricsByGlobalLimit(ctx context.Context, globalLimit, batchSize int) (int, error)
	GetMetricCounts(ctx context.Context) (*sqlite.MetricCounts, error)
	VacuumDatabase(ctx context.Context) error

	// Schema
	SchemaVersion(ctx context.Context) (current, latest int, err error)
	RollbackSchema(ctx context.Context) error

	// Lifecycle
	Close() error
}

// Config holds database configuration
type Config struct {
	// Path is the SQLite database file path
	// Default: ".sfd/sfd.db"
	Path string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{Path: DefaultPath}
}

// NewStorage opens the SQLite storage backend
func NewStorage(ctx context.Context, cfg *Config) (Storage, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	store, err := sqlite.New(ctx, path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

var _ Storage = (*sqlite.SQLiteStorage)(nil)
