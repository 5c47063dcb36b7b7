package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
)

const metricColumns = `id, timestamp, cpu, memory, disk, status, failure_type, affected_component, suggested_remedy`

// AppendMetric inserts a sample and sets its ID
func (s *SQLiteStorage) AppendMetric(ctx context.Context, sample *types.MetricSample) error {
	if err := sample.Validate(); err != nil {
		return fmt.Errorf("invalid metric sample: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO metric_samples (timestamp, cpu, memory, disk, status, failure_type, affected_component, suggested_remedy)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		formatTime(sample.Timestamp),
		sample.CPU,
		sample.Memory,
		nullFloat(sample.Disk),
		string(sample.Status),
		nullString(sample.FailureType),
		nullString(sample.AffectedComponent),
		nullString(sample.SuggestedRemedy),
	)
	if err != nil {
		return fmt.Errorf("failed to insert metric sample: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get metric sample ID: %w", err)
	}
	sample.ID = id
	return nil
}

// LatestMetric returns the most recent sample, or nil if there is none
func (s *SQLiteStorage) LatestMetric(ctx context.Context) (*types.MetricSample, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+metricColumns+` FROM metric_samples ORDER BY id DESC LIMIT 1`)
	sample, err := scanMetric(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest metric sample: %w", err)
	}
	return sample, nil
}

// RecentMetrics returns up to limit of the newest samples, oldest first
func (s *SQLiteStorage) RecentMetrics(ctx context.Context, limit int) ([]*types.MetricSample, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+metricColumns+` FROM (
			SELECT * FROM metric_samples ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric samples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var samples []*types.MetricSample
	for rows.Next() {
		sample, err := scanMetric(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metric sample: %w", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating metric samples: %w", err)
	}
	return samples, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanMetric(row scanner) (*types.MetricSample, error) {
	var (
		sample                                   types.MetricSample
		timestamp, status                        string
		disk                                     sql.NullFloat64
		failureType, affectedComponent, remedies sql.NullString
	)
	if err := row.Scan(
		&sample.ID,
		&timestamp,
		&sample.CPU,
		&sample.Memory,
		&disk,
		&status,
		&failureType,
		&affectedComponent,
		&remedies,
	); err != nil {
		return nil, err
	}

	ts, err := parseTime(timestamp)
	if err != nil {
		return nil, err
	}
	sample.Timestamp = ts
	sample.Disk = floatPtr(disk)
	sample.Status = types.Status(status)
	sample.FailureType = failureType.String
	sample.AffectedComponent = affectedComponent.String
	sample.SuggestedRemedy = remedies.String
	return &sample, nil
}
