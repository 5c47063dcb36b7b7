package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// MetricCounts holds metric sample statistics for monitoring
type MetricCounts struct {
	TotalSamples    int
	SamplesByStatus map[string]int
	OldestSample    *time.Time
	TotalActions    int
}

// CleanupMetricsByAge deletes samples older than the retention period.
// Healthy and Unknown samples go after retentionDays, Failed samples after
// failedRetentionDays. Action records are never deleted.
func (s *SQLiteStorage) CleanupMetricsByAge(ctx context.Context, retentionDays, failedRetentionDays, batchSize int) (int, error) {
	if retentionDays < 0 || failedRetentionDays < 0 {
		return 0, fmt.Errorf("retention days cannot be negative")
	}
	if batchSize < 1 {
		return 0, fmt.Errorf("batch size must be at least 1")
	}

	totalDeleted := 0

	regularCutoff := time.Now().AddDate(0, 0, -retentionDays)
	deleted, err := s.deleteOldSamplesBatch(ctx, regularCutoff, false, batchSize)
	totalDeleted += deleted
	if err != nil {
		return totalDeleted, fmt.Errorf("failed to delete old samples: %w", err)
	}

	failedCutoff := time.Now().AddDate(0, 0, -failedRetentionDays)
	deleted, err = s.deleteOldSamplesBatch(ctx, failedCutoff, true, batchSize)
	totalDeleted += deleted
	if err != nil {
		return totalDeleted, fmt.Errorf("failed to delete old failed samples: %w", err)
	}

	return totalDeleted, nil
}

// deleteOldSamplesBatch deletes samples older than cutoff, either only the
// Failed ones or everything else, batchSize rows per statement
func (s *SQLiteStorage) deleteOldSamplesBatch(ctx context.Context, cutoff time.Time, failed bool, batchSize int) (int, error) {
	statusClause := "status != 'Failed'"
	if failed {
		statusClause = "status = 'Failed'"
	}
	query := fmt.Sprintf(`
		DELETE FROM metric_samples
		WHERE id IN (
			SELECT id FROM metric_samples
			WHERE timestamp < ? AND %s
			ORDER BY id ASC
			LIMIT ?
		)
	`, statusClause)

	totalDeleted := 0
	for {
		if err := ctx.Err(); err != nil {
			return totalDeleted, err
		}

		result, err := s.db.ExecContext(ctx, query, formatTime(cutoff), batchSize)
		if err != nil {
			return totalDeleted, fmt.Errorf("failed to execute delete: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return totalDeleted, fmt.Errorf("failed to get rows affected: %w", err)
		}
		totalDeleted += int(rowsAffected)

		if rowsAffected < int64(batchSize) {
			return totalDeleted, nil
		}
	}
}

// CleanupMetricsByGlobalLimit deletes the oldest samples until at most
// globalLimit remain
func (s *SQLiteStorage) CleanupMetricsByGlobalLimit(ctx context.Context, globalLimit, batchSize int) (int, error) {
	if globalLimit < 1 {
		return 0, fmt.Errorf("global limit must be at least 1")
	}
	if batchSize < 1 {
		return 0, fmt.Errorf("batch size must be at least 1")
	}

	var currentCount int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM metric_samples").Scan(&currentCount); err != nil {
		return 0, fmt.Errorf("failed to get sample count: %w", err)
	}
	if currentCount <= globalLimit {
		return 0, nil
	}

	toDelete := currentCount - globalLimit
	totalDeleted := 0
	for toDelete > 0 {
		if err := ctx.Err(); err != nil {
			return totalDeleted, err
		}

		limitThisBatch := min(batchSize, toDelete)
		result, err := s.db.ExecContext(ctx, `
			DELETE FROM metric_samples
			WHERE id IN (
				SELECT id FROM metric_samples
				ORDER BY id ASC
				LIMIT ?
			)
		`, limitThisBatch)
		if err != nil {
			return totalDeleted, fmt.Errorf("failed to execute delete: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return totalDeleted, fmt.Errorf("failed to get rows affected: %w", err)
		}

		totalDeleted += int(rowsAffected)
		toDelete -= int(rowsAffected)
		if rowsAffected < int64(limitThisBatch) {
			break
		}
	}
	return totalDeleted, nil
}

// GetMetricCounts returns sample and action counts for monitoring
func (s *SQLiteStorage) GetMetricCounts(ctx context.Context) (*MetricCounts, error) {
	counts := &MetricCounts{SamplesByStatus: make(map[string]int)}

	var oldest sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*), MIN(timestamp) FROM metric_samples").Scan(&counts.TotalSamples, &oldest)
	if err != nil {
		return nil, fmt.Errorf("failed to get total sample count: %w", err)
	}
	if oldest.Valid {
		ts, err := parseTime(oldest.String)
		if err != nil {
			return nil, err
		}
		counts.OldestSample = &ts
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM metric_samples
		GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples by status: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts.SamplesByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM action_records").Scan(&counts.TotalActions); err != nil {
		return nil, fmt.Errorf("failed to get action count: %w", err)
	}

	return counts, nil
}
