package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
)

// AppendAction inserts an action record and sets its ID.
// Records that violate the reward or recovery time invariants are rejected.
func (s *SQLiteStorage) AppendAction(ctx context.Context, record *types.ActionRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid action record: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO action_records (cycle_id, timestamp, action, result, reward, recovery_time)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		record.CycleID,
		formatTime(record.Timestamp),
		string(record.Action),
		string(record.Result),
		record.Reward,
		nullFloat(record.RecoveryTime),
	)
	if err != nil {
		return fmt.Errorf("failed to insert action record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get action record ID: %w", err)
	}
	record.ID = id
	return nil
}

// RecentActions returns up to limit of the newest action records, oldest first
func (s *SQLiteStorage) RecentActions(ctx context.Context, limit int) ([]*types.ActionRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cycle_id, timestamp, action, result, reward, recovery_time FROM (
			SELECT * FROM action_records ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query action records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*types.ActionRecord
	for rows.Next() {
		var (
			record                    types.ActionRecord
			timestamp, action, result string
			recoveryTime              sql.NullFloat64
		)
		if err := rows.Scan(&record.ID, &record.CycleID, &timestamp, &action, &result, &record.Reward, &recoveryTime); err != nil {
			return nil, fmt.Errorf("failed to scan action record: %w", err)
		}
		ts, err := parseTime(timestamp)
		if err != nil {
			return nil, err
		}
		record.Timestamp = ts
		record.Action = types.Action(action)
		record.Result = types.Result(result)
		record.RecoveryTime = floatPtr(recoveryTime)
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating action records: %w", err)
	}
	return records, nil
}

// CountActionsByResult counts action records with the given result
func (s *SQLiteStorage) CountActionsByResult(ctx context.Context, result types.Result) (int, error) {
	if !result.IsValid() {
		return 0, fmt.Errorf("invalid result %q", result)
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM action_records WHERE result = ?`, string(result)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count action records: %w", err)
	}
	return count, nil
}

// GetSummary aggregates all action records
func (s *SQLiteStorage) GetSummary(ctx context.Context) (*types.Summary, error) {
	var (
		summary   types.Summary
		recovered int
		avgMTTR   sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN result = 'recovered' THEN 1 ELSE 0 END), 0),
			AVG(recovery_time)
		FROM action_records
	`).Scan(&summary.TotalActions, &recovered, &avgMTTR)
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	summary.Successes = recovered
	summary.Failures = summary.TotalActions - recovered
	if summary.TotalActions > 0 {
		summary.SuccessRate = types.Float64(float64(recovered) / float64(summary.TotalActions) * 100)
	}
	summary.AvgMTTR = floatPtr(avgMTTR)
	return &summary, nil
}
