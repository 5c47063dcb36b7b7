package types

import (
	"fmt"
	"time"
)

// MetricSample is one classified reading of host resource usage.
// Samples are immutable once recorded.
type MetricSample struct {
	ID                int64       `json:"id"`
	Timestamp         time.Time   `json:"timestamp"`
	CPU               float64     `json:"cpu"`
	Memory            float64     `json:"memory"`
	Disk              *float64    `json:"disk,omitempty"`
	Status            Status      `json:"status"`
	FailureType       string      `json:"failure_type,omitempty"`
	AffectedComponent string      `json:"affected_component,omitempty"`
	SuggestedRemedy   string      `json:"suggested_remedy,omitempty"`
	Kind              FailureKind `json:"-"` // diagnostic only, not persisted
}

// Validate checks if the sample has valid field values
func (m *MetricSample) Validate() error {
	if err := validatePercent("cpu", m.CPU); err != nil {
		return err
	}
	if err := validatePercent("memory", m.Memory); err != nil {
		return err
	}
	if m.Disk != nil {
		if err := validatePercent("disk", *m.Disk); err != nil {
			return err
		}
	}
	if !m.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", m.Status)
	}
	return nil
}

// Stale reports whether the sample carries over an earlier reading because
// the metric source could not be read
func (m *MetricSample) Stale() bool {
	return m.Kind == FailureKindMetricUnavailable
}

func validatePercent(name string, v float64) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("%s must be between 0 and 100 (got %.3f)", name, v)
	}
	return nil
}

// Status is the health classification of a sample
type Status string

const (
	StatusHealthy Status = "Healthy"
	StatusFailed  Status = "Failed"
	// StatusUnknown is reported when classification itself failed.
	StatusUnknown Status = "Unknown"
)

// IsValid checks if the status value is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusHealthy, StatusFailed, StatusUnknown:
		return true
	}
	return false
}

// FailureKind enumerates why a reading or classification is degraded.
type FailureKind string

const (
	FailureKindNone FailureKind = ""
	// FailureKindMetricUnavailable means the metric source could not be read
	// and the reading was carried over from the last successful one.
	FailureKindMetricUnavailable FailureKind = "metric_unavailable"
	// FailureKindClassificationUnknown means detection or cause analysis failed.
	FailureKindClassificationUnknown FailureKind = "classification_unknown"
)

// Action is a remediation the policy can choose
type Action string

const (
	ActionRestart   Action = "restart"
	ActionScaleUp   Action = "scale_up"
	ActionRollback  Action = "rollback"
	ActionDoNothing Action = "do_nothing"
)

// Actions lists every action in policy index order.
var Actions = []Action{ActionRestart, ActionScaleUp, ActionRollback, ActionDoNothing}

// IsValid checks if the action value is valid
func (a Action) IsValid() bool {
	switch a {
	case ActionRestart, ActionScaleUp, ActionRollback, ActionDoNothing:
		return true
	}
	return false
}

// Index returns the position of the action in Actions, or -1.
func (a Action) Index() int {
	for i, candidate := range Actions {
		if candidate == a {
			return i
		}
	}
	return -1
}

// ActionAt returns the action at policy index i.
func ActionAt(i int) (Action, error) {
	if i < 0 || i >= len(Actions) {
		return "", fmt.Errorf("action index out of range: %d", i)
	}
	return Actions[i], nil
}

// Result is the validated outcome of a recovery cycle
type Result string

const (
	ResultRecovered Result = "recovered"
	ResultFailed    Result = "failed"
)

// IsValid checks if the result value is valid
func (r Result) IsValid() bool {
	switch r {
	case ResultRecovered, ResultFailed:
		return true
	}
	return false
}

// Reward bounds for recorded actions
const (
	MinRecoveredReward = 2.0
	MaxRecoveredReward = 10.0
	FailedReward       = -10.0
)

// ActionRecord is the single persisted outcome of one recovery cycle.
// Records are created exactly once and never updated.
type ActionRecord struct {
	ID           int64     `json:"id"`
	CycleID      string    `json:"cycle_id"`
	Timestamp    time.Time `json:"timestamp"`
	Action       Action    `json:"action"`
	Result       Result    `json:"result"`
	Reward       float64   `json:"reward"`
	RecoveryTime *float64  `json:"recovery_time"` // seconds, present iff recovered
}

// Validate checks the record against the action log invariants
func (a *ActionRecord) Validate() error {
	if !a.Action.IsValid() {
		return fmt.Errorf("invalid action: %s", a.Action)
	}
	if !a.Result.IsValid() {
		return fmt.Errorf("invalid result: %s", a.Result)
	}
	switch a.Result {
	case ResultRecovered:
		if a.RecoveryTime == nil {
			return fmt.Errorf("recovery_time is required for recovered actions")
		}
		if *a.RecoveryTime < 0 {
			return fmt.Errorf("recovery_time cannot be negative (got %.3f)", *a.RecoveryTime)
		}
		if a.Reward < MinRecoveredReward || a.Reward > MaxRecoveredReward {
			return fmt.Errorf("recovered reward must be between %.1f and %.1f (got %.3f)",
				MinRecoveredReward, MaxRecoveredReward, a.Reward)
		}
	case ResultFailed:
		if a.RecoveryTime != nil {
			return fmt.Errorf("recovery_time must be absent for failed actions")
		}
		if a.Reward != FailedReward {
			return fmt.Errorf("failed reward must be %.1f (got %.3f)", FailedReward, a.Reward)
		}
	}
	return nil
}

// Summary aggregates the action log
type Summary struct {
	TotalActions int      `json:"total_actions"`
	Successes    int      `json:"successes"`
	Failures     int      `json:"failures"`
	SuccessRate  *float64 `json:"success_rate"` // percent, absent when no actions
	AvgMTTR      *float64 `json:"avg_mttr"`     // seconds, absent when no recovery times
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 {
	return &v
}
