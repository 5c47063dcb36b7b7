package watchdog

import (
	"math"

	"github.com/Sazadakthar786/Software-failure-detection/internal/types"
)

// rewardDecayPerSecond is how fast the recovery reward shrinks with time
const rewardDecayPerSecond = 2.0

// Shape converts a validation outcome into a scalar reward: recoveries earn
// 10 minus 2 per elapsed second, floored at 2; failures always earn -10.
func Shape(o Outcome) float64 {
	if !o.Recovered {
		return types.FailedReward
	}
	elapsed := 0.0
	if o.Elapsed != nil {
		elapsed = o.Elapsed.Seconds()
	}
	return math.Max(types.MinRecoveredReward, types.MaxRecoveredReward-elapsed*rewardDecayPerSecond)
}

// ResultOf maps an outcome to its persisted result
func ResultOf(o Outcome) types.Result {
	if o.Recovered {
		return types.ResultRecovered
	}
	return types.ResultFailed
}
