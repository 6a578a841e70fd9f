// Computes the per-step reward as a sum of named negative components, and
// keeps them individually addressable for Info and the reward-decomposition
// invariant.
package sim

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// RewardComponents holds each named penalty for one step. Reward() sums
// them; CostPenalty is only non-zero when the cost variant is enabled via
// configuration (nil RewardCostCoef disables it, per the Open Question
// resolution in DESIGN.md).
type RewardComponents struct {
	WaitTimePenalty      float64
	UnutilizationPenalty float64
	QueuePenalty         float64
	InvalidActionPenalty float64
	CostPenalty          float64
	CostEnabled          bool
}

// Reward sums the active components. With the cost variant disabled this is
// exactly the four-component sum.
func (r RewardComponents) Reward() float64 {
	total := r.WaitTimePenalty + r.UnutilizationPenalty + r.QueuePenalty + r.InvalidActionPenalty
	if r.CostEnabled {
		total += r.CostPenalty
	}
	return total
}

// ComputeReward derives the step's reward components from the finished-wait
// times drained this step, the Running VM fleet's CPU loads, the broker's
// queue depths, and whether the applied action was invalid.
func ComputeReward(s SimulationSettings, finishedWaits []float64, runningVMs []*VM, notYetRunning, arrived int, invalidAction bool, allocatedCores int64) RewardComponents {
	var rc RewardComponents

	if len(finishedWaits) > 0 {
		rc.WaitTimePenalty = -s.RewardWaitTimeCoef * math.Log1p(stat.Mean(finishedWaits, nil))
	}

	if len(runningVMs) > 0 {
		loads := make([]float64, len(runningVMs))
		for i, vm := range runningVMs {
			loads[i] = vm.CpuLoad()
		}
		meanLoad, stddev := stat.MeanStdDev(loads, nil)
		if len(loads) == 1 {
			stddev = 0 // a single load has no spread; the sample formula would give NaN
		}
		rc.UnutilizationPenalty = -s.RewardUnutilizationCoef * (stddev + math.Abs(meanLoad-0.95))
	}

	if arrived > 0 {
		rc.QueuePenalty = -s.RewardQueuePenaltyCoef * (float64(notYetRunning) / float64(arrived))
	}

	if invalidAction {
		rc.InvalidActionPenalty = -s.RewardInvalidActionCoef
	}

	if s.RewardCostCoef != nil {
		rc.CostEnabled = true
		total := s.TotalHostCores()
		if total > 0 {
			rc.CostPenalty = -(*s.RewardCostCoef) * (float64(allocatedCores) / float64(total))
		}
	}

	return rc
}
