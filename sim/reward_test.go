package sim

import (
	"math"
	"testing"
)

func TestRewardComponents_Reward_SumsFourComponentsByDefault(t *testing.T) {
	rc := RewardComponents{
		WaitTimePenalty:      -1,
		UnutilizationPenalty: -2,
		QueuePenalty:         -3,
		InvalidActionPenalty: -4,
		CostPenalty:          -100, // must not count: CostEnabled is false
	}
	if got := rc.Reward(); got != -10 {
		t.Errorf("Reward = %v, want -10 (cost disabled)", got)
	}
}

func TestRewardComponents_Reward_IncludesCostWhenEnabled(t *testing.T) {
	rc := RewardComponents{WaitTimePenalty: -1, CostPenalty: -5, CostEnabled: true}
	if got := rc.Reward(); got != -6 {
		t.Errorf("Reward = %v, want -6", got)
	}
}

func TestComputeReward_WaitTimePenalty_ZeroWhenNoneFinished(t *testing.T) {
	s := DefaultSimulationSettings()
	rc := ComputeReward(s, nil, nil, 0, 0, false, 0)
	if rc.WaitTimePenalty != 0 {
		t.Errorf("WaitTimePenalty = %v, want 0 with no finished waits", rc.WaitTimePenalty)
	}
}

func TestComputeReward_WaitTimePenalty_IsNegativeLog1pOfMean(t *testing.T) {
	s := DefaultSimulationSettings()
	s.RewardWaitTimeCoef = 1.0
	rc := ComputeReward(s, []float64{10, 20}, nil, 0, 0, false, 0)

	want := -math.Log1p(15)
	if math.Abs(rc.WaitTimePenalty-want) > 1e-9 {
		t.Errorf("WaitTimePenalty = %v, want %v", rc.WaitTimePenalty, want)
	}
}

func TestComputeReward_QueuePenalty_ZeroWithNoArrivals(t *testing.T) {
	s := DefaultSimulationSettings()
	rc := ComputeReward(s, nil, nil, 5, 0, false, 0)
	if rc.QueuePenalty != 0 {
		t.Errorf("QueuePenalty = %v, want 0 when arrived_count is 0", rc.QueuePenalty)
	}
}

func TestComputeReward_InvalidActionPenalty_OnlyWhenFlagged(t *testing.T) {
	s := DefaultSimulationSettings()
	s.RewardInvalidActionCoef = 2.5

	invalid := ComputeReward(s, nil, nil, 0, 0, true, 0)
	valid := ComputeReward(s, nil, nil, 0, 0, false, 0)

	if invalid.InvalidActionPenalty != -2.5 {
		t.Errorf("InvalidActionPenalty = %v, want -2.5", invalid.InvalidActionPenalty)
	}
	if valid.InvalidActionPenalty != 0 {
		t.Errorf("InvalidActionPenalty for a valid action = %v, want 0", valid.InvalidActionPenalty)
	}
}

func TestComputeReward_CostPenalty_DisabledByDefaultNilCoef(t *testing.T) {
	s := DefaultSimulationSettings()
	rc := ComputeReward(s, nil, nil, 0, 0, false, 10)
	if rc.CostEnabled {
		t.Error("cost component should be disabled when RewardCostCoef is nil")
	}
}

func TestComputeReward_CostPenalty_EnabledWhenCoefProvided(t *testing.T) {
	s := DefaultSimulationSettings()
	coef := 1.0
	s.RewardCostCoef = &coef
	s.HostsCount = 1
	s.HostPes = 10

	rc := ComputeReward(s, nil, nil, 0, 0, false, 5)

	if !rc.CostEnabled {
		t.Fatal("cost component should be enabled when RewardCostCoef is set")
	}
	if rc.CostPenalty != -0.5 {
		t.Errorf("CostPenalty = %v, want -0.5 (5/10 allocated cores)", rc.CostPenalty)
	}
}

func TestReward_DecompositionInvariant_RewardEqualsSumOfInfoComponents(t *testing.T) {
	// Reward() must always equal the sum of its own components.
	s := DefaultSimulationSettings()
	rc := ComputeReward(s, []float64{5}, nil, 1, 2, true, 0)
	sum := rc.WaitTimePenalty + rc.UnutilizationPenalty + rc.QueuePenalty + rc.InvalidActionPenalty
	if math.Abs(rc.Reward()-sum) > 1e-9 {
		t.Errorf("Reward() = %v, want sum of components %v", rc.Reward(), sum)
	}
}
