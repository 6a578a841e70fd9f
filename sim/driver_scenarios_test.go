package sim

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeScenarioTrace(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing scenario trace: %v", err)
	}
	return path
}

func scenarioSettings(t *testing.T, traceBody string) SimulationSettings {
	t.Helper()
	s := DefaultSimulationSettings()
	s.CloudletTraceFile = writeScenarioTrace(t, traceBody)
	s.HostsCount = 1
	s.HostPes = 16
	s.HostPeMips = 1000
	s.InitialSVmCount = 1
	s.InitialMVmCount = 0
	s.InitialLVmCount = 0
	s.SimulationTimestep = 1
	s.MinTimeBetweenEvents = 1
	s.MaxEpisodeLength = 1000
	return s
}

func TestScenarioS1_SingleCloudletSingleVm(t *testing.T) {
	s := scenarioSettings(t, "job_id,arrival_time,mi,allocated_cores\n1,0,10000,1\n")
	d := NewDriver(s)
	d.Reset(1)

	running := d.RunningVMs()
	if len(running) != 1 {
		t.Fatalf("expected 1 running VM after reset, got %d", len(running))
	}
	vmID := running[0].ID

	_, _, terminated, truncated, info := d.Step(AssignAction{TargetVmID: vmID})
	if !info.AssignmentSuccess {
		t.Fatal("step 1 assignment should succeed")
	}
	if d.WaitQueueLen() != 0 {
		t.Errorf("WaitQueueLen = %d, want 0", d.WaitQueueLen())
	}

	for i := 0; i < 50 && !terminated && !truncated; i++ {
		_, _, terminated, truncated, info = d.Step(NoopAction{})
	}
	if len(info.FinishedWaits) == 0 && !terminated {
		t.Log("cloudlet may still be finishing; loop bound may need raising for slower hosts")
	}
}

func TestScenarioS2_TwoCloudletsOneVmFIFOPreserved(t *testing.T) {
	s := scenarioSettings(t, "job_id,arrival_time,mi,allocated_cores\n1,0,5000,1\n2,0,5000,1\n")
	s.SmallVmPes = 1
	d := NewDriver(s)
	d.Reset(1)
	vmID := d.RunningVMs()[0].ID

	_, _, _, _, info1 := d.Step(AssignAction{TargetVmID: vmID})
	if !info1.AssignmentSuccess {
		t.Fatal("first assignment should succeed")
	}
	_, _, _, _, info2 := d.Step(AssignAction{TargetVmID: vmID})
	if !info2.AssignmentSuccess {
		t.Fatal("second assignment should succeed (queues behind the first on the VM scheduler)")
	}

	vm := d.engine.Datacenter.FindVm(vmID)
	if vm.Scheduler.Len() != 2 {
		t.Fatalf("scheduler should hold both cloudlets (one executing, one waiting), got %d", vm.Scheduler.Len())
	}
	if len(vm.Scheduler.executing) != 1 || len(vm.Scheduler.waiting) != 1 {
		t.Errorf("expected 1 executing + 1 waiting, got %d executing + %d waiting",
			len(vm.Scheduler.executing), len(vm.Scheduler.waiting))
	}
	if vm.Scheduler.waiting[0].ID != 2 {
		t.Errorf("FIFO order violated: waiting head id = %d, want 2", vm.Scheduler.waiting[0].ID)
	}
}

func TestScenarioS3_InvalidVmId(t *testing.T) {
	s := scenarioSettings(t, "job_id,arrival_time,mi,allocated_cores\n1,0,10000,1\n")
	d := NewDriver(s)
	d.Reset(1)

	before := d.WaitQueueLen()
	_, _, _, _, info := d.Step(AssignAction{TargetVmID: 99})

	if !info.InvalidActionTaken {
		t.Error("unknown target VM id should be flagged invalid")
	}
	if info.AssignmentSuccess {
		t.Error("assignment must not succeed against an unknown VM id")
	}
	if info.Reward.WaitTimePenalty != 0 {
		t.Error("no cloudlet has finished, so the wait-time penalty should be zero")
	}
	if info.Reward.QueuePenalty != -s.RewardQueuePenaltyCoef {
		t.Errorf("QueuePenalty = %v, want %v (the one arrived cloudlet is still waiting)", info.Reward.QueuePenalty, -s.RewardQueuePenaltyCoef)
	}
	if info.Reward.InvalidActionPenalty == 0 {
		t.Error("invalid-action penalty should be nonzero")
	}
	if d.WaitQueueLen() != before {
		t.Errorf("WaitQueueLen changed from %d to %d, want unchanged", before, d.WaitQueueLen())
	}
}

func TestScenarioS4_DestroyWithInFlightWork(t *testing.T) {
	s := scenarioSettings(t, "job_id,arrival_time,mi,allocated_cores\n1,0,10000,1\n")
	d := NewDriver(s)
	d.Reset(1)
	vmID := d.RunningVMs()[0].ID

	d.Step(AssignAction{TargetVmID: vmID})

	// Drive the clock forward until the cloudlet is roughly half finished
	// (host runs at 1000 MIPS/core, so half of 10000 MI takes 5 timesteps).
	var cloudlet *Cloudlet
	for _, c := range d.engine.Broker.allCloudlets {
		cloudlet = c
	}
	for cloudlet.FinishedLength < cloudlet.Length*0.5 {
		d.Step(NoopAction{})
	}
	originalLength := cloudlet.Length
	halfRemaining := cloudlet.RemainingLength()

	running := d.RunningVMs()
	if len(running) != 1 {
		t.Fatalf("expected exactly 1 running VM before destroy, got %d", len(running))
	}

	_, _, _, _, info := d.Step(DestroyAction{RunningIndex: 0})
	if !info.DestroySuccess {
		t.Fatal("destroy of the sole running VM should succeed")
	}
	if len(d.RunningVMs()) != 0 {
		t.Error("no VM should remain running after destroy")
	}
	if cloudlet.Status != Waiting {
		t.Errorf("re-queued cloudlet status = %v, want Waiting", cloudlet.Status)
	}
	if cloudlet.SubmissionDelay != 0 {
		t.Errorf("re-queued cloudlet submission_delay = %d, want 0", cloudlet.SubmissionDelay)
	}
	if math.Abs(cloudlet.RemainingLength()-halfRemaining) > 1e-6 {
		t.Errorf("remaining length changed by destroy: before=%v after=%v", halfRemaining, cloudlet.RemainingLength())
	}
	if cloudlet.Length != originalLength {
		t.Errorf("total Length must stay immutable across reschedule: before=%v after=%v", originalLength, cloudlet.Length)
	}
}

func TestScenarioS5_CreateThenAssignAfterStartupDelay(t *testing.T) {
	s := scenarioSettings(t, "job_id,arrival_time,mi,allocated_cores\n1,0,10000,1\n")
	s.InitialSVmCount = 0
	s.VmStartupDelay = 5
	d := NewDriver(s)
	d.Reset(1)

	if len(d.RunningVMs()) != 0 {
		t.Fatalf("expected 0 running VMs before any create action, got %d", len(d.RunningVMs()))
	}

	_, _, _, _, createInfo := d.Step(CreateVmAction{TargetHostID: 0, VmTypeIndex: 0})
	if !createInfo.CreateSuccess {
		t.Fatal("create on host 0 should succeed")
	}

	var assignInfo Info
	var succeeded bool
	for i := 0; i < int(s.VmStartupDelay)+5; i++ {
		running := d.RunningVMs()
		if len(running) == 1 {
			_, _, _, _, assignInfo = d.Step(AssignAction{TargetVmID: running[0].ID})
			succeeded = assignInfo.AssignmentSuccess
			break
		}
		d.Step(NoopAction{})
	}
	if !succeeded {
		t.Error("assign should succeed once the created VM clears its startup delay and reaches Running")
	}
}

func TestScenarioS6_SplitterProducesProportionalPieces(t *testing.T) {
	s := scenarioSettings(t, "job_id,arrival_time,mi,allocated_cores\n1,0,12000,12\n")
	s.SplitLargeCloudlets = true
	s.MaxCloudletPes = 8
	d := NewDriver(s)
	d.Reset(1)

	var cores []int64
	var lengths []float64
	for _, c := range d.engine.Broker.allCloudlets {
		cores = append(cores, c.RequiredCores)
		lengths = append(lengths, c.Length)
	}
	if len(cores) != 2 {
		t.Fatalf("expected the 12-core cloudlet to split into 2 pieces, got %d", len(cores))
	}

	var coreSet = map[int64]float64{}
	for i, c := range cores {
		coreSet[c] = lengths[i]
	}
	if _, ok := coreSet[8]; !ok {
		t.Error("expected one piece with 8 cores")
	}
	if _, ok := coreSet[4]; !ok {
		t.Error("expected one piece with 4 cores")
	}
	// miPerOriginalPe = 12000/12 = 1000; piece lengths proportional to cores.
	if math.Abs(coreSet[8]-8000) > 1 {
		t.Errorf("8-core piece length = %v, want ~8000 (+/- 1 MI)", coreSet[8])
	}
	if math.Abs(coreSet[4]-4000) > 1 {
		t.Errorf("4-core piece length = %v, want ~4000 (+/- 1 MI)", coreSet[4])
	}
}
