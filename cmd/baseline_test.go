package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudsim-rl/cloudsim-core/sim"
)

func newBaselineDriver(t *testing.T, initialVms int64) *sim.Driver {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.csv")
	body := "job_id,arrival_time,mi,allocated_cores\n1,0,5000,1\n2,0,5000,1\n3,0,5000,1\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing trace fixture: %v", err)
	}

	s := sim.DefaultSimulationSettings()
	s.CloudletTraceFile = path
	s.HostsCount = 2
	s.HostPes = 4
	s.InitialSVmCount = initialVms
	s.InitialMVmCount = 0
	s.InitialLVmCount = 0

	d := sim.NewDriver(s)
	if _, _, err := d.Reset(1); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	return d
}

func TestRandomPolicy_NoopWhenQueueEmpty(t *testing.T) {
	d := newBaselineDriver(t, 1)
	for d.WaitQueueLen() > 0 {
		d.Step(sim.AssignAction{TargetVmID: d.RunningVMs()[0].ID})
	}
	action := randomPolicy{}.Next(d, sim.ObservationState{})
	if _, ok := action.(sim.NoopAction); !ok {
		t.Errorf("action = %T, want NoopAction once the wait queue is empty", action)
	}
}

func TestRandomPolicy_AssignsToARunningVmWhenQueueNonEmpty(t *testing.T) {
	d := newBaselineDriver(t, 1)
	if d.WaitQueueLen() == 0 {
		t.Skip("nothing queued to assign in this fixture")
	}
	action := randomPolicy{}.Next(d, sim.ObservationState{})
	a, ok := action.(sim.AssignAction)
	if !ok {
		t.Fatalf("action = %T, want AssignAction", action)
	}
	found := false
	for _, vm := range d.RunningVMs() {
		if vm.ID == a.TargetVmID {
			found = true
		}
	}
	if !found {
		t.Error("AssignAction target must be one of the current running VMs")
	}
}

func TestRoundRobinPolicy_CyclesThroughRunningVMs(t *testing.T) {
	d := newBaselineDriver(t, 2)
	if d.WaitQueueLen() < 2 {
		t.Skip("need at least 2 queued cloudlets to observe rotation")
	}
	p := &roundRobinPolicy{}
	a1 := p.Next(d, sim.ObservationState{}).(sim.AssignAction)
	a2 := p.Next(d, sim.ObservationState{}).(sim.AssignAction)
	if a1.TargetVmID == a2.TargetVmID {
		t.Error("round robin should not target the same VM twice in a row with 2+ running VMs")
	}
}

func TestLeastConnectionsPolicy_PrefersIdlerVM(t *testing.T) {
	d := newBaselineDriver(t, 2)
	running := d.RunningVMs()
	if len(running) < 2 {
		t.Skip("need 2 running VMs for this test")
	}
	// Bind a cloudlet to the first VM so it is no longer idle.
	d.Step(sim.AssignAction{TargetVmID: running[0].ID})

	action := leastConnectionsPolicy{}.Next(d, sim.ObservationState{})
	a, ok := action.(sim.AssignAction)
	if !ok {
		t.Skip("nothing left queued to assign")
	}
	if a.TargetVmID == running[0].ID {
		t.Error("least-connections should prefer the VM with fewer cloudlets, not the one just assigned")
	}
}

func TestHorizontalScalingPolicy_ScalesUpWhenNoFreeCoreVmExists(t *testing.T) {
	d := newBaselineDriver(t, 1)
	running := d.RunningVMs()
	if len(running) == 0 {
		t.Skip("no running VM to saturate")
	}
	// Saturate the only VM's cores by assigning every queued cloudlet to it.
	for d.WaitQueueLen() > 0 {
		_, _, _, _, info := d.Step(sim.AssignAction{TargetVmID: running[0].ID})
		if !info.AssignmentSuccess {
			break
		}
	}

	p := &horizontalScalingPolicy{ScaleUpOnUnsuitable: true}
	action := p.Next(d, sim.ObservationState{})
	if d.WaitQueueLen() == 0 {
		t.Skip("queue drained before scale-up could be observed")
	}
	if _, ok := action.(sim.CreateVmAction); !ok {
		t.Errorf("action = %T, want CreateVmAction once every running VM is saturated", action)
	}
}

func TestHorizontalScalingPolicy_FallsBackToAssignWhenScaleUpDisabled(t *testing.T) {
	d := newBaselineDriver(t, 1)
	running := d.RunningVMs()
	if len(running) == 0 {
		t.Skip("no running VM available")
	}

	p := &horizontalScalingPolicy{ScaleUpOnUnsuitable: false}
	action := p.Next(d, sim.ObservationState{})
	if d.WaitQueueLen() == 0 {
		t.Skip("nothing queued")
	}
	if _, ok := action.(sim.AssignAction); !ok {
		t.Errorf("action = %T, want AssignAction when ScaleUpOnUnsuitable is false", action)
	}
}
