package cmd

import "github.com/cloudsim-rl/cloudsim-core/sim"

// horizontalScalingPolicy assigns round-robin among Running VMs with a free
// core, but when no Running VM has a free core it requests a new Small VM
// instead of assigning (scaling the fleet up); with scale-up off it assigns
// to the first Running VM. Two independent
// implementations in the original gateway differed on this exact point; we
// parameterize it rather than guess, defaulting
// ScaleUpOnUnsuitable to true.
type horizontalScalingPolicy struct {
	ScaleUpOnUnsuitable bool
	cursor              int
	nextHost            int64
}

func (p *horizontalScalingPolicy) Next(d *sim.Driver, obs sim.ObservationState) sim.Action {
	if d.WaitQueueLen() == 0 {
		return sim.NoopAction{}
	}
	running := d.RunningVMs()

	for i := 0; i < len(running); i++ {
		p.cursor = (p.cursor + 1) % len(running)
		vm := running[p.cursor]
		if vm.Cores-vm.Scheduler.ExecutingCoreCount() > 0 {
			return sim.AssignAction{TargetVmID: vm.ID}
		}
	}

	if p.ScaleUpOnUnsuitable {
		hostCount := d.Settings().HostsCount
		if hostCount == 0 {
			hostCount = 1
		}
		host := p.nextHost % hostCount
		p.nextHost++
		return sim.CreateVmAction{TargetHostID: host, VmTypeIndex: 0}
	}

	if len(running) == 0 {
		return sim.NoopAction{}
	}
	return sim.AssignAction{TargetVmID: running[0].ID}
}
