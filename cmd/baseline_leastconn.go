package cmd

import "github.com/cloudsim-rl/cloudsim-core/sim"

// leastConnectionsPolicy assigns the wait queue's head to the Running VM
// with the fewest cloudlets currently held by its scheduler (executing +
// waiting), grounded on LeastConnectionsLoadBalancer.java's
// active-connections scan.
type leastConnectionsPolicy struct{}

func (leastConnectionsPolicy) Next(d *sim.Driver, obs sim.ObservationState) sim.Action {
	if d.WaitQueueLen() == 0 {
		return sim.NoopAction{}
	}
	running := d.RunningVMs()
	if len(running) == 0 {
		return sim.NoopAction{}
	}
	best := running[0]
	bestLen := best.Scheduler.Len()
	for _, vm := range running[1:] {
		if l := vm.Scheduler.Len(); l < bestLen {
			best, bestLen = vm, l
		}
	}
	return sim.AssignAction{TargetVmID: best.ID}
}
