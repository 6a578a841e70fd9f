package cmd

import "github.com/cloudsim-rl/cloudsim-core/sim"

// roundRobinPolicy assigns the wait queue's head to the next Running VM in
// rotation, wrapping modulo the current fleet size, grounded on
// RoundRobinLoadBalancer.java's roundRobinVmIndex cursor.
type roundRobinPolicy struct {
	cursor int
}

func (p *roundRobinPolicy) Next(d *sim.Driver, obs sim.ObservationState) sim.Action {
	if d.WaitQueueLen() == 0 {
		return sim.NoopAction{}
	}
	running := d.RunningVMs()
	if len(running) == 0 {
		return sim.NoopAction{}
	}
	p.cursor = (p.cursor + 1) % len(running)
	return sim.AssignAction{TargetVmID: running[p.cursor].ID}
}
