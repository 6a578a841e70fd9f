package cmd

import (
	"github.com/cloudsim-rl/cloudsim-core/sim"
)

// baselinePolicy decides one action per step given the driver's current
// state. Grounded on the per-policy main loops in the original Java
// gateway's loadbalancers package, each reduced to "pick a target VM for
// the wait queue's head."
type baselinePolicy interface {
	Next(d *sim.Driver, obs sim.ObservationState) sim.Action
}

var baselinePolicies = map[string]baselinePolicy{
	"random":     randomPolicy{},
	"roundrobin": &roundRobinPolicy{},
	"leastconn":  leastConnectionsPolicy{},
	"horizontal": &horizontalScalingPolicy{ScaleUpOnUnsuitable: true},
}

// randomPolicy assigns the wait queue's head to a uniformly random Running
// VM, grounded on RandomLoadBalancer.java's UniformDistr-over-VM-index
// scheme.
type randomPolicy struct{}

func (randomPolicy) Next(d *sim.Driver, obs sim.ObservationState) sim.Action {
	if d.WaitQueueLen() == 0 {
		return sim.NoopAction{}
	}
	running := d.RunningVMs()
	if len(running) == 0 {
		return sim.NoopAction{}
	}
	rng := d.RNGFor(sim.SubsystemBaselineRandom)
	vm := running[rng.Intn(len(running))]
	return sim.AssignAction{TargetVmID: vm.ID}
}
