// Implements the simulation driver: Reset/Step/Close, the operations
// exposed to an external agent via configure/reset/step/close. Wires
// together engine construction, workload loading, and the step budget.
package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/cloudsim-rl/cloudsim-core/workload"
)

// Info is the per-step result record returned alongside reward and
// observation.
type Info struct {
	Clock int64

	Reward RewardComponents

	AssignmentSuccess  bool
	CreateAttempted    bool
	CreateSuccess      bool
	DestroyAttempted   bool
	DestroySuccess     bool
	InvalidActionTaken bool

	HostAffectedID int64
	CoresAdded     int64
	CoresRemoved   int64

	// AssignedThisStep counts cloudlets the broker bound to a VM for the
	// first time during this step (the change in Broker.SubmittedCount); a
	// cloudlet that was already bound once before, or that a VM's scheduler
	// pulls off its own waiting list, is not counted. FinishedThisStep
	// counts cloudlets that finished during this step, independent of
	// whether the step's own action caused them.
	AssignedThisStep int
	FinishedThisStep int

	// StepDurationTicks is the simulated time actually advanced this step
	// (Clock after RunUntil minus Clock before).
	StepDurationTicks int64

	Tree          []int64
	FinishedWaits []float64
}

// Driver owns one simulation run end to end: engine, datacenter, broker,
// and the episode step counter.
type Driver struct {
	settings SimulationSettings
	rng      *PartitionedRNG

	engine     *Engine
	maxHosts   int
	maxVmSlots int

	stepCount int64
	closed    bool
}

// NewDriver constructs an unconfigured Driver. Call Reset before Step.
func NewDriver(settings SimulationSettings) *Driver {
	return &Driver{settings: settings}
}

// Reset tears down any prior run and builds a fresh one from settings and
// seed: loads the workload, builds the datacenter and initial VM fleet,
// registers the keep-alive listener, and advances the clock by one
// min_time_between_events tick to let VM creation settle.
func (d *Driver) Reset(seed int64) (ObservationState, Info, error) {
	d.rng = NewPartitionedRNG(seed)
	d.stepCount = 0
	d.closed = false

	descriptors, err := workload.LoadFile(string(d.settings.WorkloadMode), d.settings.CloudletTraceFile,
		d.settings.MaxCloudletsToCreateFromWorkloadFile, d.settings.WorkloadReaderMips)
	if err != nil {
		return ObservationState{}, Info{}, fmt.Errorf("loading workload: %w", err)
	}
	if d.settings.SplitLargeCloudlets {
		descriptors = workload.SplitOversizeCloudlets(descriptors, d.settings.MaxCloudletPes)
	}
	cloudlets := descriptorsToCloudlets(descriptors)

	eng := NewEngine(d.settings.MinTimeBetweenEvents)
	eng.Datacenter = NewDatacenter(d.settings.HostsCount, d.settings.HostPes, d.settings.HostPeMips,
		d.settings.HostRAM, d.settings.HostBw, d.settings.HostStorage, NewDefaultPlacementPolicy())
	eng.Broker = NewBroker(eng)
	eng.Broker.LoadWorkload(cloudlets)

	d.engine = eng
	d.maxHosts = int(d.settings.HostsCount)
	d.maxVmSlots = int(d.settings.MaxPotentialVms())

	d.createInitialFleet()
	d.registerKeepAliveListener()
	d.startHostUtilizationSampling()

	eng.RunUntil(eng.Clock + d.settings.MinTimeBetweenEvents)
	eng.Broker.AdmitArrivals(eng.Clock)

	obs := BuildObservation(eng, d.maxHosts, d.maxVmSlots)
	info := Info{Clock: eng.Clock, Tree: obs.Tree}
	return obs, info, nil
}

// createInitialFleet requests the configured {S, M, L} VM counts at reset.
func (d *Driver) createInitialFleet() {
	base := d.settings.smallVmSpec()
	counts := []struct {
		vtype VmType
		n     int64
	}{
		{VmSmall, d.settings.InitialSVmCount},
		{VmMedium, d.settings.InitialMVmCount},
		{VmLarge, d.settings.InitialLVmCount},
	}
	for _, c := range counts {
		for i := int64(0); i < c.n; i++ {
			cores, ram, bw, storage := VmSizeSpec(base, c.vtype, d.settings.MediumVmMultiplier, d.settings.LargeVmMultiplier)
			id := d.engine.Datacenter.RequestVm(d.engine, c.vtype, cores, d.settings.HostPeMips, ram, bw, storage,
				d.settings.VmStartupDelay, d.settings.VmShutdownDelay, 0, false)
			d.engine.Broker.RegisterVm(id)
		}
	}
}

// registerKeepAliveListener injects a NoneEvent during the final stretch of
// an episode (future-event count == 1) so in-flight cloudlets still get a
// chance to finish.
func (d *Driver) registerKeepAliveListener() {
	d.engine.AddListener(func(e *Engine, ev Event) {
		if e.PendingEventCount() == 1 && e.Broker.HasUnfinishedWork() {
			e.Schedule(&NoneEvent{baseEvent: baseEvent{time: e.Clock + e.MinTimeBetweenEvents, id: e.nextID()}})
		}
	})
}

// startHostUtilizationSampling kicks off one self-rescheduling
// HostUpdateEvent per host, so Host.History gets a sample every
// MinTimeBetweenEvents tick for as long as there is unfinished work, not
// just on VM provision/release.
func (d *Driver) startHostUtilizationSampling() {
	e := d.engine
	for _, h := range e.Datacenter.Hosts() {
		e.Schedule(&HostUpdateEvent{baseEvent: baseEvent{time: e.Clock, id: e.nextID()}, HostID: h.ID})
	}
}

// Step applies action, advances the engine by one simulation_timestep, and
// returns the resulting observation, reward, termination flags, and info
//.
func (d *Driver) Step(action Action) (ObservationState, float64, bool, bool, Info) {
	e := d.engine
	submittedBefore := e.Broker.SubmittedCount()
	finishedBefore := e.Broker.FinishedCount()
	clockBefore := e.Clock

	e.Broker.AdmitArrivals(e.Clock)

	outcome := d.applyAction(action)

	target := e.Clock + d.settings.SimulationTimestep
	e.RunUntil(target)

	finishedWaits := e.Broker.DrainFinishedWaits()
	running := e.Datacenter.RunningVMs()
	notYetRunning := e.Broker.NotYetRunningCount()
	arrived := e.Broker.ArrivedCount()
	allocatedCores := e.Datacenter.TotalAllocatedCores()

	reward := ComputeReward(d.settings, finishedWaits, running, notYetRunning, arrived, outcome.InvalidAction, allocatedCores)

	obs := BuildObservation(e, d.maxHosts, d.maxVmSlots)
	info := Info{
		Clock:              e.Clock,
		Reward:             reward,
		AssignmentSuccess:  outcome.AssignmentSuccess,
		CreateAttempted:    outcome.CreateAttempted,
		CreateSuccess:      outcome.CreateSuccess,
		DestroyAttempted:   outcome.DestroyAttempted,
		DestroySuccess:     outcome.DestroySuccess,
		InvalidActionTaken: outcome.InvalidAction,
		HostAffectedID:     outcome.HostAffectedID,
		CoresAdded:         outcome.CoresAdded,
		CoresRemoved:       outcome.CoresRemoved,
		AssignedThisStep:   e.Broker.SubmittedCount() - submittedBefore,
		FinishedThisStep:   e.Broker.FinishedCount() - finishedBefore,
		StepDurationTicks:  e.Clock - clockBefore,
		Tree:               obs.Tree,
		FinishedWaits:      finishedWaits,
	}

	d.stepCount++
	terminated := !e.IsRunning()
	truncated := d.stepCount >= d.settings.MaxEpisodeLength

	return obs, reward.Reward(), terminated, truncated, info
}

// applyAction interprets one Action variant against the current broker and
// datacenter state.
func (d *Driver) applyAction(action Action) ActionOutcome {
	e := d.engine
	var outcome ActionOutcome

	switch a := action.(type) {
	case NoopAction:
		if e.Broker.WaitQueueLen() > 0 {
			outcome.InvalidAction = true
		}

	case AssignAction:
		_, dispatchErr := e.Broker.AssignNextToVM(e, a.TargetVmID)
		if dispatchErr == "" {
			outcome.AssignmentSuccess = true
		} else {
			outcome.InvalidAction = true
		}

	case CreateVmAction:
		outcome.CreateAttempted = true
		vtype, ok := VmTypeFromIndex(a.VmTypeIndex)
		if !ok {
			outcome.InvalidAction = true
			break
		}
		host := e.Datacenter.FindHost(a.TargetHostID)
		if host == nil {
			outcome.InvalidAction = true
			break
		}
		base := d.settings.smallVmSpec()
		cores, ram, bw, storage := VmSizeSpec(base, vtype, d.settings.MediumVmMultiplier, d.settings.LargeVmMultiplier)
		if err := host.CanHost(cores, ram, bw, storage); err != nil {
			outcome.InvalidAction = true
			break
		}
		id := e.Datacenter.RequestVm(e, vtype, cores, d.settings.HostPeMips, ram, bw, storage,
			d.settings.VmStartupDelay, d.settings.VmShutdownDelay, a.TargetHostID, true)
		e.Broker.RegisterVm(id)
		outcome.CreateSuccess = true
		outcome.HostAffectedID = a.TargetHostID
		outcome.CoresAdded = cores

	case DestroyAction:
		outcome.DestroyAttempted = true
		running := e.Datacenter.RunningVMs()
		if a.RunningIndex < 0 || a.RunningIndex >= len(running) {
			outcome.InvalidAction = true
			break
		}
		vm := running[a.RunningIndex]
		cores := vm.Cores
		hostID := vm.HostID
		if !e.Datacenter.DestroyVmNow(e, vm.ID) {
			outcome.InvalidAction = true
			break
		}
		e.Broker.UnregisterVm(vm.ID)
		outcome.DestroySuccess = true
		outcome.HostAffectedID = hostID
		outcome.CoresRemoved = cores

	default:
		logrus.Warnf("unknown action variant %T; treating as invalid no-op", action)
		outcome.InvalidAction = true
	}

	return outcome
}

// Close terminates the engine and releases the driver's resources. Safe to
// call multiple times.
func (d *Driver) Close() {
	if d.closed {
		return
	}
	d.closed = true
	d.engine = nil
}

// Clock returns the current simulated time, for diagnostics and tests.
func (d *Driver) Clock() int64 {
	if d.engine == nil {
		return 0
	}
	return d.engine.Clock
}

// RunningVMs exposes the current Running VM fleet to external drivers
// (baseline load balancers) without leaking the engine itself.
func (d *Driver) RunningVMs() []*VM {
	if d.engine == nil {
		return nil
	}
	return d.engine.Datacenter.RunningVMs()
}

// WaitQueueLen exposes the dispatch wait queue depth to external drivers.
func (d *Driver) WaitQueueLen() int {
	if d.engine == nil {
		return 0
	}
	return d.engine.Broker.WaitQueueLen()
}

// Settings returns the settings this driver was constructed with.
func (d *Driver) Settings() SimulationSettings { return d.settings }

// RNGFor exposes this run's seeded, per-subsystem RNG to external drivers
// (e.g. the random-assignment baseline), so their choices reproduce under
// a fixed seed the same way the core's own state does.
func (d *Driver) RNGFor(subsystem string) *rand.Rand {
	if d.rng == nil {
		d.rng = NewPartitionedRNG(0)
	}
	return d.rng.ForSubsystem(subsystem)
}

// AllCloudlets exposes the full loaded cloudlet set (any status) for
// result reporting by external drivers.
func (d *Driver) AllCloudlets() []*Cloudlet {
	if d.engine == nil {
		return nil
	}
	return d.engine.Broker.AllCloudlets()
}

// AllVMs exposes every VM the datacenter currently tracks (any state) for
// result reporting by external drivers.
func (d *Driver) AllVMs() []*VM {
	if d.engine == nil {
		return nil
	}
	return d.engine.Datacenter.AllVMs()
}

func descriptorsToCloudlets(descriptors []workload.CloudletDescriptor) []*Cloudlet {
	out := make([]*Cloudlet, 0, len(descriptors))
	for _, desc := range descriptors {
		out = append(out, NewCloudlet(desc.ID, desc.Cores, desc.LengthMI, desc.FileSizeIn, desc.FileSizeOut, desc.ArrivalTime))
	}
	return out
}
