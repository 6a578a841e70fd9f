package sim

import "github.com/sirupsen/logrus"

// EventType tags an Event for priority-ordered dispatch. Entities register
// interest by tag rather than via a runtime-reflective listener chain.
type EventType string

const (
	EventCloudletSubmit EventType = "CloudletSubmit"
	EventCloudletFinish EventType = "CloudletFinish"
	EventVmCreate       EventType = "VmCreate"
	EventVmStarted      EventType = "VmStarted"
	EventVmDestroy      EventType = "VmDestroy"
	EventHostUpdate     EventType = "HostUpdate"
	EventNone           EventType = "None"
)

// EventTypePriority orders events that land on the same timestamp. Lower
// values execute first. Cloudlet arrival admission is performed directly
// by Broker.AdmitArrivals at the start of each driver step (before
// RunUntil runs any events), so it needs no event-queue priority slot of
// its own; VM startup completion sorts ahead of submissions so a VM that
// finishes starting this tick can immediately receive work.
var EventTypePriority = map[EventType]int{
	EventVmStarted:      1,
	EventCloudletSubmit: 2,
	EventCloudletFinish: 3,
	EventVmCreate:       4,
	EventVmDestroy:      5,
	EventHostUpdate:     6,
	EventNone:           7,
}

// Event is the interface implemented by every simulation event.
type Event interface {
	Timestamp() int64
	Type() EventType
	// EventID is a per-engine monotonic sequence number, used only to
	// break timestamp+type ties deterministically (insertion order).
	EventID() uint64
	Execute(e *Engine)
}

type baseEvent struct {
	time int64
	id   uint64
}

func (b baseEvent) Timestamp() int64 { return b.time }
func (b baseEvent) EventID() uint64  { return b.id }

// CloudletSubmitEvent represents a cloudlet handed to a VM's scheduler for
// execution. Emitted by Broker.AssignNextToVM with the cloudlet's recomputed
// submission delay as the event's scheduling delay.
type CloudletSubmitEvent struct {
	baseEvent
	CloudletID int64
	VmID       int64
}

func (e *CloudletSubmitEvent) Type() EventType { return EventCloudletSubmit }
func (e *CloudletSubmitEvent) Execute(eng *Engine) {
	vm := eng.Datacenter.FindVm(e.VmID)
	cl := eng.Broker.findCloudlet(e.CloudletID)
	if vm == nil || cl == nil {
		logrus.Warnf("[tick %d] submit dropped: vm=%v cloudlet=%v missing", e.time, e.VmID, e.CloudletID)
		return
	}
	if vm.State != VmRunning {
		// VM not yet created when the submission arrives: bounce the
		// cloudlet back to the broker rather than lose it.
		cl.Status = Waiting
		cl.BoundVmID = 0
		eng.Broker.resubmit(cl, e.time)
		return
	}
	vm.Scheduler.Submit(cl, e.time)
}

// CloudletFinishEvent is raised by a VM's scheduler when a cloudlet's
// remaining length has been fully executed.
type CloudletFinishEvent struct {
	baseEvent
	CloudletID int64
	VmID       int64
}

func (e *CloudletFinishEvent) Type() EventType { return EventCloudletFinish }
func (e *CloudletFinishEvent) Execute(eng *Engine) {
	eng.Broker.onCloudletFinished(e.CloudletID, e.time)
}

// VmCreateEvent places a newly requested VM on a host via the placement
// policy and begins its startup delay.
type VmCreateEvent struct {
	baseEvent
	VmID int64
}

func (e *VmCreateEvent) Type() EventType { return EventVmCreate }
func (e *VmCreateEvent) Execute(eng *Engine) {
	eng.Datacenter.createVm(e.VmID, eng)
}

// VmStartedEvent transitions a VM from Starting to Running once its
// startup delay has elapsed.
type VmStartedEvent struct {
	baseEvent
	VmID int64
}

func (e *VmStartedEvent) Type() EventType { return EventVmStarted }
func (e *VmStartedEvent) Execute(eng *Engine) {
	vm := eng.Datacenter.FindVm(e.VmID)
	if vm == nil {
		return
	}
	vm.State = VmRunning
	logrus.Debugf("[tick %d] vm %d running on host %d", e.time, vm.ID, vm.HostID)
}

// VmDestroyEvent tears a VM down: its host resources are released and any
// in-flight/waiting cloudlets are harvested by the broker for rescheduling.
type VmDestroyEvent struct {
	baseEvent
	VmID int64
}

func (e *VmDestroyEvent) Type() EventType { return EventVmDestroy }
func (e *VmDestroyEvent) Execute(eng *Engine) {
	eng.Datacenter.destroyVm(e.VmID, e.time, eng.Broker)
}

// HostUpdateEvent periodically advances the executing cloudlets of every VM
// on its host and samples the host's utilization into its state history,
// then reschedules itself one MinTimeBetweenEvents tick later as
// long as the broker has unfinished work — otherwise Host.History would
// only ever gain a sample when a VM is provisioned or released on that
// host, missing long stretches where a host sits at a steady load. Started
// once per host by Driver.Reset.
type HostUpdateEvent struct {
	baseEvent
	HostID int64
}

func (e *HostUpdateEvent) Type() EventType { return EventHostUpdate }
func (e *HostUpdateEvent) Execute(eng *Engine) {
	h := eng.Datacenter.FindHost(e.HostID)
	if h == nil {
		return
	}
	for _, id := range h.vms {
		if vm := eng.Datacenter.FindVm(id); vm != nil {
			vm.Scheduler.advance(e.time)
		}
	}
	h.sampleState(e.time)
	if eng.Broker != nil && eng.Broker.HasUnfinishedWork() {
		eng.Schedule(&HostUpdateEvent{
			baseEvent: baseEvent{time: e.time + eng.MinTimeBetweenEvents, id: eng.nextID()},
			HostID:    e.HostID,
		})
	}
}

// NoneEvent is a keep-alive event with no side effect beyond advancing the
// clock. Injected by the driver during the final stretch of an episode
// (future-event count == 1) so in-flight cloudlets get a chance to finish.
type NoneEvent struct {
	baseEvent
}

func (e *NoneEvent) Type() EventType  { return EventNone }
func (e *NoneEvent) Execute(_ *Engine) {}
