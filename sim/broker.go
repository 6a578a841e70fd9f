// Implements the Broker: owns the future-arrival queue and the dispatch
// wait queue, exposes agent-facing dispatch operations, and reschedules
// cloudlets harvested from a destroyed VM. Follows the same
// arrival/route/complete event-handler decomposition used for routing
// requests to instances, generalized to "dispatch cloudlet to VM."
package sim

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// DispatchError enumerates why Broker.AssignNextToVM could not bind the
// head of the wait queue to a VM.
type DispatchError string

const (
	ErrEmptyQueue       DispatchError = "EmptyQueue"
	ErrUnknownVm        DispatchError = "UnknownVm"
	ErrVmNotRunning     DispatchError = "VmNotRunning"
	ErrUnsuitable       DispatchError = "Unsuitable"
	ErrDispatchDisabled DispatchError = "DispatchDisabled"
)

func (e DispatchError) Error() string { return string(e) }

// futureArrival is one entry in the broker's future-arrival priority
// queue: a cloudlet not yet admitted to the wait queue.
type futureArrival struct {
	cloudlet    *Cloudlet
	arrivalTime int64
}

// Broker holds the wait queue and future-arrival queue, and the
// created/submitted/finished tracking lists for the VM fleet.
type Broker struct {
	engine *Engine

	future []*futureArrival // kept sorted by arrivalTime, FIFO within a tick
	wait   []*Cloudlet      // FIFO dispatch wait queue

	allCloudlets map[int64]*Cloudlet
	createdVms   map[int64]bool
	submitted    map[int64]bool
	finished     map[int64]bool

	arrivalMap map[int64]int64 // cloudlet id -> original arrival time, set once

	finishedWaitBuffer []float64 // wait times of cloudlets finished this step, drained by the driver
}

// NewBroker constructs an empty Broker bound to engine.
func NewBroker(engine *Engine) *Broker {
	return &Broker{
		engine:       engine,
		allCloudlets: make(map[int64]*Cloudlet),
		createdVms:   make(map[int64]bool),
		submitted:    make(map[int64]bool),
		finished:     make(map[int64]bool),
		arrivalMap:   make(map[int64]int64),
	}
}

// LoadWorkload seeds the broker's future-arrival queue with the given
// cloudlets. Called once at Reset. Admission into the wait queue happens
// later, via AdmitArrivals, once the driver's clock reaches each
// cloudlet's arrival time.
func (b *Broker) LoadWorkload(cloudlets []*Cloudlet) {
	for _, c := range cloudlets {
		b.allCloudlets[c.ID] = c
		b.arrivalMap[c.ID] = c.ArrivalTime
		b.future = append(b.future, &futureArrival{cloudlet: c, arrivalTime: c.ArrivalTime})
	}
	sort.SliceStable(b.future, func(i, j int) bool { return b.future[i].arrivalTime < b.future[j].arrivalTime })
}

// RegisterVm records a newly created VM id so the broker can validate
// dispatch targets (UnknownVm).
func (b *Broker) RegisterVm(id int64) { b.createdVms[id] = true }

// UnregisterVm removes a destroyed VM id from the broker's created list.
func (b *Broker) UnregisterVm(id int64) { delete(b.createdVms, id) }

// AdmitArrivals moves every cloudlet whose arrival time <= now from the
// future-arrival queue into the wait queue, in arrival-time order. Called
// by the driver at the start of each step, before any dispatch action is
// applied (ordering guarantee: admission precedes dispatch within a step).
func (b *Broker) AdmitArrivals(now int64) {
	var remaining []*futureArrival
	for _, fa := range b.future {
		if fa.arrivalTime <= now {
			b.wait = append(b.wait, fa.cloudlet)
		} else {
			remaining = append(remaining, fa)
		}
	}
	b.future = remaining
}

// WaitQueueLen returns the number of cloudlets currently in the dispatch
// wait queue.
func (b *Broker) WaitQueueLen() int { return len(b.wait) }

// PeekWait returns the head of the wait queue without removing it, or nil
// if empty. Used by the observation builder for next-cloudlet core demand.
func (b *Broker) PeekWait() *Cloudlet {
	if len(b.wait) == 0 {
		return nil
	}
	return b.wait[0]
}

// ArrivedCount returns the number of cloudlets that have arrived (wait
// queue + in-flight + finished), used by the queue-penalty reward term.
func (b *Broker) ArrivedCount() int {
	return len(b.allCloudlets) - len(b.future)
}

// NotYetRunningCount returns cloudlets that have arrived but are not yet
// InExec on any VM (wait queue only; a cloudlet mid-reschedule after a VM
// destruction is back in the future-arrival queue and so does not count as
// "arrived" until re-admitted).
func (b *Broker) NotYetRunningCount() int { return len(b.wait) }

// findCloudlet looks up any cloudlet by id regardless of which collection
// currently holds it.
func (b *Broker) findCloudlet(id int64) *Cloudlet { return b.allCloudlets[id] }

// AssignNextToVM removes the head of the wait queue and attempts to bind
// it to vmID.
func (b *Broker) AssignNextToVM(e *Engine, vmID int64) (*Cloudlet, DispatchError) {
	if len(b.wait) == 0 {
		return nil, ErrEmptyQueue
	}
	if !b.createdVms[vmID] {
		return nil, ErrUnknownVm
	}
	vm := e.Datacenter.FindVm(vmID)
	if vm == nil {
		return nil, ErrUnknownVm
	}
	if vm.State != VmRunning {
		return nil, ErrVmNotRunning
	}

	head := b.wait[0]
	if err := vm.canAcceptCloudlet(head); err != nil {
		// Re-queue at the head: the cloudlet is unsuitable for this VM,
		// but dispatch leaves the queue otherwise untouched.
		return nil, ErrUnsuitable
	}

	b.wait = b.wait[1:]
	now := e.Clock
	head.SubmissionDelay = max64(0, head.ArrivalTime-now)
	head.BoundVmID = vmID
	b.submitted[head.ID] = true

	e.Schedule(&CloudletSubmitEvent{
		baseEvent:  baseEvent{time: now + head.SubmissionDelay, id: e.nextID()},
		CloudletID: head.ID,
		VmID:       vmID,
	})
	return head, ""
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// canAcceptCloudlet reports whether vm has enough cores and storage for c.
// Storage is checked against the VM's own capacity (a cloudlet's file
// sizes must fit within the VM it runs on), cores against the VM's total
// core count (not just currently-free cores: an oversize cloudlet can
// never run on this VM, while one that merely exceeds currently-free cores
// still queues on the VM's own scheduler rather than being rejected here).
func (vm *VM) canAcceptCloudlet(c *Cloudlet) error {
	if c.RequiredCores > vm.Cores {
		return &NotSuitableError{Reason: "cloudlet requires more cores than vm has"}
	}
	if c.FileSizeIn+c.FileSizeOut > vm.Storage {
		return &NotSuitableError{Reason: "cloudlet file size exceeds vm storage"}
	}
	return nil
}

// resubmit re-queues a cloudlet at the head of the wait queue. Used when a
// CloudletSubmitEvent finds its target VM not yet Created/Running.
func (b *Broker) resubmit(c *Cloudlet, now int64) {
	b.wait = append([]*Cloudlet{c}, b.wait...)
}

// onCloudletFinished is invoked by CloudletFinishEvent. It delegates to the
// owning VM's scheduler to remove the cloudlet from the executing list and
// pull the next waiting one, then records the cloudlet's wait time.
func (b *Broker) onCloudletFinished(cloudletID int64, now int64) {
	c := b.allCloudlets[cloudletID]
	if c == nil {
		return
	}
	vm := b.engine.Datacenter.FindVm(c.BoundVmID)
	if vm == nil {
		return
	}
	finished := vm.Scheduler.Finish(cloudletID, now)
	if finished == nil {
		return
	}
	b.finished[cloudletID] = true
	waitTime := float64(finished.ExecStartTime - finished.ArrivalTime)
	if waitTime < 0 {
		waitTime = 0
	}
	b.finishedWaitBuffer = append(b.finishedWaitBuffer, waitTime)
}

// DrainFinishedWaits returns and clears the per-step finished-wait buffer.
// Called once per step by the driver, after time advancement, so the
// buffer always reflects exactly the cloudlets that finished during the
// step just completed.
func (b *Broker) DrainFinishedWaits() []float64 {
	out := b.finishedWaitBuffer
	b.finishedWaitBuffer = nil
	return out
}

// rescheduleFromDestroyedVm resets each harvested cloudlet (status, VM
// binding, remaining length, submission delay) and places it back into the
// future-arrival queue with arrival time = now, so it is re-admitted on the
// next AdmitArrivals call.
func (b *Broker) rescheduleFromDestroyedVm(cloudlets []*Cloudlet, now int64) {
	for _, c := range cloudlets {
		if c.RemainingLength() <= 0 {
			c.Status = Success
			c.FinishTime = now
			b.finished[c.ID] = true
			continue
		}
		c.resetForReschedule(now)
		b.future = append(b.future, &futureArrival{cloudlet: c, arrivalTime: now})
	}
	sort.SliceStable(b.future, func(i, j int) bool {
		return b.future[i].arrivalTime < b.future[j].arrivalTime
	})
}

// HasUnfinishedWork reports whether any cloudlet remains outside the
// finished set — used by Engine.IsRunning.
func (b *Broker) HasUnfinishedWork() bool {
	return len(b.finished) < len(b.allCloudlets)
}

// FinishedCount returns the number of cloudlets that have reached a
// terminal successful state.
func (b *Broker) FinishedCount() int { return len(b.finished) }

// SubmittedCount returns the number of cloudlets that have ever been bound
// to a VM via AssignNextToVM (including ones later re-queued by a VM
// destruction).
func (b *Broker) SubmittedCount() int { return len(b.submitted) }

// vmRetentionPolicy: the broker never self-initiates VM destruction on
// idle timeout. A VM stays Running indefinitely until an explicit
// action-type-3 Destroy (or a direct Datacenter.DestroyVmNow call) removes
// it; fleet sizing is entirely the calling agent's responsibility.

// TotalCloudlets returns the size of the full cloudlet set loaded at reset.
func (b *Broker) TotalCloudlets() int { return len(b.allCloudlets) }

// AllCloudlets returns every cloudlet loaded at reset, sorted ascending by
// id, for result reporting.
func (b *Broker) AllCloudlets() []*Cloudlet {
	out := make([]*Cloudlet, 0, len(b.allCloudlets))
	for _, c := range b.allCloudlets {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DefaultMap is intentionally disabled: the core's contract is that
// dispatch is always externally driven. Any code path that asks the
// broker to auto-map a cloudlet gets the null-VM sentinel back, the
// ErrDispatchDisabled sentinel, and a warning in the log.
func (b *Broker) DefaultMap(c *Cloudlet) (int64, DispatchError) {
	logrus.Warn("Broker.DefaultMap called but default mapping is disabled; dispatch must be agent-driven")
	return 0, ErrDispatchDisabled
}
