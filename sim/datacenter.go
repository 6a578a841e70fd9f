// Defines the Datacenter type, which exclusively owns the Host fleet and
// the placement policy, and mediates VM creation/destruction.
package sim

import "github.com/sirupsen/logrus"

// Datacenter owns every Host. VMs are looked up by id through the
// datacenter rather than via back-pointers, so a destroyed VM can never
// leave a dangling reference behind.
type Datacenter struct {
	hosts        []*Host
	placement    PlacementPolicy
	vms          map[int64]*VM
	nextVmID     int64
}

// NewDatacenter constructs a Datacenter with hostCount identical hosts and
// the given placement policy.
func NewDatacenter(hostCount, hostCores int64, hostMipsPerCore float64, hostRAM, hostBw, hostStorage int64, placement PlacementPolicy) *Datacenter {
	hosts := make([]*Host, hostCount)
	for i := int64(0); i < hostCount; i++ {
		hosts[i] = NewHost(i, hostCores, hostMipsPerCore, hostRAM, hostBw, hostStorage)
	}
	return &Datacenter{
		hosts:     hosts,
		placement: placement,
		vms:       make(map[int64]*VM),
	}
}

// Hosts returns the host list in ascending-id order.
func (d *Datacenter) Hosts() []*Host { return d.hosts }

// FindHost looks up a host by id, or nil if not found.
func (d *Datacenter) FindHost(id int64) *Host {
	for _, h := range d.hosts {
		if h.ID == id {
			return h
		}
	}
	return nil
}

// FindVm looks up a VM by id, or nil if not found or already destroyed.
func (d *Datacenter) FindVm(id int64) *VM { return d.vms[id] }

// RunningVMs returns every VM currently in the Running state, in ascending
// id order (deterministic iteration over the VM fleet).
func (d *Datacenter) RunningVMs() []*VM {
	out := make([]*VM, 0, len(d.vms))
	for _, vm := range d.vms {
		if vm.State == VmRunning {
			out = append(out, vm)
		}
	}
	sortVMsByID(out)
	return out
}

// AllVMs returns every known VM (any lifecycle state) in ascending id order.
func (d *Datacenter) AllVMs() []*VM {
	out := make([]*VM, 0, len(d.vms))
	for _, vm := range d.vms {
		out = append(out, vm)
	}
	sortVMsByID(out)
	return out
}

// TotalAllocatedCores sums allocated cores across every host, used by the
// cost reward component.
func (d *Datacenter) TotalAllocatedCores() int64 {
	var total int64
	for _, h := range d.hosts {
		total += h.allocatedCores
	}
	return total
}

func sortVMsByID(vms []*VM) {
	for i := 1; i < len(vms); i++ {
		for j := i; j > 0 && vms[j-1].ID > vms[j].ID; j-- {
			vms[j-1], vms[j] = vms[j], vms[j-1]
		}
	}
}

// RequestVm registers a new VM in the Requested state and schedules its
// VmCreateEvent. targetHostID/hasTarget carries an agent's explicit
// placement choice through to the placement policy. Returns the new VM's
// id.
func (d *Datacenter) RequestVm(e *Engine, vtype VmType, cores int64, mipsPerCore float64, ram, bw, storage, startupDelay, shutdownDelay int64, targetHostID int64, hasTarget bool) int64 {
	d.nextVmID++
	id := d.nextVmID
	vm := NewVM(id, vtype, cores, mipsPerCore, ram, bw, storage, startupDelay, shutdownDelay)
	vm.TargetHostID = targetHostID
	vm.HasTarget = hasTarget
	vm.Scheduler.Attach(e)
	d.vms[id] = vm
	e.Schedule(&VmCreateEvent{baseEvent: baseEvent{time: e.Clock, id: e.nextID()}, VmID: id})
	return id
}

// createVm places a requested VM via the placement policy and, on success,
// begins its startup delay by scheduling a VmStartedEvent. On placement
// failure the VM is dropped from the fleet (the create action that
// requested it is surfaced as invalid by the bridge layer, never as a
// simulation error).
func (d *Datacenter) createVm(id int64, e *Engine) {
	now := e.Clock
	vm := d.vms[id]
	if vm == nil {
		return
	}
	host, err := d.placement.SelectHost(vm, d.hosts)
	if err != nil {
		logrus.Warnf("[tick %d] vm %d placement failed: %v", now, id, err)
		delete(d.vms, id)
		return
	}
	if err := host.Provision(vm, now); err != nil {
		logrus.Warnf("[tick %d] vm %d provisioning failed on host %d: %v", now, id, host.ID, err)
		delete(d.vms, id)
		return
	}
	vm.HostID = host.ID
	vm.State = VmStarting
	e.Schedule(&VmStartedEvent{baseEvent: baseEvent{time: now + vm.StartupDelay, id: e.nextID()}, VmID: id})
}

// destroyVm tears a VM down: releases its host resources, harvests any
// executing/waiting cloudlets into the broker for rescheduling, and
// removes it from the fleet.
func (d *Datacenter) destroyVm(id int64, now int64, broker *Broker) {
	vm := d.vms[id]
	if vm == nil {
		return
	}
	vm.State = VmShuttingDown
	harvested := vm.Scheduler.DetachAll(now)
	if broker != nil {
		broker.rescheduleFromDestroyedVm(harvested, now)
	}
	if host := d.FindHost(vm.HostID); host != nil {
		host.Release(vm, now)
	}
	vm.State = VmDestroyed
	delete(d.vms, id)
}

// DestroyVmNow is the synchronous entry point used by the agent bridge's
// action-type-3 handler: destruction takes effect immediately (no delay),
// harvesting in-flight cloudlets back into the broker's future queue.
func (d *Datacenter) DestroyVmNow(e *Engine, id int64) bool {
	vm := d.vms[id]
	if vm == nil || vm.State != VmRunning {
		return false
	}
	d.destroyVm(id, e.Clock, e.Broker)
	return true
}
