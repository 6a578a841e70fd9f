// Defines the Host type: a physical server whose processing elements,
// RAM, bandwidth, and storage are reserved by the VMs provisioned on it.
package sim

import "fmt"

// HostStateSample captures one point in a host's utilization history, used
// for post-run analysis and for the observation builder's per-host ratios.
type HostStateSample struct {
	Time           int64
	RequestedMips  float64
	AllocatedMips  float64
	Active         bool
}

// NotSuitableError explains why a VM could not be provisioned on a host.
type NotSuitableError struct {
	Reason string
}

func (e *NotSuitableError) Error() string { return "not suitable: " + e.Reason }

// maxHistorySamples bounds the state history ring so long runs don't grow
// the slice unboundedly.
const maxHistorySamples = 4096

// Host is a physical server with a fixed number of processing elements
// (cores), each with a MIPS capacity, plus RAM, bandwidth, and storage.
type Host struct {
	ID int64

	PeMips   []float64 // MIPS capacity of each processing element (core)
	RAM      int64
	Bw       int64
	Storage  int64

	allocatedCores   int64
	allocatedRAM     int64
	allocatedBw      int64
	allocatedStorage int64

	vms []int64 // IDs of VMs currently running on this host

	Active  bool
	History []HostStateSample
}

// NewHost constructs a Host with the given number of identical-MIPS cores.
func NewHost(id int64, cores int64, mipsPerCore float64, ram, bw, storage int64) *Host {
	pes := make([]float64, cores)
	for i := range pes {
		pes[i] = mipsPerCore
	}
	return &Host{ID: id, PeMips: pes, RAM: ram, Bw: bw, Storage: storage}
}

// Cores returns the total number of processing elements.
func (h *Host) Cores() int64 { return int64(len(h.PeMips)) }

// TotalMips returns the sum of all PE MIPS capacities.
func (h *Host) TotalMips() float64 {
	var total float64
	for _, m := range h.PeMips {
		total += m
	}
	return total
}

// FreeCores returns the number of cores not currently allocated to any VM.
func (h *Host) FreeCores() int64 { return h.Cores() - h.allocatedCores }

// CanHost reports whether the host has enough free capacity in every
// dimension (cores, RAM, bandwidth, storage) for the given VM spec,
// without mutating any state.
func (h *Host) CanHost(cores, ram, bw, storage int64) error {
	if h.FreeCores() < cores {
		return &NotSuitableError{Reason: fmt.Sprintf("insufficient cores: need %d, free %d", cores, h.FreeCores())}
	}
	if h.RAM-h.allocatedRAM < ram {
		return &NotSuitableError{Reason: fmt.Sprintf("insufficient ram: need %d, free %d", ram, h.RAM-h.allocatedRAM)}
	}
	if h.Bw-h.allocatedBw < bw {
		return &NotSuitableError{Reason: fmt.Sprintf("insufficient bandwidth: need %d, free %d", bw, h.Bw-h.allocatedBw)}
	}
	if h.Storage-h.allocatedStorage < storage {
		return &NotSuitableError{Reason: fmt.Sprintf("insufficient storage: need %d, free %d", storage, h.Storage-h.allocatedStorage)}
	}
	return nil
}

// Provision reserves (cores, ram, bw, storage) for vm and marks the host
// active. Returns a *NotSuitableError if any dimension is exceeded; on
// failure no partial reservation is made.
func (h *Host) Provision(vm *VM, now int64) error {
	if err := h.CanHost(vm.Cores, vm.RAM, vm.Bw, vm.Storage); err != nil {
		return err
	}
	h.allocatedCores += vm.Cores
	h.allocatedRAM += vm.RAM
	h.allocatedBw += vm.Bw
	h.allocatedStorage += vm.Storage
	h.vms = append(h.vms, vm.ID)
	h.Active = true
	h.sampleState(now)
	return nil
}

// Release returns vm's reserved resources to the host's free pool. Host
// remains Active only while it still has at least one VM.
func (h *Host) Release(vm *VM, now int64) {
	h.allocatedCores -= vm.Cores
	h.allocatedRAM -= vm.RAM
	h.allocatedBw -= vm.Bw
	h.allocatedStorage -= vm.Storage
	for i, id := range h.vms {
		if id == vm.ID {
			h.vms = append(h.vms[:i], h.vms[i+1:]...)
			break
		}
	}
	h.Active = len(h.vms) > 0
	h.sampleState(now)
}

// VMCount returns the number of VMs currently placed on this host.
func (h *Host) VMCount() int { return len(h.vms) }

// sampleState appends a utilization sample. requestedMips approximates
// demand as the allocated-core share of total capacity (a VM requests at
// most its provisioned cores' worth of MIPS); allocatedMips tracks the
// same quantity, since this model does not oversubscribe cores.
func (h *Host) sampleState(now int64) {
	mipsPerCore := 0.0
	if len(h.PeMips) > 0 {
		mipsPerCore = h.PeMips[0]
	}
	allocated := float64(h.allocatedCores) * mipsPerCore
	sample := HostStateSample{Time: now, RequestedMips: allocated, AllocatedMips: allocated, Active: h.Active}
	h.History = append(h.History, sample)
	if len(h.History) > maxHistorySamples {
		h.History = h.History[len(h.History)-maxHistorySamples:]
	}
}

// CpuUsageRatio returns allocated-core fraction of total cores, for the
// observation builder.
func (h *Host) CpuUsageRatio() float64 {
	if h.Cores() == 0 {
		return 0
	}
	return float64(h.allocatedCores) / float64(h.Cores())
}

// RamUsageRatio returns allocated-RAM fraction of total RAM.
func (h *Host) RamUsageRatio() float64 {
	if h.RAM == 0 {
		return 0
	}
	return float64(h.allocatedRAM) / float64(h.RAM)
}
