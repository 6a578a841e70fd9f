// Defines the VM type: a logical compute unit placed on exactly one host,
// moving through Requested → Starting → Running → ShuttingDown → Destroyed.
package sim

import "fmt"

// VmType tags a VM's size class.
type VmType string

const (
	VmSmall  VmType = "S"
	VmMedium VmType = "M"
	VmLarge  VmType = "L"
)

// VmState is the lifecycle state of a VM.
type VmState string

const (
	VmRequested    VmState = "Requested"
	VmStarting     VmState = "Starting"
	VmRunning      VmState = "Running"
	VmShuttingDown VmState = "ShuttingDown"
	VmDestroyed    VmState = "Destroyed"
)

// VmUtilSample captures one point in a VM's utilization history.
type VmUtilSample struct {
	Time    int64
	CpuLoad float64 // fraction of this VM's cores currently busy
}

// VM is a logical compute node placed on one Host.
type VM struct {
	ID     int64
	Type   VmType
	Cores  int64
	Mips   float64 // MIPS per core
	RAM    int64
	Bw     int64
	Storage int64

	HostID int64
	State  VmState

	StartupDelay  int64
	ShutdownDelay int64

	Scheduler *CloudletScheduler

	History []VmUtilSample

	// TargetHostID carries an agent's explicit host-placement request
	// through to the placement policy, modeled as a typed field rather
	// than a string-encoded suffix.
	TargetHostID int64
	HasTarget    bool
}

// NewVM constructs a VM in the Requested state. hostID is unset until the
// placement policy assigns one.
func NewVM(id int64, vtype VmType, cores int64, mipsPerCore float64, ram, bw, storage, startupDelay, shutdownDelay int64) *VM {
	vm := &VM{
		ID:            id,
		Type:          vtype,
		Cores:         cores,
		Mips:          mipsPerCore,
		RAM:           ram,
		Bw:            bw,
		Storage:       storage,
		State:         VmRequested,
		StartupDelay:  startupDelay,
		ShutdownDelay: shutdownDelay,
	}
	vm.Scheduler = NewCloudletScheduler(vm)
	return vm
}

// CpuLoad returns the fraction of this VM's cores currently executing a
// cloudlet (space-shared: each running cloudlet holds its RequiredCores,
// up to vm.Cores in total).
func (vm *VM) CpuLoad() float64 {
	if vm.Cores == 0 {
		return 0
	}
	return float64(vm.Scheduler.ExecutingCoreCount()) / float64(vm.Cores)
}

func (vm VM) String() string {
	return fmt.Sprintf("VM(ID:%d, Type:%s, State:%s, Host:%d, Cores:%d)", vm.ID, vm.Type, vm.State, vm.HostID, vm.Cores)
}

// VmSizeSpec derives Medium/Large core/RAM/BW/storage from a Small base and
// the configured multipliers.
func VmSizeSpec(base SmallVmSpec, vtype VmType, multiplierM, multiplierL int64) (cores, ram, bw, storage int64) {
	switch vtype {
	case VmMedium:
		return base.Cores * multiplierM, base.RAM * multiplierM, base.Bw * multiplierM, base.Storage * multiplierM
	case VmLarge:
		return base.Cores * multiplierL, base.RAM * multiplierL, base.Bw * multiplierL, base.Storage * multiplierL
	default:
		return base.Cores, base.RAM, base.Bw, base.Storage
	}
}

// SmallVmSpec is the base unit VM size; Medium and Large are integer
// multiples of it.
type SmallVmSpec struct {
	Cores   int64
	RAM     int64
	Bw      int64
	Storage int64
}
