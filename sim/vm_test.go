package sim

import "testing"

func TestVmSizeSpec_MediumAndLargeAreMultiplesOfSmall(t *testing.T) {
	base := SmallVmSpec{Cores: 2, RAM: 4000, Bw: 1000, Storage: 10000}

	cores, ram, bw, storage := VmSizeSpec(base, VmMedium, 2, 4)
	if cores != 4 || ram != 8000 || bw != 2000 || storage != 20000 {
		t.Errorf("Medium spec = (%d,%d,%d,%d), want (4,8000,2000,20000)", cores, ram, bw, storage)
	}

	cores, ram, bw, storage = VmSizeSpec(base, VmLarge, 2, 4)
	if cores != 8 || ram != 16000 || bw != 4000 || storage != 40000 {
		t.Errorf("Large spec = (%d,%d,%d,%d), want (8,16000,4000,40000)", cores, ram, bw, storage)
	}
}

func TestVmSizeSpec_SmallReturnsBaseUnchanged(t *testing.T) {
	base := SmallVmSpec{Cores: 2, RAM: 4000, Bw: 1000, Storage: 10000}
	cores, ram, bw, storage := VmSizeSpec(base, VmSmall, 2, 4)
	if cores != base.Cores || ram != base.RAM || bw != base.Bw || storage != base.Storage {
		t.Error("Small spec should equal the base spec")
	}
}

func TestVM_CpuLoad_ReflectsExecutingCoreShare(t *testing.T) {
	vm := NewVM(1, VmSmall, 4, 1000, 1000, 1000, 1000, 0, 0)
	if vm.CpuLoad() != 0 {
		t.Errorf("CpuLoad on idle VM = %v, want 0", vm.CpuLoad())
	}

	eng := NewEngine(1)
	vm.Scheduler.Attach(eng)
	vm.Scheduler.Submit(NewCloudlet(1, 2, 10000, 0, 0, 0), 0)

	if got := vm.CpuLoad(); got != 0.5 {
		t.Errorf("CpuLoad with 2/4 cores executing = %v, want 0.5", got)
	}
}

func TestVM_NewVM_StartsInRequestedState(t *testing.T) {
	vm := NewVM(1, VmSmall, 2, 1000, 1000, 1000, 1000, 5, 5)
	if vm.State != VmRequested {
		t.Errorf("initial state = %v, want Requested", vm.State)
	}
	if vm.Scheduler == nil {
		t.Error("NewVM must construct a scheduler")
	}
}
