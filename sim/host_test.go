package sim

import "testing"

func TestHost_CanHost_RejectsInsufficientCores(t *testing.T) {
	h := NewHost(0, 4, 1000, 8000, 1000, 10000)
	err := h.CanHost(5, 1000, 100, 1000)
	if err == nil {
		t.Fatal("expected error for oversize core request")
	}
}

func TestHost_Provision_ReservesResourcesAcrossAllDimensions(t *testing.T) {
	h := NewHost(0, 4, 1000, 8000, 1000, 10000)
	vm := NewVM(1, VmSmall, 2, 1000, 2000, 200, 2000, 0, 0)

	if err := h.Provision(vm, 0); err != nil {
		t.Fatalf("Provision failed: %v", err)
	}
	if h.FreeCores() != 2 {
		t.Errorf("FreeCores = %d, want 2", h.FreeCores())
	}
	if !h.Active {
		t.Error("host should be Active once it has a VM")
	}
}

func TestHost_Release_ReturnsResourcesAndDeactivatesWhenEmpty(t *testing.T) {
	h := NewHost(0, 4, 1000, 8000, 1000, 10000)
	vm := NewVM(1, VmSmall, 2, 1000, 2000, 200, 2000, 0, 0)
	_ = h.Provision(vm, 0)

	h.Release(vm, 1)

	if h.FreeCores() != 4 {
		t.Errorf("FreeCores after release = %d, want 4", h.FreeCores())
	}
	if h.Active {
		t.Error("host with no VMs should not be Active")
	}
}

func TestHost_Provision_NeverOversubscribes(t *testing.T) {
	// A second VM that would exceed host capacity must be rejected outright,
	// not partially applied.
	h := NewHost(0, 4, 1000, 8000, 1000, 10000)
	vm1 := NewVM(1, VmSmall, 3, 1000, 2000, 200, 2000, 0, 0)
	vm2 := NewVM(2, VmSmall, 3, 1000, 2000, 200, 2000, 0, 0)

	if err := h.Provision(vm1, 0); err != nil {
		t.Fatalf("first provision failed: %v", err)
	}
	if err := h.Provision(vm2, 0); err == nil {
		t.Fatal("second provision should fail: only 1 core free, requested 3")
	}
	if h.allocatedCores != 3 {
		t.Errorf("allocatedCores = %d, want 3 (failed provision must not partially apply)", h.allocatedCores)
	}
}
