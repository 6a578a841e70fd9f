package sim

import "testing"

func TestSingleIntAction_NegativeOneIsNoop(t *testing.T) {
	if _, ok := SingleIntAction(-1).(NoopAction); !ok {
		t.Error("SingleIntAction(-1) should decode to NoopAction")
	}
}

func TestSingleIntAction_NonNegativeAssignsThatVm(t *testing.T) {
	a, ok := SingleIntAction(7).(AssignAction)
	if !ok {
		t.Fatal("SingleIntAction(7) should decode to AssignAction")
	}
	if a.TargetVmID != 7 {
		t.Errorf("TargetVmID = %d, want 7", a.TargetVmID)
	}
}

func TestVmTypeFromIndex_ValidAndInvalid(t *testing.T) {
	cases := []struct {
		idx     int
		want    VmType
		wantOk  bool
	}{
		{0, VmSmall, true},
		{1, VmMedium, true},
		{2, VmLarge, true},
		{3, "", false},
		{-1, "", false},
	}
	for _, c := range cases {
		got, ok := VmTypeFromIndex(c.idx)
		if ok != c.wantOk || got != c.want {
			t.Errorf("VmTypeFromIndex(%d) = (%v,%v), want (%v,%v)", c.idx, got, ok, c.want, c.wantOk)
		}
	}
}
