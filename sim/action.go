// Defines the agent action as a sum type rather than a 4-tuple of mostly
// meaningless integers: each variant carries only the
// fields relevant to it.
package sim

// Action is implemented by every action variant the bridge can decode. A
// type switch in Driver.Step replaces the field-by-field validity checks a
// flat tuple would need.
type Action interface {
	actionKind() string
}

// NoopAction takes no action this step. Flagged invalid by the driver if
// the wait queue is non-empty at the time it is applied.
type NoopAction struct{}

func (NoopAction) actionKind() string { return "Noop" }

// AssignAction dispatches the head of the wait queue to TargetVmID
// (action type 1).
type AssignAction struct {
	TargetVmID int64
}

func (AssignAction) actionKind() string { return "Assign" }

// CreateVmAction requests a new VM of VmTypeIndex (0=Small, 1=Medium,
// 2=Large) targeted at TargetHostID.
type CreateVmAction struct {
	TargetHostID int64
	VmTypeIndex  int
}

func (CreateVmAction) actionKind() string { return "CreateVm" }

// DestroyAction destroys the VM at RunningIndex within the current Running
// list, as returned by Datacenter.RunningVMs.
type DestroyAction struct {
	RunningIndex int
}

func (DestroyAction) actionKind() string { return "Destroy" }

// SingleIntAction builds the simplified single-integer action variant for
// policies that only manage dispatch: vmID >= 0 assigns to that VM, -1 is
// No-op.
func SingleIntAction(vmID int64) Action {
	if vmID < 0 {
		return NoopAction{}
	}
	return AssignAction{TargetVmID: vmID}
}

// ActionOutcome records what actually happened when an action was applied,
// feeding both the invalid-action reward component and the Info record.
type ActionOutcome struct {
	AssignmentSuccess bool

	CreateAttempted bool
	CreateSuccess   bool

	DestroyAttempted bool
	DestroySuccess   bool

	InvalidAction bool

	HostAffectedID int64
	CoresAdded     int64
	CoresRemoved   int64
}

// VmTypeFromIndex maps the action's 0/1/2 type index onto a VmType, or ok
// false if out of range.
func VmTypeFromIndex(idx int) (VmType, bool) {
	switch idx {
	case 0:
		return VmSmall, true
	case 1:
		return VmMedium, true
	case 2:
		return VmLarge, true
	default:
		return "", false
	}
}
