// Implements the VM→Host placement policy: honor an explicit host target
// when the agent set one, otherwise round-robin across suitable hosts.
package sim

import "fmt"

// PlacementPolicy selects a Host for a VM given the current host list, a
// single-method routing-policy shape for "pick a target given current
// state."
type PlacementPolicy interface {
	SelectHost(vm *VM, hosts []*Host) (*Host, error)
}

// DefaultPlacementPolicy implements targeted placement when the
// VM carries a host hint, round-robin fallback otherwise, ties broken by
// ascending host id.
type DefaultPlacementPolicy struct {
	nextRoundRobin int
}

// NewDefaultPlacementPolicy constructs a DefaultPlacementPolicy starting
// its round-robin cursor at the first host.
func NewDefaultPlacementPolicy() *DefaultPlacementPolicy {
	return &DefaultPlacementPolicy{}
}

// SelectHost returns the targeted host if vm.HasTarget and that host is
// suitable; on success it clears the target (mirrors "strip the suffix
// leaving only the type"). Otherwise it falls back to round-robin across
// hosts sorted by ascending id, skipping unsuitable ones.
func (p *DefaultPlacementPolicy) SelectHost(vm *VM, hosts []*Host) (*Host, error) {
	if vm.HasTarget {
		for _, h := range hosts {
			if h.ID == vm.TargetHostID {
				if err := h.CanHost(vm.Cores, vm.RAM, vm.Bw, vm.Storage); err != nil {
					return nil, err
				}
				vm.HasTarget = false
				return h, nil
			}
		}
		return nil, &NotSuitableError{Reason: fmt.Sprintf("targeted host %d not found", vm.TargetHostID)}
	}

	n := len(hosts)
	if n == 0 {
		return nil, &NotSuitableError{Reason: "no hosts available"}
	}
	for i := 0; i < n; i++ {
		idx := (p.nextRoundRobin + i) % n
		h := hosts[idx]
		if err := h.CanHost(vm.Cores, vm.RAM, vm.Bw, vm.Storage); err == nil {
			p.nextRoundRobin = (idx + 1) % n
			return h, nil
		}
	}
	return nil, &NotSuitableError{Reason: "no suitable host for vm"}
}
