// Builds the fixed-width padded Observation snapshot consumed by the agent
// bridge. Array widths are computed once at reset (MaxHosts/MaxPotentialVms)
// so the bridge layer never reallocates or re-describes its schema
// per-step.
package sim

// ObservationState is the snapshot returned by reset/step. All slice
// lengths are fixed for the lifetime of a run: MaxHosts for per-host
// fields, MaxPotentialVms for per-vm-slot fields.
type ObservationState struct {
	MaxHosts        int
	MaxPotentialVms int

	HostCpuUsage []float64 // len MaxHosts, 0 for padding slots
	HostRamUsage []float64 // len MaxHosts

	VmCpuLoad      []float64 // len MaxPotentialVms
	VmAvailCores   []int64   // len MaxPotentialVms
	VmTypeCode     []int     // len MaxPotentialVms, 0=empty 1=S 2=M 3=L
	VmHostMap      []int64   // len MaxPotentialVms, -1 = no VM in this slot

	WaitingCloudletCount int64
	NextCloudletCores    int64 // required cores of the wait queue's head, 0 if empty

	ActualHostCount int
	ActualVmCount   int

	// Tree flattens the current Host→VM→Cloudlet topology as
	// [total_cores, host_count, (host_cores, vm_count, (vm_cores,
	// cloudlet_count, (cloudlet_cores, 0)×cloudlet_count)×vm_count)×host_count]
	//.
	Tree []int64
}

// BuildObservation assembles an ObservationState from the current engine
// state. maxHosts/maxPotentialVms must match the values computed at reset.
func BuildObservation(e *Engine, maxHosts, maxPotentialVms int) ObservationState {
	obs := ObservationState{
		MaxHosts:        maxHosts,
		MaxPotentialVms: maxPotentialVms,
		HostCpuUsage:    make([]float64, maxHosts),
		HostRamUsage:    make([]float64, maxHosts),
		VmCpuLoad:       make([]float64, maxPotentialVms),
		VmAvailCores:    make([]int64, maxPotentialVms),
		VmTypeCode:      make([]int, maxPotentialVms),
		VmHostMap:       make([]int64, maxPotentialVms),
	}
	for i := range obs.VmHostMap {
		obs.VmHostMap[i] = -1
	}

	hosts := e.Datacenter.Hosts()
	obs.ActualHostCount = len(hosts)
	for i, h := range hosts {
		if i >= maxHosts {
			break
		}
		obs.HostCpuUsage[i] = h.CpuUsageRatio()
		obs.HostRamUsage[i] = h.RamUsageRatio()
	}

	vms := e.Datacenter.AllVMs()
	obs.ActualVmCount = len(vms)
	for i, vm := range vms {
		if i >= maxPotentialVms {
			break
		}
		obs.VmCpuLoad[i] = vm.CpuLoad()
		obs.VmAvailCores[i] = vm.Cores - vm.Scheduler.ExecutingCoreCount()
		obs.VmHostMap[i] = vm.HostID
		switch vm.Type {
		case VmSmall:
			obs.VmTypeCode[i] = 1
		case VmMedium:
			obs.VmTypeCode[i] = 2
		case VmLarge:
			obs.VmTypeCode[i] = 3
		}
	}

	obs.WaitingCloudletCount = int64(e.Broker.WaitQueueLen())
	if head := e.Broker.PeekWait(); head != nil {
		obs.NextCloudletCores = head.RequiredCores
	}

	obs.Tree = buildInfrastructureTree(hosts, vms)
	return obs
}

// buildInfrastructureTree flattens Host→VM→Cloudlet topology per the
// layout documented on ObservationState.Tree.
func buildInfrastructureTree(hosts []*Host, vms []*VM) []int64 {
	vmsByHost := make(map[int64][]*VM)
	for _, vm := range vms {
		if vm.State == VmDestroyed {
			continue
		}
		vmsByHost[vm.HostID] = append(vmsByHost[vm.HostID], vm)
	}

	var totalCores int64
	for _, h := range hosts {
		totalCores += h.Cores()
	}

	tree := []int64{totalCores, int64(len(hosts))}
	for _, h := range hosts {
		hostVms := vmsByHost[h.ID]
		tree = append(tree, h.Cores(), int64(len(hostVms)))
		for _, vm := range hostVms {
			cloudlets := vm.Scheduler.executing
			tree = append(tree, vm.Cores, int64(len(cloudlets)))
			for _, c := range cloudlets {
				tree = append(tree, c.RequiredCores, 0)
			}
		}
	}
	return tree
}
