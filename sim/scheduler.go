// Implements the per-VM cloudlet scheduler: a space-shared execution model
// where each executing cloudlet holds RequiredCores of the VM's cores, the
// executing cloudlets together hold at most vm.Cores, and the rest wait in
// FIFO order for enough cores to free up.
package sim

import "github.com/sirupsen/logrus"

// CloudletScheduler holds a VM's executing and waiting cloudlet lists and
// advances their progress as the engine processes HostUpdate events.
type CloudletScheduler struct {
	vm        *VM
	executing []*Cloudlet
	waiting   []*Cloudlet

	lastUpdate int64
	engine     *Engine // set by Submit's caller context via Attach
}

// NewCloudletScheduler constructs an empty scheduler bound to vm.
func NewCloudletScheduler(vm *VM) *CloudletScheduler {
	return &CloudletScheduler{vm: vm}
}

// Attach gives the scheduler a reference to the owning Engine so it can
// schedule its own finish/update events. Called once by Datacenter when the
// VM is created.
func (s *CloudletScheduler) Attach(e *Engine) { s.engine = e }

// ExecutingCoreCount returns the number of cores currently occupied by
// executing cloudlets (each executing cloudlet occupies exactly
// min(RequiredCores, available) — in this model always RequiredCores,
// since a cloudlet only enters `executing` once enough cores are free).
func (s *CloudletScheduler) ExecutingCoreCount() int64 {
	var n int64
	for _, c := range s.executing {
		n += c.RequiredCores
	}
	return n
}

func (s *CloudletScheduler) usedCores() int64 { return s.ExecutingCoreCount() }

// Submit hands a cloudlet to this VM's scheduler. If there are enough free
// cores it starts executing immediately; otherwise it joins the FIFO
// waiting list.
func (s *CloudletScheduler) Submit(c *Cloudlet, now int64) {
	s.advance(now)
	c.WaitStartTime = now
	if s.vm.Cores-s.usedCores() >= c.RequiredCores {
		s.start(c, now)
	} else {
		s.waiting = append(s.waiting, c)
	}
}

func (s *CloudletScheduler) start(c *Cloudlet, now int64) {
	c.Status = InExec
	c.ExecStartTime = now
	c.BoundVmID = s.vm.ID
	s.executing = append(s.executing, c)
	s.scheduleFinish(c, now)
}

// scheduleFinish computes the remaining execution time for c at the VM's
// per-core MIPS rate times c's RequiredCores and schedules a
// CloudletFinishEvent for it.
func (s *CloudletScheduler) scheduleFinish(c *Cloudlet, now int64) {
	if s.engine == nil {
		return
	}
	remaining := c.RemainingLength()
	if s.vm.Mips <= 0 {
		logrus.Warnf("vm %d has zero mips; cloudlet %d cannot progress", s.vm.ID, c.ID)
		return
	}
	// million instructions / (million instructions per second per core * cores) = seconds
	rate := s.vm.Mips * float64(c.RequiredCores)
	ticksToFinish := int64(remaining/rate + 0.999999)
	if ticksToFinish < 1 {
		ticksToFinish = 1
	}
	s.engine.Schedule(&CloudletFinishEvent{
		baseEvent:  baseEvent{time: now + ticksToFinish, id: s.engine.nextID()},
		CloudletID: c.ID,
		VmID:       s.vm.ID,
	})
}

// advance updates every executing cloudlet's FinishedLength by elapsed
// MIPS*cores since the last update, without removing completed ones (that
// happens in Finish, triggered by the scheduled CloudletFinishEvent).
func (s *CloudletScheduler) advance(now int64) {
	elapsed := now - s.lastUpdate
	if elapsed <= 0 {
		s.lastUpdate = now
		return
	}
	for _, c := range s.executing {
		progress := float64(elapsed) * s.vm.Mips * float64(c.RequiredCores)
		c.FinishedLength += progress
		if c.FinishedLength > c.Length {
			c.FinishedLength = c.Length
		}
	}
	if s.vm.Cores > 0 {
		s.vm.History = append(s.vm.History, VmUtilSample{Time: now, CpuLoad: s.vm.CpuLoad()})
	}
	s.lastUpdate = now
}

// Finish marks c as completed, removes it from the executing list, and
// pulls the next eligible waiting cloudlet(s) onto freed cores in FIFO
// order. Returns the cloudlet so the caller (broker) can record its wait
// time and emit it to the finished list.
func (s *CloudletScheduler) Finish(cloudletID int64, now int64) *Cloudlet {
	s.advance(now)
	var finished *Cloudlet
	var remaining []*Cloudlet
	for _, c := range s.executing {
		if c.ID == cloudletID {
			c.FinishedLength = c.Length
			c.Status = Success
			c.FinishTime = now
			finished = c
			continue
		}
		remaining = append(remaining, c)
	}
	s.executing = remaining
	s.pullWaiting(now)
	return finished
}

// pullWaiting moves cloudlets from the waiting list into executing while
// there is room, preserving FIFO order.
func (s *CloudletScheduler) pullWaiting(now int64) {
	for len(s.waiting) > 0 {
		head := s.waiting[0]
		if s.vm.Cores-s.usedCores() < head.RequiredCores {
			break
		}
		s.waiting = s.waiting[1:]
		s.start(head, now)
	}
}

// DetachAll removes every executing and waiting cloudlet from this
// scheduler (used when the owning VM is destroyed) and returns them so the
// broker can reschedule each one. The scheduler is left empty.
func (s *CloudletScheduler) DetachAll(now int64) []*Cloudlet {
	s.advance(now)
	all := make([]*Cloudlet, 0, len(s.executing)+len(s.waiting))
	all = append(all, s.executing...)
	all = append(all, s.waiting...)
	s.executing = nil
	s.waiting = nil
	return all
}

// Len returns the total cloudlets held by this scheduler (executing +
// waiting), used by the least-connections baseline policy.
func (s *CloudletScheduler) Len() int { return len(s.executing) + len(s.waiting) }
