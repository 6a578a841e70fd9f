// Defines the Cloudlet type: a unit of work moving through
// Waiting → InExec → Success/Failed/Cancelled.
package sim

import "fmt"

// CloudletStatus is the lifecycle state of a Cloudlet.
type CloudletStatus string

const (
	Waiting   CloudletStatus = "Waiting"
	InExec    CloudletStatus = "InExec"
	Success   CloudletStatus = "Success"
	Failed    CloudletStatus = "Failed"
	Cancelled CloudletStatus = "Cancelled"
)

// Cloudlet models a single compute task.
type Cloudlet struct {
	ID int64

	RequiredCores int64
	Length        float64 // total million instructions required, immutable after creation
	FileSizeIn    int64
	FileSizeOut   int64

	ArrivalTime     int64 // absolute sim time the cloudlet arrives
	SubmissionDelay int64 // arrival - clock at the time it was queued

	Status CloudletStatus

	BoundVmID int64 // 0 means unbound

	ExecStartTime  int64
	WaitStartTime  int64
	FinishTime     int64
	FinishedLength float64 // million instructions executed so far, monotonically non-decreasing
}

// NewCloudlet constructs a Cloudlet in the Waiting state with zero progress.
func NewCloudlet(id, requiredCores int64, lengthMI float64, fileSizeIn, fileSizeOut, arrivalTime int64) *Cloudlet {
	return &Cloudlet{
		ID:            id,
		RequiredCores: requiredCores,
		Length:        lengthMI,
		FileSizeIn:    fileSizeIn,
		FileSizeOut:   fileSizeOut,
		ArrivalTime:   arrivalTime,
		Status:        Waiting,
	}
}

// RemainingLength returns the million-instructions left to execute.
func (c *Cloudlet) RemainingLength() float64 {
	return c.Length - c.FinishedLength
}

// resetForReschedule is invoked by the broker when a VM holding this
// cloudlet is destroyed. The cloudlet is detached, its remaining work is
// preserved (finished length stays credited), and it re-enters the
// future-arrival queue as if it had just arrived at `now`.
func (c *Cloudlet) resetForReschedule(now int64) {
	c.Status = Waiting
	c.BoundVmID = 0
	c.SubmissionDelay = 0
	c.ArrivalTime = now
	c.ExecStartTime = 0
	c.WaitStartTime = 0
}

func (c Cloudlet) String() string {
	return fmt.Sprintf("Cloudlet(ID:%d, Status:%s, Cores:%d, Remaining:%.1f/%.1f, VM:%d)",
		c.ID, c.Status, c.RequiredCores, c.RemainingLength(), c.Length, c.BoundVmID)
}
