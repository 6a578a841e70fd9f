// Package workload parses trace files into cloudlet descriptors and splits
// oversize ones to fit the configured per-cloudlet core ceiling. It has no
// dependency on the sim package: the driver converts descriptors into
// sim.Cloudlet values after loading.
package workload

import "fmt"

// CloudletDescriptor is the trace-agnostic shape a workload reader produces,
// before conversion into a sim.Cloudlet.
type CloudletDescriptor struct {
	ID              int64
	ArrivalTime     int64
	LengthMI        float64
	Cores           int64
	FileSizeIn      int64
	FileSizeOut     int64
	SubmissionDelay int64
}

// LoadFile dispatches to the SWF or CSV reader based on mode.
func LoadFile(mode, path string, maxCloudlets int64, readerMips float64) ([]CloudletDescriptor, error) {
	switch mode {
	case "SWF":
		return ReadSWF(path, maxCloudlets, readerMips)
	case "CSV":
		return ReadCSV(path, maxCloudlets)
	default:
		return nil, fmt.Errorf("unknown workload mode %q", mode)
	}
}

func max1(v int64) int64 {
	if v < 1 {
		return 1
	}
	return v
}

func max0(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
