package workload

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// swfStatusField is the 0-based index of the Status field in the standard
// Standard Workload Format (field 11: "Status" per the SWF spec).
const swfStatusField = 10

// ReadSWF parses a Standard Workload Format trace. Lines with fewer than 18
// whitespace-delimited fields, or a Status of 0 (failed job), are skipped.
// Cores used = max(1, max(requested_cores, allocated_cores)); length in
// million instructions = max(1, runtime * referenceMips); submit time is
// floored at 0.
func ReadSWF(path string, maxCloudlets int64, referenceMips float64) ([]CloudletDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening SWF trace %q: %w", path, err)
	}
	defer f.Close()

	var out []CloudletDescriptor
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if maxCloudlets > 0 && int64(len(out)) >= maxCloudlets {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 18 {
			continue
		}

		status, err := strconv.ParseInt(fields[swfStatusField], 10, 64)
		if err != nil {
			continue
		}
		if status == 0 {
			continue
		}

		jobID, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			continue
		}
		submit, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		runtime, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			continue
		}
		allocated, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			allocated = 1
		}
		requested, err := strconv.ParseInt(fields[7], 10, 64)
		if err != nil {
			requested = 1
		}

		cores := requested
		if allocated > cores {
			cores = allocated
		}
		cores = max1(cores)
		length := max1(int64(float64(runtime) * referenceMips))

		out = append(out, CloudletDescriptor{
			ID:          jobID,
			ArrivalTime: max0(submit),
			LengthMI:    float64(length),
			Cores:       cores,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading SWF trace %q: %w", path, err)
	}
	return out, nil
}
