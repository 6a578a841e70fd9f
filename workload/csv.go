package workload

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// ReadCSV parses the CSV trace format: columns job_id, arrival_time, mi,
// allocated_cores. The header row is skipped if its first field fails to
// parse as a number. All four fields are lower-bounded at their natural
// minimums: job_id and arrival_time at 0, mi and allocated_cores at 1
//.
func ReadCSV(path string, maxCloudlets int64) ([]CloudletDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV trace %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV trace %q: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if _, err := strconv.ParseFloat(records[0][0], 64); err != nil {
		records = records[1:]
	}

	var out []CloudletDescriptor
	for _, row := range records {
		if maxCloudlets > 0 && int64(len(out)) >= maxCloudlets {
			break
		}
		if len(row) < 4 {
			continue
		}
		jobID, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			continue
		}
		arrival, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			continue
		}
		mi, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			continue
		}
		cores, err := strconv.ParseInt(row[3], 10, 64)
		if err != nil {
			continue
		}

		out = append(out, CloudletDescriptor{
			ID:          max0(jobID),
			ArrivalTime: max0(int64(arrival)),
			LengthMI:    float64(max1(int64(mi))),
			Cores:       max1(cores),
		})
	}
	return out, nil
}
