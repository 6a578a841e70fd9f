package workload

// splitIDOffset is added to the original maximum descriptor id to derive
// new ids for split pieces, keeping them clear of any id in the original
// trace.
const splitIDOffset = 1000000

// SplitOversizeCloudlets partitions any descriptor whose Cores exceeds
// maxPes into ceil(cores/maxPes) pieces. Each piece carries
// pes_piece = min(remaining, maxPes) cores and length
// max(1, miPerOriginalPe * pes_piece); pieces retain the original arrival
// time and submission delay. maxPes <= 0 disables splitting.
func SplitOversizeCloudlets(descriptors []CloudletDescriptor, maxPes int64) []CloudletDescriptor {
	if maxPes <= 0 {
		return descriptors
	}

	var maxID int64
	for _, d := range descriptors {
		if d.ID > maxID {
			maxID = d.ID
		}
	}
	nextID := maxID + splitIDOffset

	out := make([]CloudletDescriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if d.Cores <= maxPes {
			out = append(out, d)
			continue
		}

		miPerOriginalPe := d.LengthMI / float64(d.Cores)
		remaining := d.Cores
		for remaining > 0 {
			piece := remaining
			if piece > maxPes {
				piece = maxPes
			}
			length := miPerOriginalPe * float64(piece)
			if length < 1 {
				length = 1
			}
			out = append(out, CloudletDescriptor{
				ID:              nextID,
				ArrivalTime:     d.ArrivalTime,
				LengthMI:        length,
				Cores:           piece,
				FileSizeIn:      d.FileSizeIn,
				FileSizeOut:     d.FileSizeOut,
				SubmissionDelay: d.SubmissionDelay,
			})
			nextID++
			remaining -= piece
		}
	}
	return out
}
