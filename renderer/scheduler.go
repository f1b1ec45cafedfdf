package renderer

import "math"

// The BlockScheduler interface is implemented by all block scheduling
// algorithms. Schedulers split the frame into horizontal row blocks, one per
// worker, using feedback collected from previous frames.
type BlockScheduler interface {
	// Schedule returns the block height assignment for each worker. The
	// stats slice holds the previous frame's per-worker measurements and
	// is empty on the first frame.
	Schedule(numWorkers int, frameH uint32, stats []WorkerStat) []uint32
}

// The naive scheduler splits the frame evenly. Workers assigned to dense
// scene regions will straggle behind the rest.
type naiveScheduler struct {
	blockAssignment []uint32
}

func NaiveScheduler() BlockScheduler {
	return &naiveScheduler{}
}

func (sch *naiveScheduler) Schedule(numWorkers int, frameH uint32, _ []WorkerStat) []uint32 {
	if len(sch.blockAssignment) != numWorkers {
		sch.blockAssignment = make([]uint32, numWorkers)
	}

	rows := frameH / uint32(numWorkers)
	var assigned uint32
	for idx := range sch.blockAssignment {
		sch.blockAssignment[idx] = rows
		assigned += rows
	}
	sch.blockAssignment[0] += frameH - assigned
	return sch.blockAssignment
}

// The perfect scheduler assumes the volume of tracing work between two
// subsequent frames is approximately the same and sizes each worker's block
// proportionally to its measured rows-per-unit-time from the previous frame.
type perfectScheduler struct {
	naive           BlockScheduler
	blockAssignment []uint32
}

func PerfectScheduler() BlockScheduler {
	return &perfectScheduler{naive: NaiveScheduler()}
}

func (sch *perfectScheduler) Schedule(numWorkers int, frameH uint32, stats []WorkerStat) []uint32 {
	// Without feedback, or after a worker-count change, fall back to an
	// even split.
	if len(stats) != numWorkers {
		sch.blockAssignment = nil
		return sch.naive.Schedule(numWorkers, frameH, nil)
	}
	if len(sch.blockAssignment) != numWorkers {
		sch.blockAssignment = make([]uint32, numWorkers)
	}

	var total float64
	for _, st := range stats {
		total += float64(st.BlockH) / float64(st.RenderTime)
	}

	scaler := float64(frameH) / total
	var scheduledRows uint32
	for idx, st := range stats {
		rows := float64(st.BlockH) / float64(st.RenderTime) * scaler
		sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(rows)))
		scheduledRows += sch.blockAssignment[idx]
	}

	// The 1-row minimum can push the total past the frame height when many
	// slow workers get clamped up; trim the excess from the larger blocks.
	for idx := range sch.blockAssignment {
		if scheduledRows <= frameH {
			break
		}
		if sch.blockAssignment[idx] > 1 {
			trim := sch.blockAssignment[idx] - 1
			if trim > scheduledRows-frameH {
				trim = scheduledRows - frameH
			}
			sch.blockAssignment[idx] -= trim
			scheduledRows -= trim
		}
	}

	// In case rows don't add up to the frame height append the missing
	// ones to the first worker.
	sch.blockAssignment[0] += frameH - scheduledRows
	return sch.blockAssignment
}
