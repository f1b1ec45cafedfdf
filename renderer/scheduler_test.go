package renderer

import (
	"testing"
	"time"
)

func TestNaiveScheduler(t *testing.T) {
	type spec struct {
		workers uint32
		frameH  uint32
		expRows []uint32
	}
	specs := []spec{
		{2, 10, []uint32{5, 5}},
		{3, 10, []uint32{4, 3, 3}},
		{4, 7, []uint32{4, 1, 1, 1}},
	}

	for index, s := range specs {
		sch := NaiveScheduler()
		blockAssignment := sch.Schedule(int(s.workers), s.frameH, nil)

		var total uint32
		for idx, rows := range blockAssignment {
			if rows != s.expRows[idx] {
				t.Fatalf("[spec %d] expected worker %d to be assigned %d rows; got %d", index, idx, s.expRows[idx], rows)
			}
			total += rows
		}
		if total != s.frameH {
			t.Fatalf("[spec %d] expected %d total rows; got %d", index, s.frameH, total)
		}
	}
}

func TestPerfectScheduler(t *testing.T) {
	type spec struct {
		frameH   uint32
		rTime1   time.Duration
		rTime2   time.Duration
		expRows1 uint32
		expRows2 uint32
	}
	specs := []spec{
		// First call always behaves like the naive scheduler.
		{10, time.Duration(1), time.Duration(5), 5, 5},
		// Second call should use the render times to assign rows.
		{10, time.Duration(1), time.Duration(5), 9, 1},
		// This time worker 2 performed much better.
		{10, time.Duration(5), time.Duration(1), 7, 3},
	}

	sch := PerfectScheduler()
	var stats []WorkerStat
	for index, s := range specs {
		blockAssignment := sch.Schedule(2, s.frameH, stats)

		if blockAssignment[0] != s.expRows1 {
			t.Fatalf("[spec %d] expected worker 0 to be assigned %d rows; got %d", index, s.expRows1, blockAssignment[0])
		}
		if blockAssignment[1] != s.expRows2 {
			t.Fatalf("[spec %d] expected worker 1 to be assigned %d rows; got %d", index, s.expRows2, blockAssignment[1])
		}

		stats = []WorkerStat{
			{BlockH: blockAssignment[0], RenderTime: s.rTime1},
			{BlockH: blockAssignment[1], RenderTime: s.rTime2},
		}
	}
}

func TestPerfectSchedulerClampsToFrameHeight(t *testing.T) {
	// Three slow workers each get clamped up to 1 row while the fast worker
	// is assigned floor(3.88) = 3, over-committing a 4-row frame by 2 rows.
	// The total must still equal the frame height with no worker below 1.
	sch := PerfectScheduler()
	stats := []WorkerStat{
		{BlockH: 97, RenderTime: time.Duration(1)},
		{BlockH: 1, RenderTime: time.Duration(1)},
		{BlockH: 1, RenderTime: time.Duration(1)},
		{BlockH: 1, RenderTime: time.Duration(1)},
	}

	const frameH = 4
	blockAssignment := sch.Schedule(len(stats), frameH, stats)

	var total uint32
	for idx, rows := range blockAssignment {
		if rows < 1 {
			t.Fatalf("expected worker %d to be assigned at least 1 row; got %d", idx, rows)
		}
		total += rows
	}
	if total != frameH {
		t.Fatalf("expected %d total rows; got %d", frameH, total)
	}
}
