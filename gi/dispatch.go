package gi

import (
	"sync"
	"time"
)

// RowBlock is a contiguous span of frame rows assigned to one worker.
type RowBlock struct {
	Y uint32
	H uint32
}

// EvenBlocks splits height rows into count near-equal blocks. Used as the
// assignment for the first frame, before per-worker timing feedback exists.
func EvenBlocks(height, count int) []RowBlock {
	if count < 1 {
		count = 1
	}
	if count > height {
		count = height
	}
	blocks := make([]RowBlock, count)
	y := 0
	for i := range blocks {
		h := height / count
		if i < height%count {
			h++
		}
		blocks[i] = RowBlock{Y: uint32(y), H: uint32(h)}
		y += h
	}
	return blocks
}

// forEachRow dispatches fn once per frame row, fanning the assigned blocks
// out to one goroutine each. It returns only after every row completed, so a
// call forms a full barrier between the writing stage and any consumer. The
// returned durations are the per-block wall times used for scheduling
// feedback.
func forEachRow(blocks []RowBlock, fn func(y int)) []time.Duration {
	times := make([]time.Duration, len(blocks))

	var wg sync.WaitGroup
	wg.Add(len(blocks))
	for i, blk := range blocks {
		go func(i int, blk RowBlock) {
			defer wg.Done()
			start := time.Now()
			for y := int(blk.Y); y < int(blk.Y+blk.H); y++ {
				fn(y)
			}
			times[i] = time.Since(start)
		}(i, blk)
	}
	wg.Wait()

	return times
}

// forEachIndex dispatches fn for every index in [0, n), splitting the range
// across the same number of workers as the row-block assignment. Used for
// per-probe work where rows do not apply.
func forEachIndex(n, workers int, fn func(i int)) {
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	if n == 0 {
		return
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		go func(start int) {
			defer wg.Done()
			end := start + chunk
			if end > n {
				end = n
			}
			for i := start; i < end; i++ {
				fn(i)
			}
		}(w * chunk)
	}
	wg.Wait()
}
