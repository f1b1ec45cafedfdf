package renderer

import (
	"time"

	"github.com/borealis-render/borealis/gi"
)

type WorkerStat struct {
	// Assigned row block.
	BlockY uint32
	BlockH uint32

	// Percentage of total frame area the block represents.
	FramePercent float32

	// Render time for the assigned block during the visibility and
	// shading stages.
	RenderTime time.Duration
}

type FrameStats struct {
	// Individual worker stats.
	Workers []WorkerStat

	// Per-stage timings in pipeline order.
	Stages []gi.StageTiming

	// Total render time for the entire frame.
	RenderTime time.Duration
}
