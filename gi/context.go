package gi

import (
	"time"

	"github.com/borealis-render/borealis/types"
)

// FrameContext carries everything a pipeline stage needs for one frame: the
// per-frame uniform state, the external collaborators, and the buffers the
// stages read and write. There are no ambient bindings; a stage sees only
// what the context hands it.
//
// Buffer ownership: GBuffer, FilteredDiffuse and Output belong exclusively
// to this context and are rewritten every frame. Probes is shared state that
// outlives frames; only the probe-update stage mutates it, and that stage
// completes before the gather stage reads it within a cycle.
type FrameContext struct {
	Globals Globals

	Query    RayQuery
	Geometry Geometry
	Samples  SampleSource

	GBuffer *GBuffer
	Probes  *ProbeGrid

	// FilteredDiffuse receives the denoiser output. Same layout as
	// GBuffer.Diffuse.
	FilteredDiffuse []types.Vec3

	// Output receives the tone-mapped composite, RGBA with alpha 1.
	Output []types.Vec4

	// Blocks assigns frame rows to workers. Set by the renderer from
	// scheduling feedback; EvenBlocks is a sensible default.
	Blocks []RowBlock

	// BlockTimes accumulates, across all per-pixel stages of the frame,
	// the wall time each block took, enabling the renderer to rebalance
	// the next frame. The renderer resets it between frames.
	BlockTimes []time.Duration

	// denoiser scratch, lazily sized
	denoiseScratch []types.Vec3
}

// NewFrameContext allocates the frame-owned buffers for the given output
// resolution and wires the collaborators.
func NewFrameContext(width, height, workers int, query RayQuery, geom Geometry, samples SampleSource, probes *ProbeGrid) *FrameContext {
	return &FrameContext{
		Query:           query,
		Geometry:        geom,
		Samples:         samples,
		GBuffer:         NewGBuffer(width, height),
		Probes:          probes,
		FilteredDiffuse: make([]types.Vec3, width*height),
		Output:          make([]types.Vec4, width*height),
		Blocks:          EvenBlocks(height, workers),
	}
}

// ResetBlockTimes clears the accumulated per-block timings. Call at the
// start of each frame, before the first per-pixel stage runs.
func (fc *FrameContext) ResetBlockTimes() {
	fc.BlockTimes = fc.BlockTimes[:0]
}

func (fc *FrameContext) addBlockTimes(times []time.Duration) {
	if len(fc.BlockTimes) != len(times) {
		fc.BlockTimes = append(fc.BlockTimes[:0], times...)
		return
	}
	for i, t := range times {
		fc.BlockTimes[i] += t
	}
}

func (fc *FrameContext) workers() int {
	if len(fc.Blocks) == 0 {
		return 1
	}
	return len(fc.Blocks)
}

// primaryRay builds the camera ray through pixel (x, y) by bilinear
// interpolation of the frustum corner rays.
func (fc *FrameContext) primaryRay(x, y int) Ray {
	u := (float32(x) + 0.5) / float32(fc.GBuffer.Width)
	v := (float32(y) + 0.5) / float32(fc.GBuffer.Height)

	c := &fc.Globals.Camera
	top := types.LerpVec3(c.Corners[0], c.Corners[1], u)
	bottom := types.LerpVec3(c.Corners[2], c.Corners[3], u)

	return Ray{
		Origin: c.Origin,
		Dir:    types.LerpVec3(top, bottom, v).Normalize(),
		TMin:   0,
		TMax:   MaxRayDist,
		Kind:   PrimaryRay,
	}
}
