// Package renderer drives the GI pipeline frame by frame: it schedules row
// blocks over a worker pool, runs the stage chain, and converts the
// tone-mapped output into an RGBA8 framebuffer for display or export.
package renderer

import (
	"image"
	"image/png"
	"io"
	"runtime"
	"time"

	"github.com/borealis-render/borealis/gi"
	"github.com/borealis-render/borealis/log"
	"github.com/borealis-render/borealis/sampling"
	"github.com/borealis-render/borealis/scene"
)

var logger = log.New("renderer")

type Renderer interface {
	// Render frames until the configured frame count is reached.
	Render() error

	// Shutdown the renderer and release any attached resources.
	Close()

	// Get statistics for the last rendered frame.
	Stats() FrameStats

	// FrameBuffer returns the RGBA8 contents of the last rendered frame.
	FrameBuffer() []uint8
}

type defaultRenderer struct {
	options   Options
	scheduler BlockScheduler
	camera    *scene.Camera

	fc       *gi.FrameContext
	pipeline *gi.Pipeline

	framebuffer []uint8
	frame       uint32

	stats     FrameStats
	lastStats []WorkerStat
}

// NewDefault creates a renderer over the given scene, camera, frame globals
// and probe grid. A nil scheduler selects the feedback-driven one.
func NewDefault(sc *scene.Scene, cam *scene.Camera, globals gi.Globals, probes *gi.ProbeGrid, scheduler BlockScheduler, opts Options) (Renderer, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if cam == nil {
		return nil, ErrCameraNotDefined
	}
	if probes == nil {
		return nil, ErrProbesNotDefined
	}
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, ErrInvalidFrameDims
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if uint32(opts.Workers) > opts.FrameH {
		opts.Workers = int(opts.FrameH)
	}
	if scheduler == nil {
		scheduler = PerfectScheduler()
	}

	cam.SetupProjection(float32(opts.FrameW) / float32(opts.FrameH))

	fc := gi.NewFrameContext(
		int(opts.FrameW), int(opts.FrameH), opts.Workers,
		sc, sc, sampling.New(0x9e3779b9), probes,
	)
	fc.Globals = globals

	r := &defaultRenderer{
		options:     opts,
		scheduler:   scheduler,
		camera:      cam,
		fc:          fc,
		pipeline:    gi.DefaultPipeline(opts.DenoiseDirect),
		framebuffer: make([]uint8, opts.FrameW*opts.FrameH*4),
	}
	logger.Noticef("rendering %dx%d frame with %d workers", opts.FrameW, opts.FrameH, opts.Workers)
	return r, nil
}

func (r *defaultRenderer) Render() error {
	frames := r.options.FrameCount
	if frames == 0 {
		frames = 1
	}
	for i := uint32(0); i < frames; i++ {
		if err := r.renderFrame(); err != nil {
			return err
		}
	}
	return nil
}

func (r *defaultRenderer) Close() {}

func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

func (r *defaultRenderer) FrameBuffer() []uint8 {
	return r.framebuffer
}

// renderFrame runs the full pipeline once and updates the framebuffer and
// per-frame statistics. Consecutive calls accumulate probe history.
func (r *defaultRenderer) renderFrame() error {
	start := time.Now()

	heights := r.scheduler.Schedule(r.options.Workers, r.options.FrameH, r.lastStats)
	blocks := make([]gi.RowBlock, 0, len(heights))
	var y uint32
	for _, h := range heights {
		blocks = append(blocks, gi.RowBlock{Y: y, H: h})
		y += h
	}

	r.fc.Blocks = blocks
	r.fc.ResetBlockTimes()
	r.fc.Globals.Camera = r.camera.Rays()
	r.fc.Globals.Frame = r.frame

	timings, err := r.pipeline.Render(r.fc)
	if err != nil {
		return err
	}
	r.frame++

	r.collectStats(blocks, timings, time.Since(start))
	r.blitFrame()
	return nil
}

func (r *defaultRenderer) collectStats(blocks []gi.RowBlock, timings []gi.StageTiming, total time.Duration) {
	workers := make([]WorkerStat, len(blocks))
	for i, blk := range blocks {
		workers[i] = WorkerStat{
			BlockY:       blk.Y,
			BlockH:       blk.H,
			FramePercent: 100 * float32(blk.H) / float32(r.options.FrameH),
		}
		if i < len(r.fc.BlockTimes) {
			workers[i].RenderTime = r.fc.BlockTimes[i]
		}
	}
	r.stats = FrameStats{
		Workers:    workers,
		Stages:     timings,
		RenderTime: total,
	}
	r.lastStats = workers
}

// blitFrame converts the tone-mapped [0,1] output into RGBA8.
func (r *defaultRenderer) blitFrame() {
	for i, c := range r.fc.Output {
		r.framebuffer[i*4] = channelByte(c[0])
		r.framebuffer[i*4+1] = channelByte(c[1])
		r.framebuffer[i*4+2] = channelByte(c[2])
		r.framebuffer[i*4+3] = 255
	}
}

func channelByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// WritePNG encodes the renderer's current framebuffer to w.
func WritePNG(r Renderer, w io.Writer, frameW, frameH uint32) error {
	img := image.NewRGBA(image.Rect(0, 0, int(frameW), int(frameH)))
	copy(img.Pix, r.FrameBuffer())
	return png.Encode(w, img)
}
