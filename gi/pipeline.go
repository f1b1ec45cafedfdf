package gi

import "time"

// Stage is a pipeline step. Stages run to completion before the next stage
// starts; each returns its wall time for the frame statistics.
type Stage func(fc *FrameContext) (time.Duration, error)

// Pipeline is the ordered list of stages that turns one frame's scene state
// into a tone-mapped image. Stages are pluggable so callers can drop the
// probe stages for direct-only rendering or add debug taps, mirroring the
// strict data-dependency chain: visibility feeds lighting, probes feed the
// gather, the gather feeds the denoiser, everything feeds the composite.
type Pipeline struct {
	Visibility  Stage
	Direct      Stage
	ProbeUpdate Stage
	Gather      Stage
	Denoise     []Stage
	Composite   Stage
}

// StageTiming records one executed stage for the frame report.
type StageTiming struct {
	Name     string
	Duration time.Duration
}

// DefaultPipeline assembles the standard stage chain. denoiseDirect adds an
// extra filter chain over the direct buffer before the diffuse one.
func DefaultPipeline(denoiseDirect bool) *Pipeline {
	p := &Pipeline{
		Visibility:  Visibility,
		Direct:      DirectLighting,
		ProbeUpdate: UpdateProbes,
		Gather:      IndirectGather,
		Denoise:     []Stage{DenoiseDiffuse},
		Composite:   Composite,
	}
	if denoiseDirect {
		p.Denoise = append([]Stage{DenoiseDirect}, p.Denoise...)
	}
	return p
}

// Render executes the pipeline for one frame. Each stage forms a full
// barrier: no stage begins until every work unit of the previous stage has
// completed, and the probe update finishes before the gather reads the grid.
func (p *Pipeline) Render(fc *FrameContext) ([]StageTiming, error) {
	type step struct {
		name  string
		stage Stage
	}

	steps := make([]step, 0, 5+len(p.Denoise))
	steps = append(steps,
		step{"visibility", p.Visibility},
		step{"direct", p.Direct},
		step{"probe-update", p.ProbeUpdate},
		step{"gather", p.Gather},
	)
	for i, st := range p.Denoise {
		name := "denoise"
		if len(p.Denoise) > 1 {
			name = "denoise-" + string(rune('0'+i))
		}
		steps = append(steps, step{name, st})
	}
	steps = append(steps, step{"composite", p.Composite})

	timings := make([]StageTiming, 0, len(steps))
	for _, s := range steps {
		if s.stage == nil {
			continue
		}
		took, err := s.stage(fc)
		if err != nil {
			return timings, err
		}
		timings = append(timings, StageTiming{Name: s.name, Duration: took})
	}

	return timings, nil
}
