package gi

import "github.com/borealis-render/borealis/types"

// DirectionalLight is a sun-style light. A zero radiance vector disables the
// light; no separate flag is needed.
type DirectionalLight struct {
	// Direction the light travels in (from the light toward the scene).
	Direction types.Vec3
	Radiance  types.Vec3
}

func (l DirectionalLight) Enabled() bool {
	return l.Radiance != types.Vec3{}
}

// PointLight is an omnidirectional emitter with inverse-square falloff.
type PointLight struct {
	Position types.Vec3
	Radiance types.Vec3
}

// CameraRays carries the primary-ray generator state: the eye position and
// the ray directions at the four frustum corners (top-left, top-right,
// bottom-left, bottom-right). Per-pixel rays are produced by bilinear
// interpolation of the corners.
type CameraRays struct {
	Origin  types.Vec3
	Corners [4]types.Vec3
}

// Globals is the per-frame uniform state shared by all pipeline stages. It
// is passed explicitly into each stage entry point; stages keep no hidden
// global state.
type Globals struct {
	Camera      CameraRays
	Sun         DirectionalLight
	PointLights []PointLight

	// Sky radiance used for primary-ray misses and as the miss term of
	// probe and gather rays.
	Sky types.Vec3

	// Monotonic frame counter. Drives sample-sequence seeding and probe
	// update amortization.
	Frame uint32

	// Sampling knobs.
	ShadowRays uint32 // shadow rays per light per pixel
	ProbeRays  uint32 // radiance rays per probe per update cycle

	// Probe update cadence: each cycle updates 1/ProbeCadence of the grid,
	// round-robin by frame counter. 1 (or 0) updates every probe each
	// frame. This bounds how stale a probe read can be.
	ProbeCadence uint32

	// Temporal blend factor for new probe estimates. Small values trade
	// response latency for stability under heavy noise.
	ProbeBlend float32

	// Bias added to the normal-alignment probe weight so that probes
	// slightly behind the shading plane still contribute.
	ProbeBias float32
}

func (g *Globals) shadowRays() uint32 {
	if g.ShadowRays == 0 {
		return 1
	}
	return g.ShadowRays
}

func (g *Globals) probeRays() uint32 {
	if g.ProbeRays == 0 {
		return 1
	}
	return g.ProbeRays
}
