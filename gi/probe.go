package gi

import (
	"math"
	"time"

	"github.com/borealis-render/borealis/types"
)

// Irradiance probes cache incident radiance at fixed grid locations as
// order-2 spherical harmonics: 9 RGB coefficients per probe. Probe state is
// always a weighted temporal average of historical update cycles, never a
// raw single-cycle estimate, which is what lets a couple of rays per probe
// per frame converge to a stable value.

const shCoeffCount = 9

// Real SH basis constants for bands l=0..2.
var shBasisScale = [shCoeffCount]float32{
	0.282095,
	0.488603, 0.488603, 0.488603,
	1.092548, 1.092548, 0.315392, 1.092548, 0.546274,
}

// Cosine-lobe convolution factors (divided by pi) per coefficient, used to
// turn a radiance SH into diffuse irradiance.
var shConvolution = [shCoeffCount]float32{
	1,
	2.0 / 3, 2.0 / 3, 2.0 / 3,
	0.25, 0.25, 0.25, 0.25, 0.25,
}

func shBasis(d types.Vec3) [shCoeffCount]float32 {
	x, y, z := d[0], d[1], d[2]
	return [shCoeffCount]float32{
		shBasisScale[0],
		shBasisScale[1] * y,
		shBasisScale[2] * z,
		shBasisScale[3] * x,
		shBasisScale[4] * x * y,
		shBasisScale[5] * y * z,
		shBasisScale[6] * (3*z*z - 1),
		shBasisScale[7] * x * z,
		shBasisScale[8] * (x*x - y*y),
	}
}

// SHProbe is a single probe's radiance field.
type SHProbe struct {
	Coeff [shCoeffCount]types.Vec3
}

// Accumulate projects one radiance sample arriving from direction dir onto
// the probe's basis. weight carries the Monte Carlo estimator constant
// (4*pi / sample count for uniform sphere sampling).
func (p *SHProbe) Accumulate(dir, radiance types.Vec3, weight float32) {
	basis := shBasis(dir)
	contribution := radiance.ClampNeg().Mul(weight)
	for k := 0; k < shCoeffCount; k++ {
		p.Coeff[k] = p.Coeff[k].Add(contribution.Mul(basis[k]))
	}
}

// Irradiance evaluates the cosine-convolved probe field along the surface
// normal and returns diffuse irradiance scaled by 1/pi, clamped to zero or
// above. For a probe holding constant ambient radiance C this returns C for
// any normal.
func (p *SHProbe) Irradiance(n types.Vec3) types.Vec3 {
	basis := shBasis(n)
	var out types.Vec3
	for k := 0; k < shCoeffCount; k++ {
		out = out.Add(p.Coeff[k].Mul(basis[k] * shConvolution[k]))
	}
	return out.ClampNeg()
}

func lerpProbe(a, b SHProbe, t float32) SHProbe {
	var out SHProbe
	for k := 0; k < shCoeffCount; k++ {
		out.Coeff[k] = types.LerpVec3(a.Coeff[k], b.Coeff[k], t)
	}
	return out
}

// GridConfig describes the probe volume: world-space origin, per-axis cell
// size and probe counts per axis.
type GridConfig struct {
	Origin   types.Vec3
	CellSize types.Vec3
	Extent   [3]int
}

func (c GridConfig) count() int {
	return c.Extent[0] * c.Extent[1] * c.Extent[2]
}

// ProbeGrid owns the full probe set. It is allocated at GI-volume setup,
// persists across frames and is mutated incrementally by the probe updater;
// steady-state rendering never reallocates it.
type ProbeGrid struct {
	cfg     GridConfig
	probes  []SHProbe
	touched []bool
}

func NewProbeGrid(cfg GridConfig) *ProbeGrid {
	for axis := 0; axis < 3; axis++ {
		if cfg.Extent[axis] < 1 {
			cfg.Extent[axis] = 1
		}
		if cfg.CellSize[axis] <= 0 {
			cfg.CellSize[axis] = 1
		}
	}
	return &ProbeGrid{
		cfg:     cfg,
		probes:  make([]SHProbe, cfg.count()),
		touched: make([]bool, cfg.count()),
	}
}

func (g *ProbeGrid) Config() GridConfig {
	return g.cfg
}

func (g *ProbeGrid) Count() int {
	return len(g.probes)
}

// Index maps integer grid coordinates to the flat probe index.
func (g *ProbeGrid) Index(x, y, z int) int {
	return x + g.cfg.Extent[0]*(y+g.cfg.Extent[1]*z)
}

func (g *ProbeGrid) inBounds(x, y, z int) bool {
	return x >= 0 && x < g.cfg.Extent[0] &&
		y >= 0 && y < g.cfg.Extent[1] &&
		z >= 0 && z < g.cfg.Extent[2]
}

// Position returns the probe's world-space location.
func (g *ProbeGrid) Position(index int) types.Vec3 {
	ex, ey := g.cfg.Extent[0], g.cfg.Extent[1]
	x := index % ex
	y := (index / ex) % ey
	z := index / (ex * ey)
	return g.cfg.Origin.Add(types.XYZ(
		float32(x)*g.cfg.CellSize[0],
		float32(y)*g.cfg.CellSize[1],
		float32(z)*g.cfg.CellSize[2],
	))
}

// Probe returns the probe's current blended state.
func (g *ProbeGrid) Probe(index int) SHProbe {
	return g.probes[index]
}

// SetProbe overwrites a probe's state directly, bypassing temporal blending.
// Intended for grid seeding and tests.
func (g *ProbeGrid) SetProbe(index int, p SHProbe) {
	g.probes[index] = p
	g.touched[index] = true
}

// Blend merges a fresh per-cycle estimate into the probe history with an
// exponential moving average. The first estimate a probe ever receives is
// adopted outright so a cold grid does not spend dozens of cycles fading in
// from black.
func (g *ProbeGrid) Blend(index int, estimate SHProbe, alpha float32) {
	if !g.touched[index] {
		g.probes[index] = estimate
		g.touched[index] = true
		return
	}
	g.probes[index] = lerpProbe(g.probes[index], estimate, clamp01(alpha))
}

// Irradiance evaluates the probe's diffuse irradiance along n.
func (g *ProbeGrid) Irradiance(index int, n types.Vec3) types.Vec3 {
	return g.probes[index].Irradiance(n)
}

// Sample slot used to seed probe-ray sequences, kept disjoint from the
// per-pixel light slots used by the direct-lighting stage.
const probeRaySlot = 1 << 30

// UpdateProbes runs one probe-update cycle: for the grid slice scheduled
// this frame it traces uniform-sphere radiance rays from each probe
// location, projects them onto the probe's SH basis and temporally blends
// the estimate into the probe history. The cycle completes before the stage
// returns, so gather-stage reads of the same cycle never observe a
// partially written probe.
func UpdateProbes(fc *FrameContext) (time.Duration, error) {
	start := time.Now()
	grid := fc.Probes
	if grid == nil || grid.Count() == 0 {
		return time.Since(start), nil
	}

	cadence := fc.Globals.ProbeCadence
	if cadence == 0 {
		cadence = 1
	}
	phase := fc.Globals.Frame % cadence

	var pending []int
	for i := 0; i < grid.Count(); i++ {
		if uint32(i)%cadence == phase {
			pending = append(pending, i)
		}
	}

	alpha := fc.Globals.ProbeBlend
	if alpha <= 0 {
		alpha = 0.02
	}

	forEachIndex(len(pending), fc.workers(), func(pi int) {
		index := pending[pi]
		estimate := fc.probeEstimate(index)
		grid.Blend(index, estimate, alpha)
	})

	return time.Since(start), nil
}

// probeEstimate builds a single-cycle SH radiance estimate for one probe.
func (fc *FrameContext) probeEstimate(index int) SHProbe {
	rays := fc.Globals.probeRays()
	origin := fc.Probes.Position(index)
	weight := 4 * float32(math.Pi) / float32(rays)

	var estimate SHProbe
	for s := uint32(0); s < rays; s++ {
		sample := fc.Samples.Sample4D(uint32(index), fc.Globals.Frame, probeRaySlot, s)
		dir := uniformSphere(sample[0], sample[1])
		radiance := fc.incomingRadiance(Ray{
			Origin: origin,
			Dir:    dir,
			TMin:   0,
			TMax:   MaxRayDist,
			Kind:   ProbeRay,
		})
		estimate.Accumulate(dir, radiance, weight)
	}
	return estimate
}

// incomingRadiance shades a probe ray: sky on miss, emission plus
// single-sample direct diffuse lighting on hit. Specular response is skipped
// for probe rays; the cache only feeds the indirect diffuse term.
func (fc *FrameContext) incomingRadiance(ray Ray) types.Vec3 {
	hit, ok := fc.Query.Trace(ray, TraceClosest, MaskAll)
	if !ok {
		return fc.Globals.Sky
	}

	sp := fc.Geometry.Surface(hit.Instance, hit.Primitive, hit.Bary)
	n := sp.Normal.Normalize()
	if n.Dot(ray.Dir) > 0 {
		n = n.Mul(-1)
	}
	p := hit.Point(ray)
	diffuse := sp.Material.Albedo.ClampNeg().Mul(1 - clamp01(sp.Material.Metalness))

	radiance := sp.Material.Emissive.ClampNeg()
	radiance = radiance.Add(fc.directDiffuse(p, n, diffuse))
	return radiance
}

// directDiffuse evaluates one-sample direct lighting with a Lambert-only
// response.
func (fc *FrameContext) directDiffuse(p, n, diffuse types.Vec3) types.Vec3 {
	var sum types.Vec3
	origin := p.Add(n.Mul(shadowRayOffset))

	if fc.Globals.Sun.Enabled() {
		l := fc.Globals.Sun.Direction.Mul(-1).Normalize()
		if att := clampPos(n.Dot(l)); att > 0 {
			ray := Ray{Origin: origin, Dir: l, TMin: 0, TMax: MaxRayDist, Kind: ShadowRay}
			if !fc.Query.Occluded(ray, MaskAll) {
				sum = sum.Add(diffuse.MulVec(fc.Globals.Sun.Radiance.ClampNeg()).Mul(att))
			}
		}
	}

	for _, pl := range fc.Globals.PointLights {
		toLight := pl.Position.Sub(p)
		dist := toLight.Len()
		if dist < shadowRayOffset {
			continue
		}
		l := toLight.Mul(1 / dist)
		att := clampPos(n.Dot(l))
		if att <= 0 {
			continue
		}
		ray := Ray{Origin: origin, Dir: l, TMin: 0, TMax: dist - 2*shadowRayOffset, Kind: ShadowRay}
		if fc.Query.Occluded(ray, MaskAll) {
			continue
		}
		falloff := 1 / (dist * dist)
		sum = sum.Add(diffuse.MulVec(pl.Radiance.ClampNeg()).Mul(att * falloff))
	}

	return sum
}

// uniformSphere maps two uniform variates to a direction on the unit sphere.
func uniformSphere(u, v float32) types.Vec3 {
	z := 1 - 2*u
	r := float32(math.Sqrt(math.Max(0, float64(1-z*z))))
	phi := 2 * math.Pi * float64(v)
	return types.XYZ(r*float32(math.Cos(phi)), r*float32(math.Sin(phi)), z)
}
