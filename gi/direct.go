package gi

import (
	"math"
	"time"

	"github.com/borealis-render/borealis/types"
)

const (
	// Shadow ray origins are nudged along the surface normal to escape
	// self-intersection with the originating triangle.
	shadowRayOffset = 1e-3

	// Cone radius for shadow-ray jitter. Softens penumbrae and breaks up
	// banding when combined with the low-discrepancy sample source.
	shadowJitterRadius = 0.02
)

// DirectLighting evaluates direct illumination for every valid surface pixel:
// per enabled light, cosine attenuation, a batch of jittered shadow rays for
// fractional visibility, and the microfacet BRDF.
func DirectLighting(fc *FrameContext) (time.Duration, error) {
	start := time.Now()
	gb := fc.GBuffer

	fc.addBlockTimes(forEachRow(fc.Blocks, func(y int) {
		for x := 0; x < gb.Width; x++ {
			idx := gb.Index(x, y)
			if !gb.Valid(idx) {
				continue
			}

			nd := gb.NormalDepth[idx]
			n := nd.Vec3()
			ray := fc.primaryRay(x, y)
			p := ray.Origin.Add(ray.Dir.Mul(nd[3]))
			view := ray.Dir.Mul(-1)

			mr := gb.MetalRough[idx]
			mat := MaterialSample{
				Albedo:    gb.Albedo[idx].Vec3(),
				Metalness: mr[0],
				Roughness: mr[1],
			}

			var sum types.Vec3
			if fc.Globals.Sun.Enabled() {
				l := fc.Globals.Sun.Direction.Mul(-1).Normalize()
				sum = sum.Add(fc.lightContribution(idx, 0, p, n, view, l, MaxRayDist, fc.Globals.Sun.Radiance, mat))
			}
			for li, pl := range fc.Globals.PointLights {
				toLight := pl.Position.Sub(p)
				dist := toLight.Len()
				if dist < shadowRayOffset {
					continue
				}
				l := toLight.Mul(1 / dist)
				falloff := 1 / (dist * dist)
				sum = sum.Add(fc.lightContribution(idx, uint32(li+1), p, n, view, l, dist, pl.Radiance.Mul(falloff), mat))
			}

			gb.Direct[idx] = sum.ClampNeg()
		}
	}))

	return time.Since(start), nil
}

// lightContribution computes one light's radiance arriving at the pixel,
// scaled by cosine attenuation and the unshadowed fraction of the jittered
// shadow-ray batch.
func (fc *FrameContext) lightContribution(pixel int, lightSlot uint32, p, n, view, l types.Vec3, dist float32, radiance types.Vec3, mat MaterialSample) types.Vec3 {
	att := clampPos(n.Dot(l))
	if att <= 0 {
		return types.Vec3{}
	}

	rays := fc.Globals.shadowRays()
	origin := p.Add(n.Mul(shadowRayOffset))
	maxT := dist
	if maxT < MaxRayDist {
		maxT -= 2 * shadowRayOffset
	}

	unshadowed := uint32(0)
	for s := uint32(0); s < rays; s++ {
		sample := fc.Samples.Sample4D(uint32(pixel), fc.Globals.Frame, lightSlot, s)
		ray := Ray{
			Origin: origin,
			Dir:    jitterDir(l, sample[0], sample[1], shadowJitterRadius),
			TMin:   0,
			TMax:   maxT,
			Kind:   ShadowRay,
		}
		if !fc.Query.Occluded(ray, MaskAll) {
			unshadowed++
		}
	}
	if unshadowed == 0 {
		return types.Vec3{}
	}
	visibility := float32(unshadowed) / float32(rays)

	return EvalBRDF(n, l, view, mat).MulVec(radiance.ClampNeg()).Mul(att * visibility)
}

// jitterDir perturbs dir inside a cone by displacing it within a disk of the
// given radius perpendicular to the direction.
func jitterDir(dir types.Vec3, u, v, radius float32) types.Vec3 {
	t, b := orthonormalBasis(dir)
	r := radius * float32(math.Sqrt(float64(u)))
	phi := 2 * math.Pi * float64(v)
	offset := t.Mul(r * float32(math.Cos(phi))).Add(b.Mul(r * float32(math.Sin(phi))))
	return dir.Add(offset).Normalize()
}

// orthonormalBasis builds a tangent frame around a unit vector.
func orthonormalBasis(n types.Vec3) (types.Vec3, types.Vec3) {
	up := types.XYZ(1, 0, 0)
	if abs32(n[0]) > 0.9 {
		up = types.XYZ(0, 1, 0)
	}
	t := up.Cross(n).Normalize()
	return t, n.Cross(t)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
