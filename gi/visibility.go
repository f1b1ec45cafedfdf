package gi

import (
	"time"

	"github.com/borealis-render/borealis/types"
)

// Visibility traces one primary ray per output pixel and populates the
// geometry buffer. A miss is a normal outcome: it writes the sky term to the
// emissive channel, zeroes albedo and normal, and stores the no-surface depth
// sentinel so later stages skip shading for that pixel.
func Visibility(fc *FrameContext) (time.Duration, error) {
	start := time.Now()
	gb := fc.GBuffer

	fc.addBlockTimes(forEachRow(fc.Blocks, func(y int) {
		for x := 0; x < gb.Width; x++ {
			idx := gb.Index(x, y)
			ray := fc.primaryRay(x, y)

			hit, ok := fc.Query.Trace(ray, TraceClosest, MaskAll)
			if !ok {
				gb.Albedo[idx] = types.Vec4{}
				gb.NormalDepth[idx] = types.Vec4{0, 0, 0, NoSurfaceDepth}
				gb.MetalRough[idx] = types.Vec2{}
				gb.Emissive[idx] = fc.Globals.Sky
				gb.Direct[idx] = types.Vec3{}
				gb.Diffuse[idx] = types.Vec3{}
				continue
			}

			sp := fc.Geometry.Surface(hit.Instance, hit.Primitive, hit.Bary)
			n := sp.Normal.Normalize()

			gb.Albedo[idx] = sp.Material.Albedo.ClampNeg().Vec4(1)
			gb.NormalDepth[idx] = n.Vec4(hit.T)
			gb.MetalRough[idx] = types.XY(sp.Material.Metalness, sp.Material.Roughness)
			gb.Emissive[idx] = sp.Material.Emissive.ClampNeg()
			gb.Direct[idx] = types.Vec3{}
			gb.Diffuse[idx] = types.Vec3{}
		}
	}))

	return time.Since(start), nil
}
