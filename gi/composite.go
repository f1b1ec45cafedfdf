package gi

import (
	"time"

	"github.com/borealis-render/borealis/types"
)

// Composite combines the frame buffers into final radiance and tone-maps it:
//
//	combined = albedo*(direct + filteredDiffuse) + emissive
//	output   = combined / (1 + combined)
//
// The mapping is monotonic and invertible, which the tests exploit. Output
// alpha is always 1.
func Composite(fc *FrameContext) (time.Duration, error) {
	start := time.Now()
	gb := fc.GBuffer

	fc.addBlockTimes(forEachRow(fc.Blocks, func(y int) {
		for x := 0; x < gb.Width; x++ {
			idx := gb.Index(x, y)

			albedo := gb.Albedo[idx].Vec3()
			combined := albedo.MulVec(gb.Direct[idx].Add(fc.FilteredDiffuse[idx]))
			combined = combined.Add(gb.Emissive[idx]).ClampNeg()

			fc.Output[idx] = Tonemap(combined).Vec4(1)
		}
	}))

	return time.Since(start), nil
}

// Tonemap applies the per-channel Reinhard operator c/(1+c), mapping
// [0, inf) onto [0, 1).
func Tonemap(c types.Vec3) types.Vec3 {
	c = c.ClampNeg()
	return types.XYZ(c[0]/(1+c[0]), c[1]/(1+c[1]), c[2]/(1+c[2]))
}

// TonemapInv inverts Tonemap: c = t/(1-t). Inputs at or above 1 clamp just
// below it to keep the result finite.
func TonemapInv(t types.Vec3) types.Vec3 {
	const maxT = 1 - 1e-7
	var out types.Vec3
	for i := 0; i < 3; i++ {
		v := t[i]
		if v < 0 {
			v = 0
		}
		if v > maxT {
			v = maxT
		}
		out[i] = v / (1 - v)
	}
	return out
}
