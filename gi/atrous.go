package gi

import (
	"math"
	"time"

	"github.com/borealis-render/borealis/types"
)

// Edge-aware à-trous filter. Each pass convolves a fixed 5-tap binomial
// kernel along one axis, but the tap stride doubles between stride levels
// (1, 2, 4) so the effective support grows geometrically at constant cost.
// The normal/depth buffer guides edge-stopping weights: taps across a depth
// or normal discontinuity contribute nothing, so the filter never blurs
// across geometric edges.

var atrousKernel = [5]float32{1.0 / 16, 4.0 / 16, 6.0 / 16, 4.0 / 16, 1.0 / 16}

var atrousStrides = [3]int{1, 2, 4}

const (
	// Depth similarity falls off with this sigma (scaled by stride, since
	// wider taps legitimately span more depth range on slanted surfaces).
	atrousDepthSigma = 0.35

	// Hard rejection bounds. Any tap beyond either threshold gets exactly
	// zero weight.
	atrousDepthCutoff  = 3 * atrousDepthSigma
	atrousNormalCutoff = 0.2 // minimum dot(centerN, tapN)

	atrousNormalPower = 8
)

// DenoiseDiffuse filters the noisy indirect diffuse buffer into the frame's
// FilteredDiffuse target.
func DenoiseDiffuse(fc *FrameContext) (time.Duration, error) {
	start := time.Now()
	fc.filterBuffer(fc.GBuffer.Diffuse, fc.FilteredDiffuse)
	return time.Since(start), nil
}

// DenoiseDirect runs the same filter chain over the direct-lighting buffer
// in place. Useful at very low shadow-ray counts.
func DenoiseDirect(fc *FrameContext) (time.Duration, error) {
	start := time.Now()
	fc.filterBuffer(fc.GBuffer.Direct, fc.GBuffer.Direct)
	return time.Since(start), nil
}

// filterBuffer applies the full six-pass chain (horizontal and vertical at
// each stride) from src into dst. src and dst may alias.
func (fc *FrameContext) filterBuffer(src, dst []types.Vec3) {
	n := len(src)
	if n == 0 {
		return
	}
	if cap(fc.denoiseScratch) < 2*n {
		fc.denoiseScratch = make([]types.Vec3, 2*n)
	}
	ping := fc.denoiseScratch[:n]
	pong := fc.denoiseScratch[n : 2*n]

	in := src
	out := ping
	for _, stride := range atrousStrides {
		fc.filterPass(in, out, stride, 1, 0)
		in, out = out, otherBuffer(out, ping, pong)
		fc.filterPass(in, out, stride, 0, 1)
		in, out = out, otherBuffer(out, ping, pong)
	}
	copy(dst, in)
}

func otherBuffer(current, a, b []types.Vec3) []types.Vec3 {
	if &current[0] == &a[0] {
		return b
	}
	return a
}

// filterPass runs one 5-tap pass along the (stepX, stepY) axis with the
// given tap stride.
func (fc *FrameContext) filterPass(src, dst []types.Vec3, stride, stepX, stepY int) {
	gb := fc.GBuffer

	fc.addBlockTimes(forEachRow(fc.Blocks, func(y int) {
		for x := 0; x < gb.Width; x++ {
			idx := gb.Index(x, y)
			if !gb.Valid(idx) {
				// No surface here; nothing to filter and the pixel
				// must never bleed into neighbors.
				dst[idx] = src[idx]
				continue
			}

			center := gb.NormalDepth[idx]
			centerN := center.Vec3()
			centerZ := center[3]

			var sum types.Vec3
			var weightSum float32

			for k := -2; k <= 2; k++ {
				tx := x + k*stride*stepX
				ty := y + k*stride*stepY
				if tx < 0 || tx >= gb.Width || ty < 0 || ty >= gb.Height {
					continue
				}
				tapIdx := gb.Index(tx, ty)
				if !gb.Valid(tapIdx) {
					continue
				}

				weight := atrousKernel[k+2]
				if k != 0 {
					tap := gb.NormalDepth[tapIdx]
					weight *= edgeStopWeight(centerN, centerZ, tap.Vec3(), tap[3], stride)
					if weight <= 0 {
						continue
					}
				}

				sum = sum.Add(src[tapIdx].Mul(weight))
				weightSum += weight
			}

			if weightSum <= 0 {
				dst[idx] = src[idx]
				continue
			}
			dst[idx] = sum.Mul(1 / weightSum)
		}
	}))
}

// edgeStopWeight combines depth and normal similarity into a single guide
// weight. It is exactly zero past either cutoff.
func edgeStopWeight(centerN types.Vec3, centerZ float32, tapN types.Vec3, tapZ float32, stride int) float32 {
	dz := abs32(centerZ-tapZ) / float32(stride)
	if dz > atrousDepthCutoff {
		return 0
	}
	depthWeight := float32(math.Exp(-float64(dz * dz / (atrousDepthSigma * atrousDepthSigma))))

	ndot := centerN.Dot(tapN)
	if ndot < atrousNormalCutoff {
		return 0
	}
	normalWeight := ndot
	for i := 1; i < atrousNormalPower; i++ {
		normalWeight *= ndot
	}

	return depthWeight * normalWeight
}
