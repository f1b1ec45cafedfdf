package gi

import (
	"math"
	"time"

	"github.com/borealis-render/borealis/types"
)

const (
	// Weight multiplier for probes whose line of sight to the shaded point
	// is blocked. Occluded probes are demoted, not excluded: dropping them
	// outright creates hard seams where the occlusion test flips.
	occludedProbeWeight = 0.1

	// Denominator guard for the weighted gather; a point whose corner
	// probes are all out of bounds or back-facing renders black instead
	// of dividing by zero.
	minGatherWeight = 1e-4
)

// IndirectGather computes indirect diffuse irradiance for every valid pixel
// by interpolating the eight probes at the corners of the enclosing grid
// cell, weighting each by trilinear distance and visibility. The result is
// noisy by design at low probe-ray counts; the denoiser smooths it.
func IndirectGather(fc *FrameContext) (time.Duration, error) {
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

			gb.Diffuse[idx] = fc.gatherIrradiance(p, n)
		}
	}))

	return time.Since(start), nil
}

// gatherIrradiance interpolates the probe grid at a surface point.
func (fc *FrameContext) gatherIrradiance(p, n types.Vec3) types.Vec3 {
	grid := fc.Probes
	if grid == nil {
		return types.Vec3{}
	}
	cfg := grid.Config()

	rel := types.XYZ(
		(p[0]-cfg.Origin[0])/cfg.CellSize[0],
		(p[1]-cfg.Origin[1])/cfg.CellSize[1],
		(p[2]-cfg.Origin[2])/cfg.CellSize[2],
	)
	cx := int(math.Floor(float64(rel[0])))
	cy := int(math.Floor(float64(rel[1])))
	cz := int(math.Floor(float64(rel[2])))
	fx := rel[0] - float32(cx)
	fy := rel[1] - float32(cy)
	fz := rel[2] - float32(cz)

	var sum types.Vec3
	var weightSum float32

	for corner := 0; corner < 8; corner++ {
		dx := corner & 1
		dy := (corner >> 1) & 1
		dz := (corner >> 2) & 1

		gx, gy, gz := cx+dx, cy+dy, cz+dz
		if !grid.inBounds(gx, gy, gz) {
			continue
		}
		index := grid.Index(gx, gy, gz)

		trilinear := axisWeight(fx, dx) * axisWeight(fy, dy) * axisWeight(fz, dz)
		toProbe := grid.Position(index).Sub(p)
		dist := toProbe.Len()

		weight := trilinear
		if dist > shadowRayOffset {
			dir := toProbe.Mul(1 / dist)
			weight *= clampPos(n.Dot(dir) + fc.Globals.ProbeBias)
			if weight <= 0 {
				continue
			}

			occlusion := Ray{
				Origin: p.Add(n.Mul(shadowRayOffset)),
				Dir:    dir,
				TMin:   0,
				TMax:   dist - 2*shadowRayOffset,
				Kind:   GatherRay,
			}
			if occlusion.TMax > 0 && fc.Query.Occluded(occlusion, MaskAll) {
				weight *= occludedProbeWeight
			}
		}
		if weight <= 0 {
			continue
		}

		sum = sum.Add(grid.Irradiance(index, n).Mul(weight))
		weightSum += weight
	}

	if weightSum < minGatherWeight {
		return types.Vec3{}
	}
	return sum.Mul(1 / weightSum).ClampNeg()
}

func axisWeight(frac float32, hi int) float32 {
	if hi == 1 {
		return frac
	}
	return 1 - frac
}
