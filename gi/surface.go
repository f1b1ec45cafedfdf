package gi

import "github.com/borealis-render/borealis/types"

// MaterialSample holds the material attributes resolved at a surface point.
type MaterialSample struct {
	Albedo    types.Vec3
	Metalness float32
	Roughness float32
	Emissive  types.Vec3
}

// SurfacePoint is a shading-ready description of a ray hit. It is derived
// per hit and never persisted across stages.
type SurfacePoint struct {
	Position types.Vec3
	Normal   types.Vec3
	Tangent  types.Vec3
	UV       types.Vec2
	Material MaterialSample
}

// Geometry resolves interpolated vertex attributes and material samples for
// an intersected primitive. Implementations must be safe for concurrent use.
type Geometry interface {
	Surface(instance, primitive uint32, bary types.Vec2) SurfacePoint
}

// SampleSource produces low-discrepancy sample vectors in [0,1)^4, indexed
// by a 4 component integer coordinate (pixel or probe id, frame, light or
// bounce index, sample index). All stochastic stages draw from the same
// source so that sample reuse stays decorrelated across stages.
type SampleSource interface {
	Sample4D(id, frame, slot, sample uint32) types.Vec4
}
