package gi

import (
	"math"

	"github.com/borealis-render/borealis/types"
)

// RayKind tags a ray with the pipeline stage that spawned it.
type RayKind uint8

const (
	PrimaryRay RayKind = iota
	ShadowRay
	ProbeRay
	GatherRay
)

// TraceFlag selects the traversal behavior of a ray query.
type TraceFlag uint32

const (
	// TraceClosest performs a full nearest-hit search.
	TraceClosest TraceFlag = 0

	// TraceTerminateOnFirstHit stops traversal at any intersection. Only
	// the boolean occlusion result is meaningful in this mode.
	TraceTerminateOnFirstHit TraceFlag = 1 << iota
)

// MaskAll matches every instance.
const MaskAll uint32 = 0xffffffff

const MaxRayDist float32 = math.MaxFloat32

type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3
	TMin   float32
	TMax   float32
	Kind   RayKind
}

// Hit identifies the nearest intersected primitive. Barycentric coordinates
// address the second and third triangle vertices; the first vertex weight is
// 1-u-v.
type Hit struct {
	Instance  uint32
	Primitive uint32
	Bary      types.Vec2
	T         float32
}

// Point returns the world-space intersection point.
func (h Hit) Point(r Ray) types.Vec3 {
	return r.Origin.Add(r.Dir.Mul(h.T))
}

// RayQuery is the acceleration-structure query service the pipeline consumes.
// Implementations must be safe for concurrent use; the pipeline issues
// queries from many goroutines at once.
type RayQuery interface {
	// Trace returns the nearest intersection within [TMin, TMax], or
	// ok=false when the ray escapes the scene. Tracing never fails; a miss
	// is a normal outcome.
	Trace(ray Ray, flags TraceFlag, mask uint32) (hit Hit, ok bool)

	// Occluded reports whether any geometry intersects the ray segment.
	// Uses terminate-on-first-hit traversal; no closest-hit resolution.
	Occluded(ray Ray, mask uint32) bool
}
