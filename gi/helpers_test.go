package gi

import "github.com/borealis-render/borealis/types"

// fixedSampler returns the same variates for every request.
type fixedSampler struct {
	v types.Vec4
}

func (s fixedSampler) Sample4D(id, frame, slot, sample uint32) types.Vec4 {
	return s.v
}

// stratifiedSampler covers the unit square with a regular lattice keyed by
// the sample index, giving low-variance estimates in tests.
type stratifiedSampler struct {
	n1, n2 uint32
}

func (s stratifiedSampler) Sample4D(id, frame, slot, sample uint32) types.Vec4 {
	i := sample % s.n1
	j := (sample / s.n1) % s.n2
	return types.XYZW(
		(float32(i)+0.5)/float32(s.n1),
		(float32(j)+0.5)/float32(s.n2),
		0.5, 0.5,
	)
}

// missQuery misses everything.
type missQuery struct{}

func (missQuery) Trace(Ray, TraceFlag, uint32) (Hit, bool) { return Hit{}, false }
func (missQuery) Occluded(Ray, uint32) bool                { return false }

// planeQuery intersects the horizontal plane y = height from either side.
type planeQuery struct {
	height float32
}

func (q planeQuery) Trace(ray Ray, flags TraceFlag, mask uint32) (Hit, bool) {
	if ray.Dir[1] == 0 {
		return Hit{}, false
	}
	t := (q.height - ray.Origin[1]) / ray.Dir[1]
	if t <= 0 || t < ray.TMin || t > ray.TMax {
		return Hit{}, false
	}
	return Hit{T: t}, true
}

func (q planeQuery) Occluded(ray Ray, mask uint32) bool {
	_, ok := q.Trace(ray, TraceTerminateOnFirstHit, mask)
	return ok
}

// funcQuery delegates to closures so tests can shape occlusion behavior.
type funcQuery struct {
	trace    func(Ray, TraceFlag, uint32) (Hit, bool)
	occluded func(Ray, uint32) bool
}

func (q funcQuery) Trace(ray Ray, flags TraceFlag, mask uint32) (Hit, bool) {
	if q.trace == nil {
		return Hit{}, false
	}
	return q.trace(ray, flags, mask)
}

func (q funcQuery) Occluded(ray Ray, mask uint32) bool {
	if q.occluded == nil {
		return false
	}
	return q.occluded(ray, mask)
}

// planeGeometry resolves every hit to the same upward-facing surface.
type planeGeometry struct {
	mat MaterialSample
}

func (g planeGeometry) Surface(instance, primitive uint32, bary types.Vec2) SurfacePoint {
	return SurfacePoint{
		Normal:   types.XYZ(0, 1, 0),
		Tangent:  types.XYZ(1, 0, 0),
		Material: g.mat,
	}
}

// downwardCamera aims every pixel straight down from y = 5 so the plane at
// y = 0 is hit at depth 5 everywhere.
func downwardCamera() CameraRays {
	down := types.XYZ(0, -1, 0)
	return CameraRays{
		Origin:  types.XYZ(0, 5, 0),
		Corners: [4]types.Vec3{down, down, down, down},
	}
}

func newTestContext(w, h int, q RayQuery, g Geometry, s SampleSource, probes *ProbeGrid) *FrameContext {
	fc := NewFrameContext(w, h, 2, q, g, s, probes)
	fc.Globals.Camera = downwardCamera()
	return fc
}

// constantProbe builds an SH probe holding constant radiance c, projected
// from a stratified set of sphere directions.
func constantProbe(c types.Vec3) SHProbe {
	const n = 32
	var p SHProbe
	weight := 4 * float32(3.14159265) / float32(n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			u := (float32(i) + 0.5) / n
			v := (float32(j) + 0.5) / n
			p.Accumulate(uniformSphere(u, v), c, weight)
		}
	}
	return p
}

func near(a, b, tol float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func nearVec(a, b types.Vec3, tol float32) bool {
	return near(a[0], b[0], tol) && near(a[1], b[1], tol) && near(a[2], b[2], tol)
}
