package scene

import (
	"math"
	"testing"

	"github.com/borealis-render/borealis/gi"
	"github.com/borealis-render/borealis/types"
	"github.com/go-gl/mathgl/mgl32"
)

func buildQuadScene(t *testing.T, transform mgl32.Mat4) *Scene {
	t.Helper()
	sc := New()
	meshID, err := sc.AddMesh(QuadMesh())
	if err != nil {
		t.Fatalf("AddMesh: %v", err)
	}
	matID := sc.AddMaterial(Material{Albedo: types.XYZ(0.8, 0.8, 0.8), Roughness: 0.5})
	if _, err := sc.AddInstance(Instance{Mesh: meshID, Material: matID, Transform: transform}); err != nil {
		t.Fatalf("AddInstance: %v", err)
	}
	if err := sc.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return sc
}

func TestTraceQuad(t *testing.T) {
	sc := buildQuadScene(t, mgl32.Ident4())

	ray := gi.Ray{
		Origin: types.XYZ(0, 5, 0),
		Dir:    types.XYZ(0, -1, 0),
		TMax:   gi.MaxRayDist,
	}
	hit, ok := sc.Trace(ray, gi.TraceClosest, gi.MaskAll)
	if !ok {
		t.Fatal("expected quad hit")
	}
	if math.Abs(float64(hit.T)-5) > 1e-4 {
		t.Fatalf("expected t=5, got %f", hit.T)
	}

	sp := sc.Surface(hit.Instance, hit.Primitive, hit.Bary)
	if math.Abs(float64(sp.Normal[1])-1) > 1e-5 {
		t.Fatalf("expected +Y normal, got %v", sp.Normal)
	}
	if sp.Position.Sub(types.XYZ(0, 0, 0)).Len() > 1e-4 {
		t.Fatalf("expected hit point at origin, got %v", sp.Position)
	}

	// A ray beside the quad misses.
	ray.Origin = types.XYZ(2, 5, 0)
	if _, ok := sc.Trace(ray, gi.TraceClosest, gi.MaskAll); ok {
		t.Fatal("expected miss beside quad")
	}
}

func TestTraceTransformedInstance(t *testing.T) {
	// Quad moved up 2 units and scaled 4x in the plane.
	transform := mgl32.Translate3D(0, 2, 0).Mul4(mgl32.Scale3D(4, 1, 4))
	sc := buildQuadScene(t, transform)

	ray := gi.Ray{
		Origin: types.XYZ(1.5, 5, 1.5),
		Dir:    types.XYZ(0, -1, 0),
		TMax:   gi.MaxRayDist,
	}
	hit, ok := sc.Trace(ray, gi.TraceClosest, gi.MaskAll)
	if !ok {
		t.Fatal("expected scaled quad hit")
	}
	if math.Abs(float64(hit.T)-3) > 1e-4 {
		t.Fatalf("expected t=3, got %f", hit.T)
	}
	sp := sc.Surface(hit.Instance, hit.Primitive, hit.Bary)
	if sp.Position.Sub(types.XYZ(1.5, 2, 1.5)).Len() > 1e-3 {
		t.Fatalf("surface point %v does not match world hit", sp.Position)
	}
}

func TestOccluded(t *testing.T) {
	sc := buildQuadScene(t, mgl32.Ident4())

	blocked := gi.Ray{Origin: types.XYZ(0, -1, 0), Dir: types.XYZ(0, 1, 0), TMax: 10}
	if !sc.Occluded(blocked, gi.MaskAll) {
		t.Fatal("expected occlusion through quad")
	}

	// Segment ends before the quad.
	short := gi.Ray{Origin: types.XYZ(0, -1, 0), Dir: types.XYZ(0, 1, 0), TMax: 0.5}
	if sc.Occluded(short, gi.MaskAll) {
		t.Fatal("segment should stop short of quad")
	}
}

func TestInstanceMaskFiltersHits(t *testing.T) {
	// Two stacked quads on disjoint mask bits. A query mask must hide the
	// non-matching instance from both closest-hit and occlusion traversal.
	sc := New()
	meshID, _ := sc.AddMesh(QuadMesh())
	matID := sc.AddMaterial(Material{Albedo: types.XYZ(1, 1, 1)})
	if _, err := sc.AddInstance(Instance{Mesh: meshID, Material: matID, Transform: mgl32.Translate3D(0, 2, 0), Mask: 0x1}); err != nil {
		t.Fatalf("AddInstance: %v", err)
	}
	if _, err := sc.AddInstance(Instance{Mesh: meshID, Material: matID, Transform: mgl32.Ident4(), Mask: 0x2}); err != nil {
		t.Fatalf("AddInstance: %v", err)
	}
	if err := sc.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	ray := gi.Ray{Origin: types.XYZ(0, 5, 0), Dir: types.XYZ(0, -1, 0), TMax: gi.MaxRayDist}

	hit, ok := sc.Trace(ray, gi.TraceClosest, 0x2)
	if !ok {
		t.Fatal("expected hit on lower quad")
	}
	if math.Abs(float64(hit.T)-5) > 1e-4 {
		t.Fatalf("mask 0x2 should skip the upper quad, got t=%f", hit.T)
	}
	if _, ok := sc.Trace(ray, gi.TraceClosest, 0x4); ok {
		t.Fatal("mask with no matching instance should miss")
	}
	if sc.Occluded(gi.Ray{Origin: types.XYZ(0, 1, 0), Dir: types.XYZ(0, 1, 0), TMax: 5}, 0x2) {
		t.Fatal("upper quad should be invisible to mask 0x2")
	}
	if !sc.Occluded(gi.Ray{Origin: types.XYZ(0, 1, 0), Dir: types.XYZ(0, 1, 0), TMax: 5}, 0x1) {
		t.Fatal("upper quad should occlude mask 0x1")
	}

	// A zero instance mask defaults to visible-to-all.
	def := buildQuadScene(t, mgl32.Ident4())
	if _, ok := def.Trace(ray, gi.TraceClosest, 0x80); !ok {
		t.Fatal("default instance mask should match any query mask")
	}
}

func TestClosestHitOrdering(t *testing.T) {
	sc := New()
	meshID, _ := sc.AddMesh(QuadMesh())
	matID := sc.AddMaterial(Material{Albedo: types.XYZ(1, 1, 1)})
	for _, y := range []float32{0, 2, 4} {
		if _, err := sc.AddInstance(Instance{
			Mesh: meshID, Material: matID,
			Transform: mgl32.Translate3D(0, y, 0),
		}); err != nil {
			t.Fatalf("AddInstance: %v", err)
		}
	}
	if err := sc.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	ray := gi.Ray{Origin: types.XYZ(0, 10, 0), Dir: types.XYZ(0, -1, 0), TMax: gi.MaxRayDist}
	hit, ok := sc.Trace(ray, gi.TraceClosest, gi.MaskAll)
	if !ok {
		t.Fatal("expected hit")
	}
	if math.Abs(float64(hit.T)-6) > 1e-4 {
		t.Fatalf("expected nearest quad at t=6, got %f", hit.T)
	}
}

func TestArenaValidation(t *testing.T) {
	sc := New()
	if _, err := sc.AddMesh(Mesh{Indices: []uint32{0, 1}}); err == nil {
		t.Fatal("expected error for partial triangle")
	}
	if _, err := sc.AddMesh(Mesh{
		Vertices: []Vertex{{}, {}},
		Indices:  []uint32{0, 1, 2},
	}); err == nil {
		t.Fatal("expected error for out of range index")
	}
	if _, err := sc.AddInstance(Instance{Mesh: 9}); err == nil {
		t.Fatal("expected error for unknown mesh")
	}
	// Out of range handles resolve to an empty surface, not a panic.
	sp := sc.Surface(42, 0, types.XY(0, 0))
	if sp.Material.Albedo.Len() != 0 {
		t.Fatalf("expected zero surface, got %+v", sp)
	}
}

func TestCameraRays(t *testing.T) {
	cam := NewCamera(90)
	cam.Position = types.XYZ(0, 0, 5)
	cam.LookAt = types.XYZ(0, 0, 0)
	cam.SetupProjection(1.0)

	rays := cam.Rays()
	if rays.Origin != cam.Position {
		t.Fatalf("origin mismatch: %v", rays.Origin)
	}
	// All corners look toward -Z and average to the view direction.
	var sum types.Vec3
	for i, c := range rays.Corners {
		if c[2] >= 0 {
			t.Fatalf("corner %d does not face -Z: %v", i, c)
		}
		sum = sum.Add(c)
	}
	avg := sum.Mul(0.25).Normalize()
	if avg.Sub(types.XYZ(0, 0, -1)).Len() > 1e-4 {
		t.Fatalf("mean corner direction %v is not the view direction", avg)
	}
	// Top-left corner points up-left in screen space.
	if rays.Corners[0][0] >= 0 || rays.Corners[0][1] <= 0 {
		t.Fatalf("unexpected top-left corner %v", rays.Corners[0])
	}
}

func TestCameraMove(t *testing.T) {
	cam := NewCamera(60)
	cam.Position = types.XYZ(0, 0, 5)
	cam.LookAt = types.XYZ(0, 0, 0)
	cam.SetupProjection(1.0)

	cam.Move(Forward, 2)
	if cam.Position.Sub(types.XYZ(0, 0, 3)).Len() > 1e-5 {
		t.Fatalf("forward move landed at %v", cam.Position)
	}
	cam.Move(Right, 1)
	if cam.Position.Sub(types.XYZ(1, 0, 3)).Len() > 1e-5 {
		t.Fatalf("right move landed at %v", cam.Position)
	}
}
