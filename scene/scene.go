// Package scene provides reference implementations of the collaborators the
// GI pipeline consumes as opaque interfaces: a triangle-mesh geometry pool
// with bounds-checked mesh/material/instance tables, a flat BVH ray query,
// and a frustum-corner camera. The pipeline itself never depends on the
// concrete types here.
package scene

import (
	"fmt"

	"github.com/borealis-render/borealis/gi"
	"github.com/borealis-render/borealis/log"
	"github.com/borealis-render/borealis/types"
	"github.com/go-gl/mathgl/mgl32"
)

var logger = log.New("scene")

type Vertex struct {
	Position types.Vec3
	Normal   types.Vec3
	Tangent  types.Vec3
	UV       types.Vec2
}

// Material holds flat PBR factors plus optional UV-parameterized sample
// functions that override them when set.
type Material struct {
	Albedo    types.Vec3
	Metalness float32
	Roughness float32
	Emissive  types.Vec3

	AlbedoFn   func(uv types.Vec2) types.Vec3
	EmissiveFn func(uv types.Vec2) types.Vec3
}

type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

func (m Mesh) triangleCount() int {
	return len(m.Indices) / 3
}

// Instance places a mesh in the world with a material and a transform. Mask
// selects which ray queries see the instance; a zero mask means visible to
// all rays.
type Instance struct {
	Mesh      uint32
	Material  uint32
	Transform mgl32.Mat4
	Mask      uint32

	normalMat mgl32.Mat3
}

// Scene owns the mesh/material/instance tables (arena + integer index, all
// access bounds-checked) and a BVH over the world-space triangles. Build it
// up with the Add functions, then call Finalize before tracing.
type Scene struct {
	meshes    []Mesh
	materials []Material
	instances []Instance

	tris []triangle
	bvh  *bvh
}

func New() *Scene {
	return &Scene{}
}

func (s *Scene) AddMesh(m Mesh) (uint32, error) {
	if len(m.Indices)%3 != 0 {
		return 0, fmt.Errorf("scene: mesh index count %d is not a multiple of 3", len(m.Indices))
	}
	for _, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return 0, fmt.Errorf("scene: mesh index %d out of range (%d vertices)", idx, len(m.Vertices))
		}
	}
	s.meshes = append(s.meshes, m)
	return uint32(len(s.meshes) - 1), nil
}

func (s *Scene) AddMaterial(m Material) uint32 {
	s.materials = append(s.materials, m)
	return uint32(len(s.materials) - 1)
}

func (s *Scene) AddInstance(inst Instance) (uint32, error) {
	if int(inst.Mesh) >= len(s.meshes) {
		return 0, fmt.Errorf("scene: instance references unknown mesh %d", inst.Mesh)
	}
	if int(inst.Material) >= len(s.materials) {
		return 0, fmt.Errorf("scene: instance references unknown material %d", inst.Material)
	}
	if inst.Mask == 0 {
		inst.Mask = gi.MaskAll
	}
	inst.normalMat = inst.Transform.Mat3().Inv().Transpose()
	s.instances = append(s.instances, inst)
	return uint32(len(s.instances) - 1), nil
}

// Finalize flattens all instances into a world-space triangle soup and
// builds the BVH over it. Must be called again after the instance tables
// change.
func (s *Scene) Finalize() error {
	total := 0
	for _, inst := range s.instances {
		total += s.meshes[inst.Mesh].triangleCount()
	}
	if total == 0 {
		return fmt.Errorf("scene: no triangles to trace")
	}

	s.tris = make([]triangle, 0, total)
	for instIdx, inst := range s.instances {
		mesh := s.meshes[inst.Mesh]
		for prim := 0; prim < mesh.triangleCount(); prim++ {
			i0 := mesh.Indices[prim*3]
			i1 := mesh.Indices[prim*3+1]
			i2 := mesh.Indices[prim*3+2]
			v0 := transformPoint(inst.Transform, mesh.Vertices[i0].Position)
			v1 := transformPoint(inst.Transform, mesh.Vertices[i1].Position)
			v2 := transformPoint(inst.Transform, mesh.Vertices[i2].Position)
			s.tris = append(s.tris, triangle{
				v0:        v0,
				e1:        v1.Sub(v0),
				e2:        v2.Sub(v0),
				instance:  uint32(instIdx),
				primitive: uint32(prim),
				mask:      inst.Mask,
			})
		}
	}

	s.bvh = buildBVH(s.tris)
	logger.Debugf("finalized scene: %d instances, %d triangles, %d bvh nodes",
		len(s.instances), len(s.tris), len(s.bvh.nodes))
	return nil
}

// Trace implements gi.RayQuery. Instances whose mask does not intersect the
// query mask are skipped.
func (s *Scene) Trace(ray gi.Ray, flags gi.TraceFlag, mask uint32) (gi.Hit, bool) {
	if s.bvh == nil {
		return gi.Hit{}, false
	}
	return s.bvh.trace(s.tris, ray, mask, flags&gi.TraceTerminateOnFirstHit != 0)
}

// Occluded implements gi.RayQuery.
func (s *Scene) Occluded(ray gi.Ray, mask uint32) bool {
	if s.bvh == nil {
		return false
	}
	_, hit := s.bvh.trace(s.tris, ray, mask, true)
	return hit
}

// Surface implements gi.Geometry: barycentric interpolation of the triangle
// vertices, transformed to world space, with the material resolved at the
// interpolated UV.
func (s *Scene) Surface(instance, primitive uint32, bary types.Vec2) gi.SurfacePoint {
	if int(instance) >= len(s.instances) {
		return gi.SurfacePoint{}
	}
	inst := s.instances[instance]
	mesh := s.meshes[inst.Mesh]
	if int(primitive) >= mesh.triangleCount() {
		return gi.SurfacePoint{}
	}

	v0 := mesh.Vertices[mesh.Indices[primitive*3]]
	v1 := mesh.Vertices[mesh.Indices[primitive*3+1]]
	v2 := mesh.Vertices[mesh.Indices[primitive*3+2]]

	u, v := bary[0], bary[1]
	w := 1 - u - v

	position := v0.Position.Mul(w).Add(v1.Position.Mul(u)).Add(v2.Position.Mul(v))
	normal := v0.Normal.Mul(w).Add(v1.Normal.Mul(u)).Add(v2.Normal.Mul(v))
	tangent := v0.Tangent.Mul(w).Add(v1.Tangent.Mul(u)).Add(v2.Tangent.Mul(v))
	uv := types.XY(
		v0.UV[0]*w+v1.UV[0]*u+v2.UV[0]*v,
		v0.UV[1]*w+v1.UV[1]*u+v2.UV[1]*v,
	)

	mat := s.materials[inst.Material]
	sample := gi.MaterialSample{
		Albedo:    mat.Albedo,
		Metalness: mat.Metalness,
		Roughness: mat.Roughness,
		Emissive:  mat.Emissive,
	}
	if mat.AlbedoFn != nil {
		sample.Albedo = mat.AlbedoFn(uv)
	}
	if mat.EmissiveFn != nil {
		sample.Emissive = mat.EmissiveFn(uv)
	}

	return gi.SurfacePoint{
		Position: transformPoint(inst.Transform, position),
		Normal:   transformNormal(inst.normalMat, normal),
		Tangent:  transformNormal(inst.normalMat, tangent),
		UV:       uv,
		Material: sample,
	}
}

func transformPoint(m mgl32.Mat4, p types.Vec3) types.Vec3 {
	out := m.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1})
	return types.XYZ(out[0], out[1], out[2])
}

func transformNormal(m mgl32.Mat3, n types.Vec3) types.Vec3 {
	out := m.Mul3x1(mgl32.Vec3{n[0], n[1], n[2]})
	return types.XYZ(out[0], out[1], out[2]).Normalize()
}
