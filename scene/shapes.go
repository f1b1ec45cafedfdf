package scene

import "github.com/borealis-render/borealis/types"

// QuadMesh returns a unit quad on the XZ plane, centered at the origin,
// facing +Y. Scale and orient it via the instance transform.
func QuadMesh() Mesh {
	n := types.XYZ(0, 1, 0)
	t := types.XYZ(1, 0, 0)
	return Mesh{
		Vertices: []Vertex{
			{Position: types.XYZ(-0.5, 0, -0.5), Normal: n, Tangent: t, UV: types.XY(0, 0)},
			{Position: types.XYZ(0.5, 0, -0.5), Normal: n, Tangent: t, UV: types.XY(1, 0)},
			{Position: types.XYZ(0.5, 0, 0.5), Normal: n, Tangent: t, UV: types.XY(1, 1)},
			{Position: types.XYZ(-0.5, 0, 0.5), Normal: n, Tangent: t, UV: types.XY(0, 1)},
		},
		Indices: []uint32{0, 2, 1, 0, 3, 2},
	}
}

// BoxMesh returns a unit cube centered at the origin with outward-facing
// normals.
func BoxMesh() Mesh {
	type face struct {
		normal  types.Vec3
		tangent types.Vec3
	}
	faces := []face{
		{types.XYZ(0, 0, 1), types.XYZ(1, 0, 0)},
		{types.XYZ(0, 0, -1), types.XYZ(-1, 0, 0)},
		{types.XYZ(1, 0, 0), types.XYZ(0, 0, -1)},
		{types.XYZ(-1, 0, 0), types.XYZ(0, 0, 1)},
		{types.XYZ(0, 1, 0), types.XYZ(1, 0, 0)},
		{types.XYZ(0, -1, 0), types.XYZ(1, 0, 0)},
	}

	var mesh Mesh
	for _, f := range faces {
		bitangent := f.normal.Cross(f.tangent)
		base := uint32(len(mesh.Vertices))
		center := f.normal.Mul(0.5)
		corners := [4][2]float32{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}}
		uvs := [4]types.Vec2{types.XY(0, 0), types.XY(1, 0), types.XY(1, 1), types.XY(0, 1)}
		for i, corner := range corners {
			pos := center.Add(f.tangent.Mul(corner[0])).Add(bitangent.Mul(corner[1]))
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: pos,
				Normal:   f.normal,
				Tangent:  f.tangent,
				UV:       uvs[i],
			})
		}
		mesh.Indices = append(mesh.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return mesh
}
