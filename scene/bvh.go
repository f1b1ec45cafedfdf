package scene

import (
	"sort"

	"github.com/borealis-render/borealis/gi"
	"github.com/borealis-render/borealis/types"
)

const (
	bvhLeafTriangles = 4
	bvhStackDepth    = 64

	// Triangle intersections closer than this are rejected so that rays
	// re-spawned from a surface do not hit it again.
	triEpsilon = 1e-7
)

// triangle is the flattened world-space primitive the BVH traverses. The
// first vertex and the two edges are stored directly for the intersection
// test.
type triangle struct {
	v0, e1, e2 types.Vec3
	instance   uint32
	primitive  uint32
	mask       uint32
}

func (t triangle) centroid() types.Vec3 {
	// v0 + (e1+e2)/3 equals the vertex average.
	return t.v0.Add(t.e1.Add(t.e2).Mul(1.0 / 3.0))
}

func (t triangle) bounds() (types.Vec3, types.Vec3) {
	v1 := t.v0.Add(t.e1)
	v2 := t.v0.Add(t.e2)
	return types.MinVec3(t.v0, types.MinVec3(v1, v2)),
		types.MaxVec3(t.v0, types.MaxVec3(v1, v2))
}

// bvhNode is a flat-array node. Interior nodes store child indices; leaves
// store a [start,start+count) range into the triangle slice.
type bvhNode struct {
	min, max types.Vec3
	left     int32
	right    int32
	start    int32
	count    int32
}

func (n *bvhNode) leaf() bool {
	return n.count > 0
}

type bvh struct {
	nodes []bvhNode
}

// buildBVH sorts the triangle slice in place and returns the tree over it.
// Splits use the spatial median on the widest centroid axis.
func buildBVH(tris []triangle) *bvh {
	b := &bvh{nodes: make([]bvhNode, 0, 2*len(tris))}
	b.build(tris, 0, len(tris))
	return b
}

func (b *bvh) build(tris []triangle, start, end int) int32 {
	nodeIdx := int32(len(b.nodes))
	b.nodes = append(b.nodes, bvhNode{left: -1, right: -1})

	bmin := types.XYZ(gi.MaxRayDist, gi.MaxRayDist, gi.MaxRayDist)
	bmax := bmin.Mul(-1)
	for i := start; i < end; i++ {
		tmin, tmax := tris[i].bounds()
		bmin = types.MinVec3(bmin, tmin)
		bmax = types.MaxVec3(bmax, tmax)
	}
	b.nodes[nodeIdx].min = bmin
	b.nodes[nodeIdx].max = bmax

	if end-start <= bvhLeafTriangles {
		b.nodes[nodeIdx].start = int32(start)
		b.nodes[nodeIdx].count = int32(end - start)
		return nodeIdx
	}

	extent := bmax.Sub(bmin)
	axis := 0
	if extent[1] > extent[axis] {
		axis = 1
	}
	if extent[2] > extent[axis] {
		axis = 2
	}

	span := tris[start:end]
	sort.Slice(span, func(i, j int) bool {
		return span[i].centroid()[axis] < span[j].centroid()[axis]
	})

	mid := start + (end-start)/2
	left := b.build(tris, start, mid)
	right := b.build(tris, mid, end)
	b.nodes[nodeIdx].left = left
	b.nodes[nodeIdx].right = right
	return nodeIdx
}

// trace walks the tree with an explicit stack. Triangles whose instance mask
// does not overlap mask are skipped. With anyHit set it returns as soon as a
// triangle inside [TMin,TMax] is found.
func (b *bvh) trace(tris []triangle, ray gi.Ray, mask uint32, anyHit bool) (gi.Hit, bool) {
	var (
		stack [bvhStackDepth]int32
		top   int
		best  gi.Hit
		found bool
	)
	tmax := ray.TMax
	invDir := types.XYZ(safeInv(ray.Dir[0]), safeInv(ray.Dir[1]), safeInv(ray.Dir[2]))

	stack[top] = 0
	top++
	for top > 0 {
		top--
		node := &b.nodes[stack[top]]
		if !rayBoxHit(node, ray.Origin, invDir, ray.TMin, tmax) {
			continue
		}
		if !node.leaf() {
			stack[top] = node.left
			stack[top+1] = node.right
			top += 2
			continue
		}
		for i := node.start; i < node.start+node.count; i++ {
			if tris[i].mask&mask == 0 {
				continue
			}
			t, u, v, ok := intersectTriangle(&tris[i], ray.Origin, ray.Dir, ray.TMin, tmax)
			if !ok {
				continue
			}
			best = gi.Hit{
				Instance:  tris[i].instance,
				Primitive: tris[i].primitive,
				Bary:      types.XY(u, v),
				T:         t,
			}
			found = true
			if anyHit {
				return best, true
			}
			tmax = t
		}
	}
	return best, found
}

func safeInv(v float32) float32 {
	if v == 0 {
		return gi.MaxRayDist
	}
	return 1 / v
}

func rayBoxHit(n *bvhNode, origin, invDir types.Vec3, tmin, tmax float32) bool {
	for axis := 0; axis < 3; axis++ {
		t0 := (n.min[axis] - origin[axis]) * invDir[axis]
		t1 := (n.max[axis] - origin[axis]) * invDir[axis]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tmin {
			tmin = t0
		}
		if t1 < tmax {
			tmax = t1
		}
		if tmin > tmax {
			return false
		}
	}
	return true
}

// intersectTriangle is the Moller-Trumbore test against the precomputed
// edge representation.
func intersectTriangle(tri *triangle, origin, dir types.Vec3, tmin, tmax float32) (t, u, v float32, ok bool) {
	pvec := dir.Cross(tri.e2)
	det := tri.e1.Dot(pvec)
	if det > -triEpsilon && det < triEpsilon {
		return 0, 0, 0, false
	}
	invDet := 1 / det

	tvec := origin.Sub(tri.v0)
	u = tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	qvec := tvec.Cross(tri.e1)
	v = dir.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t = tri.e2.Dot(qvec) * invDet
	if t < tmin || t > tmax {
		return 0, 0, 0, false
	}
	return t, u, v, true
}
