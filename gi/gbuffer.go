package gi

import "github.com/borealis-render/borealis/types"

// NoSurfaceDepth is the sentinel stored in the depth channel of pixels whose
// primary ray escaped the scene. Paired with a zero normal so downstream
// stages can cheaply test dot(n,n) < validNormalThreshold.
const NoSurfaceDepth float32 = -1

const validNormalThreshold = 0.5

// GBuffer holds the per-pixel intermediate render targets produced by the
// visibility and lighting stages. It is owned exclusively by the frame's
// execution context; buffers are reused across frames and fully overwritten
// by the visibility pass.
type GBuffer struct {
	Width  int
	Height int

	// Albedo as RGBA; alpha currently unused but kept for layout parity
	// with the storage-image formats the buffers mirror.
	Albedo []types.Vec4

	// World normal (xyz) plus linear hit distance (w). w == NoSurfaceDepth
	// marks a miss.
	NormalDepth []types.Vec4

	// Metalness (x) and roughness (y), needed by the direct-lighting
	// evaluator after the visibility pass resolved the material.
	MetalRough []types.Vec2

	Emissive []types.Vec3
	Direct   []types.Vec3
	Diffuse  []types.Vec3
}

func NewGBuffer(width, height int) *GBuffer {
	n := width * height
	return &GBuffer{
		Width:       width,
		Height:      height,
		Albedo:      make([]types.Vec4, n),
		NormalDepth: make([]types.Vec4, n),
		MetalRough:  make([]types.Vec2, n),
		Emissive:    make([]types.Vec3, n),
		Direct:      make([]types.Vec3, n),
		Diffuse:     make([]types.Vec3, n),
	}
}

func (g *GBuffer) Index(x, y int) int {
	return y*g.Width + x
}

// Valid reports whether the pixel holds a shaded surface. Miss pixels carry
// a zero normal, so the squared length test below rejects them.
func (g *GBuffer) Valid(index int) bool {
	n := g.NormalDepth[index].Vec3()
	return n.Dot(n) >= validNormalThreshold
}
