package scene

import (
	"github.com/borealis-render/borealis/gi"
	"github.com/borealis-render/borealis/types"
	"github.com/go-gl/mathgl/mgl32"
)

type CameraDirection int

const (
	Forward CameraDirection = iota
	Backward
	Left
	Right
)

// Camera maintains view/projection matrices and exposes the unprojected
// frustum corners the visibility pass interpolates primary rays from.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// FOV is the vertical field of view in degrees.
	FOV float32

	viewMat     mgl32.Mat4
	projMat     mgl32.Mat4
	invViewProj mgl32.Mat4
}

func NewCamera(fov float32) *Camera {
	return &Camera{
		Position: types.XYZ(0, 0, 0),
		LookAt:   types.XYZ(0, 0, -1),
		Up:       types.XYZ(0, 1, 0),
		FOV:      fov,
	}
}

// SetupProjection recalculates the projection matrix for the given aspect
// ratio. Call whenever the frame dimensions change.
func (c *Camera) SetupProjection(aspect float32) {
	c.projMat = mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, 0.1, 1000.0)
	c.update()
}

// InvViewProjMat returns the inverse of the combined view-projection matrix.
func (c *Camera) InvViewProjMat() mgl32.Mat4 {
	return c.invViewProj
}

// Rays unprojects the four NDC frame corners to rays suitable for bilinear
// interpolation across the frame. Corner order is TL, TR, BL, BR.
func (c *Camera) Rays() gi.CameraRays {
	rays := gi.CameraRays{Origin: c.Position}
	// NDC y grows upward while frame rows grow downward, so the top screen
	// corners map to y = +1.
	ndc := [4]mgl32.Vec4{
		{-1, 1, -1, 1},
		{1, 1, -1, 1},
		{-1, -1, -1, 1},
		{1, -1, -1, 1},
	}
	for i, corner := range ndc {
		world := c.invViewProj.Mul4x1(corner)
		world = world.Mul(1 / world[3])
		rays.Corners[i] = types.XYZ(world[0], world[1], world[2]).Sub(c.Position).Normalize()
	}
	return rays
}

// Move shifts the camera position and target along the view basis.
func (c *Camera) Move(dir CameraDirection, amount float32) {
	var delta types.Vec3
	view := c.LookAt.Sub(c.Position).Normalize()
	switch dir {
	case Forward:
		delta = view.Mul(amount)
	case Backward:
		delta = view.Mul(-amount)
	case Left:
		delta = view.Cross(c.Up).Normalize().Mul(-amount)
	case Right:
		delta = view.Cross(c.Up).Normalize().Mul(amount)
	}
	c.Position = c.Position.Add(delta)
	c.LookAt = c.LookAt.Add(delta)
	c.update()
}

// Rotate adjusts the view direction by yaw around the up axis and pitch
// around the right axis. Angles are in degrees.
func (c *Camera) Rotate(yaw, pitch float32) {
	view := c.LookAt.Sub(c.Position)
	dist := view.Len()
	dir := view.Normalize()
	right := dir.Cross(c.Up).Normalize()

	q := mgl32.QuatRotate(mgl32.DegToRad(yaw), toMgl(c.Up)).
		Mul(mgl32.QuatRotate(mgl32.DegToRad(pitch), toMgl(right)))
	rotated := q.Rotate(toMgl(dir))
	c.LookAt = c.Position.Add(types.XYZ(rotated[0], rotated[1], rotated[2]).Mul(dist))
	c.update()
}

func (c *Camera) update() {
	c.viewMat = mgl32.LookAtV(toMgl(c.Position), toMgl(c.LookAt), toMgl(c.Up))
	c.invViewProj = c.projMat.Mul4(c.viewMat).Inv()
}

func toMgl(v types.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v[0], v[1], v[2]}
}
