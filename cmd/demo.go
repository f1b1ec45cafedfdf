package cmd

import (
	"fmt"

	"github.com/borealis-render/borealis/gi"
	"github.com/borealis-render/borealis/scene"
	"github.com/borealis-render/borealis/types"
	"github.com/go-gl/mathgl/mgl32"
)

// demoSetup bundles everything the renderer needs for one of the built-in
// scenes.
type demoSetup struct {
	scene   *scene.Scene
	camera  *scene.Camera
	globals gi.Globals
	probes  *gi.ProbeGrid
}

// buildDemo assembles one of the procedural demo scenes by name.
func buildDemo(name string) (*demoSetup, error) {
	switch name {
	case "cornell":
		return buildCornell()
	case "outdoor":
		return buildOutdoor()
	default:
		return nil, fmt.Errorf("unknown demo scene %q (try \"cornell\" or \"outdoor\")", name)
	}
}

// buildCornell is a closed box lit by a single point light near the ceiling.
// Indirect bounce off the colored side walls is what the probe volume is
// there to capture.
func buildCornell() (*demoSetup, error) {
	sc := scene.New()
	quad, err := sc.AddMesh(scene.QuadMesh())
	if err != nil {
		return nil, err
	}
	box, err := sc.AddMesh(scene.BoxMesh())
	if err != nil {
		return nil, err
	}

	white := sc.AddMaterial(scene.Material{Albedo: types.XYZ(0.73, 0.73, 0.73), Roughness: 0.9})
	red := sc.AddMaterial(scene.Material{Albedo: types.XYZ(0.65, 0.05, 0.05), Roughness: 0.9})
	green := sc.AddMaterial(scene.Material{Albedo: types.XYZ(0.12, 0.45, 0.15), Roughness: 0.9})
	metal := sc.AddMaterial(scene.Material{Albedo: types.XYZ(0.9, 0.9, 0.9), Metalness: 1, Roughness: 0.25})

	const half = 2.5
	walls := []struct {
		material  uint32
		transform mgl32.Mat4
	}{
		// floor, ceiling
		{white, mgl32.Scale3D(2 * half, 1, 2*half)},
		{white, mgl32.Translate3D(0, 2*half, 0).Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(180))).Mul4(mgl32.Scale3D(2*half, 1, 2*half))},
		// back wall
		{white, mgl32.Translate3D(0, half, -half).Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(90))).Mul4(mgl32.Scale3D(2*half, 1, 2*half))},
		// left (red), right (green)
		{red, mgl32.Translate3D(-half, half, 0).Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(-90))).Mul4(mgl32.Scale3D(2*half, 1, 2*half))},
		{green, mgl32.Translate3D(half, half, 0).Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(90))).Mul4(mgl32.Scale3D(2*half, 1, 2*half))},
	}
	for _, w := range walls {
		if _, err := sc.AddInstance(scene.Instance{Mesh: quad, Material: w.material, Transform: w.transform}); err != nil {
			return nil, err
		}
	}

	boxes := []struct {
		material  uint32
		transform mgl32.Mat4
	}{
		{white, mgl32.Translate3D(-1, 1.5, -1).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(18))).Mul4(mgl32.Scale3D(1.5, 3, 1.5))},
		{metal, mgl32.Translate3D(1.2, 0.6, 0.8).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(-20))).Mul4(mgl32.Scale3D(1.2, 1.2, 1.2))},
	}
	for _, b := range boxes {
		if _, err := sc.AddInstance(scene.Instance{Mesh: box, Material: b.material, Transform: b.transform}); err != nil {
			return nil, err
		}
	}

	if err := sc.Finalize(); err != nil {
		return nil, err
	}

	cam := scene.NewCamera(45)
	cam.Position = types.XYZ(0, half, 3*half)
	cam.LookAt = types.XYZ(0, half, 0)

	probes := gi.NewProbeGrid(gi.GridConfig{
		Origin:   types.XYZ(-half, 0.25, -half),
		CellSize: types.XYZ(1, 1, 1),
		Extent:   [3]int{6, 5, 6},
	})

	globals := gi.Globals{
		PointLights: []gi.PointLight{
			{Position: types.XYZ(0, 2*half-0.3, 0), Radiance: types.XYZ(30, 30, 30)},
		},
	}
	return &demoSetup{scene: sc, camera: cam, globals: globals, probes: probes}, nil
}

// buildOutdoor is an open ground plane under a sun and sky, with a few boxes
// casting soft shadows.
func buildOutdoor() (*demoSetup, error) {
	sc := scene.New()
	quad, err := sc.AddMesh(scene.QuadMesh())
	if err != nil {
		return nil, err
	}
	box, err := sc.AddMesh(scene.BoxMesh())
	if err != nil {
		return nil, err
	}

	checker := sc.AddMaterial(scene.Material{
		Roughness: 0.8,
		AlbedoFn: func(uv types.Vec2) types.Vec3 {
			cell := int(uv[0]*16) + int(uv[1]*16)
			if cell%2 == 0 {
				return types.XYZ(0.8, 0.8, 0.8)
			}
			return types.XYZ(0.35, 0.35, 0.35)
		},
	})
	clay := sc.AddMaterial(scene.Material{Albedo: types.XYZ(0.6, 0.4, 0.3), Roughness: 0.6})

	if _, err := sc.AddInstance(scene.Instance{Mesh: quad, Material: checker, Transform: mgl32.Scale3D(40, 1, 40)}); err != nil {
		return nil, err
	}
	for i := 0; i < 5; i++ {
		fi := float32(i)
		t := mgl32.Translate3D(fi*2-4, 0.75, -fi).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(fi * 25))).Mul4(mgl32.Scale3D(1.5, 1.5, 1.5))
		if _, err := sc.AddInstance(scene.Instance{Mesh: box, Material: clay, Transform: t}); err != nil {
			return nil, err
		}
	}

	if err := sc.Finalize(); err != nil {
		return nil, err
	}

	cam := scene.NewCamera(55)
	cam.Position = types.XYZ(0, 3, 9)
	cam.LookAt = types.XYZ(0, 1, 0)

	probes := gi.NewProbeGrid(gi.GridConfig{
		Origin:   types.XYZ(-6, 0.5, -6),
		CellSize: types.XYZ(2, 1.5, 2),
		Extent:   [3]int{7, 4, 7},
	})

	globals := gi.Globals{
		Sun: gi.DirectionalLight{
			Direction: types.XYZ(-0.4, -1, -0.3).Normalize(),
			Radiance:  types.XYZ(4, 3.8, 3.4),
		},
		Sky: types.XYZ(0.35, 0.5, 0.8),
	}
	return &demoSetup{scene: sc, camera: cam, globals: globals, probes: probes}, nil
}
