// Package camera builds primary rays from a camera-to-world transform
// and accumulates samples into a Film.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucidrt/lucid/pkg/core"
)

// Camera is a pinhole or thin-lens projective camera, generalizing the
// teacher's pkg/renderer/camera.go hardcoded 16:9 viewport into a
// transform-driven model per spec §4.7. The camera-to-world basis is
// built with mgl64's look-at matrix, matching the idiom used by
// _examples/other_examples/pedohorse-gotracer__main.go and
// irmf-irmf-slicer__renderer.go for the same purpose.
type Camera struct {
	Origin               core.Vec3
	U, V, W              core.Vec3 // camera-space right/up/back basis vectors, scaled to the image plane
	LensRadius            float64
	FocusDistance         float64
	Width, Height         int
}

// NewCamera builds a Camera from eye/target/up, vertical field of view in
// degrees, and the optional thin-lens parameters (lensRadius=0 for a
// pinhole).
func NewCamera(eye, target, up core.Vec3, vfovDeg, aspect, lensRadius, focusDistance float64, width, height int) *Camera {
	theta := vfovDeg * math.Pi / 180
	halfHeight := math.Tan(theta / 2)
	halfWidth := aspect * halfHeight

	e := mgl64.Vec3{eye.X, eye.Y, eye.Z}
	t := mgl64.Vec3{target.X, target.Y, target.Z}
	u := mgl64.Vec3{up.X, up.Y, up.Z}
	lookAt := mgl64.LookAtV(e, t, u)
	// LookAtV produces a world-to-camera matrix; its inverse's columns
	// give the camera's world-space right/up/back basis vectors.
	camToWorld := lookAt.Inv()
	right := camToWorld.Col(0)
	upV := camToWorld.Col(1)
	back := camToWorld.Col(2)

	toVec3 := func(v mgl64.Vec4) core.Vec3 { return core.Vec3{X: v.X(), Y: v.Y(), Z: v.Z()} }

	c := &Camera{
		Origin:        eye,
		U:             toVec3(right).Mul(halfWidth * focusDistance),
		V:             toVec3(upV).Mul(halfHeight * focusDistance),
		W:             toVec3(back).Mul(focusDistance),
		LensRadius:    lensRadius,
		FocusDistance: focusDistance,
		Width:         width,
		Height:        height,
	}
	return c
}

// GenerateRay maps a film-space sample (s,t) in [0,1]^2 and an optional
// lens sample into a world-space primary ray, per spec §4.7.
func (c *Camera) GenerateRay(s, t float64, lensSample core.Vec2) core.Ray {
	dir := c.U.Mul(2*s - 1).Add(c.V.Mul(2*t - 1)).Sub(c.W)
	origin := c.Origin
	if c.LensRadius > 0 {
		d := core.SampleInUnitDisk(lensSample)
		offset := camU(c).Mul(d.X * c.LensRadius).Add(camV(c).Mul(d.Y * c.LensRadius))
		origin = origin.Add(offset)
		dir = dir.Sub(offset)
	}
	return core.NewRay(origin, dir.Normalize())
}

func camU(c *Camera) core.Vec3 { return c.U.Normalize() }
func camV(c *Camera) core.Vec3 { return c.V.Normalize() }
