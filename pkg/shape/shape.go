// Package shape holds ray-intersectable geometry: spheres, triangles,
// triangle meshes, and the SAH BVH that accelerates queries against all
// of them. Shapes carry no material/emitter/medium binding of their own
// (see pkg/scene.Primitive for that) so this package has no dependency on
// pkg/bsdf or pkg/light, matching the teacher's own split between
// pkg/geometry (shapes) and pkg/material (materials bound to a hit).
package shape

import "github.com/lucidrt/lucid/pkg/core"

// Interaction is the geometric record a Shape.Hit produces: the teacher's
// HitRecord (pkg/material/interfaces.go) generalized to carry an explicit
// shading normal distinct from the geometric one, per spec §3's
// invariant that the two may disagree at a vertex-normal-interpolated
// mesh triangle.
type Interaction struct {
	P         core.Vec3
	N         core.Vec3 // geometric normal
	Ns        core.Vec3 // shading normal
	UV        core.Vec2
	T         float64
	FrontFace bool
	Prim      int // index into scene.Scene.Primitives, set by the caller
}

// SetFaceNormal orients N/Ns to face the incoming ray, grounded on the
// teacher's HitRecord.SetFaceNormal.
func (it *Interaction) SetFaceNormal(rayDir core.Vec3, outward core.Vec3) {
	it.FrontFace = rayDir.Dot(outward) < 0
	if it.FrontFace {
		it.N = outward
	} else {
		it.N = outward.Negate()
	}
	if it.Ns.Dot(it.N) < 0 {
		it.Ns = it.Ns.Negate()
	}
}

// Shape is the geometry contract every primitive type implements,
// grounded on the teacher's pkg/geometry/interfaces.go Shape interface.
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (Interaction, bool)
	Bounds() core.AABB
	Area() float64
	// SampleArea draws a point uniformly over the shape's surface for
	// area-emitter NEE sampling, returning the point, its geometric
	// normal, and the area-measure pdf (1/Area for a uniform-area
	// shape).
	SampleArea(u core.Vec2) (p, n core.Vec3, pdf float64)
}
