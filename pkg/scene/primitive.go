package scene

import (
	"github.com/lucidrt/lucid/pkg/bsdf"
	"github.com/lucidrt/lucid/pkg/core"
	"github.com/lucidrt/lucid/pkg/light"
	"github.com/lucidrt/lucid/pkg/shape"
)

// Primitive binds one scene object's geometry to its material, optional
// emitter, and the media on either side of its boundary, resolving
// spec §9's cyclic shape/BSDF/emitter-by-id note into direct pointers
// owned solely by the Scene once Builder.Build runs.
type Primitive struct {
	Shape    shape.Shape // nil for a mesh primitive; see Mesh
	Mesh     *shape.TriangleMesh
	BSDF     bsdf.BSDF
	Emitter  *light.Area
	Interior core.Medium
	Exterior core.Medium
}

// Area returns the primitive's total surface area across whichever of
// Shape/Mesh is set, used to weight area-light selection by power.
func (p *Primitive) Area() float64 {
	if p.Mesh != nil {
		total := 0.0
		for _, tri := range p.Mesh.Triangles() {
			total += tri.Area()
		}
		return total
	}
	return p.Shape.Area()
}

// boundShape tags each BVH leaf shape with the index of the owning
// Primitive, since a mesh Primitive expands into many per-triangle
// shape.Shape values that must all resolve back to one Primitive.
type boundShape struct {
	shape.Shape
	primIndex int
}

func (b *boundShape) Hit(ray core.Ray, tMin, tMax float64) (shape.Interaction, bool) {
	it, ok := b.Shape.Hit(ray, tMin, tMax)
	if ok {
		it.Prim = b.primIndex
	}
	return it, ok
}
