package bsdf

import "github.com/lucidrt/lucid/pkg/core"

// Bind returns a copy of b with its shading point set to uv/p, for BSDF
// implementations whose reflectance varies over the surface (Lambertian's
// textured albedo, and any composite wrapping one). It recurses through
// TwoSided and Blend so a textured material still samples correctly under
// either wrapper. BSDFs with no spatial dependence are returned unchanged;
// Bind never mutates the argument, so the same *Primitive can be bound
// concurrently by many tile workers without a shared-state race.
func Bind(b BSDF, uv core.Vec2, p core.Vec3) BSDF {
	switch t := b.(type) {
	case *Lambertian:
		bound := *t
		bound.UV = uv
		bound.P = p
		return &bound
	case *TwoSided:
		bound := *t
		bound.Inner = Bind(t.Inner, uv, p)
		return &bound
	case *Blend:
		bound := *t
		bound.A = Bind(t.A, uv, p)
		bound.B = Bind(t.B, uv, p)
		return &bound
	default:
		return b
	}
}
