package core

import "math"

// AABB is an axis-aligned bounding box, grounded on the teacher's
// pkg/core/aabb.go but generalized with a reciprocal-direction Hit test
// for BVH traversal.
type AABB struct {
	Min, Max Vec3
}

func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{Vec3{inf, inf, inf}, Vec3{-inf, -inf, -inf}}
}

func (b AABB) Union(o AABB) AABB {
	return AABB{
		Vec3{math.Min(b.Min.X, o.Min.X), math.Min(b.Min.Y, o.Min.Y), math.Min(b.Min.Z, o.Min.Z)},
		Vec3{math.Max(b.Max.X, o.Max.X), math.Max(b.Max.Y, o.Max.Y), math.Max(b.Max.Z, o.Max.Z)},
	}
}

func (b AABB) UnionPoint(p Vec3) AABB {
	return AABB{
		Vec3{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)},
		Vec3{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)},
	}
}

func (b AABB) Centroid() Vec3 { return b.Min.Add(b.Max).Mul(0.5) }

func (b AABB) Diagonal() Vec3 { return b.Max.Sub(b.Min) }

func (b AABB) SurfaceArea() float64 {
	d := b.Diagonal()
	if d.X < 0 || d.Y < 0 || d.Z < 0 {
		return 0
	}
	return 2 * (d.X*d.Y + d.Y*d.Z + d.Z*d.X)
}

// MaxExtentAxis returns 0, 1, or 2 for the longest axis of the box, used
// to pick the SAH binning axis and the median-split fallback axis.
func (b AABB) MaxExtentAxis() int {
	d := b.Diagonal()
	if d.X > d.Y && d.X > d.Z {
		return 0
	}
	if d.Y > d.Z {
		return 1
	}
	return 2
}

func (b AABB) Axis(i int) (lo, hi float64) {
	switch i {
	case 0:
		return b.Min.X, b.Max.X
	case 1:
		return b.Min.Y, b.Max.Y
	default:
		return b.Min.Z, b.Max.Z
	}
}

// BoundingSphere returns a sphere enclosing the box, used to give
// infinite/directional lights a finite world radius and center once the
// scene BVH exists.
func (b AABB) BoundingSphere() (center Vec3, radius float64) {
	center = b.Centroid()
	radius = b.Max.Sub(center).Length()
	return
}

// Hit tests the ray against the box using the reciprocal-direction
// technique: dividing by zero produces +/-Inf, which compares correctly
// against a box face without a branch for axis-aligned rays.
func (b AABB) Hit(origin, invDir Vec3, tMin, tMax float64) (float64, float64, bool) {
	ox, oy, oz := origin.X, origin.Y, origin.Z
	ix, iy, iz := invDir.X, invDir.Y, invDir.Z

	t0, t1 := (b.Min.X-ox)*ix, (b.Max.X-ox)*ix
	if ix < 0 {
		t0, t1 = t1, t0
	}
	if t0 > tMin {
		tMin = t0
	}
	if t1 < tMax {
		tMax = t1
	}
	if tMax <= tMin {
		return 0, 0, false
	}

	t0, t1 = (b.Min.Y-oy)*iy, (b.Max.Y-oy)*iy
	if iy < 0 {
		t0, t1 = t1, t0
	}
	if t0 > tMin {
		tMin = t0
	}
	if t1 < tMax {
		tMax = t1
	}
	if tMax <= tMin {
		return 0, 0, false
	}

	t0, t1 = (b.Min.Z-oz)*iz, (b.Max.Z-oz)*iz
	if iz < 0 {
		t0, t1 = t1, t0
	}
	if t0 > tMin {
		tMin = t0
	}
	if t1 < tMax {
		tMax = t1
	}
	if tMax <= tMin {
		return 0, 0, false
	}

	return tMin, tMax, true
}
