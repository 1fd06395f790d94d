package shape

import (
	"math"

	"github.com/lucidrt/lucid/pkg/core"
)

// Sphere is grounded on the teacher's pkg/geometry/sphere.go quadratic
// intersection (the oc.Dot(direction) half-b trick, try-near-root-then-
// far-root pattern), generalized with UV and a uniform-by-area
// SampleArea.
type Sphere struct {
	Center core.Vec3
	Radius float64
}

func (s *Sphere) Bounds() core.AABB {
	r := core.Vec3{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return core.AABB{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

func (s *Sphere) Area() float64 { return 4 * math.Pi * s.Radius * s.Radius }

func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (Interaction, bool) {
	oc := ray.Origin.Sub(s.Center)
	a := ray.Direction.LengthSq()
	halfB := oc.Dot(ray.Direction)
	c := oc.LengthSq() - s.Radius*s.Radius
	disc := halfB*halfB - a*c
	if disc < 0 {
		return Interaction{}, false
	}
	sqrtd := math.Sqrt(disc)

	root := (-halfB - sqrtd) / a
	if root < tMin || root > tMax {
		root = (-halfB + sqrtd) / a
		if root < tMin || root > tMax {
			return Interaction{}, false
		}
	}

	p := ray.At(root)
	outward := p.Sub(s.Center).Mul(1 / s.Radius)
	it := Interaction{P: p, Ns: outward, T: root, UV: sphereUV(outward)}
	it.SetFaceNormal(ray.Direction, outward)
	return it, true
}

func sphereUV(p core.Vec3) core.Vec2 {
	theta := math.Acos(core.Clamp(-p.Y, -1, 1))
	phi := math.Atan2(-p.Z, p.X) + math.Pi
	return core.Vec2{X: phi / (2 * math.Pi), Y: theta / math.Pi}
}

func (s *Sphere) SampleArea(u core.Vec2) (p, n core.Vec3, pdf float64) {
	d := core.SampleUniformSphere(u)
	n = d
	p = s.Center.Add(d.Mul(s.Radius))
	pdf = 1 / s.Area()
	return
}
