package shape

import (
	"math"

	"github.com/lucidrt/lucid/pkg/core"
)

// Triangle references vertex data owned by a shared TriangleMesh so that
// a mesh of N triangles costs one shared vertex buffer rather than N
// copies, grounded on the teacher's pkg/geometry/triangle_mesh.go split
// between a mesh and lightweight per-face Triangle values.
type Triangle struct {
	Mesh       *TriangleMesh
	I0, I1, I2 int
}

func (t *Triangle) verts() (p0, p1, p2 core.Vec3) {
	return t.Mesh.Positions[t.I0], t.Mesh.Positions[t.I1], t.Mesh.Positions[t.I2]
}

func (t *Triangle) Bounds() core.AABB {
	p0, p1, p2 := t.verts()
	b := core.AABB{Min: p0, Max: p0}
	return b.UnionPoint(p1).UnionPoint(p2)
}

func (t *Triangle) Area() float64 {
	p0, p1, p2 := t.verts()
	return p1.Sub(p0).Cross(p2.Sub(p0)).Length() * 0.5
}

// Hit is a Möller–Trumbore ray-triangle test that accepts barycentrics
// up to 1e-9 outside each edge. It is not the shear-based watertight
// formulation: rays through a shared edge or vertex are kept by that
// tolerance, not by an exact edge rule.
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64) (Interaction, bool) {
	p0, p1, p2 := t.verts()
	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	geoN := e1.Cross(e2)

	pvec := ray.Direction.Cross(e2)
	det := e1.Dot(pvec)
	if math.Abs(det) < 1e-12 {
		return Interaction{}, false
	}
	invDet := 1 / det

	tvec := ray.Origin.Sub(p0)
	u := tvec.Dot(pvec) * invDet
	if u < -1e-9 || u > 1+1e-9 {
		return Interaction{}, false
	}

	qvec := tvec.Cross(e1)
	v := ray.Direction.Dot(qvec) * invDet
	if v < -1e-9 || u+v > 1+1e-9 {
		return Interaction{}, false
	}

	tHit := e2.Dot(qvec) * invDet
	if tHit < tMin || tHit > tMax {
		return Interaction{}, false
	}

	w := 1 - u - v
	p := p0.Mul(w).Add(p1.Mul(u)).Add(p2.Mul(v))

	ns := geoN.Normalize()
	if t.Mesh.HasNormals() {
		n0, n1, n2 := t.Mesh.Normals[t.I0], t.Mesh.Normals[t.I1], t.Mesh.Normals[t.I2]
		ns = n0.Mul(w).Add(n1.Mul(u)).Add(n2.Mul(v)).Normalize()
	}

	uv := core.Vec2{X: u, Y: v}
	if t.Mesh.HasUVs() {
		uv0, uv1, uv2 := t.Mesh.UVs[t.I0], t.Mesh.UVs[t.I1], t.Mesh.UVs[t.I2]
		uv = core.Vec2{
			X: uv0.X*w + uv1.X*u + uv2.X*v,
			Y: uv0.Y*w + uv1.Y*u + uv2.Y*v,
		}
	}

	it := Interaction{P: p, Ns: ns, T: tHit, UV: uv}
	it.SetFaceNormal(ray.Direction, geoN.Normalize())
	return it, true
}

func (t *Triangle) SampleArea(u core.Vec2) (p, n core.Vec3, pdf float64) {
	p0, p1, p2 := t.verts()
	b0, b1 := core.SampleUniformTriangle(u)
	p = p0.Mul(b0).Add(p1.Mul(b1)).Add(p2.Mul(1 - b0 - b1))
	n = p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
	pdf = 1 / t.Area()
	return
}

// TriangleMesh owns shared vertex attribute buffers; individual
// Triangle.Hit calls index into it, grounded on the teacher's
// pkg/geometry/triangle_mesh.go.
type TriangleMesh struct {
	Positions []core.Vec3
	Normals   []core.Vec3
	UVs       []core.Vec2
	Indices   [][3]int
}

func (m *TriangleMesh) HasNormals() bool { return len(m.Normals) > 0 }
func (m *TriangleMesh) HasUVs() bool     { return len(m.UVs) > 0 }

// Triangles returns one Shape per face, to be fed to shape.BuildBVH.
func (m *TriangleMesh) Triangles() []Shape {
	out := make([]Shape, len(m.Indices))
	for i, idx := range m.Indices {
		out[i] = &Triangle{Mesh: m, I0: idx[0], I1: idx[1], I2: idx[2]}
	}
	return out
}
