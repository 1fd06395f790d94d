package core

// Frame is an orthonormal tangent/bitangent/normal basis used to move
// directions between world space and a local shading space where the
// normal is +Z. Every BSDF, phase function, and NEE shadow-ray test works
// in a Frame rather than carrying world-space trig everywhere.
type Frame struct {
	X, Y, Z Vec3
}

// FrameFromNormal builds a Frame with Z = n, choosing the tangent by
// picking whichever world axis is least parallel to n (the same trick the
// cosine-hemisphere warp uses to avoid a degenerate cross product).
func FrameFromNormal(n Vec3) Frame {
	n = n.Normalize()
	var helper Vec3
	if absf(n.X) > 0.9 {
		helper = Vec3{0, 1, 0}
	} else {
		helper = Vec3{1, 0, 0}
	}
	x := helper.Cross(n).Normalize()
	y := n.Cross(x)
	return Frame{X: x, Y: y, Z: n}
}

func (f Frame) ToLocal(v Vec3) Vec3 {
	return Vec3{v.Dot(f.X), v.Dot(f.Y), v.Dot(f.Z)}
}

func (f Frame) ToWorld(v Vec3) Vec3 {
	return f.X.Mul(v.X).Add(f.Y.Mul(v.Y)).Add(f.Z.Mul(v.Z))
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// CosTheta / SinTheta2 / TanTheta2 assume v is expressed in a local frame
// where Z is the shading normal.
func CosTheta(v Vec3) float64    { return v.Z }
func CosTheta2(v Vec3) float64   { return v.Z * v.Z }
func SinTheta2(v Vec3) float64   { return maxf(0, 1-CosTheta2(v)) }
func TanTheta2(v Vec3) float64   { return SinTheta2(v) / maxf(CosTheta2(v), 1e-12) }
func SameHemisphere(a, b Vec3) bool { return a.Z*b.Z > 0 }

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
