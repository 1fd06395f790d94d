package bsdf

import "github.com/lucidrt/lucid/pkg/core"

// Null is a passthrough BSDF used purely to mark a medium boundary (the
// surface of a participating-media shape): the integrator treats a Null
// hit specially, updating ray.Medium without spending a depth unit,
// exactly as spec §4.5/§9 describes. Transcribed from
// original_source/src/materials/null.rs.
type Null struct{}

func (Null) Eval(wi, wo core.Vec3) core.Spectrum {
	if wo.Add(wi).Length() < 1e-6 {
		c := wi.Z
		if c == 0 {
			return core.Spectrum{}
		}
		inv := 1 / absf(c)
		return core.Spectrum{X: inv, Y: inv, Z: inv}
	}
	return core.Spectrum{}
}

func (Null) Pdf(wi, wo core.Vec3) float64 { return 1 }

func (Null) Sample(wi core.Vec3, u2 core.Vec2) (Sample, bool) {
	return Sample{Wo: wi.Negate(), Weight: core.Vec3{X: 1, Y: 1, Z: 1}, Pdf: 1, IsDelta: true}, true
}

func (Null) IsDelta() bool { return true }

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
