// Package bsdf implements the scattering-distribution library: the
// contract every surface material satisfies, plus Lambertian, rough
// conductor/dielectric microfacet models, a stochastic Blend, a
// TwoSided wrapper, and the Null passthrough used at medium boundaries.
package bsdf

import "github.com/lucidrt/lucid/pkg/core"

// Sample is the result of BSDF.Sample: Weight already includes the
// cosine term and has been divided by Pdf (Weight = f*|cos|/pdf), so the
// integrator can multiply it straight into throughput, per spec §4.3.
type Sample struct {
	Wo      core.Vec3
	Weight  core.Spectrum
	Pdf     float64
	IsDelta bool
}

// BSDF is evaluated in a local shading frame where the normal is +Z; the
// caller (pkg/integrator) is responsible for transforming wi/wo into that
// frame via core.Frame and transforming the sampled Wo back to world
// space. Eval's returned value already includes the |cos(theta_o)| term,
// matching spec §4.3's explicit contract (the original Rust
// implementation's roughconductor.rs omits it; this repo includes it).
type BSDF interface {
	Eval(wi, wo core.Vec3) core.Spectrum
	Sample(wi core.Vec3, u2 core.Vec2) (Sample, bool)
	Pdf(wi, wo core.Vec3) float64
	// IsDelta reports whether every lobe of this BSDF is a delta lobe;
	// when true, NEE always skips it (a pure mirror/glass has zero
	// probability of matching a random light direction).
	IsDelta() bool
}

// ShadingCorrection returns the light-leak-prevention factor from
// original_source/src/integrators/path.rs's shading_normal_correction:
// when the shading-frame cosines and the geometric-normal cosines
// disagree in sign for either direction, the contribution is invalid and
// should be dropped (ok=false); otherwise the returned factor rescales a
// shading-frame BSDF evaluation to be energy-consistent with the
// geometric normal.
func ShadingCorrection(wiWorld, woWorld core.Vec3, wiLocal, woLocal core.Vec3, nGeo core.Vec3) (factor float64, ok bool) {
	wiDotGeo := wiWorld.Dot(nGeo)
	woDotGeo := woWorld.Dot(nGeo)
	if wiLocal.Z*wiDotGeo <= 0 || woLocal.Z*woDotGeo <= 0 {
		return 0, false
	}
	factor = (wiLocal.Z * woDotGeo) / (woLocal.Z * wiDotGeo)
	if factor < 0 {
		factor = -factor
	}
	return factor, true
}
