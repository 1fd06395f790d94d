package bsdf

import (
	"math"

	"github.com/lucidrt/lucid/pkg/core"
)

// RoughConductor is grounded on original_source/src/materials/roughconductor.rs
// (GGX D/G, VNDF sampling, Schlick conductor Fresnel), generalizing the
// teacher's pkg/material/metal.go perfect-mirror-plus-fuzz model into a
// full microfacet BRDF. Eval includes the |cos(theta_o)| factor per
// spec §4.3's explicit contract (the Rust reference's eval omits it).
type RoughConductor struct {
	Alpha               float64
	SpecularReflectance core.Spectrum // f0, the normal-incidence reflectance color
}

func (r *RoughConductor) alpha() float64 { return math.Max(r.Alpha, 1e-4) }

func (r *RoughConductor) Eval(wi, wo core.Vec3) core.Spectrum {
	if wi.Z <= 0 || wo.Z <= 0 {
		return core.Spectrum{}
	}
	m := wi.Add(wo)
	if m.LengthSq() <= 0 {
		return core.Spectrum{}
	}
	m = m.Normalize()
	if m.Z <= 0 {
		return core.Spectrum{}
	}

	alpha := r.alpha()
	d := ggxD(m.Z, alpha)
	g := ggxG(wi.Z, wo.Z, alpha)
	f := fresnelSchlick(r.SpecularReflectance, math.Abs(wi.Dot(m)))
	denom := 4 * math.Abs(wi.Z) * math.Abs(wo.Z)
	if denom <= 1e-6 {
		return core.Spectrum{}
	}
	return f.Mul(d * g / denom * wo.Z)
}

func (r *RoughConductor) Pdf(wi, wo core.Vec3) float64 {
	if wi.Z <= 0 || wo.Z <= 0 {
		return 0
	}
	m := wi.Add(wo)
	if m.LengthSq() <= 0 {
		return 0
	}
	m = m.Normalize()
	pdfM := pdfGGXVNDF(wi, m, r.alpha())
	denom := 4 * math.Abs(wo.Dot(m))
	if denom <= 1e-6 {
		return 0
	}
	return pdfM / denom
}

func (r *RoughConductor) Sample(wi core.Vec3, u2 core.Vec2) (Sample, bool) {
	if wi.Z <= 0 {
		return Sample{}, false
	}
	alpha := r.alpha()
	m := sampleGGXVNDF(wi, u2, alpha)
	if wi.Dot(m) <= 0 {
		return Sample{}, false
	}
	wo := reflectAbout(wi, m)
	if wo.Z <= 0 {
		return Sample{}, false
	}
	pdf := r.Pdf(wi, wo)
	if pdf <= 0 || !isFinitef(pdf) {
		return Sample{}, false
	}
	weight := r.Eval(wi, wo).Mul(1 / pdf)
	return Sample{Wo: wo, Weight: weight, Pdf: pdf}, true
}

func (r *RoughConductor) IsDelta() bool { return false }

func isFinitef(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
