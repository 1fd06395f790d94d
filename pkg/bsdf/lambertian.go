package bsdf

import (
	"math"

	"github.com/lucidrt/lucid/pkg/core"
)

// ColorSource supplies a possibly spatially-varying reflectance,
// grounded on the teacher's pkg/material/color_source.go indirection
// (solid colors and image/procedural textures share one interface).
type ColorSource interface {
	Evaluate(uv core.Vec2, p core.Vec3) core.Spectrum
}

// SolidColor is the trivial ColorSource, grounded on the teacher's
// color_source.go SolidColor.
type SolidColor core.Spectrum

func (c SolidColor) Evaluate(core.Vec2, core.Vec3) core.Spectrum { return core.Spectrum(c) }

// Lambertian is a perfectly diffuse reflector, grounded on the teacher's
// pkg/material/lambertian.go (cosine-hemisphere sampling over a texture-
// evaluated albedo) generalized to use core.Frame/core.SampleCosineHemisphere.
type Lambertian struct {
	Albedo ColorSource
	UV     core.Vec2
	P      core.Vec3
}

func (l *Lambertian) albedo() core.Spectrum { return l.Albedo.Evaluate(l.UV, l.P) }

func (l *Lambertian) Eval(wi, wo core.Vec3) core.Spectrum {
	if wi.Z <= 0 || wo.Z <= 0 {
		return core.Spectrum{}
	}
	return l.albedo().Mul(wo.Z / math.Pi)
}

func (l *Lambertian) Pdf(wi, wo core.Vec3) float64 {
	if wi.Z <= 0 || wo.Z <= 0 {
		return 0
	}
	return core.CosineHemispherePDF(wo.Z)
}

func (l *Lambertian) Sample(wi core.Vec3, u2 core.Vec2) (Sample, bool) {
	if wi.Z <= 0 {
		return Sample{}, false
	}
	wo := core.SampleCosineHemisphere(core.Vec3{Z: 1}, u2)
	pdf := core.CosineHemispherePDF(wo.Z)
	if pdf <= 0 {
		return Sample{}, false
	}
	return Sample{Wo: wo, Weight: l.albedo(), Pdf: pdf}, true
}

func (l *Lambertian) IsDelta() bool { return false }
