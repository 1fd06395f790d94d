package core

import "math"

// Medium is implemented by pkg/medium's Homogeneous and Heterogeneous. It
// lives in core (rather than medium) so Ray can carry "the medium the ray
// currently travels through" without an import cycle.
type Medium interface {
	// Tr returns the transmittance over [0, tMax] along ray, using ratio
	// tracking when the medium is heterogeneous.
	Tr(ray Ray, tMax float64, sampler Sampler) Spectrum
	// SampleDistance delta-tracks a free-flight distance; ok is false if
	// the ray reached tMax without a real-particle interaction.
	SampleDistance(ray Ray, tMax float64, sampler Sampler) (MediumInteraction, bool)
	Phase() PhaseFunction
}

// MediumInteraction is a real-particle scattering event produced by
// Medium.SampleDistance.
type MediumInteraction struct {
	P     Vec3
	Wo    Vec3 // -ray.Direction, the frame's outgoing direction
	Sigma Spectrum
}

// PhaseFunction is implemented by pkg/phase's HenyeyGreenstein.
type PhaseFunction interface {
	Eval(wo, wi Vec3) float64
	Sample(wo Vec3, u Vec2) (wi Vec3, pdf float64)
	Pdf(wo, wi Vec3) float64
}

// Sampler is implemented by pkg/sampler's Independent and Stratified. It
// lives in core so BSDFs, lights, and media can draw random numbers
// without importing the sampler package (which itself imports core).
type Sampler interface {
	Next1D() float64
	Next2D() Vec2
}

// Ray is a parametric ray origin + Direction, carrying the medium it is
// currently traveling through (nil for vacuum) so the integrator can
// attenuate and scatter inside participating media without threading the
// medium through every call site.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	Medium    Medium
	TMax      float64
}

func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction, TMax: math.Inf(1)}
}

func (r Ray) At(t float64) Vec3 { return r.Origin.Add(r.Direction.Mul(t)) }

// Offset nudges p along n by an epsilon proportional to the point's
// magnitude, the same scale-aware bias the teacher's BVH traversal relies
// on to avoid self-intersection on secondary rays.
func Offset(p, n Vec3) Vec3 {
	const eps = 1e-4
	scale := maxf(absf(p.X), maxf(absf(p.Y), absf(p.Z)))
	return p.Add(n.Mul(eps * maxf(scale, 1)))
}
