// Package phase implements the Henyey-Greenstein phase function used by
// every medium in pkg/medium.
package phase

import (
	"math"

	"github.com/lucidrt/lucid/pkg/core"
)

// HenyeyGreenstein is grounded on spec §4.5's phase-function requirement;
// g in (-1,1), g=0 is isotropic, g>0 forward-scattering, g<0 back-scattering.
type HenyeyGreenstein struct {
	G float64
}

func hgPhase(cosTheta, g float64) float64 {
	denom := 1 + g*g + 2*g*cosTheta
	if denom <= 0 {
		return 0
	}
	return (1 - g*g) / (4 * math.Pi * denom * math.Sqrt(denom))
}

// Eval follows the BSDF convention that wo and wi both point away from
// the scattering point (wo back toward the ray's origin, wi toward
// where it continues); cosTheta = dot(wo, wi), so g>0 favors wi close to
// -wo, i.e. the ray continuing roughly along its original direction of
// travel.
func (h HenyeyGreenstein) Eval(wo, wi core.Vec3) float64 {
	return hgPhase(wo.Dot(wi), h.G)
}

func (h HenyeyGreenstein) Sample(wo core.Vec3, u core.Vec2) (wi core.Vec3, pdf float64) {
	g := h.G
	var cosTheta float64
	if math.Abs(g) < 1e-3 {
		cosTheta = 1 - 2*u.X
	} else {
		sqr := (1 - g*g) / (1 + g - 2*g*u.X)
		cosTheta = -(1 + g*g - sqr*sqr) / (2 * g)
	}
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * u.Y
	frame := core.FrameFromNormal(wo)
	local := core.Vec3{X: sinTheta * math.Cos(phi), Y: sinTheta * math.Sin(phi), Z: cosTheta}
	wi = frame.ToWorld(local)
	pdf = hgPhase(cosTheta, g)
	return
}

func (h HenyeyGreenstein) Pdf(wo, wi core.Vec3) float64 { return h.Eval(wo, wi) }
