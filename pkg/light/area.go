package light

import (
	"math"

	"github.com/lucidrt/lucid/pkg/core"
	"github.com/lucidrt/lucid/pkg/shape"
)

// Area binds emission to a shape.Shape, grounded on the teacher's
// pkg/lights/quad_light.go and sphere_light.go, generalized to any Shape
// that implements SampleArea rather than special-casing each primitive
// type, and on original_source/src/emitters/area.rs's
// sample_position/pdf_position split (here folded into SampleDirect's
// area-to-solid-angle conversion).
type Area struct {
	Shape    shape.Shape
	Radiance core.Spectrum
	TwoSided bool
}

func (a *Area) SampleDirect(p core.Vec3, u core.Vec2) (DirectSample, bool) {
	q, n, pdfArea := a.Shape.SampleArea(u)
	if pdfArea <= 0 {
		return DirectSample{}, false
	}
	toLight := q.Sub(p)
	dist2 := toLight.LengthSq()
	if dist2 <= 1e-12 {
		return DirectSample{}, false
	}
	dist := math.Sqrt(dist2)
	wi := toLight.Mul(1 / dist)
	cosLight := n.Dot(wi.Negate())
	if !a.TwoSided && cosLight <= 0 {
		return DirectSample{}, false
	}
	if a.TwoSided {
		cosLight = math.Abs(cosLight)
	}
	if cosLight <= 1e-9 {
		return DirectSample{}, false
	}
	pdfSolid := pdfArea * dist2 / cosLight
	return DirectSample{Wi: wi, Distance: dist, Pdf: pdfSolid, Le: a.Radiance}, true
}

func (a *Area) PdfDirect(p, wi core.Vec3) float64 {
	ray := core.NewRay(p, wi)
	it, ok := a.Shape.Hit(ray, 1e-4, math.Inf(1))
	if !ok {
		return 0
	}
	// Hit orients it.N against the ray, so the emitting side is read
	// from FrontFace rather than from the sign of the cosine.
	if !a.TwoSided && !it.FrontFace {
		return 0
	}
	cosLight := math.Abs(it.N.Dot(wi.Negate()))
	if cosLight <= 1e-9 {
		return 0
	}
	dist2 := it.T * it.T * wi.LengthSq()
	pdfArea := 1 / a.Shape.Area()
	return pdfArea * dist2 / cosLight
}

func (a *Area) Le(ray core.Ray) core.Spectrum { return core.Spectrum{} }

// EmittedRadiance is called by the integrator when a traced path hits
// the emitter's own shape directly (bounce==0 or BSDF-sampled
// continuation), checking the front-face convention from spec §4.4.
func (a *Area) EmittedRadiance(n, wOut core.Vec3) core.Spectrum {
	cos := n.Dot(wOut)
	if !a.TwoSided && cos <= 0 {
		return core.Spectrum{}
	}
	return a.Radiance
}
