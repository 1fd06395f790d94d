package light

import (
	"math"

	"github.com/lucidrt/lucid/pkg/core"
)

// Directional is a delta distant light, transcribed from
// original_source/src/emitters/directional.rs: a fixed Direction and an
// Irradiance measured on a plane perpendicular to it (resolving spec
// §9's directional-emitter-units Open Question; see SPEC_FULL.md). Emission
// sampling (used for bidirectional techniques, not wired here since BDPT
// is a Non-goal) would use a bounding-disk method; direct lighting needs
// only the single deterministic direction.
type Directional struct {
	Direction   core.Vec3 // direction light travels, i.e. from light toward the scene
	Irradiance  core.Spectrum
	bsphereR    float64
}

func (d *Directional) SetSceneBounds(center core.Vec3, radius float64) {
	d.bsphereR = radius
}

func (d *Directional) SampleDirect(p core.Vec3, u core.Vec2) (DirectSample, bool) {
	wi := d.Direction.Negate().Normalize()
	dist := math.Inf(1)
	if d.bsphereR > 0 {
		dist = 2 * d.bsphereR
	}
	return DirectSample{Wi: wi, Distance: dist, Pdf: 1, Le: d.Irradiance, IsDelta: true}, true
}

func (d *Directional) PdfDirect(p, wi core.Vec3) float64 { return 0 }

func (d *Directional) Le(ray core.Ray) core.Spectrum { return core.Spectrum{} }
