package bsdf

import "github.com/lucidrt/lucid/pkg/core"

// TwoSided flips the local frame when the incident direction arrives
// from the back side, so a one-sided BSDF (every concrete type above
// assumes wi.Z>0) can be applied to double-sided geometry like a thin
// leaf or a single-sided quad light's backing material. New relative to
// the teacher; spec §4.3 names it explicitly.
type TwoSided struct {
	Inner BSDF
}

func flipIfNeeded(wi, wo core.Vec3) (core.Vec3, core.Vec3, bool) {
	if wi.Z < 0 {
		return wi.Negate(), wo.Negate(), true
	}
	return wi, wo, false
}

func (t *TwoSided) Eval(wi, wo core.Vec3) core.Spectrum {
	wi, wo, _ = flipIfNeeded(wi, wo)
	return t.Inner.Eval(wi, wo)
}

func (t *TwoSided) Pdf(wi, wo core.Vec3) float64 {
	wi, wo, _ = flipIfNeeded(wi, wo)
	return t.Inner.Pdf(wi, wo)
}

func (t *TwoSided) Sample(wi core.Vec3, u2 core.Vec2) (Sample, bool) {
	fwi, _, flipped := flipIfNeeded(wi, core.Vec3{})
	s, ok := t.Inner.Sample(fwi, u2)
	if !ok {
		return Sample{}, false
	}
	if flipped {
		s.Wo = s.Wo.Negate()
	}
	return s, true
}

func (t *TwoSided) IsDelta() bool { return t.Inner.IsDelta() }
