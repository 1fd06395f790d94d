package bsdf

import "github.com/lucidrt/lucid/pkg/core"

// Blend is a stochastic linear mixture of two BSDFs, grounded on the
// teacher's pkg/material/mix.go (weight=0 -> A, weight=1 -> B) and
// original_source/src/materials/blend.rs's stratification-preserving
// remap of the branch-selection random number and its combined pdf
// (the weighted mixture of both sub-pdfs, regardless of which branch
// was actually sampled, so MIS against NEE stays correct; a delta
// sample from one branch instead carries that branch's pdf scaled by
// its selection probability).
type Blend struct {
	A, B   BSDF
	Weight float64 // probability of choosing B
}

func (m *Blend) Eval(wi, wo core.Vec3) core.Spectrum {
	ea := m.A.Eval(wi, wo)
	eb := m.B.Eval(wi, wo)
	return ea.Mul(1 - m.Weight).Add(eb.Mul(m.Weight))
}

func (m *Blend) Pdf(wi, wo core.Vec3) float64 {
	return (1-m.Weight)*m.A.Pdf(wi, wo) + m.Weight*m.B.Pdf(wi, wo)
}

func (m *Blend) Sample(wi core.Vec3, u2 core.Vec2) (Sample, bool) {
	// u2.X doubles as the branch-selection scalar; remap it back into
	// [0,1) within its sub-range so the chosen branch's own 2D sample
	// stays stratified rather than being biased toward one corner.
	var s Sample
	var ok, sampledB bool
	if u2.X < m.Weight {
		remapped := core.Vec2{X: u2.X / m.Weight, Y: u2.Y}
		s, ok = m.B.Sample(wi, remapped)
		sampledB = true
	} else {
		remapped := core.Vec2{X: (u2.X - m.Weight) / (1 - m.Weight), Y: u2.Y}
		s, ok = m.A.Sample(wi, remapped)
	}
	if !ok {
		return Sample{}, false
	}
	if s.IsDelta {
		// A delta branch's pdf isn't comparable to the other branch's
		// continuous pdf; scale by the branch-selection probability and
		// keep the sample delta rather than mixing it with the other
		// branch's density.
		branchProb := 1 - m.Weight
		if sampledB {
			branchProb = m.Weight
		}
		s.Weight = s.Weight.Mul(branchProb)
		s.Pdf *= branchProb
		return s, true
	}
	pdf := m.Pdf(wi, s.Wo)
	if pdf <= 0 {
		return Sample{}, false
	}
	value := m.Eval(wi, s.Wo)
	s.Pdf = pdf
	s.Weight = value.Mul(1 / pdf)
	return s, true
}

func (m *Blend) IsDelta() bool { return m.A.IsDelta() && m.B.IsDelta() }
