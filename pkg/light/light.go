// Package light implements emitters: Area (bound to a shape), Directional
// (a delta distant light), and Environment (an importance-sampled
// lat-long radiance map).
package light

import "github.com/lucidrt/lucid/pkg/core"

// DirectSample is the result of Emitter.SampleDirect: a candidate
// next-event-estimation direction from a shading point toward the
// emitter, with its solid-angle pdf already converted from whatever
// measure the emitter samples in (area, for Area; the map's (u,v)
// measure, for Environment; none, for the delta Directional), per spec §4.4.
type DirectSample struct {
	Wi       core.Vec3
	Distance float64
	Pdf      float64
	Le       core.Spectrum
	IsDelta  bool
}

// Emitter is implemented by Area, Directional, and Environment.
type Emitter interface {
	SampleDirect(p core.Vec3, u core.Vec2) (DirectSample, bool)
	// PdfDirect returns the solid-angle pdf of sampling direction wi via
	// SampleDirect from p, used to compute the BSDF-sampling side of the
	// NEE/BSDF MIS weight. Always 0 for a delta emitter (Directional).
	PdfDirect(p, wi core.Vec3) float64
	// Le returns the radiance carried by a ray that escaped the scene
	// without hitting any shape, for emitters visible directly (only
	// Environment implements this meaningfully; Area/Directional return
	// zero since they're bound to finite geometry a BVH miss can't see).
	Le(ray core.Ray) core.Spectrum
}
