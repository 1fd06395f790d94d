// Package scene is the immutable registry binding geometry, materials,
// emitters, and media into the single read-only structure the render
// workers share, grounded on the teacher's pkg/scene/scene.go lifecycle
// (Preprocess resolving world bounds for infinite lights once the BVH
// exists) and pkg/core/weighted_light_sampler.go's cumulative-weight
// light selection, generalized to power-weighted sampling over
// core.Distribution1D.
package scene

import (
	"github.com/lucidrt/lucid/pkg/bsdf"
	"github.com/lucidrt/lucid/pkg/camera"
	"github.com/lucidrt/lucid/pkg/core"
	"github.com/lucidrt/lucid/pkg/light"
	"github.com/lucidrt/lucid/pkg/shape"
)

type Scene struct {
	Primitives  []Primitive
	BVH         *shape.BVH
	Emitters    []light.Emitter // includes one entry per Area primitive, plus Directional/Environment
	Environment *light.Environment
	LightDist   *core.Distribution1D
	Camera      *camera.Camera
	WorldCenter core.Vec3
	WorldRadius float64

	// Opaque is true when no primitive carries a Null BSDF or a non-nil
	// Interior/Exterior medium, so every BVH hit is a real occluder and
	// shadow rays can use BVH.Occluded's any-hit short-circuit directly
	// instead of walking segment by segment.
	Opaque bool
}

// Intersect runs the BVH and resolves the hit back to its owning
// Primitive.
func (s *Scene) Intersect(ray core.Ray, tMin, tMax float64) (shape.Interaction, *Primitive, bool) {
	it, ok := s.BVH.Hit(ray, tMin, tMax)
	if !ok {
		return shape.Interaction{}, nil, false
	}
	return it, &s.Primitives[it.Prim], true
}

// SampleLight power-weights light selection by each emitter's total
// emitted power proxy (radiance x area for Area emitters, a fixed
// nominal weight otherwise), per spec §4.4.
func (s *Scene) SampleLight(u float64) (light.Emitter, float64) {
	idx, pdf, _ := s.LightDist.SampleDiscrete(u)
	if pdf <= 0 {
		return nil, 0
	}
	return s.Emitters[idx], pdf
}

func (s *Scene) LightPdf(e light.Emitter) float64 {
	for i, le := range s.Emitters {
		if le == e {
			return s.LightDist.PdfDiscrete(i)
		}
	}
	return 0
}

// Le aggregates environment radiance for a ray that escaped the scene;
// Area and Directional emitters contribute nothing here since a BVH miss
// can't see bounded or purely-delta geometry.
func (s *Scene) Le(ray core.Ray) core.Spectrum {
	if s.Environment != nil {
		return s.Environment.Le(ray)
	}
	return core.Spectrum{}
}

// Transmittance walks the segment [p, p+wi*dist) and returns the
// composed transmittance along it: the product of every traversed
// medium's Tr over its sub-segment, per spec §4.6 step 5. A Null-BSDF
// hit marks a medium interface rather than a real occluder, so the walk
// steps through it, switches to the medium on the far side, and keeps
// going; any other hit is a true occluder and the segment is fully
// blocked (ok=false). startMedium is whatever medium the ray origin is
// already inside (nil for vacuum).
//
// When the scene carries no Null-BSDF boundaries and no participating
// media (Scene.Opaque), this degenerates to a pure geometric visibility
// test and defers to BVH.Occluded's any-hit short-circuit instead of
// paying for the segment walk.
func (s *Scene) Transmittance(p, wi core.Vec3, dist float64, startMedium core.Medium, sampler core.Sampler) (core.Spectrum, bool) {
	const eps = 1e-4
	if s.Opaque {
		if s.BVH.Occluded(core.NewRay(p, wi), eps, dist-eps) {
			return core.Spectrum{}, false
		}
		return core.Spectrum{X: 1, Y: 1, Z: 1}, true
	}

	tr := core.Spectrum{X: 1, Y: 1, Z: 1}
	origin := p
	remaining := dist - 2*eps
	medium := startMedium
	for remaining > eps {
		ray := core.NewRay(origin, wi)
		it, prim, ok := s.Intersect(ray, eps, remaining)
		segment := remaining
		if ok {
			segment = it.T
		}
		if medium != nil {
			tr = tr.MulVec(medium.Tr(ray, segment, sampler))
			if tr.MaxComponent() <= 0 {
				return core.Spectrum{}, false
			}
		}
		if !ok {
			return tr, true
		}
		if _, isNull := prim.BSDF.(*bsdf.Null); isNull {
			if wi.Dot(it.N) < 0 {
				medium = prim.Interior
			} else {
				medium = prim.Exterior
			}
			origin = it.P
			remaining -= it.T
			continue
		}
		return core.Spectrum{}, false
	}
	return tr, true
}
