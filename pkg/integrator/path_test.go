package integrator

import (
	"math"
	"testing"

	"github.com/lucidrt/lucid/pkg/bsdf"
	"github.com/lucidrt/lucid/pkg/core"
	"github.com/lucidrt/lucid/pkg/light"
	"github.com/lucidrt/lucid/pkg/sampler"
	"github.com/lucidrt/lucid/pkg/scene"
	"github.com/lucidrt/lucid/pkg/shape"
)

// directLitSphere builds a single diffuse sphere under one overhead
// directional light and no other occluders, so the only contribution to
// Li is next-event estimation against that one light.
func directLitSphere(albedo float64, irradiance float64) *scene.Scene {
	b := scene.NewBuilder()
	b.AddPrimitive(&shape.Sphere{Center: core.Vec3{}, Radius: 1}, &bsdf.Lambertian{Albedo: bsdf.SolidColor{X: albedo, Y: albedo, Z: albedo}}, nil, nil, nil)
	b.AddEmitter(&light.Directional{Direction: core.Vec3{Y: -1}, Irradiance: core.Spectrum{X: irradiance, Y: irradiance, Z: irradiance}})
	return b.Build()
}

// TestLiMatchesLambertianDirectLightingAtNormalIncidence checks the
// one-bounce case against the closed-form Lambertian direct-lighting
// result L = albedo/pi * irradiance * cos(theta), for a ray that hits
// the sphere dead-on under the light (theta=0).
func TestLiMatchesLambertianDirectLightingAtNormalIncidence(t *testing.T) {
	sc := directLitSphere(0.8, 3.0)
	pt := NewPathTracer(Config{MaxDepth: 2, RussianRouletteMinBounces: 64})

	ray := core.Ray{Origin: core.Vec3{Y: 5}, Direction: core.Vec3{Y: -1}}
	s := sampler.NewIndependent(1)
	s.StartPixel(0, 0)

	const n = 20000
	sum := core.Spectrum{}
	for i := 0; i < n; i++ {
		s.StartSample(i)
		sum = sum.Add(pt.Li(ray, sc, s))
	}
	mean := sum.Mul(1 / float64(n))

	want := 0.8 / math.Pi * 3.0
	if math.Abs(mean.X-want) > 0.05*want {
		t.Errorf("mean direct radiance = %v, want ~%g in every channel", mean, want)
	}
}

// TestLiDiscardsNonFiniteThroughput exercises the NaN/Inf guard: a
// degenerate ray (zero-length direction) must not propagate a NaN
// radiance out of Li.
func TestLiDiscardsNonFiniteThroughput(t *testing.T) {
	sc := directLitSphere(0.8, 3.0)
	pt := NewPathTracer(Config{MaxDepth: 4, RussianRouletteMinBounces: 3})

	ray := core.Ray{Origin: core.Vec3{Y: 5}, Direction: core.Vec3{}}
	s := sampler.NewIndependent(2)
	s.StartPixel(0, 0)
	s.StartSample(0)

	l := pt.Li(ray, sc, s)
	if !l.IsFinite() {
		t.Errorf("Li returned a non-finite spectrum for a degenerate ray: %v", l)
	}
}

// TestLiIsZeroWhenRayMissesEverything covers the escape case: a ray
// that hits neither the sphere nor any emitter returns zero radiance.
func TestLiIsZeroWhenRayMissesEverything(t *testing.T) {
	sc := directLitSphere(0.8, 3.0)
	pt := NewPathTracer(Config{MaxDepth: 4, RussianRouletteMinBounces: 3})

	ray := core.Ray{Origin: core.Vec3{Y: 5, X: 100}, Direction: core.Vec3{Y: -1}}
	s := sampler.NewIndependent(3)
	s.StartPixel(0, 0)
	s.StartSample(0)

	l := pt.Li(ray, sc, s)
	if l.X != 0 || l.Y != 0 || l.Z != 0 {
		t.Errorf("Li for a ray that hits nothing = %v, want zero", l)
	}
}
