package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestDistribution1DSampleMatchesWeights(t *testing.T) {
	weights := []float64{1, 3, 6}
	d := NewDistribution1D(weights)
	counts := make([]int, len(weights))
	rng := rand.New(rand.NewSource(1))
	const n = 100000
	for i := 0; i < n; i++ {
		idx, pdf, uRemap := d.SampleDiscrete(rng.Float64())
		counts[idx]++
		if pdf != d.PdfDiscrete(idx) {
			t.Fatalf("SampleDiscrete pdf %g disagrees with PdfDiscrete %g", pdf, d.PdfDiscrete(idx))
		}
		if uRemap < 0 || uRemap > 1 {
			t.Fatalf("remapped u = %g out of [0,1]", uRemap)
		}
	}
	total := 10.0
	for i, w := range weights {
		got := float64(counts[i]) / float64(n)
		want := w / total
		if math.Abs(got-want) > 0.02 {
			t.Errorf("bucket %d frequency = %g, want close to %g", i, got, want)
		}
	}
}

func TestDistribution1DEmptyIsSafe(t *testing.T) {
	d := NewDistribution1D(nil)
	idx, pdf, u := d.SampleDiscrete(0.5)
	if idx != 0 || pdf != 0 || u != 0 {
		t.Errorf("empty distribution should sample (0,0,0), got (%d,%g,%g)", idx, pdf, u)
	}
}

func TestDistribution2DSamplePdfConsistency(t *testing.T) {
	const w, h = 8, 4
	weights := make([]float64, w*h)
	rng := rand.New(rand.NewSource(2))
	for i := range weights {
		weights[i] = rng.Float64() + 0.05
	}
	d := NewDistribution2D(weights, w, h)
	for i := 0; i < 1000; i++ {
		u := Vec2{X: rng.Float64(), Y: rng.Float64()}
		uv, pdf := d.Sample(u)
		got := d.Pdf(uv)
		if math.Abs(got-pdf) > 1e-6*math.Max(1, pdf) {
			t.Fatalf("Sample pdf=%g, Pdf(uv)=%g at uv=%v", pdf, got, uv)
		}
	}
}

func TestFrameToLocalToWorldRoundTrips(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		n := Vec3{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1, Z: rng.Float64()*2 - 1}
		if n.LengthSq() < 1e-9 {
			continue
		}
		f := FrameFromNormal(n)
		v := Vec3{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1, Z: rng.Float64()*2 - 1}
		local := f.ToLocal(v)
		back := f.ToWorld(local)
		if back.Sub(v).Length() > 1e-9 {
			t.Fatalf("round trip failed: v=%v back=%v", v, back)
		}
	}
}

func TestFrameFromNormalZMatchesNormal(t *testing.T) {
	n := Vec3{X: 0.3, Y: 0.1, Z: 0.9}.Normalize()
	f := FrameFromNormal(n)
	if f.Z.Sub(n).Length() > 1e-9 {
		t.Errorf("Frame.Z = %v, want %v", f.Z, n)
	}
	if math.Abs(f.X.Dot(f.Y)) > 1e-9 || math.Abs(f.X.Dot(f.Z)) > 1e-9 || math.Abs(f.Y.Dot(f.Z)) > 1e-9 {
		t.Errorf("Frame axes are not orthogonal: %v", f)
	}
}

func TestSampleCosineHemispherePdfConsistency(t *testing.T) {
	normal := Vec3{X: 0, Y: 0, Z: 1}
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 2000; i++ {
		u := Vec2{X: rng.Float64(), Y: rng.Float64()}
		d := SampleCosineHemisphere(normal, u)
		if d.Dot(normal) < 0 {
			t.Fatalf("sampled direction %v is below the hemisphere", d)
		}
		if math.Abs(d.Length()-1) > 1e-9 {
			t.Fatalf("sampled direction %v is not unit length", d)
		}
		pdf := CosineHemispherePDF(d.Dot(normal))
		if pdf <= 0 {
			t.Fatalf("pdf should be positive for a direction above the hemisphere, got %g", pdf)
		}
	}
}

func TestSampleUniformSphereIsUnitLength(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 500; i++ {
		d := SampleUniformSphere(Vec2{X: rng.Float64(), Y: rng.Float64()})
		if math.Abs(d.Length()-1) > 1e-9 {
			t.Fatalf("direction %v is not unit length", d)
		}
	}
}

func TestSampleUniformConeStaysWithinAngle(t *testing.T) {
	direction := Vec3{X: 0, Y: 0, Z: 1}
	cosThetaMax := math.Cos(0.3)
	rng := rand.New(rand.NewSource(6))
	for i := 0; i < 500; i++ {
		d := SampleUniformCone(direction, cosThetaMax, Vec2{X: rng.Float64(), Y: rng.Float64()})
		cosTheta := d.Dot(direction)
		if cosTheta < cosThetaMax-1e-9 {
			t.Fatalf("sampled direction cosTheta=%g below cosThetaMax=%g", cosTheta, cosThetaMax)
		}
	}
}

func TestSampleUniformTriangleStaysInBarycentricSimplex(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		b0, b1 := SampleUniformTriangle(Vec2{X: rng.Float64(), Y: rng.Float64()})
		b2 := 1 - b0 - b1
		if b0 < -1e-9 || b1 < -1e-9 || b2 < -1e-9 {
			t.Fatalf("barycentric coords (%g,%g,%g) leave the simplex", b0, b1, b2)
		}
	}
}
