package light

import (
	"math"

	"github.com/lucidrt/lucid/pkg/core"
)

// Environment is a lat-long (equirectangular) radiance map, importance
// sampled with a core.Distribution2D built over sin(theta)-weighted
// pixel luminances so that uniformly-bright rows near the poles (which
// map to small solid angle) are not over-sampled, per spec §4.4. New
// relative to the teacher's uniform/gradient infinite lights; grounded
// conceptually on original_source/src/emitters/envmap.rs's
// marginal/conditional CDF-over-rows-then-columns construction.
type Environment struct {
	Width, Height int
	Pixels        []core.Spectrum // row-major, Width*Height
	dist          *core.Distribution2D
}

// NewEnvironment builds the importance table, weighting each pixel's
// luminance by sin(theta) per the lat-long Jacobian.
func NewEnvironment(width, height int, pixels []core.Spectrum) *Environment {
	weights := make([]float64, width*height)
	for y := 0; y < height; y++ {
		theta := (float64(y) + 0.5) / float64(height) * math.Pi
		sinTheta := math.Sin(theta)
		for x := 0; x < width; x++ {
			weights[y*width+x] = pixels[y*width+x].Luminance() * sinTheta
		}
	}
	return &Environment{Width: width, Height: height, Pixels: pixels, dist: core.NewDistribution2D(weights, width, height)}
}

func dirToUV(d core.Vec3) core.Vec2 {
	phi := math.Atan2(d.Z, d.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	theta := math.Acos(core.Clamp(d.Y, -1, 1))
	return core.Vec2{X: phi / (2 * math.Pi), Y: theta / math.Pi}
}

func uvToDir(uv core.Vec2) core.Vec3 {
	phi := uv.X * 2 * math.Pi
	theta := uv.Y * math.Pi
	sinTheta := math.Sin(theta)
	return core.Vec3{X: sinTheta * math.Cos(phi), Y: math.Cos(theta), Z: sinTheta * math.Sin(phi)}
}

func (e *Environment) lookup(uv core.Vec2) core.Spectrum {
	x := int(uv.X * float64(e.Width))
	y := int(uv.Y * float64(e.Height))
	x = clampInt(x, 0, e.Width-1)
	y = clampInt(y, 0, e.Height-1)
	return e.Pixels[y*e.Width+x]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (e *Environment) SampleDirect(p core.Vec3, u core.Vec2) (DirectSample, bool) {
	uv, pdfUV := e.dist.Sample(u)
	if pdfUV <= 0 {
		return DirectSample{}, false
	}
	wi := uvToDir(uv)
	sinTheta := math.Sin(uv.Y * math.Pi)
	if sinTheta <= 1e-6 {
		return DirectSample{}, false
	}
	pdfSolid := pdfUV / (2 * math.Pi * math.Pi * sinTheta)
	return DirectSample{Wi: wi, Distance: math.Inf(1), Pdf: pdfSolid, Le: e.lookup(uv)}, true
}

func (e *Environment) PdfDirect(p, wi core.Vec3) float64 {
	uv := dirToUV(wi.Normalize())
	sinTheta := math.Sin(uv.Y * math.Pi)
	if sinTheta <= 1e-6 {
		return 0
	}
	return e.dist.Pdf(uv) / (2 * math.Pi * math.Pi * sinTheta)
}

func (e *Environment) Le(ray core.Ray) core.Spectrum {
	return e.lookup(dirToUV(ray.Direction.Normalize()))
}
