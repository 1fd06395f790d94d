// Package texture decodes PNG/JPEG via the standard image package and
// TIFF via golang.org/x/image/tiff (grounded on the x/image dependency
// used throughout _examples/gogpu-gg), producing a bsdf.ColorSource
// backed by a decoded bitmap with nearest-texel UV lookup.
package texture

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"golang.org/x/image/tiff"

	"github.com/lucidrt/lucid/pkg/core"
)

// Bitmap is a decoded, linearized RGB image sampled by UV coordinate.
type Bitmap struct {
	Width, Height int
	Pixels        []core.Spectrum // row-major, top-left origin
	Gamma         float64         // 1.0 for linear sources (e.g. TIFF), 2.2 for sRGB PNG/JPEG
}

// Load decodes path, inferring the codec from its contents (not its
// extension) via image.Decode/tiff.Decode, per spec's "loaders accept
// well-formed input regardless of extension" note.
func Load(path string) (*Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &core.IOError{Path: path, Cause: err}
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		if _, serr := f.Seek(0, 0); serr == nil {
			if tImg, terr := tiff.Decode(f); terr == nil {
				return fromImage(tImg, 1.0), nil
			}
		}
		return nil, &core.IOError{Path: path, Cause: err}
	}

	gamma := 2.2
	if format == "tiff" {
		gamma = 1.0
	}
	return fromImage(img, gamma), nil
}

func fromImage(img image.Image, gamma float64) *Bitmap {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	b := &Bitmap{Width: w, Height: h, Pixels: make([]core.Spectrum, w*h), Gamma: gamma}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			c := core.Spectrum{X: float64(r) / 65535, Y: float64(g) / 65535, Z: float64(bl) / 65535}
			if gamma != 1.0 {
				c.X = srgbToLinear(c.X, gamma)
				c.Y = srgbToLinear(c.Y, gamma)
				c.Z = srgbToLinear(c.Z, gamma)
			}
			b.Pixels[y*w+x] = c
		}
	}
	return b
}

func srgbToLinear(v, gamma float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Pow(v, gamma)
}

// Evaluate implements bsdf.ColorSource: nearest-sample lookup at uv,
// wrapping coordinates outside [0,1).
func (b *Bitmap) Evaluate(uv core.Vec2, p core.Vec3) core.Spectrum {
	x := wrap(uv.X) * float64(b.Width)
	y := (1 - wrap(uv.Y)) * float64(b.Height)
	xi := clampIndex(int(x), b.Width)
	yi := clampIndex(int(y), b.Height)
	return b.Pixels[yi*b.Width+xi]
}

func wrap(v float64) float64 {
	v -= math.Floor(v)
	if v < 0 {
		v += 1
	}
	return v
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
