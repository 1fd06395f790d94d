package camera

import "github.com/lucidrt/lucid/pkg/core"

// Pixel accumulates linear radiance and a sample count, grounded on the
// teacher's pkg/renderer/stats.go PixelStats, trimmed to what a
// tone-neutral film needs (no variance tracking; pkg/render takes a
// fixed number of samples per pixel).
type Pixel struct {
	Sum   core.Spectrum
	Count int
}

func (p *Pixel) AddSample(l core.Spectrum) {
	if !l.IsFinite() {
		return
	}
	p.Sum = p.Sum.Add(l)
	p.Count++
}

func (p *Pixel) Mean() core.Spectrum {
	if p.Count == 0 {
		return core.Spectrum{}
	}
	return p.Sum.Mul(1 / float64(p.Count))
}

// Film is the linear RGB accumulation buffer the render driver writes
// into tile-by-tile with no per-pixel locking, since tiles never
// overlap, per spec §5.
type Film struct {
	Width, Height int
	Pixels        []Pixel
}

func NewFilm(width, height int) *Film {
	return &Film{Width: width, Height: height, Pixels: make([]Pixel, width*height)}
}

func (f *Film) At(x, y int) *Pixel { return &f.Pixels[y*f.Width+x] }
