package exr

import (
	"bytes"
	"math"
	"testing"

	"github.com/lucidrt/lucid/pkg/camera"
	"github.com/lucidrt/lucid/pkg/core"
)

func TestFloat32ToHalfBitsRoundTrips(t *testing.T) {
	cases := []float32{0, 1, -1, 0.5, 65504, 0.001}
	for _, f := range cases {
		bits := float32ToHalfBits(f)
		got := halfBitsToFloat32(bits)
		if math.Abs(float64(got-f)) > 0.01*math.Abs(float64(f))+1e-6 {
			t.Errorf("float32ToHalfBits(%v) round-trips to %v", f, got)
		}
	}
}

func TestFloat32ToHalfBitsSpecialValues(t *testing.T) {
	if got := float32ToHalfBits(float32(math.Inf(1))); got != 0x7C00 {
		t.Errorf("+Inf -> %#x, want 0x7C00", got)
	}
	if got := float32ToHalfBits(float32(math.Inf(-1))); got != 0xFC00 {
		t.Errorf("-Inf -> %#x, want 0xFC00", got)
	}
}

func TestWriteProducesNonEmptyStream(t *testing.T) {
	film := camera.NewFilm(4, 3)
	film.At(1, 1).AddSample(core.Spectrum{X: 1, Y: 2, Z: 3})

	var buf bytes.Buffer
	if err := Write(&buf, film, PixelTypeHalf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty EXR stream")
	}
	magic := buf.Bytes()[0:4]
	if magic[0] != 0x76 || magic[1] != 0x2f || magic[2] != 0x31 || magic[3] != 0x01 {
		t.Errorf("unexpected magic bytes %v", magic)
	}
}

// halfBitsToFloat32 mirrors half.Half.Float32() for test-only verification
// without depending on the library's exact decode path.
func halfBitsToFloat32(bits uint16) float32 {
	sign := uint32(bits>>15) & 1
	exp := uint32(bits>>10) & 0x1F
	mant := uint32(bits) & 0x3FF
	var f uint32
	switch {
	case exp == 0:
		// zero or subnormal; float32ToHalfBits only ever produces the
		// zero case (exp<=0 flushes to zero), so subnormal decode is not
		// exercised here.
		f = sign << 31
	case exp == 0x1F:
		f = sign<<31 | 0xFF<<23 | mant<<13
	default:
		f = sign<<31 | (exp+112)<<23 | mant<<13
	}
	return math.Float32frombits(f)
}
