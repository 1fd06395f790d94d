// Package exr writes a single-layer, linear-RGB OpenEXR scanline file.
// The float-to-half bit packing is hand-rolled (float32ToHalfBits) and
// the package depends only on the standard library. The scanline container itself (magic number,
// version, attribute list, scanline offset table, per-scanline channel
// interleaving) is grounded on the stable EXR file layout rather than any
// retrieved writer API, since none of the examples implement a writer.
package exr

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/lucidrt/lucid/pkg/camera"
)

const (
	magicNumber = 20000630
	versionFlag = 2 // version 2, no flags (tiled/deep/multipart all unset)
)

// PixelType mirrors the EXR attribute enumeration; this writer only ever
// emits HALF or FLOAT.
type PixelType int32

const (
	PixelTypeHalf  PixelType = 1
	PixelTypeFloat PixelType = 2
)

// Write encodes film's mean radiance per pixel as a single RGB layer,
// top-left scanline order, per spec.md §6.
func Write(w io.Writer, film *camera.Film, pixelType PixelType) error {
	bw := bufio.NewWriter(w)

	if err := writeHeader(bw, film.Width, film.Height, pixelType); err != nil {
		return err
	}

	bytesPerChannel := 2
	if pixelType == PixelTypeFloat {
		bytesPerChannel = 4
	}
	rowBytes := int64(film.Width) * 3 * int64(bytesPerChannel)
	lineDescBytes := int64(4 + 4) // y (int32) + data size (int32)

	offsets := make([]int64, film.Height)
	// The offset table's base address is computed analytically (by
	// re-running writeHeader against a byte counter) rather than tracked
	// live, since bufio.Writer doesn't expose bytes written so far.
	base := headerSize(pixelType)
	tableBytes := int64(film.Height) * 8
	for y := 0; y < film.Height; y++ {
		offsets[y] = base + tableBytes + int64(y)*(lineDescBytes+rowBytes)
	}
	for _, off := range offsets {
		if err := binary.Write(bw, binary.LittleEndian, off); err != nil {
			return err
		}
	}

	rChan := make([]byte, film.Width*bytesPerChannel)
	gChan := make([]byte, film.Width*bytesPerChannel)
	bChan := make([]byte, film.Width*bytesPerChannel)

	for y := 0; y < film.Height; y++ {
		for x := 0; x < film.Width; x++ {
			c := film.At(x, y).Mean()
			encodeChannel(bChan, x, c.Z, pixelType) // EXR channels are alphabetical: B, G, R
			encodeChannel(gChan, x, c.Y, pixelType)
			encodeChannel(rChan, x, c.X, pixelType)
		}
		if err := binary.Write(bw, binary.LittleEndian, int32(y)); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, int32(rowBytes)); err != nil {
			return err
		}
		if _, err := bw.Write(bChan); err != nil {
			return err
		}
		if _, err := bw.Write(gChan); err != nil {
			return err
		}
		if _, err := bw.Write(rChan); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func encodeChannel(dst []byte, x int, v float64, pixelType PixelType) {
	f := float32(v)
	if pixelType == PixelTypeHalf {
		bits := float32ToHalfBits(f)
		binary.LittleEndian.PutUint16(dst[x*2:], bits)
		return
	}
	binary.LittleEndian.PutUint32(dst[x*4:], math.Float32bits(f))
}

// float32ToHalfBits implements the standard IEEE 754 binary32 -> binary16
// round-to-nearest-even conversion, clamping overflow to +/-Inf and
// flushing subnormal results to zero rather than denormal half bits
// (acceptable for linear HDR radiance, which is never subnormal in
// practice at this scale).
func float32ToHalfBits(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16((bits >> 16) & 0x8000)
	exp := int32((bits>>23)&0xFF) - 127 + 15
	mant := bits & 0x7FFFFF

	switch {
	case math.IsNaN(float64(f)):
		return sign | 0x7E00
	case math.IsInf(float64(f), 0):
		return sign | 0x7C00
	case exp <= 0:
		return sign
	case exp >= 31:
		return sign | 0x7C00
	default:
		h := uint32(exp)<<10 | mant>>13
		rest := mant & 0x1FFF
		if rest > 0x1000 || (rest == 0x1000 && h&1 == 1) {
			h++ // a carry out of the top exponent yields 0x7C00 (Inf)
		}
		return sign | uint16(h)
	}
}

// writeHeader emits the magic number, version, and attribute list of a
// single-part scanline EXR file with one RGB half/float layer, no
// compression (compression type 0, NO_COMPRESSION), per the stable EXR
// container layout.
func writeHeader(w io.Writer, width, height int, pixelType PixelType) error {
	if err := binary.Write(w, binary.LittleEndian, int32(magicNumber)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(versionFlag)); err != nil {
		return err
	}

	writeAttr := func(name, attrType string, payload []byte) error {
		if err := writeCString(w, name); err != nil {
			return err
		}
		if err := writeCString(w, attrType); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, int32(len(payload))); err != nil {
			return err
		}
		_, err := w.Write(payload)
		return err
	}

	channels := channelListPayload(pixelType)
	if err := writeAttr("channels", "chlist", channels); err != nil {
		return err
	}
	if err := writeAttr("compression", "compression", []byte{0}); err != nil {
		return err
	}
	box := boxPayload(width, height)
	if err := writeAttr("dataWindow", "box2i", box); err != nil {
		return err
	}
	if err := writeAttr("displayWindow", "box2i", box); err != nil {
		return err
	}
	if err := writeAttr("lineOrder", "lineOrder", []byte{0}); err != nil { // INCREASING_Y
		return err
	}
	if err := writeAttr("pixelAspectRatio", "float", float32Payload(1)); err != nil {
		return err
	}
	if err := writeAttr("screenWindowCenter", "v2f", append(float32Payload(0), float32Payload(0)...)); err != nil {
		return err
	}
	if err := writeAttr("screenWindowWidth", "float", float32Payload(1)); err != nil {
		return err
	}
	_, err := w.Write([]byte{0}) // end of header attribute list
	return err
}

func writeCString(w io.Writer, s string) error {
	if _, err := w.Write([]byte(s)); err != nil {
		return err
	}
	_, err := w.Write([]byte{0})
	return err
}

func float32Payload(f float32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(f))
	return b
}

func boxPayload(width, height int) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint32(b[0:], uint32(int32(0)))
	binary.LittleEndian.PutUint32(b[4:], uint32(int32(0)))
	binary.LittleEndian.PutUint32(b[8:], uint32(int32(width-1)))
	binary.LittleEndian.PutUint32(b[12:], uint32(int32(height-1)))
	return b
}

// channelListPayload emits B, G, R (alphabetical order, as EXR requires)
// each with the chosen pixel type, linear flag, default sampling, then
// the list's null terminator.
func channelListPayload(pixelType PixelType) []byte {
	var buf []byte
	for _, name := range []string{"B", "G", "R"} {
		buf = append(buf, []byte(name)...)
		buf = append(buf, 0)
		pt := make([]byte, 4)
		binary.LittleEndian.PutUint32(pt, uint32(pixelType))
		buf = append(buf, pt...)
		buf = append(buf, 0)          // pLinear
		buf = append(buf, 0, 0, 0)    // reserved
		xs := make([]byte, 4)
		binary.LittleEndian.PutUint32(xs, 1)
		buf = append(buf, xs...) // xSampling
		buf = append(buf, xs...) // ySampling
	}
	buf = append(buf, 0)
	return buf
}

func headerSize(pixelType PixelType) int64 {
	// Computed by running writeHeader into a counting sink below, so the offset
	// table's base address always matches what writeHeader actually wrote.
	cw := &countingWriter{}
	_ = writeHeader(cw, 0, 0, pixelType)
	return cw.n
}

type countingWriter struct{ n int64 }

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
