// Package vol decodes the Mitsuba ".vol" dense-grid binary format into a
// medium.DenseGrid, grounded on original_source/src/volumes/grid.rs's
// GridVolume::from_file (header layout: "VOL" magic, version byte,
// int32 encoding/xres/yres/zres/channels, float32 bounding box, then
// xres*yres*zres*channels float32 samples in x-fastest, then y, then z
// order). Only encoding 1 (raw float32) and channel counts 1 (density),
// 3 or 6 (the first three collapsed to luminance) are supported, matching the
// subset of the format original_source/src/media/heterogeneous.rs
// actually consumes.
package vol

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/lucidrt/lucid/pkg/core"
	"github.com/lucidrt/lucid/pkg/medium"
)

const (
	encodingFloat32 = 1
)

// Load reads path and returns a medium.DenseGrid plus the file's local-
// space bounding box (min/max in the grid's own coordinate frame, per
// the header's embedded bbox fields).
func Load(path string) (*medium.DenseGrid, core.AABB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.AABB{}, &core.IOError{Path: path, Cause: err}
	}
	defer f.Close()
	return Decode(bufio.NewReader(f), path)
}

func Decode(r *bufio.Reader, path string) (*medium.DenseGrid, core.AABB, error) {
	var magic [3]byte
	if _, err := r.Read(magic[:]); err != nil || string(magic[:]) != "VOL" {
		return nil, core.AABB{}, &core.InputError{Context: fmt.Sprintf("vol: %q missing VOL magic", path)}
	}
	version, err := r.ReadByte()
	if err != nil || version != 3 {
		return nil, core.AABB{}, &core.InputError{Context: fmt.Sprintf("vol: %q unsupported version %d", path, version)}
	}

	var encoding, xres, yres, zres, channels int32
	for _, v := range []*int32{&encoding, &xres, &yres, &zres, &channels} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return nil, core.AABB{}, &core.InputError{Context: fmt.Sprintf("vol: %q truncated header", path), Cause: err}
		}
	}
	if encoding != encodingFloat32 {
		return nil, core.AABB{}, &core.InputError{Context: fmt.Sprintf("vol: %q unsupported encoding %d", path, encoding)}
	}
	if xres <= 0 || yres <= 0 || zres <= 0 {
		return nil, core.AABB{}, &core.InputError{Context: fmt.Sprintf("vol: %q non-positive resolution", path)}
	}
	if channels != 1 && channels != 3 && channels != 6 {
		return nil, core.AABB{}, &core.InputError{Context: fmt.Sprintf("vol: %q unsupported channel count %d", path, channels)}
	}

	var bboxVals [6]float32
	for i := range bboxVals {
		if err := binary.Read(r, binary.LittleEndian, &bboxVals[i]); err != nil {
			return nil, core.AABB{}, &core.InputError{Context: fmt.Sprintf("vol: %q truncated bbox", path), Cause: err}
		}
	}
	bbox := core.AABB{
		Min: core.Vec3{X: float64(bboxVals[0]), Y: float64(bboxVals[1]), Z: float64(bboxVals[2])},
		Max: core.Vec3{X: float64(bboxVals[3]), Y: float64(bboxVals[4]), Z: float64(bboxVals[5])},
	}

	n := int(xres) * int(yres) * int(zres)
	data := make([]float32, n)
	raw := make([]float32, channels)
	for i := 0; i < n; i++ {
		for c := range raw {
			if err := binary.Read(r, binary.LittleEndian, &raw[c]); err != nil {
				return nil, core.AABB{}, &core.InputError{Context: fmt.Sprintf("vol: %q truncated sample data", path), Cause: err}
			}
		}
		switch channels {
		case 1:
			data[i] = raw[0]
		default: // 3 or 6: collapse to Rec.709 luminance over the first 3 channels
			data[i] = 0.2126*raw[0] + 0.7152*raw[1] + 0.0722*raw[2]
		}
	}

	grid := medium.NewDenseGrid(int(xres), int(yres), int(zres), data, bbox)
	return grid, bbox, nil
}
