// Package ply loads a Stanford PLY mesh (ASCII or binary_little_endian)
// into a shape.TriangleMesh, grounded on the teacher's pkg/loaders/ply.go
// header/property parsing, trimmed to the properties the renderer's
// geometry pipeline actually consumes: vertex position, optional normal,
// optional texture coordinate, and triangulated face lists (polygons with
// more than 3 vertices are fan-triangulated, matching the teacher's
// LoadPLY behavior).
package ply

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lucidrt/lucid/pkg/core"
	"github.com/lucidrt/lucid/pkg/shape"
)

type property struct {
	name     string
	isList   bool
	listType string
	dataType string
}

type header struct {
	format      string
	vertexCount int
	faceCount   int
	vertexProps []property
	nx, ny, nz  int // indices into vertexProps, -1 if absent
	u, v        int
}

// Load reads path and returns a TriangleMesh.
func Load(path string) (*shape.TriangleMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &core.IOError{Path: path, Cause: err}
	}
	defer f.Close()
	return Decode(f)
}

func Decode(r io.Reader) (*shape.TriangleMesh, error) {
	br := bufio.NewReader(r)
	h, err := parseHeader(br)
	if err != nil {
		return nil, err
	}

	switch h.format {
	case "ascii":
		return decodeASCII(br, h)
	case "binary_little_endian":
		return decodeBinary(br, h)
	default:
		return nil, &core.InputError{Context: fmt.Sprintf("ply: unsupported format %q (only ascii/binary_little_endian)", h.format)}
	}
}

func parseHeader(br *bufio.Reader) (*header, error) {
	line, err := readLine(br)
	if err != nil || strings.TrimSpace(line) != "ply" {
		return nil, &core.InputError{Context: "ply: missing magic line"}
	}

	h := &header{nx: -1, ny: -1, nz: -1, u: -1, v: -1}
	section := ""
	for {
		line, err = readLine(br)
		if err != nil {
			return nil, &core.InputError{Context: "ply: unexpected EOF in header", Cause: err}
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "comment":
			continue
		case "format":
			h.format = fields[1]
		case "element":
			section = fields[1]
			count, _ := strconv.Atoi(fields[2])
			if section == "vertex" {
				h.vertexCount = count
			} else if section == "face" {
				h.faceCount = count
			}
		case "property":
			if section != "vertex" {
				continue
			}
			if fields[1] == "list" {
				h.vertexProps = append(h.vertexProps, property{name: fields[4], isList: true, listType: fields[2], dataType: fields[3]})
			} else {
				idx := len(h.vertexProps)
				name := fields[2]
				switch name {
				case "nx":
					h.nx = idx
				case "ny":
					h.ny = idx
				case "nz":
					h.nz = idx
				case "u", "s":
					h.u = idx
				case "v", "t":
					h.v = idx
				}
				h.vertexProps = append(h.vertexProps, property{name: name, dataType: fields[1]})
			}
		case "end_header":
			return h, nil
		}
	}
}

func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}

func decodeASCII(br *bufio.Reader, h *header) (*shape.TriangleMesh, error) {
	mesh := &shape.TriangleMesh{}
	mesh.Positions = make([]core.Vec3, h.vertexCount)
	hasN := h.nx >= 0
	hasUV := h.u >= 0
	if hasN {
		mesh.Normals = make([]core.Vec3, h.vertexCount)
	}
	if hasUV {
		mesh.UVs = make([]core.Vec2, h.vertexCount)
	}

	for i := 0; i < h.vertexCount; i++ {
		line, err := readLine(br)
		if err != nil {
			return nil, &core.InputError{Context: "ply: truncated vertex list", Cause: err}
		}
		fields := strings.Fields(line)
		vals := make([]float64, len(fields))
		for j, fld := range fields {
			vals[j], _ = strconv.ParseFloat(fld, 64)
		}
		mesh.Positions[i] = core.Vec3{X: vals[0], Y: vals[1], Z: vals[2]}
		if hasN {
			mesh.Normals[i] = core.Vec3{X: vals[h.nx], Y: vals[h.ny], Z: vals[h.nz]}
		}
		if hasUV {
			mesh.UVs[i] = core.Vec2{X: vals[h.u], Y: vals[h.v]}
		}
	}

	for i := 0; i < h.faceCount; i++ {
		line, err := readLine(br)
		if err != nil {
			return nil, &core.InputError{Context: "ply: truncated face list", Cause: err}
		}
		fields := strings.Fields(line)
		n, _ := strconv.Atoi(fields[0])
		idx := make([]int, n)
		for j := 0; j < n; j++ {
			idx[j], _ = strconv.Atoi(fields[1+j])
		}
		fanTriangulate(mesh, idx)
	}
	return mesh, nil
}

func decodeBinary(r io.Reader, h *header) (*shape.TriangleMesh, error) {
	mesh := &shape.TriangleMesh{}
	mesh.Positions = make([]core.Vec3, h.vertexCount)
	hasN := h.nx >= 0
	hasUV := h.u >= 0
	if hasN {
		mesh.Normals = make([]core.Vec3, h.vertexCount)
	}
	if hasUV {
		mesh.UVs = make([]core.Vec2, h.vertexCount)
	}

	readScalar := func(dataType string) (float64, error) {
		switch dataType {
		case "float", "float32":
			var v float32
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return 0, err
			}
			return float64(v), nil
		case "double", "float64":
			var v float64
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return 0, err
			}
			return v, nil
		default:
			return 0, fmt.Errorf("ply: unsupported scalar type %q", dataType)
		}
	}

	for i := 0; i < h.vertexCount; i++ {
		vals := make([]float64, len(h.vertexProps))
		for j, p := range h.vertexProps {
			v, err := readScalar(p.dataType)
			if err != nil {
				return nil, &core.InputError{Context: "ply: truncated binary vertex data", Cause: err}
			}
			vals[j] = v
		}
		mesh.Positions[i] = core.Vec3{X: vals[0], Y: vals[1], Z: vals[2]}
		if hasN {
			mesh.Normals[i] = core.Vec3{X: vals[h.nx], Y: vals[h.ny], Z: vals[h.nz]}
		}
		if hasUV {
			mesh.UVs[i] = core.Vec2{X: vals[h.u], Y: vals[h.v]}
		}
	}

	for i := 0; i < h.faceCount; i++ {
		var count uint8
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return nil, &core.InputError{Context: "ply: truncated binary face list", Cause: err}
		}
		idx := make([]int, count)
		for j := 0; j < int(count); j++ {
			var v int32
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, &core.InputError{Context: "ply: truncated binary face index", Cause: err}
			}
			idx[j] = int(v)
		}
		fanTriangulate(mesh, idx)
	}
	return mesh, nil
}

func fanTriangulate(mesh *shape.TriangleMesh, idx []int) {
	for k := 1; k+1 < len(idx); k++ {
		mesh.Indices = append(mesh.Indices, [3]int{idx[0], idx[k], idx[k+1]})
	}
}
