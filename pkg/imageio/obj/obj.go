// Package obj loads a Wavefront OBJ mesh into a shape.TriangleMesh. No
// retrieved example carries a working OBJ parser (the LoadObj calls in
// other_examples/0Xero7-pathtrace__main.go are all to a function whose
// body was never captured by the retrieval), so this is hand-rolled
// against the plain-text v/vt/vn/f line grammar, splitting each line
// with strings.Fields as pkg/imageio/ply does for its ASCII branch.
package obj

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lucidrt/lucid/pkg/core"
	"github.com/lucidrt/lucid/pkg/shape"
)

// Load reads path and returns a TriangleMesh.
func Load(path string) (*shape.TriangleMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &core.IOError{Path: path, Cause: err}
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses the OBJ text grammar: v/vn/vt lines accumulate into
// source attribute pools, f lines reference them by 1-based (optionally
// negative, relative-to-end) index triplets. Each face corner becomes
// its own TriangleMesh vertex slot (no attribute deduplication across
// corners), since Triangle indexes Positions/Normals/UVs in lockstep by
// a single index per corner and OBJ's independent v/vt/vn indices don't
// share that layout.
func Decode(r io.Reader) (*shape.TriangleMesh, error) {
	var positions []core.Vec3
	var normals []core.Vec3
	var uvs []core.Vec2
	mesh := &shape.TriangleMesh{}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, &core.InputError{Context: "obj: malformed v line " + strconv.Itoa(lineNo), Cause: err}
			}
			positions = append(positions, v)
		case "vn":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, &core.InputError{Context: "obj: malformed vn line " + strconv.Itoa(lineNo), Cause: err}
			}
			normals = append(normals, v)
		case "vt":
			u, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, &core.InputError{Context: "obj: malformed vt line " + strconv.Itoa(lineNo), Cause: err}
			}
			v := 0.0
			if len(fields) > 2 {
				v, err = strconv.ParseFloat(fields[2], 64)
				if err != nil {
					return nil, &core.InputError{Context: "obj: malformed vt line " + strconv.Itoa(lineNo), Cause: err}
				}
			}
			uvs = append(uvs, core.Vec2{X: u, Y: v})
		case "f":
			if err := appendFace(mesh, fields[1:], positions, normals, uvs); err != nil {
				return nil, &core.InputError{Context: "obj: malformed f line " + strconv.Itoa(lineNo), Cause: err}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &core.IOError{Cause: err}
	}
	return mesh, nil
}

func parseVec3(fields []string) (core.Vec3, error) {
	if len(fields) < 3 {
		return core.Vec3{}, strconv.ErrSyntax
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return core.Vec3{}, err
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return core.Vec3{}, err
	}
	z, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return core.Vec3{}, err
	}
	return core.Vec3{X: x, Y: y, Z: z}, nil
}

// faceCorner resolves one "v/vt/vn" token into a fresh TriangleMesh
// vertex slot appended to mesh's attribute pools, returning its index.
func faceCorner(mesh *shape.TriangleMesh, token string, positions, normals []core.Vec3, uvs []core.Vec2) (int, error) {
	parts := strings.Split(token, "/")
	vi, err := resolveIndex(parts[0], len(positions))
	if err != nil {
		return 0, err
	}
	mesh.Positions = append(mesh.Positions, positions[vi])

	if len(parts) > 1 && parts[1] != "" {
		ti, err := resolveIndex(parts[1], len(uvs))
		if err != nil {
			return 0, err
		}
		for len(mesh.UVs) < len(mesh.Positions)-1 {
			mesh.UVs = append(mesh.UVs, core.Vec2{})
		}
		mesh.UVs = append(mesh.UVs, uvs[ti])
	} else if len(mesh.UVs) > 0 {
		mesh.UVs = append(mesh.UVs, core.Vec2{})
	}

	if len(parts) > 2 && parts[2] != "" {
		ni, err := resolveIndex(parts[2], len(normals))
		if err != nil {
			return 0, err
		}
		for len(mesh.Normals) < len(mesh.Positions)-1 {
			mesh.Normals = append(mesh.Normals, core.Vec3{})
		}
		mesh.Normals = append(mesh.Normals, normals[ni])
	} else if len(mesh.Normals) > 0 {
		mesh.Normals = append(mesh.Normals, core.Vec3{})
	}

	return len(mesh.Positions) - 1, nil
}

func resolveIndex(field string, count int) (int, error) {
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		n = count + n
	} else {
		n--
	}
	if n < 0 || n >= count {
		return 0, strconv.ErrRange
	}
	return n, nil
}

// appendFace fan-triangulates an OBJ face (3+ corners) the same way
// pkg/imageio/ply handles non-triangular faces.
func appendFace(mesh *shape.TriangleMesh, tokens []string, positions, normals []core.Vec3, uvs []core.Vec2) error {
	corners := make([]int, len(tokens))
	for i, tok := range tokens {
		idx, err := faceCorner(mesh, tok, positions, normals, uvs)
		if err != nil {
			return err
		}
		corners[i] = idx
	}
	for k := 1; k+1 < len(corners); k++ {
		mesh.Indices = append(mesh.Indices, [3]int{corners[0], corners[k], corners[k+1]})
	}
	return nil
}
