package obj

import (
	"strings"
	"testing"
)

const triangleOBJ = `
# a single textured, shaded triangle
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1
`

func TestDecodeParsesPositionsUVsNormals(t *testing.T) {
	mesh, err := Decode(strings.NewReader(triangleOBJ))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(mesh.Positions) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(mesh.Positions))
	}
	if len(mesh.Indices) != 1 {
		t.Fatalf("expected 1 triangle, got %d", len(mesh.Indices))
	}
	if !mesh.HasUVs() || !mesh.HasNormals() {
		t.Fatal("expected both UVs and normals to be present")
	}
	if mesh.Positions[1].X != 1 {
		t.Errorf("second vertex X = %g, want 1", mesh.Positions[1].X)
	}
	for _, n := range mesh.Normals {
		if n.Z != 1 {
			t.Errorf("normal = %v, want (0,0,1)", n)
		}
	}
}

const quadOBJ = `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`

func TestDecodeFanTriangulatesQuad(t *testing.T) {
	mesh, err := Decode(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(mesh.Indices) != 2 {
		t.Fatalf("expected a quad to fan-triangulate into 2 faces, got %d", len(mesh.Indices))
	}
	if mesh.HasUVs() || mesh.HasNormals() {
		t.Fatal("a v-only face should carry no UVs or normals")
	}
}

const negativeIndexOBJ = `
v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`

func TestDecodeResolvesNegativeIndices(t *testing.T) {
	mesh, err := Decode(strings.NewReader(negativeIndexOBJ))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(mesh.Indices) != 1 {
		t.Fatalf("expected 1 triangle, got %d", len(mesh.Indices))
	}
	if mesh.Positions[0].X != 0 || mesh.Positions[1].X != 1 || mesh.Positions[2].Y != 1 {
		t.Errorf("negative-index face resolved to unexpected vertices: %+v", mesh.Positions)
	}
}

func TestDecodeRejectsOutOfRangeIndex(t *testing.T) {
	const bad = `
v 0 0 0
f 1 2 3
`
	if _, err := Decode(strings.NewReader(bad)); err == nil {
		t.Fatal("expected an error for a face referencing a nonexistent vertex")
	}
}
