package medium

import "github.com/lucidrt/lucid/pkg/core"

// Grid is the minimal in-core consumer interface for a density field;
// decoding the on-disk grid format (Mitsuba's .vol layout) lives in
// pkg/imageio/vol, matching spec's framing of VDB/grid loaders as an
// external collaborator.
type Grid interface {
	Bounds() core.AABB
	// Density returns the trilinearly-interpolated density at a point
	// in the grid's local [0,1]^3 space.
	Density(p core.Vec3) float64
	MaxDensity() float64
}

// DenseGrid is a trilinear-filtered regular grid, grounded on
// original_source/src/volumes/grid.rs's fetch/sample_nearest,
// generalized to trilinear filtering per spec §4.5.
type DenseGrid struct {
	NX, NY, NZ int
	Data       []float32 // row-major (z,y,x)
	bounds     core.AABB
	maxDensity float64
}

func NewDenseGrid(nx, ny, nz int, data []float32, bounds core.AABB) *DenseGrid {
	g := &DenseGrid{NX: nx, NY: ny, NZ: nz, Data: data, bounds: bounds}
	for _, v := range data {
		if float64(v) > g.maxDensity {
			g.maxDensity = float64(v)
		}
	}
	return g
}

func (g *DenseGrid) Bounds() core.AABB   { return g.bounds }
func (g *DenseGrid) MaxDensity() float64 { return g.maxDensity }

func (g *DenseGrid) at(x, y, z int) float32 {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if z < 0 {
		z = 0
	}
	if x >= g.NX {
		x = g.NX - 1
	}
	if y >= g.NY {
		y = g.NY - 1
	}
	if z >= g.NZ {
		z = g.NZ - 1
	}
	return g.Data[(z*g.NY+y)*g.NX+x]
}

func (g *DenseGrid) Density(p core.Vec3) float64 {
	fx := p.X*float64(g.NX) - 0.5
	fy := p.Y*float64(g.NY) - 0.5
	fz := p.Z*float64(g.NZ) - 0.5
	x0, y0, z0 := int(floor(fx)), int(floor(fy)), int(floor(fz))
	dx, dy, dz := fx-float64(x0), fy-float64(y0), fz-float64(z0)

	lerp := func(a, b, t float64) float64 { return a + (b-a)*t }
	c := func(x, y, z int) float64 { return float64(g.at(x, y, z)) }

	c00 := lerp(c(x0, y0, z0), c(x0+1, y0, z0), dx)
	c10 := lerp(c(x0, y0+1, z0), c(x0+1, y0+1, z0), dx)
	c01 := lerp(c(x0, y0, z0+1), c(x0+1, y0, z0+1), dx)
	c11 := lerp(c(x0, y0+1, z0+1), c(x0+1, y0+1, z0+1), dx)
	c0 := lerp(c00, c10, dy)
	c1 := lerp(c01, c11, dy)
	return lerp(c0, c1, dz)
}

func floor(x float64) float64 {
	i := int(x)
	if x < 0 && float64(i) != x {
		i--
	}
	return float64(i)
}
