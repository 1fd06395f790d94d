package render

// Tile is one rectangular, non-overlapping region of the film a single
// worker owns for the duration of one task, per spec §5.
type Tile struct {
	ID             int
	X0, Y0, X1, Y1 int // half-open pixel bounds [X0,X1) x [Y0,Y1)
}

// tileGrid partitions a width x height image into tileSize x tileSize
// tiles (the last row/column clipped to the image edge), grounded on the
// teacher's pkg/renderer NewTileGrid.
func tileGrid(width, height, tileSize int) []Tile {
	var tiles []Tile
	id := 0
	for y := 0; y < height; y += tileSize {
		for x := 0; x < width; x += tileSize {
			x1 := min(x+tileSize, width)
			y1 := min(y+tileSize, height)
			tiles = append(tiles, Tile{ID: id, X0: x, Y0: y, X1: x1, Y1: y1})
			id++
		}
	}
	return tiles
}
