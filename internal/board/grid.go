package board

// Block is an opaque cell identifier; zero means empty.
type Block uint8

// Empty is the zero block.
const Empty Block = 0

// ShapeType returns the piece type that produced the block.
func (b Block) ShapeType() ShapeType {
	if b == Empty {
		return shapeCount
	}
	return ShapeType(b - 1)
}

// Grid is the occupancy matrix. Row 0 is the top.
type Grid struct {
	cols    int
	rows    int
	cells   []Block
	version uint64
}

// NewGrid creates an empty grid.
func NewGrid(cols, rows int) *Grid {
	return &Grid{
		cols:  cols,
		rows:  rows,
		cells: make([]Block, cols*rows),
	}
}

// Cols returns the grid width.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the grid height.
func (g *Grid) Rows() int { return g.rows }

// Version increments on every mutation.
func (g *Grid) Version() uint64 { return g.version }

// InBounds reports whether (x, y) is inside the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.cols && y >= 0 && y < g.rows
}

// At returns the block at (x, y); out of bounds reads as Empty.
func (g *Grid) At(x, y int) Block {
	if !g.InBounds(x, y) {
		return Empty
	}
	return g.cells[y*g.cols+x]
}

// Occupied reports whether (x, y) holds a block. Out of bounds is occupied.
func (g *Grid) Occupied(x, y int) bool {
	if !g.InBounds(x, y) {
		return true
	}
	return g.cells[y*g.cols+x] != Empty
}

// Set writes a block.
func (g *Grid) Set(x, y int, b Block) {
	if !g.InBounds(x, y) {
		return
	}
	g.cells[y*g.cols+x] = b
	g.version++
}

// Reset empties every cell.
func (g *Grid) Reset() {
	clear(g.cells)
	g.version++
}

// Fits reports whether shape placed with its top-left at (x, y) stays in
// bounds and overlaps no occupied cell.
func (g *Grid) Fits(shape Shape, x, y int) bool {
	for dy, row := range shape {
		for dx, filled := range row {
			if filled && g.Occupied(x+dx, y+dy) {
				return false
			}
		}
	}
	return true
}

// Lock writes the shape's cells into the grid.
func (g *Grid) Lock(shape Shape, x, y int, b Block) {
	for dy, row := range shape {
		for dx, filled := range row {
			if filled && g.InBounds(x+dx, y+dy) {
				g.cells[(y+dy)*g.cols+x+dx] = b
			}
		}
	}
	g.version++
}

// Row returns a copy of row y.
func (g *Grid) Row(y int) []Block {
	out := make([]Block, g.cols)
	copy(out, g.cells[y*g.cols:(y+1)*g.cols])
	return out
}

// SetRow overwrites row y. Extra values are ignored.
func (g *Grid) SetRow(y int, blocks []Block) {
	copy(g.cells[y*g.cols:(y+1)*g.cols], blocks)
	g.version++
}

// EmptyInRow returns the number of empty cells in row y and the column of the
// last one found, or -1.
func (g *Grid) EmptyInRow(y int) (count, col int) {
	col = -1
	for x := 0; x < g.cols; x++ {
		if g.cells[y*g.cols+x] == Empty {
			count++
			col = x
		}
	}
	return count, col
}

// ColumnHeights fills dst with the height of each column (rows from the
// floor to the highest occupied cell) and returns it.
func (g *Grid) ColumnHeights(dst []int) []int {
	if cap(dst) < g.cols {
		dst = make([]int, g.cols)
	}
	dst = dst[:g.cols]
	for x := 0; x < g.cols; x++ {
		dst[x] = 0
		for y := 0; y < g.rows; y++ {
			if g.cells[y*g.cols+x] != Empty {
				dst[x] = g.rows - y
				break
			}
		}
	}
	return dst
}

// MaxHeight returns the tallest column height.
func (g *Grid) MaxHeight() int {
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			if g.cells[y*g.cols+x] != Empty {
				return g.rows - y
			}
		}
	}
	return 0
}

// Filled returns the number of occupied cells.
func (g *Grid) Filled() int {
	n := 0
	for _, b := range g.cells {
		if b != Empty {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	out := &Grid{cols: g.cols, rows: g.rows, version: g.version}
	out.cells = make([]Block, len(g.cells))
	copy(out.cells, g.cells)
	return out
}

// CopyFrom overwrites g with src. Both grids must have equal dimensions.
func (g *Grid) CopyFrom(src *Grid) {
	copy(g.cells, src.cells)
	g.version++
}
