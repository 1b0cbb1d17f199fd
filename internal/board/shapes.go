// Package board holds the discrete side of the well: the shape catalog, the
// occupancy grid, the active piece and line-clear compaction.
package board

import "github.com/vovakirdan/well-escape/internal/core"

// ShapeType identifies a piece type.
type ShapeType uint8

const (
	ShapeI ShapeType = iota
	ShapeO
	ShapeT
	ShapeS
	ShapeZ
	ShapeJ
	ShapeL
	shapeCount
)

// Shape is a trimmed boolean matrix for one rotation, indexed [row][col].
type Shape [][]bool

// Width returns the number of columns in the shape.
func (s Shape) Width() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Height returns the number of rows in the shape.
func (s Shape) Height() int {
	return len(s)
}

// Offset is a filled cell of a shape relative to its top-left corner.
type Offset struct {
	DX, DY int
}

// Cells returns the filled cells of the shape.
func (s Shape) Cells() []Offset {
	out := make([]Offset, 0, 4)
	for dy, row := range s {
		for dx, filled := range row {
			if filled {
				out = append(out, Offset{DX: dx, DY: dy})
			}
		}
	}
	return out
}

// BottomRows returns, per column, the lowest filled row of the shape or -1.
func (s Shape) BottomRows() []int {
	out := make([]int, s.Width())
	for dx := range out {
		out[dx] = -1
		for dy := s.Height() - 1; dy >= 0; dy-- {
			if s[dy][dx] {
				out[dx] = dy
				break
			}
		}
	}
	return out
}

type shapeDef struct {
	name      string
	color     core.Color
	rotations []Shape
}

var catalog [shapeCount]shapeDef

func init() {
	catalog = [shapeCount]shapeDef{
		ShapeI: {"I", core.ColorCyan, parseRotations(
			[]string{"####"},
			[]string{"#", "#", "#", "#"},
		)},
		ShapeO: {"O", core.ColorYellow, parseRotations(
			[]string{"##", "##"},
		)},
		ShapeT: {"T", core.ColorMagenta, parseRotations(
			[]string{".#.", "###"},
			[]string{"#.", "##", "#."},
			[]string{"###", ".#."},
			[]string{".#", "##", ".#"},
		)},
		ShapeS: {"S", core.ColorGreen, parseRotations(
			[]string{".##", "##."},
			[]string{"#.", "##", ".#"},
		)},
		ShapeZ: {"Z", core.ColorRed, parseRotations(
			[]string{"##.", ".##"},
			[]string{".#", "##", "#."},
		)},
		ShapeJ: {"J", core.ColorBlue, parseRotations(
			[]string{"#..", "###"},
			[]string{"##", "#.", "#."},
			[]string{"###", "..#"},
			[]string{".#", ".#", "##"},
		)},
		ShapeL: {"L", core.ColorOrange, parseRotations(
			[]string{"..#", "###"},
			[]string{"#.", "#.", "##"},
			[]string{"###", "#.."},
			[]string{"##", ".#", ".#"},
		)},
	}
}

func parseRotations(rows ...[]string) []Shape {
	out := make([]Shape, len(rows))
	for i, r := range rows {
		shape := make(Shape, len(r))
		for y, line := range r {
			shape[y] = make([]bool, len(line))
			for x, ch := range line {
				shape[y][x] = ch == '#'
			}
		}
		out[i] = shape
	}
	return out
}

// ShapeTypes returns every piece type in catalog order.
func ShapeTypes() []ShapeType {
	out := make([]ShapeType, shapeCount)
	for i := range out {
		out[i] = ShapeType(i)
	}
	return out
}

// Valid reports whether t names a catalog entry.
func (t ShapeType) Valid() bool {
	return t < shapeCount
}

// String returns the conventional letter for the type.
func (t ShapeType) String() string {
	if !t.Valid() {
		return "?"
	}
	return catalog[t].name
}

// Color returns the render color for the type.
func (t ShapeType) Color() core.Color {
	if !t.Valid() {
		return core.ColorGray
	}
	return catalog[t].color
}

// Block returns the grid identifier written when a piece of this type locks.
func (t ShapeType) Block() Block {
	return Block(t) + 1
}

// Rotations returns the number of distinct rotation states.
func (t ShapeType) Rotations() int {
	if !t.Valid() {
		return 0
	}
	return len(catalog[t].rotations)
}

// Shape returns the matrix for rotation rot, wrapped into range.
// Callers must not mutate the result.
func (t ShapeType) Shape(rot int) Shape {
	rots := catalog[t].rotations
	n := len(rots)
	return rots[((rot%n)+n)%n]
}

// MaxRotations is the largest rotation count in the catalog.
func MaxRotations() int {
	best := 0
	for _, def := range catalog {
		best = core.Max(best, len(def.rotations))
	}
	return best
}
