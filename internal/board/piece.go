package board

import "github.com/vovakirdan/well-escape/internal/core"

// Piece is the active falling piece. The shape is always derived from Type
// and Rot.
type Piece struct {
	Type  ShapeType
	Rot   int
	X     int
	Y     int
	Steps int // Natural gravity steps since spawn
}

// State is a search state: position plus rotation.
type State struct {
	X, Y, Rot int
}

// SpawnPiece creates a piece of type t centered at the top of g.
func SpawnPiece(t ShapeType, g *Grid) Piece {
	w := t.Shape(0).Width()
	return Piece{Type: t, X: (g.Cols() - w) / 2}
}

// Shape returns the matrix for the current rotation.
func (p Piece) Shape() Shape {
	return p.Type.Shape(p.Rot)
}

// Color returns the render color.
func (p Piece) Color() core.Color {
	return p.Type.Color()
}

// State returns the piece's search state.
func (p Piece) State() State {
	return State{X: p.X, Y: p.Y, Rot: p.Rot}
}

// WithState returns a copy of p moved to s.
func (p Piece) WithState(s State) Piece {
	p.X, p.Y, p.Rot = s.X, s.Y, s.Rot
	return p
}

// Fits reports whether the piece fits in g at its current state.
func (p Piece) Fits(g *Grid) bool {
	return g.Fits(p.Shape(), p.X, p.Y)
}

// Cells returns the absolute grid cells covered by the piece.
func (p Piece) Cells() []Offset {
	cells := p.Shape().Cells()
	for i := range cells {
		cells[i].DX += p.X
		cells[i].DY += p.Y
	}
	return cells
}

// ColumnSpan returns the first and last grid columns the piece covers.
func (p Piece) ColumnSpan() (int, int) {
	return p.X, p.X + p.Shape().Width() - 1
}

// Bottom returns the lowest grid row the piece covers.
func (p Piece) Bottom() int {
	return p.Y + p.Shape().Height() - 1
}

// DropDistance returns how many rows the piece can still fall in g.
func (p Piece) DropDistance(g *Grid) int {
	shape := p.Shape()
	d := 0
	for g.Fits(shape, p.X, p.Y+d+1) {
		d++
	}
	return d
}

// Lock writes the piece into g.
func (p Piece) Lock(g *Grid) {
	g.Lock(p.Shape(), p.X, p.Y, p.Type.Block())
}
