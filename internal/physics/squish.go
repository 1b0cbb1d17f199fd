package physics

import (
	"github.com/vovakirdan/well-escape/internal/board"
	"github.com/vovakirdan/well-escape/internal/core"
)

// Push identifies a squish resolution attempt.
type Push uint8

const (
	PushNone Push = iota
	PushDown
	PushSide
)

// String returns the push name.
func (p Push) String() string {
	switch p {
	case PushDown:
		return "down"
	case PushSide:
		return "side"
	default:
		return "none"
	}
}

// SquishResult describes a squish resolution.
type SquishResult struct {
	Overlapping bool   // The piece overlapped the player at all
	Attempts    []Push // Pushes tried, in order
	Resolved    Push   // The push that succeeded
	Squished    bool   // No push destination was clear
}

// ResolveSquish pushes the player out of the active piece after it advanced
// downward. The downward push is always tried first; the sideways push only
// when the horizontal overlap is under half the player's width.
func (s *Solver) ResolveSquish(p *Player, g *board.Grid, piece *board.Piece) SquishResult {
	var res SquishResult
	if p.Dead || piece == nil {
		return res
	}
	r := s.Rect(p)

	var cell core.RectF
	lowest := -1
	for _, c := range piece.Cells() {
		cr := s.CellRect(c.DX, c.DY)
		if cr.Intersects(r) && c.DY > lowest {
			lowest = c.DY
			cell = cr
		}
	}
	if lowest < 0 {
		return res
	}
	res.Overlapping = true

	res.Attempts = append(res.Attempts, PushDown)
	down := r
	down.Y = cell.Bottom()
	if down.Bottom() <= s.board.Height() && !s.GridBlocked(down, g) {
		p.Y = down.Y
		p.VY = 0
		res.Resolved = PushDown
		return res
	}

	if r.OverlapX(cell) < r.W/2 {
		res.Attempts = append(res.Attempts, PushSide)
		side := r
		if r.CenterX() < cell.CenterX() {
			side.X = cell.X - r.W
		} else {
			side.X = cell.Right()
		}
		if side.X >= 0 && side.Right() <= s.board.Width() && !s.GridBlocked(side, g) {
			p.X = side.X
			p.VX = 0
			res.Resolved = PushSide
			return res
		}
	}

	res.Squished = true
	return res
}
