// Package physics resolves continuous player motion against the discrete
// grid and the active piece.
package physics

import "github.com/vovakirdan/well-escape/internal/core"

// Player is the pixel-space actor inside the well.
type Player struct {
	X, Y         float64 // Top-left corner in pixels
	VX, VY       float64 // Pixels per reference frame
	OnGround     bool
	FacingLeft   bool
	Dead         bool
	KilledByLine bool
}

// Rect returns the player's bounding box.
func (s *Solver) Rect(p *Player) core.RectF {
	return core.NewRectF(p.X, p.Y, s.phys.PlayerWidth, s.phys.PlayerHeight)
}

// SpawnPlayer returns a player standing on the floor at the well's center.
func (s *Solver) SpawnPlayer() Player {
	return Player{
		X:        (s.board.Width() - s.phys.PlayerWidth) / 2,
		Y:        s.board.Height() - s.phys.PlayerHeight,
		OnGround: true,
	}
}

// Column returns the grid column under the player's center.
func (s *Solver) Column(p *Player) int {
	col := int(s.Rect(p).CenterX() / s.board.BlockSize)
	return core.Clamp(col, 0, s.board.Cols-1)
}

// ColumnSpan returns the first and last grid columns the player overlaps.
func (s *Solver) ColumnSpan(p *Player) (int, int) {
	r := s.Rect(p)
	lo, hi := s.span(r.X, r.Right())
	return core.Clamp(lo, 0, s.board.Cols-1), core.Clamp(hi, 0, s.board.Cols-1)
}

// RowSpan returns the first and last grid rows the player overlaps.
func (s *Solver) RowSpan(p *Player) (int, int) {
	r := s.Rect(p)
	lo, hi := s.span(r.Y, r.Bottom())
	return core.Clamp(lo, 0, s.board.Rows-1), core.Clamp(hi, 0, s.board.Rows-1)
}
