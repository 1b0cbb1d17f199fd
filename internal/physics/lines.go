package physics

import "github.com/vovakirdan/well-escape/internal/board"

// PluggedRows returns the rows the player completes by standing in their
// single empty cell.
func (s *Solver) PluggedRows(p *Player, g *board.Grid) []int {
	if p.Dead {
		return nil
	}
	r := s.Rect(p)
	y0, y1 := s.RowSpan(p)
	var out []int
	for y := y0; y <= y1; y++ {
		n, col := g.EmptyInRow(y)
		if n != 1 {
			continue
		}
		if s.CellRect(col, y).Intersects(r) {
			out = append(out, y)
		}
	}
	return out
}
