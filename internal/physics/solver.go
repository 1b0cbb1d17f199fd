package physics

import (
	"math"

	"github.com/vovakirdan/well-escape/internal/board"
	"github.com/vovakirdan/well-escape/internal/config"
	"github.com/vovakirdan/well-escape/internal/core"
)

// Solver holds the well geometry and physics constants.
type Solver struct {
	board config.BoardConfig
	phys  config.PhysicsConfig
}

// NewSolver creates a solver for the given geometry.
func NewSolver(b config.BoardConfig, p config.PhysicsConfig) *Solver {
	return &Solver{board: b, phys: p}
}

// Board returns the well geometry.
func (s *Solver) Board() config.BoardConfig { return s.board }

// Physics returns the physics constants.
func (s *Solver) Physics() config.PhysicsConfig { return s.phys }

// span maps a half-open pixel interval to the grid cells it touches.
func (s *Solver) span(lo, hi float64) (int, int) {
	bs := s.board.BlockSize
	return int(math.Floor(lo / bs)), int(math.Ceil(hi/bs)) - 1
}

// CellRect returns the pixel box of grid cell (x, y).
func (s *Solver) CellRect(x, y int) core.RectF {
	bs := s.board.BlockSize
	return core.NewRectF(float64(x)*bs, float64(y)*bs, bs, bs)
}

// GridBlocked reports whether r overlaps a locked cell. Cells outside the
// well count as locked.
func (s *Solver) GridBlocked(r core.RectF, g *board.Grid) bool {
	x0, x1 := s.span(r.X, r.Right())
	y0, y1 := s.span(r.Y, r.Bottom())
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if g.Occupied(x, y) {
				return true
			}
		}
	}
	return false
}

// PieceBlocked reports whether r overlaps a cell of the active piece.
func (s *Solver) PieceBlocked(r core.RectF, piece *board.Piece) bool {
	if piece == nil {
		return false
	}
	for _, c := range piece.Cells() {
		if s.CellRect(c.DX, c.DY).Intersects(r) {
			return true
		}
	}
	return false
}

// Blocked reports whether r overlaps the grid or the piece.
func (s *Solver) Blocked(r core.RectF, g *board.Grid, piece *board.Piece) bool {
	return s.GridBlocked(r, g) || s.PieceBlocked(r, piece)
}

// PlayerBlocksPiece reports whether the piece at state st would overlap the
// player. Used to validate lateral and rotation moves of the piece.
func (s *Solver) PlayerBlocksPiece(p *Player, piece board.Piece) bool {
	if p == nil || p.Dead {
		return false
	}
	return s.PieceBlocked(s.Rect(p), &piece)
}

// OnGround tests a narrow centered slice just below the player's feet.
func (s *Solver) OnGround(p *Player, g *board.Grid, piece *board.Piece) bool {
	r := s.Rect(p)
	w := r.W * s.phys.GroundProbeRatio
	probe := core.NewRectF(r.CenterX()-w/2, r.Bottom(), w, 1)
	return s.Blocked(probe, g, piece)
}

// Move advances the player by dt seconds of motion.
func (s *Solver) Move(p *Player, in core.Intent, dt float64, g *board.Grid, piece *board.Piece) {
	if p.Dead {
		return
	}
	scale := dt * s.phys.FrameRate

	s.moveHorizontal(p, in, scale, g, piece)

	if in.Jump && p.OnGround {
		p.VY = -s.phys.JumpImpulse
		p.OnGround = false
	}
	p.VY = math.Min(p.VY+s.phys.Gravity*scale, s.phys.MaxFallSpeed)
	s.moveVertical(p, scale, g, piece)

	p.OnGround = s.OnGround(p, g, piece)
	if p.OnGround && p.VY > 0 {
		p.VY = 0
	}
}

func (s *Solver) moveHorizontal(p *Player, in core.Intent, scale float64, g *board.Grid, piece *board.Piece) {
	dir := 0.0
	if in.Left {
		dir--
	}
	if in.Right {
		dir++
	}
	p.VX = dir * s.phys.MoveSpeed
	if dir == 0 {
		return
	}
	p.FacingLeft = dir < 0

	maxX := s.board.Width() - s.phys.PlayerWidth
	target := core.ClampF(p.X+p.VX*scale, 0, maxX)
	cur := s.Rect(p)
	next := cur.Translate(target-p.X, 0)

	if !s.Blocked(next, g, piece) {
		p.X = target
		return
	}

	// Embedded in the piece but clear of locked cells: allow walking out as
	// long as the move does not enter locked cells.
	if s.PieceBlocked(cur, piece) && !s.GridBlocked(cur, g) && !s.GridBlocked(next, g) {
		p.X = target
		return
	}

	step := math.Copysign(1, target-p.X)
	for math.Abs(target-p.X) >= 1 {
		next = s.Rect(p).Translate(step, 0)
		if s.Blocked(next, g, piece) {
			break
		}
		p.X = next.X
	}
}

func (s *Solver) moveVertical(p *Player, scale float64, g *board.Grid, piece *board.Piece) {
	target := p.Y + p.VY*scale
	next := s.Rect(p).Translate(0, target-p.Y)
	if !s.Blocked(next, g, piece) {
		p.Y = target
		return
	}

	if p.VY > 0 {
		// Land on top: back up from the target until the first free pixel.
		y := math.Floor(target)
		for y > p.Y {
			next.Y = y
			if !s.Blocked(next, g, piece) {
				break
			}
			y--
		}
		p.Y = math.Max(y, p.Y)
		p.VY = 0
		return
	}

	// Rising: halt at first contact.
	for p.Y-1 >= target {
		next.Y = p.Y - 1
		if s.Blocked(next, g, piece) {
			break
		}
		p.Y = next.Y
	}
	p.VY = 0
}

// Escaped reports whether the player is fully above the escape line.
func (s *Solver) Escaped(p *Player) bool {
	return s.Rect(p).Bottom() <= float64(s.board.EscapeRows)*s.board.BlockSize
}

// Teleport moves the player to the top of the well just under the escape
// band and stops it.
func (s *Solver) Teleport(p *Player) {
	p.X = (s.board.Width() - s.phys.PlayerWidth) / 2
	p.Y = float64(s.board.EscapeRows) * s.board.BlockSize
	p.VX, p.VY = 0, 0
	p.OnGround = false
}
