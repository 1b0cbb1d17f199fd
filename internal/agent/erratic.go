package agent

import (
	"math/rand"

	"github.com/vovakirdan/well-escape/internal/board"
	"github.com/vovakirdan/well-escape/internal/config"
)

// BlockedFunc reports whether a candidate piece position would overlap
// something other than the grid, usually the player.
type BlockedFunc func(board.Piece) bool

// ErraticStep performs one sabotaged move: maybe reverse the drift
// direction, maybe step once in it (bouncing off obstacles), maybe rotate.
// It depends only on its arguments and the random source.
func ErraticStep(g *board.Grid, p board.Piece, dir int, cfg config.ErraticConfig, rng *rand.Rand, blocked BlockedFunc) (board.Piece, int) {
	if dir == 0 {
		dir = 1
	}
	if rng.Float64() < cfg.FlipChance {
		dir = -dir
	}
	if rng.Float64() < cfg.StepChance {
		next := p
		next.X += dir
		if canOccupy(g, next, blocked) {
			p = next
		} else {
			dir = -dir
		}
	}
	if rng.Float64() < cfg.RotateChance {
		next := p
		next.Rot = (p.Rot + 1) % p.Type.Rotations()
		if canOccupy(g, next, blocked) {
			p = next
		}
	}
	return p, dir
}

func canOccupy(g *board.Grid, p board.Piece, blocked BlockedFunc) bool {
	if !p.Fits(g) {
		return false
	}
	return blocked == nil || !blocked(p)
}
