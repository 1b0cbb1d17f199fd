package agent

import (
	"math"

	"github.com/vovakirdan/well-escape/internal/board"
	"github.com/vovakirdan/well-escape/internal/config"
)

// PlayerView is the grid-space footprint of the player the agent reasons
// about.
type PlayerView struct {
	Alive  bool
	Col    int // Column under the player's center
	MinCol int
	MaxCol int
	TopRow int
	BotRow int
}

// Zone is the margin-expanded column range around the player.
type Zone struct {
	Active bool
	Left   int
	Right  int
	Top    int // Player's top row
	Range  int // Rows above Top where lateral moves are suppressed
}

// NewZone builds the danger zone for a player. The zone is inactive when
// avoidance is off or the player is dead.
func NewZone(v PlayerView, d config.DangerConfig, avoid bool) Zone {
	if !avoid || !v.Alive {
		return Zone{}
	}
	return Zone{
		Active: true,
		Left:   v.MinCol - d.Margin,
		Right:  v.MaxCol + d.Margin,
		Top:    v.TopRow,
		Range:  d.VerticalRange,
	}
}

// Covers reports whether the column range [lo, hi] overlaps the zone.
func (z Zone) Covers(lo, hi int) bool {
	return z.Active && hi >= z.Left && lo <= z.Right
}

// CoversPiece reports whether the piece's columns overlap the zone.
func (z Zone) CoversPiece(p board.Piece) bool {
	lo, hi := p.ColumnSpan()
	return z.Covers(lo, hi)
}

// Near reports whether the piece is close to the player's vertical level.
func (z Zone) Near(p board.Piece) bool {
	return z.Active && p.Bottom() >= z.Top-z.Range
}

// Forbids reports whether moving from cur to next by a lateral or rotation
// move is suppressed. A piece already inside the zone may always move so it
// can escape outward.
func (z Zone) Forbids(cur, next board.Piece) bool {
	if !z.Active || z.CoversPiece(cur) {
		return false
	}
	return z.CoversPiece(next) && z.Near(next)
}

// DangerPenalty is the penalty for resting inside the zone. The base decays
// geometrically with retargets, then fades linearly once the stack passes
// the panic start height, and never goes negative.
func DangerPenalty(d config.DangerConfig, retargets, maxHeight, rows int, panicStartRatio float64) float64 {
	p := d.Penalty * math.Pow(d.Decay, float64(retargets))
	panicStart := float64(rows) * panicStartRatio
	if h := float64(maxHeight); h > panicStart && float64(rows) > panicStart {
		p *= math.Max(0, 1-(h-panicStart)/(float64(rows)-panicStart))
	}
	return math.Max(0, p)
}
