package sim

import (
	"math/rand"

	"github.com/vovakirdan/well-escape/internal/core"
	"github.com/vovakirdan/well-escape/internal/engine"
)

// Pilot scripts player input for a headless run.
type Pilot interface {
	// Reset prepares the pilot for a new run.
	Reset(seed int64)
	// Input returns the input for the next tick.
	Input(g *engine.Game) core.InputFrame
}

// PilotKind names a built-in pilot.
type PilotKind string

const (
	PilotIdle   PilotKind = "idle"
	PilotRandom PilotKind = "random"
	PilotClimb  PilotKind = "climb"
)

// PilotKinds returns the built-in pilots.
func PilotKinds() []PilotKind {
	return []PilotKind{PilotIdle, PilotRandom, PilotClimb}
}

// NewPilot returns a fresh pilot of the given kind, or nil if unknown.
func NewPilot(kind PilotKind) Pilot {
	switch kind {
	case PilotIdle:
		return IdlePilot{}
	case PilotRandom:
		return &RandomPilot{}
	case PilotClimb:
		return &ClimbPilot{}
	}
	return nil
}

// IdlePilot never touches the controls.
type IdlePilot struct{}

func (IdlePilot) Reset(int64) {}

func (IdlePilot) Input(*engine.Game) core.InputFrame { return core.NewInputFrame() }

// RandomPilot holds a random direction for a random number of ticks, jumps
// now and then and pulls the sabotage lever whenever it sees a chance.
type RandomPilot struct {
	rng  *rand.Rand
	dir  core.Action
	hold int
}

func (p *RandomPilot) Reset(seed int64) {
	p.rng = rand.New(rand.NewSource(seed))
	p.dir = core.ActionNone
	p.hold = 0
}

func (p *RandomPilot) Input(*engine.Game) core.InputFrame {
	f := core.NewInputFrame()
	if p.hold <= 0 {
		p.hold = 10 + p.rng.Intn(50)
		switch p.rng.Intn(3) {
		case 0:
			p.dir = core.ActionLeft
		case 1:
			p.dir = core.ActionRight
		default:
			p.dir = core.ActionNone
		}
	}
	p.hold--
	if p.dir != core.ActionNone {
		f.Set(p.dir)
	}
	if p.rng.Intn(20) == 0 {
		f.Set(core.ActionJump)
	}
	if p.rng.Intn(120) == 0 {
		f.Set(core.ActionSabotage)
	}
	return f
}

// maxClimb is how many rows a standing jump clears.
const maxClimb = 3

// ClimbPilot walks toward the tallest neighbouring column it can step onto
// and jumps when it gets there. Sabotage is used when the active piece is
// heading for the player's column.
type ClimbPilot struct {
	heights []int
}

func (p *ClimbPilot) Reset(int64) {}

func (p *ClimbPilot) Input(g *engine.Game) core.InputFrame {
	f := core.NewInputFrame()
	p.heights = g.Grid().ColumnHeights(p.heights)
	view := g.PlayerView()
	col := view.Col

	best, bestH := col, p.heights[col]
	for _, c := range []int{col - 1, col + 1} {
		if c < 0 || c >= len(p.heights) {
			continue
		}
		if h := p.heights[c]; h > bestH && h <= p.heights[col]+maxClimb {
			best, bestH = c, h
		}
	}

	switch {
	case best < col:
		f.Set(core.ActionLeft)
		f.Set(core.ActionJump)
	case best > col:
		f.Set(core.ActionRight)
		f.Set(core.ActionJump)
	}

	if piece, ok := g.Piece(); ok {
		if a := g.Agent(); a.HasTarget {
			lo, hi := piece.WithState(a.Target).ColumnSpan()
			if col >= lo && col <= hi {
				f.Set(core.ActionSabotage)
			}
		}
	}
	return f
}
