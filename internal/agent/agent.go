// Package agent implements the placement agent: a bounded breadth-first
// search over piece states, the heuristic that scores resting placements,
// and the per-tick policy that steers the active piece.
package agent

import (
	"math/rand"

	"github.com/vovakirdan/well-escape/internal/board"
	"github.com/vovakirdan/well-escape/internal/config"
)

// Mode is the agent's behavioral mode.
type Mode uint8

const (
	ModeNormal Mode = iota
	ModeErratic
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeErratic {
		return "erratic"
	}
	return "normal"
}

// Env is what the agent sees on a tick. Piece is owned by the scheduler;
// the agent moves it only through validated lateral and rotation steps.
type Env struct {
	Grid         *board.Grid
	Piece        *board.Piece
	Difficulty   config.DifficultyConfig
	Player       PlayerView
	PlayerBlocks BlockedFunc
	Rng          *rand.Rand
}

// Move is the action taken on a tick.
type Move uint8

const (
	MoveNone Move = iota
	MoveLeft
	MoveRight
	MoveRotate
	MoveFastDrop
)

// String returns the move name.
func (m Move) String() string {
	switch m {
	case MoveLeft:
		return "left"
	case MoveRight:
		return "right"
	case MoveRotate:
		return "rotate"
	case MoveFastDrop:
		return "fast-drop"
	default:
		return "none"
	}
}

// Outcome reports what a tick did.
type Outcome struct {
	Move       Move
	Recomputed bool
	Retargeted bool // The chosen terminal state changed
	Accepted   bool // A blocked move near landing kept the current resting state
	ErraticEnd bool
}

// Agent holds per-piece targeting state. It is reset on every spawn.
type Agent struct {
	searcher *Searcher

	HasTarget     bool
	Target        board.State
	Score         float64
	Path          []board.State
	Retargets     int
	Mode          Mode
	ErraticDir    int
	LastPlayerCol int
	Fingerprint   int32 // Packed target state, -1 when none
	MovesMade     int
}

// New creates an agent searching a cols x rows well.
func New(cols, rows int, search config.SearchConfig) *Agent {
	a := &Agent{searcher: NewSearcher(cols, rows, search)}
	a.Reset(-1)
	return a
}

// Searcher returns the agent's placement searcher.
func (a *Agent) Searcher() *Searcher {
	return a.searcher
}

// Reset clears all targeting state for a new piece.
func (a *Agent) Reset(playerCol int) {
	a.HasTarget = false
	a.Target = board.State{}
	a.Score = 0
	a.Path = a.Path[:0]
	a.Retargets = 0
	a.Mode = ModeNormal
	a.ErraticDir = 0
	a.LastPlayerCol = playerCol
	a.Fingerprint = -1
	a.MovesMade = 0
}

// Recompute runs a full search from the piece's current state and adopts
// the result. The retarget counter only increments when a previous target
// existed and the chosen terminal state differs from it.
func (a *Agent) Recompute(env Env, weights config.HeuristicWeights, avoid, playerTriggered bool) Outcome {
	out := Outcome{Recomputed: true}
	res := a.searcher.ComputeTarget(Request{
		Piece:           *env.Piece,
		Grid:            env.Grid,
		Weights:         weights,
		Danger:          env.Difficulty.Danger,
		Player:          env.Player,
		AvoidPlayer:     avoid,
		PlayerTriggered: playerTriggered,
		Retargets:       a.Retargets,
	})
	a.LastPlayerCol = env.Player.Col
	if !res.Found {
		// Fingerprint stays so a later target still counts as a change.
		a.HasTarget = false
		a.Path = a.Path[:0]
		return out
	}

	fp := a.searcher.pack(res.Target)
	if a.Fingerprint >= 0 && fp != a.Fingerprint {
		a.Retargets++
		out.Retargeted = true
	}
	a.HasTarget = true
	a.Target = res.Target
	a.Score = res.Score
	a.Path = append(a.Path[:0], res.Path...)
	a.Fingerprint = fp
	return out
}

// SetTarget adopts st as the current target without searching.
func (a *Agent) SetTarget(st board.State) {
	a.HasTarget = true
	a.Target = st
	a.Fingerprint = a.searcher.pack(st)
}

// ShouldRetarget applies the retargeting policy and records the player's
// column for the next check.
func (a *Agent) ShouldRetarget(env Env) bool {
	col := env.Player.Col
	moved := col != a.LastPlayerCol
	a.LastPlayerCol = col

	cfg := env.Difficulty.Agent
	if env.Piece.DropDistance(env.Grid) < cfg.MinRetargetDrop {
		return false
	}
	if !a.HasTarget {
		return true
	}
	if cfg.MaxRetargets >= 0 && a.Retargets >= cfg.MaxRetargets {
		return false
	}
	zone := NewZone(env.Player, env.Difficulty.Danger, env.Difficulty.Danger.Avoid)
	return moved && zone.CoversPiece(env.Piece.WithState(a.Target))
}

// Step runs one agent tick.
func (a *Agent) Step(env Env) Outcome {
	if a.Mode == ModeErratic {
		return a.erraticStep(env)
	}

	var out Outcome
	if a.ShouldRetarget(env) {
		out = a.Recompute(env, env.Difficulty.Weights, env.Difficulty.Danger.Avoid, false)
	}
	if !a.HasTarget {
		return out
	}

	a.trimPath(env.Piece.State())
	if a.CanFastDrop(env) {
		out.Move = MoveFastDrop
		return out
	}

	want := a.waypoint()
	p := *env.Piece
	if p.X == want.X && p.Rot == want.Rot {
		return out
	}

	if move, ok := a.stepToward(env, p, want); ok {
		out.Move = move
		return out
	}

	// Blocked close to landing: settle for where the piece will rest.
	drop := p.DropDistance(env.Grid)
	if drop <= env.Difficulty.Agent.BlockedAcceptDrop {
		a.acceptResting(p, drop)
		out.Accepted = true
		return out
	}
	return a.Recompute(env, env.Difficulty.Weights, env.Difficulty.Danger.Avoid, false)
}

// trimPath discards path steps above the piece's current row, and the steps
// of the current row up to the piece's own state when it is on the path.
func (a *Agent) trimPath(cur board.State) {
	i := 0
	for i < len(a.Path) && a.Path[i].Y < cur.Y {
		i++
	}
	for j := i; j < len(a.Path) && a.Path[j].Y == cur.Y; j++ {
		if a.Path[j] == cur {
			i = j + 1
		}
	}
	if i > 0 {
		a.Path = append(a.Path[:0], a.Path[i:]...)
	}
}

// waypoint returns the next path state to reach, or the target once the
// path is used up.
func (a *Agent) waypoint() board.State {
	if len(a.Path) == 0 {
		return a.Target
	}
	return a.Path[0]
}

// stepToward makes one validated rotation or lateral step toward want. A
// blocked rotation falls back to the lateral step when the column differs.
func (a *Agent) stepToward(env Env, p board.Piece, want board.State) (Move, bool) {
	lateral := p
	lateralMove := MoveRight
	if want.X < p.X {
		lateral.X--
		lateralMove = MoveLeft
	} else {
		lateral.X++
	}

	if p.Rot != want.Rot {
		rotated := p
		rotated.Rot = (p.Rot + 1) % p.Type.Rotations()
		if canOccupy(env.Grid, rotated, env.PlayerBlocks) {
			*env.Piece = rotated
			a.MovesMade++
			return MoveRotate, true
		}
		if want.X == p.X {
			return MoveNone, false
		}
	}
	if !canOccupy(env.Grid, lateral, env.PlayerBlocks) {
		return MoveNone, false
	}
	*env.Piece = lateral
	a.MovesMade++
	return lateralMove, true
}

func (a *Agent) acceptResting(p board.Piece, drop int) {
	a.Target = board.State{X: p.X, Y: p.Y + drop, Rot: p.Rot}
	a.Path = a.Path[:0]
	for y := p.Y + 1; y <= p.Y+drop; y++ {
		a.Path = append(a.Path, board.State{X: p.X, Y: y, Rot: p.Rot})
	}
	a.Fingerprint = a.searcher.pack(a.Target)
}

// CanFastDrop reports whether the rest of the path is a straight drop that
// may be completed instantly.
func (a *Agent) CanFastDrop(env Env) bool {
	cfg := env.Difficulty.Agent.FastDrop
	p := *env.Piece
	if !cfg.Enabled || !a.HasTarget {
		return false
	}
	if p.X != a.Target.X || p.Rot != a.Target.Rot {
		return false
	}
	for _, st := range a.Path {
		if st.X != p.X || st.Rot != p.Rot {
			return false
		}
	}
	if a.MovesMade < cfg.MinMoves || p.Steps < cfg.MinFallSteps {
		return false
	}
	if p.DropDistance(env.Grid) <= cfg.MinDistance {
		return false
	}
	zone := NewZone(env.Player, env.Difficulty.Danger, true)
	return !zone.CoversPiece(p)
}

// Sabotage forces a recompute with the given lenient weights, ignoring the
// player, and enters erratic mode when the piece still has far to fall.
func (a *Agent) Sabotage(env Env, lenient config.HeuristicWeights) Outcome {
	out := a.Recompute(env, lenient, false, true)
	if env.Piece.DropDistance(env.Grid) > env.Difficulty.Agent.Erratic.MinDrop {
		a.Mode = ModeErratic
		a.ErraticDir = 1
		if env.Rng != nil && env.Rng.Intn(2) == 0 {
			a.ErraticDir = -1
		}
	}
	return out
}

// EndErratic returns to normal targeting with a fresh computation.
func (a *Agent) EndErratic(env Env) Outcome {
	a.Mode = ModeNormal
	out := a.Recompute(env, env.Difficulty.Weights, env.Difficulty.Danger.Avoid, false)
	out.ErraticEnd = true
	return out
}

func (a *Agent) erraticStep(env Env) Outcome {
	if env.Piece.DropDistance(env.Grid) < env.Difficulty.Agent.Erratic.ExitDrop {
		return a.EndErratic(env)
	}
	before := *env.Piece
	next, dir := ErraticStep(env.Grid, before, a.ErraticDir, env.Difficulty.Agent.Erratic, env.Rng, env.PlayerBlocks)
	a.ErraticDir = dir
	*env.Piece = next

	var out Outcome
	switch {
	case next.Rot != before.Rot:
		out.Move = MoveRotate
	case next.X < before.X:
		out.Move = MoveLeft
	case next.X > before.X:
		out.Move = MoveRight
	}
	if out.Move != MoveNone {
		a.MovesMade++
	}
	return out
}
