package engine

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/vovakirdan/well-escape/internal/agent"
	"github.com/vovakirdan/well-escape/internal/board"
	"github.com/vovakirdan/well-escape/internal/config"
	"github.com/vovakirdan/well-escape/internal/physics"
)

// SnapshotVersion is the only snapshot version Restore accepts.
const SnapshotVersion = 1

var (
	// ErrSnapshotVersion is returned for snapshots of another version.
	ErrSnapshotVersion = errors.New("engine: unsupported snapshot version")
	// ErrSnapshotMalformed is returned for snapshots that fail validation.
	ErrSnapshotMalformed = errors.New("engine: malformed snapshot")
)

// GameStateType is the lifecycle state recorded in a snapshot.
type GameStateType string

const (
	StatePlaying  GameStateType = "playing"
	StatePaused   GameStateType = "paused"
	StateGameOver GameStateType = "game_over"
	StateWin      GameStateType = "win"
)

// Snapshot is the complete mutable state of a game for offline analysis.
// Grid rows use '.' for empty cells and the piece letter otherwise.
type Snapshot struct {
	Version     int            `json:"version"`
	Difficulty  string         `json:"difficulty"`
	Speed       float64        `json:"speed"`
	GodMode     bool           `json:"god_mode"`
	PlayerLine  bool           `json:"player_completes_line"`
	Seed        int64          `json:"seed"`
	Dealt       int            `json:"dealt"`
	Tick        uint64         `json:"tick"`
	TickRate    int            `json:"tick_rate"`
	State       GameStateType  `json:"state"`
	Cause       string         `json:"cause,omitempty"`
	Grid        []string       `json:"grid"`
	Piece       *PieceSnapshot `json:"piece,omitempty"`
	Player      PlayerSnapshot `json:"player"`
	Agent       AgentSnapshot  `json:"agent"`
	Stats       StatsSnapshot  `json:"stats"`
	Timers      TimersSnapshot `json:"timers"`
	PluggedRows []int          `json:"plugged_rows,omitempty"`
}

// PieceSnapshot records the active piece. Shape and Color are informational;
// Restore rebuilds them from Type and Rot.
type PieceSnapshot struct {
	Type  string   `json:"type"`
	Rot   int      `json:"rot"`
	X     int      `json:"x"`
	Y     int      `json:"y"`
	Steps int      `json:"steps"`
	Shape []string `json:"shape,omitempty"`
	Color int      `json:"color,omitempty"`
}

// PlayerSnapshot records player kinematics.
type PlayerSnapshot struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	VX           float64 `json:"vx"`
	VY           float64 `json:"vy"`
	OnGround     bool    `json:"on_ground"`
	FacingLeft   bool    `json:"facing_left"`
	Dead         bool    `json:"dead"`
	KilledByLine bool    `json:"killed_by_line"`
}

// StateSnapshot is a piece search state.
type StateSnapshot struct {
	X   int `json:"x"`
	Y   int `json:"y"`
	Rot int `json:"rot"`
}

// AgentSnapshot records the agent's targeting state.
type AgentSnapshot struct {
	Target        *StateSnapshot  `json:"target,omitempty"`
	Score         float64         `json:"score"`
	Path          []StateSnapshot `json:"path,omitempty"`
	Retargets     int             `json:"retargets"`
	Mode          string          `json:"mode"`
	ErraticDir    int             `json:"erratic_dir"`
	LastPlayerCol int             `json:"last_player_col"`
	MovesMade     int             `json:"moves_made"`
}

// StatsSnapshot records the life counters.
type StatsSnapshot struct {
	Score     int    `json:"score"`
	Lines     int    `json:"lines"`
	Pieces    int    `json:"pieces"`
	Retargets int    `json:"retargets"`
	Sabotages int    `json:"sabotages"`
	Ticks     uint64 `json:"ticks"`
}

// TimersSnapshot records scheduler timers in seconds.
type TimersSnapshot struct {
	Fall             float64 `json:"fall"`
	Agent            float64 `json:"agent"`
	Spawn            float64 `json:"spawn"`
	Sabotage         float64 `json:"sabotage"`
	SabotageCooldown float64 `json:"sabotage_cooldown"`
	PlayerLine       float64 `json:"player_line"`
}

// Snapshot captures the complete game state.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Version:    SnapshotVersion,
		Difficulty: string(g.preset),
		Speed:      g.speed,
		GodMode:    g.godMode,
		PlayerLine: g.diff.PlayerCompletesLine,
		Seed:       g.bag.Seed(),
		Dealt:      g.bag.Dealt(),
		Tick:       g.tick,
		TickRate:   g.tickRate,
		State:      g.stateType(),
		Cause:      string(g.cause),
		Grid:       encodeGrid(g.grid),
		Player: PlayerSnapshot{
			X:            g.player.X,
			Y:            g.player.Y,
			VX:           g.player.VX,
			VY:           g.player.VY,
			OnGround:     g.player.OnGround,
			FacingLeft:   g.player.FacingLeft,
			Dead:         g.player.Dead,
			KilledByLine: g.player.KilledByLine,
		},
		Agent: AgentSnapshot{
			Score:         g.agent.Score,
			Retargets:     g.agent.Retargets,
			Mode:          g.agent.Mode.String(),
			ErraticDir:    g.agent.ErraticDir,
			LastPlayerCol: g.agent.LastPlayerCol,
			MovesMade:     g.agent.MovesMade,
		},
		Stats:  StatsSnapshot(g.stats),
		Timers: TimersSnapshot(g.timers),
	}
	if len(g.plugged) > 0 {
		s.PluggedRows = append([]int(nil), g.plugged...)
	}
	if g.hasPiece {
		s.Piece = &PieceSnapshot{
			Type:  g.piece.Type.String(),
			Rot:   g.piece.Rot,
			X:     g.piece.X,
			Y:     g.piece.Y,
			Steps: g.piece.Steps,
			Shape: encodeShape(g.piece.Shape()),
			Color: int(g.piece.Color()),
		}
	}
	if g.agent.HasTarget {
		t := g.agent.Target
		s.Agent.Target = &StateSnapshot{X: t.X, Y: t.Y, Rot: t.Rot}
	}
	for _, st := range g.agent.Path {
		s.Agent.Path = append(s.Agent.Path, StateSnapshot{X: st.X, Y: st.Y, Rot: st.Rot})
	}
	return s
}

func (g *Game) stateType() GameStateType {
	switch {
	case g.won:
		return StateWin
	case g.gameOver:
		return StateGameOver
	case g.paused:
		return StatePaused
	}
	return StatePlaying
}

func encodeGrid(gr *board.Grid) []string {
	out := make([]string, gr.Rows())
	buf := make([]byte, gr.Cols())
	for y := range out {
		for x := range buf {
			buf[x] = blockChar(gr.At(x, y))
		}
		out[y] = string(buf)
	}
	return out
}

func blockChar(b board.Block) byte {
	if b == board.Empty {
		return '.'
	}
	return b.ShapeType().String()[0]
}

func encodeShape(s board.Shape) []string {
	out := make([]string, s.Height())
	for y, row := range s {
		buf := make([]byte, len(row))
		for x, filled := range row {
			buf[x] = '.'
			if filled {
				buf[x] = '#'
			}
		}
		out[y] = string(buf)
	}
	return out
}

func parseShapeType(name string) (board.ShapeType, bool) {
	for _, t := range board.ShapeTypes() {
		if t.String() == name {
			return t, true
		}
	}
	return 0, false
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSnapshotMalformed, fmt.Sprintf(format, args...))
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// restored is a fully validated snapshot ready to apply.
type restored struct {
	preset config.DifficultyPreset
	grid   *board.Grid
	piece  board.Piece
	has    bool
	target board.State
	path   []board.State
	mode   agent.Mode
}

// Restore replaces the game state with s. The snapshot is validated in full
// first; on error nothing is changed.
func (g *Game) Restore(s Snapshot) error {
	r, err := g.validate(s)
	if err != nil {
		return err
	}

	g.preset = r.preset
	g.diff = g.cfg.Difficulties.Get(r.preset)
	g.diff.PlayerCompletesLine = s.PlayerLine
	g.speed = s.Speed
	g.godMode = s.GodMode
	g.seed = s.Seed
	g.bag = board.NewBagAt(s.Seed, s.Dealt)
	g.rng = rand.New(rand.NewSource(s.Seed ^ int64(s.Tick)))
	g.tick = s.Tick
	g.tickRate = s.TickRate
	g.grid.CopyFrom(r.grid)
	g.piece = r.piece
	g.hasPiece = r.has
	g.player = physics.Player{
		X: s.Player.X, Y: s.Player.Y, VX: s.Player.VX, VY: s.Player.VY,
		OnGround: s.Player.OnGround, FacingLeft: s.Player.FacingLeft,
		Dead: s.Player.Dead, KilledByLine: s.Player.KilledByLine,
	}

	g.agent.Reset(s.Agent.LastPlayerCol)
	g.agent.Score = s.Agent.Score
	g.agent.Retargets = s.Agent.Retargets
	g.agent.Mode = r.mode
	g.agent.ErraticDir = s.Agent.ErraticDir
	g.agent.MovesMade = s.Agent.MovesMade
	if s.Agent.Target != nil {
		g.agent.SetTarget(r.target)
	}
	g.agent.Path = append(g.agent.Path[:0], r.path...)

	g.stats = Stats(s.Stats)
	g.timers = Timers(s.Timers)
	g.plugged = append(g.plugged[:0], s.PluggedRows...)
	g.won = s.State == StateWin
	g.gameOver = s.State == StateGameOver
	g.paused = s.State == StatePaused
	g.cause = Cause(s.Cause)
	g.outcomeFired = g.won || g.gameOver
	g.logger.Debug("restored snapshot", "tick", s.Tick, "difficulty", s.Difficulty)
	return nil
}

func (g *Game) validate(s Snapshot) (restored, error) {
	var r restored
	if s.Version != SnapshotVersion {
		return r, fmt.Errorf("%w: got %d, expected %d", ErrSnapshotVersion, s.Version, SnapshotVersion)
	}

	preset, err := config.ParsePreset(s.Difficulty)
	if err != nil {
		return r, malformed("difficulty: %v", err)
	}
	r.preset = preset
	if s.Speed <= 0 || !finite(s.Speed) {
		return r, malformed("speed %v", s.Speed)
	}
	if s.Dealt < 0 || s.TickRate <= 0 {
		return r, malformed("dealt %d, tick rate %d", s.Dealt, s.TickRate)
	}
	switch s.State {
	case StatePlaying, StatePaused, StateGameOver, StateWin:
	default:
		return r, malformed("state %q", s.State)
	}
	switch Cause(s.Cause) {
	case CauseNone, CauseFieldFilled, CauseSquished, CauseLineClear:
	default:
		return r, malformed("cause %q", s.Cause)
	}

	cols, rows := g.cfg.Board.Cols, g.cfg.Board.Rows
	if len(s.Grid) != rows {
		return r, malformed("grid has %d rows, expected %d", len(s.Grid), rows)
	}
	r.grid = board.NewGrid(cols, rows)
	for y, line := range s.Grid {
		if len(line) != cols {
			return r, malformed("grid row %d has %d cells, expected %d", y, len(line), cols)
		}
		for x := 0; x < cols; x++ {
			if line[x] == '.' {
				continue
			}
			t, ok := parseShapeType(string(line[x]))
			if !ok {
				return r, malformed("grid cell (%d,%d) = %q", x, y, line[x])
			}
			r.grid.Set(x, y, t.Block())
		}
	}

	if s.Piece != nil {
		t, ok := parseShapeType(s.Piece.Type)
		if !ok {
			return r, malformed("piece type %q", s.Piece.Type)
		}
		if s.Piece.Rot < 0 || s.Piece.Rot >= t.Rotations() || s.Piece.Steps < 0 {
			return r, malformed("piece rotation %d", s.Piece.Rot)
		}
		r.piece = board.Piece{Type: t, Rot: s.Piece.Rot, X: s.Piece.X, Y: s.Piece.Y, Steps: s.Piece.Steps}
		if !r.piece.Fits(r.grid) {
			return r, malformed("piece at (%d,%d) overlaps the grid", s.Piece.X, s.Piece.Y)
		}
		r.has = true
	}

	p := s.Player
	if !finite(p.X, p.Y, p.VX, p.VY) {
		return r, malformed("player kinematics")
	}
	if p.X < 0 || p.X > g.cfg.Board.Width() || p.Y < -g.cfg.Physics.PlayerHeight || p.Y > g.cfg.Board.Height() {
		return r, malformed("player at (%v,%v) outside the well", p.X, p.Y)
	}

	a := s.Agent
	switch a.Mode {
	case agent.ModeNormal.String():
		r.mode = agent.ModeNormal
	case agent.ModeErratic.String():
		r.mode = agent.ModeErratic
	default:
		return r, malformed("agent mode %q", a.Mode)
	}
	if !finite(a.Score) || a.Retargets < 0 || a.MovesMade < 0 {
		return r, malformed("agent counters")
	}
	if a.Target != nil || len(a.Path) > 0 {
		if !r.has {
			return r, malformed("agent target without a piece")
		}
	}
	inRange := func(st StateSnapshot) bool {
		return st.X >= 0 && st.X < cols && st.Y >= 0 && st.Y < rows && st.Rot >= 0 && st.Rot < r.piece.Type.Rotations()
	}
	if a.Target != nil {
		if !inRange(*a.Target) {
			return r, malformed("agent target %+v", *a.Target)
		}
		r.target = board.State{X: a.Target.X, Y: a.Target.Y, Rot: a.Target.Rot}
	}
	for i, st := range a.Path {
		if !inRange(st) {
			return r, malformed("agent path step %d %+v", i, st)
		}
		r.path = append(r.path, board.State{X: st.X, Y: st.Y, Rot: st.Rot})
	}

	t := s.Timers
	if !finite(t.Fall, t.Agent, t.Spawn, t.Sabotage, t.SabotageCooldown, t.PlayerLine) {
		return r, malformed("timers")
	}
	for _, y := range s.PluggedRows {
		if y < 0 || y >= rows {
			return r, malformed("plugged row %d", y)
		}
	}
	return r, nil
}
