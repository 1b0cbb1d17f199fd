package engine

import (
	"math/rand"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/well-escape/internal/agent"
	"github.com/vovakirdan/well-escape/internal/board"
	"github.com/vovakirdan/well-escape/internal/config"
	"github.com/vovakirdan/well-escape/internal/core"
	"github.com/vovakirdan/well-escape/internal/physics"
)

// Game is the well simulation.
type Game struct {
	cfg     config.WellConfig
	preset  config.DifficultyPreset
	diff    config.DifficultyConfig
	speed   float64
	godMode bool
	logger  *log.Logger
	hooks   Hooks

	seed     int64
	rng      *rand.Rand
	tick     uint64
	tickRate int
	screenW  int
	screenH  int

	solver   *physics.Solver
	grid     *board.Grid
	bag      *board.Bag
	piece    board.Piece
	hasPiece bool
	player   physics.Player
	agent    *agent.Agent

	timers  Timers
	plugged []int
	stats   Stats

	gameOver     bool
	won          bool
	paused       bool
	cause        Cause
	outcomeFired bool
}

// New creates a game. Call Reset before stepping.
func New(opts Options) *Game {
	opts.normalize()
	cfg := opts.Config
	g := &Game{
		cfg:     cfg,
		preset:  opts.Preset,
		diff:    cfg.Difficulties.Get(opts.Preset),
		speed:   opts.Speed,
		godMode: opts.GodMode,
		logger:  opts.Logger,
		hooks:   opts.Hooks,
		solver:  physics.NewSolver(cfg.Board, cfg.Physics),
		grid:    board.NewGrid(cfg.Board.Cols, cfg.Board.Rows),
		agent:   agent.New(cfg.Board.Cols, cfg.Board.Rows, cfg.Search),
	}
	if opts.PlayerCompletesLine != nil {
		g.diff.PlayerCompletesLine = *opts.PlayerCompletesLine
	}
	return g
}

// Reset starts a new life.
func (g *Game) Reset(rc core.RuntimeConfig) {
	g.seed = rc.Seed
	g.rng = rand.New(rand.NewSource(rc.Seed))
	g.bag = board.NewBag(rc.Seed)
	g.tick = 0
	g.tickRate = rc.TickRate
	if g.tickRate <= 0 {
		g.tickRate = core.DefaultConfig().TickRate
	}
	g.screenW = rc.ScreenW
	g.screenH = rc.ScreenH

	g.grid.Reset()
	g.hasPiece = false
	g.piece = board.Piece{}
	g.player = g.solver.SpawnPlayer()
	g.agent.Reset(g.solver.Column(&g.player))
	g.timers = Timers{}
	g.plugged = g.plugged[:0]
	g.stats = Stats{}
	g.gameOver = false
	g.won = false
	g.paused = false
	g.cause = CauseNone
	g.outcomeFired = false

	g.logger.Debug("reset", "seed", rc.Seed, "difficulty", g.preset, "speed", g.speed)
	g.spawn()
}

// Step advances one fixed tick of 1/TickRate seconds.
func (g *Game) Step(input core.InputFrame) core.StepResult {
	return g.Update(1/float64(g.tickRate), input)
}

// Update advances the world by dt seconds. Order: edge actions, player
// physics, escape check, player-completed lines, spawn and gravity with
// agent moves, sabotage timers.
func (g *Game) Update(dt float64, input core.InputFrame) core.StepResult {
	g.tick++

	if input.Has(core.ActionRestart) && (g.gameOver || g.won) {
		g.Reset(core.RuntimeConfig{
			Seed:     g.rng.Int63(),
			ScreenW:  g.screenW,
			ScreenH:  g.screenH,
			TickRate: g.tickRate,
		})
		return core.StepResult{State: g.State()}
	}

	if input.Has(core.ActionPause) && !g.gameOver && !g.won {
		g.paused = !g.paused
	}
	if g.gameOver || g.won || g.paused {
		return core.StepResult{State: g.State()}
	}

	if input.Has(core.ActionSabotage) {
		g.TriggerSabotage()
	}

	g.solver.Move(&g.player, input.Intent(), dt, g.grid, g.activePiece())
	if g.solver.Escaped(&g.player) {
		g.win()
		return core.StepResult{State: g.State()}
	}

	g.updatePlayerLine(dt)
	if !g.gameOver {
		g.updatePiece(dt)
	}
	if !g.gameOver {
		g.updateSabotage(dt)
		g.stats.Ticks++
	}
	return core.StepResult{State: g.State()}
}

func (g *Game) activePiece() *board.Piece {
	if !g.hasPiece {
		return nil
	}
	return &g.piece
}

func (g *Game) scaled(seconds float64) float64 {
	return seconds / g.speed
}

// updatePlayerLine clears rows the player keeps plugging for the full delay.
func (g *Game) updatePlayerLine(dt float64) {
	if !g.diff.PlayerCompletesLine || g.player.Dead {
		g.plugged = g.plugged[:0]
		g.timers.PlayerLine = 0
		return
	}
	rows := g.solver.PluggedRows(&g.player, g.grid)
	if len(rows) == 0 {
		g.plugged = g.plugged[:0]
		g.timers.PlayerLine = 0
		return
	}
	if !slices.Equal(rows, g.plugged) {
		g.plugged = append(g.plugged[:0], rows...)
		g.timers.PlayerLine = g.diff.Timing.PlayerLineClear().Seconds()
		return
	}
	g.timers.PlayerLine -= dt
	if g.timers.PlayerLine > 0 {
		return
	}

	n := g.grid.ClearRows(g.plugged)
	g.plugged = g.plugged[:0]
	g.timers.PlayerLine = 0
	g.stats.Lines += n
	g.logger.Debug("player completed line", "rows", n)
	if g.hooks.OnLineCleared != nil {
		g.hooks.OnLineCleared(n)
	}
	g.killPlayer(CauseLineClear)
	g.refreshTarget()
}

func (g *Game) updatePiece(dt float64) {
	if !g.hasPiece {
		g.timers.Spawn -= dt
		if g.timers.Spawn <= 0 {
			g.spawn()
		}
		return
	}

	fall := g.scaled(g.diff.Timing.Fall().Seconds())
	g.timers.Fall += dt
	for g.hasPiece && !g.gameOver && g.timers.Fall >= fall {
		g.timers.Fall -= fall
		g.gravityStep()
	}

	move := g.scaled(g.diff.Timing.AgentMove().Seconds())
	g.timers.Agent += dt
	for g.hasPiece && !g.gameOver && g.timers.Agent >= move {
		g.timers.Agent -= move
		g.agentTick()
	}
}

func (g *Game) gravityStep() {
	next := g.piece
	next.Y++
	if !next.Fits(g.grid) {
		g.lockPiece()
		return
	}
	g.piece = next
	g.piece.Steps++
	g.resolveSquish()
}

func (g *Game) resolveSquish() {
	res := g.solver.ResolveSquish(&g.player, g.grid, &g.piece)
	if res.Squished {
		g.killPlayer(CauseSquished)
		return
	}
	if res.Resolved != physics.PushNone {
		g.logger.Debug("player pushed", "push", res.Resolved)
	}
}

func (g *Game) agentTick() {
	before := g.agent.Retargets
	out := g.agent.Step(g.agentEnv())
	if d := g.agent.Retargets - before; d > 0 {
		g.stats.Retargets += d
		g.logger.Debug("retarget", "count", g.agent.Retargets, "target_x", g.agent.Target.X, "target_rot", g.agent.Target.Rot)
	}
	if out.ErraticEnd {
		g.logger.Debug("erratic mode ended")
	}
	if out.Move == agent.MoveFastDrop {
		g.piece.Y += g.piece.DropDistance(g.grid)
		g.resolveSquish()
		if !g.gameOver {
			g.lockPiece()
		}
	}
}

func (g *Game) agentEnv() agent.Env {
	return agent.Env{
		Grid:         g.grid,
		Piece:        &g.piece,
		Difficulty:   g.diff,
		Player:       g.PlayerView(),
		PlayerBlocks: g.playerBlocks,
		Rng:          g.rng,
	}
}

func (g *Game) playerBlocks(p board.Piece) bool {
	return g.solver.PlayerBlocksPiece(&g.player, p)
}

// PlayerView returns the player's grid footprint as the agent sees it.
func (g *Game) PlayerView() agent.PlayerView {
	lo, hi := g.solver.ColumnSpan(&g.player)
	top, bot := g.solver.RowSpan(&g.player)
	return agent.PlayerView{
		Alive:  !g.player.Dead,
		Col:    g.solver.Column(&g.player),
		MinCol: lo,
		MaxCol: hi,
		TopRow: top,
		BotRow: bot,
	}
}

func (g *Game) lockPiece() {
	g.piece.Lock(g.grid)
	g.hasPiece = false
	g.stats.Pieces++
	g.timers.Spawn = g.scaled(g.diff.Timing.SpawnDelay().Seconds())
	g.logger.Debug("lock", "piece", g.piece.Type, "x", g.piece.X, "y", g.piece.Y, "rot", g.piece.Rot)

	if n := g.grid.ClearFullRows(); n > 0 {
		g.stats.Lines += n
		g.stats.Score += n * g.cfg.Scoring.PointsPerLine
		g.logger.Debug("line clear", "rows", n, "score", g.stats.Score)
		if g.hooks.OnLineCleared != nil {
			g.hooks.OnLineCleared(n)
		}
	}
}

func (g *Game) spawn() {
	t := g.bag.Next()
	p := board.SpawnPiece(t, g.grid)
	if !p.Fits(g.grid) {
		g.endGame(CauseFieldFilled)
		return
	}
	g.piece = p
	g.hasPiece = true
	g.timers.Fall = 0
	g.timers.Agent = 0
	g.agent.Reset(g.solver.Column(&g.player))
	g.agent.Recompute(g.agentEnv(), g.diff.Weights, g.diff.Danger.Avoid, false)
	g.logger.Debug("spawn", "piece", t, "target_x", g.agent.Target.X, "target_rot", g.agent.Target.Rot, "found", g.agent.HasTarget)
}

// refreshTarget recomputes the agent's target after the grid changed under
// the active piece.
func (g *Game) refreshTarget() {
	if !g.hasPiece || g.gameOver || g.agent.Mode == agent.ModeErratic {
		return
	}
	g.agent.Recompute(g.agentEnv(), g.diff.Weights, g.diff.Danger.Avoid, false)
}

// TriggerSabotage degrades the agent for the current piece. It is rate
// limited by the sabotage cooldown and returns whether it fired.
func (g *Game) TriggerSabotage() bool {
	if g.gameOver || g.won || g.paused || !g.hasPiece || g.timers.SabotageCooldown > 0 {
		return false
	}
	g.timers.SabotageCooldown = g.diff.Timing.SabotageCooldown().Seconds()
	g.timers.Sabotage = g.diff.Timing.SabotageDuration().Seconds()
	g.stats.Sabotages++
	g.agent.Sabotage(g.agentEnv(), g.cfg.Difficulties.MostLenient().Weights)
	g.logger.Debug("sabotage", "mode", g.agent.Mode, "target_x", g.agent.Target.X)
	return true
}

func (g *Game) updateSabotage(dt float64) {
	if g.timers.SabotageCooldown > 0 {
		g.timers.SabotageCooldown = max(0, g.timers.SabotageCooldown-dt)
	}
	if g.timers.Sabotage <= 0 {
		return
	}
	g.timers.Sabotage -= dt
	if g.timers.Sabotage > 0 {
		return
	}
	g.timers.Sabotage = 0
	if g.hasPiece && g.agent.Mode == agent.ModeErratic {
		g.agent.EndErratic(g.agentEnv())
		g.logger.Debug("sabotage expired")
	}
}

func (g *Game) killPlayer(cause Cause) {
	if g.godMode {
		g.solver.Teleport(&g.player)
		g.logger.Debug("god mode teleport", "cause", cause)
		return
	}
	g.player.Dead = true
	g.player.KilledByLine = cause == CauseLineClear
	g.endGame(cause)
}

func (g *Game) endGame(cause Cause) {
	g.gameOver = true
	g.cause = cause
	g.logger.Info("game over", "cause", string(cause), "score", g.stats.Score, "lines", g.stats.Lines, "pieces", g.stats.Pieces)
	if g.outcomeFired {
		return
	}
	g.outcomeFired = true
	if g.hooks.OnGameOver != nil {
		g.hooks.OnGameOver(cause)
	}
}

func (g *Game) win() {
	g.won = true
	g.logger.Info("escaped", "score", g.stats.Score, "ticks", g.stats.Ticks)
	if g.outcomeFired {
		return
	}
	g.outcomeFired = true
	if g.hooks.OnWin != nil {
		g.hooks.OnWin()
	}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.stats.Score,
		GameOver: g.gameOver,
		Won:      g.won,
		Paused:   g.paused,
	}
}

// GodMode reports whether fatal outcomes are suppressed.
func (g *Game) GodMode() bool { return g.godMode }

// SetGodMode toggles fatal-outcome suppression.
func (g *Game) SetGodMode(on bool) { g.godMode = on }

// SetSpeed changes the piece timer multiplier.
func (g *Game) SetSpeed(speed float64) {
	if speed > 0 {
		g.speed = speed
	}
}

// Grid returns the occupancy grid. Callers must not mutate it.
func (g *Game) Grid() *board.Grid { return g.grid }

// Piece returns the active piece and whether one exists.
func (g *Game) Piece() (board.Piece, bool) { return g.piece, g.hasPiece }

// Player returns a copy of the player.
func (g *Game) Player() physics.Player { return g.player }

// Agent returns the placement agent.
func (g *Game) Agent() *agent.Agent { return g.agent }

// Solver returns the physics solver.
func (g *Game) Solver() *physics.Solver { return g.solver }

// Stats returns the counters of the current life.
func (g *Game) Stats() Stats { return g.stats }

// Timers returns the scheduler timers.
func (g *Game) Timers() Timers { return g.timers }

// Cause returns why the game ended, if it did.
func (g *Game) Cause() Cause { return g.cause }

// Preset returns the active difficulty preset.
func (g *Game) Preset() config.DifficultyPreset { return g.preset }

// Difficulty returns the active difficulty configuration.
func (g *Game) Difficulty() config.DifficultyConfig { return g.diff }

// Speed returns the piece timer multiplier.
func (g *Game) Speed() float64 { return g.speed }

// Seed returns the seed of the current life.
func (g *Game) Seed() int64 { return g.seed }

// Tick returns the number of updates since reset.
func (g *Game) Tick() uint64 { return g.tick }

// NextPiece returns the upcoming piece type.
func (g *Game) NextPiece() board.ShapeType { return g.bag.Peek() }
