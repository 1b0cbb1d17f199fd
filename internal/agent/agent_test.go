package agent

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/well-escape/internal/board"
	"github.com/vovakirdan/well-escape/internal/config"
)

func testConfig() config.WellConfig {
	return config.DefaultWellConfig()
}

func newTestEnv(t *testing.T, grid *board.Grid, piece *board.Piece, diff config.DifficultyConfig) Env {
	t.Helper()
	return Env{
		Grid:       grid,
		Piece:      piece,
		Difficulty: diff,
		Player:     PlayerView{Alive: true, Col: 0, MinCol: 0, MaxCol: 0, TopRow: 18, BotRow: 19},
		Rng:        rand.New(rand.NewSource(1)),
	}
}

func adjacent(a, b board.State, rotations int) bool {
	switch {
	case a.Rot == b.Rot && a.Y == b.Y:
		return a.X-b.X == 1 || b.X-a.X == 1
	case a.Rot == b.Rot && a.X == b.X:
		return b.Y == a.Y+1
	case a.X == b.X && a.Y == b.Y:
		return b.Rot == (a.Rot+1)%rotations
	}
	return false
}

// flatWeights turns off the height and bumpiness terms. Any resting piece
// adds height, so a bottom-row I scores exactly its edge bonus only with
// these weights at zero; default weights score lower.
func flatWeights(w config.HeuristicWeights) config.HeuristicWeights {
	w.AggregateHeight = 0
	w.MaxHeight = 0
	w.Bumpiness = 0
	return w
}

func TestHorizontalIOnEmptyGrid(t *testing.T) {
	cfg := testConfig()
	w := flatWeights(cfg.Difficulties.Balanced.Weights)

	g := board.NewGrid(10, 20)
	piece := board.SpawnPiece(board.ShapeI, g)
	s := NewSearcher(10, 20, cfg.Search)

	res := s.ComputeTarget(Request{Piece: piece, Grid: g, Weights: w, AvoidPlayer: false})

	require.True(t, res.Found)
	assert.Equal(t, 19, res.Target.Y)
	assert.Equal(t, 0, res.Target.Rot)
	assert.InDelta(t, 2*w.EdgeBonus, res.Score, 1e-9)
	assert.InDelta(t, res.Score, res.Breakdown.Total, 1e-9)
	assert.Zero(t, res.Breakdown.Holes)
	assert.Zero(t, res.Breakdown.Terrain.Splits)
	assert.Zero(t, res.Breakdown.Terrain.Funnels)

	require.NotEmpty(t, res.Path)
	assert.Equal(t, res.Target, res.Path[len(res.Path)-1])
	assert.NotEqual(t, piece.State(), res.Path[0], "path excludes the start state")
	prev := piece.State()
	for i, st := range res.Path {
		assert.True(t, adjacent(prev, st, board.ShapeI.Rotations()), "step %d: %v -> %v", i, prev, st)
		prev = st
	}
}

func TestSearchReachesEveryRestingColumn(t *testing.T) {
	cfg := testConfig()
	g := board.NewGrid(10, 20)
	s := NewSearcher(10, 20, cfg.Search)

	for _, st := range board.ShapeTypes() {
		expected := 0
		for r := 0; r < st.Rotations(); r++ {
			expected += 10 - st.Shape(r).Width() + 1
		}
		res := s.ComputeTarget(Request{
			Piece:   board.SpawnPiece(st, g),
			Grid:    g,
			Weights: cfg.Difficulties.Balanced.Weights,
		})
		require.True(t, res.Found, "%v", st)
		assert.Equal(t, expected, res.Terminals, "%v terminals", st)
		assert.Less(t, res.Explored, cfg.Search.MaxIterations, "%v exhausted the budget", st)
	}
}

func TestLargerCapNeverLowersBestScore(t *testing.T) {
	cfg := testConfig()
	g := board.NewGrid(10, 20)
	for x := 0; x < 10; x++ {
		if x != 7 {
			g.Set(x, 19, board.ShapeI.Block())
		}
		if x < 4 {
			g.Set(x, 18, board.ShapeO.Block())
		}
	}
	piece := board.SpawnPiece(board.ShapeT, g)
	s := NewSearcher(10, 20, cfg.Search)

	prev := math.Inf(-1)
	for _, limit := range []int{1, 5, 20, 60, 150, 400, 1000, 3000} {
		s.SetMaxIterations(limit)
		res := s.ComputeTarget(Request{Piece: piece, Grid: g, Weights: cfg.Difficulties.Balanced.Weights})
		score := math.Inf(-1)
		if res.Found {
			score = res.Score
		}
		assert.GreaterOrEqual(t, score, prev, "cap %d", limit)
		assert.LessOrEqual(t, res.Explored, limit)
		prev = score
	}
	assert.False(t, math.IsInf(prev, -1), "full budget must find a target")
}

func TestEvaluateIsIdempotent(t *testing.T) {
	cfg := testConfig()
	g := board.NewGrid(10, 20)
	g.Set(0, 19, board.ShapeL.Block())
	g.Set(1, 19, board.ShapeL.Block())
	g.Set(5, 17, board.ShapeZ.Block())
	e := NewEvaluator(10, 20, cfg.Search)
	piece := board.Piece{Type: board.ShapeS, X: 3, Y: 18}

	version, filled := g.Version(), g.Filled()
	first := e.Evaluate(g, piece, cfg.Difficulties.Balanced.Weights)
	second := e.Evaluate(g, piece, cfg.Difficulties.Balanced.Weights)

	assert.Equal(t, first, second)
	assert.Equal(t, version, g.Version(), "evaluation must not mutate the grid")
	assert.Equal(t, filled, g.Filled())
	assert.Positive(t, first.Holes)
}

func TestEvaluateLineClearReward(t *testing.T) {
	cfg := testConfig()
	w := cfg.Difficulties.Balanced.Weights
	g := board.NewGrid(10, 20)
	for y := 16; y < 20; y++ {
		for x := 1; x < 10; x++ {
			g.Set(x, y, board.ShapeJ.Block())
		}
	}
	e := NewEvaluator(10, 20, cfg.Search)

	b := e.Evaluate(g, board.Piece{Type: board.ShapeI, Rot: 1, X: 0, Y: 16}, w)
	assert.Equal(t, 4, b.Lines)
	assert.InDelta(t, 4*w.LineClear+w.MultiLineBonus+w.TetrisBonus, b.LineReward, 1e-9)
	assert.Zero(t, b.AggregateHeight)
	assert.InDelta(t, 2*w.EdgeBonus+b.LineReward, b.Total, 1e-9)
}

func TestEvaluateStackPenalties(t *testing.T) {
	cfg := testConfig()
	w := cfg.Difficulties.Balanced.Weights
	e := NewEvaluator(10, 20, cfg.Search)

	tests := []struct {
		name     string
		top      int // Highest filled row of column 9 before placement
		expected float64
	}{
		{"low", 16, 0},
		{"high stack", 4, w.HighStack},
		{"near top", 2, w.NearTop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := board.NewGrid(10, 20)
			for y := tt.top; y < 20; y++ {
				g.Set(9, y, board.ShapeI.Block())
			}
			b := e.Evaluate(g, board.Piece{Type: board.ShapeO, X: 0, Y: 18}, w)
			assert.Equal(t, tt.expected, b.StackPenalty)
		})
	}
}

func TestFloatingPenalty(t *testing.T) {
	cfg := testConfig()
	w := cfg.Difficulties.Balanced.Weights
	e := NewEvaluator(10, 20, cfg.Search)

	g := board.NewGrid(10, 20)
	for y := 8; y < 20; y++ {
		g.Set(0, y, board.ShapeI.Block())
	}
	// Resting on top of a tall pillar far above the average surface.
	high := e.Evaluate(g, board.Piece{Type: board.ShapeI, X: 0, Y: 7}, w)
	low := e.Evaluate(g, board.Piece{Type: board.ShapeI, X: 1, Y: 19}, w)

	assert.Positive(t, high.FloatPenalty)
	assert.Zero(t, low.FloatPenalty)
}

func TestFunnelBoundsMirror(t *testing.T) {
	heights := []int{8, 5, 1, 0, 0, 0, 2, 6, 6, 0}
	mirrored := make([]int, len(heights))
	for i, h := range heights {
		mirrored[len(heights)-1-i] = h
	}

	l, r := FunnelBounds(heights)
	ml, mr := FunnelBounds(mirrored)
	assert.Equal(t, 5, l)
	assert.Equal(t, 9, r)
	assert.Equal(t, len(heights)-1-r, ml)
	assert.Equal(t, len(heights)-1-l, mr)

	a := AnalyzeTerrain(heights, 4)
	b := AnalyzeTerrain(mirrored, 4)
	assert.Equal(t, 1, a.Funnels)
	assert.Equal(t, 2, a.Splits)
	assert.Equal(t, a.Funnels, b.Funnels)
	assert.Equal(t, a.Splits, b.Splits)

	w := testConfig().Difficulties.Balanced.Weights
	af, as := a.Penalty(10, w.FunnelCliff, w.FunnelGrowth, w.SplitCliff)
	bf, bs := b.Penalty(10, w.FunnelCliff, w.FunnelGrowth, w.SplitCliff)
	assert.InDelta(t, af, bf, 1e-9)
	assert.InDelta(t, as, bs, 1e-9)
}

func TestFunnelClassification(t *testing.T) {
	tests := []struct {
		name    string
		heights []int
		funnels int
		splits  int
	}{
		{"flat", []int{0, 0, 0, 0, 0, 0}, 0, 0},
		{"left ramp", []int{9, 5, 1, 0, 0, 0}, 2, 0},
		{"right ramp", []int{0, 0, 0, 1, 5, 9}, 2, 0},
		{"both ramps", []int{6, 2, 0, 0, 2, 6}, 2, 0},
		{"tower", []int{0, 0, 5, 0, 0, 0}, 0, 2},
		{"wall", []int{0, 0, 0, 6, 6, 6}, 1, 0},
		{"step behind dip", []int{4, 0, 1, 5, 0, 0}, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeTerrain(tt.heights, 4)
			assert.Equal(t, tt.funnels, got.Funnels, "funnels")
			assert.Equal(t, tt.splits, got.Splits, "splits")
		})
	}
}

func TestSplitPenaltyOutweighsRewards(t *testing.T) {
	cfg := testConfig()
	rows, cols := cfg.Board.Rows, cfg.Board.Cols

	for _, preset := range config.Presets() {
		w := cfg.Difficulties.Get(preset).Weights
		best := 4*w.LineClear + w.MultiLineBonus + w.TetrisBonus + 2*w.EdgeBonus +
			math.Max(0, -w.AggregateHeight)*float64(rows*cols) + math.Max(0, -w.MaxHeight)*float64(rows)
		assert.Greater(t, w.SplitCliff, best, "%s", preset)
	}

	// A lone tower in the middle splits the well twice.
	w := cfg.Difficulties.Balanced.Weights
	g := board.NewGrid(cols, rows)
	e := NewEvaluator(cols, rows, cfg.Search)
	tower := e.Evaluate(g, board.Piece{Type: board.ShapeI, Rot: 1, X: 4, Y: 16}, w)
	assert.Equal(t, 2, tower.Terrain.Splits)
	assert.InDelta(t, 2*w.SplitCliff, tower.SplitPenalty, 1e-9)

	// The search never picks it.
	s := NewSearcher(cols, rows, cfg.Search)
	res := s.ComputeTarget(Request{Piece: board.SpawnPiece(board.ShapeI, g), Grid: g, Weights: w})
	require.True(t, res.Found)
	assert.Zero(t, res.Breakdown.Terrain.Splits)
}

func TestDangerPenalty(t *testing.T) {
	d := config.DangerConfig{Penalty: 40, Decay: 0.5}

	tests := []struct {
		name      string
		retargets int
		height    int
		expected  float64
	}{
		{"fresh", 0, 0, 40},
		{"decayed", 2, 0, 10},
		{"panic half", 0, 15, 20},
		{"decayed and panic", 2, 15, 5},
		{"full board", 0, 20, 0},
		{"overflow clamps", 0, 30, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DangerPenalty(d, tt.retargets, tt.height, 20, 0.5)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestZoneForbids(t *testing.T) {
	view := PlayerView{Alive: true, Col: 4, MinCol: 4, MaxCol: 5, TopRow: 18, BotRow: 19}
	zone := NewZone(view, config.DangerConfig{Margin: 1, VerticalRange: 3}, true)
	require.True(t, zone.Active)
	assert.Equal(t, 3, zone.Left)
	assert.Equal(t, 6, zone.Right)

	o := func(x, y int) board.Piece { return board.Piece{Type: board.ShapeO, X: x, Y: y} }

	assert.False(t, zone.Forbids(o(0, 15), o(1, 15)), "still outside the zone")
	assert.True(t, zone.Forbids(o(1, 15), o(2, 15)), "entering the zone near the player")
	assert.False(t, zone.Forbids(o(1, 5), o(2, 5)), "entering the zone far above the player")
	assert.False(t, zone.Forbids(o(3, 15), o(4, 15)), "already inside may move")

	assert.False(t, NewZone(view, config.DangerConfig{}, false).Active)
	view.Alive = false
	assert.False(t, NewZone(view, config.DangerConfig{}, true).Active)
}

func TestSearchAvoidsPlayer(t *testing.T) {
	cfg := testConfig()
	diff := cfg.Difficulties.Balanced
	g := board.NewGrid(10, 20)
	view := PlayerView{Alive: true, Col: 0, MinCol: 0, MaxCol: 1, TopRow: 18, BotRow: 19}
	s := NewSearcher(10, 20, cfg.Search)
	piece := board.SpawnPiece(board.ShapeO, g)

	free := s.ComputeTarget(Request{Piece: piece, Grid: g, Weights: diff.Weights, Danger: diff.Danger, Player: view})
	require.True(t, free.Found)

	avoid := s.ComputeTarget(Request{Piece: piece, Grid: g, Weights: diff.Weights, Danger: diff.Danger, Player: view, AvoidPlayer: true})
	require.True(t, avoid.Found)
	zone := NewZone(view, diff.Danger, true)
	assert.False(t, zone.CoversPiece(piece.WithState(avoid.Target)))
	assert.Zero(t, avoid.Breakdown.DangerPenalty)

	triggered := s.ComputeTarget(Request{Piece: piece, Grid: g, Weights: diff.Weights, Danger: diff.Danger, Player: view, AvoidPlayer: true, PlayerTriggered: true})
	assert.Equal(t, free.Target, triggered.Target, "player-triggered searches ignore the player")
	assert.InDelta(t, free.Score, triggered.Score, 1e-9)
}

func TestRecomputeCountsOnlyChangedTargets(t *testing.T) {
	cfg := testConfig()
	diff := cfg.Difficulties.Balanced
	g := board.NewGrid(10, 20)
	piece := board.SpawnPiece(board.ShapeO, g)
	env := newTestEnv(t, g, &piece, diff)
	a := New(10, 20, cfg.Search)
	a.Reset(env.Player.Col)

	a.Recompute(env, diff.Weights, true, false)
	require.True(t, a.HasTarget)
	first := a.Target
	assert.Zero(t, a.Retargets)

	out := a.Recompute(env, diff.Weights, true, false)
	assert.False(t, out.Retargeted)
	assert.Zero(t, a.Retargets)

	// Move the player under the chosen target.
	env.Player = PlayerView{Alive: true, Col: first.X, MinCol: first.X, MaxCol: first.X + 1, TopRow: 18, BotRow: 19}
	out = a.Recompute(env, diff.Weights, true, false)
	assert.True(t, out.Retargeted)
	assert.Equal(t, 1, a.Retargets)
	assert.NotEqual(t, first, a.Target)
}

func TestRecomputeWithoutResultKeepsFingerprint(t *testing.T) {
	cfg := testConfig()
	diff := cfg.Difficulties.Balanced
	g := board.NewGrid(10, 20)
	piece := board.SpawnPiece(board.ShapeO, g)
	env := newTestEnv(t, g, &piece, diff)
	a := New(10, 20, cfg.Search)
	a.Reset(env.Player.Col)

	a.Recompute(env, diff.Weights, true, false)
	require.True(t, a.HasTarget)
	first := a.Target

	// A piece outside the well yields no target.
	spawnX := piece.X
	piece.X = 100
	out := a.Recompute(env, diff.Weights, true, false)
	assert.False(t, a.HasTarget)
	assert.False(t, out.Retargeted)

	piece.X = spawnX
	env.Player = PlayerView{Alive: true, Col: first.X, MinCol: first.X, MaxCol: first.X + 1, TopRow: 18, BotRow: 19}
	out = a.Recompute(env, diff.Weights, true, false)
	require.True(t, a.HasTarget)
	assert.NotEqual(t, first, a.Target)
	assert.True(t, out.Retargeted, "a new target after an empty search is a change")
	assert.Equal(t, 1, a.Retargets)
}

func TestShouldRetarget(t *testing.T) {
	cfg := testConfig()
	diff := cfg.Difficulties.Balanced
	g := board.NewGrid(10, 20)
	piece := board.SpawnPiece(board.ShapeO, g)
	env := newTestEnv(t, g, &piece, diff)
	a := New(10, 20, cfg.Search)
	a.Reset(env.Player.Col)

	assert.True(t, a.ShouldRetarget(env), "no target yet")

	a.Recompute(env, diff.Weights, true, false)
	assert.False(t, a.ShouldRetarget(env), "player has not moved")

	// Player walks under the target.
	env.Player = PlayerView{Alive: true, Col: a.Target.X, MinCol: a.Target.X, MaxCol: a.Target.X + 1, TopRow: 18, BotRow: 19}
	assert.True(t, a.ShouldRetarget(env))
	assert.False(t, a.ShouldRetarget(env), "column change is consumed by the check")

	env.Difficulty.Agent.MaxRetargets = 0
	env.Player.Col++
	assert.False(t, a.ShouldRetarget(env), "retarget cap reached")

	env.Difficulty.Agent.MaxRetargets = -1
	env.Player.Col++
	piece.Y = 17
	assert.False(t, a.ShouldRetarget(env), "too close to landing")
}

// run drives the agent with several agent ticks per gravity step until the
// piece lands.
// run drives the piece to rest with five agent ticks per gravity row, the
// balanced preset's ratio, and returns how many ticks recomputed the target.
func run(t *testing.T, a *Agent, env Env) int {
	t.Helper()
	recomputes := 0
	for i := 0; i < 200; i++ {
		for j := 0; j < 5; j++ {
			out := a.Step(env)
			if out.Recomputed {
				recomputes++
			}
			if out.Move == MoveFastDrop {
				env.Piece.Y += env.Piece.DropDistance(env.Grid)
			}
		}
		if env.Piece.DropDistance(env.Grid) == 0 {
			return recomputes
		}
		env.Piece.Y++
		env.Piece.Steps++
	}
	t.Fatal("piece never landed")
	return recomputes
}

func TestStepFollowsPathToTarget(t *testing.T) {
	tests := []struct {
		name  string
		grid  func(g *board.Grid)
		piece func(g *board.Grid) board.Piece
		// lateralFirst requires the path to shift columns before it rotates.
		lateralFirst bool
	}{
		{
			name: "T from spawn",
			grid: func(g *board.Grid) {
				g.Set(9, 19, board.ShapeI.Block())
				g.Set(8, 19, board.ShapeI.Block())
			},
			piece: func(g *board.Grid) board.Piece { return board.SpawnPiece(board.ShapeT, g) },
		},
		{
			name:         "vertical I against the right wall",
			grid:         func(*board.Grid) {},
			piece:        func(*board.Grid) board.Piece { return board.Piece{Type: board.ShapeI, Rot: 1, X: 9, Y: 2} },
			lateralFirst: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			diff := cfg.Difficulties.Balanced
			diff.Danger.Avoid = false
			g := board.NewGrid(10, 20)
			tt.grid(g)
			piece := tt.piece(g)
			start := piece.State()
			env := newTestEnv(t, g, &piece, diff)
			a := New(10, 20, cfg.Search)
			a.Reset(env.Player.Col)
			a.Recompute(env, diff.Weights, false, false)
			require.True(t, a.HasTarget)
			require.NotEmpty(t, a.Path)
			target := a.Target
			if tt.lateralFirst {
				require.NotEqual(t, start.Rot, target.Rot)
				require.Equal(t, start.Rot, a.Path[0].Rot, "path: %v", a.Path)
				require.NotEqual(t, start.X, a.Path[0].X, "path: %v", a.Path)
			}

			recomputes := run(t, a, env)

			assert.Equal(t, target, piece.State())
			assert.Zero(t, recomputes, "nothing changed, so the target is never recomputed")
			assert.Zero(t, a.Retargets)
		})
	}
}

func TestStepRotationBlockedFallsBackToLateral(t *testing.T) {
	cfg := testConfig()
	diff := cfg.Difficulties.Balanced
	diff.Danger.Avoid = false
	g := board.NewGrid(10, 20)
	piece := board.Piece{Type: board.ShapeI, Rot: 1, X: 9, Y: 2}
	env := newTestEnv(t, g, &piece, diff)
	a := New(10, 20, cfg.Search)
	a.Reset(env.Player.Col)
	a.HasTarget = true
	a.Target = board.State{X: 6, Y: 19, Rot: 0}
	a.Fingerprint = a.searcher.pack(a.Target)
	// Off the path: the next state wants both a rotation and a shift.
	a.Path = []board.State{{X: 6, Y: 3, Rot: 0}}

	out := a.Step(env)

	assert.Equal(t, MoveLeft, out.Move)
	assert.False(t, out.Recomputed)
	assert.Equal(t, 8, piece.X)
	assert.Equal(t, 1, piece.Rot)
}

func TestStepBlockedNearLandingAcceptsRestingState(t *testing.T) {
	cfg := testConfig()
	diff := cfg.Difficulties.Balanced
	g := board.NewGrid(10, 20)
	piece := board.Piece{Type: board.ShapeO, X: 4, Y: 16}
	env := newTestEnv(t, g, &piece, diff)
	env.PlayerBlocks = func(board.Piece) bool { return true }

	a := New(10, 20, cfg.Search)
	a.Reset(env.Player.Col)
	a.HasTarget = true
	a.Target = board.State{X: 0, Y: 18}
	a.Path = []board.State{{X: 3, Y: 16}, {X: 2, Y: 16}, {X: 1, Y: 16}, {X: 0, Y: 16}, {X: 0, Y: 17}, {X: 0, Y: 18}}
	a.Fingerprint = a.searcher.pack(a.Target)

	out := a.Step(env)

	assert.True(t, out.Accepted)
	assert.Equal(t, MoveNone, out.Move)
	assert.Equal(t, board.State{X: 4, Y: 18}, a.Target)
	assert.Equal(t, []board.State{{X: 4, Y: 17}, {X: 4, Y: 18}}, a.Path)
	assert.Equal(t, 4, piece.X)
}

func TestFastDrop(t *testing.T) {
	cfg := testConfig()
	diff := cfg.Difficulties.Balanced
	g := board.NewGrid(10, 20)
	piece := board.Piece{Type: board.ShapeO, X: 8, Y: 3, Steps: 3}
	env := newTestEnv(t, g, &piece, diff)
	a := New(10, 20, cfg.Search)
	a.Reset(env.Player.Col)
	a.HasTarget = true
	a.Target = board.State{X: 8, Y: 18}
	a.MovesMade = 2

	assert.True(t, a.CanFastDrop(env))

	a.MovesMade = 0
	assert.False(t, a.CanFastDrop(env), "too few moves")
	a.MovesMade = 2

	piece.Steps = 0
	assert.False(t, a.CanFastDrop(env), "not enough natural fall")
	piece.Steps = 3

	piece.Y = 13
	assert.False(t, a.CanFastDrop(env), "drop distance under threshold")
	piece.Y = 3

	env.Player = PlayerView{Alive: true, Col: 8, MinCol: 8, MaxCol: 9, TopRow: 18, BotRow: 19}
	assert.False(t, a.CanFastDrop(env), "player in the danger zone")
}

func TestErraticStepBouncesOffWalls(t *testing.T) {
	g := board.NewGrid(10, 20)
	cfg := config.ErraticConfig{StepChance: 1}
	rng := rand.New(rand.NewSource(3))
	p := board.Piece{Type: board.ShapeO, X: 8, Y: 2}

	p, dir := ErraticStep(g, p, 1, cfg, rng, nil)
	assert.Equal(t, 8, p.X)
	assert.Equal(t, -1, dir)

	p, dir = ErraticStep(g, p, dir, cfg, rng, nil)
	assert.Equal(t, 7, p.X)
	assert.Equal(t, -1, dir)
}

func TestErraticStepRotationRespectsTerrain(t *testing.T) {
	g := board.NewGrid(10, 20)
	cfg := config.ErraticConfig{RotateChance: 1}
	rng := rand.New(rand.NewSource(3))

	p, _ := ErraticStep(g, board.Piece{Type: board.ShapeI, X: 3, Y: 19}, 1, cfg, rng, nil)
	assert.Equal(t, 0, p.Rot, "vertical I does not fit below the floor")

	p, _ = ErraticStep(g, board.Piece{Type: board.ShapeI, X: 3, Y: 5}, 1, cfg, rng, nil)
	assert.Equal(t, 1, p.Rot)

	blockAll := func(board.Piece) bool { return true }
	p, _ = ErraticStep(g, board.Piece{Type: board.ShapeI, X: 3, Y: 5}, 1, cfg, rng, blockAll)
	assert.Equal(t, 0, p.Rot)
}

func TestErraticStepDeterministic(t *testing.T) {
	g := board.NewGrid(10, 20)
	cfg := testConfig().Difficulties.Balanced.Agent.Erratic
	a, b := rand.New(rand.NewSource(9)), rand.New(rand.NewSource(9))
	pa := board.Piece{Type: board.ShapeL, X: 4, Y: 2}
	pb := pa
	da, db := 1, 1

	for i := 0; i < 100; i++ {
		pa, da = ErraticStep(g, pa, da, cfg, a, nil)
		pb, db = ErraticStep(g, pb, db, cfg, b, nil)
		require.Equal(t, pa, pb, "step %d", i)
		require.Equal(t, da, db, "step %d", i)
		require.True(t, pa.Fits(g))
	}
}

func TestSabotageEntersAndLeavesErraticMode(t *testing.T) {
	cfg := testConfig()
	diff := cfg.Difficulties.Balanced
	g := board.NewGrid(10, 20)
	piece := board.SpawnPiece(board.ShapeT, g)
	env := newTestEnv(t, g, &piece, diff)
	a := New(10, 20, cfg.Search)
	a.Reset(env.Player.Col)

	out := a.Sabotage(env, cfg.Difficulties.MostLenient().Weights)
	assert.True(t, out.Recomputed)
	assert.True(t, a.HasTarget)
	assert.Equal(t, ModeErratic, a.Mode)
	assert.Contains(t, []int{-1, 1}, a.ErraticDir)

	piece.Y = piece.Y + piece.DropDistance(g) - 1
	out = a.Step(env)
	assert.True(t, out.ErraticEnd)
	assert.Equal(t, ModeNormal, a.Mode)
}

func TestPathAfterErraticEpisodeAtWall(t *testing.T) {
	cfg := testConfig()
	diff := cfg.Difficulties.Balanced
	diff.Danger.Avoid = false
	g := board.NewGrid(10, 20)
	piece := board.SpawnPiece(board.ShapeI, g)
	env := newTestEnv(t, g, &piece, diff)
	a := New(10, 20, cfg.Search)
	a.Reset(env.Player.Col)

	a.Sabotage(env, cfg.Difficulties.MostLenient().Weights)
	require.Equal(t, ModeErratic, a.Mode)

	// Drifted into the right wall and turned upright.
	piece = board.Piece{Type: board.ShapeI, Rot: 1, X: 9, Y: 2}
	out := a.EndErratic(env)
	require.True(t, out.ErraticEnd)
	require.True(t, a.HasTarget)
	target := a.Target

	recomputes := run(t, a, env)

	assert.Equal(t, target, piece.State())
	assert.Zero(t, recomputes)
}

func TestSabotageNearLandingStaysNormal(t *testing.T) {
	cfg := testConfig()
	diff := cfg.Difficulties.Balanced
	g := board.NewGrid(10, 20)
	piece := board.Piece{Type: board.ShapeO, X: 4, Y: 14}
	env := newTestEnv(t, g, &piece, diff)
	a := New(10, 20, cfg.Search)
	a.Reset(env.Player.Col)

	a.Sabotage(env, cfg.Difficulties.MostLenient().Weights)
	assert.Equal(t, ModeNormal, a.Mode)
}
