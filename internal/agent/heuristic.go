package agent

import (
	"github.com/vovakirdan/well-escape/internal/board"
	"github.com/vovakirdan/well-escape/internal/config"
)

// Breakdown is the itemized score of one terminal placement.
type Breakdown struct {
	Lines           int
	Holes           int
	CoveredHoles    int
	AggregateHeight int
	MaxHeight       int
	Bumpiness       int
	Terrain         Terrain

	LineReward    float64
	HolePenalty   float64
	HeightPenalty float64
	StackPenalty  float64
	BumpPenalty   float64
	FunnelPenalty float64
	SplitPenalty  float64
	EdgeBonus     float64
	FloatPenalty  float64
	DangerPenalty float64

	Total float64
}

// Evaluator scores terminal placements against a scratch copy of the grid.
type Evaluator struct {
	search  config.SearchConfig
	scratch *board.Grid
	before  []int
	after   []int
}

// NewEvaluator creates an evaluator for grids of the given size.
func NewEvaluator(cols, rows int, search config.SearchConfig) *Evaluator {
	return &Evaluator{
		search:  search,
		scratch: board.NewGrid(cols, rows),
		before:  make([]int, cols),
		after:   make([]int, cols),
	}
}

// Evaluate scores placing p in g. It does not modify g and returns the same
// breakdown for the same inputs. The danger penalty is not included; see
// DangerPenalty.
func (e *Evaluator) Evaluate(g *board.Grid, p board.Piece, w config.HeuristicWeights) Breakdown {
	var b Breakdown
	cols, rows := g.Cols(), g.Rows()

	e.before = g.ColumnHeights(e.before)
	e.scratch.CopyFrom(g)
	p.Lock(e.scratch)
	b.Lines = e.scratch.ClearFullRows()
	heights := e.scratch.ColumnHeights(e.after)
	e.after = heights

	b.LineReward = w.LineClear * float64(b.Lines)
	if b.Lines >= 2 {
		b.LineReward += w.MultiLineBonus
	}
	if b.Lines >= 4 {
		b.LineReward += w.TetrisBonus
	}

	for x := 0; x < cols; x++ {
		above := 0
		for y := rows - heights[x]; y < rows; y++ {
			if e.scratch.At(x, y) != board.Empty {
				above++
				continue
			}
			b.Holes++
			b.CoveredHoles += above
		}
		b.AggregateHeight += heights[x]
		b.MaxHeight = max(b.MaxHeight, heights[x])
		if x > 0 {
			b.Bumpiness += absInt(heights[x] - heights[x-1])
		}
	}
	b.HolePenalty = w.Hole*float64(b.Holes) + w.CoveredHole*float64(b.CoveredHoles)
	b.HeightPenalty = w.AggregateHeight*float64(b.AggregateHeight) + w.MaxHeight*float64(b.MaxHeight)
	b.BumpPenalty = w.Bumpiness * float64(b.Bumpiness)

	switch {
	case b.MaxHeight >= rows-e.search.NearTopRows:
		b.StackPenalty = w.NearTop
	case b.MaxHeight >= rows-e.search.HighStackRows:
		b.StackPenalty = w.HighStack
	}

	b.Terrain = AnalyzeTerrain(heights, e.search.CliffHeight)
	b.FunnelPenalty, b.SplitPenalty = b.Terrain.Penalty(cols, w.FunnelCliff, w.FunnelGrowth, w.SplitCliff)

	if heights[0] <= e.search.EdgeLowHeight {
		b.EdgeBonus += w.EdgeBonus
	}
	if heights[cols-1] <= e.search.EdgeLowHeight {
		b.EdgeBonus += w.EdgeBonus
	}

	// Rows of empty space between the piece's lowest cell and the average
	// surface before placement.
	avg := 0.0
	for _, h := range e.before {
		avg += float64(h)
	}
	avg /= float64(cols)
	landing := float64(rows - 1 - p.Bottom())
	if excess := landing - avg - e.search.FloatingThreshold; excess > 0 {
		b.FloatPenalty = w.Floating * excess
	}

	b.Total = b.LineReward + b.EdgeBonus -
		b.HolePenalty - b.HeightPenalty - b.StackPenalty - b.BumpPenalty -
		b.FunnelPenalty - b.SplitPenalty - b.FloatPenalty
	return b
}
