package agent

import (
	"math"

	"github.com/kamstrup/intmap"

	"github.com/vovakirdan/well-escape/internal/board"
	"github.com/vovakirdan/well-escape/internal/config"
)

// Request is the input of one placement search.
type Request struct {
	Piece   board.Piece
	Grid    *board.Grid
	Weights config.HeuristicWeights
	Danger  config.DangerConfig
	Player  PlayerView

	// AvoidPlayer enables the danger-zone penalty and move suppression.
	AvoidPlayer bool
	// PlayerTriggered marks a recompute forced by the player's sabotage; it
	// ignores the player entirely.
	PlayerTriggered bool
	// Retargets is how many times the current piece has changed target.
	Retargets int
}

// Result is the chosen terminal state and the path to it.
type Result struct {
	Found     bool
	Target    board.State
	Path      []board.State // Excludes the start state
	Score     float64
	Breakdown Breakdown
	Explored  int // States dequeued
	Terminals int // Terminal states scored
}

// Searcher runs bounded breadth-first placement searches. Buffers are
// reused between searches; a Searcher is not safe for concurrent use.
type Searcher struct {
	cols, rows, rots int
	maxIter          int
	search           config.SearchConfig
	eval             *Evaluator

	visited  []bool
	cameFrom []int32
	queue    []int32

	// Base scores of terminal states, valid while the grid version, piece
	// type and weights are unchanged.
	cache        *intmap.Map[int32, float64]
	cacheGrid    *board.Grid
	cacheVersion uint64
	cacheType    board.ShapeType
	cacheWeights config.HeuristicWeights
}

// NewSearcher creates a searcher for a cols x rows well.
func NewSearcher(cols, rows int, search config.SearchConfig) *Searcher {
	rots := board.MaxRotations()
	n := rots * cols * rows
	return &Searcher{
		cols:     cols,
		rows:     rows,
		rots:     rots,
		maxIter:  search.MaxIterations,
		search:   search,
		eval:     NewEvaluator(cols, rows, search),
		visited:  make([]bool, n),
		cameFrom: make([]int32, n),
		queue:    make([]int32, 0, n),
		cache:    intmap.New[int32, float64](256),
	}
}

// SetMaxIterations changes the iteration cap.
func (s *Searcher) SetMaxIterations(n int) {
	s.maxIter = n
}

// Evaluator returns the heuristic evaluator used for terminal states.
func (s *Searcher) Evaluator() *Evaluator {
	return s.eval
}

func (s *Searcher) pack(st board.State) int32 {
	return int32(st.Rot*s.cols*s.rows + st.Y*s.cols + st.X)
}

func (s *Searcher) unpack(k int32) board.State {
	plane := s.cols * s.rows
	rem := int(k) % plane
	return board.State{X: rem % s.cols, Y: rem / s.cols, Rot: int(k) / plane}
}

func (s *Searcher) inRange(st board.State) bool {
	return st.X >= 0 && st.X < s.cols && st.Y >= 0 && st.Y < s.rows && st.Rot >= 0 && st.Rot < s.rots
}

func (s *Searcher) prepareCache(req *Request) {
	if s.cacheGrid == req.Grid && s.cacheVersion == req.Grid.Version() &&
		s.cacheType == req.Piece.Type && s.cacheWeights == req.Weights {
		return
	}
	s.cache.Clear()
	s.cacheGrid = req.Grid
	s.cacheVersion = req.Grid.Version()
	s.cacheType = req.Piece.Type
	s.cacheWeights = req.Weights
}

// ComputeTarget searches every state reachable from the piece's current
// state, scores each terminal state and returns the best one. Ties keep the
// first state found. A piece that does not fit yields a Result with Found
// false.
func (s *Searcher) ComputeTarget(req Request) Result {
	var res Result
	start := req.Piece
	if !s.inRange(start.State()) || !start.Fits(req.Grid) {
		return res
	}
	s.prepareCache(&req)

	avoid := req.AvoidPlayer && !req.PlayerTriggered
	zone := NewZone(req.Player, req.Danger, avoid)
	danger := 0.0
	if zone.Active {
		danger = DangerPenalty(req.Danger, req.Retargets, req.Grid.MaxHeight(), s.rows, s.search.PanicStartRatio)
	}

	clear(s.visited)
	s.queue = s.queue[:0]
	startKey := s.pack(start.State())
	s.visited[startKey] = true
	s.cameFrom[startKey] = -1
	s.queue = append(s.queue, startKey)

	best := math.Inf(-1)
	bestKey := int32(-1)
	for head := 0; head < len(s.queue) && res.Explored < s.maxIter; head++ {
		k := s.queue[head]
		res.Explored++
		cur := start.WithState(s.unpack(k))
		shape := cur.Shape()

		if !req.Grid.Fits(shape, cur.X, cur.Y+1) {
			res.Terminals++
			score, ok := s.cache.Get(k)
			if !ok {
				score = s.eval.Evaluate(req.Grid, cur, req.Weights).Total
				s.cache.Put(k, score)
			}
			if zone.CoversPiece(cur) {
				score -= danger
			}
			if score > best {
				best = score
				bestKey = k
			}
		}

		rot := (cur.Rot + 1) % cur.Type.Rotations()
		neighbors := [...]struct {
			st      board.State
			lateral bool
		}{
			{board.State{X: cur.X - 1, Y: cur.Y, Rot: cur.Rot}, true},
			{board.State{X: cur.X + 1, Y: cur.Y, Rot: cur.Rot}, true},
			{board.State{X: cur.X, Y: cur.Y, Rot: rot}, true},
			{board.State{X: cur.X, Y: cur.Y + 1, Rot: cur.Rot}, false},
		}
		for _, n := range neighbors {
			if !s.inRange(n.st) {
				continue
			}
			nk := s.pack(n.st)
			if s.visited[nk] {
				continue
			}
			next := start.WithState(n.st)
			if !next.Fits(req.Grid) {
				continue
			}
			if n.lateral && zone.Forbids(cur, next) {
				continue
			}
			s.visited[nk] = true
			s.cameFrom[nk] = k
			s.queue = append(s.queue, nk)
		}
	}

	if bestKey < 0 {
		return res
	}
	res.Found = true
	res.Target = s.unpack(bestKey)
	res.Score = best
	res.Path = s.walkBack(bestKey)
	res.Breakdown = s.eval.Evaluate(req.Grid, start.WithState(res.Target), req.Weights)
	if zone.CoversPiece(start.WithState(res.Target)) {
		res.Breakdown.DangerPenalty = danger
		res.Breakdown.Total -= danger
	}
	return res
}

func (s *Searcher) walkBack(k int32) []board.State {
	n := 0
	for c := k; s.cameFrom[c] >= 0; c = s.cameFrom[c] {
		n++
	}
	path := make([]board.State, n)
	for c := k; s.cameFrom[c] >= 0; c = s.cameFrom[c] {
		n--
		path[n] = s.unpack(c)
	}
	return path
}
