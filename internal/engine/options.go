// Package engine is the tick scheduler of the well. It owns the single
// mutable world (grid, piece, player, agent, timers) and advances it one
// update at a time.
package engine

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/well-escape/internal/config"
)

// Cause is the human-readable reason a game ended.
type Cause string

const (
	CauseNone        Cause = ""
	CauseFieldFilled Cause = "field filled"
	CauseSquished    Cause = "squished"
	CauseLineClear   Cause = "line-clear death"
)

// Hooks are completion callbacks. OnGameOver and OnWin fire at most once
// per life; OnLineCleared fires for every clear.
type Hooks struct {
	OnGameOver    func(cause Cause)
	OnWin         func()
	OnLineCleared func(count int)
}

// Options configures a Game.
type Options struct {
	Config config.WellConfig
	Preset config.DifficultyPreset
	Speed  float64 // Piece timer multiplier; <= 0 means 1
	// GodMode teleports the player instead of killing it. A filled field
	// still ends the game.
	GodMode bool
	// PlayerCompletesLine overrides the preset when non-nil.
	PlayerCompletesLine *bool
	Logger              *log.Logger
	Hooks               Hooks
}

func (o *Options) normalize() {
	if o.Config.Board.Cols == 0 {
		o.Config = config.DefaultWellConfig()
	}
	if o.Preset == "" {
		o.Preset = config.DifficultyBalanced
	}
	if o.Speed <= 0 {
		o.Speed = 1
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Stats are the counters of the current life.
type Stats struct {
	Score     int
	Lines     int
	Pieces    int
	Retargets int
	Sabotages int
	Ticks     uint64 // Unpaused updates survived
}

// Timers are countdowns and accumulators in seconds.
type Timers struct {
	Fall             float64 // Accumulates toward the next gravity step
	Agent            float64 // Accumulates toward the next agent move
	Spawn            float64 // Counts down to the next spawn
	Sabotage         float64 // Remaining sabotage effect
	SabotageCooldown float64 // Remaining cooldown before the next trigger
	PlayerLine       float64 // Counts down to a player-completed clear
}
