// Package config provides YAML-based configuration loading and difficulty
// preset management for the well simulation.
package config

import (
	"errors"
	"fmt"
	"time"
)

// WellConfig contains all configuration for the well simulation.
type WellConfig struct {
	Board        BoardConfig   `yaml:"board"`
	Physics      PhysicsConfig `yaml:"physics"`
	Search       SearchConfig  `yaml:"search"`
	Scoring      ScoringConfig `yaml:"scoring"`
	Difficulties DifficultySet `yaml:"difficulties"`
}

// BoardConfig defines the well dimensions.
type BoardConfig struct {
	Cols       int     `yaml:"cols"`
	Rows       int     `yaml:"rows"`
	BlockSize  float64 `yaml:"block_size"`  // Pixels per grid cell
	EscapeRows int     `yaml:"escape_rows"` // Rows from the top that count as the exit
}

// Width returns the well width in pixels.
func (b BoardConfig) Width() float64 {
	return float64(b.Cols) * b.BlockSize
}

// Height returns the well height in pixels.
func (b BoardConfig) Height() float64 {
	return float64(b.Rows) * b.BlockSize
}

// PhysicsConfig defines player physics. Velocities are pixels per reference
// frame (1/FrameRate seconds).
type PhysicsConfig struct {
	FrameRate        float64 `yaml:"frame_rate"`
	Gravity          float64 `yaml:"gravity"`
	JumpImpulse      float64 `yaml:"jump_impulse"`
	MaxFallSpeed     float64 `yaml:"max_fall_speed"`
	MoveSpeed        float64 `yaml:"move_speed"`
	PlayerWidth      float64 `yaml:"player_width"`
	PlayerHeight     float64 `yaml:"player_height"`
	GroundProbeRatio float64 `yaml:"ground_probe_ratio"` // Fraction of player width probed for footing
}

// SearchConfig defines the placement search budget and heuristic thresholds
// shared by every difficulty.
type SearchConfig struct {
	MaxIterations     int     `yaml:"max_iterations"`
	CliffHeight       int     `yaml:"cliff_height"`       // Height step the player cannot jump
	NearTopRows       int     `yaml:"near_top_rows"`      // Catastrophic zone below the top
	HighStackRows     int     `yaml:"high_stack_rows"`    // Severe zone below the top
	EdgeLowHeight     int     `yaml:"edge_low_height"`    // Edge columns at or below this earn the edge bonus
	FloatingThreshold float64 `yaml:"floating_threshold"` // Rows above average height tolerated before penalty
	PanicStartRatio   float64 `yaml:"panic_start_ratio"`  // Board height fraction where avoidance starts fading
}

// ScoringConfig defines how line clears are rewarded to the player.
type ScoringConfig struct {
	PointsPerLine int `yaml:"points_per_line"`
}

// DifficultySet holds the three named presets.
type DifficultySet struct {
	Lenient    DifficultyConfig `yaml:"lenient"`
	Balanced   DifficultyConfig `yaml:"balanced"`
	Aggressive DifficultyConfig `yaml:"aggressive"`
}

// DifficultyConfig is the immutable record of agent weights and timing for
// one preset.
type DifficultyConfig struct {
	Weights             HeuristicWeights `yaml:"weights"`
	Danger              DangerConfig     `yaml:"danger"`
	Timing              TimingConfig     `yaml:"timing"`
	Agent               AgentConfig      `yaml:"agent"`
	PlayerCompletesLine bool             `yaml:"player_completes_line"`
}

// HeuristicWeights are the terms of the placement score. Penalties are
// positive magnitudes and are subtracted; a negative height weight turns
// the penalty into a reward.
type HeuristicWeights struct {
	LineClear       float64 `yaml:"line_clear"`
	MultiLineBonus  float64 `yaml:"multi_line_bonus"` // 2+ lines at once
	TetrisBonus     float64 `yaml:"tetris_bonus"`     // 4+ lines at once
	Hole            float64 `yaml:"hole"`
	CoveredHole     float64 `yaml:"covered_hole"` // Per block above each hole
	AggregateHeight float64 `yaml:"aggregate_height"`
	MaxHeight       float64 `yaml:"max_height"`
	NearTop         float64 `yaml:"near_top"`
	HighStack       float64 `yaml:"high_stack"`
	Bumpiness       float64 `yaml:"bumpiness"`
	FunnelCliff     float64 `yaml:"funnel_cliff"`
	FunnelGrowth    float64 `yaml:"funnel_growth"` // Exponential base by distance from the nearer edge
	SplitCliff      float64 `yaml:"split_cliff"`
	EdgeBonus       float64 `yaml:"edge_bonus"`
	Floating        float64 `yaml:"floating"`
}

// DangerConfig defines how the agent treats the player's column range.
type DangerConfig struct {
	Avoid         bool    `yaml:"avoid"`
	Margin        int     `yaml:"margin"`         // Columns added on each side of the player
	Penalty       float64 `yaml:"penalty"`        // Base danger-zone penalty
	Decay         float64 `yaml:"decay"`          // Geometric decay per retarget
	VerticalRange int     `yaml:"vertical_range"` // Rows above the player where moves are suppressed
}

// TimingConfig holds timer intervals in milliseconds.
type TimingConfig struct {
	FallMs             int `yaml:"fall_ms"`
	AgentMoveMs        int `yaml:"agent_move_ms"`
	SpawnDelayMs       int `yaml:"spawn_delay_ms"`
	SabotageDurationMs int `yaml:"sabotage_duration_ms"`
	SabotageCooldownMs int `yaml:"sabotage_cooldown_ms"`
	PlayerLineClearMs  int `yaml:"player_line_clear_ms"`
}

// Fall returns the gravity interval.
func (t TimingConfig) Fall() time.Duration { return ms(t.FallMs) }

// AgentMove returns the agent move interval.
func (t TimingConfig) AgentMove() time.Duration { return ms(t.AgentMoveMs) }

// SpawnDelay returns the delay between lock and the next spawn.
func (t TimingConfig) SpawnDelay() time.Duration { return ms(t.SpawnDelayMs) }

// SabotageDuration returns how long erratic mode may last.
func (t TimingConfig) SabotageDuration() time.Duration { return ms(t.SabotageDurationMs) }

// SabotageCooldown returns the minimum time between two sabotage triggers.
func (t TimingConfig) SabotageCooldown() time.Duration { return ms(t.SabotageCooldownMs) }

// PlayerLineClear returns the delay before a plugged row is cleared.
func (t TimingConfig) PlayerLineClear() time.Duration { return ms(t.PlayerLineClearMs) }

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// AgentConfig defines retargeting and movement behavior of the agent.
type AgentConfig struct {
	MaxRetargets      int            `yaml:"max_retargets"`       // -1 means unlimited
	MinRetargetDrop   int            `yaml:"min_retarget_drop"`   // Rows left to fall required to retarget
	BlockedAcceptDrop int            `yaml:"blocked_accept_drop"` // Accept resting state when blocked this close to landing
	FastDrop          FastDropConfig `yaml:"fast_drop"`
	Erratic           ErraticConfig  `yaml:"erratic"`
}

// FastDropConfig gates the instant drop shortcut.
type FastDropConfig struct {
	Enabled      bool `yaml:"enabled"`
	MinMoves     int  `yaml:"min_moves"`      // Agent moves made on this piece
	MinFallSteps int  `yaml:"min_fall_steps"` // Natural gravity steps since spawn
	MinDistance  int  `yaml:"min_distance"`   // Drop distance must exceed this
}

// ErraticConfig defines sabotage erratic mode.
type ErraticConfig struct {
	MinDrop      int     `yaml:"min_drop"`  // Enter erratic mode only above this drop distance
	ExitDrop     int     `yaml:"exit_drop"` // Leave erratic mode below this drop distance
	FlipChance   float64 `yaml:"flip_chance"`
	StepChance   float64 `yaml:"step_chance"`
	RotateChance float64 `yaml:"rotate_chance"`
}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Validate checks the structural invariants the simulation depends on.
func (c WellConfig) Validate() error {
	switch {
	case c.Board.Cols < 4 || c.Board.Rows < 4:
		return fmt.Errorf("%w: board must be at least 4x4, got %dx%d", ErrInvalidConfig, c.Board.Cols, c.Board.Rows)
	case c.Board.BlockSize <= 0:
		return fmt.Errorf("%w: block_size must be positive", ErrInvalidConfig)
	case c.Board.EscapeRows < 1 || c.Board.EscapeRows >= c.Board.Rows:
		return fmt.Errorf("%w: escape_rows out of range", ErrInvalidConfig)
	case c.Physics.PlayerWidth <= 0 || c.Physics.PlayerWidth >= c.Board.BlockSize:
		return fmt.Errorf("%w: player_width must be in (0, block_size)", ErrInvalidConfig)
	case c.Physics.PlayerHeight <= 0 || c.Physics.PlayerHeight >= float64(c.Board.EscapeRows)*c.Board.BlockSize:
		return fmt.Errorf("%w: player_height must fit inside the escape zone", ErrInvalidConfig)
	case c.Physics.FrameRate <= 0:
		return fmt.Errorf("%w: frame_rate must be positive", ErrInvalidConfig)
	case c.Search.MaxIterations <= 0:
		return fmt.Errorf("%w: max_iterations must be positive", ErrInvalidConfig)
	}
	return nil
}
