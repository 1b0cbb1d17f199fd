// well is a terminal platformer where you climb out of a well while an
// agent drops tetrominoes on you.
//
// Usage:
//
//	well play                  - Play interactively
//	well menu                  - Pick a difficulty, then play
//	well sim                   - Run headless simulations
//	well runs                  - Show run history
//	well presets               - List difficulty presets
//	well snapshot schema       - Print the snapshot JSON Schema
//	well snapshot inspect <f>  - Show a saved snapshot
//
// Global flags:
//
//	--fps <rate>          - Set tick rate (default: 60)
//	--seed <value>        - Set RNG seed for reproducible gameplay
//	--db <path>           - Set database path (default: ~/.well/runs.db)
//	--config <path>       - Custom well.yaml
//	--difficulty <name>   - lenient, balanced or aggressive
//	--log-level <level>   - debug, info, warn, error
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/well-escape/internal/config"
	"github.com/vovakirdan/well-escape/internal/engine"
	"github.com/vovakirdan/well-escape/internal/storage"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagSpeed      float64
	flagGod        bool
	flagPlayerLine bool
	flagLogLevel   string
	flagLogFile    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "well",
	Short: "Well Escape - climb out before the blocks bury you",
	Long: `Well Escape is a terminal platformer. You stand at the bottom of a
well while an agent plays tetrominoes above you. Climb the stack and reach
the top rows to escape; get squished or buried and the run is over.

Available commands:
  play      - Play interactively
  menu      - Difficulty picker menu
  sim       - Run headless batch simulations
  runs      - Show run history
  presets   - List difficulty presets
  snapshot  - Debug snapshot tools

Examples:
  well play
  well play --difficulty aggressive --speed 1.5
  well sim --runs 200 --pilot climb
  well runs --table
  well snapshot inspect ~/.well/snapshots/well_20250101_120000.json.zst`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	pf.Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	pf.StringVar(&flagDBPath, "db", storage.DefaultPath, "Path to run history database")
	pf.StringVar(&flagConfig, "config", "", "Path to custom well.yaml")
	pf.StringVar(&flagDifficulty, "difficulty", "balanced", "Difficulty preset: lenient, balanced, aggressive")
	pf.Float64Var(&flagSpeed, "speed", 1, "Piece speed multiplier")
	pf.BoolVar(&flagGod, "god", false, "God mode: teleport instead of dying")
	pf.BoolVar(&flagPlayerLine, "player-line", true, "Player can complete lines (overrides the preset when set)")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&flagLogFile, "log-file", "", "Write logs to this file")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(snapshotCmd)
}

// newLogger builds the CLI logger. Logs go to --log-file when set, else to
// fallback. The returned closer must be called on exit.
func newLogger(fallback io.Writer) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --log-level: %w", err)
	}

	w, closer := fallback, func() {}
	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open log file: %w", err)
		}
		w, closer = f, func() { f.Close() }
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "well",
		Level:           level,
	})
	return logger, closer, nil
}

// loadSetup resolves the configuration and difficulty shared by play and sim.
func loadSetup(cmd *cobra.Command) (config.WellConfig, config.DifficultyPreset, *bool, error) {
	cfg, err := config.LoadWell(flagConfig)
	if err != nil {
		return cfg, "", nil, err
	}
	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return cfg, "", nil, err
	}
	if flagSpeed <= 0 {
		return cfg, "", nil, fmt.Errorf("--speed must be > 0, got %v", flagSpeed)
	}

	var playerLine *bool
	if cmd.Flags().Changed("player-line") {
		v := flagPlayerLine
		playerLine = &v
	}
	return cfg, preset, playerLine, nil
}

// newGame creates an engine from the global flags.
func newGame(cmd *cobra.Command, logger *log.Logger) (*engine.Game, error) {
	cfg, preset, playerLine, err := loadSetup(cmd)
	if err != nil {
		return nil, err
	}
	return engine.New(engine.Options{
		Config:              cfg,
		Preset:              preset,
		Speed:               flagSpeed,
		GodMode:             flagGod,
		PlayerCompletesLine: playerLine,
		Logger:              logger,
	}), nil
}
