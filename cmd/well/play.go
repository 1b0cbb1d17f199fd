package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/well-escape/internal/core"
	"github.com/vovakirdan/well-escape/internal/platform/tui"
	"github.com/vovakirdan/well-escape/internal/storage"
)

var flagSnapshots bool

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play interactively",
	Long: `Start an interactive run.

Controls:
  A/D, Left/Right  - Walk
  Space/W/Up       - Jump
  X                - Sabotage the agent (cooldown applies)
  P/Esc            - Pause
  R                - Restart (after the run ends)
  Ctrl+S           - Screenshot
  Q/Ctrl+C         - Quit

Difficulty presets:
  lenient     - Slow pieces, avoids you, rarely fast-drops
  balanced    - Default
  aggressive  - Fast pieces, aims to bury you

Examples:
  well play
  well play --difficulty lenient
  well play --difficulty aggressive --speed 2
  well play --god --player-line=false
  well play --log-level debug --log-file well.log`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagSnapshots, "snapshots", false, "Write a debug snapshot to ~/.well/snapshots when a run ends")
}

func runPlay(cmd *cobra.Command, args []string) error {
	// The alternate screen owns the terminal, so logs only go to --log-file.
	logger, closeLog, err := newLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	game, err := newGame(cmd, logger)
	if err != nil {
		return err
	}

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open run history: %v\n", err)
		// Continue without storage - game still works
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	var snapshotDir string
	if flagSnapshots {
		if home, err := os.UserHomeDir(); err == nil {
			snapshotDir = filepath.Join(home, ".well", "snapshots")
		}
	}

	logger.Info("starting", "difficulty", game.Preset(), "speed", game.Speed(), "god", game.GodMode())
	err = tui.Run(tui.Options{
		Game:  game,
		Store: store,
		Config: core.RuntimeConfig{
			ScreenW:  width,
			ScreenH:  height,
			TickRate: flagFPS,
			Seed:     flagSeed,
		},
		Logger:      logger,
		SnapshotDir: snapshotDir,
	})
	if err != nil {
		return fmt.Errorf("running game: %w", err)
	}
	return nil
}
