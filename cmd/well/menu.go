package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/well-escape/internal/config"
	"github.com/vovakirdan/well-escape/internal/core"
	"github.com/vovakirdan/well-escape/internal/platform/tui"
	"github.com/vovakirdan/well-escape/internal/storage"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick a difficulty from a menu, then play",
	Long: `Start with a difficulty picker menu.

After a run ends and you quit it, you return to the menu to play again.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Play the selected difficulty
  Tab          - Browse run history
  Q            - Quit

Examples:
  well menu
  well menu --fps 30 --speed 1.5`,
	Args: cobra.NoArgs,
	RunE: runMenu,
}

func runMenu(cmd *cobra.Command, _ []string) error {
	logger, closeLog, err := newLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open run history: %v\n", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	cfg := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}

	current, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return err
	}
	for {
		res, err := tui.RunMenu(store, cfg, current)
		if err != nil {
			return err
		}
		cfg = res.Config

		if res.Quit {
			return nil
		}
		if res.WantsRuns {
			if store == nil {
				continue
			}
			if err := tui.RunRuns(store, cfg.ScreenW, cfg.ScreenH); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			continue
		}

		current = res.Preset
		flagDifficulty = string(current)
		game, err := newGame(cmd, logger)
		if err != nil {
			return err
		}
		if flagSeed == 0 {
			cfg.Seed = time.Now().UnixNano()
		}
		if err := tui.Run(tui.Options{Game: game, Store: store, Config: cfg, Logger: logger}); err != nil {
			fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		}
	}
}
