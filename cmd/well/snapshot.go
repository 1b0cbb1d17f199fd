package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/well-escape/internal/config"
	"github.com/vovakirdan/well-escape/internal/core"
	"github.com/vovakirdan/well-escape/internal/engine"
)

var (
	flagSchemaOut string
	flagStepTicks int
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Debug snapshot tools",
	Long: `Inspect saved debug snapshots and print their JSON Schema.

Snapshots are written by 'well play --snapshots' when a run ends.
Files ending in .zst are zstd-compressed.`,
}

var snapshotSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the snapshot JSON Schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(engine.SnapshotSchema(), "", "  ")
		if err != nil {
			return fmt.Errorf("marshal schema: %w", err)
		}
		data = append(data, '\n')
		if flagSchemaOut == "" {
			_, err = os.Stdout.Write(data)
			return err
		}
		return os.WriteFile(flagSchemaOut, data, 0o644)
	},
}

var snapshotInspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Render a saved snapshot",
	Long: `Restore a snapshot into a fresh game and render it.

Examples:
  well snapshot inspect well_20250101_120000.json.zst
  well snapshot inspect state.json --step 120`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshotInspect,
}

func init() {
	snapshotSchemaCmd.Flags().StringVarP(&flagSchemaOut, "output", "o", "", "Write the schema to a file")
	snapshotInspectCmd.Flags().IntVar(&flagStepTicks, "step", 0, "Advance this many idle ticks before rendering")
	snapshotCmd.AddCommand(snapshotSchemaCmd)
	snapshotCmd.AddCommand(snapshotInspectCmd)
}

func runSnapshotInspect(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	snap, err := engine.ReadSnapshotFile(args[0])
	if err != nil {
		return err
	}
	cfg, err := config.LoadWell(flagConfig)
	if err != nil {
		return err
	}

	rc := core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: snap.TickRate, Seed: snap.Seed}
	game := engine.New(engine.Options{Config: cfg, Logger: logger})
	game.Reset(rc)
	if err := game.Restore(snap); err != nil {
		return err
	}
	for i := 0; i < flagStepTicks; i++ {
		game.Step(core.NewInputFrame())
	}

	screen := core.NewScreen(rc.ScreenW, rc.ScreenH)
	game.Render(screen)
	for y := 0; y < screen.Height(); y++ {
		fmt.Println(strings.TrimRight(screen.Row(y), " "))
	}

	st := game.State()
	stats := game.Stats()
	fmt.Printf("\nFile:       %s\n", args[0])
	fmt.Printf("Difficulty: %s (speed %.2g, god %v)\n", game.Preset(), game.Speed(), game.GodMode())
	fmt.Printf("Tick:       %d (%.1fs)\n", game.Tick(), float64(game.Tick())/float64(snap.TickRate))
	state := "playing"
	switch {
	case st.Won:
		state = "escaped"
	case st.GameOver:
		state = "game over: " + string(game.Cause())
	case st.Paused:
		state = "paused"
	}
	fmt.Printf("State:      %s\n", state)
	fmt.Printf("Stats:      score %d, lines %d, pieces %d, retargets %d\n",
		stats.Score, stats.Lines, stats.Pieces, stats.Retargets)
	return nil
}
