package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/well-escape/internal/sim"
	"github.com/vovakirdan/well-escape/internal/storage"
)

var (
	flagRuns     int
	flagWorkers  int
	flagMaxTicks int
	flagPilot    string
	flagProgress bool
	flagSave     bool
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run headless simulations",
	Long: `Run many independent headless worlds with a scripted pilot and print
escape rate, survival time and death causes.

Pilots:
  idle    - Never moves
  random  - Random walking, jumping and sabotage
  climb   - Climbs the nearest taller column, sabotages incoming pieces

Examples:
  well sim --runs 500
  well sim --runs 100 --pilot climb --difficulty aggressive
  well sim --runs 50 --god --max-ticks 36000 --save`,
	Args: cobra.NoArgs,
	RunE: runSim,
}

func init() {
	f := simCmd.Flags()
	f.IntVar(&flagRuns, "runs", 100, "Number of runs")
	f.IntVar(&flagWorkers, "workers", runtime.NumCPU(), "Parallel workers")
	f.IntVar(&flagMaxTicks, "max-ticks", 60*300, "Tick limit per run")
	f.StringVar(&flagPilot, "pilot", string(sim.PilotClimb), "Pilot: idle, random, climb")
	f.BoolVar(&flagProgress, "progress", true, "Show a progress bar")
	f.BoolVar(&flagSave, "save", false, "Record finished runs in the run history")
}

func runSim(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, preset, playerLine, err := loadSetup(cmd)
	if err != nil {
		return err
	}
	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := sim.Run(ctx, sim.Config{
		Well:       cfg,
		Preset:     preset,
		Speed:      flagSpeed,
		GodMode:    flagGod,
		PlayerLine: playerLine,
		Pilot:      sim.PilotKind(flagPilot),
		Runs:       flagRuns,
		Workers:    flagWorkers,
		MaxTicks:   flagMaxTicks,
		TickRate:   flagFPS,
		Seed:       seed,
		Progress:   flagProgress,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	fmt.Println(rep.String())
	logger.Debug("sim seed", "seed", seed)

	if !flagSave {
		return nil
	}
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs := rep.StorageRuns()
	if err := store.SaveRuns(runs); err != nil {
		return err
	}
	logger.Info("saved runs", "count", len(runs), "db", flagDBPath)
	return nil
}
