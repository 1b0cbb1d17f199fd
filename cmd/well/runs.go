package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/well-escape/internal/config"
	"github.com/vovakirdan/well-escape/internal/platform/tui"
	"github.com/vovakirdan/well-escape/internal/storage"
)

var (
	flagLimit int
	flagTable bool
	flagClear bool
)

var runsCmd = &cobra.Command{
	Use:   "runs [difficulty]",
	Short: "Show run history",
	Long: `Display the best recorded runs and per-difficulty statistics.

Examples:
  well runs
  well runs aggressive --limit 20
  well runs --table
  well runs lenient --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of runs to show")
	runsCmd.Flags().BoolVar(&flagTable, "table", false, "Browse runs in an interactive table")
	runsCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete recorded runs (for the given difficulty, or all)")
}

func runRuns(cmd *cobra.Command, args []string) error {
	difficulty := ""
	if len(args) == 1 {
		preset, err := config.ParsePreset(args[0])
		if err != nil {
			return err
		}
		difficulty = string(preset)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening run history: %w", err)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearRuns(difficulty); err != nil {
			return err
		}
		fmt.Println("Run history cleared.")
		return nil
	}

	if flagTable {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		return tui.RunRuns(store, width, height)
	}

	runs, err := store.TopRuns(difficulty, flagLimit)
	if err != nil {
		return err
	}

	title := "all difficulties"
	if difficulty != "" {
		title = difficulty
	}
	fmt.Printf("Best Runs - %s\n", title)
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'well play' or record a batch with 'well sim --save'.")
		return nil
	}

	fmt.Printf("  %-4s  %-8s  %-10s  %-9s  %-14s  %-5s  %-8s  %s\n",
		"Rank", "Score", "Difficulty", "Outcome", "Cause", "Lines", "Time", "Date")
	fmt.Printf("  %-4s  %-8s  %-10s  %-9s  %-14s  %-5s  %-8s  %s\n",
		"----", "-----", "----------", "-------", "-----", "-----", "----", "----")
	for i, r := range runs {
		cause := r.Cause
		if cause == "" {
			cause = "-"
		}
		fmt.Printf("  %-4d  %-8d  %-10s  %-9s  %-14s  %-5d  %-8s  %s\n",
			i+1, r.Score, r.Difficulty, r.Outcome, cause, r.Lines,
			fmt.Sprintf("%.1fs", float64(r.Ticks)/float64(flagFPS)),
			r.CreatedAt.Format("2006-01-02 15:04"))
	}

	all, err := store.AllStats()
	if err != nil {
		return err
	}
	names := make([]string, 0, len(all))
	for name := range all {
		if difficulty == "" || name == difficulty {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	fmt.Println()
	for _, name := range names {
		s := all[name]
		fmt.Printf("%-10s  runs %-5d  escaped %5.1f%%  best %-6d  avg %.0f\n",
			name, s.Runs, 100*s.EscapeRate(), s.BestScore, s.AvgScore)
	}
	return nil
}
