package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/well-escape/internal/config"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List difficulty presets",
	Long: `Show the key agent weights and timings of each difficulty preset,
as loaded from the built-in defaults or --config.

Example:
  well presets
  well presets --config ./my-well.yaml`,
	Args: cobra.NoArgs,
	RunE: runPresets,
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func runPresets(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWell(flagConfig)
	if err != nil {
		return err
	}

	presets := config.Presets()
	headers := []string{"Setting"}
	diffs := make([]config.DifficultyConfig, 0, len(presets))
	for _, p := range presets {
		headers = append(headers, string(p))
		diffs = append(diffs, cfg.Difficulties.Get(p))
	}

	row := func(name string, value func(d config.DifficultyConfig) string) []string {
		r := []string{name}
		for _, d := range diffs {
			r = append(r, value(d))
		}
		return r
	}
	num := func(v float64) string { return strconv.FormatFloat(v, 'g', 4, 64) }
	msec := func(v int) string { return fmt.Sprintf("%d ms", v) }
	yesNo := func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(r, c int) lipgloss.Style {
			if r == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Rows(
			row("Fall", func(d config.DifficultyConfig) string { return msec(d.Timing.FallMs) }),
			row("Agent move", func(d config.DifficultyConfig) string { return msec(d.Timing.AgentMoveMs) }),
			row("Spawn delay", func(d config.DifficultyConfig) string { return msec(d.Timing.SpawnDelayMs) }),
			row("Sabotage", func(d config.DifficultyConfig) string { return msec(d.Timing.SabotageDurationMs) }),
			row("Sabotage cooldown", func(d config.DifficultyConfig) string { return msec(d.Timing.SabotageCooldownMs) }),
			row("Avoid player", func(d config.DifficultyConfig) string { return yesNo(d.Danger.Avoid) }),
			row("Danger penalty", func(d config.DifficultyConfig) string { return num(d.Danger.Penalty) }),
			row("Danger decay", func(d config.DifficultyConfig) string { return num(d.Danger.Decay) }),
			row("Max retargets", func(d config.DifficultyConfig) string { return strconv.Itoa(d.Agent.MaxRetargets) }),
			row("Fast drop", func(d config.DifficultyConfig) string { return yesNo(d.Agent.FastDrop.Enabled) }),
			row("Player completes line", func(d config.DifficultyConfig) string { return yesNo(d.PlayerCompletesLine) }),
			row("Line clear weight", func(d config.DifficultyConfig) string { return num(d.Weights.LineClear) }),
			row("Hole weight", func(d config.DifficultyConfig) string { return num(d.Weights.Hole) }),
			row("Height weight", func(d config.DifficultyConfig) string { return num(d.Weights.AggregateHeight) }),
			row("Bumpiness weight", func(d config.DifficultyConfig) string { return num(d.Weights.Bumpiness) }),
		)

	fmt.Println("Difficulty Presets")
	fmt.Println()
	fmt.Println(t.String())
	fmt.Printf("\nWell: %dx%d, escape rows %d\n", cfg.Board.Cols, cfg.Board.Rows, cfg.Board.EscapeRows)
	return nil
}
