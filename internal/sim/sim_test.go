package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/well-escape/internal/config"
	"github.com/vovakirdan/well-escape/internal/engine"
	"github.com/vovakirdan/well-escape/internal/storage"
)

func TestConfigValidation(t *testing.T) {
	cases := map[string]Config{
		"no runs":       {Runs: 0, MaxTicks: 10},
		"no ticks":      {Runs: 1, MaxTicks: 0},
		"unknown pilot": {Runs: 1, MaxTicks: 10, Pilot: "wizard"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Run(context.Background(), cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestRunIsIndependentOfWorkers(t *testing.T) {
	base := Config{Runs: 6, MaxTicks: 900, Seed: 12345, Pilot: PilotRandom}

	one := base
	one.Workers = 1
	many := base
	many.Workers = 4

	a, err := Run(context.Background(), one)
	require.NoError(t, err)
	b, err := Run(context.Background(), many)
	require.NoError(t, err)

	require.Len(t, a.Results, 6)
	assert.Equal(t, a.Results, b.Results)
	for i, res := range a.Results {
		assert.Equal(t, i, res.Index)
	}
}

func TestRunOutcomesAddUp(t *testing.T) {
	for _, kind := range PilotKinds() {
		t.Run(string(kind), func(t *testing.T) {
			rep, err := Run(context.Background(), Config{
				Runs:     3,
				Workers:  2,
				MaxTicks: 1200,
				Seed:     7,
				Pilot:    kind,
				Preset:   config.DifficultyAggressive,
			})
			require.NoError(t, err)
			assert.Equal(t, 3, rep.Escapes+rep.GameOvers+rep.Timeouts)
			causes := 0
			for _, n := range rep.Causes {
				causes += n
			}
			assert.Equal(t, rep.GameOvers, causes)
			assert.LessOrEqual(t, rep.Ticks.Max, 1200.0)
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, Config{Runs: 2, MaxTicks: 100})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSeedMakerDeterministic(t *testing.T) {
	a, b := newSeedMaker(99), newSeedMaker(99)
	seen := map[int64]bool{}
	for i := 0; i < 100; i++ {
		x := a.next()
		assert.Equal(t, x, b.next())
		assert.GreaterOrEqual(t, x, int64(0))
		assert.False(t, seen[x])
		seen[x] = true
	}
}

func TestProportionCI(t *testing.T) {
	p, ci := proportionCI(0, 10, 0.95)
	assert.Zero(t, p)
	assert.Zero(t, ci.Lo)
	assert.Greater(t, ci.Hi, 0.0)

	p, ci = proportionCI(10, 10, 0.95)
	assert.Equal(t, 1.0, p)
	assert.Equal(t, 1.0, ci.Hi)
	assert.Less(t, ci.Lo, 1.0)

	p, ci = proportionCI(5, 10, 0.95)
	assert.Equal(t, 0.5, p)
	assert.Less(t, ci.Lo, p)
	assert.Greater(t, ci.Hi, p)
	assert.InDelta(t, 1-ci.Hi, ci.Lo, 1e-6)

	_, ci = proportionCI(0, 0, 0.95)
	assert.Equal(t, CI{0, 1}, ci)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, summarize(nil))
	assert.Equal(t, Summary{Mean: 4, Min: 4, Max: 4}, summarize([]float64{4}))

	s := summarize([]float64{1, 2, 3})
	assert.InDelta(t, 2.0, s.Mean, 1e-12)
	assert.InDelta(t, 1.0, s.Std, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 3.0, s.Max)
}

func TestReportTableAndRuns(t *testing.T) {
	results := []Result{
		{Index: 0, Seed: 1, Outcome: OutcomeEscaped, Stats: engine.Stats{Score: 300, Lines: 3, Ticks: 1200}},
		{Index: 1, Seed: 2, Outcome: OutcomeGameOver, Cause: engine.CauseSquished, Stats: engine.Stats{Ticks: 600}},
		{Index: 2, Seed: 3, Outcome: OutcomeTimeout, Stats: engine.Stats{Ticks: 3000}},
	}
	cfg := Config{Preset: config.DifficultyLenient, Pilot: PilotClimb, TickRate: 60, GodMode: true}
	rep := NewReport(cfg, results, 1500*time.Millisecond)

	assert.Equal(t, 1, rep.Escapes)
	assert.Equal(t, 1, rep.GameOvers)
	assert.Equal(t, 1, rep.Timeouts)
	assert.Equal(t, map[engine.Cause]int{engine.CauseSquished: 1}, rep.Causes)

	out := rep.String()
	assert.Contains(t, out, "Well Escape simulation")
	assert.Contains(t, out, "lenient (god)")
	assert.Contains(t, out, "33.33 %")
	assert.Contains(t, out, "squished")
	assert.Contains(t, out, "1.5s")

	runs := rep.StorageRuns()
	require.Len(t, runs, 2)
	assert.Equal(t, storage.Run{
		Difficulty: "lenient",
		Source:     storage.SourceSim,
		Outcome:    storage.OutcomeEscaped,
		Score:      300,
		Lines:      3,
		Ticks:      1200,
		Seed:       1,
		GodMode:    true,
	}, runs[0])
	assert.Equal(t, "squished", runs[1].Cause)
}

func TestTableColumnsAlign(t *testing.T) {
	out := fmtTable("T", []string{"a", "long key"}, map[string]string{"a": "1", "long key": "ünï"})
	var widths []int
	for _, line := range splitLines(out) {
		widths = append(widths, len([]rune(line)))
	}
	for _, w := range widths {
		assert.Equal(t, widths[0], w)
	}
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return out
}
