package sim

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/vovakirdan/well-escape/internal/config"
	"github.com/vovakirdan/well-escape/internal/engine"
)

var lang = language.English

// confidence is the level of the escape-rate interval.
const confidence = 0.95

// CI is a confidence interval.
type CI struct {
	Lo float64
	Hi float64
}

// Summary describes one per-run metric.
type Summary struct {
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// Report aggregates a batch.
type Report struct {
	Preset     config.DifficultyPreset
	Pilot      PilotKind
	GodMode    bool
	TickRate   int
	Results    []Result
	Escapes    int
	GameOvers  int
	Timeouts   int
	Causes     map[engine.Cause]int
	EscapeRate float64
	EscapeCI   CI
	Ticks      Summary
	Lines      Summary
	Pieces     Summary
	Score      Summary
	Elapsed    time.Duration
}

// NewReport summarizes results.
func NewReport(cfg Config, results []Result, elapsed time.Duration) *Report {
	r := &Report{
		Preset:   cfg.Preset,
		Pilot:    cfg.Pilot,
		GodMode:  cfg.GodMode,
		TickRate: cfg.TickRate,
		Results:  results,
		Causes:   make(map[engine.Cause]int),
		Elapsed:  elapsed,
	}

	n := len(results)
	ticks := make([]float64, n)
	lines := make([]float64, n)
	pieces := make([]float64, n)
	score := make([]float64, n)
	for i, res := range results {
		switch res.Outcome {
		case OutcomeEscaped:
			r.Escapes++
		case OutcomeGameOver:
			r.GameOvers++
			r.Causes[res.Cause]++
		default:
			r.Timeouts++
		}
		ticks[i] = float64(res.Stats.Ticks)
		lines[i] = float64(res.Stats.Lines)
		pieces[i] = float64(res.Stats.Pieces)
		score[i] = float64(res.Stats.Score)
	}
	r.Ticks = summarize(ticks)
	r.Lines = summarize(lines)
	r.Pieces = summarize(pieces)
	r.Score = summarize(score)
	r.EscapeRate, r.EscapeCI = proportionCI(r.Escapes, n, confidence)
	return r
}

func summarize(x []float64) Summary {
	if len(x) == 0 {
		return Summary{}
	}
	var s Summary
	if len(x) == 1 {
		s.Mean = x[0]
	} else {
		s.Mean, s.Std = stat.MeanStdDev(x, nil)
	}
	s.Min = floats.Min(x)
	s.Max = floats.Max(x)
	return s
}

// proportionCI returns the Clopper-Pearson interval for k successes in n.
func proportionCI(k, n int, level float64) (float64, CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - level
	p := float64(k) / float64(n)

	var ci CI
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return p, ci
}

// seconds converts ticks to seconds of game time.
func (r *Report) seconds(ticks float64) float64 {
	if r.TickRate <= 0 {
		return 0
	}
	return ticks / float64(r.TickRate)
}

// String renders the report as an aligned console table.
func (r *Report) String() string {
	p := message.NewPrinter(lang)
	keys := []string{
		"Difficulty", "Pilot", "Runs", "Escaped", "Escape rate", "Escape 95% CI",
		"Game over", "Timeouts", "Survival (s)", "Lines / run", "Pieces / run",
		"Best score", "Elapsed",
	}
	msg := map[string]string{
		"Difficulty":    string(r.Preset),
		"Pilot":         string(r.Pilot),
		"Runs":          p.Sprintf("%d", len(r.Results)),
		"Escaped":       p.Sprintf("%d", r.Escapes),
		"Escape rate":   p.Sprintf("%.2f %%", 100*r.EscapeRate),
		"Escape 95% CI": p.Sprintf("[%.2f%%,%.2f%%]", 100*r.EscapeCI.Lo, 100*r.EscapeCI.Hi),
		"Game over":     p.Sprintf("%d", r.GameOvers),
		"Timeouts":      p.Sprintf("%d", r.Timeouts),
		"Survival (s)":  p.Sprintf("%.1f ± %.1f", r.seconds(r.Ticks.Mean), r.seconds(r.Ticks.Std)),
		"Lines / run":   p.Sprintf("%.2f ± %.2f", r.Lines.Mean, r.Lines.Std),
		"Pieces / run":  p.Sprintf("%.2f ± %.2f", r.Pieces.Mean, r.Pieces.Std),
		"Best score":    p.Sprintf("%d", int(r.Score.Max)),
		"Elapsed":       r.Elapsed.Round(time.Millisecond).String(),
	}
	if r.GodMode {
		msg["Difficulty"] += " (god)"
	}

	causes := make([]engine.Cause, 0, len(r.Causes))
	for c := range r.Causes {
		causes = append(causes, c)
	}
	sort.Slice(causes, func(i, j int) bool { return causes[i] < causes[j] })
	for _, c := range causes {
		k := "  " + string(c)
		keys = append(keys, k)
		msg[k] = p.Sprintf("%d", r.Causes[c])
	}

	return fmtTable("Well Escape simulation", keys, msg)
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	maxKeyLen := 0
	maxValLen := 0
	for _, k := range keys {
		maxKeyLen = max(maxKeyLen, runewidth.StringWidth(k))
		maxValLen = max(maxValLen, runewidth.StringWidth(msg[k]))
	}
	maxKeyLen += 2
	maxValLen += 2

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	if titleW+2 > totalInner {
		maxValLen += titleW + 2 - totalInner
		totalInner = titleW + 2
	}

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", totalInner) + "+\n"
	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	fmt.Fprintf(&sb, "|%s%s%s|\n", blank(left), title, blank(right))
	sb.WriteString(divider)
	for _, k := range keys {
		fmt.Fprintf(&sb, "| %s%s | %s%s |\n",
			k, blank(maxKeyLen-2-runewidth.StringWidth(k)),
			msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
