// Package sim runs many headless worlds in parallel and summarizes how the
// player fares against the agent. Each world stays single-threaded; only
// whole runs are spread across workers.
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cheggaaa/pb/v3"

	"github.com/vovakirdan/well-escape/internal/config"
	"github.com/vovakirdan/well-escape/internal/core"
	"github.com/vovakirdan/well-escape/internal/engine"
	"github.com/vovakirdan/well-escape/internal/storage"
)

// ErrInvalidConfig is returned for unusable batch settings.
var ErrInvalidConfig = errors.New("sim: invalid config")

// Outcome is how a headless run ended.
type Outcome string

const (
	OutcomeEscaped  Outcome = "escaped"
	OutcomeGameOver Outcome = "game_over"
	OutcomeTimeout  Outcome = "timeout"
)

// Config describes a batch.
type Config struct {
	Well       config.WellConfig
	Preset     config.DifficultyPreset
	Speed      float64
	GodMode    bool
	PlayerLine *bool
	Pilot      PilotKind
	Runs       int
	Workers    int
	MaxTicks   int // Per run; a run still going is a timeout
	TickRate   int
	Seed       int64
	Progress   bool
	Logger     *log.Logger
}

func (c *Config) normalize() error {
	if c.Runs < 1 {
		return fmt.Errorf("%w: runs must be > 0", ErrInvalidConfig)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Workers > c.Runs {
		c.Workers = c.Runs
	}
	if c.MaxTicks < 1 {
		return fmt.Errorf("%w: max ticks must be > 0", ErrInvalidConfig)
	}
	if c.TickRate < 1 {
		c.TickRate = core.DefaultConfig().TickRate
	}
	if c.Pilot == "" {
		c.Pilot = PilotRandom
	}
	if NewPilot(c.Pilot) == nil {
		return fmt.Errorf("%w: unknown pilot %q", ErrInvalidConfig, c.Pilot)
	}
	if c.Preset == "" {
		c.Preset = config.DifficultyBalanced
	}
	if c.Well.Board.Cols == 0 {
		c.Well = config.DefaultWellConfig()
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
	return nil
}

// Result is one finished run.
type Result struct {
	Index   int
	Seed    int64
	Outcome Outcome
	Cause   engine.Cause
	Stats   engine.Stats
}

// Run executes the batch. Results are ordered by run index and do not
// depend on the number of workers.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	seeds := newSeedMaker(cfg.Seed)
	jobs := make(chan int, cfg.Runs)
	runSeeds := make([]int64, cfg.Runs)
	for i := range runSeeds {
		runSeeds[i] = seeds.next()
		jobs <- i
	}
	close(jobs)

	results := make([]Result, cfg.Runs)
	bar := pb.StartNew(cfg.Runs)
	if !cfg.Progress {
		bar.SetWriter(io.Discard)
	}

	cfg.Logger.Debug("sim start", "runs", cfg.Runs, "workers", cfg.Workers, "difficulty", cfg.Preset, "pilot", cfg.Pilot)
	wg := new(sync.WaitGroup)
	wg.Add(cfg.Workers)
	for w := 0; w < cfg.Workers; w++ {
		go func() {
			defer wg.Done()
			game := engine.New(engine.Options{
				Config:              cfg.Well,
				Preset:              cfg.Preset,
				Speed:               cfg.Speed,
				GodMode:             cfg.GodMode,
				PlayerCompletesLine: cfg.PlayerLine,
			})
			pilot := NewPilot(cfg.Pilot)
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				results[i] = play(ctx, game, pilot, cfg, i, runSeeds[i])
				bar.Increment()
			}
		}()
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sim: interrupted: %w", err)
	}
	rep := NewReport(cfg, results, used)
	cfg.Logger.Debug("sim done", "escapes", rep.Escapes, "elapsed", used)
	return rep, nil
}

// ctxCheckEvery is how many ticks pass between cancellation checks.
const ctxCheckEvery = 600

func play(ctx context.Context, g *engine.Game, pilot Pilot, cfg Config, index int, seed int64) Result {
	g.Reset(core.RuntimeConfig{TickRate: cfg.TickRate, Seed: seed})
	pilot.Reset(seed)

	res := Result{Index: index, Seed: seed, Outcome: OutcomeTimeout}
	for t := 0; t < cfg.MaxTicks; t++ {
		if t%ctxCheckEvery == 0 && ctx.Err() != nil {
			break
		}
		st := g.Step(pilot.Input(g)).State
		if st.Won {
			res.Outcome = OutcomeEscaped
			break
		}
		if st.GameOver {
			res.Outcome = OutcomeGameOver
			res.Cause = g.Cause()
			break
		}
	}
	res.Stats = g.Stats()
	return res
}

// StorageRuns converts results into run history records.
func (r *Report) StorageRuns() []storage.Run {
	out := make([]storage.Run, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Outcome == OutcomeTimeout {
			continue
		}
		out = append(out, storage.Run{
			Difficulty: string(r.Preset),
			Source:     storage.SourceSim,
			Outcome:    string(res.Outcome),
			Cause:      string(res.Cause),
			Score:      res.Stats.Score,
			Lines:      res.Stats.Lines,
			Pieces:     res.Stats.Pieces,
			Retargets:  res.Stats.Retargets,
			Sabotages:  res.Stats.Sabotages,
			Ticks:      int64(res.Stats.Ticks),
			Seed:       res.Seed,
			GodMode:    r.GodMode,
		})
	}
	return out
}

const mask63 = uint64(1<<63) - 1

// seedMaker derives per-run seeds from one batch seed.
type seedMaker struct {
	state uint64
}

func newSeedMaker(seed int64) *seedMaker {
	return &seedMaker{state: uint64(seed) & mask63}
}

func (s *seedMaker) next() int64 {
	s.state = (s.state*6364136223846793005 + 1442695040888963407) & mask63
	return int64(mix63(s.state))
}

func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
