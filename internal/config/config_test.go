package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	cfg, err := ParseWell(defaultWellYAML)
	if err != nil {
		t.Fatalf("ParseWell(embedded) error = %v", err)
	}
	want := DefaultWellConfig()
	if cfg != want {
		t.Errorf("embedded config differs from DefaultWellConfig():\n got %+v\nwant %+v", cfg, want)
	}
}

func TestLoadWellCustomPathPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "well.yaml")
	data := []byte("board:\n  cols: 12\ndifficulties:\n  balanced:\n    timing:\n      fall_ms: 300\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWell(path)
	if err != nil {
		t.Fatalf("LoadWell() error = %v", err)
	}
	if cfg.Board.Cols != 12 {
		t.Errorf("Board.Cols = %d, expected 12", cfg.Board.Cols)
	}
	if cfg.Board.Rows != 20 {
		t.Errorf("Board.Rows = %d, expected default 20", cfg.Board.Rows)
	}
	if cfg.Difficulties.Balanced.Timing.FallMs != 300 {
		t.Errorf("Balanced.Timing.FallMs = %d, expected 300", cfg.Difficulties.Balanced.Timing.FallMs)
	}
	if cfg.Difficulties.Balanced.Weights.SplitCliff != 400 {
		t.Errorf("Balanced.Weights.SplitCliff = %v, expected default 400", cfg.Difficulties.Balanced.Weights.SplitCliff)
	}
}

func TestLoadWellMissingCustomPath(t *testing.T) {
	_, err := LoadWell(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("LoadWell() on missing file should fail")
	}
}

func TestParseWellRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"tiny board", "board:\n  cols: 2\n"},
		{"zero block", "board:\n  block_size: 0\n"},
		{"wide player", "physics:\n  player_width: 40\n"},
		{"tall player", "physics:\n  player_height: 90\n"},
		{"no search budget", "search:\n  max_iterations: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWell([]byte(tt.yaml))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("ParseWell() error = %v, expected ErrInvalidConfig", err)
			}
		})
	}
}

func TestParsePreset(t *testing.T) {
	tests := []struct {
		in       string
		expected DifficultyPreset
	}{
		{"", DifficultyBalanced},
		{"balanced", DifficultyBalanced},
		{"Lenient", DifficultyLenient},
		{"easy", DifficultyLenient},
		{" hard ", DifficultyAggressive},
		{"aggressive", DifficultyAggressive},
	}

	for _, tt := range tests {
		got, err := ParsePreset(tt.in)
		if err != nil {
			t.Errorf("ParsePreset(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParsePreset(%q) = %v, expected %v", tt.in, got, tt.expected)
		}
	}

	if _, err := ParsePreset("nightmare"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("ParsePreset(nightmare) error = %v, expected ErrUnknownPreset", err)
	}
}

func TestPresetOrdering(t *testing.T) {
	set := DefaultWellConfig().Difficulties
	lenient := set.Get(DifficultyLenient)
	balanced := set.Get(DifficultyBalanced)
	aggressive := set.Get(DifficultyAggressive)

	if !(lenient.Timing.FallMs > balanced.Timing.FallMs && balanced.Timing.FallMs > aggressive.Timing.FallMs) {
		t.Error("fall interval should shrink from lenient to aggressive")
	}
	if !(lenient.Danger.Penalty > balanced.Danger.Penalty && balanced.Danger.Penalty > aggressive.Danger.Penalty) {
		t.Error("danger penalty should shrink from lenient to aggressive")
	}
	if set.MostLenient() != lenient {
		t.Error("MostLenient() should return the lenient preset")
	}
	if lenient.Agent.MaxRetargets != -1 {
		t.Errorf("lenient MaxRetargets = %d, expected unlimited", lenient.Agent.MaxRetargets)
	}
}

func TestBoardDimensions(t *testing.T) {
	b := DefaultWellConfig().Board
	if b.Width() != 300 {
		t.Errorf("Width() = %v, expected 300", b.Width())
	}
	if b.Height() != 600 {
		t.Errorf("Height() = %v, expected 600", b.Height())
	}
}
