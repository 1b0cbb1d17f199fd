package config

import (
	"errors"
	"fmt"
	"strings"
)

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyLenient    DifficultyPreset = "lenient"
	DifficultyBalanced   DifficultyPreset = "balanced"
	DifficultyAggressive DifficultyPreset = "aggressive"
)

// ErrUnknownPreset is returned when a preset name is not recognized.
var ErrUnknownPreset = errors.New("config: unknown difficulty preset")

// Presets returns every preset from most to least forgiving.
func Presets() []DifficultyPreset {
	return []DifficultyPreset{DifficultyLenient, DifficultyBalanced, DifficultyAggressive}
}

// ParsePreset resolves a preset name. An empty name selects balanced.
func ParsePreset(name string) (DifficultyPreset, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "balanced", "normal":
		return DifficultyBalanced, nil
	case "lenient", "easy":
		return DifficultyLenient, nil
	case "aggressive", "hard":
		return DifficultyAggressive, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
}

// Get returns the difficulty for a preset, falling back to balanced.
func (s DifficultySet) Get(preset DifficultyPreset) DifficultyConfig {
	switch preset {
	case DifficultyLenient:
		return s.Lenient
	case DifficultyAggressive:
		return s.Aggressive
	default:
		return s.Balanced
	}
}

// MostLenient returns the preset used while the agent is sabotaged.
func (s DifficultySet) MostLenient() DifficultyConfig {
	return s.Lenient
}
