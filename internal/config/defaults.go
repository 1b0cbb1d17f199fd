package config

import _ "embed"

//go:embed defaults/well.yaml
var defaultWellYAML []byte

// DefaultWellConfig returns the hardcoded well configuration.
func DefaultWellConfig() WellConfig {
	return WellConfig{
		Board: BoardConfig{
			Cols:       10,
			Rows:       20,
			BlockSize:  30,
			EscapeRows: 2,
		},
		Physics: PhysicsConfig{
			FrameRate:        60,
			Gravity:          0.6,
			JumpImpulse:      12,
			MaxFallSpeed:     15,
			MoveSpeed:        4,
			PlayerWidth:      20,
			PlayerHeight:     40,
			GroundProbeRatio: 0.6,
		},
		Search: SearchConfig{
			MaxIterations:     3000,
			CliffHeight:       4,
			NearTopRows:       2,
			HighStackRows:     4,
			EdgeLowHeight:     2,
			FloatingThreshold: 3,
			PanicStartRatio:   0.5,
		},
		Scoring: ScoringConfig{
			PointsPerLine: 100,
		},
		Difficulties: DifficultySet{
			Lenient:    lenientDifficulty(),
			Balanced:   balancedDifficulty(),
			Aggressive: aggressiveDifficulty(),
		},
	}
}

func lenientDifficulty() DifficultyConfig {
	return DifficultyConfig{
		Weights: HeuristicWeights{
			LineClear:       5,
			MultiLineBonus:  2,
			TetrisBonus:     6,
			Hole:            3,
			CoveredHole:     0.5,
			AggregateHeight: -0.2,
			MaxHeight:       -0.1,
			NearTop:         1000,
			HighStack:       150,
			Bumpiness:       0.3,
			FunnelCliff:     2,
			FunnelGrowth:    1.5,
			SplitCliff:      400,
			EdgeBonus:       3,
			Floating:        1,
		},
		Danger: DangerConfig{
			Avoid:         true,
			Margin:        1,
			Penalty:       80,
			Decay:         0.8,
			VerticalRange: 4,
		},
		Timing: TimingConfig{
			FallMs:             900,
			AgentMoveMs:        180,
			SpawnDelayMs:       500,
			SabotageDurationMs: 5000,
			SabotageCooldownMs: 10000,
			PlayerLineClearMs:  800,
		},
		Agent: AgentConfig{
			MaxRetargets:      -1,
			MinRetargetDrop:   3,
			BlockedAcceptDrop: 2,
			FastDrop: FastDropConfig{
				Enabled:      true,
				MinMoves:     3,
				MinFallSteps: 3,
				MinDistance:  12,
			},
			Erratic: ErraticConfig{
				MinDrop:      6,
				ExitDrop:     3,
				FlipChance:   0.1,
				StepChance:   0.4,
				RotateChance: 0.15,
			},
		},
		PlayerCompletesLine: false,
	}
}

func balancedDifficulty() DifficultyConfig {
	return DifficultyConfig{
		Weights: HeuristicWeights{
			LineClear:       8,
			MultiLineBonus:  4,
			TetrisBonus:     10,
			Hole:            6,
			CoveredHole:     1.5,
			AggregateHeight: 0.3,
			MaxHeight:       0.5,
			NearTop:         1000,
			HighStack:       150,
			Bumpiness:       0.8,
			FunnelCliff:     2,
			FunnelGrowth:    1.5,
			SplitCliff:      400,
			EdgeBonus:       3,
			Floating:        2,
		},
		Danger: DangerConfig{
			Avoid:         true,
			Margin:        1,
			Penalty:       40,
			Decay:         0.6,
			VerticalRange: 3,
		},
		Timing: TimingConfig{
			FallMs:             700,
			AgentMoveMs:        140,
			SpawnDelayMs:       400,
			SabotageDurationMs: 4000,
			SabotageCooldownMs: 12000,
			PlayerLineClearMs:  600,
		},
		Agent: AgentConfig{
			MaxRetargets:      6,
			MinRetargetDrop:   3,
			BlockedAcceptDrop: 2,
			FastDrop: FastDropConfig{
				Enabled:      true,
				MinMoves:     2,
				MinFallSteps: 2,
				MinDistance:  6,
			},
			Erratic: ErraticConfig{
				MinDrop:      6,
				ExitDrop:     3,
				FlipChance:   0.08,
				StepChance:   0.35,
				RotateChance: 0.15,
			},
		},
		PlayerCompletesLine: true,
	}
}

func aggressiveDifficulty() DifficultyConfig {
	return DifficultyConfig{
		Weights: HeuristicWeights{
			LineClear:       10,
			MultiLineBonus:  5,
			TetrisBonus:     12,
			Hole:            8,
			CoveredHole:     2,
			AggregateHeight: 0.5,
			MaxHeight:       0.8,
			NearTop:         1000,
			HighStack:       150,
			Bumpiness:       1,
			FunnelCliff:     2,
			FunnelGrowth:    1.5,
			SplitCliff:      400,
			EdgeBonus:       2,
			Floating:        3,
		},
		Danger: DangerConfig{
			Avoid:         true,
			Margin:        0,
			Penalty:       20,
			Decay:         0.4,
			VerticalRange: 2,
		},
		Timing: TimingConfig{
			FallMs:             450,
			AgentMoveMs:        90,
			SpawnDelayMs:       250,
			SabotageDurationMs: 3000,
			SabotageCooldownMs: 15000,
			PlayerLineClearMs:  400,
		},
		Agent: AgentConfig{
			MaxRetargets:      3,
			MinRetargetDrop:   4,
			BlockedAcceptDrop: 2,
			FastDrop: FastDropConfig{
				Enabled:      true,
				MinMoves:     1,
				MinFallSteps: 1,
				MinDistance:  4,
			},
			Erratic: ErraticConfig{
				MinDrop:      6,
				ExitDrop:     3,
				FlipChance:   0.05,
				StepChance:   0.3,
				RotateChance: 0.1,
			},
		},
		PlayerCompletesLine: true,
	}
}
