package config

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed" // keep the configured start level
)

// StartLevelForPreset returns the starting level for a difficulty preset.
func StartLevelForPreset(preset DifficultyPreset) int {
	switch preset {
	case DifficultyNormal:
		return 5
	case DifficultyHard:
		return 10
	default:
		return 0
	}
}

// ApplyPreset sets the starting level from a difficulty preset. The fixed
// preset leaves the configuration untouched.
func ApplyPreset(cfg *Config, preset DifficultyPreset) {
	if preset == DifficultyFixed || preset == "" {
		return
	}
	start := StartLevelForPreset(preset)
	if top := len(cfg.Levels.Speeds) - 1; start > top {
		start = top
	}
	cfg.Levels.Start = start
}
