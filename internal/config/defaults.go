package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/blockparty.yaml
var defaultYAML []byte

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}

// DefaultConfig returns the hardcoded configuration, used when even the
// embedded YAML cannot be parsed.
func DefaultConfig() Config {
	spawnX := 3
	return Config{
		Field: FieldConfig{
			Width:  10,
			Height: 20,
			SpawnX: &spawnX,
		},
		Pieces: []PieceConfig{
			{Name: "I", Color: "cyan", Shape: [][]int{{0, 0, 0, 0}, {1, 1, 1, 1}, {0, 0, 0, 0}, {0, 0, 0, 0}}},
			{Name: "J", Color: "blue", Shape: [][]int{{1, 0, 0}, {1, 1, 1}, {0, 0, 0}}},
			{Name: "L", Color: "orange", Shape: [][]int{{0, 0, 1}, {1, 1, 1}, {0, 0, 0}}},
			{Name: "O", Color: "yellow", Shape: [][]int{{1, 1}, {1, 1}}},
			{Name: "S", Color: "green", Shape: [][]int{{0, 1, 1}, {1, 1, 0}, {0, 0, 0}}},
			{Name: "T", Color: "magenta", Shape: [][]int{{0, 1, 0}, {1, 1, 1}, {0, 0, 0}}},
			{Name: "Z", Color: "red", Shape: [][]int{{1, 1, 0}, {0, 1, 1}, {0, 0, 0}}},
		},
		Levels: LevelConfig{
			Speeds: []float64{
				48, 43, 38, 33, 28, 23, 18, 13, 8, 6,
				5, 5, 5, 4, 4, 4, 3, 3, 3, 2,
				2, 2, 2, 2, 2, 2, 2, 2, 2, 1,
			},
		},
		Generator: GeneratorConfig{Preview: 4},
		Sprint:    SprintConfig{Lines: 40},
		Relay: RelayConfig{
			TickRate:      60,
			InputLimit:    8,
			QueueSize:     64,
			MaxPlayers:    2,
			MaxMatches:    225,
			ExpireAfter:   6 * time.Minute,
			ReapPeriod:    time.Second,
			SessionBuffer: 16,
		},
	}
}
