// Package config provides YAML-based configuration for the block puzzle:
// the piece set, field size, gravity table and relay limits.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/blockparty/internal/core"
	"github.com/vovakirdan/blockparty/internal/games/blockparty/field"
)

// Config is the full game and relay configuration.
type Config struct {
	Field     FieldConfig     `yaml:"field"`
	Pieces    []PieceConfig   `yaml:"pieces"`
	Levels    LevelConfig     `yaml:"levels"`
	Generator GeneratorConfig `yaml:"generator"`
	Sprint    SprintConfig    `yaml:"sprint"`
	Relay     RelayConfig     `yaml:"relay"`
}

// FieldConfig defines the well dimensions and spawn point.
type FieldConfig struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	SpawnX *int `yaml:"spawn_x"` // nil centers the spawn column
	SpawnY int  `yaml:"spawn_y"`
}

// PieceConfig defines one piece template. Non-zero cells are occupied.
type PieceConfig struct {
	Name  string  `yaml:"name"`
	Color string  `yaml:"color"`
	Shape [][]int `yaml:"shape"`
}

// LevelConfig defines gravity and progression.
type LevelConfig struct {
	// Speeds holds frames per row for each level; multiplied by the tick
	// duration it gives seconds per row.
	Speeds []float64 `yaml:"speeds"`
	Start  int       `yaml:"start"`
}

// GeneratorConfig configures the bag randomizer.
type GeneratorConfig struct {
	Preview int `yaml:"preview"`
}

// SprintConfig configures the sprint mode.
type SprintConfig struct {
	Lines int `yaml:"lines"`
}

// RelayConfig bounds the multiplayer relay.
type RelayConfig struct {
	TickRate      int           `yaml:"tick_rate"`
	InputLimit    int           `yaml:"input_limit"`
	QueueSize     int           `yaml:"queue_size"`
	MaxPlayers    int           `yaml:"max_players"`
	MaxMatches    int           `yaml:"max_matches"`
	ExpireAfter   time.Duration `yaml:"expire_after"`
	ReapPeriod    time.Duration `yaml:"reap_period"`
	SessionBuffer int           `yaml:"session_buffer"`
}

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Validate checks structural constraints that the loader cannot express.
func (c Config) Validate() error {
	if c.Field.Width <= 0 || c.Field.Height <= 0 {
		return fmt.Errorf("%w: field must be positive, got %dx%d", ErrInvalidConfig, c.Field.Width, c.Field.Height)
	}
	if len(c.Pieces) == 0 {
		return fmt.Errorf("%w: no pieces defined", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Pieces))
	for _, p := range c.Pieces {
		if p.Name == "" {
			return fmt.Errorf("%w: piece without a name", ErrInvalidConfig)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate piece %q", ErrInvalidConfig, p.Name)
		}
		seen[p.Name] = true
		if _, err := field.GridFromData(p.Shape); err != nil {
			return fmt.Errorf("%w: piece %q: %w", ErrInvalidConfig, p.Name, err)
		}
		if p.Color != "" {
			if _, err := core.ParseColor(p.Color); err != nil {
				return fmt.Errorf("%w: piece %q: %w", ErrInvalidConfig, p.Name, err)
			}
		}
	}
	if len(c.Levels.Speeds) == 0 {
		return fmt.Errorf("%w: empty level speed table", ErrInvalidConfig)
	}
	if c.Generator.Preview < 1 {
		return fmt.Errorf("%w: generator preview must be at least 1", ErrInvalidConfig)
	}
	if c.Relay.InputLimit < 1 || c.Relay.QueueSize < 1 || c.Relay.MaxPlayers < 1 {
		return fmt.Errorf("%w: relay limits must be positive", ErrInvalidConfig)
	}
	return nil
}

// PieceSet converts the piece definitions for the playfield.
func (c Config) PieceSet() []field.Piece {
	pieces := make([]field.Piece, len(c.Pieces))
	for i, p := range c.Pieces {
		pieces[i] = field.Piece{Name: p.Name, Shape: p.Shape}
	}
	return pieces
}

// PieceNames returns piece names in definition order.
func (c Config) PieceNames() []string {
	names := make([]string, len(c.Pieces))
	for i, p := range c.Pieces {
		names[i] = p.Name
	}
	return names
}

// Palette returns the color for each cell value: index 0 is unused and
// index i colors the i-th piece.
func (c Config) Palette() []core.Color {
	palette := make([]core.Color, len(c.Pieces)+1)
	for i, p := range c.Pieces {
		col, err := core.ParseColor(p.Color)
		if err != nil || p.Color == "" {
			col = core.ColorWhite
		}
		palette[i+1] = col
	}
	return palette
}

// PlayField builds the playfield configuration for a new board.
func (c Config) PlayField() field.PlayFieldConfig {
	cfg := field.PlayFieldConfig{
		Width:        c.Field.Width,
		Height:       c.Field.Height,
		Pieces:       c.PieceSet(),
		InitialLevel: c.Levels.Start,
		LevelSpeeds:  c.Levels.Speeds,
	}
	if c.Field.SpawnX != nil {
		cfg.Spawn = &field.Position{X: *c.Field.SpawnX, Y: c.Field.SpawnY}
	}
	return cfg
}
