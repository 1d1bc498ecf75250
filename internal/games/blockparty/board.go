package blockparty

import (
	"fmt"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/blockparty/internal/config"
	"github.com/vovakirdan/blockparty/internal/core"
	"github.com/vovakirdan/blockparty/internal/games/blockparty/field"
)

// BoardConfig configures a Board.
type BoardConfig struct {
	Field   field.PlayFieldConfig
	Preview int
	Seed    int64
	Logger  *log.Logger // optional
}

// BoardConfigFrom builds a board configuration from the loaded game config.
func BoardConfigFrom(cfg config.Config, seed int64) BoardConfig {
	return BoardConfig{
		Field:   cfg.PlayField(),
		Preview: cfg.Generator.Preview,
		Seed:    seed,
	}
}

// UpdateResult summarizes what happened during one input or tick.
type UpdateResult struct {
	Placed       bool
	LinesCleared int
	Points       int
}

func (r UpdateResult) merge(o UpdateResult) UpdateResult {
	return UpdateResult{
		Placed:       r.Placed || o.Placed,
		LinesCleared: r.LinesCleared + o.LinesCleared,
		Points:       r.Points + o.Points,
	}
}

// Board is one player's game: a playfield fed by a bag generator, with
// gravity, hold, scoring and level progression on top.
type Board struct {
	field     *field.PlayField
	gen       *field.Generator
	logger    *log.Logger
	colorOf   map[string]int
	startLvl  int
	score     int
	lines     int
	held      string
	holdReady bool
	fallTime  float64
	paused    bool
	lost      bool
}

// NewBoard creates a board and spawns the first generated piece.
func NewBoard(cfg BoardConfig) (*Board, error) {
	names := make([]string, len(cfg.Field.Pieces))
	colorOf := make(map[string]int, len(names))
	for i, p := range cfg.Field.Pieces {
		names[i] = p.Name
		colorOf[p.Name] = i + 1
	}

	preview := cfg.Preview
	if preview == 0 {
		preview = 4
	}
	gen, err := field.NewGenerator(names, preview, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}

	fieldCfg := cfg.Field
	fieldCfg.InitialPiece, _ = gen.PopFront()
	pf, err := field.NewPlayField(fieldCfg)
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}

	return &Board{
		field:     pf,
		gen:       gen,
		logger:    cfg.Logger,
		colorOf:   colorOf,
		startLvl:  pf.Level(),
		holdReady: true,
	}, nil
}

// Update advances gravity by dt seconds. The piece falls one row whenever
// the accumulated time exceeds the current level's interval.
func (b *Board) Update(dt float64) UpdateResult {
	if b.lost || b.paused {
		return UpdateResult{}
	}
	if b.fallTime <= b.field.CurrentLevelSpeed(dt) {
		b.fallTime += dt
		return UpdateResult{}
	}
	b.fallTime = 0
	return b.step(field.Down())
}

// PerformInput applies one player action.
func (b *Board) PerformInput(a core.Action) UpdateResult {
	if b.lost {
		return UpdateResult{}
	}
	if b.paused && a != core.ActionPause {
		return UpdateResult{}
	}

	switch a {
	case core.ActionLeft:
		return b.step(field.Horizontal(-1))
	case core.ActionRight:
		return b.step(field.Horizontal(1))
	case core.ActionSoftDrop:
		b.fallTime = 0
		return b.step(field.Down())
	case core.ActionHardDrop:
		return b.hardDrop()
	case core.ActionRotateCCW:
		return b.step(field.Rotate(-1))
	case core.ActionRotateCW:
		return b.step(field.Rotate(1))
	case core.ActionHold:
		b.hold()
	case core.ActionPause:
		b.paused = !b.paused
	case core.ActionNone, core.ActionRestart, core.ActionQuit:
		// handled by the platform
	}
	return UpdateResult{}
}

func (b *Board) step(s field.Step) UpdateResult {
	placed, _ := b.field.Step(s)
	if !placed {
		return UpdateResult{}
	}
	return b.settle()
}

func (b *Board) hardDrop() UpdateResult {
	for range b.field.Height() + 1 {
		placed, ok := b.field.Step(field.Down())
		if placed {
			b.fallTime = 0
			return b.settle()
		}
		if !ok {
			break
		}
	}
	return UpdateResult{}
}

// settle scores a placement, clears rows and brings in the next piece.
func (b *Board) settle() UpdateResult {
	landed := b.field.ActiveBlock()
	spawn := b.field.SpawnPosition()

	level := b.field.Level()
	cleared := b.field.ClearFilledRows()
	points := field.Points(level, cleared)
	b.score += points
	b.lines += cleared
	b.field.SetLevel(field.LevelForLines(b.startLvl, b.lines))

	res := UpdateResult{Placed: true, LinesCleared: cleared, Points: points}

	if landed.X == spawn.X && landed.Y == spawn.Y {
		b.lost = true
		return res
	}

	b.spawnNext()
	b.holdReady = true
	if b.field.ActiveConflicts() {
		b.lost = true
	}
	return res
}

func (b *Board) spawnNext() {
	name, _ := b.gen.PopFront()
	b.spawn(name)
}

func (b *Board) spawn(name string) {
	if err := b.field.Spawn(name, b.colorOf[name]); err != nil {
		if b.logger != nil {
			b.logger.Warn("spawn failed, keeping current block", "piece", name, "err", err)
		}
	}
}

// hold swaps the active piece with the held one, once per placement.
func (b *Board) hold() {
	if !b.holdReady {
		return
	}
	current := b.field.ActiveBlock().Name
	if b.held == "" {
		b.held = current
		b.spawnNext()
	} else {
		next := b.held
		b.held = current
		b.spawn(next)
	}
	b.holdReady = false
	b.fallTime = 0
	if b.field.ActiveConflicts() {
		b.lost = true
	}
}

// HasLost reports whether the board is topped out.
func (b *Board) HasLost() bool { return b.lost }

// Paused reports whether gravity and movement are suspended.
func (b *Board) Paused() bool { return b.paused }

func (b *Board) Score() int              { return b.score }
func (b *Board) Lines() int              { return b.lines }
func (b *Board) Level() int              { return b.field.Level() }
func (b *Board) Held() string            { return b.held }
func (b *Board) HoldReady() bool         { return b.holdReady }
func (b *Board) Next() []string          { return b.gen.Preview() }
func (b *Board) Active() string          { return b.field.ActiveBlock().Name }
func (b *Board) Field() *field.PlayField { return b.field }

// Snapshot captures the board for rendering or the wire.
func (b *Board) Snapshot() Snapshot {
	return Snapshot{
		Grid:     b.field.View(true).Data(),
		Score:    b.score,
		Lines:    b.lines,
		Level:    b.field.Level(),
		Held:     b.held,
		Next:     b.gen.Preview(),
		GameOver: b.lost,
		Paused:   b.paused,
	}
}
