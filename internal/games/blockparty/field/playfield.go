package field

import (
	"errors"
	"fmt"
	"math/rand"
)

// PlayField errors.
var (
	ErrNoPieces     = errors.New("field: no piece definitions")
	ErrUnknownPiece = errors.New("field: unknown piece")
	ErrLevel        = errors.New("field: level speed table is empty")
)

// Default field size in cells.
const (
	DefaultWidth  = 10
	DefaultHeight = 20
)

// Piece is a named shape template. Occupied template cells are non-zero.
type Piece struct {
	Name  string
	Shape [][]int
}

// Position is a cell coordinate on the field.
type Position struct {
	X int
	Y int
}

// PlayFieldConfig configures a PlayField. Zero Width and Height select the
// default size; a nil Spawn centers pieces on the top row.
type PlayFieldConfig struct {
	Width        int
	Height       int
	Pieces       []Piece
	InitialPiece string
	InitialLevel int
	LevelSpeeds  []float64
	Spawn        *Position
}

// PlayField owns the settled cells, the active block and the level. It is
// not safe for concurrent use; a match confines each field to its tick loop.
type PlayField struct {
	field      *Grid
	active     ActiveBlock
	landed     bool
	templates  map[string]*Grid
	names      []string
	spawn      Position
	level      int
	speeds     []float64
	filledRows []int
}

// NewPlayField validates cfg and spawns the initial piece.
func NewPlayField(cfg PlayFieldConfig) (*PlayField, error) {
	if len(cfg.Pieces) == 0 {
		return nil, ErrNoPieces
	}
	if len(cfg.LevelSpeeds) == 0 {
		return nil, ErrLevel
	}

	width, height := cfg.Width, cfg.Height
	if width == 0 && height == 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	grid, err := NewGrid(height, width, 0)
	if err != nil {
		return nil, fmt.Errorf("playfield: %w", err)
	}

	p := &PlayField{
		field:     grid,
		templates: make(map[string]*Grid, len(cfg.Pieces)),
		names:     make([]string, 0, len(cfg.Pieces)),
		speeds:    append([]float64(nil), cfg.LevelSpeeds...),
		spawn:     Position{X: width / 2, Y: 0},
	}
	if cfg.Spawn != nil {
		p.spawn = *cfg.Spawn
	}

	for _, piece := range cfg.Pieces {
		if _, dup := p.templates[piece.Name]; dup {
			return nil, fmt.Errorf("playfield: duplicate piece %q", piece.Name)
		}
		tmpl, err := GridFromData(piece.Shape)
		if err != nil {
			return nil, fmt.Errorf("playfield: piece %q: %w", piece.Name, err)
		}
		p.templates[piece.Name] = tmpl
		p.names = append(p.names, piece.Name)
	}

	initial := cfg.InitialPiece
	if initial == "" {
		initial = p.names[0]
	}
	if err := p.Spawn(initial, p.colorOf(initial)); err != nil {
		return nil, err
	}
	p.SetLevel(cfg.InitialLevel)
	return p, nil
}

// colorOf returns the 1-based index of name, used as its cell value.
func (p *PlayField) colorOf(name string) int {
	for i, n := range p.names {
		if n == name {
			return i + 1
		}
	}
	return 1
}

// Spawn replaces the active block with piece name at the spawn position,
// scaling template cells by multiplier. An unknown name leaves the current
// block untouched.
func (p *PlayField) Spawn(name string, multiplier int) error {
	tmpl, ok := p.templates[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPiece, name)
	}
	shape := tmpl.Clone()
	shape.ApplyMultiplier(multiplier)
	p.active = NewActiveBlock(name, shape, p.spawn.X, p.spawn.Y)
	p.landed = false
	return nil
}

// SpawnRandom spawns a uniformly chosen piece colored by its index.
func (p *PlayField) SpawnRandom(rng *rand.Rand) error {
	i := rng.Intn(len(p.names))
	return p.Spawn(p.names[i], i+1)
}

// Step applies s to the active block. ok reports whether the step took
// effect; placed reports that a vertical step was blocked and the block was
// merged into the field. After a placement every further step is rejected
// until the next Spawn.
func (p *PlayField) Step(s Step) (placed, ok bool) {
	if p.landed || !p.active.Valid() || s.Validate() != nil {
		return false, false
	}

	candidate := p.active.PerformStep(s)
	if !p.conflicts(candidate) {
		p.active = candidate
		return false, true
	}

	switch s.Kind {
	case StepRotate:
		for _, k := range Kicks(p.active.Name, p.active.Rotation, candidate.Rotation) {
			kicked := candidate.Offset(k.DX, k.DY)
			if !p.conflicts(kicked) {
				p.active = kicked
				return false, true
			}
		}
		return false, false
	case StepVertical:
		p.place()
		return true, true
	default:
		return false, false
	}
}

func (p *PlayField) conflicts(b ActiveBlock) bool {
	return p.field.HasConflict(b.Grid(), b.X, b.Y)
}

func (p *PlayField) place() {
	// The active block only ever holds committed, in-bounds positions.
	_ = p.field.Merge(p.active.Grid(), p.active.X, p.active.Y, true)
	p.landed = true

	top := max(p.active.Top(), 0)
	rows, err := p.field.FilledRows(top, p.field.Height())
	if err != nil {
		p.filledRows = nil
		return
	}
	p.filledRows = rows
}

// Landed reports whether the active block has been merged and is waiting
// for a new spawn.
func (p *PlayField) Landed() bool {
	return p.landed
}

// FilledRows returns the rows completed by the last placement.
func (p *PlayField) FilledRows() []int {
	return append([]int(nil), p.filledRows...)
}

// ClearFilledRows removes the rows completed by the last placement, shifting
// everything above each one down, and returns how many were removed.
func (p *PlayField) ClearFilledRows() int {
	rows := p.filledRows
	p.filledRows = nil
	for _, y := range rows {
		if y > 0 {
			_ = p.field.ShiftRows(0, y-1, 1)
		}
		_ = p.field.FillRow(0, 0)
	}
	return len(rows)
}

// Ghost returns the active block dropped as far as it can go, with negated
// cells.
func (p *PlayField) Ghost() ActiveBlock {
	g := p.active
	if !g.Valid() {
		return g
	}
	for {
		next := g.PerformStep(Down())
		if p.conflicts(next) {
			break
		}
		g = next
	}
	return g.Ghost()
}

// View returns a copy of the field with the ghost and active block drawn in.
func (p *PlayField) View(withGhost bool) *Grid {
	v := p.field.Clone()
	if !p.active.Valid() || p.landed {
		return v
	}
	if withGhost {
		g := p.Ghost()
		_ = v.Merge(g.Grid(), g.X, g.Y, true)
	}
	_ = v.Merge(p.active.Grid(), p.active.X, p.active.Y, true)
	return v
}

// ActiveBlock returns the current block.
func (p *PlayField) ActiveBlock() ActiveBlock {
	return p.active
}

// ActiveConflicts reports whether the active block overlaps settled cells,
// which happens when a piece spawns into a full well.
func (p *PlayField) ActiveConflicts() bool {
	return p.active.Valid() && !p.landed && p.conflicts(p.active)
}

// BlockData returns a copy of the template for name.
func (p *PlayField) BlockData(name string) (*Grid, error) {
	tmpl, ok := p.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPiece, name)
	}
	return tmpl.Clone(), nil
}

// PieceNames returns piece names in definition order.
func (p *PlayField) PieceNames() []string {
	return append([]string(nil), p.names...)
}

// SpawnPosition returns where new pieces appear.
func (p *PlayField) SpawnPosition() Position {
	return p.spawn
}

func (p *PlayField) Width() int  { return p.field.Width() }
func (p *PlayField) Height() int { return p.field.Height() }

// Field returns a copy of the settled cells.
func (p *PlayField) Field() *Grid {
	return p.field.Clone()
}

// SetField replaces the settled cells. The grid must match the field size.
func (p *PlayField) SetField(g *Grid) error {
	if g == nil || g.Width() != p.Width() || g.Height() != p.Height() {
		return fmt.Errorf("%w: field must be %dx%d", ErrInvalidDimension, p.Width(), p.Height())
	}
	p.field = g.Clone()
	return nil
}

// Level returns the current level.
func (p *PlayField) Level() int {
	return p.level
}

// SetLevel sets the level, clamped to the speed table.
func (p *PlayField) SetLevel(level int) {
	p.level = p.clampLevel(level)
}

// MaxLevel returns the highest level in the speed table.
func (p *PlayField) MaxLevel() int {
	return len(p.speeds) - 1
}

func (p *PlayField) clampLevel(level int) int {
	return min(max(level, 0), len(p.speeds)-1)
}

// LevelSpeed returns the gravity interval for level given the tick duration.
func (p *PlayField) LevelSpeed(level int, dt float64) float64 {
	return p.speeds[p.clampLevel(level)] * dt
}

// CurrentLevelSpeed returns the gravity interval at the current level.
func (p *PlayField) CurrentLevelSpeed(dt float64) float64 {
	return p.LevelSpeed(p.level, dt)
}
