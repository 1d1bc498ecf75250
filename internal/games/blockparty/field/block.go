package field

import (
	"errors"
	"fmt"
)

// ErrUnsupportedRotation is returned for rotations other than one quarter turn.
var ErrUnsupportedRotation = errors.New("field: only single quarter-turn rotations are supported")

// StepKind identifies the axis of a step.
type StepKind int

const (
	StepHorizontal StepKind = iota
	StepVertical
	StepRotate
)

func (k StepKind) String() string {
	switch k {
	case StepHorizontal:
		return "horizontal"
	case StepVertical:
		return "vertical"
	case StepRotate:
		return "rotate"
	default:
		return "unknown"
	}
}

// Step is an atomic movement request for the active block.
// For rotations Value is +1 for clockwise and -1 for counter-clockwise.
type Step struct {
	Kind  StepKind
	Value int
}

// Horizontal returns a step moving dx columns (negative is left).
func Horizontal(dx int) Step { return Step{Kind: StepHorizontal, Value: dx} }

// Down returns a one-row gravity step.
func Down() Step { return Step{Kind: StepVertical, Value: 1} }

// Rotate returns a rotation step. Positive turns clockwise.
func Rotate(turns int) Step { return Step{Kind: StepRotate, Value: turns} }

// Validate rejects steps the playfield does not support.
func (s Step) Validate() error {
	if s.Kind == StepRotate && s.Value != 1 && s.Value != -1 {
		return fmt.Errorf("%w: %d", ErrUnsupportedRotation, s.Value)
	}
	if s.Kind < StepHorizontal || s.Kind > StepRotate {
		return fmt.Errorf("field: unknown step kind %d", s.Kind)
	}
	return nil
}

// ActiveBlock is the falling piece. It is a value type: PerformStep returns
// a new block and never mutates the receiver, so callers can validate a
// candidate before committing it.
type ActiveBlock struct {
	X        int
	Y        int
	Name     string
	Rotation int // 0..3, clockwise quarter turns from spawn
	grid     *Grid
}

// NewActiveBlock places a copy of shape at (x, y) in rotation state 0.
func NewActiveBlock(name string, shape *Grid, x, y int) ActiveBlock {
	var g *Grid
	if shape != nil {
		g = shape.Clone()
	}
	return ActiveBlock{X: x, Y: y, Name: name, grid: g}
}

// Grid returns the block's shape in its current rotation.
// The returned grid must not be modified.
func (b ActiveBlock) Grid() *Grid {
	return b.grid
}

// Valid reports whether the block holds a shape.
func (b ActiveBlock) Valid() bool {
	return b.grid != nil
}

// PerformStep returns the block moved by s. Rotations rotate the shape and
// advance the rotation state modulo 4.
func (b ActiveBlock) PerformStep(s Step) ActiveBlock {
	next := b
	switch s.Kind {
	case StepHorizontal:
		next.X += s.Value
	case StepVertical:
		next.Y += s.Value
	case StepRotate:
		if b.grid != nil {
			next.grid = b.grid.Clone()
			next.grid.Rotate90(s.Value)
		}
		next.Rotation = ((b.Rotation+s.Value)%4 + 4) % 4
	}
	return next
}

// Offset returns the block translated by (dx, dy).
func (b ActiveBlock) Offset(dx, dy int) ActiveBlock {
	b.X += dx
	b.Y += dy
	return b
}

// Top returns the field row of the topmost occupied cell of the block.
func (b ActiveBlock) Top() int {
	if b.grid == nil {
		return b.Y
	}
	t := b.grid.Clone()
	_, dy := t.Trim()
	return b.Y + dy
}

// Ghost returns a copy of the block whose cells are negated so renderers
// can tell the landing preview apart from real cells.
func (b ActiveBlock) Ghost() ActiveBlock {
	g := b
	if b.grid != nil {
		g.grid = b.grid.Clone()
		g.grid.ApplyMultiplier(-1)
	}
	return g
}
