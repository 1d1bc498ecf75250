// Package field implements the block puzzle playfield simulation: the cell
// grid, the falling piece, the bag randomizer and the step state machine.
// It is UI-agnostic and deterministic for a given random source.
package field

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by grid operations.
var (
	ErrInvalidDimension = errors.New("field: invalid grid dimension")
	ErrOutOfBounds      = errors.New("field: position out of bounds")
	ErrRowLength        = errors.New("field: row length does not match grid width")
	ErrRange            = errors.New("field: invalid row range")
	ErrCannotFit        = errors.New("field: sub-grid cannot fit")
)

// Grid is a rectangular matrix of cell values stored row-major as rows[y][x].
// Zero is an empty cell. Non-zero cells are occupied: the magnitude is a
// color index and a negative sign marks a ghost cell.
type Grid struct {
	rows [][]int
}

// NewGrid creates a height x width grid with every cell set to fill.
func NewGrid(height, width, fill int) (*Grid, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, width, height)
	}
	rows := make([][]int, height)
	for y := range rows {
		row := make([]int, width)
		if fill != 0 {
			for x := range row {
				row[x] = fill
			}
		}
		rows[y] = row
	}
	return &Grid{rows: rows}, nil
}

// MustGrid is like NewGrid but panics on invalid dimensions.
// Intended for package-level tables and tests.
func MustGrid(height, width, fill int) *Grid {
	g, err := NewGrid(height, width, fill)
	if err != nil {
		panic(err)
	}
	return g
}

// GridFromData creates a grid holding a deep copy of data.
// Data must be non-empty and rectangular.
func GridFromData(data [][]int) (*Grid, error) {
	if len(data) == 0 || len(data[0]) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrInvalidDimension)
	}
	width := len(data[0])
	rows := make([][]int, len(data))
	for y, src := range data {
		if len(src) != width {
			return nil, fmt.Errorf("%w: row %d has length %d, want %d", ErrInvalidDimension, y, len(src), width)
		}
		rows[y] = append([]int(nil), src...)
	}
	return &Grid{rows: rows}, nil
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	rows := make([][]int, len(g.rows))
	for y, row := range g.rows {
		rows[y] = append([]int(nil), row...)
	}
	return &Grid{rows: rows}
}

// Data returns a deep copy of the cells, suitable for serialization.
func (g *Grid) Data() [][]int {
	return g.Clone().rows
}

// Equal reports whether both grids have the same dimensions and cells.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.Height() != other.Height() || g.Width() != other.Width() {
		return false
	}
	for y, row := range g.rows {
		for x, v := range row {
			if other.rows[y][x] != v {
				return false
			}
		}
	}
	return true
}

// Width returns the number of columns. A trimmed-empty grid has width 0.
func (g *Grid) Width() int {
	if len(g.rows) == 0 {
		return 0
	}
	return len(g.rows[0])
}

// Height returns the number of rows.
func (g *Grid) Height() int {
	return len(g.rows)
}

// IsEmpty reports whether the grid has no cells at all.
func (g *Grid) IsEmpty() bool {
	return g.Height() == 0 || g.Width() == 0
}

// PointWithin reports whether (x, y) addresses a cell of the grid.
func (g *Grid) PointWithin(x, y int) bool {
	return x >= 0 && x < g.Width() && y >= 0 && y < g.Height()
}

// Get returns the value at (x, y).
func (g *Grid) Get(x, y int) (int, error) {
	if !g.PointWithin(x, y) {
		return 0, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}
	return g.rows[y][x], nil
}

// Set stores v at (x, y).
func (g *Grid) Set(x, y, v int) error {
	if !g.PointWithin(x, y) {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}
	g.rows[y][x] = v
	return nil
}

// Row returns a copy of row y.
func (g *Grid) Row(y int) ([]int, error) {
	if y < 0 || y >= g.Height() {
		return nil, fmt.Errorf("%w: row %d", ErrOutOfBounds, y)
	}
	return append([]int(nil), g.rows[y]...), nil
}

// SetRow replaces row y with a copy of data.
func (g *Grid) SetRow(y int, data []int) error {
	if len(data) != g.Width() {
		return fmt.Errorf("%w: got %d, want %d", ErrRowLength, len(data), g.Width())
	}
	if y < 0 || y >= g.Height() {
		return fmt.Errorf("%w: row %d", ErrOutOfBounds, y)
	}
	copy(g.rows[y], data)
	return nil
}

// FillRow sets every cell of row y to v.
func (g *Grid) FillRow(y, v int) error {
	if y < 0 || y >= g.Height() {
		return fmt.Errorf("%w: row %d", ErrOutOfBounds, y)
	}
	for x := range g.rows[y] {
		g.rows[y][x] = v
	}
	return nil
}

// RowIsZero reports whether every cell of row y is empty.
// Rows outside the grid are reported as zero.
func (g *Grid) RowIsZero(y int) bool {
	if y < 0 || y >= g.Height() {
		return true
	}
	for _, v := range g.rows[y] {
		if v != 0 {
			return false
		}
	}
	return true
}

// RowIsFilled reports whether every cell of row y is occupied.
func (g *Grid) RowIsFilled(y int) bool {
	if y < 0 || y >= g.Height() {
		return false
	}
	for _, v := range g.rows[y] {
		if v == 0 {
			return false
		}
	}
	return true
}

// ColIsZero reports whether every cell of column x is empty.
func (g *Grid) ColIsZero(x int) bool {
	if x < 0 || x >= g.Width() {
		return true
	}
	for _, row := range g.rows {
		if row[x] != 0 {
			return false
		}
	}
	return true
}

// Trim strips all-zero border rows and columns in place and returns the
// offset of the new origin relative to the old one. A grid with no occupied
// cells becomes 0x0 and the offset is (0,0).
func (g *Grid) Trim() (xOffset, yOffset int) {
	top, bottom := 0, g.Height()-1
	for top <= bottom && g.RowIsZero(top) {
		top++
	}
	if top > bottom {
		g.rows = nil
		return 0, 0
	}
	for g.RowIsZero(bottom) {
		bottom--
	}

	left, right := 0, g.Width()-1
	for g.ColIsZero(left) {
		left++
	}
	for g.ColIsZero(right) {
		right--
	}

	if top == 0 && left == 0 && bottom == g.Height()-1 && right == g.Width()-1 {
		return 0, 0
	}

	rows := make([][]int, 0, bottom-top+1)
	for y := top; y <= bottom; y++ {
		rows = append(rows, append([]int(nil), g.rows[y][left:right+1]...))
	}
	g.rows = rows
	return left, top
}

// CanFit reports whether sub fits inside g with its top-left corner at
// (x, y). Sub is trimmed first so empty padding may hang over the edges.
// On success it returns the trimmed sub-grid and the origin adjusted by the
// trim offset; otherwise it returns sub and the original origin. A sub with
// no occupied cells fits at any origin, even outside g, so an all-zero
// probe never conflicts.
func (g *Grid) CanFit(sub *Grid, x, y int) (fits bool, trimmed *Grid, tx, ty int) {
	if sub == nil {
		return false, nil, x, y
	}
	trimmed = sub.Clone()
	dx, dy := trimmed.Trim()
	if trimmed.IsEmpty() {
		return true, trimmed, x, y
	}
	tx, ty = x+dx, y+dy
	if !g.PointWithin(tx, ty) ||
		tx+trimmed.Width() > g.Width() ||
		ty+trimmed.Height() > g.Height() {
		return false, sub, x, y
	}
	return true, trimmed, tx, ty
}

// Merge copies sub into g at (x, y). With transparent set, zero cells of sub
// leave the existing parent cells untouched.
func (g *Grid) Merge(sub *Grid, x, y int, transparent bool) error {
	fits, trimmed, tx, ty := g.CanFit(sub, x, y)
	if !fits {
		w, h := 0, 0
		if sub != nil {
			w, h = sub.Width(), sub.Height()
		}
		return fmt.Errorf("%w: %dx%d at (%d,%d)", ErrCannotFit, w, h, x, y)
	}
	for j, row := range trimmed.rows {
		for i, v := range row {
			if transparent && v == 0 {
				continue
			}
			g.rows[ty+j][tx+i] = v
		}
	}
	return nil
}

// HasConflict reports whether placing sub at (x, y) would overlap an
// occupied cell of g, or whether sub cannot fit at all.
func (g *Grid) HasConflict(sub *Grid, x, y int) bool {
	fits, trimmed, tx, ty := g.CanFit(sub, x, y)
	if !fits {
		return true
	}
	for j, row := range trimmed.rows {
		for i, v := range row {
			if v != 0 && g.rows[ty+j][tx+i] != 0 {
				return true
			}
		}
	}
	return false
}

// Rotate90 rotates the grid clockwise n quarter turns. Negative n rotates
// counter-clockwise.
func (g *Grid) Rotate90(n int) {
	n %= 4
	if n < 0 {
		n += 4
	}
	for range n {
		g.rotateClockwise()
	}
}

func (g *Grid) rotateClockwise() {
	h, w := g.Height(), g.Width()
	if h == 0 || w == 0 {
		return
	}
	rows := make([][]int, w)
	for r := range rows {
		rows[r] = make([]int, h)
		for c := range h {
			rows[r][c] = g.rows[h-1-c][r]
		}
	}
	g.rows = rows
}

// ShiftRow copies row y into row yTarget and zeroes row y.
func (g *Grid) ShiftRow(y, yTarget int) error {
	if y < 0 || y >= g.Height() || yTarget < 0 || yTarget >= g.Height() {
		return fmt.Errorf("%w: cannot shift row %d to %d", ErrOutOfBounds, y, yTarget)
	}
	if y == yTarget {
		return nil
	}
	copy(g.rows[yTarget], g.rows[y])
	for x := range g.rows[y] {
		g.rows[y][x] = 0
	}
	return nil
}

// ShiftRows moves the inclusive row range [y0, y1] by step rows as a unit.
// Positive step moves toward higher indices and vacated rows become zero.
// A target range outside the grid is rejected with ErrRange before any row
// moves.
func (g *Grid) ShiftRows(y0, y1, step int) error {
	if y0 > y1 || y0 < 0 || y1 >= g.Height() {
		return fmt.Errorf("%w: [%d,%d] in height %d", ErrRange, y0, y1, g.Height())
	}
	if y0+step < 0 || y1+step >= g.Height() {
		return fmt.Errorf("%w: cannot shift [%d,%d] by %d in height %d", ErrRange, y0, y1, step, g.Height())
	}
	if step == 0 {
		return nil
	}

	move := func(y int) {
		copy(g.rows[y+step], g.rows[y])
		for x := range g.rows[y] {
			g.rows[y][x] = 0
		}
	}

	if step > 0 {
		for y := y1; y >= y0; y-- {
			move(y)
		}
	} else {
		for y := y0; y <= y1; y++ {
			move(y)
		}
	}
	return nil
}

// FilledRows returns the sorted indices of fully occupied rows in [y0, y1).
func (g *Grid) FilledRows(y0, y1 int) ([]int, error) {
	if y0 > y1 || y0 < 0 || y1 > g.Height() {
		return nil, fmt.Errorf("%w: [%d,%d) in height %d", ErrRange, y0, y1, g.Height())
	}
	var filled []int
	for y := y0; y < y1; y++ {
		if g.RowIsFilled(y) {
			filled = append(filled, y)
		}
	}
	return filled, nil
}

// ApplyMultiplier multiplies every cell by m.
func (g *Grid) ApplyMultiplier(m int) {
	if m == 1 {
		return
	}
	for _, row := range g.rows {
		for x := range row {
			row[x] *= m
		}
	}
}

// String renders the grid one row per line, for debugging and test output.
func (g *Grid) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%dx%d", g.Width(), g.Height())
	for _, row := range g.rows {
		sb.WriteByte('\n')
		for x, v := range row {
			if x > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%2d", v)
		}
	}
	return sb.String()
}
