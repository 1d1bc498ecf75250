package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustData(t *testing.T, data [][]int) *Grid {
	t.Helper()
	g, err := GridFromData(data)
	require.NoError(t, err)
	return g
}

func TestNewGrid(t *testing.T) {
	g, err := NewGrid(3, 4, 7)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Width())
	assert.Equal(t, 3, g.Height())
	v, err := g.Get(3, 2)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	for _, dims := range [][2]int{{0, 4}, {4, 0}, {-1, 2}} {
		_, err := NewGrid(dims[0], dims[1], 0)
		assert.ErrorIs(t, err, ErrInvalidDimension, "dims %v", dims)
	}
}

func TestGridFromDataCopies(t *testing.T) {
	src := [][]int{{1, 2}, {3, 4}}
	g := mustData(t, src)
	src[0][0] = 9
	v, _ := g.Get(0, 0)
	assert.Equal(t, 1, v)

	_, err := GridFromData([][]int{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrInvalidDimension)
	_, err = GridFromData(nil)
	assert.ErrorIs(t, err, ErrInvalidDimension)
}

func TestGetSetBounds(t *testing.T) {
	g := MustGrid(2, 2, 0)
	require.NoError(t, g.Set(1, 1, 5))
	assert.ErrorIs(t, g.Set(2, 0, 1), ErrOutOfBounds)
	_, err := g.Get(0, -1)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestSetRow(t *testing.T) {
	g := MustGrid(2, 3, 0)
	require.NoError(t, g.SetRow(1, []int{1, 2, 3}))
	row, err := g.Row(1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, row)

	assert.ErrorIs(t, g.SetRow(0, []int{1, 2}), ErrRowLength)
	assert.ErrorIs(t, g.SetRow(5, []int{1, 2, 3}), ErrOutOfBounds)
}

func TestRotate90(t *testing.T) {
	g := mustData(t, [][]int{{1, 2}, {4, 3}})
	g.Rotate90(1)
	assert.Equal(t, [][]int{{4, 1}, {3, 2}}, g.Data())

	// A non-square grid swaps its dimensions.
	r := mustData(t, [][]int{{1, 2, 3}})
	r.Rotate90(1)
	assert.Equal(t, [][]int{{1}, {2}, {3}}, r.Data())
	r.Rotate90(-1)
	assert.Equal(t, [][]int{{1, 2, 3}}, r.Data())
}

func TestRotateIdentities(t *testing.T) {
	shapes := [][][]int{
		{{0, 1, 0}, {1, 1, 1}, {0, 0, 0}},
		{{1, 1, 0}, {0, 1, 1}},
		{{1, 2, 3, 4}},
		{{5}},
	}
	for _, data := range shapes {
		orig := mustData(t, data)

		full := orig.Clone()
		full.Rotate90(4)
		assert.True(t, full.Equal(orig), "rotate(4)\n%s", full)

		cw := orig.Clone()
		cw.Rotate90(1)
		ccw := orig.Clone()
		ccw.Rotate90(-3)
		assert.True(t, cw.Equal(ccw), "rotate(1) vs rotate(-3)\n%s\n%s", cw, ccw)

		back := orig.Clone()
		back.Rotate90(1)
		back.Rotate90(-1)
		assert.True(t, back.Equal(orig))
	}
}

func TestTrim(t *testing.T) {
	g := mustData(t, [][]int{
		{0, 0, 0, 0},
		{0, 1, 1, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 0},
	})
	x, y := g.Trim()
	assert.Equal(t, 1, x)
	assert.Equal(t, 1, y)
	assert.Equal(t, [][]int{{1, 1}, {0, 1}}, g.Data())

	// Idempotent.
	x, y = g.Trim()
	assert.Zero(t, x)
	assert.Zero(t, y)
	assert.Equal(t, [][]int{{1, 1}, {0, 1}}, g.Data())

	empty := MustGrid(3, 3, 0)
	x, y = empty.Trim()
	assert.Zero(t, x)
	assert.Zero(t, y)
	assert.True(t, empty.IsEmpty())
	assert.Zero(t, empty.Width())
	assert.Zero(t, empty.Height())
}

func TestCanFit(t *testing.T) {
	parent := MustGrid(4, 4, 0)
	sub := mustData(t, [][]int{
		{0, 0, 0},
		{0, 1, 1},
		{0, 1, 1},
	})

	fits, trimmed, x, y := parent.CanFit(sub, -1, -1)
	require.True(t, fits)
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)
	assert.Equal(t, 2, trimmed.Width())

	fits, _, x, y = parent.CanFit(sub, 2, 2)
	assert.False(t, fits)
	assert.Equal(t, 2, x)
	assert.Equal(t, 2, y)

	fits, _, _, _ = parent.CanFit(sub, 1, 1)
	assert.True(t, fits)
}

func TestCanFitEmptySubAnywhere(t *testing.T) {
	parent := MustGrid(4, 4, 0)
	blank := MustGrid(3, 3, 0)

	for _, origin := range [][2]int{{0, 0}, {-1, -1}, {10, 2}, {-50, 50}} {
		fits, trimmed, x, y := parent.CanFit(blank, origin[0], origin[1])
		assert.True(t, fits, "origin %v", origin)
		assert.True(t, trimmed.IsEmpty())
		assert.Equal(t, origin, [2]int{x, y}, "origin is not adjusted")
	}

	// A padded piece merged at a negative origin is not in conflict with an
	// all-zero probe of the same size at the same spot.
	piece := mustData(t, [][]int{
		{0, 0, 0},
		{0, 1, 1},
		{0, 1, 1},
	})
	require.NoError(t, parent.Merge(piece, -1, -1, true))
	assert.False(t, parent.HasConflict(blank, -1, -1))
	assert.True(t, parent.HasConflict(piece, -1, -1))
}

func TestMergeAndConflict(t *testing.T) {
	parent := MustGrid(4, 4, 0)
	sub := mustData(t, [][]int{{2, 0}, {2, 2}})

	require.NoError(t, parent.Merge(sub, 1, 1, true))
	assert.True(t, parent.HasConflict(sub, 1, 1))
	assert.False(t, parent.HasConflict(MustGrid(2, 2, 0), 1, 1))
	assert.False(t, parent.HasConflict(sub, 2, 0))

	// Out of bounds always conflicts.
	assert.True(t, parent.HasConflict(sub, 3, 3))
	assert.ErrorIs(t, parent.Merge(sub, 3, 3, false), ErrCannotFit)

	// Opaque merge overwrites with zeros, transparent leaves them.
	opaque := MustGrid(2, 2, 9)
	require.NoError(t, opaque.Merge(mustData(t, [][]int{{1, 0}, {1, 1}}), 0, 0, false))
	assert.Equal(t, [][]int{{1, 0}, {1, 1}}, opaque.Data())

	sheer := MustGrid(2, 2, 9)
	require.NoError(t, sheer.Merge(mustData(t, [][]int{{1, 0}, {1, 1}}), 0, 0, true))
	assert.Equal(t, [][]int{{1, 9}, {1, 1}}, sheer.Data())
}

func TestShiftRows(t *testing.T) {
	g := mustData(t, [][]int{
		{1, 1},
		{2, 2},
		{3, 3},
		{4, 4},
	})
	require.NoError(t, g.ShiftRows(0, 1, 1))
	assert.Equal(t, [][]int{{0, 0}, {1, 1}, {2, 2}, {4, 4}}, g.Data())

	require.NoError(t, g.ShiftRows(1, 2, -1))
	assert.Equal(t, [][]int{{1, 1}, {2, 2}, {0, 0}, {4, 4}}, g.Data())

	assert.ErrorIs(t, g.ShiftRows(2, 1, 1), ErrRange)
	assert.ErrorIs(t, g.ShiftRows(0, 4, 1), ErrRange)
}

func TestShiftRowsRejectsTargetsOffGrid(t *testing.T) {
	g := mustData(t, [][]int{
		{1, 1},
		{2, 2},
		{3, 3},
		{4, 4},
	})
	before := g.Data()

	assert.ErrorIs(t, g.ShiftRows(2, 3, 1), ErrRange)
	assert.ErrorIs(t, g.ShiftRows(2, 3, 2), ErrRange)
	assert.ErrorIs(t, g.ShiftRows(0, 1, -1), ErrRange)
	assert.Equal(t, before, g.Data(), "a rejected shift moves nothing")

	require.NoError(t, g.ShiftRows(0, 3, 0))
	assert.Equal(t, before, g.Data())
}

func TestShiftRowsPreservesOrder(t *testing.T) {
	g := mustData(t, [][]int{
		{1, 0, 0},
		{0, 2, 0},
		{0, 0, 3},
		{0, 0, 0},
		{0, 0, 0},
		{0, 0, 0},
	})
	require.NoError(t, g.ShiftRows(0, 2, 3))
	assert.Equal(t, [][]int{
		{0, 0, 0},
		{0, 0, 0},
		{0, 0, 0},
		{1, 0, 0},
		{0, 2, 0},
		{0, 0, 3},
	}, g.Data())
}

func TestShiftRow(t *testing.T) {
	g := mustData(t, [][]int{{1, 1}, {0, 0}})
	require.NoError(t, g.ShiftRow(0, 1))
	assert.Equal(t, [][]int{{0, 0}, {1, 1}}, g.Data())
	assert.ErrorIs(t, g.ShiftRow(0, 2), ErrOutOfBounds)
}

func TestFilledRows(t *testing.T) {
	g := mustData(t, [][]int{
		{1, 1, 1},
		{1, 0, 1},
		{2, 3, 4},
	})
	rows, err := g.FilledRows(0, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, rows)

	rows, err = g.FilledRows(1, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, rows)

	_, err = g.FilledRows(2, 1)
	assert.ErrorIs(t, err, ErrRange)
	_, err = g.FilledRows(0, 4)
	assert.ErrorIs(t, err, ErrRange)
}

func TestApplyMultiplier(t *testing.T) {
	g := mustData(t, [][]int{{1, 0}, {1, 1}})
	g.ApplyMultiplier(-3)
	assert.Equal(t, [][]int{{-3, 0}, {-3, -3}}, g.Data())
}
