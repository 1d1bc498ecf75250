package field

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPieces = []Piece{
	{Name: "O", Shape: [][]int{{1, 1}, {1, 1}}},
	{Name: "T", Shape: [][]int{{0, 1, 0}, {1, 1, 1}, {0, 0, 0}}},
	{Name: "I", Shape: [][]int{{0, 0, 0, 0}, {1, 1, 1, 1}, {0, 0, 0, 0}, {0, 0, 0, 0}}},
}

var testSpeeds = []float64{48, 43, 38}

func newTestField(t *testing.T, width, height int, piece string, spawn Position) *PlayField {
	t.Helper()
	p, err := NewPlayField(PlayFieldConfig{
		Width:        width,
		Height:       height,
		Pieces:       testPieces,
		InitialPiece: piece,
		LevelSpeeds:  testSpeeds,
		Spawn:        &spawn,
	})
	require.NoError(t, err)
	return p
}

func TestNewPlayFieldDefaults(t *testing.T) {
	p, err := NewPlayField(PlayFieldConfig{Pieces: testPieces, LevelSpeeds: testSpeeds})
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, p.Width())
	assert.Equal(t, DefaultHeight, p.Height())
	assert.Equal(t, Position{X: 5, Y: 0}, p.SpawnPosition())
	assert.Equal(t, "O", p.ActiveBlock().Name)
	assert.Equal(t, []string{"O", "T", "I"}, p.PieceNames())
}

func TestNewPlayFieldErrors(t *testing.T) {
	_, err := NewPlayField(PlayFieldConfig{LevelSpeeds: testSpeeds})
	assert.ErrorIs(t, err, ErrNoPieces)

	_, err = NewPlayField(PlayFieldConfig{Pieces: testPieces})
	assert.ErrorIs(t, err, ErrLevel)

	_, err = NewPlayField(PlayFieldConfig{Pieces: testPieces, LevelSpeeds: testSpeeds, InitialPiece: "Q"})
	assert.ErrorIs(t, err, ErrUnknownPiece)

	_, err = NewPlayField(PlayFieldConfig{Width: 0, Height: 5, Pieces: testPieces, LevelSpeeds: testSpeeds})
	assert.ErrorIs(t, err, ErrInvalidDimension)
}

func TestStepAgainstLeftWall(t *testing.T) {
	p := newTestField(t, 4, 4, "O", Position{})

	placed, ok := p.Step(Horizontal(-1))
	assert.False(t, ok)
	assert.False(t, placed)
	assert.Equal(t, 0, p.ActiveBlock().X)

	placed, ok = p.Step(Horizontal(1))
	assert.True(t, ok)
	assert.False(t, placed)
	assert.Equal(t, 1, p.ActiveBlock().X)
}

func TestStepPlacesAndReportsFilledRow(t *testing.T) {
	p := newTestField(t, 4, 3, "O", Position{})
	settled := MustGrid(3, 4, 0)
	require.NoError(t, settled.SetRow(2, []int{0, 0, 5, 5}))
	require.NoError(t, p.SetField(settled))

	placed, ok := p.Step(Down())
	require.True(t, ok)
	require.False(t, placed)

	placed, ok = p.Step(Down())
	require.True(t, ok)
	require.True(t, placed)
	assert.True(t, p.Landed())
	assert.Equal(t, []int{2}, p.FilledRows())

	// Nothing moves until the next spawn.
	_, ok = p.Step(Horizontal(1))
	assert.False(t, ok)

	assert.Equal(t, 1, p.ClearFilledRows())
	assert.Empty(t, p.FilledRows())
	assert.Equal(t, [][]int{
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{1, 1, 0, 0},
	}, p.Field().Data())
}

func TestClearMultipleRows(t *testing.T) {
	p := newTestField(t, 2, 4, "O", Position{X: -1})
	settled, err := GridFromData([][]int{
		{0, 0},
		{0, 0},
		{3, 0},
		{3, 0},
	})
	require.NoError(t, err)
	require.NoError(t, p.SetField(settled))

	// A vertical I drops into column 1 and completes rows 2 and 3.
	require.NoError(t, p.Spawn("I", 2))
	_, ok := p.Step(Rotate(1))
	require.True(t, ok)
	placed, ok := p.Step(Down())
	require.True(t, ok)
	require.True(t, placed)

	assert.Equal(t, []int{2, 3}, p.FilledRows())
	assert.Equal(t, 2, p.ClearFilledRows())
	assert.Equal(t, [][]int{
		{0, 0},
		{0, 0},
		{0, 2},
		{0, 2},
	}, p.Field().Data())
	assert.True(t, p.Field().RowIsZero(0))
}

func TestRotationWallKick(t *testing.T) {
	p := newTestField(t, 5, 5, "T", Position{X: 1, Y: 1})
	settled := MustGrid(5, 5, 0)
	require.NoError(t, settled.Set(2, 3, 9))
	require.NoError(t, p.SetField(settled))

	_, ok := p.Step(Rotate(1))
	require.True(t, ok)
	b := p.ActiveBlock()
	assert.Equal(t, 1, b.Rotation)
	assert.Equal(t, 0, b.X, "kicked one column left")
	assert.Equal(t, 1, b.Y)
}

func TestRotationFailureLeavesStateUnchanged(t *testing.T) {
	p := newTestField(t, 5, 5, "T", Position{X: 1, Y: 1})

	// Fill everything except the cells the T occupies.
	settled := MustGrid(5, 5, 9)
	for _, c := range [][2]int{{2, 1}, {1, 2}, {2, 2}, {3, 2}} {
		require.NoError(t, settled.Set(c[0], c[1], 0))
	}
	require.NoError(t, p.SetField(settled))

	before := p.ActiveBlock()
	_, ok := p.Step(Rotate(-1))
	assert.False(t, ok)
	after := p.ActiveBlock()
	assert.Equal(t, before.X, after.X)
	assert.Equal(t, before.Y, after.Y)
	assert.Equal(t, before.Rotation, after.Rotation)
	assert.True(t, before.Grid().Equal(after.Grid()))
}

func TestUnsupportedRotationRejected(t *testing.T) {
	p := newTestField(t, 6, 6, "T", Position{X: 1, Y: 1})
	_, ok := p.Step(Rotate(2))
	assert.False(t, ok)
	assert.ErrorIs(t, Rotate(2).Validate(), ErrUnsupportedRotation)
}

func TestSpawnUnknownKeepsBlock(t *testing.T) {
	p := newTestField(t, 6, 6, "T", Position{X: 1, Y: 0})
	err := p.Spawn("Q", 1)
	assert.ErrorIs(t, err, ErrUnknownPiece)
	assert.Equal(t, "T", p.ActiveBlock().Name)
}

func TestSpawnAppliesMultiplier(t *testing.T) {
	p := newTestField(t, 6, 6, "O", Position{})
	require.NoError(t, p.Spawn("O", 4))
	assert.Equal(t, [][]int{{4, 4}, {4, 4}}, p.ActiveBlock().Grid().Data())
}

func TestSpawnRandom(t *testing.T) {
	p := newTestField(t, 6, 6, "O", Position{})
	require.NoError(t, p.SpawnRandom(rand.New(rand.NewSource(1))))
	assert.Contains(t, p.PieceNames(), p.ActiveBlock().Name)
}

func TestGhostAndView(t *testing.T) {
	p := newTestField(t, 4, 4, "O", Position{})

	g := p.Ghost()
	assert.Equal(t, 2, g.Y)
	assert.Equal(t, [][]int{{-1, -1}, {-1, -1}}, g.Grid().Data())

	assert.Equal(t, [][]int{
		{1, 1, 0, 0},
		{1, 1, 0, 0},
		{-1, -1, 0, 0},
		{-1, -1, 0, 0},
	}, p.View(true).Data())

	assert.Equal(t, [][]int{
		{1, 1, 0, 0},
		{1, 1, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, p.View(false).Data())

	// The settled field is untouched by rendering.
	assert.Equal(t, [][]int{{0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}, p.Field().Data())
}

func TestLevelClampAndSpeed(t *testing.T) {
	p := newTestField(t, 6, 6, "O", Position{})
	p.SetLevel(-3)
	assert.Equal(t, 0, p.Level())
	p.SetLevel(99)
	assert.Equal(t, 2, p.Level())
	assert.InDelta(t, 38.0/60.0, p.CurrentLevelSpeed(1.0/60.0), 1e-9)
	assert.InDelta(t, 48.0/60.0, p.LevelSpeed(0, 1.0/60.0), 1e-9)
}
