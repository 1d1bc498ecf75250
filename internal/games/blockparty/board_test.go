package blockparty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vovakirdan/blockparty/internal/core"
	"github.com/vovakirdan/blockparty/internal/games/blockparty/field"
)

var (
	squareOnly = []field.Piece{{Name: "O", Shape: [][]int{{1, 1}, {1, 1}}}}
	squareAndT = []field.Piece{
		{Name: "O", Shape: [][]int{{1, 1}, {1, 1}}},
		{Name: "T", Shape: [][]int{{0, 1, 0}, {1, 1, 1}, {0, 0, 0}}},
	}
)

func newTestBoard(t *testing.T, width, height int, pieces []field.Piece, speeds ...float64) *Board {
	t.Helper()
	if len(speeds) == 0 {
		speeds = []float64{1}
	}
	b, err := NewBoard(BoardConfig{
		Field: field.PlayFieldConfig{
			Width:       width,
			Height:      height,
			Pieces:      pieces,
			LevelSpeeds: speeds,
			Spawn:       &field.Position{},
		},
		Preview: 2,
		Seed:    1,
	})
	require.NoError(t, err)
	return b
}

func TestNewBoardErrors(t *testing.T) {
	_, err := NewBoard(BoardConfig{Field: field.PlayFieldConfig{LevelSpeeds: []float64{1}}})
	assert.ErrorIs(t, err, field.ErrEmptyGenerator)

	_, err = NewBoard(BoardConfig{Field: field.PlayFieldConfig{Pieces: squareOnly}})
	assert.ErrorIs(t, err, field.ErrLevel)
}

func TestHardDropPlacesAndSpawns(t *testing.T) {
	b := newTestBoard(t, 4, 4, squareOnly)

	res := b.PerformInput(core.ActionHardDrop)
	assert.True(t, res.Placed)
	assert.Zero(t, res.LinesCleared)
	assert.False(t, b.HasLost())

	settled := b.Field().Field().Data()
	assert.Equal(t, []int{1, 1, 0, 0}, settled[2])
	assert.Equal(t, []int{1, 1, 0, 0}, settled[3])
	assert.Equal(t, 0, b.Field().ActiveBlock().Y, "next piece spawns at the top")
}

func TestClearingScoresAndCountsLines(t *testing.T) {
	b := newTestBoard(t, 4, 4, squareOnly)

	b.PerformInput(core.ActionHardDrop)
	b.PerformInput(core.ActionRight)
	b.PerformInput(core.ActionRight)
	res := b.PerformInput(core.ActionHardDrop)

	assert.True(t, res.Placed)
	assert.Equal(t, 2, res.LinesCleared)
	assert.Equal(t, field.Points(0, 2), res.Points)
	assert.Equal(t, 100, b.Score())
	assert.Equal(t, 2, b.Lines())
	assert.Equal(t, 0, b.Level())

	for y := range 4 {
		assert.True(t, b.Field().Field().RowIsZero(y), "row %d should be empty", y)
	}
}

func TestTopOutAtSpawn(t *testing.T) {
	b := newTestBoard(t, 4, 2, squareOnly)

	res := b.PerformInput(core.ActionHardDrop)
	assert.True(t, res.Placed)
	assert.True(t, b.HasLost())

	// Nothing moves once the board is lost.
	assert.Equal(t, UpdateResult{}, b.PerformInput(core.ActionLeft))
	assert.Equal(t, UpdateResult{}, b.Update(10))
	assert.True(t, b.Snapshot().GameOver)
}

func TestHoldOncePerPlacement(t *testing.T) {
	b := newTestBoard(t, 6, 8, squareAndT)

	first := b.Active()
	b.PerformInput(core.ActionHold)
	assert.Equal(t, first, b.Held())
	assert.False(t, b.HoldReady())
	second := b.Active()

	b.PerformInput(core.ActionHold)
	assert.Equal(t, first, b.Held(), "second hold before a placement is ignored")
	assert.Equal(t, second, b.Active())

	res := b.PerformInput(core.ActionHardDrop)
	require.True(t, res.Placed)
	assert.True(t, b.HoldReady())

	third := b.Active()
	b.PerformInput(core.ActionHold)
	assert.Equal(t, first, b.Active())
	assert.Equal(t, third, b.Held())
}

func TestGravityAccumulates(t *testing.T) {
	b := newTestBoard(t, 4, 6, squareOnly, 1)
	dt := 0.5 // interval = 1 * dt

	b.Update(dt)
	b.Update(dt)
	assert.Equal(t, 0, b.Field().ActiveBlock().Y)
	b.Update(dt)
	assert.Equal(t, 1, b.Field().ActiveBlock().Y)
}

func TestPauseSuspendsPlay(t *testing.T) {
	b := newTestBoard(t, 4, 6, squareOnly)

	b.PerformInput(core.ActionPause)
	assert.True(t, b.Paused())
	b.PerformInput(core.ActionRight)
	for range 10 {
		b.Update(1)
	}
	assert.Equal(t, 0, b.Field().ActiveBlock().X)
	assert.Equal(t, 0, b.Field().ActiveBlock().Y)

	b.PerformInput(core.ActionPause)
	assert.False(t, b.Paused())
	b.PerformInput(core.ActionRight)
	assert.Equal(t, 1, b.Field().ActiveBlock().X)
}

func TestStartLevelFromConfig(t *testing.T) {
	b, err := NewBoard(BoardConfig{
		Field: field.PlayFieldConfig{
			Width:        4,
			Height:       4,
			Pieces:       squareOnly,
			LevelSpeeds:  []float64{3, 2, 1},
			InitialLevel: 1,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Level())
}

func TestBoardSnapshot(t *testing.T) {
	b := newTestBoard(t, 4, 4, squareOnly)
	snap := b.Snapshot()

	require.Len(t, snap.Grid, 4)
	assert.Equal(t, []int{1, 1, 0, 0}, snap.Grid[0])
	assert.Equal(t, []int{-1, -1, 0, 0}, snap.Grid[3], "ghost drawn at the landing row")
	assert.Len(t, snap.Next, 2)
	assert.False(t, snap.GameOver)
}
