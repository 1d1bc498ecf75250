package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerformStepReturnsCopy(t *testing.T) {
	shape := MustGrid(2, 3, 0)
	_ = shape.SetRow(0, []int{1, 1, 1})
	b := NewActiveBlock("X", shape, 2, 3)

	moved := b.PerformStep(Horizontal(-1))
	assert.Equal(t, 1, moved.X)
	assert.Equal(t, 2, b.X)

	down := b.PerformStep(Down())
	assert.Equal(t, 4, down.Y)
	assert.Equal(t, 3, b.Y)

	turned := b.PerformStep(Rotate(1))
	assert.Equal(t, 1, turned.Rotation)
	assert.Equal(t, 2, turned.Grid().Width())
	assert.Equal(t, 3, b.Grid().Width(), "receiver grid must not rotate")

	back := b.PerformStep(Rotate(-1))
	assert.Equal(t, 3, back.Rotation)
}

func TestBlockTopAndGhost(t *testing.T) {
	shape, _ := GridFromData([][]int{{0, 0}, {2, 2}})
	b := NewActiveBlock("X", shape, 0, 5)
	assert.Equal(t, 6, b.Top())

	g := b.Ghost()
	assert.Equal(t, [][]int{{0, 0}, {-2, -2}}, g.Grid().Data())
	assert.Equal(t, [][]int{{0, 0}, {2, 2}}, b.Grid().Data())
}

func TestStepValidate(t *testing.T) {
	assert.NoError(t, Rotate(1).Validate())
	assert.NoError(t, Rotate(-1).Validate())
	assert.Error(t, Rotate(0).Validate())
	assert.NoError(t, Horizontal(3).Validate())
	assert.Error(t, Step{Kind: StepKind(9)}.Validate())
}
