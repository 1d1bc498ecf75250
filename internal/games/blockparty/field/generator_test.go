package field

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sevenPieces = []string{"I", "J", "L", "O", "S", "T", "Z"}

func TestNewGeneratorErrors(t *testing.T) {
	_, err := NewGenerator(nil, 4, nil)
	assert.ErrorIs(t, err, ErrEmptyGenerator)

	_, err = NewGenerator(sevenPieces, 0, nil)
	assert.ErrorIs(t, err, ErrPreviewSize)
}

func TestMakeBagIsPermutation(t *testing.T) {
	g, err := NewGenerator(sevenPieces, 3, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	for range 20 {
		bag := g.MakeBag()
		sort.Ints(bag)
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, bag)
	}
}

func TestPopFrontDealsWholeBags(t *testing.T) {
	g, err := NewGenerator(sevenPieces, 4, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	for bag := range 10 {
		seen := make(map[string]int)
		for range len(sevenPieces) {
			name, index := g.PopFront()
			assert.Equal(t, sevenPieces[index], name)
			seen[name]++
			assert.Greater(t, g.Queued(), g.PreviewSize())
		}
		for _, name := range sevenPieces {
			assert.Equal(t, 1, seen[name], "bag %d piece %s", bag, name)
		}
	}
}

func TestPreviewMatchesQueue(t *testing.T) {
	g, err := NewGenerator(sevenPieces, 5, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	preview := g.Preview()
	require.Len(t, preview, 5)
	for _, want := range preview {
		front, _ := g.Front()
		got, _ := g.PopFront()
		assert.Equal(t, front, got)
		assert.Equal(t, want, got)
	}
}

func TestSetPreviewSize(t *testing.T) {
	g, err := NewGenerator(sevenPieces, 1, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, g.SetPreviewSize(0), ErrPreviewSize)
	require.NoError(t, g.SetPreviewSize(12))
	assert.Len(t, g.Preview(), 12)
	assert.Greater(t, g.Queued(), 12)
}

func TestGeneratorDeterministic(t *testing.T) {
	a, _ := NewGenerator(sevenPieces, 4, rand.New(rand.NewSource(99)))
	b, _ := NewGenerator(sevenPieces, 4, rand.New(rand.NewSource(99)))
	for range 30 {
		na, _ := a.PopFront()
		nb, _ := b.PopFront()
		require.Equal(t, na, nb)
	}
}
