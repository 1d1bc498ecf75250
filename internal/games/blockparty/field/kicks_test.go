package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKicksGeneric(t *testing.T) {
	// Spawn to right: left, then left-and-up, then two down, then left two down.
	assert.Equal(t, []Offset{{-1, 0}, {-1, -1}, {0, 2}, {-1, 2}}, Kicks("T", 0, 1))
	// Right back to spawn mirrors it.
	assert.Equal(t, []Offset{{1, 0}, {1, 1}, {0, -2}, {1, -2}}, Kicks("T", 1, 0))
	// Every shape outside O and I shares the generic table.
	assert.Equal(t, Kicks("T", 2, 3), Kicks("Z", 2, 3))
}

func TestKicksLine(t *testing.T) {
	assert.Equal(t, []Offset{{-2, 0}, {1, 0}, {-2, 1}, {1, -2}}, Kicks("I", 0, 1))
	assert.Equal(t, []Offset{{-1, 0}, {2, 0}, {-1, -2}, {2, 1}}, Kicks("I", 0, 3))
}

func TestKicksSquare(t *testing.T) {
	for from := range 4 {
		assert.Empty(t, Kicks("O", from, (from+1)%4))
		assert.Empty(t, Kicks("O", from, (from+3)%4))
	}
}

func TestKicksAllStatesPresent(t *testing.T) {
	for _, piece := range []string{"T", "I"} {
		for from := range 4 {
			assert.NotEmpty(t, Kicks(piece, from, (from+1)%4), "%s %d cw", piece, from)
			assert.NotEmpty(t, Kicks(piece, from, (from+3)%4), "%s %d ccw", piece, from)
		}
	}
}
