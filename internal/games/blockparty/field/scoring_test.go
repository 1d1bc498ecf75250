package field

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoints(t *testing.T) {
	tests := []struct {
		level, lines, want int
	}{
		{0, 1, 40},
		{0, 2, 100},
		{0, 3, 300},
		{0, 4, 1200},
		{2, 3, 900},
		{9, 4, 12000},
		{1, -1, 0},
		{0, 0, 0},
		{0, 5, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("level%d_lines%d", tt.level, tt.lines), func(t *testing.T) {
			assert.Equal(t, tt.want, Points(tt.level, tt.lines))
		})
	}
}

func TestLevelForLines(t *testing.T) {
	assert.Equal(t, 0, LevelForLines(0, 9))
	assert.Equal(t, 1, LevelForLines(0, 10))
	assert.Equal(t, 5, LevelForLines(3, 25))
	assert.Equal(t, 2, LevelForLines(2, -4))
}
