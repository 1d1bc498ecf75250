package field

import "github.com/kamstrup/intmap"

// Offset is a translation applied to a rotated block. DY grows downward.
type Offset struct {
	DX int
	DY int
}

// Kick tables are stored as per-rotation-state offset lists, with y pointing
// up as they are usually published. The kick for a rotation from state a to
// state b is offset[a][i] - offset[b][i], normalized so the first entry is
// the unkicked rotation.
type offsetTable = intmap.Map[int, []Offset]

var (
	genericOffsets = newOffsetTable([4][]Offset{
		{{0, 0}, {0, 0}, {0, 0}, {0, 0}, {0, 0}},
		{{0, 0}, {1, 0}, {1, -1}, {0, 2}, {1, 2}},
		{{0, 0}, {0, 0}, {0, 0}, {0, 0}, {0, 0}},
		{{0, 0}, {-1, 0}, {-1, -1}, {0, 2}, {-1, 2}},
	})

	lineOffsets = newOffsetTable([4][]Offset{
		{{0, 0}, {-1, 0}, {2, 0}, {-1, 0}, {2, 0}},
		{{-1, 0}, {0, 0}, {0, 0}, {0, 1}, {0, -2}},
		{{-1, 1}, {1, 1}, {-2, 1}, {1, 0}, {-2, 0}},
		{{0, 1}, {0, 1}, {0, 1}, {0, -1}, {0, 2}},
	})

	squareOffsets = newOffsetTable([4][]Offset{
		{{0, 0}},
		{{0, -1}},
		{{-1, -1}},
		{{-1, 0}},
	})
)

func newOffsetTable(states [4][]Offset) *offsetTable {
	t := intmap.New[int, []Offset](len(states))
	for state, offsets := range states {
		t.Put(state, offsets)
	}
	return t
}

func offsetsFor(piece string) *offsetTable {
	switch piece {
	case "O":
		return squareOffsets
	case "I":
		return lineOffsets
	default:
		return genericOffsets
	}
}

// Kicks returns the translations to try, in order, after rotating piece from
// rotation state from to state to fails in place. The in-place rotation is
// not included.
func Kicks(piece string, from, to int) []Offset {
	table := offsetsFor(piece)
	src, ok := table.Get(((from % 4) + 4) % 4)
	if !ok {
		return nil
	}
	dst, ok := table.Get(((to % 4) + 4) % 4)
	if !ok {
		return nil
	}

	n := min(len(src), len(dst))
	if n == 0 {
		return nil
	}
	baseX := src[0].DX - dst[0].DX
	baseY := src[0].DY - dst[0].DY

	kicks := make([]Offset, 0, n-1)
	for i := 1; i < n; i++ {
		dx := src[i].DX - dst[i].DX - baseX
		dy := src[i].DY - dst[i].DY - baseY
		if dx == 0 && dy == 0 {
			continue
		}
		// Published tables count y upward; the field counts rows downward.
		kicks = append(kicks, Offset{DX: dx, DY: -dy})
	}
	return kicks
}
