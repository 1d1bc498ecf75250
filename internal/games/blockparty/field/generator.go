package field

import (
	"errors"
	"fmt"
	"math/rand"
)

// Generator errors.
var (
	ErrEmptyGenerator = errors.New("field: generator has no pieces")
	ErrPreviewSize    = errors.New("field: preview size must be at least 1")
)

// Generator is a bag randomizer: pieces are dealt from shuffled bags that
// each contain every piece exactly once. The queue always holds more than
// previewSize entries so Preview never has to wait for a refill.
type Generator struct {
	names       []string
	previewSize int
	queue       []int
	rng         *rand.Rand
}

// NewGenerator creates a generator over names and fills the queue.
// A nil rng falls back to a fixed seed.
func NewGenerator(names []string, previewSize int, rng *rand.Rand) (*Generator, error) {
	if len(names) == 0 {
		return nil, ErrEmptyGenerator
	}
	if previewSize < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrPreviewSize, previewSize)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	g := &Generator{
		names:       append([]string(nil), names...),
		previewSize: previewSize,
		rng:         rng,
	}
	g.fill()
	return g, nil
}

// MakeBag returns a fresh Fisher-Yates permutation of the piece indices.
func (g *Generator) MakeBag() []int {
	bag := make([]int, len(g.names))
	for i := range bag {
		bag[i] = i
	}
	for i := len(bag) - 1; i > 0; i-- {
		j := g.rng.Intn(i + 1)
		bag[i], bag[j] = bag[j], bag[i]
	}
	return bag
}

func (g *Generator) fill() {
	for len(g.queue) <= g.previewSize {
		g.queue = append(g.queue, g.MakeBag()...)
	}
}

// Front returns the next piece without consuming it.
func (g *Generator) Front() (name string, index int) {
	index = g.queue[0]
	return g.names[index], index
}

// PopFront consumes and returns the next piece.
func (g *Generator) PopFront() (name string, index int) {
	name, index = g.Front()
	g.queue = g.queue[1:]
	g.fill()
	return name, index
}

// Preview returns the names of the next previewSize pieces.
func (g *Generator) Preview() []string {
	out := make([]string, g.previewSize)
	for i := range out {
		out[i] = g.names[g.queue[i]]
	}
	return out
}

// PreviewSize returns the number of pieces exposed by Preview.
func (g *Generator) PreviewSize() int {
	return g.previewSize
}

// SetPreviewSize changes the preview length and refills as needed.
func (g *Generator) SetPreviewSize(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", ErrPreviewSize, n)
	}
	g.previewSize = n
	g.fill()
	return nil
}

// Names returns the piece names in index order.
func (g *Generator) Names() []string {
	return append([]string(nil), g.names...)
}

// BagSize returns the number of pieces in one bag.
func (g *Generator) BagSize() int {
	return len(g.names)
}

// Queued returns the number of pieces currently waiting in the queue.
func (g *Generator) Queued() int {
	return len(g.queue)
}
