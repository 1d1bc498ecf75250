package tui

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/vovakirdan/blockparty/internal/core"
)

func TestScreenRendererPlainOutput(t *testing.T) {
	// A buffer is not a terminal, so the renderer emits no escapes.
	sr := NewScreenRenderer(lipgloss.NewRenderer(&bytes.Buffer{}))

	s := core.NewScreen(4, 2)
	s.DrawTextColored(0, 0, "ab", core.ColorRed)
	s.DrawTextColored(2, 0, "c", core.ColorBlue)
	s.DrawText(0, 1, "xy")

	assert.Equal(t, "abc \nxy  ", sr.Render(s))
}

func TestColorCode(t *testing.T) {
	assert.Equal(t, lipgloss.Color("208"), ColorCode(core.ColorOrange))
	assert.Equal(t, lipgloss.Color("7"), ColorCode(core.ColorDefault))
}
