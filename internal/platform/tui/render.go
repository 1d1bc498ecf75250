package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/blockparty/internal/core"
)

// ansiColors maps core.Color to ANSI 256-color codes.
var ansiColors = map[core.Color]string{
	core.ColorRed:           "1",
	core.ColorGreen:         "2",
	core.ColorYellow:        "3",
	core.ColorBlue:          "4",
	core.ColorMagenta:       "5",
	core.ColorCyan:          "6",
	core.ColorWhite:         "7",
	core.ColorBrightRed:     "9",
	core.ColorBrightGreen:   "10",
	core.ColorBrightYellow:  "11",
	core.ColorBrightBlue:    "12",
	core.ColorBrightMagenta: "13",
	core.ColorBrightCyan:    "14",
	core.ColorBrightWhite:   "15",
	core.ColorOrange:        "208",
	core.ColorGray:          "245",
}

// ColorCode returns the lipgloss color for c; unknown colors render white.
func ColorCode(c core.Color) lipgloss.Color {
	if code, ok := ansiColors[c]; ok {
		return lipgloss.Color(code)
	}
	return lipgloss.Color("7")
}

// ScreenRenderer turns a Screen buffer into styled terminal output. Each SSH
// session gets its own so colors match the client's terminal.
type ScreenRenderer struct {
	lg     *lipgloss.Renderer
	styles map[core.Color]lipgloss.Style
	plain  lipgloss.Style
}

// NewScreenRenderer builds styles with the given lipgloss renderer; nil uses
// the process default.
func NewScreenRenderer(r *lipgloss.Renderer) *ScreenRenderer {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	sr := &ScreenRenderer{
		lg:     r,
		styles: make(map[core.Color]lipgloss.Style, len(ansiColors)),
		plain:  r.NewStyle(),
	}
	for c, code := range ansiColors {
		sr.styles[c] = r.NewStyle().Foreground(lipgloss.Color(code))
	}
	return sr
}

// NewStyle returns a style bound to this renderer's color profile.
func (sr *ScreenRenderer) NewStyle() lipgloss.Style {
	return sr.lg.NewStyle()
}

func (sr *ScreenRenderer) style(c core.Color) lipgloss.Style {
	if st, ok := sr.styles[c]; ok {
		return st
	}
	return sr.plain
}

// Render converts the screen to a string, grouping adjacent cells of the
// same color to minimize escape sequences.
func (sr *ScreenRenderer) Render(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	var run strings.Builder
	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			color := s.GetCell(x, y).Color
			run.Reset()
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != color {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}
			sb.WriteString(sr.style(color).Render(run.String()))
		}
	}
	return sb.String()
}

// RenderScreen renders with the process default renderer.
func RenderScreen(s *core.Screen) string {
	return NewScreenRenderer(nil).Render(s)
}
