package blockparty

import (
	"fmt"

	"github.com/vovakirdan/blockparty/internal/config"
	"github.com/vovakirdan/blockparty/internal/core"
)

// Cells are drawn two characters wide so the well looks square.
const (
	cellW      = 2
	hudWidth   = 12
	hudGap     = 2
	blockGlyph = '█'
	ghostGlyph = '░'
	emptyGlyph = '·'
)

// Theme maps cell values to colors and piece names to preview shapes.
type Theme struct {
	Palette []core.Color
	Shapes  map[string][][]int
	Order   []string // piece names by cell value, starting at 1
}

// ThemeFrom builds a theme from the loaded configuration.
func ThemeFrom(cfg config.Config) Theme {
	shapes := make(map[string][][]int, len(cfg.Pieces))
	for _, p := range cfg.Pieces {
		shapes[p.Name] = p.Shape
	}
	return Theme{Palette: cfg.Palette(), Shapes: shapes, Order: cfg.PieceNames()}
}

func (t Theme) color(v int) core.Color {
	if v < 0 {
		v = -v
	}
	if v < len(t.Palette) {
		return t.Palette[v]
	}
	return core.ColorWhite
}

// BoardSize returns the screen area needed by RenderSnapshot for a well of
// the given cell dimensions.
func BoardSize(fieldW, fieldH int) (w, h int) {
	return fieldW*cellW + 2 + hudGap + hudWidth, fieldH + 2
}

// RenderSnapshot draws a board at (x, y): the well on the left and the HUD
// with score, next queue and held piece on the right.
func RenderSnapshot(dst *core.Screen, snap Snapshot, x, y int, theme Theme, title string) {
	rows := len(snap.Grid)
	cols := 0
	if rows > 0 {
		cols = len(snap.Grid[0])
	}

	well := core.NewRect(x, y, cols*cellW+2, rows+2)
	dst.DrawBox(well, core.ColorGray)
	if title != "" {
		dst.DrawTextColored(x+2, y, " "+title+" ", core.ColorBrightWhite)
	}

	for r, row := range snap.Grid {
		for c, v := range row {
			px, py := x+1+c*cellW, y+1+r
			switch {
			case v > 0:
				col := theme.color(v)
				dst.SetColored(px, py, blockGlyph, col)
				dst.SetColored(px+1, py, blockGlyph, col)
			case v < 0:
				col := theme.color(v)
				dst.SetColored(px, py, ghostGlyph, col)
				dst.SetColored(px+1, py, ghostGlyph, col)
			default:
				dst.SetColored(px, py, ' ', core.ColorDefault)
				dst.SetColored(px+1, py, emptyGlyph, core.ColorGray)
			}
		}
	}

	hx := well.Right() + hudGap
	hy := y + 1
	dst.DrawTextColored(hx, hy, "SCORE", core.ColorGray)
	dst.DrawTextColored(hx, hy+1, fmt.Sprintf("%d", snap.Score), core.ColorBrightWhite)
	dst.DrawTextColored(hx, hy+3, "LINES", core.ColorGray)
	dst.DrawTextColored(hx, hy+4, fmt.Sprintf("%d", snap.Lines), core.ColorBrightWhite)
	dst.DrawTextColored(hx, hy+6, "LEVEL", core.ColorGray)
	dst.DrawTextColored(hx, hy+7, fmt.Sprintf("%d", snap.Level), core.ColorBrightWhite)

	dst.DrawTextColored(hx, hy+9, "NEXT", core.ColorGray)
	if len(snap.Next) > 0 {
		theme.drawPiece(dst, snap.Next[0], hx, hy+10)
	}
	if len(snap.Next) > 1 {
		rest := ""
		for i, name := range snap.Next[1:] {
			if i > 0 {
				rest += " "
			}
			rest += name
		}
		dst.DrawTextColored(hx, hy+13, rest, core.ColorGray)
	}

	dst.DrawTextColored(hx, hy+15, "HOLD", core.ColorGray)
	if snap.Held != "" {
		theme.drawPiece(dst, snap.Held, hx, hy+16)
	}

	switch {
	case snap.GameOver:
		drawBanner(dst, well, "GAME OVER")
	case snap.Paused:
		drawBanner(dst, well, "PAUSED")
	}
}

// drawPiece draws a piece template at (x, y), skipping empty template rows.
func (t Theme) drawPiece(dst *core.Screen, name string, x, y int) {
	shape, ok := t.Shapes[name]
	if !ok {
		dst.DrawText(x, y, name)
		return
	}
	col := core.ColorWhite
	for i, n := range t.Order {
		if n == name {
			col = t.color(i + 1)
		}
	}
	line := 0
	for _, row := range shape {
		empty := true
		for _, v := range row {
			if v != 0 {
				empty = false
			}
		}
		if empty {
			continue
		}
		for c, v := range row {
			if v != 0 {
				dst.SetColored(x+c*cellW, y+line, blockGlyph, col)
				dst.SetColored(x+c*cellW+1, y+line, blockGlyph, col)
			}
		}
		line++
	}
}

func drawBanner(dst *core.Screen, well core.Rect, text string) {
	bx := well.X + (well.W-len(text))/2
	by := well.Y + well.H/2
	dst.DrawTextColored(bx, by, text, core.ColorBrightYellow)
}
