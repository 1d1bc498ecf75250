package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockparty/internal/platform/tui"
)

var piecesCmd = &cobra.Command{
	Use:   "pieces",
	Short: "Show the configured piece set",
	Long: `Print every piece of the active configuration with its color and
spawn shape, plus the field size and gravity table.

Examples:
  blockparty pieces
  blockparty pieces --config ./my-pieces.yaml`,
	Run: runPieces,
}

func runPieces(_ *cobra.Command, _ []string) {
	cfg := gameConfig
	palette := cfg.Palette()

	fmt.Printf("Field %dx%d, preview %d, sprint target %d lines\n",
		cfg.Field.Width, cfg.Field.Height, cfg.Generator.Preview, cfg.Sprint.Lines)
	fmt.Printf("Levels: %d (start %d)\n\n", len(cfg.Levels.Speeds), cfg.Levels.Start)

	for i, p := range cfg.Pieces {
		style := lipgloss.NewStyle().Foreground(tui.ColorCode(palette[i+1]))
		fmt.Printf("%s (%s)\n", p.Name, p.Color)
		for _, row := range p.Shape {
			var line strings.Builder
			for _, v := range row {
				if v != 0 {
					line.WriteString(style.Render("[]"))
				} else {
					line.WriteString(" .")
				}
			}
			fmt.Println("  " + line.String())
		}
		fmt.Println()
	}
}
