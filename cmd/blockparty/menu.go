package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockparty/internal/platform/tui"
	"github.com/vovakirdan/blockparty/internal/storage"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the interactive menu",
	Long: `Start in interactive menu mode.

Use arrow keys or j/k to navigate, Left/Right to change the difficulty and
Enter to select. After a game ends, Esc returns to the menu.

Examples:
  blockparty menu
  blockparty menu --fps 30
  blockparty menu --db ./scores.db`,
	RunE: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		store = nil
	} else {
		defer store.Close()
	}

	return tui.RunApp(tui.Deps{
		Store:   store,
		Logger:  logger,
		Player:  playerName(),
		Config:  gameConfig,
		Runtime: runtimeConfig(),
	})
}
