package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockparty/internal/platform/tui"
	"github.com/vovakirdan/blockparty/internal/registry"
	"github.com/vovakirdan/blockparty/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play [mode]",
	Short: "Play a game mode",
	Long: `Start playing the given mode, or marathon if none is given.

Controls:
  Left/Right, A/D   - Move
  Down/S            - Soft drop
  Space             - Hard drop
  Up/X/W            - Rotate clockwise
  Z                 - Rotate counter-clockwise
  C                 - Hold
  P                 - Pause
  R                 - Restart (after game over)
  Ctrl+S            - Save a screenshot
  Esc, Q/Ctrl+C     - Quit

Difficulty options:
  easy   - Start at level 0
  normal - Start at level 5
  hard   - Start at level 10
  fixed  - Keep the config's start level

Examples:
  blockparty play
  blockparty play blockparty_sprint
  blockparty play --difficulty hard
  blockparty play --config ./my-pieces.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func runPlay(_ *cobra.Command, args []string) error {
	mode := "blockparty"
	if len(args) > 0 {
		mode = args[0]
	}
	if !registry.Exists(mode) {
		return fmt.Errorf("unknown mode %q; run 'blockparty list' to see the modes", mode)
	}

	game, err := registry.Create(mode)
	if err != nil {
		return err
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		store = nil
	} else {
		defer store.Close()
	}

	deps := tui.Deps{
		Store:   store,
		Logger:  logger,
		Player:  playerName(),
		Config:  gameConfig,
		Runtime: runtimeConfig(),
	}
	if err := tui.Run(game, deps); err != nil {
		return fmt.Errorf("running game: %w", err)
	}
	return nil
}

// playerName labels local scores with the login name.
func playerName() string {
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "local"
}
