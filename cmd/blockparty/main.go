// blockparty is a falling-block puzzle for the terminal with a multiplayer
// relay served over SSH.
//
// Usage:
//
//	blockparty list              - List game modes
//	blockparty play [mode]       - Play a mode (default: blockparty)
//	blockparty menu              - Start the interactive menu
//	blockparty serve             - Start the SSH server and relay
//	blockparty scores [mode]     - Show high scores
//	blockparty pieces            - Show the configured piece set
//
// Global flags:
//
//	--config <path>      - Game config YAML
//	--difficulty <name>  - easy, normal, hard or fixed
//	--fps <rate>         - Tick rate (default: 60)
//	--seed <value>       - RNG seed for reproducible gameplay
//	--db <path>          - Database path (default: ~/.blockparty/scores.db)
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/blockparty/internal/config"
	"github.com/vovakirdan/blockparty/internal/core"
	"github.com/vovakirdan/blockparty/internal/games/blockparty"
)

var (
	// Global flags
	flagConfig     string
	flagDifficulty string
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagLogFile    string
	flagLogLevel   string

	// Set by the root pre-run hook.
	gameConfig config.Config
	logger     *log.Logger
	logFile    *os.File
)

func main() {
	err := rootCmd.Execute()
	if logFile != nil {
		logFile.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "blockparty",
	Short: "Block Party - a falling-block puzzle for your terminal",
	Long: `Block Party is a falling-block puzzle played in the terminal, solo or
against other players over SSH.

Available commands:
  list     - Show the game modes
  play     - Play a mode directly
  menu     - Interactive menu
  serve    - Start the SSH server and multiplayer relay
  scores   - View high scores and recent matches
  pieces   - Show the configured piece set

Examples:
  blockparty play
  blockparty play blockparty_sprint --difficulty hard
  blockparty menu
  blockparty serve --ssh :2222
  blockparty scores`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a game config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.blockparty/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file (interactive commands log nowhere by default)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(piecesCmd)
}

// setup loads the configuration and builds the logger before any command.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	switch preset := config.DifficultyPreset(flagDifficulty); preset {
	case "", config.DifficultyEasy, config.DifficultyNormal, config.DifficultyHard, config.DifficultyFixed:
		config.ApplyPreset(&cfg, preset)
	default:
		return fmt.Errorf("unknown difficulty %q (want easy, normal, hard or fixed)", flagDifficulty)
	}
	gameConfig = cfg

	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return err
	}

	// Interactive commands own the terminal, so they only log to a file.
	var out io.Writer = io.Discard
	if cmd.Name() == serveCmd.Name() {
		out = os.Stderr
	}
	if flagLogFile != "" {
		if err := os.MkdirAll(filepath.Dir(flagLogFile), 0o755); err != nil {
			return fmt.Errorf("cannot create log directory: %w", err)
		}
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("cannot open log file: %w", err)
		}
		logFile = f
		out = f
	}
	logger = log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          "blockparty",
		Level:           level,
	})

	blockparty.SetConfig(cfg)
	blockparty.SetLogger(logger)
	return nil
}

// runtimeConfig sizes the game to the current terminal.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}
