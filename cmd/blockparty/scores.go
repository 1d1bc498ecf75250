package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockparty/internal/registry"
	"github.com/vovakirdan/blockparty/internal/storage"
)

var (
	flagLimit   int
	flagMatches bool
	flagClear   bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [mode]",
	Short: "Show high scores",
	Long: `Display the top scores for a mode (default: blockparty), or the most
recent versus matches with --matches.

Examples:
  blockparty scores
  blockparty scores blockparty_sprint --limit 20
  blockparty scores --matches
  blockparty scores blockparty --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of rows to show")
	scoresCmd.Flags().BoolVar(&flagMatches, "matches", false, "Show recent versus matches")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all scores of the mode")
}

func runScores(_ *cobra.Command, args []string) error {
	mode := "blockparty"
	if len(args) > 0 {
		mode = args[0]
	}
	info, ok := registry.Lookup(mode)
	if !flagMatches && !ok {
		return fmt.Errorf("unknown mode %q; run 'blockparty list' to see the modes", mode)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening scores database: %w", err)
	}
	defer store.Close()

	switch {
	case flagMatches:
		return printMatches(store)
	case flagClear:
		if err := store.ClearScores(mode); err != nil {
			return err
		}
		fmt.Printf("Cleared scores for %s.\n", info.Title)
		return nil
	}

	scores, err := store.TopScores(mode, flagLimit)
	if err != nil {
		return fmt.Errorf("retrieving scores: %w", err)
	}

	fmt.Printf("High Scores - %s\n", info.Title)
	fmt.Println()
	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'blockparty play %s' to set the first high score!\n", mode)
		return nil
	}

	fmt.Printf("  %-4s  %-12s  %-8s  %-5s  %-5s  %s\n", "Rank", "Player", "Score", "Lines", "Level", "Date")
	fmt.Printf("  %-4s  %-12s  %-8s  %-5s  %-5s  %s\n", "----", "------", "-----", "-----", "-----", "----")
	for i, e := range scores {
		fmt.Printf("  %-4d  %-12s  %-8d  %-5d  %-5d  %s\n",
			i+1, e.Player, e.Score, e.Lines, e.Level, e.CreatedAt.Format("2006-01-02 15:04"))
	}

	stats, err := store.Stats()
	if err == nil {
		if s, ok := stats[mode]; ok {
			fmt.Println()
			fmt.Printf("Best: %d  Games: %d  Average: %.0f  Lines: %d\n",
				s.HighScore, s.GamesCount, s.AvgScore, s.TotalLines)
		}
	}
	return nil
}

func printMatches(store *storage.Store) error {
	matches, err := store.RecentMatches(flagLimit)
	if err != nil {
		return fmt.Errorf("retrieving matches: %w", err)
	}
	if len(matches) == 0 {
		fmt.Println("No versus matches recorded yet.")
		return nil
	}

	fmt.Println("Recent matches")
	fmt.Println()
	for _, m := range matches {
		fmt.Printf("%s  room %s  %s  %s  %d ticks\n",
			m.CreatedAt.Format("2006-01-02 15:04"), m.Code, m.Reason, m.Duration.Round(100*time.Millisecond), m.Ticks)
		for _, p := range m.Players {
			mark := ""
			if p.Player == m.Winner {
				mark = "  winner"
			}
			fmt.Printf("    P%d %-12s score %-7d lines %-4d level %d%s\n",
				p.Player, p.Name, p.Score, p.Lines, p.Level, mark)
		}
	}
	return nil
}
