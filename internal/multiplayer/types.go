// Package multiplayer hosts relay matches: a registry of rooms, one tick
// loop per running match, bounded input queues and a reaper for rooms that
// never started.
package multiplayer

import (
	"fmt"

	"github.com/vovakirdan/blockparty/internal/core"
)

// PlayerID identifies a board within a match. Players are numbered from 1
// in join order; 0 means "no player".
type PlayerID int

const (
	Player1 PlayerID = iota + 1
	Player2
)

// String returns "P1", "P2", ...
func (p PlayerID) String() string {
	if p <= 0 {
		return "none"
	}
	return fmt.Sprintf("P%d", int(p))
}

// SessionID uniquely identifies a connection (SSH session, local TUI).
type SessionID string

// MatchID uniquely identifies a match.
type MatchID string

// Command is one queued controller input.
type Command struct {
	Player PlayerID
	Action core.Action
}

// BoardGame is the simulation a match runs for every player. Each player
// gets its own instance, stepped only by the match's tick loop.
type BoardGame interface {
	// Reset starts a new game.
	Reset(cfg core.RuntimeConfig)

	// Step advances one tick after applying the frame's actions in order.
	Step(in core.InputFrame) core.StepResult

	// State returns the score and status flags.
	State() core.GameState

	// Snapshot returns the board for broadcasting.
	Snapshot() GameSnapshot
}

// GameFactory creates one board for a joining player.
type GameFactory func() BoardGame
