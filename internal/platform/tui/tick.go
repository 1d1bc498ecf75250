// Package tui provides the Bubble Tea front end: solo play, room hosting
// and joining, the scoreboard and the SSH server that serves them.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/blockparty/internal/multiplayer"
)

// TickMsg is sent to trigger a game simulation tick.
type TickMsg time.Time

// tickCmd returns a command that sends one TickMsg after a tick interval.
func tickCmd(tickRate int) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// sessionEventMsg wraps an event delivered to a room session.
type sessionEventMsg struct {
	evt multiplayer.SessionEvent
}

// waitForEvent blocks until the session receives an event or closes.
func waitForEvent(s *multiplayer.ChannelSession) tea.Cmd {
	return func() tea.Msg {
		select {
		case evt := <-s.Events():
			return sessionEventMsg{evt: evt}
		case <-s.Done():
			return nil
		}
	}
}
