// Package blockparty implements the falling-block puzzle as registry games
// (marathon and sprint) on top of the field simulation.
package blockparty

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/blockparty/internal/config"
	"github.com/vovakirdan/blockparty/internal/core"
	"github.com/vovakirdan/blockparty/internal/multiplayer"
	"github.com/vovakirdan/blockparty/internal/registry"
)

// Mode represents the game mode.
type Mode string

const (
	ModeMarathon Mode = "marathon" // endless, levels up every 10 lines
	ModeSprint   Mode = "sprint"   // ends after a fixed number of lines
)

// Package-level configuration, set by the CLI before games are created.
var (
	settingsMu     sync.RWMutex
	selectedConfig = config.DefaultConfig()
	gameLogger     *log.Logger
)

// SetConfig sets the configuration used by games created afterwards.
func SetConfig(cfg config.Config) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	selectedConfig = cfg
}

// CurrentConfig returns the configuration new games will use.
func CurrentConfig() config.Config {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return selectedConfig
}

// SetLogger sets the logger boards use for recoverable problems.
func SetLogger(l *log.Logger) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	gameLogger = l
}

func currentLogger() *log.Logger {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return gameLogger
}

// Game is a registry game wrapping one Board.
type Game struct {
	mode   Mode
	custom *config.Config // overrides the package config when set
	cfg    config.Config
	theme  Theme
	board  *Board
	dt     float64
	tick   uint64
	last   UpdateResult
	done   bool // sprint target reached
	failed error
}

var _ multiplayer.BoardGame = (*Game)(nil)

// New creates a marathon game.
func New() *Game {
	return &Game{mode: ModeMarathon}
}

// NewSprint creates a sprint game.
func NewSprint() *Game {
	return &Game{mode: ModeSprint}
}

func init() {
	registry.Register("blockparty", func() registry.Game {
		return New()
	})
	registry.Register("blockparty_sprint", func() registry.Game {
		return NewSprint()
	})
}

// UseConfig makes this game ignore the package configuration, so sessions
// sharing a process can play with different settings. Takes effect on the
// next Reset.
func (g *Game) UseConfig(cfg config.Config) {
	g.custom = &cfg
}

// ID returns the game identifier.
func (g *Game) ID() string {
	if g.mode == ModeSprint {
		return "blockparty_sprint"
	}
	return "blockparty"
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.mode == ModeSprint {
		return "Block Party (Sprint)"
	}
	return "Block Party"
}

// Reset builds a fresh board from the current configuration.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.cfg = CurrentConfig()
	if g.custom != nil {
		g.cfg = *g.custom
	}
	g.theme = ThemeFrom(g.cfg)
	g.dt = cfg.TickDuration()
	g.tick = 0
	g.last = UpdateResult{}
	g.done = false
	g.failed = nil

	bc := BoardConfigFrom(g.cfg, cfg.Seed)
	bc.Logger = currentLogger()
	board, err := NewBoard(bc)
	if err != nil {
		// Config is validated on load; this only trips on hand-built configs.
		g.board = nil
		g.failed = err
		return
	}
	g.board = board
}

// Step applies the frame's actions in order, then advances gravity.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++
	if g.board == nil || g.done {
		return core.StepResult{State: g.State()}
	}

	var res UpdateResult
	for _, a := range in.Actions() {
		res = res.merge(g.board.PerformInput(a))
	}
	res = res.merge(g.board.Update(g.dt))
	g.last = res

	if g.mode == ModeSprint && g.board.Lines() >= g.cfg.Sprint.Lines {
		g.done = true
	}

	return core.StepResult{
		State:        g.State(),
		Placed:       res.Placed,
		LinesCleared: res.LinesCleared,
	}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	if g.board == nil {
		return core.GameState{GameOver: true}
	}
	return core.GameState{
		Score:    g.board.Score(),
		Lines:    g.board.Lines(),
		Level:    g.board.Level(),
		GameOver: g.board.HasLost() || g.done,
		Paused:   g.board.Paused(),
	}
}

// Board exposes the underlying board.
func (g *Game) Board() *Board {
	return g.board
}

// Ticks returns the number of simulation ticks since Reset.
func (g *Game) Ticks() uint64 {
	return g.tick
}

// Cleared reports whether a sprint reached its line target.
func (g *Game) Cleared() bool {
	return g.done
}

// BoardSnapshot returns the board state with the last tick's events.
func (g *Game) BoardSnapshot() Snapshot {
	if g.board == nil {
		return Snapshot{GameOver: true}
	}
	snap := g.board.Snapshot()
	snap.GameOver = snap.GameOver || g.done
	snap.Placed = g.last.Placed
	snap.LinesCleared = g.last.LinesCleared
	return snap
}

// Snapshot returns the board state as a match payload.
func (g *Game) Snapshot() multiplayer.GameSnapshot {
	return g.BoardSnapshot()
}

// Theme returns the colors and shapes used to draw this game.
func (g *Game) Theme() Theme {
	return g.theme
}

// Render draws the well, HUD and status text.
func (g *Game) Render(dst *core.Screen) {
	if g.board == nil {
		msg := "configuration error"
		if g.failed != nil {
			msg = g.failed.Error()
		}
		dst.DrawTextCentered(dst.Height()/2, msg)
		return
	}

	w, h := BoardSize(g.board.Field().Width(), g.board.Field().Height())
	if dst.Width() < w || dst.Height() < h+1 {
		dst.DrawTextCentered(dst.Height()/2, fmt.Sprintf("Terminal too small (need %dx%d)", w, h+1))
		return
	}

	x := (dst.Width() - w) / 2
	RenderSnapshot(dst, g.BoardSnapshot(), x, 0, g.theme, g.Title())

	status := "←/→ move  ↑/x rotate  z ccw  space drop  c hold  p pause  q quit"
	switch {
	case g.done:
		status = fmt.Sprintf("Sprint cleared in %.1fs! R restart, Q quit", float64(g.tick)*g.dt)
	case g.board.HasLost():
		status = "R restart, Q quit"
	}
	dst.DrawTextCentered(h, status)
}
