package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockparty/internal/config"
	"github.com/vovakirdan/blockparty/internal/core"
	"github.com/vovakirdan/blockparty/internal/multiplayer"
	"github.com/vovakirdan/blockparty/internal/registry"
	"github.com/vovakirdan/blockparty/internal/storage"
)

// Deps holds what the models of one terminal session share.
type Deps struct {
	Store     *storage.Store               // nil disables score saving
	Registry  *multiplayer.Registry        // nil hides the room entries
	Sessions  *multiplayer.SessionRegistry // optional; rooms register their session here
	Logger    *log.Logger
	Renderer  *ScreenRenderer
	Player    string
	SessionID multiplayer.SessionID
	Config    config.Config
	Runtime   core.RuntimeConfig
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = log.New(io.Discard)
	}
	if d.Renderer == nil {
		d.Renderer = NewScreenRenderer(nil)
	}
	if d.Player == "" {
		d.Player = "anonymous"
	}
	if d.Runtime.TickRate <= 0 {
		d.Runtime.TickRate = 60
	}
	return d
}

// configurable is implemented by games that accept a per-session config.
type configurable interface {
	UseConfig(cfg config.Config)
}

// PlayModel runs one solo game.
type PlayModel struct {
	game     registry.Game
	deps     Deps
	screen   *core.Screen
	runtime  core.RuntimeConfig
	keys     GameKeyMap
	frame    core.InputFrame
	state    core.GameState
	ticks    uint64
	saved    bool
	back     bool
	quitting bool
}

// NewPlayModel creates a model for the given game. A zero seed is replaced
// with the current time.
func NewPlayModel(game registry.Game, deps Deps) PlayModel {
	deps = deps.withDefaults()
	rc := deps.Runtime
	if rc.Seed == 0 {
		rc.Seed = time.Now().UnixNano()
	}
	if c, ok := game.(configurable); ok {
		c.UseConfig(deps.Config)
	}
	return PlayModel{
		game:    game,
		deps:    deps,
		screen:  core.NewScreen(rc.ScreenW, rc.ScreenH),
		runtime: rc,
		keys:    DefaultGameKeyMap(),
		frame:   core.NewInputFrame(),
	}
}

// Init resets the game and starts the tick loop.
func (m PlayModel) Init() tea.Cmd {
	m.game.Reset(m.runtime)
	return tickCmd(m.runtime.TickRate)
}

// Update handles messages.
func (m PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		// The board keeps its size; only the viewport changes.
		m.runtime.ScreenW = msg.Width
		m.runtime.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil
	case TickMsg:
		return m.handleTick()
	}
	return m, nil
}

func (m PlayModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		if path, err := m.saveScreenshot(); err != nil {
			m.deps.Logger.Warn("screenshot failed", "error", err)
		} else {
			m.deps.Logger.Info("screenshot saved", "path", path)
		}
		return m, nil
	}
	if key.Matches(msg, m.keys.Back) {
		m.back = true
		return m, nil
	}

	switch action := m.keys.Action(msg); action {
	case core.ActionNone:
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Quit
	case core.ActionRestart:
		if m.state.GameOver {
			m.restart()
		}
	default:
		m.frame.Set(action)
	}
	return m, nil
}

func (m *PlayModel) restart() {
	m.runtime.Seed = time.Now().UnixNano()
	m.game.Reset(m.runtime)
	m.state = m.game.State()
	m.ticks = 0
	m.saved = false
	m.frame.Clear()
}

func (m PlayModel) handleTick() (tea.Model, tea.Cmd) {
	if m.back || m.quitting {
		return m, nil
	}

	res := m.game.Step(m.frame)
	m.frame.Clear()
	m.state = res.State
	if !m.state.GameOver {
		m.ticks++
	}

	if m.state.GameOver && !m.saved {
		m.saved = true
		m.saveScore()
	}
	return m, tickCmd(m.runtime.TickRate)
}

func (m PlayModel) saveScore() {
	if m.deps.Store == nil || m.state.Score == 0 {
		return
	}
	_, err := m.deps.Store.SaveScore(storage.ScoreEntry{
		Mode:   m.game.ID(),
		Player: m.deps.Player,
		Score:  m.state.Score,
		Lines:  m.state.Lines,
		Level:  m.state.Level,
		Ticks:  m.ticks,
	})
	if err != nil {
		m.deps.Logger.Error("could not save score", "mode", m.game.ID(), "error", err)
	}
}

// saveScreenshot writes the current frame as plain text.
func (m PlayModel) saveScreenshot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot get home directory: %w", err)
	}
	dir := filepath.Join(home, ".blockparty", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	m.screen.Clear()
	m.game.Render(m.screen)
	name := fmt.Sprintf("%s_%s.txt", m.game.ID(), time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	return path, os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the game.
func (m PlayModel) View() string {
	if m.quitting {
		return ""
	}
	m.screen.Clear()
	m.game.Render(m.screen)
	return m.deps.Renderer.Render(m.screen)
}

// State returns the last stepped game state.
func (m PlayModel) State() core.GameState {
	return m.state
}

// BackToMenu reports whether the player asked to leave the game.
func (m PlayModel) BackToMenu() bool {
	return m.back
}

// IsQuitting reports whether the player quit.
func (m PlayModel) IsQuitting() bool {
	return m.quitting
}

// Run plays one game in the local terminal.
func Run(game registry.Game, deps Deps) error {
	p := tea.NewProgram(NewPlayModel(game, deps), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
