package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/blockparty/internal/registry"
)

type appView int

const (
	viewMenu appView = iota
	viewPlay
	viewRoom
	viewScores
)

// AppModel manages a whole session: menu, solo play, rooms and scores.
type AppModel struct {
	deps     Deps
	view     appView
	menu     MenuModel
	play     PlayModel
	room     RoomModel
	scores   ScoreboardModel
	quitting bool
}

// NewAppModel creates the top-level model used locally and over SSH.
func NewAppModel(deps Deps) AppModel {
	deps = deps.withDefaults()
	return AppModel{
		deps: deps,
		menu: NewMenuModel(deps),
	}
}

// Init implements tea.Model.
func (m AppModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update routes messages to the active screen and handles transitions.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.deps.Runtime.ScreenW = wsm.Width
		m.deps.Runtime.ScreenH = wsm.Height
		if m.view != viewMenu {
			next, _ := m.menu.Update(wsm)
			if mm, ok := next.(MenuModel); ok {
				m.menu = mm
			}
		}
	}

	switch m.view {
	case viewPlay:
		return m.updatePlay(msg)
	case viewRoom:
		return m.updateRoom(msg)
	case viewScores:
		return m.updateScores(msg)
	}
	return m.updateMenu(msg)
}

func (m AppModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	if mm, ok := next.(MenuModel); ok {
		m.menu = mm
	}
	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	sel := m.menu.Selected()
	if sel == nil {
		return m, cmd
	}
	m.menu.clearSelection()

	deps := m.deps
	deps.Config = m.menu.Config()

	switch sel.Choice {
	case ChoicePlay:
		game, err := registry.Create(sel.GameID)
		if err != nil {
			m.deps.Logger.Error("cannot create game", "mode", sel.GameID, "error", err)
			return m, nil
		}
		m.play = NewPlayModel(game, deps)
		m.view = viewPlay
		return m, m.play.Init()
	case ChoiceRoom:
		m.room = NewRoomModel(deps)
		m.view = viewRoom
		return m, m.room.Init()
	case ChoiceScores:
		m.scores = NewScoreboardModel(deps)
		m.view = viewScores
		return m, m.scores.Init()
	}
	return m, cmd
}

func (m AppModel) updatePlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.play.Update(msg)
	if pm, ok := next.(PlayModel); ok {
		m.play = pm
	}
	switch {
	case m.play.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.play.BackToMenu():
		m.view = viewMenu
		return m, nil
	}
	return m, cmd
}

func (m AppModel) updateRoom(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.room.Update(msg)
	if rm, ok := next.(RoomModel); ok {
		m.room = rm
	}
	switch {
	case m.room.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.room.BackToMenu():
		m.view = viewMenu
		return m, nil
	}
	return m, cmd
}

func (m AppModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.scores.Update(msg)
	if sm, ok := next.(ScoreboardModel); ok {
		m.scores = sm
	}
	switch {
	case m.scores.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.scores.IsGoingBack():
		m.view = viewMenu
		return m, nil
	}
	return m, cmd
}

// View renders the active screen.
func (m AppModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.view {
	case viewPlay:
		return m.play.View()
	case viewRoom:
		return m.room.View()
	case viewScores:
		return m.scores.View()
	}
	return m.menu.View()
}

// Close releases the session's room, if any.
func (m AppModel) Close() {
	if m.view == viewRoom {
		m.room.leave()
	}
}

// RunApp runs the full menu flow in the local terminal.
func RunApp(deps Deps) error {
	p := tea.NewProgram(NewAppModel(deps), tea.WithAltScreen())
	final, err := p.Run()
	if am, ok := final.(AppModel); ok {
		am.Close()
	}
	return err
}
