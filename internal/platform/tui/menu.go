package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/blockparty/internal/config"
	"github.com/vovakirdan/blockparty/internal/registry"
)

// MenuChoice is what a menu entry leads to.
type MenuChoice int

const (
	ChoiceNone MenuChoice = iota
	ChoicePlay
	ChoiceRoom
	ChoiceScores
	ChoiceQuit
)

// MenuItem is one menu entry.
type MenuItem struct {
	Choice MenuChoice
	GameID string // for ChoicePlay
	Title  string
}

var difficulties = []config.DifficultyPreset{
	config.DifficultyFixed,
	config.DifficultyEasy,
	config.DifficultyNormal,
	config.DifficultyHard,
}

// MenuModel is the main menu: solo modes, rooms and scores.
type MenuModel struct {
	items      []MenuItem
	cursor     int
	difficulty int
	width      int
	height     int
	deps       Deps
	keys       MenuKeyMap
	help       help.Model
	selected   *MenuItem
	quitting   bool
}

// NewMenuModel lists the registered modes. Room entries appear only when a
// match registry is available.
func NewMenuModel(deps Deps) MenuModel {
	deps = deps.withDefaults()
	games := registry.List()
	items := make([]MenuItem, 0, len(games)+3)
	for _, g := range games {
		items = append(items, MenuItem{Choice: ChoicePlay, GameID: g.ID, Title: g.Title})
	}
	if deps.Registry != nil {
		items = append(items, MenuItem{Choice: ChoiceRoom, Title: "Versus (host or join a room)"})
	}
	items = append(items,
		MenuItem{Choice: ChoiceScores, Title: "High scores"},
		MenuItem{Choice: ChoiceQuit, Title: "Quit"},
	)

	return MenuModel{
		items:  items,
		width:  deps.Runtime.ScreenW,
		height: deps.Runtime.ScreenH,
		deps:   deps,
		keys:   DefaultMenuKeyMap(),
		help:   help.New(),
	}
}

// Init implements tea.Model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keys.MenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit
	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case MenuActionLeft:
		m.difficulty = (m.difficulty + len(difficulties) - 1) % len(difficulties)
	case MenuActionRight:
		m.difficulty = (m.difficulty + 1) % len(difficulties)
	case MenuActionSelect:
		item := m.items[m.cursor]
		if item.Choice == ChoiceQuit {
			m.quitting = true
			return m, tea.Quit
		}
		m.selected = &item
	}
	return m, nil
}

// Difficulty returns the selected preset.
func (m MenuModel) Difficulty() config.DifficultyPreset {
	return difficulties[m.difficulty]
}

// Config returns the session config with the selected difficulty applied.
func (m MenuModel) Config() config.Config {
	cfg := m.deps.Config
	cfg.Levels.Speeds = append([]float64(nil), cfg.Levels.Speeds...)
	config.ApplyPreset(&cfg, m.Difficulty())
	return cfg
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	title := m.deps.Renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	cursor := m.deps.Renderer.NewStyle().Foreground(lipgloss.Color("11"))
	dim := m.deps.Renderer.NewStyle().Foreground(lipgloss.Color("245"))

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(title.Render("B L O C K   P A R T Y"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(fmt.Sprintf("Player: %s", m.deps.Player), m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		line := "  " + item.Title
		if i == m.cursor {
			line = cursor.Render("> " + item.Title)
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	diff := fmt.Sprintf("Difficulty: < %s >  (start level %d)", m.Difficulty(), m.Config().Levels.Start)
	b.WriteString(centerText(dim.Render(diff), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(m.help.View(m.keys), m.width))
	b.WriteString("\n")
	return b.String()
}

// Selected returns the chosen item, or nil.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

func (m *MenuModel) clearSelection() {
	m.selected = nil
}

// IsQuitting reports whether the user quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// centerText centers text within width, measuring printable cells.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}
