package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/blockparty/internal/registry"
	"github.com/vovakirdan/blockparty/internal/storage"
)

// Scoreboard layout constants
const (
	minWidthForSidebar = 90  // Minimum width to show the mode sidebar
	sidebarWidth       = 24  // Width of the mode sidebar
	maxScores          = 100 // Max rows to load
)

// matchesTab is the sidebar entry listing finished versus matches.
const matchesTab = "versus"

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextTab, k.PrevTab, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab, k.PrevTab},
		{k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel shows the best solo scores per mode and recent matches.
type ScoreboardModel struct {
	tabs        []registry.GameInfo
	cursor      int
	deps        Deps
	rows        []table.Row
	table       table.Model
	help        help.Model
	keys        ScoreboardKeyMap
	width       int
	height      int
	quitting    bool
	goingBack   bool
	showSidebar bool
}

// NewScoreboardModel creates a scoreboard showing the first mode.
func NewScoreboardModel(deps Deps) ScoreboardModel {
	deps = deps.withDefaults()
	tabs := registry.List()
	tabs = append(tabs, registry.GameInfo{ID: matchesTab, Title: "Versus matches"})

	m := ScoreboardModel{
		tabs:        tabs,
		deps:        deps,
		keys:        DefaultScoreboardKeyMap(),
		help:        help.New(),
		width:       deps.Runtime.ScreenW,
		height:      deps.Runtime.ScreenH,
		showSidebar: deps.Runtime.ScreenW >= minWidthForSidebar,
	}
	m.reload()
	return m
}

func (m ScoreboardModel) current() registry.GameInfo {
	return m.tabs[m.cursor]
}

// columns returns the layout for the current tab, sized to the window.
func (m *ScoreboardModel) columns() []table.Column {
	avail := m.width - 6
	if m.showSidebar {
		avail -= sidebarWidth + 3
	}

	if m.current().ID == matchesTab {
		cols := []table.Column{
			{Title: "Code", Width: 8},
			{Title: "Winner", Width: 14},
			{Title: "Score", Width: 8},
			{Title: "Result", Width: 20},
			{Title: "Date", Width: 14},
		}
		if avail < 70 {
			cols[1].Width = 10
			cols[3].Width = 12
		}
		return cols
	}

	cols := []table.Column{
		{Title: "Rank", Width: 5},
		{Title: "Player", Width: 14},
		{Title: "Score", Width: 8},
		{Title: "Lines", Width: 6},
		{Title: "Level", Width: 6},
		{Title: "Date", Width: 14},
	}
	if avail < 60 {
		cols[1].Width = 10
		cols[5].Width = 12
	}
	return cols
}

// createTable creates a table with the current tab's columns.
func (m *ScoreboardModel) createTable() table.Model {
	height := m.height - 8
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// reload rebuilds the table for the current tab from storage.
func (m *ScoreboardModel) reload() {
	m.rows = nil
	if m.deps.Store != nil {
		var err error
		if m.current().ID == matchesTab {
			m.rows, err = m.matchRows()
		} else {
			m.rows, err = m.scoreRows(m.current().ID)
		}
		if err != nil {
			m.deps.Logger.Error("could not load scores", "tab", m.current().ID, "error", err)
		}
	}
	m.table = m.createTable()
	m.table.SetRows(m.rows)
	m.table.GotoTop()
}

func (m *ScoreboardModel) scoreRows(mode string) ([]table.Row, error) {
	scores, err := m.deps.Store.TopScores(mode, maxScores)
	if err != nil {
		return nil, err
	}
	return scoreTableRows(scores), nil
}

func (m *ScoreboardModel) matchRows() ([]table.Row, error) {
	matches, err := m.deps.Store.RecentMatches(maxScores)
	if err != nil {
		return nil, err
	}
	return matchTableRows(matches), nil
}

func scoreTableRows(scores []storage.ScoreEntry) []table.Row {
	rows := make([]table.Row, len(scores))
	for i, s := range scores {
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			s.Player,
			fmt.Sprintf("%d", s.Score),
			fmt.Sprintf("%d", s.Lines),
			fmt.Sprintf("%d", s.Level),
			s.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	return rows
}

// matchTableRows shows the winner's name and score, or "-" for a draw.
func matchTableRows(matches []storage.MatchRecord) []table.Row {
	rows := make([]table.Row, len(matches))
	for i, rec := range matches {
		winner, score := "-", "-"
		for _, p := range rec.Players {
			if rec.Winner != 0 && p.Player == rec.Winner {
				winner = p.Name
				score = fmt.Sprintf("%d", p.Score)
			}
		}
		rows[i] = table.Row{
			rec.Code,
			winner,
			score,
			rec.Reason,
			rec.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	return rows
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, nil
		case key.Matches(msg, m.keys.NextTab):
			m.cursor = (m.cursor + 1) % len(m.tabs)
			m.reload()
			return m, nil
		case key.Matches(msg, m.keys.PrevTab):
			m.cursor = (m.cursor + len(m.tabs) - 1) % len(m.tabs)
			m.reload()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.help.Width = msg.Width
		m.table = m.createTable()
		m.table.SetRows(m.rows)
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder
	titleStyle := m.deps.Renderer.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))
	b.WriteString(centerText(titleStyle.Render("HIGH SCORES - "+m.current().Title), m.width))
	b.WriteString("\n\n")

	if m.showSidebar {
		b.WriteString(m.renderWideLayout())
	} else {
		b.WriteString(m.renderNarrowLayout())
	}

	b.WriteString("\n")
	helpStyle := m.deps.Renderer.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// renderWideLayout renders the tab list as a sidebar next to the table.
func (m ScoreboardModel) renderWideLayout() string {
	sidebarStyle := m.deps.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Modes\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")
	for i, tab := range m.tabs {
		cursor := "  "
		style := m.deps.Renderer.NewStyle()
		if i == m.cursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		name := tab.Title
		if maxLen := sidebarWidth - 6; len(name) > maxLen {
			name = name[:maxLen-1] + "."
		}
		sidebar.WriteString(style.Render(cursor + name))
		sidebar.WriteString("\n")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Render(sidebar.String()), "  ", m.tableBox())
}

// renderNarrowLayout renders the current tab name above the table.
func (m ScoreboardModel) renderNarrowLayout() string {
	tabLine := fmt.Sprintf("< %s >", m.current().Title)
	return centerText(tabLine, m.width) + "\n\n" + centerText(m.tableBox(), m.width)
}

func (m ScoreboardModel) tableBox() string {
	box := m.deps.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	if len(m.rows) == 0 {
		empty := m.deps.Renderer.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return box.Render(empty.Render("Nothing recorded yet.\nPlay a game to set a high score!"))
	}
	return box.Render(m.table.View())
}

// Rows returns the rows shown for the current tab.
func (m ScoreboardModel) Rows() []table.Row {
	return m.rows
}

// IsGoingBack reports whether the user wants the menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting reports whether the user quit.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}
