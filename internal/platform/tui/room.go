package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/blockparty/internal/core"
	"github.com/vovakirdan/blockparty/internal/games/blockparty"
	"github.com/vovakirdan/blockparty/internal/multiplayer"
)

// RoomState is a step of the versus flow.
type RoomState int

const (
	RoomChoose    RoomState = iota // host or join
	RoomHosting                    // room created, waiting for players
	RoomEnterCode                  // typing a join code
	RoomWaiting                    // joined, waiting for the start
	RoomPlaying
	RoomEnded
)

const codeLength = 6

// RoomModel hosts or joins a relay match and plays it.
type RoomModel struct {
	deps    Deps
	session *multiplayer.ChannelSession
	keys    GameKeyMap
	theme   blockparty.Theme
	screen  *core.Screen
	state   RoomState
	width   int
	height  int

	matchID multiplayer.MatchID
	code    string
	player  multiplayer.PlayerID
	players int
	input   string
	err     string

	boards []multiplayer.BoardSnapshot
	ended  multiplayer.MatchEndedEvent

	back     bool
	quitting bool
}

// NewRoomModel creates the versus flow for one session. deps.Registry must
// be set.
func NewRoomModel(deps Deps) RoomModel {
	deps = deps.withDefaults()
	id := deps.SessionID
	if id == "" {
		id = multiplayer.SessionID(deps.Player)
	}
	session := multiplayer.NewChannelSession(id, deps.Player, deps.Config.Relay.SessionBuffer)
	if deps.Sessions != nil {
		deps.Sessions.Register(session)
	}
	return RoomModel{
		deps:    deps,
		session: session,
		keys:    DefaultGameKeyMap(),
		theme:   blockparty.ThemeFrom(deps.Config),
		screen:  core.NewScreen(deps.Runtime.ScreenW, deps.Runtime.ScreenH),
		width:   deps.Runtime.ScreenW,
		height:  deps.Runtime.ScreenH,
	}
}

// Init starts listening for match events.
func (m RoomModel) Init() tea.Cmd {
	return waitForEvent(m.session)
}

// Update handles messages.
func (m RoomModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil
	case sessionEventMsg:
		m.handleEvent(msg.evt)
		return m, waitForEvent(m.session)
	}
	return m, nil
}

func (m *RoomModel) handleEvent(evt multiplayer.SessionEvent) {
	switch e := evt.(type) {
	case multiplayer.MatchCreatedEvent:
		m.matchID = e.MatchID
		m.code = e.Code
	case multiplayer.PlayerJoinedEvent:
		m.players = e.Players
	case multiplayer.PlayerLeftEvent:
		m.players = e.Players
	case multiplayer.MatchStartedEvent:
		m.players = e.Players
		m.state = RoomPlaying
	case multiplayer.SnapshotEvent:
		m.boards = e.Boards
	case multiplayer.MatchEndedEvent:
		m.ended = e
		m.state = RoomEnded
	case multiplayer.ErrorEvent:
		m.err = e.Message
	}
}

func (m RoomModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.leave()
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case RoomChoose:
		return m.handleChooseKey(msg)
	case RoomHosting:
		return m.handleHostingKey(msg)
	case RoomEnterCode:
		return m.handleCodeKey(msg)
	case RoomWaiting:
		if msg.String() == "esc" {
			m.leave()
			m.back = true
		}
	case RoomPlaying:
		return m.handlePlayingKey(msg)
	case RoomEnded:
		switch msg.String() {
		case "enter", "esc", "q":
			m.leave()
			m.back = true
		}
	}
	return m, nil
}

func (m RoomModel) handleChooseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h":
		match, err := m.deps.Registry.Create(m.session)
		if err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.matchID = match.ID()
		m.code = match.Code()
		m.err = ""
		m.state = RoomHosting
	case "j":
		m.err = ""
		m.input = ""
		m.state = RoomEnterCode
	case "esc", "q":
		m.back = true
	}
	return m, nil
}

func (m RoomModel) handleHostingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "p":
		if m.player != 0 {
			return m, nil
		}
		_, id, err := m.deps.Registry.Join(m.code, m.session)
		if err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.player = id
	case "enter":
		err := m.deps.Registry.StartMatch(m.matchID)
		switch {
		case errors.Is(err, multiplayer.ErrNoPlayers):
			m.err = "nobody has joined yet"
		case err != nil && !errors.Is(err, multiplayer.ErrMatchStarted):
			m.err = err.Error()
		}
	case "esc":
		m.leave()
		m.back = true
	}
	return m, nil
}

func (m RoomModel) handleCodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.state = RoomChoose
		return m, nil
	case tea.KeyBackspace:
		if m.input != "" {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil
	case tea.KeyEnter:
		if len(m.input) != codeLength {
			m.err = fmt.Sprintf("codes are %d characters", codeLength)
			return m, nil
		}
		match, id, err := m.deps.Registry.Join(m.input, m.session)
		if err != nil {
			m.err = joinError(err)
			return m, nil
		}
		m.matchID = match.ID()
		m.code = match.Code()
		m.player = id
		m.err = ""
		if m.state != RoomPlaying {
			m.state = RoomWaiting
		}
		return m, nil
	case tea.KeyRunes:
		for _, r := range strings.ToUpper(string(msg.Runes)) {
			if len(m.input) >= codeLength {
				break
			}
			if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
				m.input += string(r)
			}
		}
	}
	return m, nil
}

func (m RoomModel) handlePlayingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.leave()
		m.back = true
		return m, nil
	}
	if m.player == 0 {
		return m, nil
	}

	action := m.keys.Action(msg)
	if !action.IsGameplay() {
		return m, nil
	}
	err := m.deps.Registry.Enqueue(m.matchID, multiplayer.Command{Player: m.player, Action: action})
	if err != nil && !errors.Is(err, multiplayer.ErrQueueFull) {
		m.deps.Logger.Debug("input rejected", "match", m.matchID, "action", action, "error", err)
	}
	return m, nil
}

// leave detaches from the current match and closes the session.
func (m *RoomModel) leave() {
	if m.matchID != "" {
		m.deps.Registry.Leave(m.matchID, m.session.ID())
	}
	if m.deps.Sessions != nil {
		m.deps.Sessions.Unregister(m.session.ID())
	}
	m.session.Close()
}

func joinError(err error) string {
	switch {
	case errors.Is(err, multiplayer.ErrMatchNotFound):
		return "room not found"
	case errors.Is(err, multiplayer.ErrMatchFull):
		return "room is full"
	case errors.Is(err, multiplayer.ErrMatchStarted), errors.Is(err, multiplayer.ErrMatchEnded):
		return "game already started"
	default:
		return err.Error()
	}
}

// View renders the current step.
func (m RoomModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.state {
	case RoomHosting:
		return m.viewHosting()
	case RoomEnterCode:
		return m.viewEnterCode()
	case RoomWaiting:
		return m.viewLines(
			fmt.Sprintf("Joined room %s as %s", m.code, m.player),
			fmt.Sprintf("Players: %d", m.players),
			"",
			"Waiting for the host to start...",
			"",
			"Esc: leave",
		)
	case RoomPlaying:
		return m.viewBoards()
	case RoomEnded:
		return m.viewEnded()
	}
	return m.viewLines(
		"VERSUS",
		"",
		"H: host a room",
		"J: join with a code",
		"",
		"Esc: back",
	)
}

func (m RoomModel) viewHosting() string {
	joined := "P: join as a player"
	if m.player != 0 {
		joined = fmt.Sprintf("You play as %s", m.player)
	}
	return m.viewLines(
		"Room code",
		"",
		m.deps.Renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("11")).Render(m.code),
		"",
		fmt.Sprintf("Players: %d", m.players),
		"",
		joined,
		"Enter: start now  Esc: close room",
	)
}

func (m RoomModel) viewEnterCode() string {
	shown := m.input + strings.Repeat("_", codeLength-len(m.input))
	return m.viewLines(
		"Enter room code",
		"",
		shown,
		"",
		"Enter: join  Esc: back",
	)
}

func (m RoomModel) viewEnded() string {
	lines := []string{m.ended.Reason.String(), ""}
	for _, r := range m.ended.Results {
		mark := ""
		if r.Player == m.ended.Winner {
			mark = "  WINNER"
		}
		lines = append(lines, fmt.Sprintf("%s %-12s score %6d  lines %3d  level %2d%s",
			r.Player, r.Name, r.Score, r.Lines, r.Level, mark))
	}
	if m.ended.Winner == 0 {
		lines = append(lines, "", "No winner")
	}
	return m.viewLines(append(lines, "", "Enter: back to menu")...)
}

// viewBoards draws every board that fits side by side.
func (m RoomModel) viewBoards() string {
	m.screen.Clear()
	x := 0
	for _, b := range m.boards {
		snap, ok := b.Snapshot.(blockparty.Snapshot)
		if !ok {
			continue
		}
		bw, bh := blockparty.BoardSize(len(firstRow(snap.Grid)), len(snap.Grid))
		if x+bw > m.screen.Width() || bh > m.screen.Height() {
			break
		}
		title := fmt.Sprintf("%s %s", b.Player, b.Name)
		if b.Player == m.player {
			title += " (you)"
		}
		blockparty.RenderSnapshot(m.screen, snap, x, 0, m.theme, title)
		x += bw + 2
	}
	if m.screen.Height() > 0 {
		m.screen.DrawTextCentered(m.screen.Height()-1, fmt.Sprintf("Room %s  Esc: leave", m.code))
	}
	if m.err != "" && m.screen.Height() > 1 {
		m.screen.DrawTextColored(0, m.screen.Height()-2, m.err, core.ColorRed)
	}
	return m.deps.Renderer.Render(m.screen)
}

func (m RoomModel) viewLines(lines ...string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, l := range lines {
		b.WriteString(centerText(l, m.width))
		b.WriteString("\n")
	}
	if m.err != "" {
		b.WriteString("\n")
		errStyle := m.deps.Renderer.NewStyle().Foreground(lipgloss.Color("9"))
		b.WriteString(centerText(errStyle.Render(m.err), m.width))
		b.WriteString("\n")
	}
	return b.String()
}

func firstRow(grid [][]int) []int {
	if len(grid) == 0 {
		return nil
	}
	return grid[0]
}

// State returns the current step.
func (m RoomModel) State() RoomState {
	return m.state
}

// Code returns the room code, once known.
func (m RoomModel) Code() string {
	return m.code
}

// Player returns this session's board, or 0 when only watching.
func (m RoomModel) Player() multiplayer.PlayerID {
	return m.player
}

// BackToMenu reports whether the user left the room flow.
func (m RoomModel) BackToMenu() bool {
	return m.back
}

// IsQuitting reports whether the user quit.
func (m RoomModel) IsQuitting() bool {
	return m.quitting
}
