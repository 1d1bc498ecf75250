package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/blockparty/internal/config"
)

func appUpdate(t *testing.T, m AppModel, msg tea.Msg) AppModel {
	t.Helper()
	next, _ := m.Update(msg)
	am, ok := next.(AppModel)
	require.True(t, ok)
	return am
}

func TestMenuDifficultyCycles(t *testing.T) {
	deps := testDeps(t)
	deps.Config = config.DefaultConfig()
	m := NewMenuModel(deps)

	assert.Equal(t, config.DifficultyFixed, m.Difficulty())
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(MenuModel)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(MenuModel)
	assert.Equal(t, config.DifficultyNormal, m.Difficulty())
	assert.Equal(t, 5, m.Config().Levels.Start)
	assert.Equal(t, deps.Config.Levels.Start, config.DefaultConfig().Levels.Start, "session config is not mutated")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	next, _ = next.(MenuModel).Update(tea.KeyMsg{Type: tea.KeyLeft})
	next, _ = next.(MenuModel).Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, config.DifficultyHard, next.(MenuModel).Difficulty(), "wraps around")
}

func TestMenuHidesRoomsWithoutRegistry(t *testing.T) {
	m := NewMenuModel(testDeps(t))
	for _, item := range m.items {
		assert.NotEqual(t, ChoiceRoom, item.Choice)
	}

	deps, _ := roomDeps(t, 2)
	m = NewMenuModel(deps)
	var rooms int
	for _, item := range m.items {
		if item.Choice == ChoiceRoom {
			rooms++
		}
	}
	assert.Equal(t, 1, rooms)
}

func TestAppNavigatesScreens(t *testing.T) {
	deps := testDeps(t)
	deps.Config = config.DefaultConfig()
	m := NewAppModel(deps)

	// Scores sit just above Quit at the end of the list.
	for range len(m.menu.items) - 2 {
		m = appUpdate(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	m = appUpdate(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, viewScores, m.view)
	assert.Contains(t, m.View(), "HIGH SCORES")

	m = appUpdate(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	require.Equal(t, viewMenu, m.view)
	assert.Nil(t, m.menu.Selected())

	for range len(m.menu.items) {
		m = appUpdate(t, m, tea.KeyMsg{Type: tea.KeyUp})
	}
	m = appUpdate(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, viewPlay, m.view)
	m = appUpdate(t, m, TickMsg{})
	assert.NotEmpty(t, m.View())

	m = appUpdate(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	assert.Equal(t, viewMenu, m.view)

	next, cmd := m.Update(runeKey('q'))
	assert.True(t, next.(AppModel).quitting)
	require.NotNil(t, cmd)
}
