package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/vovakirdan/blockparty/internal/core"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestGameKeyMapAction(t *testing.T) {
	keys := DefaultGameKeyMap()
	tests := []struct {
		msg  tea.KeyMsg
		want core.Action
	}{
		{tea.KeyMsg{Type: tea.KeyLeft}, core.ActionLeft},
		{runeKey('a'), core.ActionLeft},
		{tea.KeyMsg{Type: tea.KeyRight}, core.ActionRight},
		{runeKey('d'), core.ActionRight},
		{tea.KeyMsg{Type: tea.KeyDown}, core.ActionSoftDrop},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, core.ActionHardDrop},
		{runeKey('z'), core.ActionRotateCCW},
		{tea.KeyMsg{Type: tea.KeyUp}, core.ActionRotateCW},
		{runeKey('x'), core.ActionRotateCW},
		{runeKey('c'), core.ActionHold},
		{runeKey('p'), core.ActionPause},
		{runeKey('r'), core.ActionRestart},
		{runeKey('q'), core.ActionQuit},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit},
		{tea.KeyMsg{Type: tea.KeyEscape}, core.ActionNone},
		{runeKey('m'), core.ActionNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, keys.Action(tt.msg), "key %q", tt.msg.String())
	}
}

func TestMenuKeyMapAction(t *testing.T) {
	keys := DefaultMenuKeyMap()
	assert.Equal(t, MenuActionUp, keys.MenuAction(runeKey('k')))
	assert.Equal(t, MenuActionDown, keys.MenuAction(tea.KeyMsg{Type: tea.KeyDown}))
	assert.Equal(t, MenuActionLeft, keys.MenuAction(tea.KeyMsg{Type: tea.KeyLeft}))
	assert.Equal(t, MenuActionRight, keys.MenuAction(runeKey('l')))
	assert.Equal(t, MenuActionSelect, keys.MenuAction(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Equal(t, MenuActionBack, keys.MenuAction(tea.KeyMsg{Type: tea.KeyEscape}))
	assert.Equal(t, MenuActionQuit, keys.MenuAction(runeKey('q')))
	assert.Equal(t, MenuActionNone, keys.MenuAction(runeKey('x')))
}
