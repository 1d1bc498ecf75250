package core

import (
	"fmt"
	"strings"
)

// Action is a semantic player intent, decoupled from keys and wire payloads.
type Action int

const (
	ActionNone Action = iota
	ActionLeft
	ActionRight
	ActionSoftDrop
	ActionHardDrop
	ActionRotateCCW
	ActionRotateCW
	ActionHold
	ActionPause
	ActionRestart // local play only
	ActionQuit    // local play only
)

// actionNames are the wire names used by relay payloads and key bindings.
var actionNames = map[Action]string{
	ActionNone:      "none",
	ActionLeft:      "left",
	ActionRight:     "right",
	ActionSoftDrop:  "soft_drop",
	ActionHardDrop:  "hard_drop",
	ActionRotateCCW: "rotate_ccw",
	ActionRotateCW:  "rotate_cw",
	ActionHold:      "hold",
	ActionPause:     "pause",
	ActionRestart:   "restart",
	ActionQuit:      "quit",
}

// String returns the wire name of the action.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// GameplayActions are the commands a remote controller may send.
var GameplayActions = []Action{
	ActionLeft,
	ActionRight,
	ActionSoftDrop,
	ActionHardDrop,
	ActionRotateCCW,
	ActionRotateCW,
	ActionHold,
	ActionPause,
}

// IsGameplay reports whether a remote controller may send the action.
func (a Action) IsGameplay() bool {
	return a >= ActionLeft && a <= ActionPause
}

// ParseAction maps a wire name to an Action. Matching ignores case and
// surrounding whitespace.
func ParseAction(name string) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for a, n := range actionNames {
		if n == name && a != ActionNone {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("core: unknown action %q", name)
}

// InputFrame holds the actions triggered during one simulation tick in the
// order they arrived. Order matters: a rotate followed by a hard drop is not
// the same move as the reverse.
type InputFrame struct {
	actions []Action
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{}
}

// Set appends an action to the frame.
func (f *InputFrame) Set(a Action) {
	if a == ActionNone {
		return
	}
	f.actions = append(f.actions, a)
}

// Has reports whether the action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	for _, got := range f.actions {
		if got == a {
			return true
		}
	}
	return false
}

// Actions returns the triggered actions in arrival order.
func (f InputFrame) Actions() []Action {
	return f.actions
}

// Len returns the number of queued actions.
func (f InputFrame) Len() int {
	return len(f.actions)
}

// Clear resets the frame for the next tick.
func (f *InputFrame) Clear() {
	f.actions = f.actions[:0]
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	return InputFrame{actions: append([]Action(nil), f.actions...)}
}
