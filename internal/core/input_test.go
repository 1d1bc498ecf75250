package core

import "testing"

func TestParseAction(t *testing.T) {
	tests := []struct {
		input    string
		expected Action
		wantErr  bool
	}{
		{"left", ActionLeft, false},
		{"right", ActionRight, false},
		{"soft_drop", ActionSoftDrop, false},
		{"hard_drop", ActionHardDrop, false},
		{"rotate_ccw", ActionRotateCCW, false},
		{"rotate_cw", ActionRotateCW, false},
		{"hold", ActionHold, false},
		{"pause", ActionPause, false},
		{"  HOLD ", ActionHold, false},
		{"none", ActionNone, true},
		{"jump", ActionNone, true},
		{"", ActionNone, true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseAction(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseAction(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
			if got != tc.expected {
				t.Errorf("ParseAction(%q) = %v, expected %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestActionStringRoundTrip(t *testing.T) {
	for _, a := range GameplayActions {
		got, err := ParseAction(a.String())
		if err != nil || got != a {
			t.Errorf("ParseAction(%q) = %v, %v; expected %v", a.String(), got, err, a)
		}
		if !a.IsGameplay() {
			t.Errorf("%v.IsGameplay() = false, expected true", a)
		}
	}
	if ActionQuit.IsGameplay() || ActionNone.IsGameplay() {
		t.Error("quit and none must not be gameplay actions")
	}
	if Action(99).String() != "unknown" {
		t.Errorf("Action(99).String() = %q, expected unknown", Action(99).String())
	}
}

func TestInputFrameKeepsOrder(t *testing.T) {
	f := NewInputFrame()
	f.Set(ActionRotateCW)
	f.Set(ActionNone)
	f.Set(ActionHardDrop)
	f.Set(ActionRotateCW)

	got := f.Actions()
	expected := []Action{ActionRotateCW, ActionHardDrop, ActionRotateCW}
	if len(got) != len(expected) {
		t.Fatalf("Actions() = %v, expected %v", got, expected)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Actions()[%d] = %v, expected %v", i, got[i], expected[i])
		}
	}
	if !f.Has(ActionHardDrop) || f.Has(ActionHold) {
		t.Error("Has() reported the wrong membership")
	}

	clone := f.Clone()
	f.Clear()
	if f.Len() != 0 {
		t.Errorf("Len() after Clear = %d, expected 0", f.Len())
	}
	if clone.Len() != 3 {
		t.Errorf("clone Len() = %d, expected 3", clone.Len())
	}
}

func TestTickDuration(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.TickDuration() != 1.0/60.0 {
		t.Errorf("TickDuration() = %v, expected 1/60", cfg.TickDuration())
	}
	cfg.TickRate = 0
	if cfg.TickDuration() != 1.0/60.0 {
		t.Errorf("TickDuration() with zero rate = %v, expected 1/60", cfg.TickDuration())
	}
}
