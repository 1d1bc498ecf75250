package registry

import (
	"testing"

	"github.com/vovakirdan/blockparty/internal/core"
)

type stubGame struct{ id string }

func (g *stubGame) ID() string                           { return g.id }
func (g *stubGame) Title() string                        { return "Stub " + g.id }
func (g *stubGame) Reset(core.RuntimeConfig)             {}
func (g *stubGame) Step(core.InputFrame) core.StepResult { return core.StepResult{} }
func (g *stubGame) Render(*core.Screen)                  {}
func (g *stubGame) State() core.GameState                { return core.GameState{} }

func TestRegisterAndCreate(t *testing.T) {
	Register("stub_b", func() Game { return &stubGame{id: "stub_b"} })
	Register("stub_a", func() Game { return &stubGame{id: "stub_a"} })

	if !Exists("stub_a") {
		t.Fatal("Exists(stub_a) = false, expected true")
	}

	g, err := Create("stub_a")
	if err != nil {
		t.Fatalf("Create(stub_a) error = %v", err)
	}
	if g.ID() != "stub_a" {
		t.Errorf("ID() = %q, expected stub_a", g.ID())
	}

	info, ok := Lookup("stub_b")
	if !ok || info.Title != "Stub stub_b" {
		t.Errorf("Lookup(stub_b) = %+v, %v", info, ok)
	}

	list := List()
	for i := 1; i < len(list); i++ {
		if list[i-1].ID > list[i].ID {
			t.Errorf("List() not sorted: %q before %q", list[i-1].ID, list[i].ID)
		}
	}
}

func TestCreateUnknown(t *testing.T) {
	if _, err := Create("missing"); err == nil {
		t.Error("Create(missing) should fail")
	}
	if _, ok := Lookup("missing"); ok {
		t.Error("Lookup(missing) should report false")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("stub_dup", func() Game { return &stubGame{id: "stub_dup"} })
	defer func() {
		if recover() == nil {
			t.Error("Register() of a duplicate ID should panic")
		}
	}()
	Register("stub_dup", func() Game { return &stubGame{id: "stub_dup"} })
}
