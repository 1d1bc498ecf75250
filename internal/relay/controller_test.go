package relay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vovakirdan/blockparty/internal/core"
	"github.com/vovakirdan/blockparty/internal/multiplayer"
)

type stubSnapshot struct{}

func (stubSnapshot) IsGameSnapshot() {}

type stubGame struct {
	mu      sync.Mutex
	actions []core.Action
}

func (g *stubGame) Reset(core.RuntimeConfig) {}

func (g *stubGame) Step(in core.InputFrame) core.StepResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.actions = append(g.actions, in.Actions()...)
	return core.StepResult{}
}

func (g *stubGame) State() core.GameState { return core.GameState{} }

func (g *stubGame) Snapshot() multiplayer.GameSnapshot { return stubSnapshot{} }

func (g *stubGame) Actions() []core.Action {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]core.Action(nil), g.actions...)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) replies(t *testing.T) []Reply {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Reply
	sc := bufio.NewScanner(strings.NewReader(b.buf.String()))
	for sc.Scan() {
		var r Reply
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		out = append(out, r)
	}
	return out
}

func hasReply(replies []Reply, typ MessageType) (Reply, bool) {
	for _, r := range replies {
		if r.Type == typ {
			return r, true
		}
	}
	return Reply{}, false
}

func newRegistry(t *testing.T, maxPlayers int) (*multiplayer.Registry, *stubGame) {
	t.Helper()
	game := &stubGame{}
	cfg := multiplayer.DefaultRegistryConfig()
	cfg.Match.TickInterval = time.Millisecond
	cfg.Match.MaxPlayers = maxPlayers
	reg := multiplayer.NewRegistry(cfg, func() multiplayer.BoardGame { return game }, nil)
	t.Cleanup(reg.Stop)
	return reg, game
}

func TestServeRelaysCommandsIntoMatch(t *testing.T) {
	reg, game := newRegistry(t, 1)
	m, err := reg.Create(nil)
	require.NoError(t, err)

	pr, pw := io.Pipe()
	out := &syncBuffer{}
	ctrl := NewController(reg, nil, 1024)

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Serve(context.Background(), "s1", "alice", pr, out)
	}()

	fmt.Fprintln(pw, `this is not json`)
	fmt.Fprintf(pw, `{"type":"join","room":%q}`+"\n", strings.ToLower(m.Code()))
	fmt.Fprintln(pw, `{"type":"input","command":"jump"}`)
	fmt.Fprintln(pw, `{"type":"input","command":"hard_drop"}`)

	require.Eventually(t, func() bool {
		return len(game.Actions()) == 1
	}, 5*time.Second, time.Millisecond)
	assert.Equal(t, []core.Action{core.ActionHardDrop}, game.Actions())

	require.Eventually(t, func() bool {
		_, ok := hasReply(out.replies(t), TypeStart)
		return ok
	}, 5*time.Second, time.Millisecond)

	require.NoError(t, pw.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after EOF")
	}

	replies := out.replies(t)
	joined, ok := hasReply(replies, TypeJoined)
	require.True(t, ok)
	assert.Equal(t, m.Code(), joined.Room)
	assert.Equal(t, 1, joined.Player)
	assert.Equal(t, "alice", joined.Name)

	_, ok = hasReply(replies, TypeError)
	assert.False(t, ok, "malformed lines are dropped without a reply")

	select {
	case <-m.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("match should end when its only controller disconnects")
	}
}

func TestServeRejectsBadRequests(t *testing.T) {
	reg, _ := newRegistry(t, 2)
	m, err := reg.Create(nil)
	require.NoError(t, err)

	in := strings.Join([]string{
		`{"type":"input","command":"left"}`,
		`{"type":"join","room":"NOPE00"}`,
		fmt.Sprintf(`{"type":"join","room":%q}`, m.Code()),
		fmt.Sprintf(`{"type":"join","room":%q}`, m.Code()),
		`{"type":"leave"}`,
		`{"type":"leave"}`,
	}, "\n")
	out := &syncBuffer{}
	ctrl := NewController(reg, nil, 64)
	require.NoError(t, ctrl.Serve(context.Background(), "s1", "", strings.NewReader(in), out))

	var types []MessageType
	var messages []string
	for _, r := range out.replies(t) {
		types = append(types, r.Type)
		messages = append(messages, r.Message)
	}
	assert.Equal(t, []MessageType{TypeError, TypeError, TypeJoined, TypeError, TypeLeft, TypeError}, types)
	assert.Equal(t, "not in a room", messages[0])
	assert.Equal(t, "room not found", messages[1])
	assert.Equal(t, "already in a room", messages[3])
	assert.Zero(t, m.Players(), "leave removes the player")
}

func TestServeRejectsOverlongLines(t *testing.T) {
	reg, _ := newRegistry(t, 2)
	ctrl := NewController(reg, nil, 64)
	line := `{"type":"join","room":"` + strings.Repeat("A", MaxLineSize) + `"}`
	err := ctrl.Serve(context.Background(), "s1", "", strings.NewReader(line), io.Discard)
	assert.ErrorIs(t, err, bufio.ErrTooLong)
}
