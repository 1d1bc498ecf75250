package multiplayer

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/blockparty/internal/core"
)

var (
	ErrMatchFull      = errors.New("multiplayer: match is full")
	ErrMatchStarted   = errors.New("multiplayer: match already started")
	ErrMatchEnded     = errors.New("multiplayer: match has ended")
	ErrNoPlayers      = errors.New("multiplayer: no players joined")
	ErrAlreadyJoined  = errors.New("multiplayer: session already joined")
	ErrQueueFull      = errors.New("multiplayer: input queue full")
	ErrUnknownPlayer  = errors.New("multiplayer: unknown player")
	ErrInvalidCommand = errors.New("multiplayer: command not allowed")
)

// MatchConfig holds the per-match limits.
type MatchConfig struct {
	TickInterval time.Duration // one simulation step
	InputLimit   int           // commands drained per tick
	QueueSize    int           // bounded input queue capacity
	MaxPlayers   int
	ExpireAfter  time.Duration // idle rooms are reaped after this
	Runtime      core.RuntimeConfig
}

// DefaultMatchConfig returns the relay defaults: 60 ticks per second, eight
// commands per tick, two players.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		TickInterval: time.Second / 60,
		InputLimit:   8,
		QueueSize:    64,
		MaxPlayers:   2,
		ExpireAfter:  6 * time.Minute,
		Runtime:      core.DefaultConfig(),
	}
}

func (c MatchConfig) withDefaults() MatchConfig {
	def := DefaultMatchConfig()
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	if c.InputLimit < 1 {
		c.InputLimit = def.InputLimit
	}
	if c.QueueSize < 1 {
		c.QueueSize = def.QueueSize
	}
	if c.MaxPlayers < 1 {
		c.MaxPlayers = def.MaxPlayers
	}
	if c.ExpireAfter <= 0 {
		c.ExpireAfter = def.ExpireAfter
	}
	if c.Runtime.TickRate <= 0 {
		c.Runtime = def.Runtime
	}
	return c
}

// MatchResult contains the outcome of a finished match.
type MatchResult struct {
	MatchID  MatchID
	Code     string
	Reason   MatchEndReason
	Winner   PlayerID
	Results  []PlayerResult
	Ticks    uint64
	Duration time.Duration
}

type player struct {
	id      PlayerID
	session SessionHandle
	game    BoardGame
}

// Match is one relay room. Until it starts it collects players; once
// running, its boards belong to the tick loop and are reached only through
// the input queue.
type Match struct {
	id      MatchID
	code    string
	cfg     MatchConfig
	factory GameFactory
	logger  *log.Logger

	inputs    chan Command
	leaving   chan SessionID
	running   atomic.Bool
	cancelled atomic.Bool
	ticks     atomic.Uint64

	mu        sync.Mutex
	host      SessionHandle
	players   []*player
	watchers  []SessionHandle
	expiresAt time.Time
	startedAt time.Time
	ended     bool

	done     chan struct{}
	doneOnce sync.Once
}

// NewMatch creates an idle match. A nil logger discards output. A zero
// runtime seed is replaced by a per-match one; every board of the match
// shares the seed, so players get the same piece sequence.
func NewMatch(id MatchID, code string, cfg MatchConfig, factory GameFactory, logger *log.Logger) *Match {
	cfg = cfg.withDefaults()
	if cfg.Runtime.Seed == 0 {
		cfg.Runtime.Seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Match{
		id:        id,
		code:      code,
		cfg:       cfg,
		factory:   factory,
		logger:    logger.With("match", id),
		inputs:    make(chan Command, cfg.QueueSize),
		leaving:   make(chan SessionID, cfg.MaxPlayers+1),
		expiresAt: time.Now().Add(cfg.ExpireAfter),
		done:      make(chan struct{}),
	}
}

// ID returns the match identifier.
func (m *Match) ID() MatchID {
	return m.id
}

// Code returns the join code.
func (m *Match) Code() string {
	return m.code
}

// Running reports whether the tick loop is active.
func (m *Match) Running() bool {
	return m.running.Load()
}

// Ticks returns the number of simulation ticks run so far.
func (m *Match) Ticks() uint64 {
	return m.ticks.Load()
}

// Done is closed once the match has ended.
func (m *Match) Done() <-chan struct{} {
	return m.done
}

// ExpiresAt returns the reaping deadline for an idle match.
func (m *Match) ExpiresAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiresAt
}

// Expired reports whether the match is idle past its deadline.
func (m *Match) Expired(now time.Time) bool {
	if m.Running() {
		return false
	}
	return !now.Before(m.ExpiresAt())
}

// Players returns the number of joined players.
func (m *Match) Players() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.players)
}

// Full reports whether no more players can join.
func (m *Match) Full() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.players) >= m.cfg.MaxPlayers
}

// Watch attaches a spectator. The first watcher is the host: when it leaves,
// the match ends.
func (m *Match) Watch(s SessionHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ended {
		return ErrMatchEnded
	}
	if m.host == nil {
		m.host = s
	}
	m.watchers = append(m.watchers, s)
	return nil
}

// Join adds a player with a fresh board. Players take the lowest free
// number. Every board is reset with the same runtime config, so all players
// get the same piece sequence.
func (m *Match) Join(s SessionHandle) (PlayerID, error) {
	m.mu.Lock()
	switch {
	case m.ended:
		m.mu.Unlock()
		return 0, ErrMatchEnded
	case m.running.Load():
		m.mu.Unlock()
		return 0, ErrMatchStarted
	case len(m.players) >= m.cfg.MaxPlayers:
		m.mu.Unlock()
		return 0, ErrMatchFull
	}
	for _, p := range m.players {
		if p.session.ID() == s.ID() {
			m.mu.Unlock()
			return 0, ErrAlreadyJoined
		}
	}

	id := m.freeID()
	game := m.factory()
	game.Reset(m.cfg.Runtime)
	m.players = append(m.players, &player{id: id, session: s, game: game})
	slices.SortFunc(m.players, func(a, b *player) int { return int(a.id - b.id) })
	m.expiresAt = time.Now().Add(m.cfg.ExpireAfter)
	count := len(m.players)
	m.mu.Unlock()

	m.logger.Info("player joined", "player", id, "session", s.ID(), "players", count)
	m.broadcast(PlayerJoinedEvent{MatchID: m.id, Player: id, Name: s.Name(), Players: count})
	return id, nil
}

// freeID must be called with the lock held.
func (m *Match) freeID() PlayerID {
	for id := Player1; ; id++ {
		taken := false
		for _, p := range m.players {
			if p.id == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}

// Leave detaches a session. While running, a leaving player ends the match
// on the next tick. Before the start, players are simply removed, and the
// host leaving closes the room. It reports whether the match has ended.
func (m *Match) Leave(id SessionID) bool {
	if m.Running() {
		select {
		case m.leaving <- id:
		default:
		}
		return false
	}

	m.mu.Lock()
	if m.ended {
		m.mu.Unlock()
		return true
	}
	if m.host != nil && m.host.ID() == id {
		m.mu.Unlock()
		return m.closeIdle(MatchEndReasonHostLeft)
	}

	var left PlayerID
	m.players = slices.DeleteFunc(m.players, func(p *player) bool {
		if p.session.ID() == id {
			left = p.id
			return true
		}
		return false
	})
	m.watchers = slices.DeleteFunc(m.watchers, func(s SessionHandle) bool {
		return s.ID() == id
	})
	count := len(m.players)
	m.mu.Unlock()

	if left != 0 {
		m.logger.Info("player left", "player", left, "players", count)
		m.broadcast(PlayerLeftEvent{MatchID: m.id, Player: left, Players: count})
	}
	return false
}

// Enqueue queues a controller command for the next ticks. It never blocks:
// when the queue is full the command is dropped.
func (m *Match) Enqueue(cmd Command) error {
	if !cmd.Action.IsGameplay() {
		return ErrInvalidCommand
	}

	m.mu.Lock()
	ended := m.ended
	known := slices.ContainsFunc(m.players, func(p *player) bool { return p.id == cmd.Player })
	m.mu.Unlock()

	if ended {
		return ErrMatchEnded
	}
	if !known {
		return ErrUnknownPlayer
	}

	select {
	case m.inputs <- cmd:
		return nil
	default:
		m.logger.Warn("input queue full, dropping command", "player", cmd.Player, "action", cmd.Action)
		return ErrQueueFull
	}
}

// Cancel asks the tick loop to stop after the current tick.
func (m *Match) Cancel() {
	m.cancelled.Store(true)
}

// Run marks the match running and blocks in the tick loop until it ends.
// onDone, if set, receives the result after the end event was broadcast.
func (m *Match) Run(ctx context.Context, onDone func(MatchResult)) error {
	if err := m.begin(); err != nil {
		return err
	}
	m.loop(ctx, onDone)
	return nil
}

// begin flips the match to running. Holding the lock makes it exclusive
// with closeIdle, so a reaped match never starts and a started match is
// never reaped.
func (m *Match) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ended {
		return ErrMatchEnded
	}
	if len(m.players) == 0 {
		return ErrNoPlayers
	}
	if !m.running.CompareAndSwap(false, true) {
		return ErrMatchStarted
	}
	m.startedAt = time.Now()
	return nil
}

func (m *Match) loop(ctx context.Context, onDone func(MatchResult)) {
	m.mu.Lock()
	players := slices.Clone(m.players)
	m.mu.Unlock()

	m.logger.Info("match started", "players", len(players))
	m.broadcast(MatchStartedEvent{MatchID: m.id, Code: m.code, Players: len(players)})

	ticker := time.NewTicker(m.cfg.TickInterval)
	defer ticker.Stop()

	var result MatchResult
	for {
		if m.cancelled.Load() {
			result = m.finish(players, MatchEndReasonCancelled, 0)
			break
		}

		select {
		case <-ctx.Done():
			result = m.finish(players, MatchEndReasonCancelled, 0)
		case id := <-m.leaving:
			if p := findSession(players, id); p != nil {
				result = m.finish(players, MatchEndReasonDisconnect, p.id)
			} else if m.dropWatcher(id) {
				result = m.finish(players, MatchEndReasonHostLeft, 0)
			} else {
				continue
			}
		case <-ticker.C:
			if reason, culprit, gone := m.checkSessions(players); gone {
				result = m.finish(players, reason, culprit)
			} else if m.step(players) {
				result = m.finish(players, MatchEndReasonCompleted, 0)
			} else {
				continue
			}
		}
		break
	}

	if onDone != nil {
		onDone(result)
	}
}

// step drains at most InputLimit commands, advances every board once and
// broadcasts the boards. It reports whether any board is over.
func (m *Match) step(players []*player) bool {
	frames := make([]core.InputFrame, len(players))

drain:
	for range m.cfg.InputLimit {
		select {
		case cmd := <-m.inputs:
			if i := slices.IndexFunc(players, func(p *player) bool { return p.id == cmd.Player }); i >= 0 {
				frames[i].Set(cmd.Action)
			}
		default:
			break drain
		}
	}

	tick := m.ticks.Add(1)
	over := false
	boards := make([]BoardSnapshot, len(players))
	for i, p := range players {
		res := p.game.Step(frames[i])
		if res.State.GameOver {
			over = true
		}
		boards[i] = BoardSnapshot{Player: p.id, Name: p.session.Name(), Snapshot: p.game.Snapshot()}
	}

	m.broadcast(SnapshotEvent{MatchID: m.id, Tick: tick, Boards: boards})
	return over
}

// checkSessions looks for closed player or host sessions between ticks.
func (m *Match) checkSessions(players []*player) (MatchEndReason, PlayerID, bool) {
	for _, p := range players {
		select {
		case <-p.session.Done():
			return MatchEndReasonDisconnect, p.id, true
		default:
		}
	}

	m.mu.Lock()
	host := m.host
	m.mu.Unlock()
	if host != nil {
		select {
		case <-host.Done():
			return MatchEndReasonHostLeft, 0, true
		default:
		}
	}
	return 0, 0, false
}

// dropWatcher removes a spectator and reports whether it was the host.
func (m *Match) dropWatcher(id SessionID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchers = slices.DeleteFunc(m.watchers, func(s SessionHandle) bool {
		return s.ID() == id
	})
	return m.host != nil && m.host.ID() == id
}

// finish ends a running match. culprit is the disconnected player, if any.
func (m *Match) finish(players []*player, reason MatchEndReason, culprit PlayerID) MatchResult {
	results := make([]PlayerResult, len(players))
	for i, p := range players {
		st := p.game.State()
		results[i] = PlayerResult{
			Player: p.id,
			Name:   p.session.Name(),
			Score:  st.Score,
			Lines:  st.Lines,
			Level:  st.Level,
			Lost:   st.GameOver,
		}
	}

	var winner PlayerID
	if reason == MatchEndReasonCompleted || reason == MatchEndReasonDisconnect {
		winner = pickWinner(results, culprit)
	}

	m.mu.Lock()
	m.ended = true
	started := m.startedAt
	m.mu.Unlock()
	m.running.Store(false)

	result := MatchResult{
		MatchID:  m.id,
		Code:     m.code,
		Reason:   reason,
		Winner:   winner,
		Results:  results,
		Ticks:    m.ticks.Load(),
		Duration: time.Since(started),
	}
	m.logger.Info("match ended", "reason", reason, "winner", winner, "ticks", result.Ticks)
	m.broadcast(MatchEndedEvent{MatchID: m.id, Reason: reason, Winner: winner, Results: results})
	m.closeDone()
	return result
}

// closeIdle ends a match that never started. It reports false if the match
// is running or already over.
func (m *Match) closeIdle(reason MatchEndReason) bool {
	m.mu.Lock()
	if m.ended || m.running.Load() {
		m.mu.Unlock()
		return false
	}
	m.ended = true
	m.mu.Unlock()

	m.logger.Info("room closed", "reason", reason)
	m.broadcast(MatchEndedEvent{MatchID: m.id, Reason: reason})
	m.closeDone()
	return true
}

func (m *Match) closeDone() {
	m.doneOnce.Do(func() {
		close(m.done)
	})
}

// broadcast sends evt to every player and watcher.
func (m *Match) broadcast(evt SessionEvent) {
	m.mu.Lock()
	targets := make([]SessionHandle, 0, len(m.players)+len(m.watchers))
	for _, p := range m.players {
		targets = append(targets, p.session)
	}
	targets = append(targets, m.watchers...)
	m.mu.Unlock()

	for _, s := range targets {
		s.Send(evt)
	}
}

func findSession(players []*player, id SessionID) *player {
	for _, p := range players {
		if p.session.ID() == id {
			return p
		}
	}
	return nil
}

// pickWinner prefers boards still alive, then the highest score. Solo
// matches have no winner.
func pickWinner(results []PlayerResult, culprit PlayerID) PlayerID {
	if len(results) < 2 {
		return 0
	}
	var best *PlayerResult
	for i := range results {
		r := &results[i]
		if r.Player == culprit {
			continue
		}
		switch {
		case best == nil:
			best = r
		case best.Lost && !r.Lost:
			best = r
		case best.Lost == r.Lost && r.Score > best.Score:
			best = r
		}
	}
	if best == nil {
		return 0
	}
	return best.Player
}
