package multiplayer

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

var (
	ErrRegistryFull    = errors.New("multiplayer: too many matches")
	ErrRegistryStopped = errors.New("multiplayer: registry stopped")
	ErrMatchNotFound   = errors.New("multiplayer: match not found")
)

// RegistryConfig holds the registry limits.
type RegistryConfig struct {
	Match      MatchConfig
	MaxMatches int
	ReapPeriod time.Duration // how often idle matches are checked
}

// DefaultRegistryConfig returns sensible defaults.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		Match:      DefaultMatchConfig(),
		MaxMatches: 225,
		ReapPeriod: time.Second,
	}
}

// MatchResultSaver persists finished matches. Implemented by storage, so
// this package never depends on it.
type MatchResultSaver interface {
	SaveMatchResult(result MatchResult) error
}

// MatchInfo is a read-only summary of a registered match.
type MatchInfo struct {
	ID        MatchID
	Code      string
	Players   int
	Running   bool
	ExpiresAt time.Time
}

// Registry owns every match of a server. A single mutex guards the maps;
// match state is never touched while holding it.
type Registry struct {
	cfg     RegistryConfig
	factory GameFactory
	logger  *log.Logger
	saver   MatchResultSaver

	mu      sync.Mutex
	matches map[MatchID]*Match
	codes   map[string]MatchID
	stopped bool // set under mu; no goroutine is tracked after it

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
	seq      atomic.Uint64
}

// NewRegistry creates a registry. Call Start to run the reaper and Stop to
// cancel every match.
func NewRegistry(cfg RegistryConfig, factory GameFactory, logger *log.Logger) *Registry {
	cfg.Match = cfg.Match.withDefaults()
	if cfg.MaxMatches < 1 {
		cfg.MaxMatches = DefaultRegistryConfig().MaxMatches
	}
	if cfg.ReapPeriod <= 0 {
		cfg.ReapPeriod = DefaultRegistryConfig().ReapPeriod
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		cfg:     cfg,
		factory: factory,
		logger:  logger,
		matches: make(map[MatchID]*Match),
		codes:   make(map[string]MatchID),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetResultSaver sets the optional match result saver.
func (r *Registry) SetResultSaver(saver MatchResultSaver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saver = saver
}

// Start runs the reaper until ctx is done or Stop is called.
func (r *Registry) Start(ctx context.Context) {
	if !r.track() {
		return
	}
	go func() {
		defer r.wg.Done()
		r.reapLoop(ctx)
	}()
}

// Stop cancels all running matches and waits for their loops, the reaper
// and pending saves.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.stopped = true
		r.mu.Unlock()
		r.cancel()
		r.wg.Wait()
		r.logger.Info("registry stopped")
	})
}

// Create registers a new idle match. host may be nil for headless rooms.
func (r *Registry) Create(host SessionHandle) (*Match, error) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil, ErrRegistryStopped
	}
	if len(r.matches) >= r.cfg.MaxMatches {
		r.mu.Unlock()
		return nil, ErrRegistryFull
	}
	code := r.uniqueCode()
	id := MatchID(fmt.Sprintf("match-%s-%d", code, r.seq.Add(1)))
	m := NewMatch(id, code, r.cfg.Match, r.factory, r.logger)
	r.matches[id] = m
	r.codes[code] = id
	r.mu.Unlock()

	if host != nil {
		_ = m.Watch(host)
		host.Send(MatchCreatedEvent{MatchID: id, Code: code})
	}
	r.logger.Info("match created", "match", id, "code", code)
	return m, nil
}

// Join adds a session to the match with the given code. A full match
// starts immediately.
func (r *Registry) Join(code string, s SessionHandle) (*Match, PlayerID, error) {
	m, ok := r.Lookup(code)
	if !ok {
		return nil, 0, ErrMatchNotFound
	}
	id, err := m.Join(s)
	if err != nil {
		return nil, 0, err
	}
	if m.Full() {
		if err := r.launch(m); err != nil && !errors.Is(err, ErrMatchStarted) {
			r.logger.Warn("cannot start match", "match", m.ID(), "err", err)
		}
	}
	return m, id, nil
}

// StartMatch starts a match that is not yet full.
func (r *Registry) StartMatch(id MatchID) error {
	m, ok := r.Get(id)
	if !ok {
		return ErrMatchNotFound
	}
	return r.launch(m)
}

func (r *Registry) launch(m *Match) error {
	if !r.track() {
		return ErrRegistryStopped
	}
	if err := m.begin(); err != nil {
		r.wg.Done()
		return err
	}
	go func() {
		defer r.wg.Done()
		m.loop(r.ctx, r.matchDone)
	}()
	return nil
}

// Enqueue routes a command to a match's input queue.
func (r *Registry) Enqueue(id MatchID, cmd Command) error {
	m, ok := r.Get(id)
	if !ok {
		return ErrMatchNotFound
	}
	return m.Enqueue(cmd)
}

// Leave detaches a session from a match, dropping the match if that ended it.
func (r *Registry) Leave(id MatchID, session SessionID) {
	m, ok := r.Get(id)
	if !ok {
		return
	}
	if m.Leave(session) {
		r.forget(m)
	}
}

// Get returns a match by ID.
func (r *Registry) Get(id MatchID) (*Match, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	return m, ok
}

// Lookup returns a match by join code. Codes are case-insensitive.
func (r *Registry) Lookup(code string) (*Match, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.codes[normalizeCode(code)]
	if !ok {
		return nil, false
	}
	m, ok := r.matches[id]
	return m, ok
}

// Remove cancels a match and drops it from the registry.
func (r *Registry) Remove(id MatchID) bool {
	m, ok := r.Get(id)
	if !ok {
		return false
	}
	if !m.closeIdle(MatchEndReasonCancelled) {
		m.Cancel()
	}
	return r.forget(m)
}

// List returns summaries of all matches, sorted by code.
func (r *Registry) List() []MatchInfo {
	r.mu.Lock()
	matches := make([]*Match, 0, len(r.matches))
	for _, m := range r.matches {
		matches = append(matches, m)
	}
	r.mu.Unlock()

	infos := make([]MatchInfo, 0, len(matches))
	for _, m := range matches {
		infos = append(infos, MatchInfo{
			ID:        m.ID(),
			Code:      m.Code(),
			Players:   m.Players(),
			Running:   m.Running(),
			ExpiresAt: m.ExpiresAt(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Code < infos[j].Code })
	return infos
}

// Count returns the number of registered matches.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.matches)
}

// Reap removes idle matches whose deadline passed and returns how many were
// removed. A match that started in the meantime is skipped.
func (r *Registry) Reap(now time.Time) int {
	r.mu.Lock()
	candidates := make([]*Match, 0, len(r.matches))
	for _, m := range r.matches {
		candidates = append(candidates, m)
	}
	r.mu.Unlock()

	removed := 0
	for _, m := range candidates {
		if !m.Expired(now) || !m.closeIdle(MatchEndReasonExpired) {
			continue
		}
		if r.forget(m) {
			removed++
		}
	}
	if removed > 0 {
		r.logger.Info("reaped idle matches", "count", removed)
	}
	return removed
}

func (r *Registry) reapLoop(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.ReapPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Reap(time.Now())
		case <-ctx.Done():
			return
		case <-r.ctx.Done():
			return
		}
	}
}

func (r *Registry) matchDone(result MatchResult) {
	r.mu.Lock()
	delete(r.matches, result.MatchID)
	if r.codes[result.Code] == result.MatchID {
		delete(r.codes, result.Code)
	}
	saver := r.saver
	r.mu.Unlock()

	if saver == nil || len(result.Results) == 0 {
		return
	}
	// The calling loop is still tracked, so Stop has not finished waiting.
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := saver.SaveMatchResult(result); err != nil {
			r.logger.Error("failed to save match result", "match", result.MatchID, "err", err)
		}
	}()
}

// track registers a goroutine with Stop, or reports false once stopped.
func (r *Registry) track() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return false
	}
	r.wg.Add(1)
	return true
}

func (r *Registry) forget(m *Match) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[m.ID()]; !ok {
		return false
	}
	delete(r.matches, m.ID())
	if r.codes[m.Code()] == m.ID() {
		delete(r.codes, m.Code())
	}
	return true
}

// uniqueCode must be called with the lock held.
func (r *Registry) uniqueCode() string {
	for {
		code := generateJoinCode()
		if _, exists := r.codes[code]; !exists {
			return code
		}
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// generateJoinCode creates a 6-character code from the base32 alphabet.
func generateJoinCode() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	return base32.StdEncoding.EncodeToString(b)[:6]
}
