package multiplayer

import (
	"sort"
	"sync"
	"sync/atomic"
)

// SessionHandle is the transport-neutral side of a connection. Matches and
// the registry talk to SSH sessions, relay controllers and local models only
// through it.
type SessionHandle interface {
	// ID returns the unique session identifier.
	ID() SessionID

	// Name returns the display name shown on the board.
	Name() string

	// Send delivers an event without blocking.
	Send(evt SessionEvent)

	// Done returns a channel that closes when the session ends.
	Done() <-chan struct{}
}

// ChannelSession is a SessionHandle backed by a buffered channel. When the
// reader falls behind, the oldest event is dropped.
type ChannelSession struct {
	id       SessionID
	name     string
	events   chan SessionEvent
	done     chan struct{}
	doneOnce sync.Once
	dropped  atomic.Uint64
}

// NewChannelSession creates a session buffering up to size events.
func NewChannelSession(id SessionID, name string, size int) *ChannelSession {
	if size < 1 {
		size = 64
	}
	if name == "" {
		name = string(id)
	}
	return &ChannelSession{
		id:     id,
		name:   name,
		events: make(chan SessionEvent, size),
		done:   make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *ChannelSession) ID() SessionID {
	return s.id
}

// Name returns the display name.
func (s *ChannelSession) Name() string {
	return s.name
}

// Send queues an event. Closed sessions ignore it.
func (s *ChannelSession) Send(evt SessionEvent) {
	select {
	case <-s.done:
		return
	default:
	}

	for range 2 {
		select {
		case s.events <- evt:
			return
		default:
		}
		select {
		case <-s.events:
			s.dropped.Add(1)
		default:
		}
	}
}

// Events returns the channel to receive events from.
func (s *ChannelSession) Events() <-chan SessionEvent {
	return s.events
}

// Dropped returns how many events were discarded to make room.
func (s *ChannelSession) Dropped() uint64 {
	return s.dropped.Load()
}

// Done returns the done channel.
func (s *ChannelSession) Done() <-chan struct{} {
	return s.done
}

// Close marks the session as done. Safe to call multiple times.
func (s *ChannelSession) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

// SessionRegistry tracks connected sessions for the server.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[SessionID]SessionHandle
}

// NewSessionRegistry creates an empty session registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[SessionID]SessionHandle),
	}
}

// Register adds a session.
func (r *SessionRegistry) Register(session SessionHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID()] = session
}

// Unregister removes a session.
func (r *SessionRegistry) Unregister(id SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Get retrieves a session by ID.
func (r *SessionRegistry) Get(id SessionID) (SessionHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// List returns the registered session IDs, sorted.
func (r *SessionRegistry) List() []SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]SessionID, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Count returns the number of registered sessions.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
