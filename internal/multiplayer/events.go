package multiplayer

// SessionEvent is an event sent from a match or the registry to a session.
type SessionEvent interface {
	sessionEvent()
}

// MatchCreatedEvent is sent to the host when its room is registered.
type MatchCreatedEvent struct {
	MatchID MatchID
	Code    string
}

func (MatchCreatedEvent) sessionEvent() {}

// PlayerJoinedEvent is sent to everyone in the room when a controller joins.
type PlayerJoinedEvent struct {
	MatchID MatchID
	Player  PlayerID
	Name    string
	Players int // players in the room after the join
}

func (PlayerJoinedEvent) sessionEvent() {}

// PlayerLeftEvent is sent when a controller leaves before the match starts.
type PlayerLeftEvent struct {
	MatchID MatchID
	Player  PlayerID
	Players int
}

func (PlayerLeftEvent) sessionEvent() {}

// MatchStartedEvent is sent when the tick loop begins.
type MatchStartedEvent struct {
	MatchID MatchID
	Code    string
	Players int
}

func (MatchStartedEvent) sessionEvent() {}

// PlayerResult is the final state of one board.
type PlayerResult struct {
	Player PlayerID
	Name   string
	Score  int
	Lines  int
	Level  int
	Lost   bool
}

// MatchEndedEvent is sent when the match ends, for any reason.
type MatchEndedEvent struct {
	MatchID MatchID
	Reason  MatchEndReason
	Winner  PlayerID // 0 if no winner
	Results []PlayerResult
}

func (MatchEndedEvent) sessionEvent() {}

// ErrorEvent reports a failed request to the session that made it.
type ErrorEvent struct {
	Message string
}

func (ErrorEvent) sessionEvent() {}

// MatchEndReason describes why a match ended.
type MatchEndReason int

const (
	MatchEndReasonCompleted  MatchEndReason = iota // a board topped out
	MatchEndReasonDisconnect                       // a player disconnected
	MatchEndReasonCancelled                        // cancelled or server shutdown
	MatchEndReasonHostLeft                         // the host stopped watching
	MatchEndReasonExpired                          // reaped before it started
)

func (r MatchEndReason) String() string {
	switch r {
	case MatchEndReasonCompleted:
		return "Match completed"
	case MatchEndReasonDisconnect:
		return "Player disconnected"
	case MatchEndReasonCancelled:
		return "Match cancelled"
	case MatchEndReasonHostLeft:
		return "Host left"
	case MatchEndReasonExpired:
		return "Room expired"
	default:
		return "Unknown"
	}
}

// BoardSnapshot is one player's board in a SnapshotEvent.
type BoardSnapshot struct {
	Player   PlayerID
	Name     string
	Snapshot GameSnapshot
}

// SnapshotEvent carries every board after a tick, ordered by player.
type SnapshotEvent struct {
	MatchID MatchID
	Tick    uint64
	Boards  []BoardSnapshot
}

func (SnapshotEvent) sessionEvent() {}

// GameSnapshot is the interface for game-specific snapshot data.
type GameSnapshot interface {
	IsGameSnapshot() // Marker method for type safety
}
