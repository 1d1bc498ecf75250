// Package relay implements the controller side of the multiplayer relay: a
// line protocol of JSON objects that joins a room and feeds commands into a
// match's input queue.
//
// Requests, one per line:
//
//	{"type":"join","room":"ABC123","name":"alice"}
//	{"type":"input","command":"rotate_cw"}
//	{"type":"leave"}
//
// Replies use the same framing with types joined, left, start, end and error.
package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vovakirdan/blockparty/internal/core"
)

var (
	ErrMalformed   = errors.New("relay: malformed payload")
	ErrUnknownType = errors.New("relay: unknown message type")
	ErrMissingRoom = errors.New("relay: missing room code")
)

// MessageType tags requests and replies.
type MessageType string

const (
	TypeJoin  MessageType = "join"
	TypeInput MessageType = "input"
	TypeLeave MessageType = "leave"

	TypeJoined MessageType = "joined"
	TypeLeft   MessageType = "left"
	TypeStart  MessageType = "start"
	TypeEnd    MessageType = "end"
	TypeError  MessageType = "error"
)

// Request is a decoded controller message.
type Request struct {
	Type    MessageType `json:"type"`
	Room    string      `json:"room,omitempty"`
	Name    string      `json:"name,omitempty"`
	Command string      `json:"command,omitempty"`

	// Action is the parsed command of an input request.
	Action core.Action `json:"-"`
}

// Reply is sent back to the controller.
type Reply struct {
	Type    MessageType `json:"type"`
	Room    string      `json:"room,omitempty"`
	Player  int         `json:"player,omitempty"`
	Name    string      `json:"name,omitempty"`
	Players int         `json:"players,omitempty"`
	Winner  int         `json:"winner,omitempty"`
	Score   int         `json:"score,omitempty"`
	Reason  string      `json:"reason,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Decode parses and validates one request line. Input commands must be
// gameplay actions; restart and quit are local-only.
func Decode(line []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	req.Type = MessageType(strings.ToLower(strings.TrimSpace(string(req.Type))))

	switch req.Type {
	case TypeJoin:
		req.Room = strings.TrimSpace(req.Room)
		if req.Room == "" {
			return Request{}, ErrMissingRoom
		}
	case TypeInput:
		action, err := core.ParseAction(req.Command)
		if err != nil {
			return Request{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if !action.IsGameplay() {
			return Request{}, fmt.Errorf("%w: command %q not allowed", ErrMalformed, req.Command)
		}
		req.Action = action
	case TypeLeave:
	default:
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownType, req.Type)
	}
	return req, nil
}

// Encode renders a reply as one newline-terminated line.
func Encode(r Reply) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
