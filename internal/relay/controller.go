package relay

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/blockparty/internal/multiplayer"
)

// MaxLineSize bounds one request line.
const MaxLineSize = 4096

// Controller serves relay controller connections against a match registry.
type Controller struct {
	registry   *multiplayer.Registry
	logger     *log.Logger
	bufferSize int
}

// NewController creates a controller. bufferSize is the per-connection event
// buffer; a nil logger discards output.
func NewController(registry *multiplayer.Registry, logger *log.Logger, bufferSize int) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{registry: registry, logger: logger, bufferSize: bufferSize}
}

// conn is the state of one controller connection.
type conn struct {
	c       *Controller
	session *multiplayer.ChannelSession
	logger  *log.Logger

	writeMu sync.Mutex
	w       io.Writer

	mu     sync.Mutex
	match  multiplayer.MatchID
	player multiplayer.PlayerID
}

// Serve reads requests from r until EOF or ctx is done, writing replies to
// w. Malformed lines are logged and dropped. The connection leaves its room
// on return.
func (c *Controller) Serve(ctx context.Context, id multiplayer.SessionID, name string, r io.Reader, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cn := &conn{
		c:       c,
		session: multiplayer.NewChannelSession(id, name, c.bufferSize),
		logger:  c.logger.With("session", id),
		w:       w,
	}
	defer cn.session.Close()
	defer cn.leave(false)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		cn.forward(ctx)
	}()
	defer wg.Wait()
	defer cancel()

	cn.logger.Info("controller connected", "name", cn.session.Name())

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 512), MaxLineSize)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		req, err := Decode(line)
		if err != nil {
			cn.logger.Warn("dropping malformed payload", "err", err)
			continue
		}
		cn.handle(req)
	}

	err := scanner.Err()
	if err != nil {
		cn.logger.Warn("controller read failed", "err", err)
	} else {
		cn.logger.Info("controller disconnected")
	}
	return err
}

func (cn *conn) handle(req Request) {
	switch req.Type {
	case TypeJoin:
		cn.join(req)
	case TypeInput:
		cn.input(req)
	case TypeLeave:
		cn.leave(true)
	}
}

func (cn *conn) join(req Request) {
	if _, _, joined := cn.current(); joined {
		cn.reply(Reply{Type: TypeError, Message: "already in a room"})
		return
	}

	m, pid, err := cn.c.registry.Join(req.Room, cn.session)
	if err != nil {
		cn.logger.Info("join rejected", "room", req.Room, "err", err)
		cn.reply(Reply{Type: TypeError, Room: req.Room, Message: joinMessage(err)})
		return
	}

	cn.mu.Lock()
	cn.match = m.ID()
	cn.player = pid
	cn.mu.Unlock()

	cn.reply(Reply{Type: TypeJoined, Room: m.Code(), Player: int(pid), Name: cn.session.Name()})
}

func (cn *conn) input(req Request) {
	id, pid, joined := cn.current()
	if !joined {
		cn.reply(Reply{Type: TypeError, Message: "not in a room"})
		return
	}

	err := cn.c.registry.Enqueue(id, multiplayer.Command{Player: pid, Action: req.Action})
	switch {
	case err == nil:
	case errors.Is(err, multiplayer.ErrQueueFull):
		// Dropped by the match; the controller just presses again.
	default:
		cn.logger.Debug("input rejected", "match", id, "err", err)
		cn.reply(Reply{Type: TypeError, Message: err.Error()})
	}
}

// leave detaches from the current room. notify sends a left reply.
func (cn *conn) leave(notify bool) {
	cn.mu.Lock()
	id := cn.match
	cn.match, cn.player = "", 0
	cn.mu.Unlock()

	if id == "" {
		if notify {
			cn.reply(Reply{Type: TypeError, Message: "not in a room"})
		}
		return
	}
	cn.c.registry.Leave(id, cn.session.ID())
	if notify {
		cn.reply(Reply{Type: TypeLeft})
	}
}

func (cn *conn) current() (multiplayer.MatchID, multiplayer.PlayerID, bool) {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	return cn.match, cn.player, cn.match != ""
}

// forward turns match events into replies until the connection ends.
func (cn *conn) forward(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-cn.session.Events():
			cn.event(evt)
		}
	}
}

func (cn *conn) event(evt multiplayer.SessionEvent) {
	switch e := evt.(type) {
	case multiplayer.MatchStartedEvent:
		cn.reply(Reply{Type: TypeStart, Room: e.Code, Players: e.Players})
	case multiplayer.MatchEndedEvent:
		_, pid, _ := cn.current()
		r := Reply{Type: TypeEnd, Reason: e.Reason.String(), Winner: int(e.Winner)}
		for _, res := range e.Results {
			if res.Player == pid {
				r.Score = res.Score
			}
		}
		cn.mu.Lock()
		if cn.match == e.MatchID {
			cn.match, cn.player = "", 0
		}
		cn.mu.Unlock()
		cn.reply(r)
	case multiplayer.ErrorEvent:
		cn.reply(Reply{Type: TypeError, Message: e.Message})
	}
}

func (cn *conn) reply(r Reply) {
	data, err := Encode(r)
	if err != nil {
		cn.logger.Error("cannot encode reply", "err", err)
		return
	}
	cn.writeMu.Lock()
	defer cn.writeMu.Unlock()
	if _, err := cn.w.Write(data); err != nil {
		cn.logger.Debug("reply not delivered", "err", err)
	}
}

func joinMessage(err error) string {
	switch {
	case errors.Is(err, multiplayer.ErrMatchNotFound):
		return "room not found"
	case errors.Is(err, multiplayer.ErrMatchFull):
		return "room is full"
	case errors.Is(err, multiplayer.ErrMatchStarted):
		return "game already started"
	default:
		return err.Error()
	}
}
