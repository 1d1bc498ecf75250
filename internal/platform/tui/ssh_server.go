package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/blockparty/internal/core"
	"github.com/vovakirdan/blockparty/internal/multiplayer"
	"github.com/vovakirdan/blockparty/internal/relay"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.blockparty/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// ShutdownTimeout bounds the graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:         ":23234",
		IdleTimeout:     30 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
	}
}

// SSHServer serves the game over SSH. Sessions with a PTY get the
// interactive UI; sessions without one speak the line relay protocol.
type SSHServer struct {
	config   SSHServerConfig
	server   *ssh.Server
	deps     Deps
	sessions *multiplayer.SessionRegistry
	relay    *relay.Controller
	logger   *log.Logger
}

// NewSSHServer creates a server. deps.Registry must be set; the caller keeps
// ownership of deps.Store.
func NewSSHServer(cfg SSHServerConfig, deps Deps) (*SSHServer, error) {
	if deps.Registry == nil {
		return nil, errors.New("ssh server: match registry is required")
	}
	deps = deps.withDefaults()
	if deps.Sessions == nil {
		deps.Sessions = multiplayer.NewSessionRegistry()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	srv := &SSHServer{
		config:   cfg,
		deps:     deps,
		sessions: deps.Sessions,
		relay:    relay.NewController(deps.Registry, deps.Logger, deps.Config.Relay.SessionBuffer),
		logger:   deps.Logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", err)
		}
		hostKeyPath = filepath.Join(home, ".blockparty", "host_key")
	}
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	// The last middleware listed runs first.
	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.relayMiddleware,
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}
	srv.server = server
	return srv, nil
}

// sessionID returns a fresh session identifier.
func sessionID() multiplayer.SessionID {
	return multiplayer.SessionID(uuid.NewString())
}

// teaHandler creates the app model for an interactive session.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, _ := sess.Pty()
	id := sessionID()

	deps := s.deps
	deps.Renderer = NewScreenRenderer(bubbletea.MakeRenderer(sess))
	deps.Player = sess.User()
	deps.SessionID = id
	deps.Logger = s.logger.With("session", id, "user", sess.User())
	deps.Runtime = core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.deps.Runtime.TickRate,
		Seed:     s.deps.Runtime.Seed,
	}

	go func() {
		<-sess.Context().Done()
		s.dropSession(id)
	}()

	return NewAppModel(deps), []tea.ProgramOption{tea.WithAltScreen()}
}

// dropSession closes a room session left behind by a disconnected client,
// so its match sees the disconnect.
func (s *SSHServer) dropSession(id multiplayer.SessionID) {
	h, ok := s.sessions.Get(id)
	if !ok {
		return
	}
	s.sessions.Unregister(id)
	if cs, ok := h.(*multiplayer.ChannelSession); ok {
		cs.Close()
	}
}

// relayMiddleware hands sessions without a PTY to the line protocol.
func (s *SSHServer) relayMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		if _, _, ok := sess.Pty(); ok {
			next(sess)
			return
		}
		err := s.relay.Serve(sess.Context(), sessionID(), sess.User(), sess, sess)
		if err != nil {
			s.logger.Warn("relay session failed", "user", sess.User(), "error", err)
			_ = sess.Exit(1)
			return
		}
		_ = sess.Exit(0)
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		_, _, pty := sess.Pty()
		s.logger.Info("session started",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
			"pty", pty,
		)
		next(sess)
		s.logger.Info("session ended",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
	}
}

// ListenAndServe runs the match registry and the SSH server until ctx is
// cancelled or the server fails.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.deps.Registry.Start(ctx)
	defer s.deps.Registry.Stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("starting SSH server", "address", s.config.Address)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down...")
		return s.Shutdown()
	})
	return g.Wait()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
