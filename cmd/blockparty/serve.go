package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockparty/internal/config"
	"github.com/vovakirdan/blockparty/internal/core"
	"github.com/vovakirdan/blockparty/internal/games/blockparty"
	"github.com/vovakirdan/blockparty/internal/multiplayer"
	"github.com/vovakirdan/blockparty/internal/platform/tui"
	"github.com/vovakirdan/blockparty/internal/storage"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagSprint      bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH server and multiplayer relay",
	Long: `Start an SSH server for remote play.

Interactive connections get the menu: solo modes, versus rooms and the
shared leaderboard. Connections without a terminal speak the line relay
protocol, one JSON object per line:

  ssh -T host -p 23234
  {"type":"join","room":"ABC123"}
  {"type":"input","command":"hard_drop"}
  {"type":"leave"}

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.blockparty/host_key

Examples:
  blockparty serve                     # Listen on :23234
  blockparty serve --ssh :2222         # Listen on port 2222
  blockparty serve --sprint            # Versus rooms race to the line target
  blockparty serve --db ./scores.db    # Use a specific database`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().BoolVar(&flagSprint, "sprint", false, "Play versus rooms in sprint mode")
}

// registryConfig maps the relay section of the config onto the registry.
func registryConfig(cfg config.Config) multiplayer.RegistryConfig {
	rc := multiplayer.DefaultRegistryConfig()
	r := cfg.Relay
	if r.TickRate > 0 {
		rc.Match.TickInterval = time.Second / time.Duration(r.TickRate)
	}
	rc.Match.InputLimit = r.InputLimit
	rc.Match.QueueSize = r.QueueSize
	rc.Match.MaxPlayers = r.MaxPlayers
	rc.Match.ExpireAfter = r.ExpireAfter
	rc.Match.Runtime = core.RuntimeConfig{TickRate: r.TickRate, Seed: flagSeed}
	if r.MaxMatches > 0 {
		rc.MaxMatches = r.MaxMatches
	}
	if r.ReapPeriod > 0 {
		rc.ReapPeriod = r.ReapPeriod
	}
	return rc
}

// boardFactory builds the versus boards with the server's configuration.
func boardFactory(cfg config.Config, sprint bool) multiplayer.GameFactory {
	return func() multiplayer.BoardGame {
		g := blockparty.New()
		if sprint {
			g = blockparty.NewSprint()
		}
		g.UseConfig(cfg)
		return g
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open scores database", "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	registry := multiplayer.NewRegistry(registryConfig(gameConfig), boardFactory(gameConfig, flagSprint), logger)
	if store != nil {
		registry.SetResultSaver(store)
	}

	server, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:         flagSSHAddr,
		HostKeyPath:     flagHostKey,
		IdleTimeout:     time.Duration(flagIdleTimeout) * time.Minute,
		ShutdownTimeout: 10 * time.Second,
	}, tui.Deps{
		Store:    store,
		Registry: registry,
		Logger:   logger,
		Config:   gameConfig,
		Runtime:  core.RuntimeConfig{TickRate: flagFPS, Seed: flagSeed},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Starting Block Party SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")
	return server.ListenAndServe(ctx)
}
