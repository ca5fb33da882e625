package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/solar-scene/internal/config"
	"github.com/vovakirdan/solar-scene/internal/host"
	"github.com/vovakirdan/solar-scene/internal/logging"
	"github.com/vovakirdan/solar-scene/internal/netserver"
	"github.com/vovakirdan/solar-scene/internal/platform/tui"
	"github.com/vovakirdan/solar-scene/internal/registry"
	"github.com/vovakirdan/solar-scene/internal/resource"
	"github.com/vovakirdan/solar-scene/internal/scene"
	"github.com/vovakirdan/solar-scene/internal/storage"
	"github.com/vovakirdan/solar-scene/internal/world"
)

var (
	flagListen  string
	flagScene   string
	flagSSHAddr string
	flagHostKey string
	flagReplay  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scene host",
	Long: `Builds the scene preset, listens for console clients over UDP and
applies every command they send. Commands are journaled to SQLite.

Operator console:
  - With --ssh, an SSH server offers a live view of objects and points
    and an input line for commands
  - The host key is auto-generated at ~/.solar/host_key unless --host-key is set

Examples:
  solar serve                          # UDP on :32000, solar preset
  solar serve --listen :4000 --scene empty
  solar serve --ssh :23234             # Also start the operator console
  solar serve --replay                 # Re-apply journaled commands first`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "UDP address (host:port), default from config")
	serveCmd.Flags().StringVar(&flagScene, "scene", "", "Scene preset, default from config")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH console address (host:port), disabled if empty")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().BoolVar(&flagReplay, "replay", false, "Re-apply journaled commands on startup")
}

func runServe(cmd *cobra.Command, _ []string) {
	cfg, logger, closer := mustSetup(cmd)
	defer closer.Close()

	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.Server.Listen = flagListen
	}
	if flags.Changed("scene") {
		cfg.Scene.Preset = flagScene
	}
	if flags.Changed("ssh") {
		cfg.SSH.Listen = flagSSHAddr
	}
	if flags.Changed("host-key") {
		cfg.SSH.HostKey = flagHostKey
	}
	if flags.Changed("replay") {
		cfg.Storage.Replay = flagReplay
	}

	if !registry.Exists(cfg.Scene.Preset) {
		fmt.Fprintf(os.Stderr, "Error: unknown scene %q\n", cfg.Scene.Preset)
		fmt.Fprintln(os.Stderr, "Run 'solar scenes' to see available presets.")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

// attachJournal starts journaling h into store. With replay set, the
// journaled commands are re-applied first and recorded with origin replay.
func attachJournal(h *host.Host, store *storage.Store, replay bool) error {
	h.SetJournal(store)
	if !replay {
		return nil
	}
	lines, err := store.ReplayableCommands()
	if err != nil {
		return fmt.Errorf("reading journal: %w", err)
	}
	h.Replay(lines)
	return nil
}

// serve runs the UDP server, the host loop and the optional SSH console
// until ctx is cancelled or one of them fails.
func serve(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	sc, err := registry.Build(cfg.Scene.Preset, cfg.Scene)
	if err != nil {
		return err
	}
	w := world.New(sc, resource.NewCache(cfg.Scene.Resources), logging.Component(logger, "world"))

	h := host.New(host.Config{
		TickRate:      cfg.Host.TickRate,
		HistorySize:   cfg.Host.HistorySize,
		SubmitBacklog: host.DefaultConfig().SubmitBacklog,
	}, w, logging.Component(logger, "host"))

	// Open journal
	if cfg.Storage.Path != "" {
		store, err := storage.Open(cfg.Storage.Path)
		if err != nil {
			logger.Warn("could not open journal", "error", err)
			// Continue without storage
		} else {
			defer store.Close()
			if err := attachJournal(h, store, cfg.Storage.Replay); err != nil {
				return err
			}
		}
	}

	srv, err := netserver.Listen(netserver.Config{
		Address:       cfg.Server.Listen,
		IdleTimeout:   cfg.Server.IdleTimeout,
		SweepInterval: cfg.Server.SweepInterval,
		MessageRate:   cfg.Server.MessageRate,
		MessageBurst:  cfg.Server.MessageBurst,
		EventBuffer:   cfg.Server.EventBuffer,
	}, logging.Component(logger, "net"))
	if err != nil {
		return err
	}

	var nodes int
	w.View(func(s *scene.Scene) { nodes = s.Count() })
	logger.Info("scene ready", "preset", cfg.Scene.Preset, "nodes", nodes, "udp", srv.Addr().String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(gctx) })
	g.Go(func() error { return h.Run(gctx, srv.Events()) })

	if cfg.SSH.Listen != "" {
		console, err := tui.NewSSHServer(tui.SSHServerConfig{
			Address:     cfg.SSH.Listen,
			HostKeyPath: cfg.SSH.HostKey,
			IdleTimeout: 30 * time.Minute,
		}, h, srv.Sessions(), logging.Component(logger, "ssh"))
		if err != nil {
			srv.Close()
			return err
		}
		g.Go(func() error { return console.Serve(gctx) })
		fmt.Printf("Operator console on %s\n", cfg.SSH.Listen)
	}

	fmt.Println("Press Ctrl+C to stop")

	return g.Wait()
}
