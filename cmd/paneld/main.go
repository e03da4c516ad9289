package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pixelpane/pixelpane/internal/api"
	"github.com/pixelpane/pixelpane/internal/config"
	"github.com/pixelpane/pixelpane/internal/daemon"
	"github.com/pixelpane/pixelpane/internal/frame"
	"github.com/pixelpane/pixelpane/internal/library"
	xplog "github.com/pixelpane/pixelpane/internal/log"
	"github.com/pixelpane/pixelpane/internal/panel"
	"github.com/pixelpane/pixelpane/internal/player"
	"github.com/pixelpane/pixelpane/internal/storage"
)

var (
	version   = "v1.0.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	cfg, err := config.NewLoader(*configPath, version).Load()
	if err != nil {
		xplog.Configure(xplog.Config{Level: "info", Service: "paneld"})
		logger := xplog.WithComponent("daemon")
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", *configPath).
			Msg("cannot load configuration")
	}

	xplog.Configure(xplog.Config{Level: cfg.LogLevel, Service: "paneld"})
	logger := xplog.WithComponent("daemon")
	logger.Info().
		Str("event", "daemon.starting").
		Str("version", version).
		Int("panel_width", cfg.Panel.Width).
		Int("panel_height", cfg.Panel.Height).
		Msg("paneld starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal().Err(err).Str("event", "daemon.failed").Msg("daemon exited with error")
	}
	logger.Info().Str("event", "daemon.stopped").Msg("paneld stopped")
}

func run(ctx context.Context, cfg config.AppConfig) error {
	pnl, err := openPanel(cfg.Panel)
	if err != nil {
		return fmt.Errorf("panel bring-up: %w", err)
	}

	store := storage.NewOS(cfg.Media.Root)

	pool := frame.NewPool(cfg.Panel.Width, cfg.Panel.Height)
	gate := frame.NewGate()
	controller := player.NewController(cfg.Player, store, pool, gate)
	consumer := player.NewConsumer(pool, gate, pnl, cfg.Player.FPSInterval)

	lib := library.New(store, cfg.Media.Collections)
	if err := lib.ScanAll(); err != nil {
		logger := xplog.WithComponent("daemon")
		logger.Warn().Err(err).
			Str("event", "library.scan_failed").
			Msg("initial collection scan incomplete")
	}

	if cfg.Media.Boot != "" {
		controller.RequestOpen(cfg.Media.Boot)
	}

	srv := api.NewServer(cfg.Server, controller, consumer, lib)
	mgr := daemon.NewManager(cfg.Server, srv.Routes())
	mgr.AddRunner("producer", controller.Run)
	mgr.AddRunner("display", consumer.Run)
	if cfg.Media.WatchCollections && len(cfg.Media.Collections) > 0 {
		root := cfg.Media.Root
		mgr.AddRunner("watcher", func(ctx context.Context) error {
			return lib.Watch(ctx, root)
		})
	}
	mgr.RegisterShutdownHook("panel", func(context.Context) error {
		return pnl.Close()
	})

	return mgr.Start(ctx)
}

func openPanel(cfg config.PanelConfig) (panel.Panel, error) {
	switch cfg.Driver {
	case "memory":
		return panel.NewMemory(cfg.Width, cfg.Height), nil
	default:
		return panel.OpenFBDev(cfg.Device, cfg.Width, cfg.Height)
	}
}
