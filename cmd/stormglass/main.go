package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stormglass/internal/api"
	"stormglass/pkg/catalog"
	"stormglass/pkg/config"
	"stormglass/pkg/logging"
	"stormglass/pkg/player"
	"stormglass/pkg/request"
	"stormglass/pkg/tiles"
	"stormglass/pkg/tracker"
	"stormglass/pkg/version"
)

var (
	configPath = flag.String("config", "configs/stormglass.yaml", "Path to config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.Save(*configPath, config.DefaultConfig()); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Optional .env next to the binary; config values win.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if addr := os.Getenv("STORMGLASS_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("Stormglass started", "version", version.Version)

	tr := tracker.New()
	client := request.New(&cfg.Request, tr)

	hub := api.NewHub()

	scheme, err := tiles.ParseScheme(cfg.Player.ColorScheme)
	if err != nil {
		return fmt.Errorf("invalid player.color_scheme: %w", err)
	}
	opts := tiles.Options{
		RadarOpacity: cfg.Player.RadarOpacity,
		CloudOpacity: cfg.Player.CloudOpacity,
		Scheme:       scheme,
		Smooth:       cfg.Player.Smooth,
		SnowColors:   cfg.Player.SnowColors,
		ImageFormat:  cfg.Player.ImageFormat,
	}

	ctrl := player.New(hub, opts, time.Duration(cfg.Player.Interval))
	defer ctrl.Close()

	// The metadata fetch must not block startup; the controller stays Idle
	// (all UI events no-ops) until it resolves. A failed fetch is logged
	// and leaves the system Idle.
	go func() {
		cat, err := catalog.Fetch(ctx, client, cfg.Catalog.URL)
		if err != nil {
			slog.Error("catalog fetch failed, staying idle", "error", err)
			return
		}
		if err := ctrl.SetCatalog(cat); err != nil {
			slog.Error("failed to show first frame", "error", err)
		}
	}()

	srv := api.NewServer(cfg.Server.Addr,
		hub,
		api.NewPlayerHandler(ctrl),
		api.NewMapHandler(hub, ctrl, &cfg.Map),
		api.NewStatsHandler(tr, hub),
		cancel)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig)
	case <-ctx.Done():
		slog.Info("shutting down", "reason", "api request")
	}

	ctrl.Close()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	return nil
}
