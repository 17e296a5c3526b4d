// Command nationsim runs the nation policy simulation service.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/openborders/nationsim/internal/api"
	"github.com/openborders/nationsim/internal/archive"
	"github.com/openborders/nationsim/internal/config"
	"github.com/openborders/nationsim/internal/sim"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	slog.Info("nationsim starting",
		"port", cfg.Server.Port,
		"tick_interval", cfg.Sim.TickInterval,
		"max_sessions", cfg.Sim.MaxSessions,
		"archive", cfg.Archive.Enabled,
	)

	// ── Run archive ───────────────────────────────────────────────────
	var db *archive.DB
	var recorder sim.Recorder
	if cfg.Archive.Enabled {
		if dir := filepath.Dir(cfg.Archive.Path); dir != "." {
			os.MkdirAll(dir, 0755)
		}
		var err error
		db, err = archive.Open(cfg.Archive.Path)
		if err != nil {
			slog.Error("failed to open archive", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		recorder = db
		slog.Info("archive opened", "path", cfg.Archive.Path)
	} else {
		slog.Warn("archive disabled, run history will not be recorded")
	}

	// ── Sessions ──────────────────────────────────────────────────────
	manager := sim.NewManager(recorder, cfg.Sim.TickInterval, cfg.Sim.MaxSessions)
	defer manager.Close()

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.Server.AdminKey == "" {
		slog.Warn("NATIONSIM_ADMIN_KEY not set, admin endpoints will be disabled")
	}

	server := &api.Server{
		Manager:  manager,
		Archive:  db,
		Port:     cfg.Server.Port,
		AdminKey: cfg.Server.AdminKey,
		Origins:  cfg.Server.CORSOrigins,
	}
	server.Start()

	// ── Run until signalled ───────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)
}
