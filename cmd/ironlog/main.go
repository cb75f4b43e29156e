package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/ironlog/internal/activity"
	"github.com/claude/ironlog/internal/catalog"
	"github.com/claude/ironlog/internal/config"
	ironmcp "github.com/claude/ironlog/internal/mcp"
	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/server"
	"github.com/claude/ironlog/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	seedPrograms := flag.Bool("seed", false, "insert built-in starter programs and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("ironlog starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Every shipped surface assumes the single-tenant default user exists.
	defaultUser, err := db.GetOrCreateUser(ctx, "local", "Local Dev User")
	if err != nil {
		log.Error("failed to ensure default user", "error", err)
		os.Exit(1)
	}
	log.Info("default user ready", "user_id", defaultUser)

	if *seedPrograms {
		if err := seedBuiltins(ctx, db, log); err != nil {
			log.Error("seeding failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Activity events go to logs and to the activity_log table.
	events := activity.Multi{
		&activity.LogRecorder{Log: log},
		storage.NewActivityRecorder(db, log),
	}

	defaults := server.Defaults{
		Unit:      models.Unit(cfg.Progression.Unit),
		Increment: cfg.Progression.Increment,
	}
	srv := server.New(db, events, cfg.Auth.APIKey, defaults, log)

	// MCP surface over the same data
	mcpSrv := ironmcp.New(db, Version, log)
	srv.MountMCP(mcpserver.NewStreamableHTTPServer(mcpSrv))

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

// seedBuiltins inserts the built-in starter programs, skipping ones whose
// name already exists.
func seedBuiltins(ctx context.Context, db *storage.DB, log *slog.Logger) error {
	existing, err := db.ListPrograms(ctx)
	if err != nil {
		return err
	}
	names := map[string]bool{}
	for _, p := range existing {
		names[p.Name] = true
	}

	builtins, err := catalog.BuiltinPrograms()
	if err != nil {
		return err
	}
	for _, p := range builtins {
		if names[p.Name] {
			log.Info("program already seeded", "name", p.Name)
			continue
		}
		if err := db.SaveProgram(ctx, p); err != nil {
			return err
		}
		log.Info("program seeded", "name", p.Name, "workouts", len(p.Workouts))
	}
	return nil
}
