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

	"github.com/meltforce/pulsefit/internal/catalog"
	"github.com/meltforce/pulsefit/internal/config"
	"github.com/meltforce/pulsefit/internal/logging"
	"github.com/meltforce/pulsefit/internal/server"
	"github.com/meltforce/pulsefit/internal/storage"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	seed := flag.Bool("seed", false, "store sample profile and metrics when none exist")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log, logCloser := logging.New(logging.Params{Level: cfg.Log.Level, File: cfg.Log.File, Stdout: true})
	defer logCloser.Close()
	log.Info("PulseFit starting", "version", Version)

	// Connect database (runs migrations)
	ctx := context.Background()
	db, err := storage.Open(ctx, storageOptions(cfg))
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("storage ready", "driver", cfg.Storage.Driver)

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	if *seed {
		seeded, err := db.InitializeSampleData(ctx)
		if err != nil {
			log.Error("seeding sample data failed", "error", err)
			os.Exit(1)
		}
		log.Info("sample data", "seeded", seeded)
	}

	cat := catalog.Builtin()
	if cfg.Catalog.Path != "" {
		cat, err = catalog.Load(cfg.Catalog.Path)
		if err != nil {
			log.Error("failed to load catalog", "path", cfg.Catalog.Path, "error", err)
			os.Exit(1)
		}
	}
	log.Info("catalog loaded", "workouts", len(cat.List()))

	srv := server.New(db, cat, server.NewMetrics(true), cfg.Auth.APIKey, log)

	// Start server on tsnet or plain HTTP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
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

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	reapCtx, stopReaper := context.WithCancel(ctx)
	defer stopReaper()
	go srv.Sessions().RunReaper(reapCtx, time.Minute)

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
	stopReaper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	if err := srv.Sessions().CloseAll(shutdownCtx); err != nil {
		log.Error("closing open sessions", "error", err)
	}
	log.Info("server stopped")
}

func storageOptions(cfg *config.Config) storage.Options {
	return storage.Options{
		Driver:      storage.Driver(cfg.Storage.Driver),
		SQLitePath:  cfg.Storage.Path,
		PostgresDSN: cfg.Database.DSN(),
	}
}
