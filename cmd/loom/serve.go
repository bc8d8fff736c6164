package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/loomkit/loom/internal/config"
	"github.com/loomkit/loom/internal/engine"
	"github.com/loomkit/loom/internal/oplog"
	"github.com/loomkit/loom/internal/server"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var configPath string
	var addr string
	fs.StringVar(&configPath, "config", "", "Path to configuration file")
	fs.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&addr, "addr", "", "Listen address (overrides the config)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: loom serve [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: configuration: %v\n", err)
		return 1
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logger := newLogger(cfg.Log.Level)

	opts := []oplog.Option{oplog.WithSnapshotCacheSize(cfg.Oplog.SnapshotCache)}
	if cfg.Oplog.SyncWrites {
		opts = append(opts, oplog.WithSyncWrites())
	}
	store, err := oplog.Open(cfg.Oplog.Dir, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening oplog: %v\n", err)
		return 1
	}
	defer store.Close()

	hub := server.New(store,
		server.WithLogger(logger),
		server.WithPingInterval(cfg.Server.PingInterval),
		server.WithDocumentOptions(
			engine.WithMaxUndoEntries(cfg.Document.MaxUndoEntries),
			engine.WithFeedBuffer(cfg.Document.FeedBuffer),
		),
	)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: hub.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-signals:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("http shutdown", "err", err)
	}
	hub.Close()
	return 0
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
