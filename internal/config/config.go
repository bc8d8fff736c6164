package config

import (
	"fmt"
	"time"
)

// Config is the full runtime configuration for the loom binary. Fields
// map one-to-one onto the TOML file; environment variables override
// file values.
type Config struct {
	Server   Server   `toml:"server"`
	Oplog    Oplog    `toml:"oplog"`
	Document Document `toml:"document"`
	Log      Log      `toml:"log"`
	Repl     Repl     `toml:"repl"`
}

// Server configures the sync relay.
type Server struct {
	// Addr is the listen address for the HTTP/WebSocket endpoint.
	Addr string `toml:"addr"`

	// PingInterval is how often idle WebSocket sessions are pinged.
	PingInterval time.Duration `toml:"ping_interval"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// Oplog configures operation persistence.
type Oplog struct {
	// Dir is the pebble store directory.
	Dir string `toml:"dir"`

	// SyncWrites makes appends wait for the WAL fsync.
	SyncWrites bool `toml:"sync_writes"`

	// SnapshotCache is the number of materialized documents kept in
	// memory for late-joiner replay.
	SnapshotCache int `toml:"snapshot_cache"`
}

// Document configures per-document engine behavior.
type Document struct {
	// MaxUndoEntries caps the undo stack.
	MaxUndoEntries int `toml:"max_undo_entries"`

	// FeedBuffer is the per-subscriber change buffer size.
	FeedBuffer int `toml:"feed_buffer"`
}

// Log configures logging.
type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
}

// Repl configures the interactive shell.
type Repl struct {
	// HistoryFile stores readline history between sessions.
	HistoryFile string `toml:"history_file"`
}

// Default returns the configuration used when no file and no
// environment overrides are present.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			PingInterval:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Oplog: Oplog{
			Dir:           "loom-oplog",
			SyncWrites:    false,
			SnapshotCache: 128,
		},
		Document: Document{
			MaxUndoEntries: 1000,
			FeedBuffer:     64,
		},
		Log: Log{
			Level: "info",
		},
		Repl: Repl{
			HistoryFile: ".loom_history",
		},
	}
}

// Validate checks invariants that would otherwise surface as obscure
// runtime failures.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr: %w", ErrMissingValue)
	}
	if c.Oplog.Dir == "" {
		return fmt.Errorf("oplog.dir: %w", ErrMissingValue)
	}
	if c.Oplog.SnapshotCache <= 0 {
		return fmt.Errorf("oplog.snapshot_cache %d: %w", c.Oplog.SnapshotCache, ErrBadValue)
	}
	if c.Document.MaxUndoEntries <= 0 {
		return fmt.Errorf("document.max_undo_entries %d: %w", c.Document.MaxUndoEntries, ErrBadValue)
	}
	if c.Document.FeedBuffer <= 0 {
		return fmt.Errorf("document.feed_buffer %d: %w", c.Document.FeedBuffer, ErrBadValue)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q: %w", c.Log.Level, ErrBadValue)
	}
	return nil
}
