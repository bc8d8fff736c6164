package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix shared by every environment override.
const EnvPrefix = "LOOM_"

// Load builds the configuration from three layers: defaults, the TOML
// file at path, and LOOM_* environment variables. A missing file is not
// an error; an unreadable or invalid one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Fall through to env overrides.
		case err != nil:
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, &ParseError{Path: path, Message: err.Error(), Err: err}
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides config fields from LOOM_* environment variables.
// Unset variables leave the field alone; empty values count as set.
func applyEnv(cfg *Config) {
	envString("ADDR", &cfg.Server.Addr)
	envDuration("PING_INTERVAL", &cfg.Server.PingInterval)
	envDuration("SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	envString("OPLOG_DIR", &cfg.Oplog.Dir)
	envBool("OPLOG_SYNC", &cfg.Oplog.SyncWrites)
	envInt("SNAPSHOT_CACHE", &cfg.Oplog.SnapshotCache)

	envInt("MAX_UNDO", &cfg.Document.MaxUndoEntries)
	envInt("FEED_BUFFER", &cfg.Document.FeedBuffer)

	envString("LOG_LEVEL", &cfg.Log.Level)
	envString("HISTORY_FILE", &cfg.Repl.HistoryFile)
}

func envString(name string, dst *string) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		*dst = v
	}
}

func envInt(name string, dst *int) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(name string, dst *bool) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		switch v {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if v, ok := os.LookupEnv(EnvPrefix + name); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
