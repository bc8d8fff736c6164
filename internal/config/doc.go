// Package config loads the loom runtime configuration.
//
// Settings resolve in three layers, later layers winning: built-in
// defaults, a TOML file, and LOOM_* environment variables. The file is
// optional; the environment always applies.
package config
