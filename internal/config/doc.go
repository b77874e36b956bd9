// Package config loads server configuration from a TOML file with
// MODSCOPE_* environment overrides. Defaults are usable out of the box:
// a local SQLite store, auto-detected embedding provider, and the
// "components" collection.
package config
