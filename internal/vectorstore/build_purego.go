//go:build !cgo_sqlite
// +build !cgo_sqlite

package vectorstore

// This file is compiled when building without the cgo_sqlite tag.
//
// Build command:
//   CGO_ENABLED=0 go build ./...
//
// The pure Go driver requires no C compiler and cross-compiles cleanly,
// which is the default for this server.
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
