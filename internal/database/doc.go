// Package database provides SQLite-based storage for crawl runs.
//
// This package implements the PageDB, which stores:
//   - One row per run with its seeds, timing and traversal counters
//   - The pages stored during the run, with their insertion order
//
// The driver is modernc.org/sqlite, a CGO-free implementation, so the
// database is a single file and the binary cross-compiles without a C
// toolchain.
package database
