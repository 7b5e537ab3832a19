// Package database manages the SQLite connection backing the host
// registry. It configures WAL mode and busy timeouts for safe access
// from a single process and exposes context-aware query helpers.
//
// The schema itself is owned by the consumers (see internal/hostos);
// this package only manages the connection lifecycle.
package database
