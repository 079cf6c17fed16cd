// Package sqlite provides the relational store for personas, their
// documents and chunks, and the append-only conversation log, backed
// by a single SQLite database file. The vector index is not stored
// here; it lives in per-persona snapshot files owned by the
// vectorindex adapter.
package sqlite
