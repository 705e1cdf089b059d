// Package sqlite provides the SQLite-backed storage adapter. A single
// Store owns the database handle and hands out typed wrappers for the
// index store, the native (FTS5) and fallback (LIKE) searchers, and the
// analytics event store. The database runs in WAL mode so the index
// synchroniser can write while searches read.
package sqlite
