// Package store persists the canvas graph and its history.
//
// A BlobStore is a minimal keyed byte store. Several backends are provided:
//   - memory: process-local map, for tests and ephemeral sessions
//   - file: one JSON file per key in a directory
//   - sqlite: a key/value table in a local SQLite database
//   - redis: string keys with an optional prefix and TTL
//   - postgres: a key/value table with JSONB values
//
// The Gateway maps a workspace onto three independent blobs, "<workspace>:nodes",
// "<workspace>:edges" and "<workspace>:history", restores them on startup and writes
// them through on every change:
//
//	gw := store.NewGateway(sqliteStore, store.WithWorkspace("physics"))
//	gw.Restore(ctx, graph, history, ids)
//	gw.Attach(graph, history)
//
// Persistence failures never stop the session. They are logged and the in-memory
// graph stays authoritative.
package store
