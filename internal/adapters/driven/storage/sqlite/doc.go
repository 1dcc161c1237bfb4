// Package sqlite implements the knowledge store on SQLite, for corpora
// that outgrow the JSON snapshot backend.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database holds three tables: documents, chunks (with embeddings
// as little-endian float32 blobs), and store_meta, which records the
// established embedding dimension. The schema is managed through
// versioned migrations embedded from the migrations/ directory.
//
// # Durability
//
// The database runs in WAL mode with a busy timeout, and every mutation
// happens inside a transaction, so a failed call leaves the prior
// committed state intact and readers never observe a half-written
// ingest.
package sqlite
