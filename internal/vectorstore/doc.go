// Package vectorstore persists knowledge bases, documents and chunks in
// PostgreSQL and ranks chunks against query vectors.
//
// # Search strategy
//
// Two search paths exist behind one contract:
//
//   - Native: when the pgvector extension is installed, nearest-neighbor
//     ranking runs inside PostgreSQL with the <=> cosine distance operator.
//     Availability is probed (never assumed) and the probe result is cached
//     briefly.
//   - Brute force: all candidate chunks are loaded, their stored embeddings
//     parsed back into vectors, and cosine similarity computed in process.
//
// A failure on the native path falls back to brute force transparently; the
// caller only ever sees an error when the fallback itself fails.
//
// # Result cache
//
// Search results are cached per (knowledge base set, query vector, options)
// key with a fixed TTL and no invalidation hook. Entries are immutable once
// written, so concurrent cache population races waste work but stay correct.
//
// # Embedding storage
//
// Embeddings are stored as their flat numeric-array text representation
// ("[0.1,0.2,...]"). ParseEmbedding accepts that format, JSON arrays,
// Postgres array syntax ("{...}") and native slices; unparseable values
// degrade to an empty vector at the call site so one corrupt chunk cannot
// abort a whole search.
package vectorstore
