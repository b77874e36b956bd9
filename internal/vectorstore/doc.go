// Package vectorstore persists component index records and serves
// similarity search over them.
//
// The Store interface covers the full boundary the indexer and searcher
// need: collection lifecycle (exists/create/delete), record counting,
// idempotent upsert keyed by deterministic IDs, cursor-paged scroll for
// registry rehydration, and bounded similarity search.
//
// Two backends are provided:
//
//   - QdrantStore: the Qdrant REST API. Result shapes from the search
//     endpoint vary across server versions (a bare array of scored points or
//     an object with a "points" member), and payloads may arrive as
//     mappings, sequences, or scalars; normalizeScored and decodePayload are
//     the single places that tolerate those shapes.
//
//   - SQLiteStore: an embedded database using modernc.org/sqlite by default
//     (CGO builds can select mattn/go-sqlite3 with the cgo_sqlite tag).
//     Vectors are stored as little-endian float32 blobs and cosine
//     similarity is computed in Go.
//
// Example:
//
//	store, err := vectorstore.NewSQLiteStore("~/.modscope/index.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
package vectorstore
