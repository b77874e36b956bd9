// Package indexer synchronizes a walked namespace with a vector store
// collection.
//
// The Synchronizer owns startup: it decides whether the collection needs a
// fresh walk-and-index or can be rehydrated into the in-memory registry from
// records already present.
//
//	sync := indexer.New(store, emb, "components", root, policy, indexer.Options{})
//	stats, err := sync.Initialize(ctx)
//	if err != nil {
//	    log.Fatal(err) // collection management failed
//	}
//
// # Indexing decision
//
// Initialize indexes when the collection is missing, empty, or the
// ClearCollection/ForceReindex options are set; otherwise it scrolls the
// existing records back into the registry without calling the embedding
// provider at all.
//
// # Idempotency
//
// Record IDs are derived deterministically from (collection, component path),
// so re-indexing the same namespace overwrites records in place and the
// collection count stays stable across runs.
//
// # Degraded mode
//
// Collection create/delete/count failures abort Initialize with an error.
// Per-component embedding failures and per-batch upsert failures are logged,
// recorded in Stats.ErrorMessages, and skipped; the rest of the index still
// lands.
package indexer
