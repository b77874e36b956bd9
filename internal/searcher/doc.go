// Package searcher answers component queries against the registry and the
// vector store.
//
// Search is tiered by cost:
//
//  1. Exact name or path match against the in-memory registry, score 1.0.
//  2. Case-insensitive match against the registry, fixed score 0.95.
//  3. Semantic similarity against the vector store, scored by the store.
//
// A tier only runs when every cheaper tier found nothing, so an exact path
// lookup never calls the embedding provider.
//
//	searcher := searcher.New(store, emb, "components", sync)
//	resp, err := searcher.Search(ctx, searcher.SearchRequest{
//	    Query: "database session",
//	    Limit: 10,
//	})
//
// # Degraded mode
//
// Failures in the semantic tier (embedding provider down, store
// unreachable) are logged and return an empty result set rather than an
// error. Only a malformed request fails.
//
// # Caching
//
// Responses can be cached in an LRU keyed by a hash of the query, limit,
// and threshold, with per-entry TTL. InvalidateCache drops everything after
// a reindex.
package searcher
