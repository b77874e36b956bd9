// Package wrapper is the facade over namespace indexing and component
// search. Construct one Wrapper per namespace/collection pair, call
// Initialize once at startup, and serve lookups and searches from it.
//
//	w := wrapper.New(store, emb, "components", root, policy, indexer.Options{})
//	if _, err := w.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	resp, err := w.Search(ctx, searcher.SearchRequest{Query: "session"})
//
// Initialize and ForceReindexComponents are serialized; reads are safe at
// any time and observe atomic registry swaps, never partial updates.
package wrapper
