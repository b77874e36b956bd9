// Package embedder generates vector embeddings for component descriptions
// using pluggable providers.
//
// The embedder supports multiple providers (Jina AI, OpenAI, a local
// deterministic fallback) and provides batching, caching, rate limiting,
// and retry handling.
//
// # Basic Usage
//
//	// Create embedder (auto-detects provider from environment)
//	emb, err := embedder.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer emb.Close()
//
//	// Generate single embedding
//	result, err := emb.GenerateEmbedding(ctx, embedder.EmbeddingRequest{
//	    Text: types.EmbedText(component),
//	})
//	fmt.Printf("Vector dimension: %d\n", len(result.Vector))
//
// # Batch Processing
//
// Indexing works in batches; use GenerateBatch to reduce API round trips:
//
//	resp, err := emb.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{
//	    Texts: texts,
//	})
//
// # Provider Selection
//
// The embedder selects a provider based on environment variables:
//
//  1. If MODSCOPE_EMBEDDING_PROVIDER is set → use specified provider
//  2. Else if JINA_API_KEY is set → use Jina AI
//  3. Else if OPENAI_API_KEY is set → use OpenAI
//  4. Else → fallback to local provider (offline mode)
//
// # Dimension Resolution
//
// Collection creation needs the vector width before any real text is
// embedded. ResolveDimension probes the provider with a trivial input and
// falls back to a static model table when the probe fails:
//
//	dim, err := embedder.ResolveDimension(ctx, emb)
//
// # Caching
//
// Providers share an in-memory LRU cache keyed by content hash, so
// re-indexing an unchanged namespace never re-embeds identical text.
package embedder
