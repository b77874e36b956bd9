package embedder

import (
	"context"
	"fmt"
	"log"
)

// knownDimensions maps model names to their embedding width. Consulted when
// a live probe fails, so index creation can still pick a collection size.
var knownDimensions = map[string]int{
	DefaultJinaModel:         JinaDimension,
	"jina-embeddings-v2":     768,
	DefaultOpenAIModel:       OpenAIDimension,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
	"local-hash-v1":          LocalDimension,
}

// ResolveDimension determines the vector width an embedder produces.
// It embeds a trivial probe string and measures the result; if the probe
// fails (provider down, no network), it falls back to the static table
// keyed by model name.
func ResolveDimension(ctx context.Context, emb Embedder) (int, error) {
	probe, err := emb.GenerateEmbedding(ctx, EmbeddingRequest{Text: "dimension probe"})
	if err == nil && probe.Dimension > 0 {
		return probe.Dimension, nil
	}

	if err != nil {
		log.Printf("dimension probe failed for %s/%s, using static table: %v",
			emb.Provider(), emb.Model(), err)
	}

	if dim, ok := knownDimensions[emb.Model()]; ok {
		return dim, nil
	}

	if dim := emb.Dimension(); dim > 0 {
		return dim, nil
	}

	return 0, fmt.Errorf("%w: provider %s model %s", ErrUnknownDimension, emb.Provider(), emb.Model())
}
