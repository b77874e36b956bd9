package searcher

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/modscope-mcp/internal/embedder"
	"github.com/dshills/modscope-mcp/internal/registry"
	"github.com/dshills/modscope-mcp/internal/vectorstore"
	"github.com/dshills/modscope-mcp/pkg/types"
)

const (
	// DefaultLimit is the result cap applied when a request does not set one.
	DefaultLimit = 10

	// MaxLimit bounds any requested limit.
	MaxLimit = 100

	// ScoreExact is assigned to exact name or path matches.
	ScoreExact = 1.0

	// ScoreCaseInsensitive is assigned to case-insensitive matches. Fixed
	// below ScoreExact so exact hits always outrank them.
	ScoreCaseInsensitive = 0.95

	// DefaultCacheTTL is how long a cached response stays valid.
	DefaultCacheTTL = 5 * time.Minute

	cacheSize = 1000
)

// SearchRequest contains parameters for one search.
type SearchRequest struct {
	Query          string
	Limit          int
	ScoreThreshold float64 // minimum semantic score, ignored by exact tiers
	UseCache       bool
	CacheTTL       time.Duration
}

// SearchResponse contains results and search metadata.
type SearchResponse struct {
	Results      []types.ScoredResult
	TotalResults int
	Origin       types.MatchOrigin // tier that produced the results
	Duration     time.Duration
	CacheHit     bool
}

// RegistrySource yields the current component registry. The synchronizer
// swaps registries wholesale on reindex, so the searcher resolves it per
// query instead of holding a stale pointer.
type RegistrySource interface {
	Registry() *registry.Registry
}

// cacheEntry is a cached response with expiration time.
type cacheEntry struct {
	response  *SearchResponse
	expiresAt time.Time
}

// Searcher answers component queries in three tiers: exact match against
// the registry, case-insensitive match against the registry, and semantic
// similarity against the vector store. Cheaper tiers short-circuit the
// expensive ones; the embedding provider is only consulted when both
// registry tiers miss.
type Searcher struct {
	store      vectorstore.Store
	embedder   embedder.Embedder
	collection string
	source     RegistrySource
	cache      *lru.Cache[uint64, *cacheEntry]
}

// New creates a Searcher over the given store collection and registry source.
func New(store vectorstore.Store, emb embedder.Embedder, collection string, source RegistrySource) *Searcher {
	cache, err := lru.New[uint64, *cacheEntry](cacheSize)
	if err != nil {
		// Unreachable with a positive size.
		panic(fmt.Sprintf("creating query cache: %v", err))
	}

	return &Searcher{
		store:      store,
		embedder:   emb,
		collection: collection,
		source:     source,
		cache:      cache,
	}
}

// Search runs the tiered lookup. Backend failures during the semantic tier
// degrade to an empty result set rather than an error; only an invalid
// request fails.
func (s *Searcher) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	startTime := time.Now()

	normalizeRequest(&req)
	if req.Query == "" {
		return &SearchResponse{Duration: time.Since(startTime)}, nil
	}

	if req.UseCache {
		if cached, ok := s.checkCache(req); ok {
			cached.CacheHit = true
			cached.Duration = time.Since(startTime)
			return cached, nil
		}
	}

	reg := s.source.Registry()

	results := exactMatches(reg, req.Query)
	origin := types.OriginExact

	if len(results) == 0 {
		results = caseInsensitiveMatches(reg, req.Query)
		origin = types.OriginCaseInsensitive
	}

	if len(results) == 0 {
		results = s.semanticMatches(ctx, reg, req)
		origin = types.OriginSemantic
	}

	if len(results) > req.Limit {
		results = results[:req.Limit]
	}

	response := &SearchResponse{
		Results:      results,
		TotalResults: len(results),
		Origin:       origin,
		Duration:     time.Since(startTime),
	}

	if req.UseCache && len(response.Results) > 0 {
		s.storeInCache(req, response)
	}

	return response, nil
}

// Result pairs a response with the error from an async search.
type Result struct {
	Response *SearchResponse
	Err      error
}

// SearchAsync runs Search in a goroutine and delivers exactly one Result.
// The channel is buffered, so an abandoned search never leaks its goroutine.
func (s *Searcher) SearchAsync(ctx context.Context, req SearchRequest) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		resp, err := s.Search(ctx, req)
		ch <- Result{Response: resp, Err: err}
	}()
	return ch
}

func normalizeRequest(req *SearchRequest) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}
	if req.CacheTTL <= 0 {
		req.CacheTTL = DefaultCacheTTL
	}
}

// exactMatches returns components whose name or full path equals the query.
func exactMatches(reg *registry.Registry, query string) []types.ScoredResult {
	var results []types.ScoredResult
	for _, c := range reg.All() {
		if c.Name == query || c.FullPath == query {
			results = append(results, scored(c, ScoreExact, types.OriginExact))
		}
	}
	sortByPath(results)
	return results
}

// caseInsensitiveMatches returns components whose name or path matches the
// query ignoring case. All hits share one fixed score.
func caseInsensitiveMatches(reg *registry.Registry, query string) []types.ScoredResult {
	var results []types.ScoredResult
	for _, c := range reg.All() {
		if strings.EqualFold(c.Name, query) || strings.EqualFold(c.FullPath, query) {
			results = append(results, scored(c, ScoreCaseInsensitive, types.OriginCaseInsensitive))
		}
	}
	sortByPath(results)
	return results
}

// semanticMatches embeds the query and searches the vector store. Any
// backend failure is logged and produces an empty slice; a search query
// must never take the server down.
func (s *Searcher) semanticMatches(ctx context.Context, reg *registry.Registry, req SearchRequest) []types.ScoredResult {
	embedding, err := s.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: req.Query})
	if err != nil {
		log.Printf("query embedding failed for %q: %v", req.Query, err)
		return nil
	}

	points, err := s.store.Search(ctx, s.collection, embedding.Vector, req.Limit, req.ScoreThreshold)
	if err != nil {
		log.Printf("vector search failed for %q: %v", req.Query, err)
		return nil
	}

	results := make([]types.ScoredResult, 0, len(points))
	for _, p := range points {
		r := types.ScoredResult{
			Name:       p.Payload.Name,
			Path:       p.Payload.Path,
			Kind:       types.ComponentKind(p.Payload.Kind),
			Score:      p.Score,
			Origin:     types.OriginSemantic,
			DocSummary: p.Payload.DocSummary,
		}
		// Attach the live component when the registry still has it.
		if c, err := reg.Get(p.Payload.Path); err == nil {
			r.Component = c
		}
		results = append(results, r)
	}
	return results
}

func scored(c *types.Component, score float64, origin types.MatchOrigin) types.ScoredResult {
	return types.ScoredResult{
		Name:       c.Name,
		Path:       c.FullPath,
		Kind:       c.Kind,
		Score:      score,
		Origin:     origin,
		DocSummary: c.DocSummary,
		Component:  c,
	}
}

func sortByPath(results []types.ScoredResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})
}

// cacheKey hashes the request fields that affect results.
func cacheKey(req SearchRequest) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(req.Query)
	_, _ = fmt.Fprintf(h, "|%d|%g", req.Limit, req.ScoreThreshold)
	return h.Sum64()
}

func (s *Searcher) checkCache(req SearchRequest) (*SearchResponse, bool) {
	entry, ok := s.cache.Get(cacheKey(req))
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		s.cache.Remove(cacheKey(req))
		return nil, false
	}

	// Copy so callers cannot mutate the cached response.
	resp := *entry.response
	resp.Results = make([]types.ScoredResult, len(entry.response.Results))
	copy(resp.Results, entry.response.Results)
	return &resp, true
}

func (s *Searcher) storeInCache(req SearchRequest, resp *SearchResponse) {
	results := make([]types.ScoredResult, len(resp.Results))
	copy(results, resp.Results)

	s.cache.Add(cacheKey(req), &cacheEntry{
		response: &SearchResponse{
			Results:      results,
			TotalResults: resp.TotalResults,
			Origin:       resp.Origin,
		},
		expiresAt: time.Now().Add(req.CacheTTL),
	})
}

// InvalidateCache drops all cached responses. Called after a reindex so
// stale results do not outlive the registry they came from.
func (s *Searcher) InvalidateCache() {
	s.cache.Purge()
}
