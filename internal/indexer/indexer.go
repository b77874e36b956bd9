package indexer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/modscope-mcp/internal/embedder"
	"github.com/dshills/modscope-mcp/internal/namespace"
	"github.com/dshills/modscope-mcp/internal/registry"
	"github.com/dshills/modscope-mcp/internal/vectorstore"
	"github.com/dshills/modscope-mcp/internal/walker"
	"github.com/dshills/modscope-mcp/pkg/types"
)

const (
	// DefaultBatchSize is the number of components embedded and upserted per batch.
	DefaultBatchSize = 50

	// DefaultEmbedConcurrency bounds concurrent embedding calls within one batch.
	DefaultEmbedConcurrency = 4
)

// ErrReindexInProgress is returned when a reindex is requested while another
// is still running.
var ErrReindexInProgress = errors.New("reindex already in progress")

// Options configures synchronizer startup behavior.
type Options struct {
	ClearCollection  bool   // drop the collection before initializing
	ForceReindex     bool   // re-walk and re-upsert even if records exist
	BatchSize        int    // components per upsert batch (default DefaultBatchSize)
	EmbedConcurrency int    // concurrent embeddings per batch (default DefaultEmbedConcurrency)
	NamespaceVersion string // recorded in every payload, informational

	// Distance is the similarity metric used when the collection is created.
	Distance vectorstore.Distance
}

// Stats describes one Initialize or ForceReindex run.
type Stats struct {
	ComponentsIndexed int
	ComponentsSkipped int
	ComponentsErrored int
	Rehydrated        int
	BatchesWritten    int
	Reindexed         bool
	Duration          time.Duration
	ErrorMessages     []string
}

// Synchronizer keeps a vector store collection in step with a walked
// namespace. On startup it decides between a fresh walk-and-index and
// rehydrating the in-memory registry from records already in the store;
// upsert IDs are deterministic, so repeated indexing never duplicates.
type Synchronizer struct {
	store      vectorstore.Store
	emb        embedder.Embedder
	collection string
	root       namespace.Handle
	policy     walker.Policy
	opts       Options

	lock IndexLock // serializes forced reindexes

	mu  sync.RWMutex
	reg *registry.Registry
}

// New creates a Synchronizer. Defaults are applied to zero-valued options.
func New(store vectorstore.Store, emb embedder.Embedder, collection string,
	root namespace.Handle, policy walker.Policy, opts Options) *Synchronizer {

	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.EmbedConcurrency <= 0 {
		opts.EmbedConcurrency = DefaultEmbedConcurrency
	}
	if opts.Distance == "" {
		opts.Distance = vectorstore.DistanceCosine
	}

	return &Synchronizer{
		store:      store,
		emb:        emb,
		collection: collection,
		root:       root,
		policy:     policy,
		opts:       opts,
		reg:        registry.New(),
	}
}

// Collection returns the collection name this synchronizer manages.
func (s *Synchronizer) Collection() string {
	return s.collection
}

// Registry returns the current in-memory registry. The returned registry is
// replaced wholesale by Initialize and ForceReindex, never mutated in place,
// so callers may read it without holding the synchronizer's lock.
func (s *Synchronizer) Registry() *registry.Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg
}

// Initialize brings the collection and registry into a usable state.
//
// A missing or empty collection (or ForceReindex/ClearCollection options)
// triggers a full walk and batch upsert. A populated collection is instead
// paged back into the registry without touching the namespace or the
// embedding provider. Collection management failures are fatal; individual
// component failures during indexing are logged and skipped.
func (s *Synchronizer) Initialize(ctx context.Context) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}

	if s.opts.ClearCollection {
		if err := s.store.DeleteCollection(ctx, s.collection); err != nil && !errors.Is(err, vectorstore.ErrCollectionNotFound) {
			return nil, fmt.Errorf("clearing collection %s: %w", s.collection, err)
		}
	}

	exists, err := s.store.CollectionExists(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("checking collection %s: %w", s.collection, err)
	}

	needIndex := false
	switch {
	case !exists:
		if err := s.createCollection(ctx); err != nil {
			return nil, err
		}
		needIndex = true
	case s.opts.ForceReindex:
		needIndex = true
	default:
		count, err := s.store.Count(ctx, s.collection)
		if err != nil {
			return nil, fmt.Errorf("counting collection %s: %w", s.collection, err)
		}
		needIndex = count == 0
	}

	if needIndex {
		if err := s.index(ctx, stats); err != nil {
			return nil, err
		}
		stats.Reindexed = true
	} else {
		if err := s.rehydrate(ctx, stats); err != nil {
			return nil, err
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// ForceReindex drops the collection, recreates it, and indexes from a fresh
// walk. Only one reindex runs at a time; concurrent requests get
// ErrReindexInProgress instead of queueing.
func (s *Synchronizer) ForceReindex(ctx context.Context) (*Stats, error) {
	if !s.lock.TryAcquire() {
		return nil, ErrReindexInProgress
	}
	defer s.lock.Release()

	start := time.Now()
	stats := &Stats{Reindexed: true}

	if err := s.store.DeleteCollection(ctx, s.collection); err != nil && !errors.Is(err, vectorstore.ErrCollectionNotFound) {
		return nil, fmt.Errorf("clearing collection %s: %w", s.collection, err)
	}
	if err := s.createCollection(ctx); err != nil {
		return nil, err
	}
	if err := s.index(ctx, stats); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

func (s *Synchronizer) createCollection(ctx context.Context) error {
	dim, err := embedder.ResolveDimension(ctx, s.emb)
	if err != nil {
		return fmt.Errorf("resolving embedding dimension: %w", err)
	}
	if err := s.store.CreateCollection(ctx, s.collection, dim, s.opts.Distance); err != nil {
		return fmt.Errorf("creating collection %s: %w", s.collection, err)
	}
	return nil
}

// index walks the namespace and upserts every discovered component in
// sequential batches. The registry is swapped in even if some batches fail,
// so search over the in-memory index still works in degraded mode.
func (s *Synchronizer) index(ctx context.Context, stats *Stats) error {
	res := walker.Walk(s.root, s.policy)
	stats.ComponentsSkipped = len(res.Skipped)
	stats.ComponentsErrored = res.Errored

	components := res.Registry.All()
	for start := 0; start < len(components); start += s.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + s.opts.BatchSize
		if end > len(components) {
			end = len(components)
		}
		s.upsertBatch(ctx, components[start:end], stats)
	}

	s.mu.Lock()
	s.reg = res.Registry
	s.mu.Unlock()

	return nil
}

// upsertBatch embeds one batch concurrently and writes it in a single upsert.
// A component whose embedding fails is logged and dropped from the batch; a
// failed upsert drops the whole batch. Neither aborts indexing.
func (s *Synchronizer) upsertBatch(ctx context.Context, batch []*types.Component, stats *Stats) {
	vectors := make([]*embedder.Embedding, len(batch))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.EmbedConcurrency)

	for i, c := range batch {
		g.Go(func() error {
			emb, err := s.emb.GenerateEmbedding(gctx, embedder.EmbeddingRequest{
				Text: types.EmbedText(c),
			})
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Printf("embedding %s failed, skipping: %v", c.FullPath, err)
				mu.Lock()
				stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", c.FullPath, err))
				mu.Unlock()
				return nil
			}
			vectors[i] = emb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return
	}

	now := time.Now().UTC()
	records := make([]vectorstore.Record, 0, len(batch))
	for i, c := range batch {
		if vectors[i] == nil {
			continue
		}
		records = append(records, vectorstore.Record{
			ID:     types.Identity(s.collection, c.FullPath),
			Vector: vectors[i].Vector,
			Payload: vectorstore.Payload{
				Name:             c.Name,
				Path:             c.FullPath,
				Kind:             string(c.Kind),
				DocSummary:       c.DocSummary,
				Source:           c.SourceExcerpt,
				IndexedAt:        now,
				NamespaceVersion: s.opts.NamespaceVersion,
			},
		})
	}
	if len(records) == 0 {
		return
	}

	if err := s.store.Upsert(ctx, s.collection, records); err != nil {
		log.Printf("upsert batch of %d to %s failed, skipping: %v", len(records), s.collection, err)
		stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("batch upsert: %v", err))
		return
	}

	stats.ComponentsIndexed += len(records)
	stats.BatchesWritten++
}

// rehydrate pages the collection back into a fresh registry. Rehydrated
// components carry payload data only; parent links and live namespace
// handles are not reconstructed.
func (s *Synchronizer) rehydrate(ctx context.Context, stats *Stats) error {
	var recs []registry.RehydratedComponent

	cursor := ""
	for {
		page, next, err := s.store.Scroll(ctx, s.collection, s.opts.BatchSize, cursor)
		if err != nil {
			return fmt.Errorf("scrolling collection %s: %w", s.collection, err)
		}
		for _, r := range page {
			recs = append(recs, registry.RehydratedComponent{
				Name:       r.Payload.Name,
				Path:       r.Payload.Path,
				Kind:       types.ComponentKind(r.Payload.Kind),
				DocSummary: r.Payload.DocSummary,
				Source:     r.Payload.Source,
			})
		}
		if next == "" || len(page) == 0 {
			break
		}
		cursor = next
	}

	reg := registry.LoadFromRecords(recs)

	s.mu.Lock()
	s.reg = reg
	s.mu.Unlock()

	stats.Rehydrated = reg.Len()
	return nil
}
