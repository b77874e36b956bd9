package wrapper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/hbollon/go-edlib"

	"github.com/dshills/modscope-mcp/internal/embedder"
	"github.com/dshills/modscope-mcp/internal/indexer"
	"github.com/dshills/modscope-mcp/internal/namespace"
	"github.com/dshills/modscope-mcp/internal/searcher"
	"github.com/dshills/modscope-mcp/internal/vectorstore"
	"github.com/dshills/modscope-mcp/internal/walker"
	"github.com/dshills/modscope-mcp/pkg/types"
)

// maxSuggestions caps the fuzzy suggestions offered on a missed lookup.
const maxSuggestions = 3

var (
	// ErrNotInitialized is returned by read operations before Initialize.
	ErrNotInitialized = errors.New("wrapper not initialized")

	// ErrComponentNotFound is returned when a path resolves to nothing.
	ErrComponentNotFound = errors.New("component not found")
)

// NotFoundError carries fuzzy suggestions for a missed path lookup.
type NotFoundError struct {
	Path        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("component not found: %s", e.Path)
	}
	return fmt.Sprintf("component not found: %s (did you mean %v?)", e.Path, e.Suggestions)
}

func (e *NotFoundError) Unwrap() error { return ErrComponentNotFound }

// Info is the lookup view of one component.
type Info struct {
	Name       string
	Path       string
	Kind       types.ComponentKind
	DocSummary string
	Children   []string
	HasSource  bool
}

// Status reports the wrapper's current state.
type Status struct {
	Initialized bool
	Collection  string
	Components  int
	Provider    string
	Model       string
}

// Wrapper is the single entry point over the indexing and search machinery.
// It owns one synchronizer and one searcher for a collection, serializes
// initialization and reindexing, and serves lookups from the registry.
//
// Reads during a reindex see whichever registry is current; the registry is
// swapped atomically, never mutated in place, so a read observes either the
// old index or the new one but no half-built state.
type Wrapper struct {
	sync     *indexer.Synchronizer
	searcher *searcher.Searcher
	emb      embedder.Embedder
	store    vectorstore.Store
	root     namespace.Handle

	collection  string
	mu          sync.Mutex // serializes Initialize and ForceReindexComponents
	initialized atomic.Bool
}

// New wires a wrapper for one namespace and one store collection.
func New(store vectorstore.Store, emb embedder.Embedder, collection string,
	root namespace.Handle, policy walker.Policy, opts indexer.Options) *Wrapper {

	s := indexer.New(store, emb, collection, root, policy, opts)
	return &Wrapper{
		sync:       s,
		searcher:   searcher.New(store, emb, collection, s),
		emb:        emb,
		store:      store,
		root:       root,
		collection: collection,
	}
}

// Initialize prepares the collection and registry. Safe to call more than
// once; calls are serialized and later calls re-run the indexing decision.
func (w *Wrapper) Initialize(ctx context.Context) (*indexer.Stats, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	stats, err := w.sync.Initialize(ctx)
	if err != nil {
		return nil, err
	}
	w.initialized.Store(true)

	if stats.Reindexed {
		log.Printf("indexed %d components into %s (%d skipped, %d errored)",
			stats.ComponentsIndexed, w.collection, stats.ComponentsSkipped, stats.ComponentsErrored)
	} else {
		log.Printf("rehydrated %d components from %s", stats.Rehydrated, w.collection)
	}
	return stats, nil
}

// Search runs a tiered query. See the searcher package for tier semantics.
func (w *Wrapper) Search(ctx context.Context, req searcher.SearchRequest) (*searcher.SearchResponse, error) {
	if !w.initialized.Load() {
		return nil, ErrNotInitialized
	}
	return w.searcher.Search(ctx, req)
}

// SearchAsync runs Search in the background, delivering exactly one result.
func (w *Wrapper) SearchAsync(ctx context.Context, req searcher.SearchRequest) <-chan searcher.Result {
	if !w.initialized.Load() {
		ch := make(chan searcher.Result, 1)
		ch <- searcher.Result{Err: ErrNotInitialized}
		return ch
	}
	return w.searcher.SearchAsync(ctx, req)
}

// GetByPath returns the component registered at an exact path.
func (w *Wrapper) GetByPath(path string) (*types.Component, error) {
	if !w.initialized.Load() {
		return nil, ErrNotInitialized
	}
	c, err := w.sync.Registry().Get(path)
	if err != nil {
		return nil, w.notFound(path)
	}
	return c, nil
}

// GetInfo returns the lookup view of a component. A miss carries up to three
// fuzzy path suggestions.
func (w *Wrapper) GetInfo(path string) (*Info, error) {
	c, err := w.GetByPath(path)
	if err != nil {
		return nil, err
	}
	return &Info{
		Name:       c.Name,
		Path:       c.FullPath,
		Kind:       c.Kind,
		DocSummary: c.DocSummary,
		Children:   c.ChildNames(),
		HasSource:  c.SourceExcerpt != "",
	}, nil
}

// GetSource returns a component's source excerpt. A rehydrated registry may
// carry components without one; those fall back to resolving the path against
// the live namespace and reading the source there.
func (w *Wrapper) GetSource(path string) (string, error) {
	c, err := w.GetByPath(path)
	if err != nil {
		return "", err
	}
	if c.SourceExcerpt != "" {
		return c.SourceExcerpt, nil
	}

	if h, err := namespace.Resolve(w.root, path); err == nil {
		if src, err := h.Source(); err == nil && src != "" {
			return types.TruncateSource(src), nil
		}
	}
	return "", fmt.Errorf("no source captured for %s", path)
}

// ListPaths returns the sorted component paths, optionally filtered by kind.
func (w *Wrapper) ListPaths(kind types.ComponentKind) ([]string, error) {
	if !w.initialized.Load() {
		return nil, ErrNotInitialized
	}
	return w.sync.Registry().List(kind), nil
}

// ForceReindexComponents rebuilds the collection from a fresh walk and drops
// the query cache. Concurrent requests are refused, not queued; an Initialize
// already holding the wrapper lock refuses a reindex the same way, while an
// Initialize arriving during a reindex blocks until it completes.
func (w *Wrapper) ForceReindexComponents(ctx context.Context) (*indexer.Stats, error) {
	if !w.initialized.Load() {
		return nil, ErrNotInitialized
	}

	if !w.mu.TryLock() {
		return nil, indexer.ErrReindexInProgress
	}
	defer w.mu.Unlock()

	stats, err := w.sync.ForceReindex(ctx)
	if err != nil {
		return nil, err
	}
	w.searcher.InvalidateCache()

	log.Printf("reindexed %d components into %s", stats.ComponentsIndexed, w.collection)
	return stats, nil
}

// Status reports the wrapper's current state for diagnostics.
func (w *Wrapper) Status() Status {
	return Status{
		Initialized: w.initialized.Load(),
		Collection:  w.collection,
		Components:  w.sync.Registry().Len(),
		Provider:    w.emb.Provider(),
		Model:       w.emb.Model(),
	}
}

// Close releases the store and embedder.
func (w *Wrapper) Close() error {
	embErr := w.emb.Close()
	storeErr := w.store.Close()
	if embErr != nil {
		return embErr
	}
	return storeErr
}

// notFound builds a NotFoundError with fuzzy suggestions from the registry.
func (w *Wrapper) notFound(path string) error {
	paths := w.sync.Registry().List("")

	suggestions, err := edlib.FuzzySearchSet(path, paths, maxSuggestions, edlib.JaroWinkler)
	if err != nil {
		suggestions = nil
	}
	// FuzzySearchSet pads with empty strings when fewer candidates exist.
	out := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		if s != "" {
			out = append(out, s)
		}
	}
	return &NotFoundError{Path: path, Suggestions: out}
}
