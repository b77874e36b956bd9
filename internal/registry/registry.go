package registry

import (
	"errors"
	"sort"

	"github.com/dshills/modscope-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when no component exists at a requested path
	ErrNotFound = errors.New("component not found")
	// ErrDuplicatePath is returned when an upsert would break path uniqueness
	ErrDuplicatePath = errors.New("duplicate component path")
)

// Registry owns the full component set discovered for one namespace. Paths
// are the authoritative index: every entry reachable from a root by
// following Children appears under the same path, and no two components
// share a path.
//
// A registry is rebuilt wholesale per indexing pass. It is safe for
// concurrent readers; writers must be serialized by the caller (the wrapper
// holds a mutex around initialization and re-indexing).
type Registry struct {
	byPath  map[string]*types.Component
	roots   map[string]*types.Component
	visited map[string]struct{}
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byPath:  make(map[string]*types.Component),
		roots:   make(map[string]*types.Component),
		visited: make(map[string]struct{}),
	}
}

// Upsert inserts a component under its FullPath, replacing any previous
// entry at that path.
func (r *Registry) Upsert(c *types.Component) {
	r.byPath[c.FullPath] = c
}

// AddRoot registers a top-level member and indexes it by path.
func (r *Registry) AddRoot(c *types.Component) {
	r.roots[c.Name] = c
	r.Upsert(c)
}

// Get returns the component at a path, or ErrNotFound.
func (r *Registry) Get(path string) (*types.Component, error) {
	c, ok := r.byPath[path]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

// Roots returns the top-level components keyed by name.
func (r *Registry) Roots() map[string]*types.Component {
	return r.roots
}

// Len returns the number of indexed components.
func (r *Registry) Len() int {
	return len(r.byPath)
}

// List returns the sorted paths of all components, optionally filtered by
// kind. An empty filter matches everything.
func (r *Registry) List(kindFilter types.ComponentKind) []string {
	paths := make([]string, 0, len(r.byPath))
	for path, c := range r.byPath {
		if kindFilter != "" && c.Kind != kindFilter {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// All returns every component in unspecified order.
func (r *Registry) All() []*types.Component {
	comps := make([]*types.Component, 0, len(r.byPath))
	for _, c := range r.byPath {
		comps = append(comps, c)
	}
	return comps
}

// MarkVisited records a namespace identity for the current indexing pass.
// It reports whether the identity had already been seen, which is what
// guarantees walk termination on reference cycles.
func (r *Registry) MarkVisited(identity string) bool {
	if _, seen := r.visited[identity]; seen {
		return true
	}
	r.visited[identity] = struct{}{}
	return false
}

// VisitedCount returns how many namespace identities this pass has walked.
func (r *Registry) VisitedCount() int {
	return len(r.visited)
}

// RehydratedComponent is the persisted payload shape the registry can be
// reloaded from without re-walking the namespace.
type RehydratedComponent struct {
	Name       string
	Path       string
	Kind       types.ComponentKind
	DocSummary string
	Source     string
}

// LoadFromRecords reconstructs a registry from persisted payloads. Parent
// links are not reconstructed: rehydrated components carry a nil Parent, and
// callers needing the live namespace object must re-resolve by path.
func LoadFromRecords(records []RehydratedComponent) *Registry {
	r := New()
	for _, rec := range records {
		if rec.Path == "" {
			continue
		}
		c := &types.Component{
			Name:          rec.Name,
			FullPath:      rec.Path,
			Kind:          rec.Kind,
			DocSummary:    rec.DocSummary,
			SourceExcerpt: rec.Source,
		}
		r.Upsert(c)
	}
	return r
}
