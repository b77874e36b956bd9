package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/modscope-mcp/internal/namespace"
	"github.com/dshills/modscope-mcp/pkg/types"
)

var (
	// ErrEmptyCatalog is returned for a catalog without a root name.
	ErrEmptyCatalog = errors.New("catalog has no name")

	// ErrDuplicatePath is returned when two entries claim the same path.
	ErrDuplicatePath = errors.New("duplicate component path")
)

// File is the on-disk catalog format.
type File struct {
	// Name is the root namespace name, e.g. "mymod".
	Name string `toml:"name"`

	// Version is an optional semantic version recorded with every indexed
	// payload.
	Version string `toml:"version"`

	Components []Entry `toml:"components"`
}

// Entry declares one component by dotted path relative to the root name.
// Intermediate modules are created implicitly; an explicit entry for one may
// still appear to attach documentation.
type Entry struct {
	Path   string `toml:"path"`
	Kind   string `toml:"kind"` // module, class, function, variable
	Doc    string `toml:"doc"`
	Source string `toml:"source"`
}

// Load reads and builds a catalog from a TOML file.
func Load(path string) (*namespace.Static, *File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	root, err := Build(&f)
	if err != nil {
		return nil, nil, err
	}
	return root, &f, nil
}

// Build constructs the namespace tree a catalog describes.
func Build(f *File) (*namespace.Static, error) {
	if f.Name == "" {
		return nil, ErrEmptyCatalog
	}
	if f.Version != "" {
		if _, err := semver.NewVersion(f.Version); err != nil {
			return nil, fmt.Errorf("catalog version %q: %w", f.Version, err)
		}
	}

	root := namespace.NewModule(f.Name)
	nodes := map[string]*namespace.Static{"": root}
	implicit := map[string]bool{}

	// Parents sort before children, so one pass suffices.
	entries := make([]Entry, len(f.Components))
	copy(entries, f.Components)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	for _, e := range entries {
		if e.Path == "" {
			return nil, fmt.Errorf("component with empty path in catalog %s", f.Name)
		}

		segs := strings.Split(e.Path, ".")
		name := segs[len(segs)-1]

		parent, err := ensureModules(nodes, implicit, segs[:len(segs)-1])
		if err != nil {
			return nil, err
		}

		if existing, ok := nodes[e.Path]; ok {
			// An implicitly created module may be documented after the fact.
			if implicit[e.Path] && e.Kind == string(types.KindModule) {
				existing.SetDoc(e.Doc)
				implicit[e.Path] = false
				continue
			}
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, e.Path)
		}

		node, err := newNode(name, e)
		if err != nil {
			return nil, err
		}
		parent.Add(node)
		nodes[e.Path] = node
	}

	return root, nil
}

// ensureModules creates any missing intermediate modules along a path.
func ensureModules(nodes map[string]*namespace.Static, implicit map[string]bool, segs []string) (*namespace.Static, error) {
	parent := nodes[""]
	for i := range segs {
		path := strings.Join(segs[:i+1], ".")
		node, ok := nodes[path]
		if !ok {
			node = namespace.NewModule(segs[i])
			parent.Add(node)
			nodes[path] = node
			implicit[path] = true
		}
		parent = node
	}
	return parent, nil
}

func newNode(name string, e Entry) (*namespace.Static, error) {
	switch types.ComponentKind(e.Kind) {
	case types.KindModule:
		node := namespace.NewModule(name)
		node.SetDoc(e.Doc)
		return node, nil
	case types.KindClass:
		node := namespace.NewClass(name, e.Doc)
		if e.Source != "" {
			node.SetSource(e.Source)
		}
		return node, nil
	case types.KindFunction, types.KindMethod:
		node := namespace.NewFunc(name, e.Doc)
		if e.Source != "" {
			node.SetSource(e.Source)
		}
		return node, nil
	case types.KindVariable:
		node := namespace.NewVar(name)
		node.SetDoc(e.Doc)
		return node, nil
	default:
		return nil, fmt.Errorf("component %s has unknown kind %q", name, e.Kind)
	}
}
