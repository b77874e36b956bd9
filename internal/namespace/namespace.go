package namespace

import (
	"errors"
	"regexp"
	"strings"

	"github.com/dshills/modscope-mcp/pkg/types"
)

// Common errors
var (
	// ErrNotFound is returned when a named member does not exist
	ErrNotFound = errors.New("member not found")
	// ErrNotNamespace is returned when members are requested from a leaf handle
	ErrNotNamespace = errors.New("handle has no members")
)

// Handle is one introspectable member of a namespace. Every method is
// fallible: implementations wrap runtime reflection whose hooks may
// themselves fail, and callers must treat any of them as throwable.
type Handle interface {
	// Name returns the member's local identifier within its parent.
	Name() (string, error)

	// Kind classifies the member.
	Kind() (types.ComponentKind, error)

	// Doc returns the member's documentation, possibly empty.
	Doc() (string, error)

	// Source returns the member's source text, empty if unavailable.
	Source() (string, error)

	// Members enumerates the member's direct children. Leaf handles return
	// ErrNotNamespace.
	Members() ([]Handle, error)

	// Identity returns a token stable across walks of the same tree, used
	// for cycle detection on nested namespaces.
	Identity() (string, error)
}

// Qualifier is implemented by handles whose canonical name differs from
// their position in the tree, such as an imported submodule. The walker
// checks the qualified name against include/exclude prefix policy.
type Qualifier interface {
	Qualified() (string, error)
}

// QualifiedName returns a handle's canonical name, falling back to the given
// tree position when the handle does not qualify itself or the lookup fails.
func QualifiedName(h Handle, fallback string) string {
	if q, ok := h.(Qualifier); ok {
		if name, err := q.Qualified(); err == nil && name != "" {
			return name
		}
	}
	return fallback
}

// Child finds a direct member of h by name. Any introspection failure along
// the way yields ErrNotFound rather than propagating.
func Child(h Handle, name string) (Handle, error) {
	members, err := h.Members()
	if err != nil {
		return nil, ErrNotFound
	}
	for _, m := range members {
		n, err := m.Name()
		if err != nil {
			continue
		}
		if n == name {
			return m, nil
		}
	}
	return nil, ErrNotFound
}

var versionSuffix = regexp.MustCompile(`[-_]v?\d+(\.\d+)*$`)

// StripVersion removes a trailing version marker from a namespace name, so
// "toolkit-1.2.3" and "toolkit_v2" both resolve as "toolkit".
func StripVersion(name string) string {
	return versionSuffix.ReplaceAllString(name, "")
}

// Resolve walks a dotted path against a live namespace root. A leading
// segment equal to the root's version-stripped name is consumed first; any
// failure along the way yields ErrNotFound, never a crash.
func Resolve(root Handle, path string) (Handle, error) {
	if path == "" {
		return nil, ErrNotFound
	}
	segments := strings.Split(path, ".")

	rootName, err := root.Name()
	if err == nil && len(segments) > 0 && segments[0] == StripVersion(rootName) {
		segments = segments[1:]
	}

	current := root
	for _, seg := range segments {
		next, err := Child(current, seg)
		if err != nil {
			return nil, ErrNotFound
		}
		current = next
	}
	return current, nil
}
