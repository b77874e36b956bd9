package types

import (
	"errors"
	"strings"
)

// ComponentKind classifies an indexed namespace member. This is a closed tag
// set, not a type hierarchy.
type ComponentKind string

const (
	KindClass    ComponentKind = "class"
	KindFunction ComponentKind = "function"
	KindMethod   ComponentKind = "method"
	KindModule   ComponentKind = "module"
	KindVariable ComponentKind = "variable"
	KindSkipped  ComponentKind = "skipped"
	KindError    ComponentKind = "error"
)

// MaxSourceExcerptLen bounds the source text captured per component.
const MaxSourceExcerptLen = 1000

// Component is one indexed, path-addressable symbol discovered under a
// namespace. Components are created during a single indexing pass and
// replaced wholesale on re-index; they are never mutated in place after
// insertion into the registry.
type Component struct {
	// Identification
	Name     string
	FullPath string // dot-joined path from the namespace root; unique key
	Kind     ComponentKind

	// Content
	DocSummary    string // first line of documentation, possibly empty
	SourceExcerpt string // bounded-length source text, empty if unavailable

	// Parent is a lookup-only back-reference to the owning component.
	// It is nil for roots and for components rehydrated from the store.
	Parent *Component

	// Children maps child name to child component; owned by this component.
	Children map[string]*Component
}

// AddChild attaches a child component, establishing the back-reference.
func (c *Component) AddChild(child *Component) {
	if c.Children == nil {
		c.Children = make(map[string]*Component)
	}
	child.Parent = c
	c.Children[child.Name] = child
}

// ChildNames returns the names of direct children in unspecified order.
func (c *Component) ChildNames() []string {
	names := make([]string, 0, len(c.Children))
	for name := range c.Children {
		names = append(names, name)
	}
	return names
}

// ValidateKind checks if the component kind is one of the closed tag set.
func (c *Component) ValidateKind() error {
	switch c.Kind {
	case KindClass, KindFunction, KindMethod, KindModule, KindVariable, KindSkipped, KindError:
		return nil
	default:
		return errors.New("invalid component kind")
	}
}

// TruncateSource caps source text at MaxSourceExcerptLen.
func TruncateSource(src string) string {
	if len(src) > MaxSourceExcerptLen {
		return src[:MaxSourceExcerptLen]
	}
	return src
}

// FirstDocLine reduces a documentation string to its first non-empty line.
func FirstDocLine(doc string) string {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return ""
	}
	if i := strings.IndexByte(doc, '\n'); i >= 0 {
		return strings.TrimSpace(doc[:i])
	}
	return doc
}

// JoinPath builds a dotted component path from a parent path and a local name.
func JoinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
