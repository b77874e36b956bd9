package namespace

import (
	"github.com/google/uuid"

	"github.com/dshills/modscope-mcp/pkg/types"
)

// Hook names a Static handle operation that can be made to fail, used to
// exercise the walker's degraded paths against hostile members.
type Hook string

const (
	HookName     Hook = "name"
	HookKind     Hook = "kind"
	HookDoc      Hook = "doc"
	HookSource   Hook = "source"
	HookMembers  Hook = "members"
	HookIdentity Hook = "identity"
)

// Static is an in-memory Handle implementation built programmatically. The
// catalog loader compiles declarative catalogs into Static trees, and tests
// use it to model arbitrary namespace shapes, including reference cycles.
type Static struct {
	name      string
	kind      types.ComponentKind
	doc       string
	source    string
	qualified string
	members   []*Static
	id        string
	failures  map[Hook]error
}

func newStatic(name string, kind types.ComponentKind) *Static {
	return &Static{
		name: name,
		kind: kind,
		id:   uuid.NewString(),
	}
}

// NewModule creates a namespace node. Modules are the only nodes subject to
// the walker's depth counter and cycle detection.
func NewModule(name string) *Static {
	return newStatic(name, types.KindModule)
}

// NewClass creates a class node whose function members become methods.
func NewClass(name, doc string) *Static {
	c := newStatic(name, types.KindClass)
	c.doc = doc
	return c
}

// NewFunc creates a function node.
func NewFunc(name, doc string) *Static {
	f := newStatic(name, types.KindFunction)
	f.doc = doc
	return f
}

// NewVar creates a variable node.
func NewVar(name string) *Static {
	return newStatic(name, types.KindVariable)
}

// Add attaches children and returns the receiver for chaining. Adding a node
// that is already an ancestor creates a reference cycle, which the walker
// must survive.
func (s *Static) Add(children ...*Static) *Static {
	s.members = append(s.members, children...)
	return s
}

// SetDoc sets the node's documentation and returns the receiver.
func (s *Static) SetDoc(doc string) *Static {
	s.doc = doc
	return s
}

// SetSource sets the node's source text and returns the receiver.
func (s *Static) SetSource(src string) *Static {
	s.source = src
	return s
}

// SetQualified overrides the canonical name reported to prefix policy.
func (s *Static) SetQualified(qualified string) *Static {
	s.qualified = qualified
	return s
}

// FailHook makes the named operation return err on every call.
func (s *Static) FailHook(hook Hook, err error) *Static {
	if s.failures == nil {
		s.failures = make(map[Hook]error)
	}
	s.failures[hook] = err
	return s
}

func (s *Static) hookErr(hook Hook) error {
	if s.failures == nil {
		return nil
	}
	return s.failures[hook]
}

func (s *Static) Name() (string, error) {
	if err := s.hookErr(HookName); err != nil {
		return "", err
	}
	return s.name, nil
}

func (s *Static) Kind() (types.ComponentKind, error) {
	if err := s.hookErr(HookKind); err != nil {
		return "", err
	}
	return s.kind, nil
}

func (s *Static) Doc() (string, error) {
	if err := s.hookErr(HookDoc); err != nil {
		return "", err
	}
	return s.doc, nil
}

func (s *Static) Source() (string, error) {
	if err := s.hookErr(HookSource); err != nil {
		return "", err
	}
	return s.source, nil
}

func (s *Static) Members() ([]Handle, error) {
	if err := s.hookErr(HookMembers); err != nil {
		return nil, err
	}
	if s.kind != types.KindModule && s.kind != types.KindClass {
		return nil, ErrNotNamespace
	}
	handles := make([]Handle, len(s.members))
	for i, m := range s.members {
		handles[i] = m
	}
	return handles, nil
}

func (s *Static) Identity() (string, error) {
	if err := s.hookErr(HookIdentity); err != nil {
		return "", err
	}
	return s.id, nil
}

// Qualified implements Qualifier when an override was set.
func (s *Static) Qualified() (string, error) {
	return s.qualified, nil
}
