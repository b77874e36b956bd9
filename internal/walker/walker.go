package walker

import (
	"strings"

	"github.com/dshills/modscope-mcp/internal/namespace"
	"github.com/dshills/modscope-mcp/internal/registry"
	"github.com/dshills/modscope-mcp/pkg/types"
)

// DefaultMaxDepth bounds namespace recursion when the policy does not say.
const DefaultMaxDepth = 2

// DefaultStandardPrefixes lists namespace prefixes treated as standard or
// third-party when Policy.SkipStandardLibrary is set.
var DefaultStandardPrefixes = []string{"std", "builtin", "vendor"}

// Policy controls which members a walk includes.
type Policy struct {
	MaxDepth            int      // namespace-recursion bound (default DefaultMaxDepth)
	IncludePrivate      bool     // include names that are private by convention ("_" prefix)
	SkipStandardLibrary bool     // drop nested namespaces matching StandardPrefixes
	StandardPrefixes    []string // overrides DefaultStandardPrefixes when non-empty
	AllowPrefixes       []string // when non-empty, nested namespaces must match one
	DenyPrefixes        []string // nested namespaces matching any are dropped
}

// SkipReason explains why a member produced no component. Policy skips are
// expected; introspection failures degrade to error-kind components instead
// and do not appear here unless even the member's name was unreadable.
type SkipReason struct {
	Name  string
	Cause string
	Err   error
}

// Outcome is the per-member result: exactly one of Component or Skip is set.
type Outcome struct {
	Component *types.Component
	Skip      *SkipReason
}

// Result aggregates one walk invocation.
type Result struct {
	Registry *registry.Registry
	Skipped  []SkipReason
	Errored  int // members indexed with a degraded error/skipped kind
}

// walkState is scoped to a single walk invocation; the visited set lives on
// the registry being built, so concurrent walks never share it.
type walkState struct {
	policy Policy
	reg    *registry.Registry
	result *Result
}

// Walk traverses a namespace's members with depth limits, cycle detection,
// and inclusion policy, producing a freshly built registry. It never fails:
// hostile members degrade to error-kind components and traversal continues.
func Walk(root namespace.Handle, policy Policy) *Result {
	if policy.MaxDepth <= 0 {
		policy.MaxDepth = DefaultMaxDepth
	}
	if len(policy.StandardPrefixes) == 0 {
		policy.StandardPrefixes = DefaultStandardPrefixes
	}

	reg := registry.New()
	result := &Result{Registry: reg}
	st := &walkState{policy: policy, reg: reg, result: result}

	rootName, err := root.Name()
	if err != nil || rootName == "" {
		rootName = "namespace"
	}
	rootPath := namespace.StripVersion(rootName)

	// Mark the root before descending so a namespace referencing itself
	// terminates immediately.
	if id, err := root.Identity(); err == nil {
		reg.MarkVisited(id)
	}

	st.walkNamespace(root, rootPath, "", 0, true)
	return result
}

// walkNamespace enumerates the direct members of ns. Depth counts namespace
// recursion hops beyond the root; class-member recursion is structural and
// not subject to it.
func (st *walkState) walkNamespace(ns namespace.Handle, parentPath, qualifiedPrefix string, depth int, topLevel bool) {
	members, err := ns.Members()
	if err != nil {
		// The namespace itself was already indexed by the caller; nothing
		// further to enumerate.
		return
	}

	for _, m := range members {
		outcome := st.inspectMember(m, parentPath, false)
		if outcome.Skip != nil {
			st.result.Skipped = append(st.result.Skipped, *outcome.Skip)
			continue
		}
		comp := outcome.Component

		// Nested namespaces are checked against prefix policy before they
		// are admitted at all.
		if comp.Kind == types.KindModule {
			qualified := namespace.QualifiedName(m, types.JoinPath(qualifiedPrefix, comp.Name))
			if !st.shouldInclude(qualified, depth) {
				st.result.Skipped = append(st.result.Skipped, SkipReason{Name: comp.Name, Cause: "policy"})
				continue
			}

			if topLevel {
				st.reg.AddRoot(comp)
			} else {
				st.reg.Upsert(comp)
			}

			id, idErr := m.Identity()
			alreadySeen := idErr == nil && st.reg.MarkVisited(id)
			if idErr != nil {
				// Without a usable identity we cannot prove termination,
				// so we do not recurse.
				alreadySeen = true
			}
			if !alreadySeen && depth < st.policy.MaxDepth {
				st.walkNamespace(m, comp.FullPath, qualified, depth+1, false)
			}
			continue
		}

		if topLevel {
			st.reg.AddRoot(comp)
		} else {
			st.reg.Upsert(comp)
		}

		// Classes get one structural level of members (methods and
		// attributes) under the same policy but outside the depth counter.
		if comp.Kind == types.KindClass {
			st.walkClassMembers(m, comp)
		}
	}
}

// walkClassMembers captures a class's direct members as children.
func (st *walkState) walkClassMembers(class namespace.Handle, parent *types.Component) {
	members, err := class.Members()
	if err != nil {
		return
	}
	for _, m := range members {
		outcome := st.inspectMember(m, parent.FullPath, true)
		if outcome.Skip != nil {
			st.result.Skipped = append(st.result.Skipped, *outcome.Skip)
			continue
		}
		child := outcome.Component
		parent.AddChild(child)
		st.reg.Upsert(child)
	}
}

// inspectMember builds a component for one member. Kind inference never
// fails. Any classification error degrades the kind to variable, and
// doc/source failures degrade the component to error kind rather than
// aborting the walk.
func (st *walkState) inspectMember(m namespace.Handle, parentPath string, classMember bool) Outcome {
	name, err := m.Name()
	if err != nil || name == "" {
		return Outcome{Skip: &SkipReason{Cause: "unreadable name", Err: err}}
	}

	if !st.policy.IncludePrivate && strings.HasPrefix(name, "_") {
		return Outcome{Skip: &SkipReason{Name: name, Cause: "private"}}
	}

	comp := &types.Component{
		Name:     name,
		FullPath: types.JoinPath(parentPath, name),
	}

	kind, err := m.Kind()
	if err != nil || kind == "" {
		kind = types.KindVariable
	}
	if classMember && kind == types.KindFunction {
		kind = types.KindMethod
	}
	comp.Kind = kind

	degraded := false
	if doc, err := m.Doc(); err != nil {
		degraded = true
	} else {
		comp.DocSummary = types.FirstDocLine(doc)
	}

	if src, err := m.Source(); err != nil {
		degraded = true
	} else {
		comp.SourceExcerpt = types.TruncateSource(src)
	}

	if degraded {
		comp.Kind = types.KindError
		st.result.Errored++
	}

	return Outcome{Component: comp}
}

// shouldInclude applies prefix policy to a nested namespace's qualified
// name. It is evaluated independently at every depth: a namespace allowed at
// depth 0 is re-checked at depth 1.
func (st *walkState) shouldInclude(qualified string, depth int) bool {
	_ = depth // every depth applies the same prefix rules

	if st.policy.SkipStandardLibrary && matchesAny(qualified, st.policy.StandardPrefixes) {
		return false
	}
	if len(st.policy.AllowPrefixes) > 0 && !matchesAny(qualified, st.policy.AllowPrefixes) {
		return false
	}
	if matchesAny(qualified, st.policy.DenyPrefixes) {
		return false
	}
	return true
}

func matchesAny(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		if name == p || strings.HasPrefix(name, p+".") {
			return true
		}
	}
	return false
}
