// Package walker traverses a namespace and builds the component registry.
//
// A walk enumerates direct members, applies the inclusion policy, and
// recurses into nested namespaces bounded by a depth counter and a visited
// set, so traversal terminates even when the namespace graph contains
// reference cycles. Class members are captured one structural level deep and
// are not subject to the depth counter.
//
// Every member inspection produces an explicit Outcome, a Component or a
// SkipReason, keeping the skip policy visible instead of buried in error
// handling. Introspection failures never abort a walk: an unclassifiable
// member degrades to variable kind, and a member whose doc or source hooks
// fail is indexed with error kind while its siblings continue.
package walker
