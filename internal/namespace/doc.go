// Package namespace abstracts introspection over a runtime container of
// named members.
//
// The Handle interface is the capability boundary between the walker and
// whatever reflection API backs a namespace: every operation (name, kind,
// documentation, source, member enumeration, identity) is fallible, and the
// walker wraps all of them defensively. A hostile member whose hooks fail on
// every call degrades to an error-kind component instead of aborting a walk.
//
// Two implementations ship with the server:
//
//   - Static: an in-memory tree built programmatically. The catalog loader
//     compiles TOML catalogs into Static trees, and tests use FailHook to
//     model hostile members and Add to build reference cycles.
//
//   - FromValue: reflection over a live Go value. Maps keyed by string are
//     modules, structs are classes (exported methods and fields as members),
//     funcs are functions, everything else a variable.
//
// Resolve walks a dotted component path against a live root, consuming a
// leading segment equal to the root's version-stripped name; any failure
// yields ErrNotFound rather than a crash.
package namespace
