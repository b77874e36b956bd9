// Package catalog loads a TOML component catalog and builds the static
// namespace tree it describes. The catalog names a root module and declares
// components by dotted path; intermediate modules are created implicitly.
package catalog
