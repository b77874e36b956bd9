// Package mcp exposes the component index over the Model Context Protocol.
//
// The server speaks MCP on stdio; all logging goes to stderr so stdout
// stays clean for the protocol stream.
//
// # Tools
//
// search_components runs the tiered search: exact name or path match first,
// then case-insensitive match, then semantic similarity. Results carry the
// tier that produced them and a score.
//
// get_component_info returns kind, documentation, and children for an exact
// dotted path. A miss includes up to three fuzzy path suggestions in the
// error data.
//
// get_component_source returns the captured source excerpt, when one exists.
//
// list_components lists all indexed paths, optionally filtered by kind.
//
// reindex_components drops the collection and rebuilds it from a fresh
// namespace walk. Concurrent reindexes are refused.
//
// get_status reports collection name, component count, and the embedding
// provider in use.
//
// # Error codes
//
// Tool failures use JSON-RPC style negative codes: standard -32602/-32603
// for parameter and internal errors, and -32001..-32005 for domain errors
// (component not found, reindex in progress, not initialized, empty query,
// no source captured).
package mcp
