// Package types provides shared type definitions for the ModScope MCP server.
//
// This package defines the domain types used across the indexing and search
// pipeline: components, scored search results, and the canonical embedding
// text and identity helpers.
//
// # Core Types
//
// Component represents one path-addressable member discovered while walking
// a namespace:
//
//	comp := &types.Component{
//	    Name:       "SendMessage",
//	    FullPath:   "toolkit.chat.SendMessage",
//	    Kind:       types.KindFunction,
//	    DocSummary: "SendMessage posts a message to a channel.",
//	}
//
// FullPath is injective within one registry: no two components share a path.
//
// # Embedding Text and Identity
//
// EmbedText reduces a component to the short string handed to the embedding
// service, and Identity derives the deterministic store ID for a
// (collection, path) pair:
//
//	text := types.EmbedText(comp)
//	id := types.Identity("toolkit", comp.FullPath)
//
// Identity is a pure function: two indexing runs over an unchanged namespace
// produce identical IDs for identical paths, which is what makes re-indexing
// overwrite records instead of duplicating them.
//
// # Search Results
//
// ScoredResult combines component metadata with relevance scoring:
//
//	result := &types.ScoredResult{
//	    Path:   "toolkit.chat.SendMessage",
//	    Score:  0.92,
//	    Origin: types.OriginSemantic,
//	}
//
// Scores are normalized to [0, 1], with higher values indicating better
// matches. Exact name matches always score 1.0.
package types
