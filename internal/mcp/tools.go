package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/modscope-mcp/internal/indexer"
	"github.com/dshills/modscope-mcp/internal/searcher"
	"github.com/dshills/modscope-mcp/internal/wrapper"
	"github.com/dshills/modscope-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams        = -32602 // Invalid method parameters
	ErrorCodeInternalError        = -32603 // Internal JSON-RPC error
	ErrorCodeComponentNotFound    = -32001 // No component at the given path
	ErrorCodeReindexInProgress    = -32002 // Another reindex is already running
	ErrorCodeNotInitialized       = -32003 // Index not initialized yet
	ErrorCodeEmptyQuery           = -32004 // Query parameter is empty
	ErrorCodeNoSourceForComponent = -32005 // Component has no captured source
)

// handleSearchComponents handles the search_components tool invocation
func (s *Server) handleSearchComponents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	threshold := getFloatDefault(args, "score_threshold", 0)
	if threshold < 0 || threshold > 1 {
		return nil, newMCPError(ErrorCodeInvalidParams, "score_threshold must be between 0.0 and 1.0", map[string]interface{}{
			"param": "score_threshold",
			"value": threshold,
		})
	}

	resp, err := s.wrapper.Search(ctx, searcher.SearchRequest{
		Query:          query,
		Limit:          limit,
		ScoreThreshold: threshold,
		UseCache:       true,
	})
	if err != nil {
		return nil, wrapToolError(err)
	}

	results := make([]map[string]interface{}, 0, len(resp.Results))
	for _, r := range resp.Results {
		entry := map[string]interface{}{
			"name":   r.Name,
			"path":   r.Path,
			"kind":   string(r.Kind),
			"score":  r.Score,
			"origin": string(r.Origin),
		}
		if r.DocSummary != "" {
			entry["doc"] = r.DocSummary
		}
		results = append(results, entry)
	}

	response := map[string]interface{}{
		"query":         query,
		"total_results": resp.TotalResults,
		"origin":        string(resp.Origin),
		"duration_ms":   resp.Duration.Milliseconds(),
		"results":       results,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetComponentInfo handles the get_component_info tool invocation
func (s *Server) handleGetComponentInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, mcpErr := requirePath(request)
	if mcpErr != nil {
		return nil, mcpErr
	}

	info, err := s.wrapper.GetInfo(path)
	if err != nil {
		return nil, wrapToolError(err)
	}

	response := map[string]interface{}{
		"name":       info.Name,
		"path":       info.Path,
		"kind":       string(info.Kind),
		"doc":        info.DocSummary,
		"children":   info.Children,
		"has_source": info.HasSource,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetComponentSource handles the get_component_source tool invocation
func (s *Server) handleGetComponentSource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, mcpErr := requirePath(request)
	if mcpErr != nil {
		return nil, mcpErr
	}

	src, err := s.wrapper.GetSource(path)
	if err != nil {
		if errors.Is(err, wrapper.ErrComponentNotFound) || errors.Is(err, wrapper.ErrNotInitialized) {
			return nil, wrapToolError(err)
		}
		return nil, newMCPError(ErrorCodeNoSourceForComponent, "no source captured for component", map[string]interface{}{
			"path": path,
		})
	}

	response := map[string]interface{}{
		"path":   path,
		"source": src,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListComponents handles the list_components tool invocation
func (s *Server) handleListComponents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	kind := getStringDefault(args, "kind", "")
	if kind != "" {
		probe := types.Component{Kind: types.ComponentKind(kind)}
		if err := probe.ValidateKind(); err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid kind", map[string]interface{}{
				"param": "kind",
				"value": kind,
			})
		}
	}

	paths, err := s.wrapper.ListPaths(types.ComponentKind(kind))
	if err != nil {
		return nil, wrapToolError(err)
	}

	response := map[string]interface{}{
		"count": len(paths),
		"paths": paths,
	}
	if kind != "" {
		response["kind"] = kind
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleReindexComponents handles the reindex_components tool invocation
func (s *Server) handleReindexComponents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.wrapper.ForceReindexComponents(ctx)
	if err != nil {
		return nil, wrapToolError(err)
	}

	response := map[string]interface{}{
		"reindexed":          true,
		"components_indexed": stats.ComponentsIndexed,
		"components_skipped": stats.ComponentsSkipped,
		"components_errored": stats.ComponentsErrored,
		"batches_written":    stats.BatchesWritten,
		"duration_ms":        stats.Duration.Milliseconds(),
	}

	if len(stats.ErrorMessages) > 0 {
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.wrapper.Status()

	response := map[string]interface{}{
		"initialized": st.Initialized,
		"collection":  st.Collection,
		"components":  st.Components,
		"embedding": map[string]interface{}{
			"provider": st.Provider,
			"model":    st.Model,
		},
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// requirePath extracts and validates the path argument shared by the
// component lookup tools.
func requirePath(request mcp.CallToolRequest) (string, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return "", newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	return path, nil
}

// wrapToolError maps wrapper errors onto MCP error codes.
func wrapToolError(err error) error {
	var nf *wrapper.NotFoundError
	switch {
	case errors.As(err, &nf):
		return newMCPError(ErrorCodeComponentNotFound, "component not found", map[string]interface{}{
			"path":        nf.Path,
			"suggestions": nf.Suggestions,
		})
	case errors.Is(err, wrapper.ErrNotInitialized):
		return newMCPError(ErrorCodeNotInitialized, "component index not initialized", nil)
	case errors.Is(err, indexer.ErrReindexInProgress):
		return newMCPError(ErrorCodeReindexInProgress, "reindex already in progress", nil)
	default:
		return newMCPError(ErrorCodeInternalError, err.Error(), nil)
	}
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getFloatDefault extracts a float parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := args[key].(float64); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
