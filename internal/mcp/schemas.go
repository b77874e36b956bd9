package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchComponentsTool returns the tool definition for search_components
func searchComponentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_components",
		Description: "Search indexed components by name, path, or natural language description",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Component name, dotted path, or free-text description",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"score_threshold": map[string]interface{}{
					"type":        "number",
					"description": "Minimum semantic similarity score (0.0-1.0); exact matches always pass",
					"minimum":     0.0,
					"maximum":     1.0,
				},
			},
			Required: []string{"query"},
		},
	}
}

// getComponentInfoTool returns the tool definition for get_component_info
func getComponentInfoTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_component_info",
		Description: "Get kind, documentation, and children of a component by exact dotted path",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Exact dotted component path, e.g. mymod.db.Session",
				},
			},
			Required: []string{"path"},
		},
	}
}

// getComponentSourceTool returns the tool definition for get_component_source
func getComponentSourceTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_component_source",
		Description: "Get the captured source excerpt of a component by exact dotted path",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Exact dotted component path",
				},
			},
			Required: []string{"path"},
		},
	}
}

// listComponentsTool returns the tool definition for list_components
func listComponentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_components",
		Description: "List the dotted paths of all indexed components, optionally filtered by kind",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"kind": map[string]interface{}{
					"type":        "string",
					"description": "Filter by component kind",
					"enum":        []string{"module", "class", "function", "method", "variable", "error"},
				},
			},
		},
	}
}

// reindexComponentsTool returns the tool definition for reindex_components
func reindexComponentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "reindex_components",
		Description: "Drop the collection and rebuild the component index from a fresh namespace walk",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report index status: collection, component count, and embedding provider",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
