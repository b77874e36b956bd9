package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/modscope-mcp/internal/config"
)

const testCatalog = `
name = "mymod"
version = "1.0.0"

[[components]]
path = "db"
kind = "module"
doc = "Database helpers."

[[components]]
path = "db.Session"
kind = "class"
doc = "Manages a database session."
source = "class Session: ..."

[[components]]
path = "db.Session.query"
kind = "function"
doc = "Run a query."

[[components]]
path = "db.connect"
kind = "function"
doc = "Open a connection."
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	catalogPath := filepath.Join(dir, "catalog.toml")
	require.NoError(t, os.WriteFile(catalogPath, []byte(testCatalog), 0o644))

	cfg := config.Default()
	cfg.Store.Path = filepath.Join(dir, "modscope.db")
	cfg.CatalogPath = catalogPath
	cfg.Embedding.Provider = "local"

	srv, err := NewServer(context.Background(), cfg)
	require.NoError(t, err)

	_, err = srv.wrapper.Initialize(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { _ = srv.wrapper.Close() })
	return srv
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func toolText(t *testing.T, res *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func TestHandleSearchComponentsExact(t *testing.T) {
	srv := newTestServer(t)

	res, err := srv.handleSearchComponents(context.Background(), callRequest(map[string]interface{}{
		"query": "mymod.db.Session",
	}))
	require.NoError(t, err)

	out := toolText(t, res)
	assert.Equal(t, "exact", out["origin"])
	assert.Equal(t, float64(1), out["total_results"])

	results := out["results"].([]interface{})
	first := results[0].(map[string]interface{})
	assert.Equal(t, "mymod.db.Session", first["path"])
	assert.Equal(t, float64(1), first["score"])
}

func TestHandleSearchComponentsEmptyQuery(t *testing.T) {
	srv := newTestServer(t)

	_, err := srv.handleSearchComponents(context.Background(), callRequest(map[string]interface{}{}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)
}

func TestHandleSearchComponentsBadLimit(t *testing.T) {
	srv := newTestServer(t)

	_, err := srv.handleSearchComponents(context.Background(), callRequest(map[string]interface{}{
		"query": "session",
		"limit": float64(500),
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleGetComponentInfo(t *testing.T) {
	srv := newTestServer(t)

	res, err := srv.handleGetComponentInfo(context.Background(), callRequest(map[string]interface{}{
		"path": "mymod.db.Session",
	}))
	require.NoError(t, err)

	out := toolText(t, res)
	assert.Equal(t, "Session", out["name"])
	assert.Equal(t, "class", out["kind"])
	assert.Equal(t, "Manages a database session.", out["doc"])
	assert.Equal(t, true, out["has_source"])
	assert.Contains(t, out["children"], "query")
}

func TestHandleGetComponentInfoSuggestions(t *testing.T) {
	srv := newTestServer(t)

	_, err := srv.handleGetComponentInfo(context.Background(), callRequest(map[string]interface{}{
		"path": "mymod.db.Sessoin",
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeComponentNotFound, mcpErr.Code)

	data := mcpErr.Data.(map[string]interface{})
	suggestions := data["suggestions"].([]string)
	assert.Contains(t, suggestions, "mymod.db.Session")
}

func TestHandleGetComponentSource(t *testing.T) {
	srv := newTestServer(t)

	res, err := srv.handleGetComponentSource(context.Background(), callRequest(map[string]interface{}{
		"path": "mymod.db.Session",
	}))
	require.NoError(t, err)

	out := toolText(t, res)
	assert.Equal(t, "class Session: ...", out["source"])
}

func TestHandleGetComponentSourceMissing(t *testing.T) {
	srv := newTestServer(t)

	// connect exists but has no captured source.
	_, err := srv.handleGetComponentSource(context.Background(), callRequest(map[string]interface{}{
		"path": "mymod.db.connect",
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeNoSourceForComponent, mcpErr.Code)
}

func TestHandleListComponents(t *testing.T) {
	srv := newTestServer(t)

	res, err := srv.handleListComponents(context.Background(), callRequest(map[string]interface{}{}))
	require.NoError(t, err)

	out := toolText(t, res)
	paths := out["paths"].([]interface{})
	assert.Contains(t, paths, "mymod.db.Session")
	assert.Contains(t, paths, "mymod.db.connect")

	res, err = srv.handleListComponents(context.Background(), callRequest(map[string]interface{}{
		"kind": "class",
	}))
	require.NoError(t, err)

	out = toolText(t, res)
	assert.Equal(t, []interface{}{"mymod.db.Session"}, out["paths"])
}

func TestHandleListComponentsBadKind(t *testing.T) {
	srv := newTestServer(t)

	_, err := srv.handleListComponents(context.Background(), callRequest(map[string]interface{}{
		"kind": "interface",
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleReindexComponents(t *testing.T) {
	srv := newTestServer(t)

	res, err := srv.handleReindexComponents(context.Background(), callRequest(nil))
	require.NoError(t, err)

	out := toolText(t, res)
	assert.Equal(t, true, out["reindexed"])
	assert.Greater(t, out["components_indexed"], float64(0))
}

func TestHandleGetStatus(t *testing.T) {
	srv := newTestServer(t)

	res, err := srv.handleGetStatus(context.Background(), callRequest(nil))
	require.NoError(t, err)

	out := toolText(t, res)
	assert.Equal(t, true, out["initialized"])
	assert.Equal(t, "components", out["collection"])
	assert.Greater(t, out["components"], float64(0))

	embInfo := out["embedding"].(map[string]interface{})
	assert.Equal(t, "local", embInfo["provider"])
}

func TestNewServerRequiresCatalog(t *testing.T) {
	cfg := config.Default()
	cfg.CatalogPath = ""

	_, err := NewServer(context.Background(), cfg)
	assert.Error(t, err)
}

func TestMCPErrorFormat(t *testing.T) {
	err := newMCPError(ErrorCodeInvalidParams, "bad input", nil)
	assert.Equal(t, "MCP error -32602: bad input", err.Error())
}
