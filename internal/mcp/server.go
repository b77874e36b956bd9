package mcp

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/modscope-mcp/internal/catalog"
	"github.com/dshills/modscope-mcp/internal/config"
	"github.com/dshills/modscope-mcp/internal/embedder"
	"github.com/dshills/modscope-mcp/internal/indexer"
	"github.com/dshills/modscope-mcp/internal/vectorstore"
	"github.com/dshills/modscope-mcp/internal/walker"
	"github.com/dshills/modscope-mcp/internal/wrapper"
)

const (
	// ServerName is the MCP server name
	ServerName = "modscope-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	wrapper *wrapper.Wrapper
}

// NewServer builds the full stack from configuration: catalog, store,
// embedder, and the component wrapper, then registers the MCP tools.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	if cfg.CatalogPath == "" {
		return nil, fmt.Errorf("no catalog configured; set catalog in %s or %s", config.DefaultConfigPath, config.EnvCatalogPath)
	}

	root, catFile, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing vector store: %w", err)
	}

	// A single embedder is shared by indexing and search so both sides hit
	// the same embedding cache.
	emb, err := newEmbedder(cfg)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("initializing embedder: %w", err)
	}

	policy := walker.Policy{
		MaxDepth:            cfg.Index.MaxDepth,
		IncludePrivate:      cfg.Index.IncludePrivate,
		SkipStandardLibrary: cfg.Index.SkipStandardLibrary,
		AllowPrefixes:       cfg.Index.AllowPrefixes,
		DenyPrefixes:        cfg.Index.DenyPrefixes,
	}

	version := cfg.Index.NamespaceVersion
	if version == "" {
		version = catFile.Version
	}

	opts := indexer.Options{
		ClearCollection:  cfg.Index.ClearCollection,
		ForceReindex:     cfg.Index.ForceReindex,
		BatchSize:        cfg.Index.BatchSize,
		NamespaceVersion: version,
	}

	w := wrapper.New(store, emb, cfg.Store.Collection, root, policy, opts)

	s := &Server{
		mcp:     server.NewMCPServer(ServerName, ServerVersion),
		wrapper: w,
	}
	s.registerTools()

	return s, nil
}

func newStore(ctx context.Context, cfg *config.Config) (vectorstore.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendQdrant:
		return vectorstore.NewQdrantStore(ctx, cfg.Store.URL, os.Getenv(config.EnvQdrantAPIKey))
	case config.BackendSQLite:
		return vectorstore.NewSQLiteStore(cfg.Store.Path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func newEmbedder(cfg *config.Config) (embedder.Embedder, error) {
	if cfg.Embedding.Provider != "" {
		return embedder.New(embedder.Config{
			Provider:  cfg.Embedding.Provider,
			CacheSize: cfg.Embedding.CacheSize,
		})
	}
	return embedder.NewFromEnv()
}

// Serve initializes the component index and serves MCP on stdio until
// shutdown. Initialization failures are fatal by design: a server that
// cannot manage its collection should not come up quietly.
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.wrapper.Close() }()

	if _, err := s.wrapper.Initialize(ctx); err != nil {
		return fmt.Errorf("initializing component index: %w", err)
	}

	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(searchComponentsTool(), s.handleSearchComponents)
	s.mcp.AddTool(getComponentInfoTool(), s.handleGetComponentInfo)
	s.mcp.AddTool(getComponentSourceTool(), s.handleGetComponentSource)
	s.mcp.AddTool(listComponentsTool(), s.handleListComponents)
	s.mcp.AddTool(reindexComponentsTool(), s.handleReindexComponents)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
