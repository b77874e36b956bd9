package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Environment variables. Each overrides the corresponding file setting.
const (
	EnvConfigPath      = "MODSCOPE_CONFIG"
	EnvStoreBackend    = "MODSCOPE_STORE_BACKEND"
	EnvQdrantURL       = "MODSCOPE_QDRANT_URL"
	EnvSQLitePath      = "MODSCOPE_SQLITE_PATH"
	EnvCollection      = "MODSCOPE_COLLECTION"
	EnvCatalogPath     = "MODSCOPE_CATALOG"
	EnvMaxDepth        = "MODSCOPE_MAX_DEPTH"
	EnvIncludePrivate  = "MODSCOPE_INCLUDE_PRIVATE"
	EnvBatchSize       = "MODSCOPE_BATCH_SIZE"
	EnvForceReindex    = "MODSCOPE_FORCE_REINDEX"
	EnvClearCollection = "MODSCOPE_CLEAR_COLLECTION"

	// EnvQdrantAPIKey is read directly at store construction; secrets
	// never live in the config file.
	EnvQdrantAPIKey = "MODSCOPE_QDRANT_API_KEY"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendQdrant = "qdrant"
)

// Defaults.
const (
	DefaultConfigPath = "modscope.toml"
	DefaultSQLitePath = "modscope.db"
	DefaultQdrantURL  = "http://localhost:6333"
	DefaultCollection = "components"
)

// ErrInvalidConfig wraps all validation failures.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full server configuration, loaded from a TOML file with
// environment overrides applied on top.
type Config struct {
	Store     StoreConfig     `toml:"store"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Index     IndexConfig     `toml:"index"`

	// CatalogPath points at the component catalog that defines the
	// namespace to index.
	CatalogPath string `toml:"catalog"`
}

// StoreConfig selects and configures the vector store backend.
type StoreConfig struct {
	Backend    string `toml:"backend"` // sqlite or qdrant
	URL        string `toml:"url"`     // qdrant base URL
	Path       string `toml:"path"`    // sqlite database file
	Collection string `toml:"collection"`
}

// EmbeddingConfig configures the embedding provider. API keys are read from
// the environment only and never from the file.
type EmbeddingConfig struct {
	Provider  string `toml:"provider"` // jina, openai, local; empty auto-detects
	CacheSize int    `toml:"cache_size"`
}

// IndexConfig controls walking and synchronization.
type IndexConfig struct {
	MaxDepth            int      `toml:"max_depth"`
	IncludePrivate      bool     `toml:"include_private"`
	SkipStandardLibrary bool     `toml:"skip_standard_library"`
	AllowPrefixes       []string `toml:"allow_prefixes"`
	DenyPrefixes        []string `toml:"deny_prefixes"`
	BatchSize           int      `toml:"batch_size"`
	ForceReindex        bool     `toml:"force_reindex"`
	ClearCollection     bool     `toml:"clear_collection"`
	NamespaceVersion    string   `toml:"namespace_version"`
}

// Default returns a Config with usable defaults.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:    BackendSQLite,
			URL:        DefaultQdrantURL,
			Path:       DefaultSQLitePath,
			Collection: DefaultCollection,
		},
	}
}

// Load reads the configuration. Resolution order, lowest to highest:
// built-in defaults, the TOML file, environment variables. A missing file
// is only an error when the path was given explicitly.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// Defaults plus environment only.
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Store.Backend, EnvStoreBackend)
	setString(&c.Store.URL, EnvQdrantURL)
	setString(&c.Store.Path, EnvSQLitePath)
	setString(&c.Store.Collection, EnvCollection)
	setString(&c.CatalogPath, EnvCatalogPath)
	setInt(&c.Index.MaxDepth, EnvMaxDepth)
	setBool(&c.Index.IncludePrivate, EnvIncludePrivate)
	setInt(&c.Index.BatchSize, EnvBatchSize)
	setBool(&c.Index.ForceReindex, EnvForceReindex)
	setBool(&c.Index.ClearCollection, EnvClearCollection)
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Store.Backend) {
	case BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("%w: sqlite backend requires store.path", ErrInvalidConfig)
		}
	case BackendQdrant:
		if c.Store.URL == "" {
			return fmt.Errorf("%w: qdrant backend requires store.url", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, c.Store.Backend)
	}

	if c.Store.Collection == "" {
		return fmt.Errorf("%w: store.collection must not be empty", ErrInvalidConfig)
	}
	if c.Index.MaxDepth < 0 {
		return fmt.Errorf("%w: index.max_depth must not be negative", ErrInvalidConfig)
	}
	if c.Index.BatchSize < 0 {
		return fmt.Errorf("%w: index.batch_size must not be negative", ErrInvalidConfig)
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, env string) {
	if v := os.Getenv(env); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
