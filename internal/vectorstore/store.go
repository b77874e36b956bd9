package vectorstore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCollectionNotFound is returned when an operation targets a missing collection
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrDimensionMismatch is returned when a vector's length does not match the collection
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Distance names the similarity metric a collection is created with.
type Distance string

const (
	DistanceCosine Distance = "Cosine"
	DistanceDot    Distance = "Dot"
	DistanceEuclid Distance = "Euclid"
)

// Payload is the persisted component form stored alongside each vector.
type Payload struct {
	Name             string    `json:"name"`
	Path             string    `json:"path"`
	Kind             string    `json:"kind"`
	DocSummary       string    `json:"doc_summary,omitempty"`
	Source           string    `json:"source,omitempty"`
	IndexedAt        time.Time `json:"indexed_at"`
	NamespaceVersion string    `json:"namespace_version,omitempty"`
}

// Record is one persisted index entry. ID is the deterministic identity
// token derived from (collection, path), which makes Upsert idempotent.
type Record struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// ScoredPoint is one similarity-search hit.
type ScoredPoint struct {
	ID      string
	Score   float64
	Payload Payload
}

// Store defines the vector store boundary: collection lifecycle, idempotent
// upsert, cursor-paged scroll, and bounded similarity search.
type Store interface {
	// CollectionExists reports whether a collection is present.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// CreateCollection creates a collection with the given vector dimension.
	CreateCollection(ctx context.Context, collection string, dimension int, distance Distance) error

	// DeleteCollection removes a collection and all its records.
	DeleteCollection(ctx context.Context, collection string) error

	// Count returns the number of records in a collection.
	Count(ctx context.Context, collection string) (int, error)

	// Upsert writes records, overwriting any record with the same ID.
	Upsert(ctx context.Context, collection string, records []Record) error

	// Scroll pages through a collection's records. An empty cursor starts
	// from the beginning; the returned cursor is empty when exhausted.
	Scroll(ctx context.Context, collection string, limit int, cursor string) ([]Record, string, error)

	// Search returns up to limit records scoring at or above scoreThreshold
	// against the query vector, best first.
	Search(ctx context.Context, collection string, vector []float32, limit int, scoreThreshold float64) ([]ScoredPoint, error)

	// Close releases any resources held by the store.
	Close() error
}
