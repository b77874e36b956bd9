package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// SQLiteStore implements Store using an embedded SQLite database. Similarity
// scoring is computed in Go over the candidate vectors, which is adequate
// for the collection sizes one namespace produces.
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a SQLite-backed store at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx, "SELECT name FROM collections WHERE name = ?", collection).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLiteStore) CreateCollection(ctx context.Context, collection string, dimension int, distance Distance) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO collections (name, dimension, distance) VALUES (?, ?, ?)",
		collection, dimension, string(distance))
	return err
}

func (s *SQLiteStore) DeleteCollection(ctx context.Context, collection string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM points WHERE collection = ?", collection); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", collection)
	return err
}

func (s *SQLiteStore) Count(ctx context.Context, collection string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM points WHERE collection = ?", collection).Scan(&count)
	return count, err
}

func (s *SQLiteStore) dimension(ctx context.Context, collection string) (int, error) {
	var dim int
	err := s.db.QueryRowContext(ctx, "SELECT dimension FROM collections WHERE name = ?", collection).Scan(&dim)
	if err == sql.ErrNoRows {
		return 0, ErrCollectionNotFound
	}
	return dim, err
}

// Upsert writes a batch of records within one transaction. Records with the
// same ID overwrite the previous row, which is what makes re-indexing
// idempotent.
func (s *SQLiteStore) Upsert(ctx context.Context, collection string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	dim, err := s.dimension(ctx, collection)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
		INSERT OR REPLACE INTO points
		(collection, id, vector, name, path, kind, doc_summary, source, indexed_at, namespace_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, rec := range records {
		if len(rec.Vector) != dim {
			return fmt.Errorf("%w: got %d, collection expects %d", ErrDimensionMismatch, len(rec.Vector), dim)
		}
		p := rec.Payload
		indexedAt := p.IndexedAt
		if indexedAt.IsZero() {
			indexedAt = time.Now().UTC()
		}
		_, err := tx.ExecContext(ctx, query,
			collection, rec.ID, serializeVector(rec.Vector),
			p.Name, p.Path, p.Kind, p.DocSummary, p.Source, indexedAt, p.NamespaceVersion)
		if err != nil {
			return fmt.Errorf("failed to upsert point %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Scroll pages through a collection ordered by point ID; the cursor is the
// last ID of the previous page.
func (s *SQLiteStore) Scroll(ctx context.Context, collection string, limit int, cursor string) ([]Record, string, error) {
	if limit <= 0 {
		limit = 100
	}

	const query = `
		SELECT id, vector, name, path, kind, doc_summary, source, indexed_at, namespace_version
		FROM points
		WHERE collection = ? AND id > ?
		ORDER BY id
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, collection, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("failed to scroll points: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var (
			rec        Record
			blob       []byte
			docSummary sql.NullString
			source     sql.NullString
			indexedAt  sql.NullTime
			nsVersion  sql.NullString
		)
		if err := rows.Scan(&rec.ID, &blob, &rec.Payload.Name, &rec.Payload.Path, &rec.Payload.Kind,
			&docSummary, &source, &indexedAt, &nsVersion); err != nil {
			return nil, "", fmt.Errorf("failed to scan point: %w", err)
		}
		rec.Vector = deserializeVector(blob)
		rec.Payload.DocSummary = docSummary.String
		rec.Payload.Source = source.String
		rec.Payload.IndexedAt = indexedAt.Time
		rec.Payload.NamespaceVersion = nsVersion.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	next := ""
	if len(records) == limit {
		next = records[len(records)-1].ID
	}
	return records, next, nil
}

// Search computes cosine similarity in Go over the collection's vectors and
// returns the top hits at or above the threshold.
func (s *SQLiteStore) Search(ctx context.Context, collection string, vector []float32, limit int, scoreThreshold float64) ([]ScoredPoint, error) {
	const query = `
		SELECT id, vector, name, path, kind, doc_summary, source, indexed_at, namespace_version
		FROM points
		WHERE collection = ?
	`
	rows, err := s.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query points: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var candidates []ScoredPoint
	for rows.Next() {
		var (
			point      ScoredPoint
			blob       []byte
			docSummary sql.NullString
			source     sql.NullString
			indexedAt  sql.NullTime
			nsVersion  sql.NullString
		)
		if err := rows.Scan(&point.ID, &blob, &point.Payload.Name, &point.Payload.Path, &point.Payload.Kind,
			&docSummary, &source, &indexedAt, &nsVersion); err != nil {
			return nil, fmt.Errorf("failed to scan point: %w", err)
		}

		stored := deserializeVector(blob)
		if len(stored) != len(vector) {
			continue // dimension mismatch, skip
		}

		score := cosineSimilarity(vector, stored)
		if scoreThreshold > 0 && score < scoreThreshold {
			continue
		}

		point.Score = score
		point.Payload.DocSummary = docSummary.String
		point.Payload.Source = source.String
		point.Payload.IndexedAt = indexedAt.Time
		point.Payload.NamespaceVersion = nsVersion.String
		candidates = append(candidates, point)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}
