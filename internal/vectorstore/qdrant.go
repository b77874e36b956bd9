package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// QdrantStore implements Store against the Qdrant REST API.
type QdrantStore struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewQdrantStore creates a Qdrant-backed store. The URL is probed so an
// unreachable backend fails at startup instead of on the first query.
func NewQdrantStore(ctx context.Context, baseURL, apiKey string) (*QdrantStore, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("qdrant URL is required")
	}
	s := &QdrantStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	if err := s.ping(ctx); err != nil {
		return nil, fmt.Errorf("qdrant unreachable at %s: %w", baseURL, err)
	}
	return s, nil
}

func (s *QdrantStore) ping(ctx context.Context) error {
	var out json.RawMessage
	return s.call(ctx, http.MethodGet, "/collections", nil, &out)
}

// call issues one JSON request against the Qdrant API.
func (s *QdrantStore) call(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return ErrCollectionNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("api error %d: %s", resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if envelope.Result == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

func (s *QdrantStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	err := s.call(ctx, http.MethodGet, "/collections/"+collection+"/exists", nil, &out)
	if err != nil {
		if err == ErrCollectionNotFound {
			return false, nil
		}
		return false, err
	}
	return out.Exists, nil
}

func (s *QdrantStore) CreateCollection(ctx context.Context, collection string, dimension int, distance Distance) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": string(distance),
		},
	}
	return s.call(ctx, http.MethodPut, "/collections/"+collection, body, nil)
}

func (s *QdrantStore) DeleteCollection(ctx context.Context, collection string) error {
	return s.call(ctx, http.MethodDelete, "/collections/"+collection, nil, nil)
}

func (s *QdrantStore) Count(ctx context.Context, collection string) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	body := map[string]any{"exact": true}
	if err := s.call(ctx, http.MethodPost, "/collections/"+collection+"/points/count", body, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (s *QdrantStore) Upsert(ctx context.Context, collection string, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	points := make([]map[string]any, len(records))
	for i, rec := range records {
		points[i] = map[string]any{
			"id":      rec.ID,
			"vector":  rec.Vector,
			"payload": rec.Payload,
		}
	}
	body := map[string]any{"points": points}
	return s.call(ctx, http.MethodPut, "/collections/"+collection+"/points?wait=true", body, nil)
}

func (s *QdrantStore) Scroll(ctx context.Context, collection string, limit int, cursor string) ([]Record, string, error) {
	body := map[string]any{
		"limit":        limit,
		"with_payload": true,
		"with_vector":  true,
	}
	if cursor != "" {
		body["offset"] = cursor
	}

	var out struct {
		Points         []rawPoint      `json:"points"`
		NextPageOffset json.RawMessage `json:"next_page_offset"`
	}
	if err := s.call(ctx, http.MethodPost, "/collections/"+collection+"/points/scroll", body, &out); err != nil {
		return nil, "", err
	}

	records := make([]Record, 0, len(out.Points))
	for _, p := range out.Points {
		records = append(records, Record{
			ID:      p.id(),
			Vector:  p.vector(),
			Payload: decodePayload(p.Payload),
		})
	}

	next := ""
	if len(out.NextPageOffset) > 0 && string(out.NextPageOffset) != "null" {
		// Offsets may be string or numeric IDs depending on server version.
		var sval string
		if err := json.Unmarshal(out.NextPageOffset, &sval); err == nil {
			next = sval
		} else {
			next = string(out.NextPageOffset)
		}
	}
	return records, next, nil
}

func (s *QdrantStore) Search(ctx context.Context, collection string, vector []float32, limit int, scoreThreshold float64) ([]ScoredPoint, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if scoreThreshold > 0 {
		body["score_threshold"] = scoreThreshold
	}

	var out json.RawMessage
	if err := s.call(ctx, http.MethodPost, "/collections/"+collection+"/points/search", body, &out); err != nil {
		return nil, err
	}
	return normalizeScored(out)
}

func (s *QdrantStore) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

// rawPoint mirrors the wire shape of one point without assuming the payload
// or ID encoding is stable across client/server versions.
type rawPoint struct {
	ID      json.RawMessage `json:"id"`
	Score   float64         `json:"score"`
	Vector  json.RawMessage `json:"vector"`
	Payload json.RawMessage `json:"payload"`
}

func (p rawPoint) id() string {
	var sval string
	if err := json.Unmarshal(p.ID, &sval); err == nil {
		return sval
	}
	return strings.Trim(string(p.ID), `"`)
}

func (p rawPoint) vector() []float32 {
	var v []float32
	if err := json.Unmarshal(p.Vector, &v); err == nil {
		return v
	}
	return nil
}

// normalizeScored resolves the two result shapes the search endpoint is
// known to produce, a bare array of scored points or an object exposing a
// "points" member, into a uniform slice. This is the single place that
// knowledge lives.
func normalizeScored(raw json.RawMessage) ([]ScoredPoint, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var points []rawPoint
	if err := json.Unmarshal(raw, &points); err != nil {
		var wrapped struct {
			Points []rawPoint `json:"points"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("unrecognized search result shape: %w", err)
		}
		points = wrapped.Points
	}

	scored := make([]ScoredPoint, 0, len(points))
	for _, p := range points {
		scored = append(scored, ScoredPoint{
			ID:      p.id(),
			Score:   p.Score,
			Payload: decodePayload(p.Payload),
		})
	}
	return scored, nil
}

// decodePayload extracts a Payload defensively: a payload may arrive as a
// mapping, a sequence whose first element is the mapping, or an opaque
// scalar depending on the client version. Anything unusable decodes to the
// zero Payload rather than failing the whole result set.
func decodePayload(raw json.RawMessage) Payload {
	if len(raw) == 0 || string(raw) == "null" {
		return Payload{}
	}

	var payload Payload
	if err := json.Unmarshal(raw, &payload); err == nil {
		return payload
	}

	var seq []json.RawMessage
	if err := json.Unmarshal(raw, &seq); err == nil && len(seq) > 0 {
		if err := json.Unmarshal(seq[0], &payload); err == nil {
			return payload
		}
	}

	return Payload{}
}
