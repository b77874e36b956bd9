package vectorstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeScored(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantLen  int
		wantPath string
	}{
		{
			name:     "bare array shape",
			raw:      `[{"id":"abc","score":0.9,"payload":{"name":"Foo","path":"root.Foo","kind":"class"}}]`,
			wantLen:  1,
			wantPath: "root.Foo",
		},
		{
			name:     "object with points shape",
			raw:      `{"points":[{"id":"abc","score":0.8,"payload":{"name":"baz","path":"root.baz","kind":"function"}}]}`,
			wantLen:  1,
			wantPath: "root.baz",
		},
		{
			name:    "empty array",
			raw:     `[]`,
			wantLen: 0,
		},
		{
			name:    "empty points object",
			raw:     `{"points":[]}`,
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scored, err := normalizeScored(json.RawMessage(tt.raw))
			require.NoError(t, err)
			require.Len(t, scored, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantPath, scored[0].Payload.Path)
			}
		})
	}
}

func TestNormalizeScoredUnrecognized(t *testing.T) {
	_, err := normalizeScored(json.RawMessage(`"what"`))
	assert.Error(t, err)
}

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string // expected Path
	}{
		{"mapping", `{"path":"root.Foo","name":"Foo","kind":"class"}`, "root.Foo"},
		{"sequence wrapping a mapping", `[{"path":"root.Foo","name":"Foo","kind":"class"}]`, "root.Foo"},
		{"opaque scalar", `42`, ""},
		{"null", `null`, ""},
		{"empty", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := decodePayload(json.RawMessage(tt.raw))
			assert.Equal(t, tt.want, p.Path)
		})
	}
}

func TestNumericPointIDs(t *testing.T) {
	scored, err := normalizeScored(json.RawMessage(`[{"id":17,"score":0.5,"payload":{"path":"root.x"}}]`))
	require.NoError(t, err)
	require.Len(t, scored, 1)
	assert.Equal(t, "17", scored[0].ID)
}

// fakeQdrant serves just enough of the REST surface for client tests.
func fakeQdrant(t *testing.T, searchBody string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/collections", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"collections":[]}}`))
	})
	mux.HandleFunc("/collections/toolkit/exists", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"exists":true}}`))
	})
	mux.HandleFunc("/collections/toolkit/points/count", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"count":3}}`))
	})
	mux.HandleFunc("/collections/toolkit/points/search", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchBody))
	})
	mux.HandleFunc("/collections/toolkit/points/scroll", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"points":[{"id":"a1","vector":[1,0],"payload":{"path":"toolkit.Foo","name":"Foo","kind":"class"}}],"next_page_offset":null}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestQdrantStoreSearchShapes(t *testing.T) {
	shapes := map[string]string{
		"array result":  `{"result":[{"id":"a1","score":0.91,"payload":{"path":"toolkit.Foo","name":"Foo","kind":"class"}}]}`,
		"points result": `{"result":{"points":[{"id":"a1","score":0.91,"payload":{"path":"toolkit.Foo","name":"Foo","kind":"class"}}]}}`,
	}

	for name, body := range shapes {
		t.Run(name, func(t *testing.T) {
			srv := fakeQdrant(t, body)
			store, err := NewQdrantStore(context.Background(), srv.URL, "")
			require.NoError(t, err)
			defer func() { _ = store.Close() }()

			hits, err := store.Search(context.Background(), "toolkit", []float32{1, 0}, 5, 0.5)
			require.NoError(t, err)
			require.Len(t, hits, 1)
			assert.Equal(t, "toolkit.Foo", hits[0].Payload.Path)
			assert.InDelta(t, 0.91, hits[0].Score, 1e-9)
		})
	}
}

func TestQdrantStoreCountAndExists(t *testing.T) {
	srv := fakeQdrant(t, `{"result":[]}`)
	store, err := NewQdrantStore(context.Background(), srv.URL, "")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	exists, err := store.CollectionExists(context.Background(), "toolkit")
	require.NoError(t, err)
	assert.True(t, exists)

	count, err := store.Count(context.Background(), "toolkit")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestQdrantStoreScroll(t *testing.T) {
	srv := fakeQdrant(t, `{"result":[]}`)
	store, err := NewQdrantStore(context.Background(), srv.URL, "")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	records, next, err := store.Scroll(context.Background(), "toolkit", 10, "")
	require.NoError(t, err)
	assert.Empty(t, next)
	require.Len(t, records, 1)
	assert.Equal(t, "a1", records[0].ID)
	assert.Equal(t, []float32{1, 0}, records[0].Vector)
}

func TestQdrantStoreUnreachable(t *testing.T) {
	_, err := NewQdrantStore(context.Background(), "http://127.0.0.1:1", "")
	assert.Error(t, err, "initialization must fail loudly when the store is unreachable")
}
