package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/modscope-mcp/pkg/types"
)

func comp(name, path string, kind types.ComponentKind) *types.Component {
	return &types.Component{Name: name, FullPath: path, Kind: kind}
}

func TestUpsertAndGet(t *testing.T) {
	r := New()
	c := comp("Foo", "root.Foo", types.KindClass)
	r.Upsert(c)

	got, err := r.Get("root.Foo")
	require.NoError(t, err)
	assert.Same(t, c, got)

	_, err = r.Get("root.Bar")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertReplacesWholesale(t *testing.T) {
	r := New()
	r.Upsert(comp("Foo", "root.Foo", types.KindClass))
	replacement := comp("Foo", "root.Foo", types.KindFunction)
	r.Upsert(replacement)

	got, err := r.Get("root.Foo")
	require.NoError(t, err)
	assert.Same(t, replacement, got)
	assert.Equal(t, 1, r.Len(), "paths are injective: replacing must not grow the registry")
}

func TestListKindFilter(t *testing.T) {
	r := New()
	r.Upsert(comp("Foo", "root.Foo", types.KindClass))
	r.Upsert(comp("bar", "root.Foo.bar", types.KindMethod))
	r.Upsert(comp("baz", "root.baz", types.KindFunction))
	r.Upsert(comp("Qux", "root.Qux", types.KindClass))

	assert.Equal(t, []string{"root.Foo", "root.Qux"}, r.List(types.KindClass))
	assert.Equal(t, []string{"root.baz"}, r.List(types.KindFunction))
	assert.Len(t, r.List(""), 4)
}

func TestListSorted(t *testing.T) {
	r := New()
	r.Upsert(comp("z", "root.z", types.KindVariable))
	r.Upsert(comp("a", "root.a", types.KindVariable))
	assert.Equal(t, []string{"root.a", "root.z"}, r.List(""))
}

func TestMarkVisited(t *testing.T) {
	r := New()
	assert.False(t, r.MarkVisited("id-1"))
	assert.True(t, r.MarkVisited("id-1"), "second visit of the same identity must report seen")
	assert.False(t, r.MarkVisited("id-2"))
	assert.Equal(t, 2, r.VisitedCount())
}

func TestAddRoot(t *testing.T) {
	r := New()
	c := comp("Foo", "root.Foo", types.KindClass)
	r.AddRoot(c)

	assert.Same(t, c, r.Roots()["Foo"])
	got, err := r.Get("root.Foo")
	require.NoError(t, err)
	assert.Same(t, c, got)
}

func TestLoadFromRecords(t *testing.T) {
	records := []RehydratedComponent{
		{Name: "Foo", Path: "root.Foo", Kind: types.KindClass, DocSummary: "a class"},
		{Name: "bar", Path: "root.Foo.bar", Kind: types.KindMethod},
		{Name: "baz", Path: "root.baz", Kind: types.KindFunction, Source: "def baz(): ..."},
		{Path: ""}, // malformed payloads are dropped, not fatal
	}

	r := LoadFromRecords(records)
	assert.Equal(t, 3, r.Len())

	foo, err := r.Get("root.Foo")
	require.NoError(t, err)
	assert.Nil(t, foo.Parent, "rehydration does not reconstruct parent links")
	assert.Equal(t, "a class", foo.DocSummary)

	baz, err := r.Get("root.baz")
	require.NoError(t, err)
	assert.Equal(t, "def baz(): ...", baz.SourceExcerpt)
}
