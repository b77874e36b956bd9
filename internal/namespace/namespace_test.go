package namespace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/modscope-mcp/pkg/types"
)

func TestStripVersion(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "toolkit", "toolkit"},
		{"dash version", "toolkit-1.2.3", "toolkit"},
		{"underscore v", "toolkit_v2", "toolkit"},
		{"dash v", "toolkit-v10", "toolkit"},
		{"inner digits kept", "kit2go", "kit2go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripVersion(tt.in))
		})
	}
}

func TestResolve(t *testing.T) {
	root := NewModule("toolkit-1.0.0").Add(
		NewClass("Client", "Client talks to the API.").Add(
			NewFunc("Send", "Send delivers a payload."),
		),
		NewFunc("Ping", "Ping checks liveness."),
	)

	t.Run("resolves nested path with version-stripped root segment", func(t *testing.T) {
		h, err := Resolve(root, "toolkit.Client.Send")
		require.NoError(t, err)
		name, err := h.Name()
		require.NoError(t, err)
		assert.Equal(t, "Send", name)
	})

	t.Run("resolves without root segment", func(t *testing.T) {
		h, err := Resolve(root, "Ping")
		require.NoError(t, err)
		name, err := h.Name()
		require.NoError(t, err)
		assert.Equal(t, "Ping", name)
	})

	t.Run("missing member yields ErrNotFound", func(t *testing.T) {
		_, err := Resolve(root, "toolkit.Client.Nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty path yields ErrNotFound", func(t *testing.T) {
		_, err := Resolve(root, "")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("failing members hook yields ErrNotFound", func(t *testing.T) {
		broken := NewModule("broken").FailHook(HookMembers, errors.New("boom"))
		_, err := Resolve(broken, "broken.x")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStaticFailHook(t *testing.T) {
	boom := errors.New("hostile")
	s := NewFunc("f", "doc").FailHook(HookDoc, boom)

	_, err := s.Doc()
	assert.ErrorIs(t, err, boom)

	// Other hooks unaffected
	name, err := s.Name()
	require.NoError(t, err)
	assert.Equal(t, "f", name)
}

func TestStaticLeafHasNoMembers(t *testing.T) {
	_, err := NewVar("x").Members()
	assert.ErrorIs(t, err, ErrNotNamespace)
}

type fakeService struct {
	Endpoint string
}

func (f *fakeService) Doc() string { return "fakeService exercises reflection.\nmore detail" }

func (f *fakeService) Send(msg string) error { return nil }

func TestFromValueStruct(t *testing.T) {
	h := FromValue("svc", &fakeService{Endpoint: "http://localhost"})

	kind, err := h.Kind()
	require.NoError(t, err)
	assert.Equal(t, types.KindClass, kind)

	doc, err := h.Doc()
	require.NoError(t, err)
	assert.Contains(t, doc, "exercises reflection")

	members, err := h.Members()
	require.NoError(t, err)

	names := make(map[string]types.ComponentKind)
	for _, m := range members {
		n, err := m.Name()
		require.NoError(t, err)
		k, err := m.Kind()
		require.NoError(t, err)
		names[n] = k
	}
	assert.Equal(t, types.KindFunction, names["Send"])
	assert.Equal(t, types.KindVariable, names["Endpoint"])
	// Doc and Source are interface methods, not members of interest, but
	// they still enumerate as exported methods.
	assert.Contains(t, names, "Doc")
}

func TestFromValueMapModule(t *testing.T) {
	tree := map[string]any{
		"chat":  map[string]any{"send": func() {}},
		"admin": &fakeService{},
	}
	h := FromValue("toolkit", tree)

	kind, err := h.Kind()
	require.NoError(t, err)
	assert.Equal(t, types.KindModule, kind)

	members, err := h.Members()
	require.NoError(t, err)
	require.Len(t, members, 2)

	// Map members enumerate in sorted key order.
	first, err := members[0].Name()
	require.NoError(t, err)
	assert.Equal(t, "admin", first)
}

func TestFromValueMapIdentityStable(t *testing.T) {
	tree := map[string]any{}
	tree["self"] = tree

	h := FromValue("cyclic", tree)
	id1, err := h.Identity()
	require.NoError(t, err)

	members, err := h.Members()
	require.NoError(t, err)
	require.Len(t, members, 1)

	id2, err := members[0].Identity()
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "self-referential map must expose the same identity")
}

func TestChildSkipsBrokenSiblings(t *testing.T) {
	root := NewModule("root").Add(
		NewFunc("bad", "").FailHook(HookName, errors.New("no name")),
		NewFunc("good", ""),
	)
	h, err := Child(root, "good")
	require.NoError(t, err)
	name, err := h.Name()
	require.NoError(t, err)
	assert.Equal(t, "good", name)
}
