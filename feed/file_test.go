package feed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/encodeous/vpnv4/mock"
	"github.com/encodeous/vpnv4/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTenants(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestFileFeed_PublishesUpdates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenants.json")
	writeTenants(t, path, `{"tenants": [{"namespace": "demo", "prefixes": ["10.1.0.0/24"]}]}`)

	pub := &mock.Publisher{}
	f := NewFileFeed(path, pub, nil)

	require.NoError(t, f.Poll(context.Background()))
	assert.Equal(t, []state.NamespaceEvent{
		state.NamespaceUpsert{Namespace: "demo", Prefixes: []string{"10.1.0.0/24"}},
	}, pub.Snapshot())

	pub.Events = nil
	writeTenants(t, path, `{"tenants": [{"namespace": "demo", "prefixes": ["10.1.0.0/24", "10.2.0.0/24"]}]}`)
	require.NoError(t, f.Poll(context.Background()))
	assert.Equal(t, []state.NamespaceEvent{
		state.NamespaceUpsert{Namespace: "demo", Prefixes: []string{"10.1.0.0/24", "10.2.0.0/24"}},
	}, pub.Snapshot())

	// unchanged content publishes nothing
	pub.Events = nil
	require.NoError(t, f.Poll(context.Background()))
	assert.Empty(t, pub.Snapshot())
}

func TestFileFeed_DeletesVanishedNamespaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenants.yaml")
	writeTenants(t, path, `
tenants:
  - namespace: a
    prefixes: [10.0.0.1, 10.0.0.1/32]
  - namespace: b
    prefixes: []
`)
	pub := &mock.Publisher{}
	f := NewFileFeed(path, pub, nil)
	require.NoError(t, f.Poll(context.Background()))
	assert.Equal(t, []state.NamespaceEvent{
		state.NamespaceUpsert{Namespace: "a", Prefixes: []string{"10.0.0.1/32"}},
		state.NamespaceUpsert{Namespace: "b", Prefixes: []string{}},
	}, pub.Snapshot())

	pub.Events = nil
	writeTenants(t, path, "tenants: []\n")
	require.NoError(t, f.Poll(context.Background()))
	assert.Equal(t, []state.NamespaceEvent{
		state.NamespaceDelete{Namespace: "a"},
		state.NamespaceDelete{Namespace: "b"},
	}, pub.Snapshot())
}

func TestFileFeed_MissingFile(t *testing.T) {
	pub := &mock.Publisher{}
	f := NewFileFeed(filepath.Join(t.TempDir(), "missing.json"), pub, nil)
	assert.NoError(t, f.Poll(context.Background()))
	assert.Empty(t, pub.Snapshot())
}

func TestFileFeed_InvalidDocumentKeepsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenants.json")
	writeTenants(t, path, `{"tenants": [{"namespace": "demo", "prefixes": ["10.1.0.0/24"]}]}`)
	pub := &mock.Publisher{}
	f := NewFileFeed(path, pub, nil)
	require.NoError(t, f.Poll(context.Background()))

	for _, bad := range []string{
		`{"tenants": [`,
		`{"other": []}`,
		`{"tenants": [{"namespace": "demo", "prefixes": ["not-a-prefix"]}]}`,
	} {
		pub.Events = nil
		writeTenants(t, path, bad)
		assert.Error(t, f.Poll(context.Background()), bad)
		assert.Empty(t, pub.Snapshot(), bad)
	}

	// the previous snapshot is still in effect
	pub.Events = nil
	writeTenants(t, path, `{"tenants": [{"namespace": "demo", "prefixes": ["10.1.0.0/24"]}]}`)
	require.NoError(t, f.Poll(context.Background()))
	assert.Empty(t, pub.Snapshot())
}

func TestFileFeed_SkipsRecordsWithoutNamespace(t *testing.T) {
	desired, err := ParseTenants([]byte(`{"tenants": [{"prefixes": ["10.0.0.0/24"]}, {"namespace": "x"}]}`))
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"x": {}}, desired)
}

func TestFileFeed_PublishFailureRetries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenants.json")
	writeTenants(t, path, `{"tenants": [{"namespace": "demo", "prefixes": ["10.1.0.0/24"]}]}`)
	pub := &mock.Publisher{}
	pub.Err = errors.New("driver busy")
	f := NewFileFeed(path, pub, nil)

	assert.ErrorContains(t, f.Poll(context.Background()), "driver busy")

	pub.Err = nil
	pub.Events = nil
	require.NoError(t, f.Poll(context.Background()))
	assert.Equal(t, []state.NamespaceEvent{
		state.NamespaceUpsert{Namespace: "demo", Prefixes: []string{"10.1.0.0/24"}},
	}, pub.Snapshot())
}
