package core

import (
	"errors"
	"testing"

	"github.com/encodeous/vpnv4/mock"
	"github.com/encodeous/vpnv4/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bogusEvent struct {
	state.NamespaceEvent
}

func TestRegistry_DispatchesEvents(t *testing.T) {
	d := newTestDriver(t)
	r := NewRegistry()
	require.NoError(t, r.Register("vpnv4", NewDriverAdapter(d, true)))

	require.NoError(t, r.Handle(state.NamespaceUpsert{Namespace: "demo", Prefixes: []string{"10.200.0.0/24"}}))
	assert.Contains(t, rendered(t, d), "network 10.200.0.0/24")

	require.NoError(t, r.Handle(state.NamespaceUpsert{Namespace: "demo"}))
	assert.Contains(t, rendered(t, d), state.NoPrefixesMarker)

	require.NoError(t, r.Handle(state.NamespaceDelete{Namespace: "demo"}))
	for _, tenant := range d.ListTenants() {
		assert.NotEqual(t, "demo", tenant.Namespace)
	}
}

func TestRegistry_RejectsDuplicateRegistration(t *testing.T) {
	r := NewRegistry()
	adapter := NewDriverAdapter(newTestDriver(t), true)
	require.NoError(t, r.Register("vpnv4", adapter))

	err := r.Register("vpnv4", adapter)
	assert.ErrorIs(t, err, state.ErrDriverExists)
	assert.Equal(t, []string{"vpnv4"}, r.Names())
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry()
	rec := &mock.RecordingDriver{}
	require.NoError(t, r.Register("rec", rec))
	assert.True(t, r.Unregister("rec"))
	assert.False(t, r.Unregister("rec"))
	assert.Empty(t, r.Names())

	require.NoError(t, r.Handle(state.NamespaceDelete{Namespace: "a"}))
	assert.Empty(t, rec.Snapshot())

	// the name is free again
	require.NoError(t, r.Register("rec", rec))
	_, ok := r.Get("rec")
	assert.True(t, ok)
}

func TestRegistry_OrderAndErrors(t *testing.T) {
	r := NewRegistry()
	first := &mock.RecordingDriver{Err: errors.New("first failed")}
	second := &mock.RecordingDriver{}
	require.NoError(t, r.Register("first", first))
	require.NoError(t, r.Register("second", second))
	assert.Equal(t, []string{"first", "second"}, r.Names())

	err := r.Handle(state.NamespaceUpsert{Namespace: "a", Prefixes: []string{"10.0.0.0/24"}})
	assert.ErrorContains(t, err, "driver first: first failed")
	// a failing driver does not starve the next one
	assert.Equal(t, []state.NamespaceEvent{
		state.NamespaceUpsert{Namespace: "a", Prefixes: []string{"10.0.0.0/24"}},
	}, second.Snapshot())
}

func TestRegistry_UnknownEvent(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("rec", &mock.RecordingDriver{}))
	assert.Error(t, r.Handle(bogusEvent{}))
}

func TestDriverAdapter_WithoutEmptyVrf(t *testing.T) {
	d := newTestDriver(t)
	a := NewDriverAdapter(d, false)

	require.NoError(t, a.OnNamespaceUpsert("demo", []string{"10.0.0.0/24"}))
	require.Len(t, d.ListTenants(), 1)

	require.NoError(t, a.OnNamespaceUpsert("demo", nil))
	assert.Empty(t, d.ListTenants())
	assert.NotContains(t, rendered(t, d), "vrf demo")
}
