package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/encodeous/vpnv4/mock"
	"github.com/encodeous/vpnv4/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDriver(t *testing.T) *Driver {
	t.Helper()
	return NewDriver(mock.MockCfg(t.TempDir()).Driver, nil)
}

func rendered(t *testing.T, d *Driver) string {
	t.Helper()
	text, ok := d.RenderedConfig()
	require.True(t, ok, "nothing rendered")
	return text
}

func TestDriver_AllocatesVrf(t *testing.T) {
	d := newTestDriver(t)
	tenant, err := d.EnsureNamespace("tenant-a")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(tenant.VRF.RD, "65000:"))
	assert.Equal(t, tenant.VRF.ImportRTs, tenant.VRF.ExportRTs)
	assert.Equal(t, "tenant-a", tenant.VRF.Name)

	// ensuring does not render
	_, ok := d.RenderedConfig()
	assert.False(t, ok)

	again, err := d.EnsureNamespace("tenant-a")
	require.NoError(t, err)
	assert.Same(t, tenant, again)
}

func TestDriver_AdvertisePrefixes(t *testing.T) {
	d := newTestDriver(t)
	_, err := d.AdvertisePrefixes("tenant-a", []string{"10.244.0.0/24"})
	require.NoError(t, err)

	text := rendered(t, d)
	assert.Contains(t, text, "network 10.244.0.0/24")

	data, err := os.ReadFile(d.OutputPath())
	require.NoError(t, err)
	assert.Equal(t, text, string(data))
}

func TestDriver_WithdrawPrefixes(t *testing.T) {
	d := newTestDriver(t)
	_, err := d.AdvertisePrefixes("tenant-a", []string{"10.244.0.0/24"})
	require.NoError(t, err)
	tenant, err := d.WithdrawPrefixes("tenant-a", []string{"10.244.0.0/24"})
	require.NoError(t, err)
	assert.Empty(t, tenant.AdvertisedPrefixes)

	text := rendered(t, d)
	assert.Contains(t, text, state.NoPrefixesMarker)
	assert.NotContains(t, text, "network ")
}

func TestDriver_WithdrawPrefixesUnknownNamespace(t *testing.T) {
	d := newTestDriver(t)
	tenant, err := d.WithdrawPrefixes("ghost", []string{"10.0.0.0/24"})
	assert.NoError(t, err)
	assert.Nil(t, tenant)
	_, ok := d.RenderedConfig()
	assert.False(t, ok)
	assert.Empty(t, d.ListTenants())
}

func TestDriver_SynchronizePrefixes(t *testing.T) {
	d := newTestDriver(t)

	_, changed, err := d.SynchronizePrefixes("tenant-a", []string{"10.244.0.0/24", "10.244.0.0/24"})
	require.NoError(t, err)
	assert.True(t, changed)
	first := rendered(t, d)
	assert.Equal(t, 1, strings.Count(first, "network 10.244.0.0/24"))

	_, changed, err = d.SynchronizePrefixes("tenant-a", []string{"10.244.0.0/24"})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, first, rendered(t, d))
}

func TestDriver_SynchronizeReorderIsNoop(t *testing.T) {
	d := newTestDriver(t)
	_, _, err := d.SynchronizePrefixes("tenant-a", []string{"10.1.0.0/24", "10.2.0.0/24"})
	require.NoError(t, err)
	first := rendered(t, d)

	_, changed, err := d.SynchronizePrefixes("tenant-a", []string{"10.2.0.0/24", "10.1.0.0/24", "10.2.0.0/24"})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, first, rendered(t, d))
}

func TestDriver_SynchronizeNewEmptyNamespaceRenders(t *testing.T) {
	d := newTestDriver(t)
	_, changed, err := d.SynchronizePrefixes("tenant-a", nil)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, rendered(t, d), "vrf tenant-a")
}

func TestDriver_SynchronizeReplaces(t *testing.T) {
	d := newTestDriver(t)
	_, err := d.AdvertisePrefixes("tenant-a", []string{"10.1.0.0/24", "10.2.0.0/24"})
	require.NoError(t, err)

	tenant, changed, err := d.SynchronizePrefixes("tenant-a", []string{"10.3.0.0/24", "10.1.0.0/24"})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"10.3.0.0/24", "10.1.0.0/24"}, tenant.AdvertisedPrefixes)
	assert.NotContains(t, rendered(t, d), "10.2.0.0/24")
}

func TestDriver_WithdrawNamespace(t *testing.T) {
	d := newTestDriver(t)
	_, err := d.AdvertisePrefixes("demo", []string{"10.200.0.0/24"})
	require.NoError(t, err)
	_, err = d.AdvertisePrefixes("other", []string{"10.201.0.0/24"})
	require.NoError(t, err)

	removed, err := d.WithdrawNamespace("demo")
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.Equal(t, "demo", removed.Namespace)

	for _, tenant := range d.ListTenants() {
		assert.NotEqual(t, "demo", tenant.Namespace)
	}
	assert.NotContains(t, rendered(t, d), "vrf demo")

	removed, err = d.WithdrawNamespace("demo")
	assert.NoError(t, err)
	assert.Nil(t, removed)
}

func TestDriver_TenantOrder(t *testing.T) {
	d := newTestDriver(t)
	for _, ns := range []string{"zeta", "alpha", "mid"} {
		_, err := d.EnsureNamespace(ns)
		require.NoError(t, err)
	}
	_, err := d.Render()
	require.NoError(t, err)

	var names []string
	for _, tenant := range d.ListTenants() {
		names = append(names, tenant.Namespace)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)

	text := rendered(t, d)
	assert.Less(t, strings.Index(text, "vrf zeta"), strings.Index(text, "vrf alpha"))
	assert.Less(t, strings.Index(text, "vrf alpha"), strings.Index(text, "vrf mid"))
}

func TestDriver_ListTenantsIsSnapshot(t *testing.T) {
	d := newTestDriver(t)
	_, err := d.AdvertisePrefixes("tenant-a", []string{"10.0.0.0/24"})
	require.NoError(t, err)

	tenants := d.ListTenants()
	tenants[0].AdvertisedPrefixes[0] = "mutated"
	tenant, _ := d.Tenant("tenant-a")
	assert.Equal(t, []string{"10.0.0.0/24"}, tenant.AdvertisedPrefixes)
}

func TestDriver_EndToEnd(t *testing.T) {
	cfg := state.DriverCfg{
		GlobalCfg: state.GlobalCfg{
			LocalASN: 65000,
			RouterID: "10.0.0.2",
			RDBase:   65000,
			RTBase:   65000,
			Neighbours: []state.Neighbor{
				{Address: "172.31.100.11", RemoteASN: 65100, Families: []state.AddressFamily{state.VPNV4}},
			},
		},
		OutputDir:      t.TempDir(),
		IncludeGlobals: true,
	}
	d := NewDriver(cfg, nil)
	tenant, err := d.AdvertisePrefixes("tenant-a", []string{"10.244.0.0/24"})
	require.NoError(t, err)
	assert.Equal(t, tenant.VRF.ImportRTs, tenant.VRF.ExportRTs)

	text := rendered(t, d)
	assert.Contains(t, text, "network 10.244.0.0/24")
	assert.Contains(t, text, "router bgp 65000\n bgp router-id 10.0.0.2\n")
	assert.Contains(t, text, "  route-target vpn import "+tenant.VRF.ImportRTs[0]+"\n")
	assert.Contains(t, text, "  route-target vpn export "+tenant.VRF.ExportRTs[0]+"\n")

	res, ok := d.LastRender()
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(cfg.OutputDir, state.RenderFileName), res.OutputPath)
}

func TestDriver_AllocatorExhaustedLeavesNoTenant(t *testing.T) {
	cfg := mock.MockCfg(t.TempDir()).Driver
	cfg.MaxIdentifier = 1
	d := NewDriver(cfg, nil)

	_, err := d.AdvertisePrefixes("first", []string{"10.0.0.0/24"})
	require.NoError(t, err)
	before := rendered(t, d)

	_, err = d.AdvertisePrefixes("second", []string{"10.1.0.0/24"})
	assert.ErrorIs(t, err, state.ErrAllocatorExhausted)
	_, _, err = d.SynchronizePrefixes("second", []string{"10.1.0.0/24"})
	assert.ErrorIs(t, err, state.ErrAllocatorExhausted)

	_, ok := d.Tenant("second")
	assert.False(t, ok)
	assert.Len(t, d.ListTenants(), 1)
	assert.Equal(t, before, rendered(t, d))
}

func TestDriver_RenderWriteError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	cfg := mock.MockCfg(blocker).Driver
	d := NewDriver(cfg, nil)

	_, err := d.AdvertisePrefixes("tenant-a", []string{"10.0.0.0/24"})
	var werr *state.RenderWriteError
	require.ErrorAs(t, err, &werr)

	// the state change is kept so that the next render can apply it
	tenant, ok := d.Tenant("tenant-a")
	assert.True(t, ok)
	assert.Equal(t, []string{"10.0.0.0/24"}, tenant.AdvertisedPrefixes)
	_, ok = d.RenderedConfig()
	assert.False(t, ok)
}

func TestDriver_Sync(t *testing.T) {
	d := newTestDriver(t)
	_, err := d.AdvertisePrefixes("tenant-a", []string{"10.0.0.0/24"})
	require.NoError(t, err)

	// simulate an out of band edit
	require.NoError(t, os.WriteFile(d.OutputPath(), []byte("garbage"), 0644))
	res, err := d.Sync()
	require.NoError(t, err)

	data, err := os.ReadFile(d.OutputPath())
	require.NoError(t, err)
	assert.Equal(t, res.ConfigText, string(data))
}
