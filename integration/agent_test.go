//go:build integration

package integration

import (
	"os"
	"strings"
	"testing"

	"github.com/encodeous/vpnv4/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func contains(sub string) func(string) bool {
	return func(text string) bool {
		return strings.Contains(text, sub)
	}
}

func lacks(sub string) func(string) bool {
	return func(text string) bool {
		return text != "" && !strings.Contains(text, sub)
	}
}

func TestAgent_FileFeedLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("os/signal.signal_recv"))

	h := NewAgentHarness(t)
	h.WriteTenants(`
tenants:
  - namespace: tenant-a
    prefixes: [10.10.0.0/24, 10.10.1.5]
  - namespace: tenant-b
    prefixes: []
`)
	h.Start()

	h.WaitRendered(contains("network 10.10.1.5/32"), "tenant-a was not rendered")
	text := h.Rendered()
	assert.True(t, strings.HasPrefix(text, "!\nfrr version"))
	assert.Contains(t, text, "router bgp 65000 vrf tenant-b")
	assert.Contains(t, text, state.NoPrefixesMarker)

	// rewriting the file withdraws and advertises the difference
	h.WriteTenants(`
tenants:
  - namespace: tenant-a
    prefixes: [10.10.0.0/24]
`)
	h.WaitRendered(lacks("vrf tenant-b"), "tenant-b was not withdrawn")
	assert.NotContains(t, h.Rendered(), "10.10.1.5/32")
	assert.Contains(t, h.Rendered(), "network 10.10.0.0/24")

	// a removed file is not treated as an empty one
	require.NoError(t, os.Remove(h.Tenants))
	h.Ctl("sync")
	assert.Contains(t, h.Rendered(), "router bgp 65000 vrf tenant-a")

	h.Stop()
	_, err := os.Stat(h.Cfg.Driver.ControlSocket)
	assert.True(t, os.IsNotExist(err), "control socket was not removed")
}

func TestAgent_PortsAndControlSocket(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("os/signal.signal_recv"))

	h := NewAgentHarness(t)
	h.WritePorts(`
ports:
  - external_ids:
      k8s.ovn.org/namespace: web
    addresses: ["0a:58:0a:f4:00:05 10.244.0.5"]
  - external_ids:
      neutron:project_id: db
      neutron:cidrs: "10.20.0.0/24"
    addresses: ["router"]
`)
	h.Start()
	defer h.Stop()

	h.WaitRendered(contains("network 10.244.0.5/32"), "port address was not rendered")
	h.WaitRendered(contains("network 10.20.0.0/24"), "neutron cidr was not rendered")

	// the control socket owns the namespaces it exposes into, they are kept apart from feed namespaces
	assert.Equal(t, "ok\n", h.Ctl("expose 192.168.50.0/24 edge"))
	h.WaitRendered(contains("network 192.168.50.0/24"), "exposed subnet was not rendered")

	inspect := h.Ctl("inspect")
	assert.Contains(t, inspect, " - web\n")
	assert.Contains(t, inspect, " - db\n")
	assert.Contains(t, inspect, " - edge\n")
	assert.Contains(t, h.Rendered(), "network 10.244.0.5/32")

	assert.Equal(t, h.Rendered(), h.Ctl("config"))
}
