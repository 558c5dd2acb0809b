package state

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validDriverCfg() DriverCfg {
	return DriverCfg{
		GlobalCfg: GlobalCfg{
			LocalASN: 65000,
			RouterID: "10.0.0.2",
			Neighbours: []Neighbor{
				{Address: "172.31.100.11", RemoteASN: 65100, Families: []AddressFamily{VPNV4}},
			},
		},
		OutputDir: "/tmp/frr",
	}
}

func TestNamespaceValidator_Valid(t *testing.T) {
	assert.NoError(t, NamespaceValidator("tenant-a"))
	assert.NoError(t, NamespaceValidator("Tenant_1.prod"))
	assert.NoError(t, NamespaceValidator("6b1f0c2e:proj"))
}

func TestNamespaceValidator_Invalid(t *testing.T) {
	assert.Error(t, NamespaceValidator(""))
	assert.Error(t, NamespaceValidator("tenant a"))
	assert.Error(t, NamespaceValidator("tenant\nrouter bgp 1"))
	assert.Error(t, NamespaceValidator(strings.Repeat("a", 254)))
}

func TestRouterIdValidator(t *testing.T) {
	assert.NoError(t, RouterIdValidator("10.0.0.1"))
	assert.Error(t, RouterIdValidator("fd00::1"))
	assert.Error(t, RouterIdValidator("router"))
}

func TestDriverConfigValidator_Valid(t *testing.T) {
	cfg := validDriverCfg()
	assert.NoError(t, DriverConfigValidator(&cfg))
}

func TestDriverConfigValidator_Invalid(t *testing.T) {
	cfg := validDriverCfg()
	cfg.LocalASN = 0
	assert.ErrorContains(t, DriverConfigValidator(&cfg), "local_asn")

	cfg = validDriverCfg()
	cfg.Neighbours = append(cfg.Neighbours, cfg.Neighbours[0])
	assert.ErrorContains(t, DriverConfigValidator(&cfg), "duplicate neighbour")

	cfg = validDriverCfg()
	cfg.Neighbours[0].Description = "a\nb"
	assert.Error(t, DriverConfigValidator(&cfg))

	cfg = validDriverCfg()
	cfg.Neighbours[0].RemoteASN = 0
	assert.Error(t, DriverConfigValidator(&cfg))

	cfg = validDriverCfg()
	cfg.MaxIdentifier = 1<<16 + 1
	assert.Error(t, DriverConfigValidator(&cfg))

	cfg = validDriverCfg()
	cfg.OutputDir = ""
	assert.Error(t, DriverConfigValidator(&cfg))
}

func TestFeedConfigValidator(t *testing.T) {
	assert.NoError(t, FeedConfigValidator(&FeedCfg{Type: "file", Interval: 1}))
	assert.NoError(t, FeedConfigValidator(&FeedCfg{Type: "ports"}))
	assert.Error(t, FeedConfigValidator(&FeedCfg{Type: "ovsdb"}))
	assert.Error(t, FeedConfigValidator(&FeedCfg{Type: "file", Interval: -1}))
}
