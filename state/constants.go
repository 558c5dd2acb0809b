package state

import "time"

const (
	// RenderFileName is the file written under the output directory on every render
	RenderFileName = "vpnv4.conf"
	// NoPrefixesMarker is rendered inside a VRF block that has nothing to advertise.
	// It is a comment, never a directive.
	NoPrefixesMarker = "! no prefixes advertised yet"

	MergeBeginMarker = "! --- vpnv4 auto-generated section ---"
	MergeEndMarker   = "! --- end vpnv4 auto-generated section ---"

	// OvnCidrsExtIdKey holds the space separated CIDRs of a logical switch port
	OvnCidrsExtIdKey = "neutron:cidrs"
)

var (
	DefaultMaxIdentifier = 65535
	DefaultOutputDir     = "/etc/frr"
	DefaultConfigPath    = "/etc/ovn-bgp-agent/vpnv4.yaml"
	DefaultControlSocket = "/var/run/vpnv4.sock"
	DefaultTableBase     = uint32(1000)

	DefaultPollInterval = time.Second * 5
	DefaultSyncInterval = time.Second * 60
	// PollErrorTTL suppresses identical poll errors of a feed for this long
	PollErrorTTL = time.Minute * 5

	// NamespaceKeys are the external-id keys a namespace is read from, in priority order
	NamespaceKeys = []string{
		"k8s.ovn.org/namespace",
		"k8s.ovn.org/project",
		"neutron:project_id",
		"namespace",
		"name",
	}
)
