package state

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// AddressFamily is a BGP VPN address family a neighbour can be activated for.
type AddressFamily string

const (
	VPNV4 AddressFamily = "VPNV4"
	VPNV6 AddressFamily = "VPNV6"
)

func ParseAddressFamily(s string) (AddressFamily, error) {
	switch AddressFamily(strings.ToUpper(strings.TrimSpace(s))) {
	case VPNV4:
		return VPNV4, nil
	case VPNV6:
		return VPNV6, nil
	}
	return "", fmt.Errorf("unsupported address family '%s'", s)
}

func (f *AddressFamily) UnmarshalText(text []byte) error {
	af, err := ParseAddressFamily(string(text))
	if err != nil {
		return err
	}
	*f = af
	return nil
}

func (f AddressFamily) MarshalText() ([]byte, error) {
	return []byte(f), nil
}

// Neighbor is a VPNv4/VPNv6 BGP peer of the local router
type Neighbor struct {
	Address     string          `yaml:"address" toml:"address"`
	RemoteASN   uint32          `yaml:"remote_asn" toml:"remote_asn"`
	Families    []AddressFamily `yaml:"families,omitempty" toml:"families"` // defaults to [VPNV4]
	Description string          `yaml:"description,omitempty" toml:"description"`
}

func (n Neighbor) Supports(af AddressFamily) bool {
	return slices.Contains(n.Families, af)
}

// GlobalCfg is shared, read-only context for every render
type GlobalCfg struct {
	LocalASN   uint32     `yaml:"local_asn" toml:"local_asn"`
	RouterID   string     `yaml:"router_id" toml:"router_id"`
	RDBase     uint32     `yaml:"rd_base,omitempty" toml:"rd_base"` // defaults to LocalASN
	RTBase     uint32     `yaml:"rt_base,omitempty" toml:"rt_base"` // defaults to LocalASN
	Neighbours []Neighbor `yaml:"neighbours,omitempty" toml:"neighbours"`
	ExportIPv6 bool       `yaml:"export_ipv6,omitempty" toml:"export_ipv6"`
}

// NeighbourFor returns the neighbour configured with address, if any
func (c *GlobalCfg) NeighbourFor(address string) (Neighbor, bool) {
	idx := slices.IndexFunc(c.Neighbours, func(n Neighbor) bool {
		return n.Address == address
	})
	if idx == -1 {
		return Neighbor{}, false
	}
	return c.Neighbours[idx], true
}

// DriverCfg configures the vpnv4 driver and the agent runtime around it
type DriverCfg struct {
	GlobalCfg        `yaml:",inline"`
	OutputDir        string  `yaml:"output_dir,omitempty" toml:"output_dir"`
	IncludeGlobals   bool    `yaml:"include_globals,omitempty" toml:"include_globals"`
	MaintainEmptyVrf *bool   `yaml:"maintain_empty_vrf,omitempty" toml:"maintain_empty_vrf"` // keep a VRF around when its namespace has no prefixes, defaults to true
	MaxIdentifier    int     `yaml:"max_identifier,omitempty" toml:"max_identifier"`         // exclusive upper bound of allocated identifiers
	SyncInterval     float64 `yaml:"sync_interval,omitempty" toml:"sync_interval"`           // seconds between forced re-renders, negative disables
	ProvisionVrfs    bool    `yaml:"provision_vrfs,omitempty" toml:"provision_vrfs"`         // create linux VRF devices and blackhole routes
	TableBase        uint32  `yaml:"table_base,omitempty" toml:"table_base"`                 // kernel table id = TableBase + identifier
	ControlSocket    string  `yaml:"control_socket,omitempty" toml:"control_socket"`
	MetricsAddr      string  `yaml:"metrics_addr,omitempty" toml:"metrics_addr"`
	LogPath          string  `yaml:"log_path,omitempty" toml:"log_path"`
}

func (c *DriverCfg) KeepEmptyVrf() bool {
	return c.MaintainEmptyVrf == nil || *c.MaintainEmptyVrf
}

func (c *DriverCfg) SyncPeriod() time.Duration {
	if c.SyncInterval < 0 {
		return 0
	}
	return time.Duration(c.SyncInterval * float64(time.Second))
}

// FeedCfg configures one namespace change feed
type FeedCfg struct {
	Type         string         `yaml:"type" toml:"type"`
	Path         string         `yaml:"path,omitempty" toml:"path"`
	Interval     float64        `yaml:"interval,omitempty" toml:"interval"`           // seconds
	PollInterval float64        `yaml:"poll_interval,omitempty" toml:"poll_interval"` // alias of Interval
	Options      map[string]any `yaml:"options,omitempty" toml:"options"`
}

func (c *FeedCfg) Period() time.Duration {
	return time.Duration(c.Interval * float64(time.Second))
}

// AgentCfg is the root of the agent configuration file
type AgentCfg struct {
	Driver   DriverCfg `yaml:"driver" toml:"driver"`
	Watchers []FeedCfg `yaml:"watchers,omitempty" toml:"watchers"`
}

// ExpandAgentConfig fills in the defaults that are derived from other fields
func ExpandAgentConfig(cfg *AgentCfg) {
	d := &cfg.Driver
	if d.RDBase == 0 {
		d.RDBase = d.LocalASN
	}
	if d.RTBase == 0 {
		d.RTBase = d.LocalASN
	}
	if d.OutputDir == "" {
		d.OutputDir = DefaultOutputDir
	}
	if d.MaxIdentifier == 0 {
		d.MaxIdentifier = DefaultMaxIdentifier
	}
	if d.SyncInterval == 0 {
		d.SyncInterval = DefaultSyncInterval.Seconds()
	}
	if d.TableBase == 0 {
		d.TableBase = DefaultTableBase
	}
	for i := range d.Neighbours {
		if len(d.Neighbours[i].Families) == 0 {
			d.Neighbours[i].Families = []AddressFamily{VPNV4}
		}
	}
	for i := range cfg.Watchers {
		w := &cfg.Watchers[i]
		if w.Interval == 0 {
			w.Interval = w.PollInterval
		}
		if w.Interval == 0 {
			w.Interval = DefaultPollInterval.Seconds()
		}
		if w.Path == "" {
			w.Path = "."
		}
		if w.Options == nil {
			w.Options = make(map[string]any)
		}
	}
}
