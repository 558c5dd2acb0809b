package core

import (
	"log/slog"
	"net/netip"

	"github.com/encodeous/vpnv4/state"
)

// VrfPlumber manipulates kernel VRF devices and their routing tables
type VrfPlumber interface {
	EnsureVrf(name string, table uint32) error
	DeleteVrf(name string) error
	// SyncBlackholes makes prefixes the exact set of blackhole routes in table
	SyncBlackholes(table uint32, prefixes []netip.Prefix) error
}

// VrfProvisioner keeps a linux VRF with blackhole routes for every advertised namespace,
// so that `redistribute static` has something to originate.
type VrfProvisioner struct {
	driver    *Driver
	plumber   VrfPlumber
	tableBase uint32
	keepEmpty bool
	log       *slog.Logger
}

func NewVrfProvisioner(d *Driver, plumber VrfPlumber, tableBase uint32, keepEmpty bool, log *slog.Logger) *VrfProvisioner {
	if log == nil {
		log = slog.Default()
	}
	return &VrfProvisioner{
		driver:    d,
		plumber:   plumber,
		tableBase: tableBase,
		keepEmpty: keepEmpty,
		log:       log,
	}
}

// TableFor returns the kernel routing table of ns
func (p *VrfProvisioner) TableFor(ns string) (uint32, error) {
	alloc, err := p.driver.Allocator().Allocate(ns)
	if err != nil {
		return 0, err
	}
	return p.tableBase + uint32(alloc.Identifier), nil
}

func (p *VrfProvisioner) OnNamespaceUpsert(ns string, prefixes []string) error {
	if len(prefixes) == 0 && !p.keepEmpty {
		return p.OnNamespaceDelete(ns)
	}
	pfxs := make([]netip.Prefix, 0, len(prefixes))
	for _, raw := range prefixes {
		norm, err := state.NormalizePrefix(raw)
		if err != nil {
			return err
		}
		pfxs = append(pfxs, netip.MustParsePrefix(norm).Masked())
	}
	table, err := p.TableFor(ns)
	if err != nil {
		return err
	}
	if err = p.plumber.EnsureVrf(ns, table); err != nil {
		return err
	}
	p.log.Debug("provisioned vrf", "vrf", ns, "table", table, "blackholes", len(pfxs))
	return p.plumber.SyncBlackholes(table, pfxs)
}

func (p *VrfProvisioner) OnNamespaceDelete(ns string) error {
	p.log.Debug("removing vrf", "vrf", ns)
	return p.plumber.DeleteVrf(ns)
}
