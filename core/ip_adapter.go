package core

import (
	"fmt"
	"net/netip"
	"slices"

	"github.com/encodeous/vpnv4/state"
	"github.com/gaissmai/bart"
)

// IPAdapter exposes individual addresses and subnets into namespaces.
// After every change the full prefix set of the affected namespace is synchronized into the Driver.
type IPAdapter struct {
	driver *Driver
	// exposed maps every exposed prefix to its namespace
	exposed bart.Table[string]
}

func NewIPAdapter(d *Driver) *IPAdapter {
	return &IPAdapter{driver: d}
}

func (a *IPAdapter) ExposeIP(addr netip.Addr, ns string) error {
	return a.ExposeSubnet(netip.PrefixFrom(addr.WithZone(""), addr.BitLen()), ns)
}

// ExposeSubnet advertises prefix in ns. A prefix exposed in another namespace is moved.
func (a *IPAdapter) ExposeSubnet(prefix netip.Prefix, ns string) error {
	if err := state.NamespaceValidator(ns); err != nil {
		return err
	}
	if !prefix.IsValid() {
		return fmt.Errorf("%w: %s", state.ErrInvalidPrefix, prefix)
	}
	prefix = prefix.Masked()
	prev, moved := a.exposed.Get(prefix)
	if moved && prev == ns {
		return nil
	}
	a.exposed.Insert(prefix, ns)
	if moved {
		if err := a.sync(prev); err != nil {
			return err
		}
	}
	return a.sync(ns)
}

// WithdrawIP withdraws the host route of addr. An empty ns is resolved by longest-prefix match.
func (a *IPAdapter) WithdrawIP(addr netip.Addr, ns string) error {
	addr = addr.WithZone("")
	if ns == "" {
		var ok bool
		ns, ok = a.exposed.Lookup(addr)
		if !ok {
			return fmt.Errorf("%w: no namespace exposes %s", state.ErrUnknownNamespace, addr)
		}
	}
	return a.WithdrawSubnet(netip.PrefixFrom(addr, addr.BitLen()), ns)
}

// WithdrawSubnet withdraws prefix from ns. An empty ns is resolved from the exact prefix.
func (a *IPAdapter) WithdrawSubnet(prefix netip.Prefix, ns string) error {
	prefix = prefix.Masked()
	owner, ok := a.exposed.Get(prefix)
	if ns == "" {
		if !ok {
			return fmt.Errorf("%w: no namespace exposes %s", state.ErrUnknownNamespace, prefix)
		}
		ns = owner
	}
	if len(a.Prefixes(ns)) == 0 {
		return fmt.Errorf("%w: %s", state.ErrUnknownNamespace, ns)
	}
	if !ok || owner != ns {
		return nil
	}
	a.exposed.Delete(prefix)
	return a.sync(ns)
}

// Prefixes returns the prefixes exposed in ns, sorted
func (a *IPAdapter) Prefixes(ns string) []string {
	var out []string
	for pfx, owner := range a.exposed.All() {
		if owner == ns {
			out = append(out, pfx.String())
		}
	}
	slices.Sort(out)
	return out
}

// Owner returns the namespace that would advertise addr
func (a *IPAdapter) Owner(addr netip.Addr) (string, bool) {
	return a.exposed.Lookup(addr)
}

func (a *IPAdapter) sync(ns string) error {
	prefixes := a.Prefixes(ns)
	if len(prefixes) == 0 {
		_, err := a.driver.WithdrawNamespace(ns)
		return err
	}
	_, _, err := a.driver.SynchronizePrefixes(ns, prefixes)
	return err
}
