package sys

import (
	"errors"
	"fmt"
	"net"
	"net/netip"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

func (n *Netlink) EnsureVrf(name string, table uint32) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		var notFound netlink.LinkNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("lookup vrf %s: %w", name, err)
		}
		vrf := &netlink.Vrf{
			LinkAttrs: netlink.LinkAttrs{Name: name},
			Table:     table,
		}
		n.Log.Info("creating vrf", "vrf", name, "table", table)
		if err = netlink.LinkAdd(vrf); err != nil {
			return fmt.Errorf("create vrf %s: %w", name, err)
		}
		link = vrf
	} else {
		vrf, ok := link.(*netlink.Vrf)
		if !ok {
			return fmt.Errorf("link %s exists and is a %s, not a vrf", name, link.Type())
		}
		if vrf.Table != table {
			return fmt.Errorf("vrf %s uses table %d, expected %d", name, vrf.Table, table)
		}
	}
	if err = netlink.LinkSetUp(link); err != nil {
		return fmt.Errorf("bring up vrf %s: %w", name, err)
	}
	return nil
}

func (n *Netlink) DeleteVrf(name string) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		var notFound netlink.LinkNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("lookup vrf %s: %w", name, err)
	}
	if _, ok := link.(*netlink.Vrf); !ok {
		return fmt.Errorf("refusing to delete %s, it is not a vrf", name)
	}
	n.Log.Info("deleting vrf", "vrf", name)
	return netlink.LinkDel(link)
}

func (n *Netlink) SyncBlackholes(table uint32, prefixes []netip.Prefix) error {
	filter := &netlink.Route{
		Table: int(table),
		Type:  unix.RTN_BLACKHOLE,
	}
	routes, err := netlink.RouteListFiltered(netlink.FAMILY_ALL, filter, netlink.RT_FILTER_TABLE|netlink.RT_FILTER_TYPE)
	if err != nil {
		return fmt.Errorf("list routes of table %d: %w", table, err)
	}
	desired := make(map[netip.Prefix]struct{}, len(prefixes))
	for _, p := range prefixes {
		desired[p.Masked()] = struct{}{}
	}
	existing := make(map[netip.Prefix]struct{}, len(routes))
	for _, rt := range routes {
		if rt.Dst == nil {
			continue
		}
		p, ok := prefixFromIPNet(rt.Dst)
		if !ok {
			continue
		}
		existing[p] = struct{}{}
		if _, keep := desired[p]; keep {
			continue
		}
		n.Log.Debug("removing blackhole", "prefix", p, "table", table)
		if err = netlink.RouteDel(&rt); err != nil && !errors.Is(err, unix.ESRCH) {
			return fmt.Errorf("delete blackhole %s from table %d: %w", p, table, err)
		}
	}
	for p := range desired {
		if _, ok := existing[p]; ok {
			continue
		}
		n.Log.Debug("installing blackhole", "prefix", p, "table", table)
		rt := &netlink.Route{
			Dst:      ipNetFromPrefix(p),
			Table:    int(table),
			Type:     unix.RTN_BLACKHOLE,
			Protocol: unix.RTPROT_STATIC,
		}
		if err = netlink.RouteAdd(rt); err != nil && !errors.Is(err, unix.EEXIST) {
			return fmt.Errorf("install blackhole %s in table %d: %w", p, table, err)
		}
	}
	return nil
}

func ipNetFromPrefix(p netip.Prefix) *net.IPNet {
	return &net.IPNet{
		IP:   p.Addr().AsSlice(),
		Mask: net.CIDRMask(p.Bits(), p.Addr().BitLen()),
	}
}

func prefixFromIPNet(n *net.IPNet) (netip.Prefix, bool) {
	addr, ok := netip.AddrFromSlice(n.IP)
	if !ok {
		return netip.Prefix{}, false
	}
	ones, _ := n.Mask.Size()
	if addr.Is4In6() && ones <= 32 {
		addr = addr.Unmap()
	}
	return netip.PrefixFrom(addr, ones).Masked(), true
}
