//go:build !linux

package sys

import "net/netip"

func (n *Netlink) EnsureVrf(name string, table uint32) error {
	return ErrUnsupported
}

func (n *Netlink) DeleteVrf(name string) error {
	return ErrUnsupported
}

func (n *Netlink) SyncBlackholes(table uint32, prefixes []netip.Prefix) error {
	return ErrUnsupported
}
