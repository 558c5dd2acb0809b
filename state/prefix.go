package state

import (
	"fmt"
	"net/netip"
	"strings"
)

// NormalizePrefix turns a bare address into a host route (/32 for IPv4, /128 for IPv6).
// Values that already carry a mask are validated and returned unchanged.
func NormalizePrefix(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: prefix value cannot be empty", ErrInvalidPrefix)
	}
	if strings.Contains(value, "/") {
		if _, err := netip.ParsePrefix(value); err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrInvalidPrefix, value, err)
		}
		return value, nil
	}
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidPrefix, value, err)
	}
	if addr.Zone() != "" {
		return "", fmt.Errorf("%w: %s: zoned addresses cannot be advertised", ErrInvalidPrefix, value)
	}
	return netip.PrefixFrom(addr, addr.BitLen()).String(), nil
}

// NormalizePrefixes normalizes every value and de-duplicates the result in first-seen order
func NormalizePrefixes(values []string) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		p, err := NormalizePrefix(v)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return UniqueStrings(out), nil
}

// NamespaceFromExternalIDs returns the first non-empty namespace key of externalIDs
func NamespaceFromExternalIDs(externalIDs map[string]string) (string, bool) {
	for _, key := range NamespaceKeys {
		if v := externalIDs[key]; v != "" {
			return v, true
		}
	}
	return "", false
}
