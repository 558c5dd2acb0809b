package state

import (
	"fmt"
	"net/netip"
	"regexp"
	"slices"
	"strings"
)

var namePattern, _ = regexp.Compile(`^[0-9A-Za-z._:-]+$`)

var FeedTypes = []string{"file", "ports"}

// NamespaceValidator rejects names that cannot be used as an FRR VRF name
func NamespaceValidator(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%s is not a valid namespace, must match pattern %s", s, namePattern.String())
	}
	if len(s) > 253 {
		return fmt.Errorf("len(\"%s\") = %d > 253 is too long", s, len(s))
	}
	return nil
}

func ASNValidator(asn uint32) error {
	if asn == 0 {
		return fmt.Errorf("ASN must not be 0")
	}
	return nil
}

func RouterIdValidator(s string) error {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return fmt.Errorf("router id %s is invalid: %w", s, err)
	}
	if !addr.Is4() {
		return fmt.Errorf("router id %s must be an IPv4 address", s)
	}
	return nil
}

func NeighbourValidator(n *Neighbor) error {
	if _, err := netip.ParseAddr(n.Address); err != nil {
		return fmt.Errorf("neighbour address %s is invalid: %w", n.Address, err)
	}
	if err := ASNValidator(n.RemoteASN); err != nil {
		return fmt.Errorf("neighbour %s: %w", n.Address, err)
	}
	for _, af := range n.Families {
		if _, err := ParseAddressFamily(string(af)); err != nil {
			return fmt.Errorf("neighbour %s: %w", n.Address, err)
		}
	}
	if strings.ContainsAny(n.Description, "\n\r") {
		return fmt.Errorf("neighbour %s: description must be a single line", n.Address)
	}
	return nil
}

func DriverConfigValidator(cfg *DriverCfg) error {
	if err := ASNValidator(cfg.LocalASN); err != nil {
		return fmt.Errorf("local_asn: %w", err)
	}
	if err := RouterIdValidator(cfg.RouterID); err != nil {
		return err
	}
	if cfg.MaxIdentifier < 0 || cfg.MaxIdentifier > 1<<16 {
		return fmt.Errorf("max_identifier %d must be within [1, %d]", cfg.MaxIdentifier, 1<<16)
	}
	seen := make([]string, 0, len(cfg.Neighbours))
	for i := range cfg.Neighbours {
		n := &cfg.Neighbours[i]
		if err := NeighbourValidator(n); err != nil {
			return err
		}
		if slices.Contains(seen, n.Address) {
			return fmt.Errorf("duplicate neighbour found: %s", n.Address)
		}
		seen = append(seen, n.Address)
	}
	if cfg.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	return nil
}

func FeedConfigValidator(cfg *FeedCfg) error {
	if !slices.Contains(FeedTypes, cfg.Type) {
		return fmt.Errorf("unsupported watcher type '%s'", cfg.Type)
	}
	if cfg.Interval < 0 {
		return fmt.Errorf("watcher %s: interval must not be negative", cfg.Path)
	}
	return nil
}

func AgentConfigValidator(cfg *AgentCfg) error {
	if err := DriverConfigValidator(&cfg.Driver); err != nil {
		return err
	}
	for i := range cfg.Watchers {
		if err := FeedConfigValidator(&cfg.Watchers[i]); err != nil {
			return err
		}
	}
	return nil
}
