package feed

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/netip"
	"os"
	"strings"

	"github.com/encodeous/vpnv4/state"
	"github.com/goccy/go-yaml"
)

// Port is a logical switch port as seen by a directory source
type Port struct {
	ExternalIDs map[string]string `yaml:"external_ids"`
	Addresses   []string          `yaml:"addresses"`
}

// PortSource lists the ports of a directory, such as an OVN northbound database
type PortSource interface {
	Ports(ctx context.Context) ([]Port, error)
}

// addresses entries that carry no IP
var addressKeywords = []string{"dynamic", "router", "unknown"}

// IPs returns the addresses of the port, skipping MACs and keywords
func (p Port) IPs() []string {
	var ips []string
	for _, entry := range p.Addresses {
		for _, tok := range strings.Fields(entry) {
			if isKeyword(tok) {
				continue
			}
			if _, err := net.ParseMAC(tok); err == nil {
				continue
			}
			addr, err := netip.ParseAddr(tok)
			if err != nil {
				continue
			}
			ips = append(ips, addr.String())
		}
	}
	return ips
}

func isKeyword(tok string) bool {
	for _, k := range addressKeywords {
		if strings.EqualFold(tok, k) {
			return true
		}
	}
	return false
}

// CollectPrefixes groups the IPs and neutron cidrs of ports by namespace.
// Ports without a namespace are ignored, invalid values are reported through skip.
func CollectPrefixes(ports []Port, skip func(ns, value string, err error)) map[string]map[string]struct{} {
	mapping := make(map[string]map[string]struct{})
	for _, port := range ports {
		ns, ok := state.NamespaceFromExternalIDs(port.ExternalIDs)
		if !ok {
			continue
		}
		values := port.IPs()
		values = append(values, strings.Fields(port.ExternalIDs[state.OvnCidrsExtIdKey])...)
		if len(values) == 0 {
			continue
		}
		set, ok := mapping[ns]
		if !ok {
			set = make(map[string]struct{})
			mapping[ns] = set
		}
		for _, v := range values {
			p, err := state.NormalizePrefix(v)
			if err != nil {
				if skip != nil {
					skip(ns, v, err)
				}
				continue
			}
			set[p] = struct{}{}
		}
	}
	return mapping
}

// DirectoryFeed polls a PortSource and aggregates port addresses per namespace
type DirectoryFeed struct {
	name       string
	source     PortSource
	aggregator *Aggregator
	log        *slog.Logger
}

func NewDirectoryFeed(name string, source PortSource, pub Publisher, log *slog.Logger) *DirectoryFeed {
	if log == nil {
		log = slog.Default()
	}
	return &DirectoryFeed{
		name:       name,
		source:     source,
		aggregator: NewAggregator(pub),
		log:        log,
	}
}

func (d *DirectoryFeed) Name() string {
	return d.name
}

func (d *DirectoryFeed) Poll(ctx context.Context) error {
	ports, err := d.source.Ports(ctx)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			d.log.Debug("port source does not exist yet", "feed", d.name)
			return nil
		}
		return err
	}
	mapping := CollectPrefixes(ports, func(ns, value string, err error) {
		d.log.Warn("skipping invalid port address", "namespace", ns, "value", value, "error", err)
	})
	d.log.Debug("directory poll", "feed", d.name, "ports", len(ports), "namespaces", len(mapping))
	return d.aggregator.Update(mapping)
}

// PortFileSource reads ports from a YAML/JSON document with a top level `ports` list
type PortFileSource struct {
	Path string
}

func NewPortFileSource(path string) *PortFileSource {
	return &PortFileSource{Path: path}
}

func (p *PortFileSource) Ports(ctx context.Context) ([]Port, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, err
	}
	doc := struct {
		Ports []Port `yaml:"ports"`
	}{}
	if err = yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid ports file %s: %w", p.Path, err)
	}
	return doc.Ports, nil
}
