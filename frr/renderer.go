package frr

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/encodeous/vpnv4/state"
)

const Header = `!
frr version 9.x
frr defaults traditional
service integrated-vtysh-config
!`

// RenderResult is the outcome of a single render
type RenderResult struct {
	ConfigText string
	OutputPath string
}

// Renderer turns tenant state into FRR configuration. It keeps no memory of prior renders.
type Renderer struct {
	cfg            state.GlobalCfg
	outputDir      string
	includeGlobals bool
}

func NewRenderer(cfg state.GlobalCfg, outputDir string, includeGlobals bool) *Renderer {
	return &Renderer{
		cfg:            cfg,
		outputDir:      outputDir,
		includeGlobals: includeGlobals,
	}
}

func (r *Renderer) OutputPath() string {
	return filepath.Join(r.outputDir, state.RenderFileName)
}

// Render builds the configuration for tenants and overwrites the output file with it
func (r *Renderer) Render(tenants []state.TenantContext) (RenderResult, error) {
	text := r.Text(tenants)
	out := r.OutputPath()
	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return RenderResult{}, &state.RenderWriteError{Path: out, Err: err}
	}
	if err := os.WriteFile(out, []byte(text), 0644); err != nil {
		return RenderResult{}, &state.RenderWriteError{Path: out, Err: err}
	}
	return RenderResult{ConfigText: text, OutputPath: out}, nil
}

// Text renders tenants without touching the filesystem. Identical input yields identical output.
func (r *Renderer) Text(tenants []state.TenantContext) string {
	sections := make([]string, 0, 4+len(tenants))
	if r.includeGlobals {
		sections = append(sections, Header, r.renderNeighbours())
	}
	for i := range tenants {
		sections = append(sections, r.renderVrf(&tenants[i]))
	}
	if len(r.cfg.Neighbours) > 0 {
		sections = append(sections, renderRouteMaps())
	}
	if r.includeGlobals {
		sections = append(sections, "line vty\n!")
	}
	return strings.Join(sections, "\n\n") + "\n"
}

func (r *Renderer) renderNeighbours() string {
	sb := &strings.Builder{}
	line(sb, "router bgp %d", r.cfg.LocalASN)
	line(sb, " bgp router-id %s", r.cfg.RouterID)
	line(sb, " no bgp default ipv4-unicast")
	for _, n := range r.cfg.Neighbours {
		line(sb, " neighbor %s remote-as %d", n.Address, n.RemoteASN)
		if n.Description != "" {
			line(sb, " neighbor %s description %s", n.Address, n.Description)
		}
		if n.Supports(state.VPNV4) {
			renderNeighbourFamily(sb, n.Address, "ipv4")
		}
		if n.Supports(state.VPNV6) && r.cfg.ExportIPv6 {
			renderNeighbourFamily(sb, n.Address, "ipv6")
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func renderNeighbourFamily(sb *strings.Builder, addr, afi string) {
	line(sb, "!")
	line(sb, " address-family %s vpn", afi)
	line(sb, "  neighbor %s activate", addr)
	line(sb, "  neighbor %s send-community extended", addr)
	line(sb, " exit-address-family")
}

func (r *Renderer) renderVrf(t *state.TenantContext) string {
	sb := &strings.Builder{}
	line(sb, "router bgp %d vrf %s", r.cfg.LocalASN, t.VRF.Name)
	line(sb, " no bgp network import-check")
	line(sb, " !")
	line(sb, " address-family ipv4 unicast")
	line(sb, "  export vpn")
	line(sb, "  import vpn")
	line(sb, "  redistribute static")
	line(sb, "  rd vpn export %s", t.VRF.RD)
	for _, rt := range t.VRF.ImportRTs {
		line(sb, "  route-target vpn import %s", rt)
	}
	for _, rt := range t.VRF.ExportRTs {
		line(sb, "  route-target vpn export %s", rt)
	}
	if len(t.AdvertisedPrefixes) == 0 {
		line(sb, "  %s", state.NoPrefixesMarker)
	}
	for _, p := range t.AdvertisedPrefixes {
		line(sb, "  network %s", p)
	}
	line(sb, " exit-address-family")
	sb.WriteString("!")
	return sb.String()
}

// route-maps are attachment points for future policy, they permit everything
func renderRouteMaps() string {
	return `route-map vpnv4-import permit 10
 !
route-map vpnv4-export permit 10
 !`
}

func line(sb *strings.Builder, format string, args ...any) {
	sb.WriteString(fmt.Sprintf(format, args...))
	sb.WriteByte('\n')
}
