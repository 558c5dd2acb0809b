package core

import (
	"log/slog"
	"slices"
	"time"

	"github.com/encodeous/vpnv4/frr"
	"github.com/encodeous/vpnv4/perf"
	"github.com/encodeous/vpnv4/state"
)

// Driver reconciles namespace prefixes into the rendered FRR configuration.
// It is not safe for concurrent use, all calls must come from the main loop.
type Driver struct {
	allocator *Allocator
	renderer  *frr.Renderer
	log       *slog.Logger

	tenants map[string]*state.TenantContext
	order   []string // namespaces in first-ensure order

	last    frr.RenderResult
	hasLast bool
}

func NewDriver(cfg state.DriverCfg, log *slog.Logger) *Driver {
	if cfg.RDBase == 0 {
		cfg.RDBase = cfg.LocalASN
	}
	if cfg.RTBase == 0 {
		cfg.RTBase = cfg.LocalASN
	}
	if cfg.MaxIdentifier == 0 {
		cfg.MaxIdentifier = state.DefaultMaxIdentifier
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = state.DefaultOutputDir
	}
	if log == nil {
		log = slog.Default()
	}
	return &Driver{
		allocator: NewAllocator(cfg.RDBase, cfg.RTBase, cfg.MaxIdentifier),
		renderer:  frr.NewRenderer(cfg.GlobalCfg, cfg.OutputDir, cfg.IncludeGlobals),
		log:       log,
		tenants:   make(map[string]*state.TenantContext),
	}
}

func (d *Driver) Allocator() *Allocator {
	return d.allocator
}

// EnsureNamespace returns the tenant of ns, allocating a VRF for it if needed. It does not render.
func (d *Driver) EnsureNamespace(ns string) (*state.TenantContext, error) {
	if t, ok := d.tenants[ns]; ok {
		return t, nil
	}
	alloc, err := d.allocator.Allocate(ns)
	if err != nil {
		return nil, err
	}
	t := &state.TenantContext{
		Namespace: ns,
		VRF:       state.NewVRFDefinition(ns, alloc),
	}
	d.tenants[ns] = t
	d.order = append(d.order, ns)
	d.log.Debug("ensured namespace", "namespace", ns, "allocation", alloc.String())
	return t, nil
}

// Tenant returns the tenant of ns without creating it
func (d *Driver) Tenant(ns string) (*state.TenantContext, bool) {
	t, ok := d.tenants[ns]
	return t, ok
}

// WithdrawNamespace removes ns and re-renders. Unknown namespaces are a no-op and return nil.
func (d *Driver) WithdrawNamespace(ns string) (*state.TenantContext, error) {
	t, ok := d.tenants[ns]
	if !ok {
		return nil, nil
	}
	delete(d.tenants, ns)
	d.order = slices.DeleteFunc(d.order, func(s string) bool {
		return s == ns
	})
	d.log.Info("withdrew namespace", "namespace", ns)
	_, err := d.Render()
	return t, err
}

// AdvertisePrefixes adds prefixes to ns, creating it if needed, and always re-renders
func (d *Driver) AdvertisePrefixes(ns string, prefixes []string) (*state.TenantContext, error) {
	t, err := d.EnsureNamespace(ns)
	if err != nil {
		return nil, err
	}
	t.AddPrefixes(prefixes)
	_, err = d.Render()
	return t, err
}

// WithdrawPrefixes removes prefixes from an existing namespace. Unknown namespaces are not rendered.
func (d *Driver) WithdrawPrefixes(ns string, prefixes []string) (*state.TenantContext, error) {
	t, ok := d.tenants[ns]
	if !ok {
		return nil, nil
	}
	t.WithdrawPrefixes(prefixes)
	_, err := d.Render()
	return t, err
}

// SynchronizePrefixes makes prefixes the full advertised set of ns.
// It only renders when the set of prefixes differs from the current one, changed reports whether it did.
// A reordering of the same prefixes is not a change, creating the namespace is.
func (d *Driver) SynchronizePrefixes(ns string, prefixes []string) (t *state.TenantContext, changed bool, err error) {
	_, existed := d.tenants[ns]
	t, err = d.EnsureNamespace(ns)
	if err != nil {
		return nil, false, err
	}
	desired := state.UniqueStrings(prefixes)
	if existed && samePrefixSet(desired, t.AdvertisedPrefixes) {
		perf.SkippedSyncs.Add(1)
		return t, false, nil
	}
	t.SetPrefixes(desired)
	d.log.Debug("synchronized prefixes", "namespace", ns, "prefixes", desired)
	_, err = d.Render()
	return t, true, err
}

// Render renders every tenant and keeps the result as the last render
func (d *Driver) Render() (frr.RenderResult, error) {
	start := time.Now()
	res, err := d.renderer.Render(d.tenantList())
	if err != nil {
		return frr.RenderResult{}, err
	}
	perf.RenderLatency.Add(float64(time.Since(start).Microseconds()))
	perf.Renders.Add(1)
	d.last = res
	d.hasLast = true
	d.log.Debug("rendered config", "path", res.OutputPath, "tenants", len(d.order))
	return res, nil
}

// Sync re-renders regardless of detected changes, repairing out-of-band edits of the output file
func (d *Driver) Sync() (frr.RenderResult, error) {
	return d.Render()
}

func (d *Driver) tenantList() []state.TenantContext {
	tenants := make([]state.TenantContext, 0, len(d.order))
	for _, ns := range d.order {
		tenants = append(tenants, *d.tenants[ns])
	}
	return tenants
}

// ListTenants returns a snapshot of all tenants in render order
func (d *Driver) ListTenants() []state.TenantContext {
	tenants := make([]state.TenantContext, 0, len(d.order))
	for _, ns := range d.order {
		tenants = append(tenants, d.tenants[ns].Clone())
	}
	return tenants
}

func (d *Driver) RenderedConfig() (string, bool) {
	return d.last.ConfigText, d.hasLast
}

func (d *Driver) LastRender() (frr.RenderResult, bool) {
	return d.last, d.hasLast
}

func (d *Driver) OutputPath() string {
	return d.renderer.OutputPath()
}

// both slices must be free of duplicates
func samePrefixSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, p := range a {
		if !slices.Contains(b, p) {
			return false
		}
	}
	return true
}
