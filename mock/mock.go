package mock

import (
	"fmt"
	"net/netip"
	"slices"
	"sync"

	"github.com/encodeous/vpnv4/state"
)

// MockCfg returns a valid agent configuration rendering into outputDir
func MockCfg(outputDir string) state.AgentCfg {
	keep := true
	cfg := state.AgentCfg{
		Driver: state.DriverCfg{
			GlobalCfg: state.GlobalCfg{
				LocalASN: 65000,
				RouterID: "10.0.0.2",
				Neighbours: []state.Neighbor{
					{Address: "172.31.100.11", RemoteASN: 65100},
				},
			},
			OutputDir:        outputDir,
			MaintainEmptyVrf: &keep,
			SyncInterval:     -1,
		},
	}
	state.ExpandAgentConfig(&cfg)
	return cfg
}

// RecordingDriver records every namespace event it receives
type RecordingDriver struct {
	mu     sync.Mutex
	Events []state.NamespaceEvent
	// Err is returned from every call when set
	Err error
}

func (r *RecordingDriver) OnNamespaceUpsert(ns string, prefixes []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, state.NamespaceUpsert{Namespace: ns, Prefixes: slices.Clone(prefixes)})
	return r.Err
}

func (r *RecordingDriver) OnNamespaceDelete(ns string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, state.NamespaceDelete{Namespace: ns})
	return r.Err
}

func (r *RecordingDriver) Snapshot() []state.NamespaceEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.Events)
}

// Publisher collects published events, it satisfies feed.Publisher
type Publisher struct {
	RecordingDriver
}

func (p *Publisher) Publish(e state.NamespaceEvent) error {
	switch ev := e.(type) {
	case state.NamespaceUpsert:
		return p.OnNamespaceUpsert(ev.Namespace, ev.Prefixes)
	case state.NamespaceDelete:
		return p.OnNamespaceDelete(ev.Namespace)
	}
	return fmt.Errorf("unsupported namespace event %T", e)
}

// Plumber is an in-memory VrfPlumber
type Plumber struct {
	mu         sync.Mutex
	Vrfs       map[string]uint32
	Blackholes map[uint32][]netip.Prefix
	Err        error
}

func NewPlumber() *Plumber {
	return &Plumber{
		Vrfs:       make(map[string]uint32),
		Blackholes: make(map[uint32][]netip.Prefix),
	}
}

func (p *Plumber) EnsureVrf(name string, table uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	if cur, ok := p.Vrfs[name]; ok && cur != table {
		return fmt.Errorf("vrf %s uses table %d, expected %d", name, cur, table)
	}
	p.Vrfs[name] = table
	return nil
}

func (p *Plumber) DeleteVrf(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	if table, ok := p.Vrfs[name]; ok {
		delete(p.Blackholes, table)
		delete(p.Vrfs, name)
	}
	return nil
}

func (p *Plumber) SyncBlackholes(table uint32, prefixes []netip.Prefix) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Blackholes[table] = slices.Clone(prefixes)
	return nil
}
