package core

import (
	"errors"
	"fmt"
	"slices"

	"github.com/encodeous/vpnv4/state"
)

// NamespaceDriver consumes namespace change events
type NamespaceDriver interface {
	OnNamespaceUpsert(ns string, prefixes []string) error
	OnNamespaceDelete(ns string) error
}

// Registry holds the named drivers that namespace events are fanned out to, in registration order
type Registry struct {
	drivers map[string]NamespaceDriver
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{
		drivers: make(map[string]NamespaceDriver),
	}
}

// Register adds d under name. Registering a name twice fails with state.ErrDriverExists.
func (r *Registry) Register(name string, d NamespaceDriver) error {
	if _, ok := r.drivers[name]; ok {
		return fmt.Errorf("%w: %s", state.ErrDriverExists, name)
	}
	r.drivers[name] = d
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) Unregister(name string) bool {
	if _, ok := r.drivers[name]; !ok {
		return false
	}
	delete(r.drivers, name)
	r.order = slices.DeleteFunc(r.order, func(s string) bool {
		return s == name
	})
	return true
}

func (r *Registry) Get(name string) (NamespaceDriver, bool) {
	d, ok := r.drivers[name]
	return d, ok
}

func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Handle delivers e to every registered driver. A failing driver does not stop delivery to the others.
func (r *Registry) Handle(e state.NamespaceEvent) error {
	var errs []error
	for _, name := range r.order {
		d := r.drivers[name]
		var err error
		switch ev := e.(type) {
		case state.NamespaceUpsert:
			err = d.OnNamespaceUpsert(ev.Namespace, ev.Prefixes)
		case state.NamespaceDelete:
			err = d.OnNamespaceDelete(ev.Namespace)
		default:
			return fmt.Errorf("unsupported namespace event %T", e)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("driver %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
