package feed

import (
	"maps"
	"slices"

	"github.com/encodeous/vpnv4/state"
)

// Aggregator diffs successive namespace -> prefix set mappings and publishes the changes.
// Namespaces with an empty set are treated as absent.
type Aggregator struct {
	pub     Publisher
	current map[string][]string // sorted prefixes
}

func NewAggregator(pub Publisher) *Aggregator {
	return &Aggregator{
		pub:     pub,
		current: make(map[string][]string),
	}
}

// Update publishes upserts with sorted prefixes for changed namespaces, then deletes for vanished ones.
// A namespace is only recorded once its event has been published.
func (a *Aggregator) Update(mapping map[string]map[string]struct{}) error {
	desired := make(map[string][]string, len(mapping))
	for ns, set := range mapping {
		if len(set) == 0 {
			continue
		}
		desired[ns] = slices.Sorted(maps.Keys(set))
	}
	for _, ns := range slices.Sorted(maps.Keys(desired)) {
		prefixes := desired[ns]
		if cur, ok := a.current[ns]; ok && slices.Equal(cur, prefixes) {
			continue
		}
		if err := a.pub.Publish(state.NamespaceUpsert{Namespace: ns, Prefixes: prefixes}); err != nil {
			return err
		}
		a.current[ns] = prefixes
	}
	for _, ns := range slices.Sorted(maps.Keys(a.current)) {
		if _, ok := desired[ns]; ok {
			continue
		}
		if err := a.pub.Publish(state.NamespaceDelete{Namespace: ns}); err != nil {
			return err
		}
		delete(a.current, ns)
	}
	return nil
}

// Namespaces returns the namespaces currently published, sorted
func (a *Aggregator) Namespaces() []string {
	return slices.Sorted(maps.Keys(a.current))
}
