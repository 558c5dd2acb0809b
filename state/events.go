package state

// NamespaceEvent is published by change feeds. It is either a NamespaceUpsert or a NamespaceDelete.
type NamespaceEvent interface {
	namespaceEvent()
	GetNamespace() string
}

// NamespaceUpsert carries the full desired prefix list of a namespace
type NamespaceUpsert struct {
	Namespace string
	Prefixes  []string
}

// NamespaceDelete signals that a namespace should be removed entirely
type NamespaceDelete struct {
	Namespace string
}

func (NamespaceUpsert) namespaceEvent() {}
func (NamespaceDelete) namespaceEvent() {}

func (e NamespaceUpsert) GetNamespace() string {
	return e.Namespace
}

func (e NamespaceDelete) GetNamespace() string {
	return e.Namespace
}
