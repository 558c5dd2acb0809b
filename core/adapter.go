package core

// DriverAdapter feeds namespace events into a Driver
type DriverAdapter struct {
	driver *Driver
	// MaintainEmptyVrf keeps the VRF of a namespace rendered after its last prefix is gone
	MaintainEmptyVrf bool
}

func NewDriverAdapter(d *Driver, maintainEmptyVrf bool) *DriverAdapter {
	return &DriverAdapter{
		driver:           d,
		MaintainEmptyVrf: maintainEmptyVrf,
	}
}

func (a *DriverAdapter) OnNamespaceUpsert(ns string, prefixes []string) error {
	if len(prefixes) == 0 && !a.MaintainEmptyVrf {
		_, err := a.driver.WithdrawNamespace(ns)
		return err
	}
	_, _, err := a.driver.SynchronizePrefixes(ns, prefixes)
	return err
}

func (a *DriverAdapter) OnNamespaceDelete(ns string) error {
	_, err := a.driver.WithdrawNamespace(ns)
	return err
}
