package core

import (
	"github.com/encodeous/vpnv4/state"
	"github.com/encodeous/vpnv4/sys"
)

// VPNv4 owns the driver and the registry that namespace events are delivered to
type VPNv4 struct {
	Driver   *Driver
	Registry *Registry
	IPs      *IPAdapter
	// Plumber provisions kernel VRFs when provision_vrfs is set, defaults to netlink
	Plumber VrfPlumber
}

func (v *VPNv4) Init(s *state.State) error {
	cfg := s.AgentCfg.Driver
	log := s.Log.With("module", "vpnv4")

	v.Driver = NewDriver(cfg, log)
	v.Registry = NewRegistry()
	v.IPs = NewIPAdapter(v.Driver)

	err := v.Registry.Register("vpnv4", NewDriverAdapter(v.Driver, cfg.KeepEmptyVrf()))
	if err != nil {
		return err
	}
	if cfg.ProvisionVrfs {
		if v.Plumber == nil {
			v.Plumber = sys.NewNetlink(log)
		}
		err = v.Registry.Register("vrf", NewVrfProvisioner(v.Driver, v.Plumber, cfg.TableBase, cfg.KeepEmptyVrf(), log))
		if err != nil {
			return err
		}
	}

	res, err := v.Driver.Render()
	if err != nil {
		return err
	}
	s.Log.Info("rendered initial config", "path", res.OutputPath, "drivers", v.Registry.Names())

	if period := cfg.SyncPeriod(); period > 0 {
		s.RepeatTask(periodicSync, period)
	}
	return nil
}

func periodicSync(s *state.State) error {
	_, err := Get[*VPNv4](s).Driver.Sync()
	if err != nil {
		s.Log.Error("periodic sync failed", "error", err)
	}
	return nil
}

func (v *VPNv4) Cleanup(s *state.State) error {
	return nil
}
