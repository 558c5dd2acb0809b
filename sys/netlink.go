package sys

import (
	"errors"
	"log/slog"
)

var ErrUnsupported = errors.New("vrf provisioning is only supported on linux")

// Netlink provisions VRF devices and blackhole routes through the kernel netlink API
type Netlink struct {
	Log *slog.Logger
}

func NewNetlink(log *slog.Logger) *Netlink {
	if log == nil {
		log = slog.Default()
	}
	return &Netlink{Log: log}
}
