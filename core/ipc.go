package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"strings"

	"github.com/encodeous/vpnv4/state"
)

const errorReplyPrefix = "error: "

// IPCCommand sends a single command to the control socket and returns the reply
func IPCCommand(socket string, command string) (string, error) {
	conn, err := net.Dial("unix", socket)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))

	_, err = rw.WriteString(strings.TrimSpace(command) + "\n")
	if err != nil {
		return "", err
	}
	err = rw.Flush()
	if err != nil {
		return "", err
	}

	res, err := rw.ReadString(0)
	if err != nil && err != io.EOF {
		return "", err
	}
	res = strings.TrimSuffix(res, "\x00")
	if msg, ok := strings.CutPrefix(res, errorReplyPrefix); ok {
		return "", errors.New(strings.TrimSpace(msg))
	}
	return res, nil
}

// HandleIPC serves one command read from rw
func HandleIPC(e *state.Env, rw *bufio.ReadWriter) error {
	line, err := rw.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return err
	}
	reply, err := RunCommand(e, line)
	if err != nil {
		reply = errorReplyPrefix + err.Error() + "\n"
	}
	_, err = rw.WriteString(reply + "\x00")
	if err != nil {
		return err
	}
	return rw.Flush()
}

// RunCommand executes a control command on the main loop
func RunCommand(e *state.Env, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", errors.New("empty command")
	}
	args := fields[1:]
	var fun func(s *state.State) (any, error)
	switch fields[0] {
	case "inspect":
		fun = func(s *state.State) (any, error) {
			return Inspect(Get[*VPNv4](s)), nil
		}
	case "config":
		fun = func(s *state.State) (any, error) {
			text, ok := Get[*VPNv4](s).Driver.RenderedConfig()
			if !ok {
				return nil, errors.New("nothing has been rendered yet")
			}
			return text, nil
		}
	case "sync":
		fun = func(s *state.State) (any, error) {
			res, err := Get[*VPNv4](s).Driver.Sync()
			if err != nil {
				return nil, err
			}
			return fmt.Sprintf("rendered %s\n", res.OutputPath), nil
		}
	case "expose":
		if len(args) != 2 {
			return "", errors.New("usage: expose <ip|cidr> <namespace>")
		}
		fun = func(s *state.State) (any, error) {
			return "ok\n", exposeTarget(Get[*VPNv4](s).IPs, args[0], args[1])
		}
	case "withdraw":
		if len(args) != 1 && len(args) != 2 {
			return "", errors.New("usage: withdraw <ip|cidr> [namespace]")
		}
		ns := ""
		if len(args) == 2 {
			ns = args[1]
		}
		fun = func(s *state.State) (any, error) {
			return "ok\n", withdrawTarget(Get[*VPNv4](s).IPs, args[0], ns)
		}
	default:
		return "", fmt.Errorf("unknown command %s", fields[0])
	}
	res, err := e.DispatchWait(fun)
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

func exposeTarget(a *IPAdapter, target, ns string) error {
	if strings.Contains(target, "/") {
		prefix, err := netip.ParsePrefix(target)
		if err != nil {
			return fmt.Errorf("%w: %w", state.ErrInvalidPrefix, err)
		}
		return a.ExposeSubnet(prefix, ns)
	}
	addr, err := netip.ParseAddr(target)
	if err != nil {
		return fmt.Errorf("%w: %w", state.ErrInvalidPrefix, err)
	}
	return a.ExposeIP(addr, ns)
}

func withdrawTarget(a *IPAdapter, target, ns string) error {
	if strings.Contains(target, "/") {
		prefix, err := netip.ParsePrefix(target)
		if err != nil {
			return fmt.Errorf("%w: %w", state.ErrInvalidPrefix, err)
		}
		return a.WithdrawSubnet(prefix, ns)
	}
	addr, err := netip.ParseAddr(target)
	if err != nil {
		return fmt.Errorf("%w: %w", state.ErrInvalidPrefix, err)
	}
	return a.WithdrawIP(addr, ns)
}

// Inspect describes the tenants, drivers and last render of v
func Inspect(v *VPNv4) string {
	sb := strings.Builder{}
	sb.WriteString("Tenants:\n")
	tenants := v.Driver.ListTenants()
	if len(tenants) == 0 {
		sb.WriteString(" (none)\n")
	}
	for _, t := range tenants {
		sb.WriteString(fmt.Sprintf(" - %s\n", t.Namespace))
		sb.WriteString(fmt.Sprintf("   Identifier: %d\n", t.VRF.Identifier))
		sb.WriteString(fmt.Sprintf("   RD: %s\n", t.VRF.RD))
		sb.WriteString(fmt.Sprintf("   Route Targets: import %s, export %s\n",
			strings.Join(t.VRF.ImportRTs, " "), strings.Join(t.VRF.ExportRTs, " ")))
		sb.WriteString("   Prefixes:\n")
		if len(t.AdvertisedPrefixes) == 0 {
			sb.WriteString("    (none)\n")
		}
		for _, p := range t.AdvertisedPrefixes {
			sb.WriteString(fmt.Sprintf("    - %s\n", p))
		}
	}

	sb.WriteString("\nDrivers:\n")
	for _, name := range v.Registry.Names() {
		sb.WriteString(fmt.Sprintf(" - %s\n", name))
	}

	sb.WriteString("\nLast Render:\n")
	if res, ok := v.Driver.LastRender(); ok {
		sb.WriteString(fmt.Sprintf(" %s (%d bytes)\n", res.OutputPath, len(res.ConfigText)))
	} else {
		sb.WriteString(" never\n")
	}
	return sb.String()
}
