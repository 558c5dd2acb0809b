//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	FrrImage    = "quay.io/frrouting/frr:9.1.0"
	WaitTimeout = 2 * time.Minute
	// daemons enables bgpd so that VPNv4 configuration can be loaded
	daemons = `bgpd=yes
zebra=yes
staticd=yes
vtysh_enable=yes
zebra_options="  -A 127.0.0.1 -s 90000000"
bgpd_options="   -A 127.0.0.1"
staticd_options="-A 127.0.0.1"
`
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func StripAnsi(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

type logConsumer struct {
	t *testing.T
}

func (l logConsumer) Accept(log testcontainers.Log) {
	l.t.Logf("[frr] %s", strings.TrimRight(string(log.Content), "\n"))
}

// Harness runs an FRR router that rendered configuration is loaded into
type Harness struct {
	t   *testing.T
	ctx context.Context
	Frr testcontainers.Container
}

func NewHarness(t *testing.T) *Harness {
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image: FrrImage,
		Files: []testcontainers.ContainerFile{
			{
				Reader:            strings.NewReader(daemons),
				ContainerFilePath: "/etc/frr/daemons",
				FileMode:          0644,
			},
		},
		WaitingFor: wait.ForExec([]string{"vtysh", "-c", "show bgp summary"}).
			WithStartupTimeout(WaitTimeout),
		HostConfigModifier: func(hostConfig *container.HostConfig) {
			hostConfig.Privileged = true
			hostConfig.CapAdd = []string{"NET_ADMIN", "SYS_ADMIN"}
		},
		LogConsumerCfg: &testcontainers.LogConsumerConfig{
			Consumers: []testcontainers.LogConsumer{logConsumer{t}},
		},
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start frr: %v", err)
	}
	h := &Harness{t: t, ctx: ctx, Frr: c}
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate frr: %v", err)
		}
	})
	return h
}

// Exec runs cmd in the FRR container and returns its demultiplexed stdout and stderr
func (h *Harness) Exec(cmd ...string) (string, string, error) {
	code, r, err := h.Frr.Exec(h.ctx, cmd)
	if err != nil {
		return "", "", err
	}
	stdoutBuf := new(bytes.Buffer)
	stderrBuf := new(bytes.Buffer)
	_, err = stdcopy.StdCopy(stdoutBuf, stderrBuf, r)
	if err != nil {
		return "", "", fmt.Errorf("failed to copy output: %w", err)
	}
	stdout := StripAnsi(stdoutBuf.String())
	stderr := StripAnsi(stderrBuf.String())
	if code != 0 {
		return stdout, stderr, fmt.Errorf("command exited with code %d: %s\nStderr: %s", code, stdout, stderr)
	}
	return stdout, stderr, nil
}

// Load copies a config file into the container and applies it with vtysh
func (h *Harness) Load(hostPath string) {
	const target = "/etc/frr/vpnv4.conf"
	if err := h.Frr.CopyFileToContainer(h.ctx, hostPath, target, 0644); err != nil {
		h.t.Fatalf("failed to copy %s: %v", hostPath, err)
	}
	if _, _, err := h.Exec("vtysh", "-C", "-f", target); err != nil {
		h.t.Fatalf("config failed the dry run: %v", err)
	}
	if _, _, err := h.Exec("vtysh", "-f", target); err != nil {
		h.t.Fatalf("failed to apply config: %v", err)
	}
}

func (h *Harness) RunningConfig() string {
	out, _, err := h.Exec("vtysh", "-c", "show running-config")
	if err != nil {
		h.t.Fatal(err)
	}
	return out
}
