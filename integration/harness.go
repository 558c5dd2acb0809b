//go:build integration

package integration

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/encodeous/vpnv4/core"
	"github.com/encodeous/vpnv4/mock"
	"github.com/encodeous/vpnv4/state"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/require"
)

const WaitTimeout = 10 * time.Second

// AgentHarness runs one agent in-process against a temporary directory
type AgentHarness struct {
	t       *testing.T
	Dir     string
	Cfg     state.AgentCfg
	Tenants string
	Ports   string
	Cancel  context.CancelFunc
	done    chan error
}

func NewAgentHarness(t *testing.T) *AgentHarness {
	// unix socket paths are limited in length, t.TempDir() can be too deep
	dir, err := os.MkdirTemp("", "vpnv4-it")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = os.RemoveAll(dir)
	})

	h := &AgentHarness{
		t:       t,
		Dir:     dir,
		Tenants: filepath.Join(dir, "tenants.yaml"),
		Ports:   filepath.Join(dir, "ports.yaml"),
	}
	h.Cfg = mock.MockCfg(filepath.Join(dir, "frr"))
	h.Cfg.Driver.ControlSocket = filepath.Join(dir, "ctl.sock")
	h.Cfg.Driver.IncludeGlobals = true
	h.Cfg.Watchers = []state.FeedCfg{
		{Type: "file", Path: h.Tenants, Interval: 0.02},
		{Type: "ports", Path: h.Ports, Interval: 0.02},
	}
	return h
}

// WriteConfig writes the harness config to disk so that it can be loaded like a real agent would
func (h *AgentHarness) WriteConfig() string {
	path := filepath.Join(h.Dir, "vpnv4.yaml")
	data, err := yaml.Marshal(h.Cfg)
	require.NoError(h.t, err)
	require.NoError(h.t, os.WriteFile(path, data, 0644))
	return path
}

func (h *AgentHarness) WriteTenants(doc string) {
	require.NoError(h.t, os.WriteFile(h.Tenants, []byte(doc), 0644))
}

func (h *AgentHarness) WritePorts(doc string) {
	require.NoError(h.t, os.WriteFile(h.Ports, []byte(doc), 0644))
}

func (h *AgentHarness) Start() {
	cfg, err := state.LoadAgentConfig(h.WriteConfig())
	require.NoError(h.t, err)

	ctx, cancel := context.WithCancel(context.Background())
	h.Cancel = cancel
	h.done = make(chan error, 1)
	go func() {
		h.done <- core.Start(ctx, cfg, slog.LevelDebug, "", nil)
	}()
	require.Eventually(h.t, func() bool {
		_, err := core.IPCCommand(h.Cfg.Driver.ControlSocket, "inspect")
		return err == nil
	}, WaitTimeout, 10*time.Millisecond, "agent did not start")
}

func (h *AgentHarness) Stop() {
	h.Cancel()
	select {
	case err := <-h.done:
		require.NoError(h.t, err)
	case <-time.After(WaitTimeout):
		h.t.Fatal("agent did not stop")
	}
}

func (h *AgentHarness) Ctl(command string) string {
	res, err := core.IPCCommand(h.Cfg.Driver.ControlSocket, command)
	require.NoError(h.t, err)
	return res
}

func (h *AgentHarness) Rendered() string {
	data, err := os.ReadFile(filepath.Join(h.Cfg.Driver.OutputDir, state.RenderFileName))
	if err != nil {
		return ""
	}
	return string(data)
}

// WaitRendered waits until the rendered file satisfies cond
func (h *AgentHarness) WaitRendered(cond func(text string) bool, msg string) {
	require.Eventually(h.t, func() bool {
		return cond(h.Rendered())
	}, WaitTimeout, 10*time.Millisecond, msg)
}
