package core

import (
	"bufio"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/encodeous/vpnv4/state"
)

// ControlServer serves control commands on a unix socket
type ControlServer struct {
	path     string
	listener net.Listener
	conns    sync.WaitGroup
}

func (c *ControlServer) Init(s *state.State) error {
	c.path = s.AgentCfg.Driver.ControlSocket
	if c.path == "" {
		s.Log.Debug("control socket disabled")
		return nil
	}
	err := os.MkdirAll(filepath.Dir(c.path), 0755)
	if err != nil {
		return err
	}
	// a previous run may have left its socket behind
	if err = os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	c.listener, err = net.Listen("unix", c.path)
	if err != nil {
		return err
	}
	if err = os.Chmod(c.path, 0600); err != nil {
		return err
	}
	s.Log.Info("listening for control commands", "socket", c.path)
	go c.accept(s.Env)
	return nil
}

func (c *ControlServer) accept(e *state.Env) {
	for {
		conn, err := c.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || e.Context.Err() != nil {
				return
			}
			e.Log.Warn("control socket accept failed", "error", err)
			continue
		}
		c.conns.Add(1)
		go func() {
			defer c.conns.Done()
			defer conn.Close()
			rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))
			if err := HandleIPC(e, rw); err != nil {
				e.Log.Debug("control command failed", "error", err)
			}
		}()
	}
}

func (c *ControlServer) Cleanup(s *state.State) error {
	if c.listener == nil {
		return nil
	}
	err := c.listener.Close()
	c.conns.Wait()
	_ = os.Remove(c.path)
	return err
}
