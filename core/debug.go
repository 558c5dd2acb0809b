package core

import (
	"context"
	"errors"
	_ "expvar"
	"net/http"
	"time"

	"github.com/encodeous/vpnv4/state"
)

// DebugServer exposes /debug/vars and /debug/metrics when metrics_addr is set
type DebugServer struct {
	server *http.Server
	done   chan struct{}
}

func (d *DebugServer) Init(s *state.State) error {
	addr := s.AgentCfg.Driver.MetricsAddr
	if addr == "" {
		return nil
	}
	// expvar and perf register their handlers on the default mux
	d.server = &http.Server{
		Addr:              addr,
		Handler:           http.DefaultServeMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	d.done = make(chan struct{})
	go func() {
		defer close(d.done)
		s.Log.Info("serving metrics", "addr", addr)
		if err := d.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Log.Error("metrics listener failed", "error", err)
		}
	}()
	return nil
}

func (d *DebugServer) Cleanup(s *state.State) error {
	if d.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := d.server.Shutdown(ctx)
	<-d.done
	return err
}
