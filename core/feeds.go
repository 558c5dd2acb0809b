package core

import (
	"github.com/encodeous/vpnv4/feed"
	"github.com/encodeous/vpnv4/perf"
	"github.com/encodeous/vpnv4/state"
)

// FeedManager runs the configured watchers and delivers their events on the main loop
type FeedManager struct {
	runner *feed.Runner
}

// publisher hands events to the registry on the main loop and waits for the outcome
type publisher struct {
	env *state.Env
}

func (p publisher) Publish(e state.NamespaceEvent) error {
	_, err := p.env.DispatchWait(func(s *state.State) (any, error) {
		perf.FeedEvents.Add(1)
		return nil, Get[*VPNv4](s).Registry.Handle(e)
	})
	return err
}

func (m *FeedManager) Init(s *state.State) error {
	log := s.Log.With("module", "feeds")
	m.runner = feed.NewRunner(log)
	for _, w := range s.Watchers {
		f, err := feed.New(w, publisher{s.Env}, log)
		if err != nil {
			return err
		}
		m.runner.Add(f, w.Period())
	}
	if m.runner.Len() == 0 {
		s.Log.Warn("no watchers configured, namespaces can only be changed through the control socket")
	}
	m.runner.Start(s.Context)
	return nil
}

func (m *FeedManager) Cleanup(s *state.State) error {
	if m.runner != nil {
		m.runner.Wait()
	}
	return nil
}
