package state

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

type Module interface {
	Init(s *State) error
	Cleanup(s *State) error
}

// State access must be done only on the main loop Goroutine
type State struct {
	*Env
	Modules map[string]Module
}

// Env can be read from any Goroutine
type Env struct {
	DispatchChannel chan func(s *State) error
	AgentCfg
	Context    context.Context
	Cancel     context.CancelCauseFunc
	Log        *slog.Logger
	ConfigPath string
	// Workers tracks background goroutines that must finish before the agent exits
	Workers  sync.WaitGroup
	Started  atomic.Bool
	Stopping atomic.Bool
}
