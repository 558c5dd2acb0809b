package feed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/encodeous/vpnv4/state"
)

// Publisher receives the namespace events computed by a feed
type Publisher interface {
	Publish(e state.NamespaceEvent) error
}

// PublisherFunc adapts a function to a Publisher
type PublisherFunc func(e state.NamespaceEvent) error

func (f PublisherFunc) Publish(e state.NamespaceEvent) error {
	return f(e)
}

// Feed polls a source of namespace prefixes. Each Poll diffs the source against the
// last successfully published snapshot and publishes only the difference.
type Feed interface {
	Name() string
	Poll(ctx context.Context) error
}

// New builds the feed described by cfg
func New(cfg state.FeedCfg, pub Publisher, log *slog.Logger) (Feed, error) {
	switch cfg.Type {
	case "file":
		return NewFileFeed(cfg.Path, pub, log), nil
	case "ports":
		return NewDirectoryFeed(fmt.Sprintf("ports:%s", cfg.Path), NewPortFileSource(cfg.Path), pub, log), nil
	}
	return nil, fmt.Errorf("unsupported watcher type '%s'", cfg.Type)
}
