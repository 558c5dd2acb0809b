package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/encodeous/vpnv4/perf"
	"github.com/encodeous/vpnv4/state"
	"github.com/jellydator/ttlcache/v3"
)

type scheduled struct {
	feed     Feed
	interval time.Duration
}

// Runner polls every feed on its own goroutine, immediately and then once per interval
type Runner struct {
	log   *slog.Logger
	feeds []scheduled
	// last error reported per feed, identical errors are not logged again until they expire
	errs *ttlcache.Cache[string, string]
	wg   sync.WaitGroup
}

func NewRunner(log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		log: log,
		errs: ttlcache.New[string, string](
			ttlcache.WithTTL[string, string](state.PollErrorTTL),
			ttlcache.WithDisableTouchOnHit[string, string](),
		),
	}
}

// Add registers f, it must be called before Start
func (r *Runner) Add(f Feed, interval time.Duration) {
	if interval <= 0 {
		interval = state.DefaultPollInterval
	}
	r.feeds = append(r.feeds, scheduled{feed: f, interval: interval})
}

func (r *Runner) Len() int {
	return len(r.feeds)
}

// Start launches the feeds. They stop once ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	for _, sf := range r.feeds {
		r.wg.Add(1)
		go r.run(ctx, sf)
	}
}

// Wait blocks until every feed goroutine has returned. An in-flight poll is allowed to finish.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, sf scheduled) {
	defer r.wg.Done()
	ticker := time.NewTicker(sf.interval)
	defer ticker.Stop()
	r.log.Info("started feed", "feed", sf.feed.Name(), "interval", sf.interval)
	for {
		r.poll(ctx, sf.feed)
		select {
		case <-ctx.Done():
			r.log.Debug("stopped feed", "feed", sf.feed.Name())
			return
		case <-ticker.C:
		}
	}
}

func (r *Runner) poll(ctx context.Context, f Feed) {
	start := time.Now()
	err := f.Poll(ctx)
	perf.PollLatency.Add(float64(time.Since(start).Milliseconds()))
	name := f.Name()
	if err == nil {
		r.errs.Delete(name)
		return
	}
	if ctx.Err() != nil {
		return
	}
	perf.PollErrors.Add(1)
	msg := err.Error()
	if prev := r.errs.Get(name); prev != nil && prev.Value() == msg {
		r.log.Debug("feed poll failed", "feed", name, "error", err)
		return
	}
	r.errs.Set(name, msg, ttlcache.DefaultTTL)
	r.log.Warn("feed poll failed", "feed", name, "error", err)
}
