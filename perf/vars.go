package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	DispatchLatency = metric.NewHistogram("1m1s")
	RenderLatency   = metric.NewHistogram("1m1s")
	PollLatency     = metric.NewHistogram("1m1s")
	Renders         = metric.NewCounter("10m10s")
	SkippedSyncs    = metric.NewCounter("10m10s")
	FeedEvents      = metric.NewCounter("10m10s")
	PollErrors      = metric.NewCounter("10m10s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("vpnv4:DispatchLatency (µs)", DispatchLatency)
	expvar.Publish("vpnv4:RenderLatency (µs)", RenderLatency)
	expvar.Publish("vpnv4:PollLatency (ms)", PollLatency)
	expvar.Publish("vpnv4:Renders", Renders)
	expvar.Publish("vpnv4:SkippedSyncs", SkippedSyncs)
	expvar.Publish("vpnv4:FeedEvents", FeedEvents)
	expvar.Publish("vpnv4:PollErrors", PollErrors)
}
