// Package metrics exposes the engine's operational counters via
// prometheus/client_golang: ingest throughput and batch sizing (spec
// §4.5), query latency (spec §4.4), and bitmap operation counts (spec
// §4.2) — the observability surface spec.md's Non-goals exclude as a
// feature (no HTTP debug broker) but which the ambient stack still
// carries, the same way the teacher instruments its own hot paths with
// prometheus/client_golang counters and histograms regardless of
// whether a given build exposes them over HTTP.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// IngestedEvents counts events successfully stamped and shipped by
	// an importer.
	IngestedEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vast",
		Subsystem: "ingest",
		Name:      "events_total",
		Help:      "Total number of events stamped and shipped to the archive and index pools.",
	})

	// BatchSize observes the importer's adaptive batch_size at each
	// replenish (spec §4.5 point 5).
	BatchSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "vast",
		Subsystem: "ingest",
		Name:      "batch_size",
		Help:      "Current adaptive batch size used by the importer's replenish protocol.",
	})

	// QueryLatency observes end-to-end predicate evaluation time.
	QueryLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "vast",
		Subsystem: "query",
		Name:      "latency_seconds",
		Help:      "Latency of query execution from leaf dispatch to result bitmap.",
		Buckets:   prometheus.DefBuckets,
	})

	// BitmapOps counts bitmap combination operations performed during
	// query execution, labeled by combinator.
	BitmapOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vast",
		Subsystem: "bitmap",
		Name:      "ops_total",
		Help:      "Bitmap combination operations performed, by combinator.",
	}, []string{"op"})
)

// Registry is the engine's private prometheus registry, kept apart from
// prometheus.DefaultRegisterer. Nothing in this module exports it;
// cmd/vastd does not register or serve it.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(IngestedEvents, BatchSize, QueryLatency, BitmapOps)
}
