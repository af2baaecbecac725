package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Unit outcomes.
const (
	OutcomeGenerated = "generated"
	OutcomeUnchanged = "unchanged"
	OutcomeEmpty     = "empty"
	OutcomeFailed    = "failed"
)

var (
	UnitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genstub_units_total",
		Help: "Total number of source units processed, by outcome.",
	}, []string{"outcome"})

	GenerateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "genstub_generate_seconds",
		Help:    "Time spent generating the stub of one source unit.",
		Buckets: prometheus.DefBuckets,
	})

	UnresolvedTypesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "genstub_unresolved_types_total",
		Help: "Total number of type names that could not be resolved.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "genstub_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
