// Package observability exposes the run engine's Prometheus metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Run Metrics ────────────────────────────────────────────────────────────

// RunsTotal counts completed engine runs by outcome.
var RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "loomsched",
	Subsystem: "run",
	Name:      "total",
	Help:      "Total engine runs by outcome.",
}, []string{"outcome"})

// RunDuration tracks wall-clock seconds for a complete engine run.
var RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "loomsched",
	Subsystem: "run",
	Name:      "duration_seconds",
	Help:      "Wall-clock duration of a complete engine run.",
	Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
})

// RunMakespanHours tracks the best individual's makespan for the most
// recent run.
var RunMakespanHours = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "loomsched",
	Subsystem: "run",
	Name:      "makespan_hours",
	Help:      "Makespan in hours of the best schedule from the most recent run.",
})

// RunWorkItems tracks the work-item count ingested by the most recent run.
var RunWorkItems = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "loomsched",
	Subsystem: "run",
	Name:      "work_items",
	Help:      "Number of work items scheduled by the most recent run.",
})

// ─── Generation Metrics ─────────────────────────────────────────────────────

// GenerationDuration tracks wall-clock seconds for a single GA generation.
var GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "loomsched",
	Subsystem: "generation",
	Name:      "duration_seconds",
	Help:      "Wall-clock duration of a single evolutionary-search generation.",
	Buckets:   prometheus.DefBuckets,
})

// GenerationBestAggregate tracks the best aggregate fitness seen so far
// within the current run.
var GenerationBestAggregate = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "loomsched",
	Subsystem: "generation",
	Name:      "best_aggregate",
	Help:      "Best aggregate fitness observed so far in the current run.",
})

// ─── Setup-Change Metrics ───────────────────────────────────────────────────

// SetupChangesTotal counts setup changes incurred by the analyzer, by kind.
var SetupChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "loomsched",
	Subsystem: "setup",
	Name:      "changes_total",
	Help:      "Total setup changes incurred, by kind (variant, ulak, team).",
}, []string{"kind"})

// ─── Ingest Metrics ─────────────────────────────────────────────────────────

// OrdersFilteredTotal counts raw orders dropped by the ingest recency filter.
var OrdersFilteredTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "loomsched",
	Subsystem: "ingest",
	Name:      "orders_filtered_total",
	Help:      "Total raw orders dropped by the two-month recency filter.",
})

// OrdersSplitTotal counts orders the splitter divided into multiple work items.
var OrdersSplitTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "loomsched",
	Subsystem: "ingest",
	Name:      "orders_split_total",
	Help:      "Total raw orders split into more than one work item.",
})
