package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	JobsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vgetd",
			Name:      "jobs_started_total",
			Help:      "Count of download jobs accepted and spawned.",
		},
	)

	SnapshotsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vgetd",
			Name:      "snapshots_published_total",
			Help:      "Progress snapshots written to the store, by status.",
		},
		[]string{"status"},
	)

	EngineErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vgetd",
			Name:      "engine_errors_total",
			Help:      "Errors returned by engine invocations.",
		},
	)

	EngineLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vgetd",
			Name:      "engine_latency_seconds",
			Help:      "Latency of engine invocations.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 8),
		},
		[]string{"op"},
	)

	ActiveJobs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vgetd",
			Name:      "active_jobs",
			Help:      "Number of download tasks currently running.",
		},
	)

	StreamSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vgetd",
			Name:      "stream_subscribers",
			Help:      "Open progress stream subscriptions (SSE and websocket).",
		},
	)
)

// Register registers the vgetd metrics into the default registry.
func Register() {
	prometheus.MustRegister(JobsStarted, SnapshotsPublished, EngineErrors, EngineLatency, ActiveJobs, StreamSubscribers)
}
