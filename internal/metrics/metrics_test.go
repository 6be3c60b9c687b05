package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersAndGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(JobsStarted, SnapshotsPublished, EngineErrors, EngineLatency, ActiveJobs, StreamSubscribers)

	JobsStarted.Inc()
	SnapshotsPublished.WithLabelValues("downloading").Add(2)
	ActiveJobs.Set(3)
	StreamSubscribers.Inc()

	// Histogram: observe one sample to ensure the collector is live.
	EngineLatency.WithLabelValues("download").Observe(0.5)

	expectedJobs := `# HELP vgetd_jobs_started_total Count of download jobs accepted and spawned.
# TYPE vgetd_jobs_started_total counter
vgetd_jobs_started_total 1
`
	if err := testutil.CollectAndCompare(JobsStarted, strings.NewReader(expectedJobs)); err != nil {
		t.Fatalf("unexpected jobs metric: %v", err)
	}

	expectedSnaps := `# HELP vgetd_snapshots_published_total Progress snapshots written to the store, by status.
# TYPE vgetd_snapshots_published_total counter
vgetd_snapshots_published_total{status="downloading"} 2
`
	if err := testutil.CollectAndCompare(SnapshotsPublished, strings.NewReader(expectedSnaps)); err != nil {
		t.Fatalf("unexpected snapshots metric: %v", err)
	}

	expectedGauge := `# HELP vgetd_active_jobs Number of download tasks currently running.
# TYPE vgetd_active_jobs gauge
vgetd_active_jobs 3
`
	if err := testutil.CollectAndCompare(ActiveJobs, strings.NewReader(expectedGauge)); err != nil {
		t.Fatalf("unexpected active jobs gauge: %v", err)
	}
}
