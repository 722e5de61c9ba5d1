package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestJobMetricsCounters(t *testing.T) {
	m := newJobMetrics(prometheus.NewRegistry())

	m.IncJobRun("storage_fees")
	m.IncJobRun("storage_fees")
	m.ObserveJobDuration("storage_fees", 250*time.Millisecond)
	m.IncJobError("storage_fees")
	m.AddChargesCreated("tenant-a", 3)
	m.AddChargesSkipped("tenant-a", 2)
	m.AddPackageErrors("tenant-a", 0)

	if got := testutil.ToFloat64(m.jobRuns.WithLabelValues("storage_fees")); got != 2 {
		t.Fatalf("expected 2 job runs, got %v", got)
	}
	if got := testutil.ToFloat64(m.jobErrors.WithLabelValues("storage_fees")); got != 1 {
		t.Fatalf("expected 1 job error, got %v", got)
	}
	if got := testutil.ToFloat64(m.chargesCreated.WithLabelValues("tenant-a")); got != 3 {
		t.Fatalf("expected 3 charges created, got %v", got)
	}
	if got := testutil.ToFloat64(m.chargesSkipped.WithLabelValues("tenant-a")); got != 2 {
		t.Fatalf("expected 2 charges skipped, got %v", got)
	}
	if got := testutil.ToFloat64(m.packageErrors.WithLabelValues("tenant-a")); got != 0 {
		t.Fatalf("expected zero package errors, got %v", got)
	}
}

func TestResetJobMetricsForTest(t *testing.T) {
	// Repeated reset/Jobs cycles must not collide on metric names and must
	// hand back zeroed counters each time.
	for i := 0; i < 3; i++ {
		ResetJobMetricsForTest()
		m := Jobs()
		if got := testutil.ToFloat64(m.jobRuns.WithLabelValues("storage_fees")); got != 0 {
			t.Fatalf("cycle %d: expected zeroed counter, got %v", i, got)
		}
		m.IncJobRun("storage_fees")
		if got := testutil.ToFloat64(m.jobRuns.WithLabelValues("storage_fees")); got != 1 {
			t.Fatalf("cycle %d: expected 1 job run, got %v", i, got)
		}
	}
}
