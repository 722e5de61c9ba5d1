package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JobMetrics captures batch-job health signals for the storage-fee scheduler.
type JobMetrics struct {
	jobRuns        *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec
	jobErrors      *prometheus.CounterVec
	chargesCreated *prometheus.CounterVec
	chargesSkipped *prometheus.CounterVec
	packageErrors  *prometheus.CounterVec
}

var (
	jobMetricsOnce sync.Once
	jobMetrics     *JobMetrics
)

// Jobs returns the singleton job metrics registry.
func Jobs() *JobMetrics {
	jobMetricsOnce.Do(func() {
		jobMetrics = newJobMetrics(prometheus.DefaultRegisterer)
	})
	return jobMetrics
}

// ResetJobMetricsForTest swaps the singleton for fresh collectors on a
// throwaway registry, so tests start from zeroed counters without
// re-registering the metric names on the default registerer.
func ResetJobMetricsForTest() {
	jobMetricsOnce.Do(func() {})
	jobMetrics = newJobMetrics(prometheus.NewRegistry())
}

func newJobMetrics(registerer prometheus.Registerer) *JobMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &JobMetrics{
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postbox_job_runs_total",
			Help: "Scheduler job runs by job name.",
		}, []string{"job"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "postbox_job_duration_seconds",
			Help:    "Scheduler job duration by job name.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"job"}),
		jobErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postbox_job_errors_total",
			Help: "Scheduler job fatal errors by job name.",
		}, []string{"job"}),
		chargesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postbox_storage_charges_created_total",
			Help: "Storage charge events created by tenant.",
		}, []string{"tenant"}),
		chargesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postbox_storage_charges_skipped_total",
			Help: "Storage charges skipped because one already existed for the day.",
		}, []string{"tenant"}),
		packageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postbox_storage_charge_package_errors_total",
			Help: "Per-package failures recorded during charge generation.",
		}, []string{"tenant"}),
	}

	registerer.MustRegister(
		m.jobRuns,
		m.jobDuration,
		m.jobErrors,
		m.chargesCreated,
		m.chargesSkipped,
		m.packageErrors,
	)
	return m
}

func (m *JobMetrics) IncJobRun(job string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *JobMetrics) ObserveJobDuration(job string, d time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (m *JobMetrics) IncJobError(job string) {
	if m == nil {
		return
	}
	m.jobErrors.WithLabelValues(job).Inc()
}

func (m *JobMetrics) AddChargesCreated(tenant string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.chargesCreated.WithLabelValues(tenant).Add(float64(n))
}

func (m *JobMetrics) AddChargesSkipped(tenant string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.chargesSkipped.WithLabelValues(tenant).Add(float64(n))
}

func (m *JobMetrics) AddPackageErrors(tenant string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.packageErrors.WithLabelValues(tenant).Add(float64(n))
}
