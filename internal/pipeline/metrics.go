package pipeline

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "klauzula"
	metricsSubsystem = "workflow"
)

// Metrics exposes Prometheus collectors that report workflow activity.
type Metrics struct {
	runs          *prometheus.CounterVec
	runsActive    prometheus.Gauge
	stageDuration *prometheus.HistogramVec
	stageFailures *prometheus.CounterVec
	pollTicks     *prometheus.CounterVec
	uploadBytes   prometheus.Counter
}

// MustNewMetrics constructs a Metrics instance using the provided registerer.
// Collectors already registered with the same descriptor are reused, so several
// coordinators can share one registry; any other registration error panics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	runs := register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "runs_total",
			Help:      "Total number of workflow runs by outcome.",
		},
		[]string{"outcome"},
	))
	runsActive := register(reg, prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "runs_active",
			Help:      "Number of workflow runs currently in flight.",
		},
	))
	stageDuration := register(reg, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "stage_duration_seconds",
			Help:      "Duration spent in each workflow stage.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage", "status"},
	))
	stageFailures := register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "stage_failures_total",
			Help:      "Total number of runs that failed, by stage and error kind.",
		},
		[]string{"stage", "kind"},
	))
	pollTicks := register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "poll_ticks_total",
			Help:      "Job status responses received while polling, by job status.",
		},
		[]string{"status"},
	))
	uploadBytes := register(reg, prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "upload_bytes_total",
			Help:      "Document bytes accepted by the analysis service.",
		},
	))

	return &Metrics{
		runs:          runs,
		runsActive:    runsActive,
		stageDuration: stageDuration,
		stageFailures: stageFailures,
		pollTicks:     pollTicks,
		uploadBytes:   uploadBytes,
	}
}

func register[T prometheus.Collector](reg prometheus.Registerer, collector T) T {
	if err := reg.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return collector
}

// IncRun counts a finished run with its terminal stage as outcome.
func (m *Metrics) IncRun(outcome string) {
	if m == nil || m.runs == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
}

// IncActiveRuns marks a run as in flight.
func (m *Metrics) IncActiveRuns() {
	if m == nil || m.runsActive == nil {
		return
	}
	m.runsActive.Inc()
}

// DecActiveRuns marks a run as finished.
func (m *Metrics) DecActiveRuns() {
	if m == nil || m.runsActive == nil {
		return
	}
	m.runsActive.Dec()
}

// ObserveStageDuration records the time spent in a stage with the provided status label.
func (m *Metrics) ObserveStageDuration(stage string, status string, duration time.Duration) {
	if m == nil || m.stageDuration == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage, status).Observe(duration.Seconds())
}

// IncStageFailure increments the failure counter for the given stage and error kind.
func (m *Metrics) IncStageFailure(stage string, kind string) {
	if m == nil || m.stageFailures == nil {
		return
	}
	m.stageFailures.WithLabelValues(stage, kind).Inc()
}

// IncPollTick counts one job status response.
func (m *Metrics) IncPollTick(status string) {
	if m == nil || m.pollTicks == nil {
		return
	}
	m.pollTicks.WithLabelValues(status).Inc()
}

// AddUploadBytes adds the size of an accepted upload.
func (m *Metrics) AddUploadBytes(n int64) {
	if m == nil || m.uploadBytes == nil || n <= 0 {
		return
	}
	m.uploadBytes.Add(float64(n))
}

// WriteTextfile writes everything gathered by g to path in the text exposition format,
// for pickup by the node_exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return prometheus.WriteToTextfile(path, g)
}
