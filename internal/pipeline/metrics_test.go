package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordsValues(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := MustNewMetrics(registry)

	metrics.IncActiveRuns()
	metrics.IncRun("complete")
	metrics.IncRun("failed")
	metrics.IncRun("failed")
	metrics.ObserveStageDuration("uploading", "success", 250*time.Millisecond)
	metrics.IncStageFailure("polling", "timeout")
	metrics.IncPollTick("processing")
	metrics.AddUploadBytes(1024)
	metrics.AddUploadBytes(-5)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues("complete")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.runs.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.stageFailures.WithLabelValues("polling", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.pollTicks.WithLabelValues("processing")))
	assert.Equal(t, 1024.0, testutil.ToFloat64(metrics.uploadBytes))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.stageDuration))

	metrics.DecActiveRuns()
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.runsActive))
}

func TestMetrics_ReusesRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := MustNewMetrics(registry)
	second := MustNewMetrics(registry)

	first.IncRun("complete")
	second.IncRun("complete")

	assert.Same(t, first.runs, second.runs)
	assert.Equal(t, 2.0, testutil.ToFloat64(first.runs.WithLabelValues("complete")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var metrics *Metrics
	assert.NotPanics(t, func() {
		metrics.IncRun("complete")
		metrics.IncActiveRuns()
		metrics.DecActiveRuns()
		metrics.ObserveStageDuration("polling", "error", time.Second)
		metrics.IncStageFailure("polling", "timeout")
		metrics.IncPollTick("queued")
		metrics.AddUploadBytes(10)
	})
}

func TestWriteTextfile(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := MustNewMetrics(registry)
	metrics.IncRun("complete")

	path := filepath.Join(t.TempDir(), "klauzula.prom")
	require.NoError(t, WriteTextfile(path, registry))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `klauzula_workflow_runs_total{outcome="complete"} 1`)
}
