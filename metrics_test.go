package duckdb

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	var m dto.Metric
	require.NoError(t, h.Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.rowAppended("people")
	m.rowAppended("people")
	m.rowRejected("people")
	m.flushed("people")
	m.chunkDecoded(2048)
	m.chunkDecoded(10)
	m.queryDone(time.Now())
	m.pendingTask()
	m.ObserveProfile(ProfilingInfo{Metrics: map[string]string{"LATENCY": "0.25"}})
	m.ObserveProfile(ProfilingInfo{Metrics: map[string]string{}})

	require.Equal(t, 2.0, counterValue(t, m.rowsAppendedVec.WithLabelValues("people")))
	require.Equal(t, 1.0, counterValue(t, m.rowsRejectedVec.WithLabelValues("people")))
	require.Equal(t, 1.0, counterValue(t, m.flushesVec.WithLabelValues("people")))
	require.Equal(t, 2.0, counterValue(t, m.chunksDecoded))
	require.Equal(t, 2058.0, counterValue(t, m.rowsDecoded))
	require.Equal(t, 1.0, counterValue(t, m.pendingTasks))
	require.Equal(t, uint64(1), histogramCount(t, m.querySeconds))
	require.Equal(t, uint64(1), histogramCount(t, m.profiledLatency))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["duckdb_rows_appended_total"])
	require.True(t, names["duckdb_query_seconds"])
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.rowAppended("t")
		m.rowRejected("t")
		m.flushed("t")
		m.chunkDecoded(1)
		m.queryDone(time.Now())
		m.pendingTask()
		m.ObserveProfile(ProfilingInfo{})
	})
}

func TestProfilingLatency(t *testing.T) {
	d, ok := ProfilingInfo{Metrics: map[string]string{"LATENCY": "1.5"}}.Latency()
	require.True(t, ok)
	require.Equal(t, 1500*time.Millisecond, d)

	_, ok = ProfilingInfo{Metrics: map[string]string{"LATENCY": "n/a"}}.Latency()
	require.False(t, ok)
	_, ok = ProfilingInfo{}.Latency()
	require.False(t, ok)
}
