package duckdb

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors updated by appenders, result sets and
// pending results. A nil *Metrics records nothing.
type Metrics struct {
	rowsAppendedVec *prometheus.CounterVec
	flushesVec      *prometheus.CounterVec
	rowsRejectedVec *prometheus.CounterVec
	chunksDecoded   prometheus.Counter
	rowsDecoded     prometheus.Counter
	querySeconds    prometheus.Histogram
	pendingTasks    prometheus.Counter
	profiledLatency prometheus.Histogram
}

// NewMetrics registers the collectors with reg. A nil reg uses the default
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		rowsAppendedVec: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "duckdb_rows_appended_total",
			Help: "counter for number of rows appended, segmented by table",
		}, []string{"table"}),
		flushesVec: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "duckdb_appender_flushes_total",
			Help: "counter for number of appender flushes, segmented by table",
		}, []string{"table"}),
		rowsRejectedVec: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "duckdb_rows_rejected_total",
			Help: "counter for number of rows discarded by EndRow, segmented by table",
		}, []string{"table"}),
		chunksDecoded: factory.NewCounter(prometheus.CounterOpts{
			Name: "duckdb_chunks_decoded_total",
			Help: "counter for number of result chunks pulled",
		}),
		rowsDecoded: factory.NewCounter(prometheus.CounterOpts{
			Name: "duckdb_rows_decoded_total",
			Help: "counter for number of result rows pulled",
		}),
		querySeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "duckdb_query_seconds",
			Help: "histogram measuring time to execute queries in seconds",
		}),
		pendingTasks: factory.NewCounter(prometheus.CounterOpts{
			Name: "duckdb_pending_tasks_total",
			Help: "counter for number of pending result tasks executed",
		}),
		profiledLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "duckdb_profiled_latency_seconds",
			Help: "histogram measuring the LATENCY reported by query profiling",
		}),
	}
}

func (m *Metrics) rowAppended(table string) {
	if m != nil {
		m.rowsAppendedVec.WithLabelValues(table).Inc()
	}
}

func (m *Metrics) rowRejected(table string) {
	if m != nil {
		m.rowsRejectedVec.WithLabelValues(table).Inc()
	}
}

func (m *Metrics) flushed(table string) {
	if m != nil {
		m.flushesVec.WithLabelValues(table).Inc()
	}
}

func (m *Metrics) chunkDecoded(rows uint64) {
	if m != nil {
		m.chunksDecoded.Inc()
		m.rowsDecoded.Add(float64(rows))
	}
}

func (m *Metrics) queryDone(start time.Time) {
	if m != nil {
		m.querySeconds.Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) pendingTask() {
	if m != nil {
		m.pendingTasks.Inc()
	}
}

// ObserveProfile records the latency of a profiled query.
func (m *Metrics) ObserveProfile(info ProfilingInfo) {
	if m == nil {
		return
	}
	if latency, ok := info.Latency(); ok {
		m.profiledLatency.Observe(latency.Seconds())
	}
}
