package duckdb

import (
	"strconv"
	"time"

	"github.com/columnar-dev/go-duckdb-marshal/internal/mapping"
)

// ProfilingInfo is one node of a profiled query plan. The root node holds
// the metrics of the whole query, its descendants those of single operators.
type ProfilingInfo struct {
	Metrics  map[string]string
	Children []ProfilingInfo
}

var errProfilingInfoEmpty = newError(ErrorKindExecution, "no profiling information available for this connection")

// ProfilingInfo returns the metrics of the last query profiled on the
// connection. Profiling must be enabled, for example with
// PRAGMA enable_profiling = 'no_output'.
func (c *Conn) ProfilingInfo() (ProfilingInfo, error) {
	if err := c.checkOpen(); err != nil {
		return ProfilingInfo{}, err
	}
	native := mapping.GetProfilingInfo(c.conn)
	if native.Ptr == nil {
		return ProfilingInfo{}, errProfilingInfoEmpty
	}

	info := ProfilingInfo{}
	info.getMetrics(native)
	c.metrics.ObserveProfile(info)
	return info, nil
}

func (info *ProfilingInfo) getMetrics(native mapping.ProfilingInfo) {
	m := mapping.ProfilingInfoGetMetrics(native)
	count := uint64(mapping.GetMapSize(m))
	info.Metrics = make(map[string]string, count)

	for i := uint64(0); i < count; i++ {
		key := mapping.GetMapKey(m, mapping.IdxT(i))
		value := mapping.GetMapValue(m, mapping.IdxT(i))
		info.Metrics[mapping.GetVarchar(key)] = mapping.GetVarchar(value)
		mapping.DestroyValue(&key)
		mapping.DestroyValue(&value)
	}
	mapping.DestroyValue(&m)

	childCount := uint64(mapping.ProfilingInfoGetChildCount(native))
	for i := uint64(0); i < childCount; i++ {
		child := ProfilingInfo{}
		child.getMetrics(mapping.ProfilingInfoGetChild(native, mapping.IdxT(i)))
		info.Children = append(info.Children, child)
	}
}

// Latency returns the LATENCY metric of the node, reported in seconds.
func (info ProfilingInfo) Latency() (time.Duration, bool) {
	raw, ok := info.Metrics["LATENCY"]
	if !ok {
		return 0, false
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}

// latency reads the LATENCY metric of the last query. It is zero unless
// profiling is enabled on the connection.
func (c *Conn) latency() time.Duration {
	native := mapping.GetProfilingInfo(c.conn)
	if native.Ptr == nil {
		return 0
	}
	v := mapping.ProfilingInfoGetValue(native, "LATENCY")
	if v.Ptr == nil {
		return 0
	}
	defer mapping.DestroyValue(&v)
	return time.Duration(mapping.GetDouble(v) * float64(time.Second))
}
