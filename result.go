package duckdb

import (
	"time"

	"github.com/columnar-dev/go-duckdb-marshal/internal/mapping"
)

// ResultSet is a materialized query result, consumed forward-only as a
// sequence of data chunks. A set cannot be restarted: once every chunk was
// pulled, NextChunk keeps returning nil.
type ResultSet struct {
	res     mapping.Result
	conv    *converter
	metrics *Metrics

	names []string
	infos []*TypeInfo

	chunkCount uint64
	chunkIdx   uint64
	closed     bool

	timing QueryTiming
}

// QueryTiming splits the time spent on a result between the engine and the
// host side.
type QueryTiming struct {
	// Native is the wall time of the native query call. It is only set for
	// results of Conn.Query.
	Native time.Duration
	// Decode is the time spent materializing chunks so far.
	Decode time.Duration
	// Latency is the engine-reported query latency. It stays zero unless
	// profiling is enabled on the connection.
	Latency time.Duration
}

// newResultSet takes ownership of res. On error res is destroyed.
func newResultSet(res mapping.Result, conv *converter, metrics *Metrics) (*ResultSet, error) {
	rs := &ResultSet{
		res:        res,
		conv:       conv,
		metrics:    metrics,
		chunkCount: uint64(mapping.ResultChunkCount(res)),
	}

	n := uint64(mapping.ColumnCount(&rs.res))
	rs.names = make([]string, n)
	rs.infos = make([]*TypeInfo, n)
	for i := uint64(0); i < n; i++ {
		rs.names[i] = mapping.ColumnName(&rs.res, mapping.IdxT(i))
		info, err := rs.columnInfo(i)
		if err != nil {
			rs.Close()
			return nil, columnError(err, int(i))
		}
		rs.infos[i] = info
	}
	return rs, nil
}

func (rs *ResultSet) columnInfo(i uint64) (*TypeInfo, error) {
	lt := mapping.ColumnLogicalType(&rs.res, mapping.IdxT(i))
	defer mapping.DestroyLogicalType(&lt)
	return newTypeInfoFrom(lt)
}

// ColumnNames returns the result column names in order.
func (rs *ResultSet) ColumnNames() []string {
	return rs.names
}

func (rs *ResultSet) ColumnCount() int {
	return len(rs.names)
}

// ColumnTypes returns the logical type of every column.
func (rs *ResultSet) ColumnTypes() []*TypeInfo {
	return rs.infos
}

// RowsChanged returns the number of rows changed by a DML statement.
func (rs *ResultSet) RowsChanged() int64 {
	if rs.closed {
		return 0
	}
	return int64(mapping.RowsChanged(&rs.res))
}

// NextChunk pulls the next chunk. It returns nil, nil once the set is
// exhausted. The caller must Close every returned chunk.
func (rs *ResultSet) NextChunk() (*DataChunk, error) {
	if rs.closed {
		return nil, errResultClosed
	}
	for rs.chunkIdx < rs.chunkCount {
		chunk := mapping.ResultGetChunk(rs.res, mapping.IdxT(rs.chunkIdx))
		rs.chunkIdx++
		if chunk.Ptr == nil {
			return nil, nil
		}
		start := time.Now()
		dc, err := newDataChunk(chunk, rs.infos, rs.conv)
		rs.timing.Decode += time.Since(start)
		if err != nil {
			return nil, err
		}
		rs.metrics.chunkDecoded(dc.Size())
		if dc.Size() == 0 {
			dc.Close()
			continue
		}
		return dc, nil
	}
	return nil, nil
}

// Timing returns the time spent on the result so far.
func (rs *ResultSet) Timing() QueryTiming {
	return rs.timing
}

// Rows returns a row iterator over the remaining chunks.
func (rs *ResultSet) Rows() *Rows {
	return &Rows{rs: rs, values: make([]any, len(rs.names))}
}

// Close releases the native result. It is safe to call more than once.
func (rs *ResultSet) Close() error {
	if rs.closed {
		return nil
	}
	rs.closed = true
	mapping.DestroyResult(&rs.res)
	return nil
}
