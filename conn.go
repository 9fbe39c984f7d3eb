package duckdb

import (
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/columnar-dev/go-duckdb-marshal/internal/mapping"
)

// Conn is a connection to a DB. A Conn has a single owner and is not safe
// for concurrent use, except for Progress, Interrupt and Close.
type Conn struct {
	conn    mapping.Connection
	db      *DB
	conv    *converter
	logger  logrus.FieldLogger
	metrics *Metrics

	mu     sync.Mutex
	closed bool
}

// Progress of the query running on a connection.
type Progress struct {
	// Percentage is -1 when no query is running or progress is unknown.
	Percentage         float64
	RowsProcessed      uint64
	TotalRowsToProcess uint64
}

func (c *Conn) checkOpen() error {
	if c.closed {
		return newError(ErrorKindClosed, errClosedConn.Error())
	}
	return nil
}

// Query runs a query without parameters and returns its result.
func (c *Conn) Query(query string) (*ResultSet, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	start := time.Now()
	defer c.metrics.queryDone(start)

	var res mapping.Result
	state := mapping.Query(c.conn, query, &res)
	native := time.Since(start)
	if state == mapping.StateError {
		err := resultError(&res)
		mapping.DestroyResult(&res)
		c.logger.WithError(err).Debug("query failed")
		return nil, err
	}

	rs, err := newResultSet(res, c.conv, c.metrics)
	if err != nil {
		return nil, err
	}
	rs.timing.Native = native
	rs.timing.Latency = c.latency()
	return rs, nil
}

// Exec runs a statement and returns the number of rows it changed.
func (c *Conn) Exec(query string) (int64, error) {
	rs, err := c.Query(query)
	if err != nil {
		return 0, err
	}
	defer rs.Close()
	return rs.RowsChanged(), nil
}

// TableNames returns the names of the tables a query references, without
// running it. With qualified set, names carry their catalog and schema
// exactly as written in the query.
func (c *Conn) TableNames(query string, qualified bool) ([]string, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if err := c.checkParses(query); err != nil {
		return nil, err
	}

	list := mapping.GetTableNames(c.conn, query, qualified)
	if list.Ptr == nil {
		return nil, nil
	}
	defer mapping.DestroyValue(&list)

	size := uint64(mapping.GetListSize(list))
	if size == 0 {
		return nil, nil
	}
	names := make([]string, 0, size)
	for i := uint64(0); i < size; i++ {
		child := mapping.GetListChild(list, mapping.IdxT(i))
		names = append(names, mapping.GetVarchar(child))
		mapping.DestroyValue(&child)
	}
	return names, nil
}

// checkParses runs the parser over query and reports its error.
func (c *Conn) checkParses(query string) error {
	if strings.TrimSpace(query) == "" {
		return newError(ErrorKindExecution, "empty query")
	}
	var stmts mapping.ExtractedStatements
	count := mapping.ExtractStatements(c.conn, query, &stmts)
	defer mapping.DestroyExtracted(&stmts)
	if count == 0 {
		return nativeError(ErrorKindExecution, genericExecErrMsg, mapping.ExtractStatementsError(stmts))
	}
	return nil
}

func resultError(res *mapping.Result) error {
	msg := mapping.ResultError(res)
	if msg == "" {
		return newError(ErrorKindExecution, genericExecErrMsg)
	}
	return nativeError(ErrorKindExecution, genericExecErrMsg, msg)
}

// Progress reports the progress of the running query.
func (c *Conn) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return Progress{Percentage: -1}
	}
	p := mapping.QueryProgress(c.conn)
	pct, rows, total := mapping.QueryProgressTypeMembers(&p)
	return Progress{Percentage: pct, RowsProcessed: rows, TotalRowsToProcess: total}
}

// Interrupt asks the engine to stop the running query.
func (c *Conn) Interrupt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		mapping.Interrupt(c.conn)
	}
}

// Close disconnects. It is safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	mapping.Disconnect(&c.conn)
	return nil
}
