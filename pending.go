package duckdb

import (
	"context"
	"time"

	"github.com/columnar-dev/go-duckdb-marshal/internal/mapping"
)

// PendingState is the state of an incremental execution.
type PendingState = mapping.PendingState

const (
	PendingResultReady      = mapping.PendingStateResultReady
	PendingResultNotReady   = mapping.PendingStateResultNotReady
	PendingError            = mapping.PendingStateError
	PendingNoTasksAvailable = mapping.PendingStateNoTasksAvailable
)

// PendingResult is a query executed one task at a time. Dropping it
// abandons the query; Close releases it.
type PendingResult struct {
	conn    *Conn
	pending mapping.PendingResult
	err     error
	closed  bool
}

// ExecuteTask runs one task of the query and returns the resulting state.
func (p *PendingResult) ExecuteTask() PendingState {
	if p.closed || p.err != nil {
		return PendingError
	}
	state := mapping.PendingExecuteTask(p.pending)
	p.conn.metrics.pendingTask()
	p.conn.logger.WithField("state", state).Trace("pending task executed")
	if state == PendingError {
		p.err = nativeError(ErrorKindExecution, genericExecErrMsg, mapping.PendingError(p.pending))
	}
	return state
}

// Progress reports the progress of the query on its connection.
func (p *PendingResult) Progress() Progress {
	return p.conn.Progress()
}

// Execute runs the remaining tasks and materializes the result. When ctx
// is done between two tasks, the query is interrupted, the pending result
// is closed and ctx.Err() is returned.
func (p *PendingResult) Execute(ctx context.Context) (*ResultSet, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.closed {
		return nil, errPendingClosed
	}
	start := time.Now()
	defer p.conn.metrics.queryDone(start)

	for {
		if err := ctx.Err(); err != nil {
			p.conn.Interrupt()
			p.Close()
			return nil, err
		}
		state := p.ExecuteTask()
		if state == PendingError {
			return nil, p.err
		}
		if mapping.PendingExecutionIsFinished(state) {
			break
		}
	}

	var res mapping.Result
	if state := mapping.ExecutePending(p.pending, &res); state == mapping.StateError {
		p.err = resultError(&res)
		mapping.DestroyResult(&res)
		return nil, p.err
	}
	return newResultSet(res, p.conn.conv, p.conn.metrics)
}

// Error returns the native error text, if the execution failed.
func (p *PendingResult) Error() (string, bool) {
	if p.err == nil {
		return "", false
	}
	if e, ok := p.err.(*Error); ok && e.Native != "" {
		return e.Native, true
	}
	return p.err.Error(), true
}

// Close releases the pending result. It is safe to call more than once.
func (p *PendingResult) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	mapping.DestroyPending(&p.pending)
	return nil
}
