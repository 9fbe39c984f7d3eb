package duckdb

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/columnar-dev/go-duckdb-marshal/internal/mapping"
)

// PreparedStatement is a compiled query that can be bound and executed
// repeatedly.
type PreparedStatement struct {
	conn   *Conn
	stmt   mapping.PreparedStatement
	closed bool
}

var errCouldNotBind = newError(ErrorKindBind, "could not bind parameter")

// Prepare compiles query.
func (c *Conn) Prepare(query string) (*PreparedStatement, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	var stmt mapping.PreparedStatement
	if state := mapping.Prepare(c.conn, query, &stmt); state == mapping.StateError {
		msg := mapping.PrepareError(stmt)
		mapping.DestroyPrepare(&stmt)
		c.logger.WithField("error", msg).Debug("prepare failed")
		return nil, nativeError(ErrorKindCreation, "could not prepare statement", msg)
	}
	return &PreparedStatement{conn: c, stmt: stmt}, nil
}

func (s *PreparedStatement) checkOpen() error {
	if s.closed {
		return errStmtClosed
	}
	return nil
}

// ParamCount returns the number of placeholder parameters.
func (s *PreparedStatement) ParamCount() int {
	if s.closed {
		return 0
	}
	return int(mapping.NParams(s.stmt))
}

// ParamName returns the name of the parameter at the given index (1-based).
// Positional parameters are named by their index.
func (s *PreparedStatement) ParamName(n int) (string, error) {
	if err := s.checkOpen(); err != nil {
		return "", err
	}
	if err := s.checkIndex(n); err != nil {
		return "", err
	}
	return mapping.ParameterName(s.stmt, mapping.IdxT(n)), nil
}

// ParamType returns the declared type of the parameter at the given index
// (1-based). The type is TYPE_INVALID or TYPE_ANY when the engine could not
// infer it.
func (s *PreparedStatement) ParamType(n int) (*TypeInfo, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if err := s.checkIndex(n); err != nil {
		return nil, err
	}
	return s.paramInfo(n), nil
}

func (s *PreparedStatement) checkIndex(n int) error {
	if count := s.ParamCount(); n < 1 || n > count {
		return newErrorf(ErrorKindBind, "parameter index %d out of range [1, %d]", n, count)
	}
	return nil
}

// paramInfo returns nil when the parameter type is not known.
func (s *PreparedStatement) paramInfo(n int) *TypeInfo {
	t := mapping.ParamType(s.stmt, mapping.IdxT(n))
	if t == TYPE_INVALID || t == TYPE_ANY {
		return nil
	}
	lt := mapping.ParamLogicalType(s.stmt, mapping.IdxT(n))
	defer mapping.DestroyLogicalType(&lt)
	info, err := newTypeInfoFrom(lt)
	if err != nil {
		return nil
	}
	return info
}

// BindParam binds value to the parameter ref, a 1-based int index or a
// parameter name. The target type is t when given, else the type the engine
// inferred for the parameter, else the type inferred from value.
func (s *PreparedStatement) BindParam(ref any, value any, t ...*TypeInfo) error {
	if err := s.checkOpen(); err != nil {
		return errors.Join(errCouldNotBind, err)
	}
	n, err := s.resolveParam(ref)
	if err != nil {
		return err
	}

	var info *TypeInfo
	if len(t) > 0 {
		info = t[0]
	}
	if info == nil {
		info = s.paramInfo(n)
	}

	val, err := s.conn.conv.createValue(info, value)
	if err != nil {
		return errors.Join(errCouldNotBind, fmt.Errorf("parameter %v: %w", ref, err))
	}
	defer mapping.DestroyValue(&val)

	if state := mapping.BindValue(s.stmt, mapping.IdxT(n), val); state == mapping.StateError {
		return nativeError(ErrorKindBind, fmt.Sprintf("could not bind parameter %v", ref), mapping.PrepareError(s.stmt))
	}
	return nil
}

func (s *PreparedStatement) resolveParam(ref any) (int, error) {
	switch r := ref.(type) {
	case int:
		if err := s.checkIndex(r); err != nil {
			return 0, err
		}
		return r, nil
	case string:
		var idx mapping.IdxT
		if state := mapping.BindParameterIndex(s.stmt, &idx, r); state == mapping.StateError || idx == 0 {
			return 0, newErrorf(ErrorKindBind, "unknown parameter name %q", r)
		}
		return int(idx), nil
	}
	return 0, newErrorf(ErrorKindBind, "parameter reference must be an int or a string, got %T", ref)
}

// Bind binds args positionally. A driver.NamedValue binds by name when it
// has one, else by its ordinal.
func (s *PreparedStatement) Bind(args ...any) error {
	if err := s.checkOpen(); err != nil {
		return errors.Join(errCouldNotBind, err)
	}
	if count := s.ParamCount(); len(args) < count {
		return newErrorf(ErrorKindBind, "incorrect argument count for command: have %d want %d", len(args), count)
	}
	for i, arg := range args {
		var ref any = i + 1
		if nv, ok := arg.(driver.NamedValue); ok {
			ref, arg = nv.Ordinal, nv.Value
			if nv.Name != "" {
				ref = nv.Name
			}
		}
		if err := s.BindParam(ref, arg); err != nil {
			return err
		}
	}
	return nil
}

// ClearBindings resets all bound parameters.
func (s *PreparedStatement) ClearBindings() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if state := mapping.ClearBindings(s.stmt); state == mapping.StateError {
		return nativeError(ErrorKindBind, "could not clear bindings", mapping.PrepareError(s.stmt))
	}
	return nil
}

// Execute runs the statement with its current bindings.
func (s *PreparedStatement) Execute() (*ResultSet, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	start := time.Now()
	defer s.conn.metrics.queryDone(start)

	var res mapping.Result
	if state := mapping.ExecutePrepared(s.stmt, &res); state == mapping.StateError {
		err := resultError(&res)
		mapping.DestroyResult(&res)
		s.conn.logger.WithError(err).Debug("execute failed")
		return nil, err
	}
	return newResultSet(res, s.conn.conv, s.conn.metrics)
}

// PendingExecute starts an incremental execution. Failures to start are
// reported by the PendingResult.
func (s *PreparedStatement) PendingExecute() *PendingResult {
	p := &PendingResult{conn: s.conn}
	if s.closed {
		p.err = errStmtClosed
		return p
	}
	if state := mapping.PendingPrepared(s.stmt, &p.pending); state == mapping.StateError {
		p.err = nativeError(ErrorKindExecution, genericExecErrMsg, mapping.PendingError(p.pending))
		mapping.DestroyPending(&p.pending)
		p.closed = true
	}
	return p
}

// Close destroys the statement. It is safe to call more than once.
func (s *PreparedStatement) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	mapping.DestroyPrepare(&s.stmt)
	return nil
}
