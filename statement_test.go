package duckdb

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/columnar-dev/go-duckdb-marshal/internal/mapping"
)

func collectResult(t *testing.T) func(rs *ResultSet, err error) [][]any {
	t.Helper()
	return func(rs *ResultSet, err error) [][]any {
		t.Helper()
		require.NoError(t, err)
		defer rs.Close()
		var out [][]any
		for row, err := range rs.All() {
			require.NoError(t, err)
			out = append(out, row)
		}
		return out
	}
}

func TestPrepareParams(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t)
	mustExec(t, conn, "CREATE TABLE people(id INTEGER DEFAULT 1, name VARCHAR)")

	stmt, err := conn.Prepare("SELECT * FROM people WHERE id = ? AND name = ?")
	require.NoError(t, err)
	defer stmt.Close()

	require.Equal(t, 2, stmt.ParamCount())
	name, err := stmt.ParamName(1)
	require.NoError(t, err)
	require.Equal(t, "1", name)

	info, err := stmt.ParamType(1)
	require.NoError(t, err)
	require.Equal(t, "INTEGER", info.String())
	info, err = stmt.ParamType(2)
	require.NoError(t, err)
	require.Equal(t, "VARCHAR", info.String())

	_, err = stmt.ParamType(0)
	require.ErrorIs(t, err, ErrBind)
	_, err = stmt.ParamName(3)
	require.ErrorIs(t, err, ErrBind)

	named, err := conn.Prepare("SELECT $answer::INTEGER")
	require.NoError(t, err)
	defer named.Close()
	require.Equal(t, 1, named.ParamCount())
	name, err = named.ParamName(1)
	require.NoError(t, err)
	require.Equal(t, "answer", name)
}

func TestPrepareBindExecute(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t)
	mustExec(t, conn, "CREATE TABLE people(id INTEGER DEFAULT 1, name VARCHAR)")

	insert, err := conn.Prepare("INSERT INTO people VALUES (?, ?)")
	require.NoError(t, err)
	defer insert.Close()

	for i, name := range []string{"quack", "honk", "moo"} {
		require.NoError(t, insert.Bind(i+1, name))
		rs, err := insert.Execute()
		require.NoError(t, err)
		require.Equal(t, int64(1), rs.RowsChanged())
		require.NoError(t, rs.Close())
	}

	require.NoError(t, insert.BindParam(1, 4))
	require.NoError(t, insert.BindParam(2, nil))
	rs, err := insert.Execute()
	require.NoError(t, err)
	require.NoError(t, rs.Close())

	sel, err := conn.Prepare("SELECT name FROM people WHERE id >= $min ORDER BY id")
	require.NoError(t, err)
	defer sel.Close()

	require.NoError(t, sel.BindParam("min", 2))
	rows := collectResult(t)(sel.Execute())
	require.Equal(t, [][]any{{"honk"}, {"moo"}, {nil}}, rows)

	require.NoError(t, sel.Bind(driver.NamedValue{Name: "min", Value: int64(4)}))
	rows = collectResult(t)(sel.Execute())
	require.Equal(t, [][]any{{nil}}, rows)

	err = sel.BindParam("max", 1)
	require.ErrorIs(t, err, ErrBind)
	testError(t, err, `unknown parameter name "max"`)

	err = sel.BindParam(1.5, 1)
	require.ErrorIs(t, err, ErrBind)

	require.NoError(t, sel.ClearBindings())
	_, err = sel.Execute()
	require.ErrorIs(t, err, ErrExecution)
}

func TestBindConversion(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t, WithBigIntMath(NewAPDMath(40)))

	stmt, err := conn.Prepare(`SELECT ?::INTEGER, ?::DECIMAL(5,2), ?::DATE, ?::TIMESTAMP, ?::INTEGER[],
		?::UBIGINT, ?::UUID, ?::BLOB`)
	require.NoError(t, err)
	defer stmt.Close()

	ts := time.Date(2024, 2, 29, 8, 30, 0, 0, time.UTC)
	require.NoError(t, stmt.Bind(int8(7), "123.45", ts, ts, []int{1, 2}, uint64(1<<63),
		"5c5fd9e4-5e47-4d63-b9e7-2ac2c8e36a58", []byte{1, 2}))

	row := collectResult(t)(stmt.Execute())[0]
	require.Equal(t, int32(7), row[0])
	require.InDelta(t, 123.45, row[1], 1e-9)
	require.Equal(t, Date{Year: 2024, Month: time.February, Day: 29}, row[2])
	require.True(t, ts.Equal(row[3].(Timestamp).Time()))
	require.Equal(t, []any{int32(1), int32(2)}, row[4])
	require.Equal(t, "9223372036854775808", row[5])
	require.Equal(t, []byte{1, 2}, row[7])

	integer, err := NewTypeInfo(TYPE_INTEGER)
	require.NoError(t, err)
	err = stmt.BindParam(1, "x", integer)
	require.ErrorIs(t, err, ErrBind)
	require.ErrorIs(t, err, ErrUnsupportedType)

	err = stmt.Bind(1)
	require.ErrorIs(t, err, ErrBind)
	testError(t, err, "incorrect argument count")
}

func TestBindInferred(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t)

	stmt, err := conn.Prepare("SELECT typeof(?), typeof(?), typeof(?), typeof(?)")
	require.NoError(t, err)
	defer stmt.Close()

	require.NoError(t, stmt.Bind(42, "text", true, 1.5))
	row := collectResult(t)(stmt.Execute())[0]
	require.Equal(t, []any{"BIGINT", "VARCHAR", "BOOLEAN", "DOUBLE"}, row)
}

func TestStatementClosed(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t)

	stmt, err := conn.Prepare("SELECT ?")
	require.NoError(t, err)
	require.NoError(t, stmt.Close())
	require.NoError(t, stmt.Close())

	require.Equal(t, 0, stmt.ParamCount())
	require.ErrorIs(t, stmt.Bind(1), errStmtClosed)
	require.ErrorIs(t, stmt.ClearBindings(), errStmtClosed)
	_, err = stmt.Execute()
	require.ErrorIs(t, err, errStmtClosed)
	_, err = stmt.PendingExecute().Execute(context.Background())
	require.ErrorIs(t, err, errStmtClosed)

	_, err = conn.Prepare("SELEC 1")
	require.ErrorIs(t, err, ErrCreation)
	testError(t, err, "could not prepare statement", "syntax error")
}

func TestPendingExecute(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t)

	stmt, err := conn.Prepare("SELECT count(*) FROM range(?)")
	require.NoError(t, err)
	defer stmt.Close()
	require.NoError(t, stmt.Bind(1000))

	pending := stmt.PendingExecute()
	defer pending.Close()
	_, failed := pending.Error()
	require.False(t, failed)

	rows := collectResult(t)(pending.Execute(context.Background()))
	require.Equal(t, [][]any{{int64(1000)}}, rows)
}

func TestPendingTasks(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t)

	stmt, err := conn.Prepare("SELECT sum(i) FROM range(100000) t(i)")
	require.NoError(t, err)
	defer stmt.Close()

	pending := stmt.PendingExecute()
	defer pending.Close()

	last := -1.0
	var lastRows uint64
	state := pending.ExecuteTask()
	for state != PendingResultReady {
		require.NotEqual(t, PendingError, state)
		p := pending.Progress()
		if p.Percentage >= 0 {
			require.GreaterOrEqual(t, p.Percentage, last)
			require.GreaterOrEqual(t, p.RowsProcessed, lastRows)
			last = p.Percentage
			lastRows = p.RowsProcessed
		}
		state = pending.ExecuteTask()
	}
	rows := collectResult(t)(pending.Execute(context.Background()))
	require.Len(t, rows, 1)
	require.Equal(t, -1.0, conn.Progress().Percentage)
}

func TestPendingCancel(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t)

	stmt, err := conn.Prepare("SELECT count(*) FROM range(100000000) a, range(100) b")
	require.NoError(t, err)
	defer stmt.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pending := stmt.PendingExecute()
	_, err = pending.Execute(ctx)
	require.ErrorIs(t, err, context.Canceled)

	_, err = pending.Execute(context.Background())
	require.ErrorIs(t, err, errPendingClosed)
	require.Equal(t, PendingError, pending.ExecuteTask())
	require.NoError(t, pending.Close())
}

func TestPendingError(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t)

	stmt, err := conn.Prepare("SELECT error('boom')")
	require.NoError(t, err)
	defer stmt.Close()

	pending := stmt.PendingExecute()
	defer pending.Close()
	_, err = pending.Execute(context.Background())
	require.ErrorIs(t, err, ErrExecution)

	msg, failed := pending.Error()
	require.True(t, failed)
	require.Contains(t, msg, "boom")
}
