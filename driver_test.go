package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/columnar-dev/go-duckdb-marshal/internal/mapping"
)

func openSQLDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("duckdb-marshal", "")
	require.NoError(t, err)
	require.NoError(t, db.Ping())
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db
}

func TestSQLDriver(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	db := openSQLDB(t)

	_, err := db.Exec("CREATE TABLE foo(bar VARCHAR, baz INTEGER, at DATE); INSERT INTO foo VALUES ('seed', 0, '2020-01-01')")
	require.NoError(t, err)

	res, err := db.Exec("INSERT INTO foo VALUES (?, ?, ?), (?, ?, ?)", "lala", 12345, time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC), "lalo", nil, nil)
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	var bar string
	var baz sql.NullInt32
	var at time.Time
	require.NoError(t, db.QueryRow("SELECT bar, baz, at FROM foo WHERE bar = $name", sql.Named("name", "lala")).Scan(&bar, &baz, &at))
	require.Equal(t, "lala", bar)
	require.Equal(t, sql.NullInt32{Int32: 12345, Valid: true}, baz)
	require.True(t, at.Equal(time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC)))

	rows, err := db.Query("SELECT bar, baz FROM foo ORDER BY bar")
	require.NoError(t, err)
	defer rows.Close()
	types, err := rows.ColumnTypes()
	require.NoError(t, err)
	require.Equal(t, "VARCHAR", types[0].DatabaseTypeName())
	require.Equal(t, "INTEGER", types[1].DatabaseTypeName())

	var names []string
	for rows.Next() {
		var name string
		var value sql.NullInt64
		require.NoError(t, rows.Scan(&name, &value))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	require.Equal(t, []string{"lala", "lalo", "seed"}, names)

	_, err = db.Exec("SELECT * FROM missing")
	require.ErrorIs(t, err, ErrExecution)
}

func TestSQLPrepared(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	db := openSQLDB(t)

	_, err := db.Exec("CREATE TABLE people(id INTEGER DEFAULT 1, name VARCHAR)")
	require.NoError(t, err)

	stmt, err := db.Prepare("INSERT INTO people VALUES (?, ?)")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := stmt.Exec(i, "quack")
		require.NoError(t, err)
	}
	require.NoError(t, stmt.Close())

	query, err := db.Prepare("SELECT count(*) FROM people WHERE id >= ?")
	require.NoError(t, err)
	defer query.Close()

	var count int64
	require.NoError(t, query.QueryRow(2).Scan(&count))
	require.Equal(t, int64(3), count)
	require.NoError(t, query.QueryRow(0).Scan(&count))
	require.Equal(t, int64(5), count)

	_, err = query.Exec()
	require.Error(t, err)
}

func TestSQLTransaction(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	db := openSQLDB(t)

	_, err := db.Exec("CREATE TABLE ledger(amount INTEGER)")
	require.NoError(t, err)

	tx, err := db.Begin()
	require.NoError(t, err)
	_, err = tx.Exec("INSERT INTO ledger VALUES (10)")
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	tx, err = db.Begin()
	require.NoError(t, err)
	_, err = tx.Exec("INSERT INTO ledger VALUES (?)", 20)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	var sum int64
	require.NoError(t, db.QueryRow("SELECT coalesce(sum(amount), 0)::BIGINT FROM ledger").Scan(&sum))
	require.Equal(t, int64(20), sum)

	_, err = db.BeginTx(context.Background(), &sql.TxOptions{ReadOnly: true})
	require.ErrorIs(t, err, ErrExecution)
}

func TestSQLContextCancel(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	db := openSQLDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := db.QueryContext(ctx, "SELECT count(*) FROM range(?)", 10)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSQLAppender(t *testing.T) {
	defer mapping.VerifyAllocationCounters()

	connector, err := NewConnector("")
	require.NoError(t, err)
	db := sql.OpenDB(connector)
	defer db.Close()

	_, err = db.Exec("CREATE TABLE people(id INTEGER DEFAULT 1, name VARCHAR)")
	require.NoError(t, err)

	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	err = conn.Raw(func(driverConn any) error {
		a, err := NewAppenderFromConn(driverConn.(driver.Conn), "", "people")
		if err != nil {
			return err
		}
		for i := 0; i < 10; i++ {
			if err := a.AppendRow(i, "quack"); err != nil {
				return err
			}
		}
		return a.Close()
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, conn.QueryRowContext(context.Background(), "SELECT count(*) FROM people").Scan(&count))
	require.Equal(t, int64(10), count)

	_, err = NewAppenderFromConn(nil, "", "people")
	require.ErrorIs(t, err, errAppenderInvalidCon)
}

func TestSQLProfilingInfo(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	db := openSQLDB(t)

	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	_, err = GetProfilingInfo(conn)
	testError(t, err, errProfilingInfoEmpty.Error())

	_, err = conn.ExecContext(context.Background(), "PRAGMA enable_profiling = 'no_output'")
	require.NoError(t, err)
	_, err = conn.ExecContext(context.Background(), "PRAGMA profiling_mode = 'detailed'")
	require.NoError(t, err)
	_, err = conn.ExecContext(context.Background(), "SELECT range AS i FROM range(100) ORDER BY i")
	require.NoError(t, err)

	info, err := GetProfilingInfo(conn)
	require.NoError(t, err)
	require.NotEmpty(t, info.Metrics)
	require.NotEmpty(t, info.Children)
	require.NotEmpty(t, info.Children[0].Metrics)

	_, err = conn.ExecContext(context.Background(), "PRAGMA disable_profiling")
	require.NoError(t, err)
}

func TestConnFromSQL(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	db := openSQLDB(t)

	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	err = ConnFromSQL(conn, func(c *Conn) error {
		require.Equal(t, -1.0, c.Progress().Percentage)
		_, err := c.Exec("CREATE TABLE native(x INTEGER)")
		return err
	})
	require.NoError(t, err)

	var name string
	require.NoError(t, conn.QueryRowContext(context.Background(), "SELECT table_name FROM duckdb_tables()").Scan(&name))
	require.Equal(t, "native", name)

	tables, err := GetTableNames(conn, "SELECT * FROM native n JOIN other o ON n.x = o.x", false)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"native", "other"}, tables)
}
