package duckdb

import (
	"fmt"
	"math"
	"math/big"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/columnar-dev/go-duckdb-marshal/internal/mapping"
)

func newTestAppender(t *testing.T, conn *Conn, table string) *Appender {
	t.Helper()
	a, err := conn.NewAppender("", "", table)
	require.NoError(t, err)
	return a
}

func bigIntFromString(t *testing.T, s string) *big.Int {
	t.Helper()
	i, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return i
}

func TestAppenderDefault(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t)
	mustExec(t, conn, "CREATE TABLE people(id INTEGER DEFAULT 1, name VARCHAR)")

	a := newTestAppender(t, conn, "people")
	require.NoError(t, a.AppendDefault())
	require.NoError(t, a.AppendVarchar("quack"))
	require.NoError(t, a.EndRow())
	require.NoError(t, a.Close())

	require.Equal(t, [][]any{{int32(1), "quack"}}, queryAll(t, conn, "SELECT * FROM people"))
}

func TestAppenderPeople(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t)
	mustExec(t, conn, "CREATE TABLE people(id INTEGER DEFAULT 1, name VARCHAR)")

	a := newTestAppender(t, conn, "people")
	for i := 0; i < 100; i++ {
		name := fmt.Sprintf("person_%d", rand.Intn(1_000_000))
		require.NoError(t, a.AppendRow(i, name))
	}
	require.NoError(t, a.Flush())
	require.Equal(t, int64(100), queryOne(t, conn, "SELECT count(*) FROM people"))

	for i := 100; i < 110; i++ {
		require.NoError(t, a.AppendRow(i, nil))
	}
	require.NoError(t, a.Close())

	require.Equal(t, int64(110), queryOne(t, conn, "SELECT count(*) FROM people"))
	require.Equal(t, int64(10), queryOne(t, conn, "SELECT count(*) FROM people WHERE name IS NULL"))
	require.Equal(t, int64(100), queryOne(t, conn, "SELECT count(*) FROM people WHERE name LIKE 'person_%'"))
}

func TestAppenderScalars(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t)
	mustExec(t, conn, `CREATE TABLE scalars(
		b BOOLEAN, i8 TINYINT, i16 SMALLINT, i32 INTEGER, i64 BIGINT,
		u8 UTINYINT, u16 USMALLINT, u32 UINTEGER, u64 UBIGINT,
		f REAL, d DOUBLE, s VARCHAR, blob BLOB)`)

	a := newTestAppender(t, conn, "scalars")
	require.Len(t, a.Columns(), 13)
	require.NoError(t, a.AppendBool(true))
	require.NoError(t, a.AppendInt8(math.MinInt8))
	require.NoError(t, a.AppendInt16(math.MaxInt16))
	require.NoError(t, a.AppendInt32(-42))
	require.NoError(t, a.AppendInt64(math.MaxInt64))
	require.NoError(t, a.AppendUint8(math.MaxUint8))
	require.NoError(t, a.AppendUint16(math.MaxUint16))
	require.NoError(t, a.AppendUint32(math.MaxUint32))
	require.NoError(t, a.AppendUint64(7))
	require.NoError(t, a.AppendFloat(1.5))
	require.NoError(t, a.AppendDouble(-2.25))
	require.NoError(t, a.AppendVarchar("hello"))
	require.NoError(t, a.AppendVarchar("raw"))
	require.NoError(t, a.EndRow())

	for range 13 {
		require.NoError(t, a.AppendNull())
	}
	require.NoError(t, a.EndRow())
	require.NoError(t, a.Close())

	rows := queryAll(t, conn, "SELECT * FROM scalars ORDER BY b NULLS LAST")
	require.Equal(t, []any{
		true, int8(math.MinInt8), int16(math.MaxInt16), int32(-42), int64(math.MaxInt64),
		uint8(math.MaxUint8), uint16(math.MaxUint16), uint32(math.MaxUint32), int64(7),
		float32(1.5), -2.25, "hello", []byte("raw"),
	}, rows[0])
	require.Equal(t, make([]any, 13), rows[1])
}

func TestAppenderTemporal(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t)
	mustExec(t, conn, "CREATE TABLE events(d DATE, tm TIME, ts TIMESTAMP, tsns TIMESTAMP_NS, iv INTERVAL)")

	ts := time.Date(2023, 3, 14, 15, 9, 26, 535897000, time.UTC)
	a := newTestAppender(t, conn, "events")
	require.NoError(t, a.AppendRow(ts, "15:09:26.5", ts, ts, Interval{Months: 1, Days: 2, Micros: 3}))
	require.NoError(t, a.AppendRow("2023-03-14", Time{Hour: 1}, "2023-03-14 15:09:26", NewTimestamp(ts, UnitNano), 90*time.Second))
	require.NoError(t, a.Close())

	rows := queryAll(t, conn, "SELECT * FROM events ORDER BY tm DESC")
	require.Equal(t, Date{Year: 2023, Month: time.March, Day: 14}, rows[0][0])
	require.Equal(t, Time{Hour: 15, Minute: 9, Second: 26, Micros: 500000}, rows[0][1])
	require.True(t, ts.Equal(rows[0][2].(Timestamp).Time()))
	require.True(t, ts.Equal(rows[0][3].(Timestamp).Time()))
	require.Equal(t, Interval{Months: 1, Days: 2, Micros: 3}, rows[0][4])

	require.Equal(t, Time{Hour: 1}, rows[1][1])
	require.Equal(t, "2023-03-14T15:09:26Z", rows[1][2].(Timestamp).Time().Format(time.RFC3339))
	require.Equal(t, Interval{Micros: 90_000_000}, rows[1][4])
}

func TestAppenderVarcharInline(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t)
	mustExec(t, conn, "CREATE TABLE strs(s VARCHAR)")

	values := []string{"", "hello world!", "hello world!!", strings.Repeat("x", 1000)}
	require.Len(t, values[1], 12)
	require.Len(t, values[2], 13)

	a := newTestAppender(t, conn, "strs")
	for _, v := range values {
		require.NoError(t, a.AppendRow(v))
	}
	require.NoError(t, a.Close())

	rows := queryAll(t, conn, "SELECT s FROM strs ORDER BY length(s)")
	for i, v := range values {
		require.Equal(t, v, rows[i][0])
	}
}

func TestAppenderBigNumbers(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t, WithBigIntMath(NewAPDMath(40)))
	mustExec(t, conn, "CREATE TABLE big(u UBIGINT, h HUGEINT, uh UHUGEINT)")

	a := newTestAppender(t, conn, "big")
	require.NoError(t, a.AppendUint64(1<<63))
	require.NoError(t, a.AppendUint64(1<<63))
	require.NoError(t, a.Append("170141183460469231731687303715884105727"))
	require.NoError(t, a.EndRow())

	err := a.AppendInt64(-1)
	require.ErrorIs(t, err, ErrUnsupportedType)
	require.Contains(t, err.Error(), "out of range for UBIGINT")
	err = a.Append(-1)
	require.ErrorIs(t, err, ErrUnsupportedType)

	require.NoError(t, a.AppendRow(1, -1, 1))
	require.NoError(t, a.Close())

	rows := queryAll(t, conn, "SELECT * FROM big ORDER BY u DESC")
	require.Equal(t, []any{"9223372036854775808", "9223372036854775808", "170141183460469231731687303715884105727"}, rows[0])
	require.Equal(t, []any{int64(1), int64(-1), int64(1)}, rows[1])
}

func TestAppenderDecimal(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t, WithBigIntMath(NewAPDMath(40)))
	mustExec(t, conn, "CREATE TABLE decs(d2 DECIMAL(2,2), d5 DECIMAL(5,2), d8 DECIMAL(8,3), d17 DECIMAL(17,4), d30 DECIMAL(30,5))")

	a := newTestAppender(t, conn, "decs")
	require.NoError(t, a.AppendRow("0.45", 123.45, "12345.678", "1234567890123.4567", "1234567890123456789012345.12345"))
	require.NoError(t, a.AppendRow(-0.45, "-123.45", -12345.678, Decimal{Value: bigIntFromString(t, "-12345678901234567"), Width: 17, Scale: 4}, 1))

	err := a.AppendRow("1.5", 0, 0, 0, 0)
	require.ErrorIs(t, err, ErrUnsupportedType)
	require.NoError(t, a.Close())

	rows := queryAll(t, conn, "SELECT * FROM decs ORDER BY d2 DESC")
	require.Len(t, rows, 2)
	want := [][]float64{
		{0.45, 123.45, 12345.678, 1234567890123.4567, 1234567890123456789012345.12345},
		{-0.45, -123.45, -12345.678, -1234567890123.4567, 1},
	}
	for i, row := range rows {
		for j, v := range row {
			require.InDelta(t, want[i][j], v, math.Abs(want[i][j])*1e-12, "row %d column %d", i, j)
		}
	}
	require.Equal(t, "0.45", fmt.Sprint(queryOne(t, conn, "SELECT d2::VARCHAR FROM decs WHERE d2 > 0")))
	require.Equal(t, "1234567890123456789012345.12345", queryOne(t, conn, "SELECT d30::VARCHAR FROM decs WHERE d2 > 0"))
}

func TestAppenderNested(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t)
	mustExec(t, conn, `CREATE TYPE mood AS ENUM ('sad', 'ok', 'happy')`)
	mustExec(t, conn, `CREATE TABLE nested(
		l INTEGER[], a VARCHAR[2], s STRUCT(x INTEGER, y VARCHAR), m MAP(VARCHAR, INTEGER),
		u UNION(num INTEGER, str VARCHAR), e mood, ll INTEGER[][])`)

	a := newTestAppender(t, conn, "nested")
	require.NoError(t, a.AppendRow(
		[]int32{1, 2, 3},
		[]string{"a", "b"},
		map[string]any{"x": 7, "y": "seven"},
		OrderedMap{{Key: "k", Value: 1}, {Key: "j", Value: 2}},
		Union{Tag: "str", Value: "tagged"},
		"happy",
		[][]int{{1}, {}, {2, 3}},
	))
	require.NoError(t, a.AppendRow([]any{}, nil, nil, OrderedMap{}, Union{Tag: "num", Value: 5}, "sad", nil))
	require.NoError(t, a.Close())

	rows := queryAll(t, conn, "SELECT * FROM nested ORDER BY e DESC")
	require.Equal(t, []any{
		[]any{int32(1), int32(2), int32(3)},
		[]any{"a", "b"},
		map[string]any{"x": int32(7), "y": "seven"},
		OrderedMap{{Key: "k", Value: int32(1)}, {Key: "j", Value: int32(2)}},
		Union{Tag: "str", Value: "tagged"},
		"happy",
		[]any{[]any{int32(1)}, []any{}, []any{int32(2), int32(3)}},
	}, rows[0])
	require.Equal(t, []any{[]any{}, nil, nil, OrderedMap{}, Union{Tag: "num", Value: int32(5)}, "sad", nil}, rows[1])

	a = newTestAppender(t, conn, "nested")
	defer a.Close()
	err := a.AppendRow([]int{1}, []string{"only one"}, nil, nil, nil, nil, nil)
	require.ErrorIs(t, err, ErrUnsupportedType)
	err = a.AppendRow(nil, nil, nil, nil, nil, "furious", nil)
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestAppenderRowCompletion(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	conn := openTestConn(t, WithMetrics(metrics))
	mustExec(t, conn, "CREATE TABLE strict(id INTEGER NOT NULL, name VARCHAR)")

	a := newTestAppender(t, conn, "strict")

	require.NoError(t, a.AppendNull())
	require.NoError(t, a.AppendVarchar("nameless"))
	err := a.EndRow()
	require.ErrorIs(t, err, ErrRowCompletion)
	testError(t, err, "NOT NULL")

	require.NoError(t, a.AppendInt32(1))
	err = a.EndRow()
	require.ErrorIs(t, err, ErrRowCompletion)

	require.NoError(t, a.AppendRow(1, "one"))
	require.NoError(t, a.AppendInt32(2))
	require.NoError(t, a.AppendNull())
	require.ErrorIs(t, a.AppendInt32(3), errAppenderTooManyValues)
	require.NoError(t, a.EndRow())

	err = a.AppendRow(nil, "rejected")
	require.ErrorIs(t, err, ErrRowCompletion)
	require.NoError(t, a.Close())
	require.ErrorIs(t, a.Close(), errAppenderClosed)
	require.ErrorIs(t, a.AppendNull(), errAppenderClosed)
	require.ErrorIs(t, a.Flush(), errAppenderClosed)

	require.Equal(t, [][]any{{int32(1), "one"}, {int32(2), nil}}, queryAll(t, conn, "SELECT * FROM strict ORDER BY id"))
	require.Equal(t, 2.0, counterValue(t, metrics.rowsAppendedVec.WithLabelValues("strict")))
	require.Equal(t, 3.0, counterValue(t, metrics.rowsRejectedVec.WithLabelValues("strict")))

	t.Run("temp table", func(t *testing.T) {
		mustExec(t, conn, "CREATE TEMP TABLE scratch(id INTEGER NOT NULL, name VARCHAR)")
		a := newTestAppender(t, conn, "scratch")

		require.NoError(t, a.AppendNull())
		require.NoError(t, a.AppendVarchar("x"))
		err := a.EndRow()
		require.ErrorIs(t, err, ErrRowCompletion)
		testError(t, err, "NOT NULL")

		require.NoError(t, a.AppendRow(int32(1), "kept"))
		require.NoError(t, a.Flush())
		require.NoError(t, a.Close())
		require.Equal(t, [][]any{{int32(1), "kept"}}, queryAll(t, conn, "SELECT * FROM temp.scratch"))
	})
}

func TestAppenderFlushIncompleteRow(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t)
	mustExec(t, conn, "CREATE TABLE people(id INTEGER, name VARCHAR)")

	a := newTestAppender(t, conn, "people")
	require.NoError(t, a.AppendRow(int32(1), "first"))
	require.NoError(t, a.AppendInt32(2))

	err := a.Flush()
	require.ErrorIs(t, err, ErrFlush)
	testError(t, err, "1 of 2 values")

	require.NoError(t, a.AppendVarchar("second"))
	require.NoError(t, a.EndRow())
	require.NoError(t, a.Flush())
	require.NoError(t, a.AppendRow(int32(3), "third"))
	require.NoError(t, a.Close())

	require.Equal(t, [][]any{{int32(1), "first"}, {int32(2), "second"}, {int32(3), "third"}},
		queryAll(t, conn, "SELECT id, name FROM people ORDER BY id"))
}

func TestAppenderChunkRows(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t, WithChunkRows(3))
	mustExec(t, conn, "CREATE TABLE small(id BIGINT, label VARCHAR)")

	a := newTestAppender(t, conn, "small")
	for i := 0; i < 10; i++ {
		require.NoError(t, a.AppendRow(i, fmt.Sprintf("row %d", i)))
	}
	require.NoError(t, a.AppendInt64(10))
	require.NoError(t, a.Close())

	require.Equal(t, int64(10), queryOne(t, conn, "SELECT count(*) FROM small"))
	require.Equal(t, int64(45), queryOne(t, conn, "SELECT sum(id)::BIGINT FROM small"))
}

type label struct {
	name string
}

func (l label) String() string { return "label:" + l.name }

func TestAppenderFastAppend(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t)
	mustExec(t, conn, "CREATE TABLE fast(i INTEGER, d DOUBLE, s VARCHAR, b BOOLEAN, f REAL)")

	a := newTestAppender(t, conn, "fast")
	require.NoError(t, a.FastAppend(int64(12)))
	require.NoError(t, a.FastAppend(3))
	require.NoError(t, a.FastAppend(label{name: "x"}))
	require.NoError(t, a.FastAppend(true))
	require.NoError(t, a.FastAppend(0.5))
	require.NoError(t, a.EndRow())

	require.ErrorIs(t, a.FastAppend(int64(math.MaxInt64)), ErrUnsupportedType)
	require.ErrorIs(t, a.FastAppend("not a number"), ErrUnsupportedType)
	require.NoError(t, a.Close())

	require.Equal(t, [][]any{{int32(12), 3.0, "label:x", true, float32(0.5)}}, queryAll(t, conn, "SELECT * FROM fast"))
}

func TestAppenderTypedTarget(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t)
	mustExec(t, conn, "CREATE TABLE typed(s VARCHAR, id INTEGER, d DATE)")

	a := newTestAppender(t, conn, "typed")

	varchar := mustTypeInfo(TYPE_VARCHAR)
	integer := mustTypeInfo(TYPE_INTEGER)
	bigint := mustTypeInfo(TYPE_BIGINT)
	timestamp := mustTypeInfo(TYPE_TIMESTAMP)

	require.NoError(t, a.Append("ok", varchar))
	require.NoError(t, a.Append(int64(5), bigint))
	require.NoError(t, a.Append(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), timestamp))
	require.NoError(t, a.EndRow())

	require.NoError(t, a.Append(42, integer))
	require.NoError(t, a.Append(int8(6), bigint))
	require.NoError(t, a.AppendNull())
	require.NoError(t, a.EndRow())

	err := a.Append("bad", integer)
	require.ErrorIs(t, err, ErrAppend)
	require.ErrorIs(t, err, ErrUnsupportedType)

	require.NoError(t, a.AppendVarchar("wide"))
	err = a.Append(int64(1)<<40, bigint)
	require.ErrorIs(t, err, ErrAppend)
	require.Contains(t, err.Error(), "out of range for INTEGER")
	require.NoError(t, a.Append(int64(7), bigint))
	require.NoError(t, a.AppendNull())
	require.NoError(t, a.EndRow())
	require.NoError(t, a.Close())

	require.Equal(t, [][]any{
		{"42", int32(6), nil},
		{"ok", int32(5), Date{Year: 2024, Month: time.March, Day: 1}},
		{"wide", int32(7), nil},
	}, queryAll(t, conn, "SELECT * FROM typed ORDER BY s"))
}

func TestAppenderErrors(t *testing.T) {
	defer mapping.VerifyAllocationCounters()
	conn := openTestConn(t)

	_, err := conn.NewAppender("", "", "does_not_exist")
	require.ErrorIs(t, err, ErrCreation)
	testError(t, err, "does_not_exist")

	_, err = conn.NewAppender("", "missing_schema", "t")
	require.ErrorIs(t, err, ErrCreation)

	require.NoError(t, conn.Close())
	_, err = conn.NewAppender("", "", "t")
	require.ErrorIs(t, err, ErrClosed)
}
