package duckdb

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/columnar-dev/go-duckdb-marshal/internal/mapping"
)

// Appender loads rows into a table. Values are staged column by column into
// a native data chunk; a full chunk is handed to the engine, and Flush makes
// the appended rows visible.
//
// A row is built by appending one value per column in table order and then
// calling EndRow. An Appender is not safe for concurrent use.
type Appender struct {
	conn     *Conn
	appender mapping.Appender

	catalog string
	schema  string
	table   string

	infos   []*TypeInfo
	types   []mapping.LogicalType
	notNull []bool

	chunk    mapping.DataChunk
	writers  []*columnWriter
	capacity uint64
	// rows is the number of complete rows staged in the chunk.
	rows uint64
	// col is the cursor: the column the next value goes to.
	col int
	// nulls marks the columns of the current row that hold NULL.
	nulls []bool

	logger logrus.FieldLogger
	closed bool
}

// NewAppender creates an appender for catalog.schema.table. Empty catalog
// and schema select the defaults of the connection.
func (c *Conn) NewAppender(catalog, schema, table string) (*Appender, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	var native mapping.Appender
	if state := mapping.AppenderCreateExt(c.conn, catalog, schema, table, &native); state == mapping.StateError {
		msg := mapping.AppenderError(native)
		mapping.AppenderDestroy(&native)
		return nil, nativeError(ErrorKindCreation, fmt.Sprintf("could not create appender for %s", table), msg)
	}

	a := &Appender{
		conn:     c,
		appender: native,
		catalog:  catalog,
		schema:   schema,
		table:    table,
		logger:   c.logger.WithField("table", table),
	}
	if err := a.init(); err != nil {
		a.release()
		return nil, err
	}

	a.logger.WithField("columns", a.columnNames()).Debug("appender created")
	return a, nil
}

func (a *Appender) init() error {
	count := int(mapping.AppenderColumnCount(a.appender))
	a.infos = make([]*TypeInfo, 0, count)
	a.types = make([]mapping.LogicalType, 0, count)
	for i := 0; i < count; i++ {
		lt := mapping.AppenderColumnType(a.appender, mapping.IdxT(i))
		a.types = append(a.types, lt)
		info, err := newTypeInfoFrom(lt)
		if err != nil {
			return wrapError(ErrorKindCreation, fmt.Sprintf("could not create appender for %s: column %d", a.table, i), err)
		}
		a.infos = append(a.infos, info)
	}

	notNull, err := a.conn.notNullColumns(a.catalog, a.schema, a.table, count)
	if err != nil {
		return wrapError(ErrorKindCreation, fmt.Sprintf("could not read constraints of %s", a.table), err)
	}
	a.notNull = notNull
	a.nulls = make([]bool, count)

	a.capacity = uint64(mapping.VectorSize())
	if n := a.conn.db.cfg.ChunkRows; n > 0 && uint64(n) < a.capacity {
		a.capacity = uint64(n)
	}

	a.chunk = mapping.CreateDataChunk(a.types)
	a.writers = make([]*columnWriter, count)
	for i, info := range a.infos {
		w, err := newColumnWriter(mapping.DataChunkGetVector(a.chunk, mapping.IdxT(i)), info)
		if err != nil {
			return wrapError(ErrorKindCreation, fmt.Sprintf("could not create appender for %s", a.table), columnError(err, i))
		}
		a.writers[i] = w
	}
	return nil
}

// notNullQuery resolves the table like the appender does: an empty catalog
// searches the temporary catalog before the default one, and an empty
// schema means main in the temporary catalog.
const notNullQuery = `SELECT database_name, column_index, is_nullable FROM duckdb_columns()
WHERE table_name = $3
  AND CASE WHEN $1 = '' THEN database_name IN ('temp', current_database()) ELSE database_name = $1 END
  AND schema_name = CASE
    WHEN $2 <> '' THEN $2
    WHEN database_name = 'temp' THEN 'main'
    ELSE current_schema() END
ORDER BY database_name = 'temp' DESC, column_index`

// notNullColumns reports, per column, whether it carries a NOT NULL constraint.
func (c *Conn) notNullColumns(catalog, schema, table string, count int) ([]bool, error) {
	stmt, err := c.Prepare(notNullQuery)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	if err := stmt.Bind(catalog, schema, table); err != nil {
		return nil, err
	}
	rs, err := stmt.Execute()
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	notNull := make([]bool, count)
	var database string
	for row, err := range rs.All() {
		if err != nil {
			return nil, err
		}
		name, _ := row[0].(string)
		if database == "" {
			database = name
		}
		if name != database {
			break
		}
		idx, ok := toInt64(row[1])
		nullable, _ := row[2].(bool)
		if ok && idx >= 1 && int(idx) <= count {
			notNull[idx-1] = !nullable
		}
	}
	return notNull, nil
}

// Columns returns the column types in table order.
func (a *Appender) Columns() []*TypeInfo {
	return a.infos
}

func (a *Appender) columnNames() []string {
	names := make([]string, len(a.infos))
	for i, info := range a.infos {
		names[i] = info.String()
	}
	return names
}

// next returns the writer under the cursor.
func (a *Appender) next() (*columnWriter, error) {
	if a.closed {
		return nil, errAppenderClosed
	}
	if a.col >= len(a.writers) {
		return nil, errAppenderTooManyValues
	}
	return a.writers[a.col], nil
}

func (a *Appender) advance(null bool) {
	a.nulls[a.col] = null
	a.col++
}

func (a *Appender) appendError(err error) error {
	return wrapError(ErrorKindAppend, fmt.Sprintf("could not append to column %d of %s", a.col, a.table), err)
}

// Append converts value to the column's declared type and appends it.
// When t is given, value is first converted to t and the result is then
// converted to the column type. It is the general and slower path: prefer
// the typed appends for scalar columns.
func (a *Appender) Append(value any, t ...*TypeInfo) error {
	w, err := a.next()
	if err != nil {
		return err
	}

	var val any
	if len(t) > 0 && t[0] != nil {
		val, err = a.conn.conv.castVia(t[0], w.info, value)
	} else {
		val, err = a.conn.conv.cast(w.info, value)
	}
	if err != nil {
		return a.appendError(err)
	}
	return a.write(w, val)
}

// write stores a canonical value under the cursor and advances it.
func (a *Appender) write(w *columnWriter, val any) error {
	if err := w.set(a.rows, val); err != nil {
		return a.appendError(err)
	}
	a.advance(val == nil)
	return nil
}

// AppendNull appends NULL.
func (a *Appender) AppendNull() error {
	w, err := a.next()
	if err != nil {
		return err
	}
	w.setNull(a.rows)
	a.advance(true)
	return nil
}

// AppendDefault appends the column's default value.
func (a *Appender) AppendDefault() error {
	if _, err := a.next(); err != nil {
		return err
	}
	state := mapping.AppendDefaultToChunk(a.appender, a.chunk, mapping.IdxT(a.col), mapping.IdxT(a.rows))
	if state == mapping.StateError {
		return nativeError(ErrorKindAppend, fmt.Sprintf("could not append default to column %d of %s", a.col, a.table), mapping.AppenderError(a.appender))
	}
	a.advance(false)
	return nil
}

// appendInt writes a signed integer into any integer or floating column,
// with a range check. Other column types take the converter path.
func (a *Appender) appendInt(v int64) error {
	w, err := a.next()
	if err != nil {
		return err
	}
	var val any
	switch w.info.Type {
	case TYPE_TINYINT:
		val, err = intInRange[int8](v, math.MinInt8, math.MaxInt8, w.info)
	case TYPE_SMALLINT:
		val, err = intInRange[int16](v, math.MinInt16, math.MaxInt16, w.info)
	case TYPE_INTEGER:
		val, err = intInRange[int32](v, math.MinInt32, math.MaxInt32, w.info)
	case TYPE_BIGINT:
		val = v
	case TYPE_UTINYINT:
		val, err = intInRange[uint8](v, 0, math.MaxUint8, w.info)
	case TYPE_USMALLINT:
		val, err = intInRange[uint16](v, 0, math.MaxUint16, w.info)
	case TYPE_UINTEGER:
		val, err = intInRange[uint32](v, 0, math.MaxUint32, w.info)
	case TYPE_UBIGINT:
		val, err = intInRange[uint64](v, 0, math.MaxInt64, w.info)
	case TYPE_FLOAT:
		val = float32(v)
	case TYPE_DOUBLE:
		val = float64(v)
	default:
		return a.Append(v)
	}
	if err != nil {
		return a.appendError(err)
	}
	return a.write(w, val)
}

func intInRange[T int8 | int16 | int32 | uint8 | uint16 | uint32 | uint64](v int64, lo, hi int64, info *TypeInfo) (any, error) {
	if v < lo || v > hi {
		return nil, newErrorf(ErrorKindUnsupportedType, "%s: %d out of range for %s", castErrMsg, v, info)
	}
	return T(v), nil
}

func (a *Appender) AppendInt8(v int8) error   { return a.appendInt(int64(v)) }
func (a *Appender) AppendInt16(v int16) error { return a.appendInt(int64(v)) }
func (a *Appender) AppendInt32(v int32) error { return a.appendInt(int64(v)) }
func (a *Appender) AppendInt64(v int64) error { return a.appendInt(v) }

func (a *Appender) AppendUint8(v uint8) error   { return a.appendInt(int64(v)) }
func (a *Appender) AppendUint16(v uint16) error { return a.appendInt(int64(v)) }
func (a *Appender) AppendUint32(v uint32) error { return a.appendInt(int64(v)) }

// AppendUint64 appends v. Values above math.MaxInt64 only fit UBIGINT and
// the 128-bit types.
func (a *Appender) AppendUint64(v uint64) error {
	if v <= math.MaxInt64 {
		return a.appendInt(int64(v))
	}
	w, err := a.next()
	if err != nil {
		return err
	}
	if w.info.Type == TYPE_UBIGINT {
		return a.write(w, v)
	}
	return a.Append(v)
}

func (a *Appender) AppendBool(v bool) error {
	w, err := a.next()
	if err != nil {
		return err
	}
	if w.info.Type != TYPE_BOOLEAN {
		return a.Append(v)
	}
	return a.write(w, v)
}

func (a *Appender) AppendFloat(v float32) error {
	w, err := a.next()
	if err != nil {
		return err
	}
	switch w.info.Type {
	case TYPE_FLOAT:
		return a.write(w, v)
	case TYPE_DOUBLE:
		return a.write(w, float64(v))
	}
	return a.Append(v)
}

func (a *Appender) AppendDouble(v float64) error {
	w, err := a.next()
	if err != nil {
		return err
	}
	if w.info.Type != TYPE_DOUBLE {
		return a.Append(v)
	}
	return a.write(w, v)
}

// AppendVarchar appends a string. Non-text columns parse it through the
// converter, for example into UUID, DECIMAL or a temporal type.
func (a *Appender) AppendVarchar(v string) error {
	w, err := a.next()
	if err != nil {
		return err
	}
	switch w.info.Type {
	case TYPE_VARCHAR:
		return a.write(w, v)
	case TYPE_BLOB:
		return a.write(w, []byte(v))
	}
	return a.Append(v)
}

// FastAppend dispatches v on its Go kind to the matching typed append.
// Kinds without a typed append take the converter path. Values of unknown
// Go types are appended to text columns as their fmt.Sprint form.
func (a *Appender) FastAppend(v any) error {
	switch val := v.(type) {
	case nil:
		return a.AppendNull()
	case string:
		return a.AppendVarchar(val)
	case int:
		return a.AppendInt64(int64(val))
	case int8:
		return a.AppendInt8(val)
	case int16:
		return a.AppendInt16(val)
	case int32:
		return a.AppendInt32(val)
	case int64:
		return a.AppendInt64(val)
	case uint:
		return a.AppendUint64(uint64(val))
	case uint8:
		return a.AppendUint8(val)
	case uint16:
		return a.AppendUint16(val)
	case uint32:
		return a.AppendUint32(val)
	case uint64:
		return a.AppendUint64(val)
	case bool:
		return a.AppendBool(val)
	case float32:
		return a.AppendFloat(val)
	case float64:
		return a.AppendDouble(val)
	}

	if _, isValuer := v.(driver.Valuer); !isValuer && kindOf(v) == kindOther {
		if w, err := a.next(); err == nil && w.info.Type == TYPE_VARCHAR {
			return a.AppendVarchar(fmt.Sprint(v))
		}
	}
	return a.Append(v)
}

// AppendRow appends one value per column and ends the row. On error the
// row is discarded.
func (a *Appender) AppendRow(values ...any) error {
	for _, v := range values {
		if err := a.FastAppend(v); err != nil {
			a.discardRow()
			return err
		}
	}
	return a.EndRow()
}

func (a *Appender) discardRow() {
	if a.col > 0 {
		a.conn.metrics.rowRejected(a.table)
	}
	a.col = 0
	clear(a.nulls)
}

// EndRow completes the current row. A row missing values, or holding NULL
// in a NOT NULL column, is discarded with an error. The cursor is reset in
// every case.
func (a *Appender) EndRow() error {
	if a.closed {
		return errAppenderClosed
	}
	if a.col != len(a.writers) {
		err := newErrorf(ErrorKindRowCompletion, "row of %s has %d values for %d columns", a.table, a.col, len(a.writers))
		a.discardRow()
		return err
	}
	for i, null := range a.nulls {
		if null && a.notNull[i] {
			err := newErrorf(ErrorKindRowCompletion, "NULL in NOT NULL column %d of %s", i, a.table)
			a.discardRow()
			return err
		}
	}

	a.col = 0
	clear(a.nulls)
	a.rows++
	a.conn.metrics.rowAppended(a.table)
	if a.rows >= a.capacity {
		return a.appendChunk()
	}
	return nil
}

// appendChunk hands the staged rows to the engine and resets the chunk.
func (a *Appender) appendChunk() error {
	if a.rows == 0 {
		return nil
	}
	mapping.DataChunkSetSize(a.chunk, mapping.IdxT(a.rows))
	state := mapping.AppendDataChunk(a.appender, a.chunk)

	rows := a.rows
	a.rows = 0
	mapping.DataChunkReset(a.chunk)
	for _, w := range a.writers {
		w.refresh()
	}

	if state == mapping.StateError {
		return nativeError(ErrorKindAppend, fmt.Sprintf("could not append %d rows to %s", rows, a.table), mapping.AppenderError(a.appender))
	}
	return nil
}

// Flush appends the staged rows and writes them to the table. It fails
// while a row is under construction; the row is kept and can be completed.
func (a *Appender) Flush() error {
	if a.closed {
		return errAppenderClosed
	}
	if a.col > 0 {
		return newErrorf(ErrorKindFlush, "could not flush appender: row of %s has %d of %d values", a.table, a.col, len(a.writers))
	}
	rows := a.rows
	if err := a.appendChunk(); err != nil {
		return wrapError(ErrorKindFlush, "could not flush appender", err)
	}
	if state := mapping.AppenderFlush(a.appender); state == mapping.StateError {
		return nativeError(ErrorKindFlush, "could not flush appender", mapping.AppenderError(a.appender))
	}
	a.conn.metrics.flushed(a.table)
	a.logger.WithField("rows", rows).Debug("appender flushed")
	return nil
}

// Close flushes the staged rows and releases the appender. The appender is
// released even when flushing fails; all errors are returned joined. A row
// under construction is discarded.
func (a *Appender) Close() error {
	if a.closed {
		return errAppenderClosed
	}
	if a.col > 0 {
		a.logger.WithField("values", a.col).Warn("closing appender with an incomplete row")
		a.discardRow()
	}

	var errs []error
	if err := a.appendChunk(); err != nil {
		errs = append(errs, wrapError(ErrorKindFlush, "could not flush appender", err))
	}
	if state := mapping.AppenderClose(a.appender); state == mapping.StateError {
		errs = append(errs, nativeError(ErrorKindFlush, "could not close appender", mapping.AppenderError(a.appender)))
	}
	a.release()
	return errors.Join(errs...)
}

func (a *Appender) release() {
	a.closed = true
	mapping.AppenderDestroy(&a.appender)
	if a.chunk.Ptr != nil {
		mapping.DestroyDataChunk(&a.chunk)
	}
	for i := range a.types {
		mapping.DestroyLogicalType(&a.types[i])
	}
	a.writers = nil
}
