package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
)

func init() {
	sql.Register("duckdb-marshal", Driver{})
}

// Driver exposes the package through database/sql.
type Driver struct{}

func (d Driver) Open(dsn string) (driver.Conn, error) {
	c, err := d.OpenConnector(dsn)
	if err != nil {
		return nil, err
	}
	return c.Connect(context.Background())
}

func (Driver) OpenConnector(dsn string) (driver.Connector, error) {
	return NewConnector(dsn)
}

// Connector opens connections to one database. Closing it closes the
// database; sql.DB does that on Close for connectors passed to sql.OpenDB.
type Connector struct {
	db *DB
}

// NewConnector opens the database named by dsn.
func NewConnector(dsn string, opts ...Option) (*Connector, error) {
	db, err := Open(dsn, opts...)
	if err != nil {
		return nil, err
	}
	return &Connector{db: db}, nil
}

func (*Connector) Driver() driver.Driver {
	return Driver{}
}

func (c *Connector) Connect(context.Context) (driver.Conn, error) {
	conn, err := c.db.Connect()
	if err != nil {
		return nil, err
	}
	return &sqlConn{conn: conn}, nil
}

// DB returns the database the connector opens connections to.
func (c *Connector) DB() *DB {
	return c.db
}

func (c *Connector) Close() error {
	return c.db.Close()
}

// sqlConn adapts a Conn to database/sql.
type sqlConn struct {
	conn *Conn
	tx   bool
}

// CheckNamedValue accepts every value; conversion happens when binding.
func (*sqlConn) CheckNamedValue(*driver.NamedValue) error {
	return nil
}

func (c *sqlConn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *sqlConn) PrepareContext(_ context.Context, query string) (driver.Stmt, error) {
	stmt, err := c.conn.Prepare(query)
	if err != nil {
		return nil, err
	}
	return &sqlStmt{stmt: stmt}, nil
}

func (c *sqlConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	rs, err := c.run(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rs.Close()
	return driver.RowsAffected(rs.RowsChanged()), nil
}

func (c *sqlConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	rs, err := c.run(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return newSQLRows(rs, nil), nil
}

// run executes statements without arguments directly, which allows several
// statements in one query. Statements with arguments are prepared and run
// through a pending result so that ctx can interrupt them.
func (c *sqlConn) run(ctx context.Context, query string, args []driver.NamedValue) (*ResultSet, error) {
	if len(args) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return c.conn.Query(query)
	}

	stmt, err := c.conn.Prepare(query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()
	return executeNamed(ctx, stmt, args)
}

func executeNamed(ctx context.Context, stmt *PreparedStatement, args []driver.NamedValue) (*ResultSet, error) {
	values := make([]any, len(args))
	for i, arg := range args {
		values[i] = arg
	}
	if err := stmt.Bind(values...); err != nil {
		return nil, err
	}
	pending := stmt.PendingExecute()
	defer pending.Close()
	return pending.Execute(ctx)
}

func (c *sqlConn) Ping(context.Context) error {
	return c.conn.checkOpen()
}

func (c *sqlConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *sqlConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if c.tx {
		return nil, newError(ErrorKindExecution, "transaction already in progress")
	}
	if opts.ReadOnly {
		return nil, newError(ErrorKindExecution, "read-only transactions are not supported")
	}
	if _, err := c.ExecContext(ctx, "BEGIN TRANSACTION", nil); err != nil {
		return nil, err
	}
	c.tx = true
	return &sqlTx{c: c}, nil
}

func (c *sqlConn) Close() error {
	return c.conn.Close()
}

type sqlTx struct {
	c *sqlConn
}

func (t *sqlTx) Commit() error {
	t.c.tx = false
	_, err := t.c.conn.Exec("COMMIT TRANSACTION")
	return err
}

func (t *sqlTx) Rollback() error {
	t.c.tx = false
	_, err := t.c.conn.Exec("ROLLBACK")
	return err
}

type sqlStmt struct {
	stmt *PreparedStatement
}

func (s *sqlStmt) Close() error {
	return s.stmt.Close()
}

func (s *sqlStmt) NumInput() int {
	return s.stmt.ParamCount()
}

func (s *sqlStmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), namedValues(args))
}

func (s *sqlStmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), namedValues(args))
}

func (s *sqlStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	if err := s.stmt.ClearBindings(); err != nil {
		return nil, err
	}
	rs, err := executeNamed(ctx, s.stmt, args)
	if err != nil {
		return nil, err
	}
	defer rs.Close()
	return driver.RowsAffected(rs.RowsChanged()), nil
}

func (s *sqlStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	if err := s.stmt.ClearBindings(); err != nil {
		return nil, err
	}
	rs, err := executeNamed(ctx, s.stmt, args)
	if err != nil {
		return nil, err
	}
	return newSQLRows(rs, nil), nil
}

func namedValues(values []driver.Value) []driver.NamedValue {
	args := make([]driver.NamedValue, len(values))
	for n, param := range values {
		args[n].Value = param
		args[n].Ordinal = n + 1
	}
	return args
}

// sqlRows adapts a ResultSet to driver.Rows.
type sqlRows struct {
	rs    *ResultSet
	rows  *Rows
	onEnd func()
}

func newSQLRows(rs *ResultSet, onEnd func()) *sqlRows {
	return &sqlRows{rs: rs, rows: rs.Rows(), onEnd: onEnd}
}

func (r *sqlRows) Columns() []string {
	return r.rs.ColumnNames()
}

func (r *sqlRows) Next(dst []driver.Value) error {
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return err
		}
		return io.EOF
	}
	for i, v := range r.rows.Values() {
		dst[i] = sqlValue(v)
	}
	return nil
}

// ColumnTypeDatabaseTypeName implements driver.RowsColumnTypeDatabaseTypeName.
func (r *sqlRows) ColumnTypeDatabaseTypeName(i int) string {
	return r.rs.infos[i].String()
}

func (r *sqlRows) Close() error {
	r.rows.Close()
	err := r.rs.Close()
	if r.onEnd != nil {
		r.onEnd()
	}
	return err
}

// sqlValue maps the temporal types onto time.Time, which database/sql
// scans into strings and times.
func sqlValue(v any) any {
	switch val := v.(type) {
	case Timestamp:
		return val.Time()
	case Date:
		return val.Time()
	}
	return v
}

// NewAppenderFromConn returns a new Appender from a driver connection
// obtained through (*sql.Conn).Raw.
func NewAppenderFromConn(driverConn driver.Conn, schema string, table string) (*Appender, error) {
	c, ok := driverConn.(*sqlConn)
	if !ok {
		return nil, errAppenderInvalidCon
	}
	return c.conn.NewAppender("", schema, table)
}

// ConnFromSQL runs fn with the Conn underlying c.
func ConnFromSQL(c *sql.Conn, fn func(*Conn) error) error {
	return c.Raw(func(driverConn any) error {
		dc, ok := driverConn.(*sqlConn)
		if !ok {
			return newError(ErrorKindConnection, "not a marshalling driver connection")
		}
		return fn(dc.conn)
	})
}

// GetProfilingInfo returns the profile of the last query run on c.
func GetProfilingInfo(c *sql.Conn) (ProfilingInfo, error) {
	var info ProfilingInfo
	err := ConnFromSQL(c, func(conn *Conn) error {
		var err error
		info, err = conn.ProfilingInfo()
		return err
	})
	return info, err
}

// GetTableNames returns the tables referenced by query, see Conn.TableNames.
func GetTableNames(c *sql.Conn, query string, qualified bool) ([]string, error) {
	var names []string
	err := ConnFromSQL(c, func(conn *Conn) error {
		var err error
		names, err = conn.TableNames(query, qualified)
		return err
	})
	return names, err
}
