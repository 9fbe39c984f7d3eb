package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	duckdb "github.com/columnar-dev/go-duckdb-marshal"
)

type arguments struct {
	DSN     string           `help:"Database to open, with engine options as query parameters." default:":memory:"`
	Version string           `help:"Fail unless the engine library reports this version."`
	Log     duckdb.LogConfig `embed:"" prefix:"log-"`

	Load  loadCmd  `cmd:"" help:"Append the rows of a CSV file to a table."`
	Query queryCmd `cmd:"" help:"Run a query and print its rows."`
	Info  infoCmd  `cmd:"" help:"Print the engine library version."`
}

type loadCmd struct {
	Table     string `required:"" help:"Table to append to."`
	Schema    string `help:"Schema of the table."`
	Create    string `help:"Statement run before loading, such as a CREATE TABLE."`
	Header    bool   `help:"Skip the first record of the file."`
	Delimiter string `help:"Field delimiter." default:","`
	Null      string `help:"Field text read as NULL." default:""`
	Batch     int    `help:"Flush after this many rows. Zero flushes once at the end." default:"0"`
	File      string `arg:"" type:"existingfile" help:"CSV file to load."`
}

type queryCmd struct {
	SQL string `arg:"" help:"Query to run."`
}

type infoCmd struct{}

func main() {
	var args arguments
	kctx := kong.Parse(&args, kong.Description("Load and query data through the engine's C interface."))
	kctx.FatalIfErrorf(args.Log.Configure(nil))
	err := kctx.Run(&args)
	if cerr := args.Log.Close(); err == nil {
		err = cerr
	}
	kctx.FatalIfErrorf(err)
}

func (args *arguments) open() (*duckdb.DB, *duckdb.Conn, error) {
	opts := []duckdb.Option{
		duckdb.WithLogger(log.StandardLogger()),
		duckdb.WithMetrics(duckdb.NewMetrics(prometheus.DefaultRegisterer)),
	}
	if args.Version != "" {
		opts = append(opts, duckdb.WithExpectedVersion(args.Version))
	}
	db, err := duckdb.Open(args.DSN, opts...)
	if err != nil {
		return nil, nil, err
	}
	conn, err := db.Connect()
	if err != nil {
		return nil, nil, errors.Join(err, db.Close())
	}
	return db, conn, nil
}

func (c *loadCmd) Run(args *arguments) error {
	db, conn, err := args.open()
	if err != nil {
		return err
	}
	defer db.Close()
	defer conn.Close()

	if c.Create != "" {
		if _, err := conn.Exec(c.Create); err != nil {
			return err
		}
	}

	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	a, err := conn.NewAppender("", c.Schema, c.Table)
	if err != nil {
		return err
	}
	n, err := c.load(a, f)
	if closeErr := a.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"table": c.Table, "rows": n}).Debug("load complete")
	fmt.Println(n)
	return nil
}

func (c *loadCmd) load(a *duckdb.Appender, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	if c.Delimiter != "" {
		reader.Comma = []rune(c.Delimiter)[0]
	}
	reader.FieldsPerRecord = len(a.Columns())

	rows := 0
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		if line == 1 && c.Header {
			continue
		}

		values, err := parseRecord(a.Columns(), record, c.Null)
		if err != nil {
			return rows, fmt.Errorf("line %d: %w", line, err)
		}
		if err := a.AppendRow(values...); err != nil {
			return rows, fmt.Errorf("line %d: %w", line, err)
		}
		rows++
		if c.Batch > 0 && rows%c.Batch == 0 {
			if err := a.Flush(); err != nil {
				return rows, err
			}
		}
	}
}

func (c *queryCmd) Run(args *arguments) error {
	db, conn, err := args.open()
	if err != nil {
		return err
	}
	defer db.Close()
	defer conn.Close()

	rs, err := conn.Query(c.SQL)
	if err != nil {
		return err
	}
	defer rs.Close()

	fmt.Println(strings.Join(rs.ColumnNames(), "\t"))
	for row, err := range rs.All() {
		if err != nil {
			return err
		}
		fmt.Println(formatRow(row))
	}
	return nil
}

func (*infoCmd) Run(args *arguments) error {
	if args.Version != "" {
		if err := duckdb.CheckLibraryVersion(args.Version); err != nil {
			return err
		}
	}
	fmt.Println(duckdb.LibraryVersion())
	return nil
}
