// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package duckdb marshals values between Go and the DuckDB C API. It decodes
// result chunks into Go values, bulk loads rows through an appender, and
// binds Go values to prepared statements.
package duckdb

import (
	"sync"

	"github.com/columnar-dev/go-duckdb-marshal/internal/mapping"
)

// DB is an open database. Connections created from it share its
// configuration. DB is safe for concurrent use.
type DB struct {
	db   mapping.Database
	cfg  *Config
	conv *converter

	mu     sync.Mutex
	closed bool
}

// Open opens the database named by dsn, a path optionally followed by
// ?name=value configuration flags.
func Open(dsn string, opts ...Option) (*DB, error) {
	path, flags, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	cfg := &Config{Path: path, Options: flags}
	return OpenConfig(cfg, opts...)
}

// OpenConfig opens the database described by cfg.
func OpenConfig(cfg *Config, opts ...Option) (*DB, error) {
	cfg.apply(opts)

	if cfg.ExpectedVersion != "" {
		if err := CheckLibraryVersion(cfg.ExpectedVersion); err != nil {
			return nil, err
		}
	}

	config, err := prepareConfig(cfg.Options)
	if err != nil {
		return nil, err
	}
	defer mapping.DestroyConfig(&config)

	var db mapping.Database
	var errMsg string
	if state := mapping.OpenExt(cfg.Path, &db, config, &errMsg); state == mapping.StateError {
		cfg.Logger.WithField("path", cfg.Path).Debugf("open failed: %s", errMsg)
		return nil, nativeError(ErrorKindConnection, errOpen.Error(), errMsg)
	}

	cfg.Logger.WithField("path", cfg.Path).Debug("database opened")
	return &DB{db: db, cfg: cfg, conv: cfg.converter()}, nil
}

func prepareConfig(options map[string]string) (mapping.Config, error) {
	var config mapping.Config
	if state := mapping.CreateConfig(&config); state == mapping.StateError {
		mapping.DestroyConfig(&config)
		return config, getError(errCreateConfig, nil)
	}

	if err := setConfigOption(config, "duckdb_api", "go"); err != nil {
		return config, err
	}
	for k, v := range options {
		if err := setConfigOption(config, k, v); err != nil {
			return config, err
		}
	}
	return config, nil
}

func setConfigOption(config mapping.Config, name string, option string) error {
	if state := mapping.SetConfig(config, name, option); state == mapping.StateError {
		mapping.DestroyConfig(&config)
		return newErrorf(ErrorKindConnection, "%s: %s=%s", errSetConfig, name, option)
	}
	return nil
}

// Connect opens a new connection.
func (db *DB) Connect() (*Conn, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil, newError(ErrorKindClosed, "database is closed")
	}

	var conn mapping.Connection
	if state := mapping.Connect(db.db, &conn); state == mapping.StateError {
		return nil, newError(ErrorKindConnection, errConnect.Error())
	}
	return &Conn{conn: conn, db: db, conv: db.conv, logger: db.cfg.Logger, metrics: db.cfg.Metrics}, nil
}

// Config returns the configuration the database was opened with.
func (db *DB) Config() *Config {
	return db.cfg
}

// Close closes the database. Connections must be closed first.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil
	}
	db.closed = true
	mapping.Close(&db.db)
	db.cfg.Logger.WithField("path", db.cfg.Path).Debug("database closed")
	return nil
}
