package duckdb

import (
	"errors"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// LogConfig contains the configuration for a logger.
type LogConfig struct {
	Format string `mapstructure:"format" help:"Format to write log lines in" enum:"text,json" default:"text"`
	Level  string `mapstructure:"level" help:"Lowest log level that will be emitted" enum:"trace,debug,info,warn,error" default:"info"`
	File   string `mapstructure:"file" help:"File to direct logs to. If left blank, or '-', logs will go to stderr" default:"-"`

	out io.Closer
}

var errLogFormat = errors.New("log format must be either text or json")

// Configure applies the configuration to logger, or to the standard logger
// when logger is nil. A log file opened by a previous call is closed; the
// current one stays open until Close.
func (cfg *LogConfig) Configure(logger *log.Logger) error {
	if logger == nil {
		logger = log.StandardLogger()
	}
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.Create(cfg.File)
		if err != nil {
			return err
		}
		logger.SetOutput(f)
		if err := cfg.Close(); err != nil {
			return err
		}
		cfg.out = f
	}
	if cfg.Level != "" {
		level, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
	}
	switch cfg.Format {
	case "", "text":
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		return errLogFormat
	}
	return nil
}

// Close closes the log file opened by Configure, if any. The logger keeps
// writing to it until it is given another output.
func (cfg *LogConfig) Close() error {
	if cfg.out == nil {
		return nil
	}
	err := cfg.out.Close()
	cfg.out = nil
	return err
}
